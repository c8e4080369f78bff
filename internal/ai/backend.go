package ai

import (
	"context"
	"log/slog"
	"net/http"
)

// Options selects and configures a provider
type Options struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint
	BaseURL    string
	HTTPClient *http.Client
}

// NewBackend builds the backend for opts.Provider
func NewBackend(ctx context.Context, opts Options, logger *slog.Logger) (Backend, error) {
	switch opts.Provider {
	case ProviderGemini, "":
		return NewGeminiBackend(ctx, opts.APIKey, opts.BaseURL, opts.Model, opts.HTTPClient, logger)
	case ProviderOpenAI:
		return NewOpenAIBackend(ProviderOpenAI, opts.APIKey, opts.BaseURL, opts.Model, logger)
	case ProviderGrok:
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = GrokBaseURL
		}
		return NewOpenAIBackend(ProviderGrok, opts.APIKey, baseURL, opts.Model, logger)
	default:
		return nil, NewValidationError("AI_PROVIDER", "unsupported provider "+opts.Provider)
	}
}
