package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/sashabaranov/go-openai"
)

// OpenAIBackend talks to OpenAI compatible chat completion APIs (OpenAI, xAI Grok)
type OpenAIBackend struct {
	client   *openai.Client
	provider string
	model    string
	logger   *slog.Logger
}

// NewOpenAIBackend creates a backend for an OpenAI compatible endpoint.
// An empty baseURL keeps the go-openai default.
func NewOpenAIBackend(provider, apiKey, baseURL, model string, logger *slog.Logger) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, NewValidationError(provider, "API key is required")
	}
	if model == "" {
		model = DefaultModel(provider)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIBackend{
		client:   openai.NewClientWithConfig(cfg),
		provider: provider,
		model:    model,
		logger:   logger,
	}, nil
}

// NewChat implements Backend
func (b *OpenAIBackend) NewChat(_ context.Context, cfg ChatConfig) (Chat, error) {
	return &openAIChat{
		backend:           b,
		systemInstruction: cfg.SystemInstruction,
		history:           cloneTurns(cfg.History),
	}, nil
}

type openAIChat struct {
	backend           *OpenAIBackend
	systemInstruction string

	// sendMu serializes exchanges; historyMu only guards the transcript
	// so History never waits on a request in flight.
	sendMu    sync.Mutex
	historyMu sync.RWMutex
	history   []Turn
}

// Send implements Chat
func (c *openAIChat) Send(ctx context.Context, text string, images []Image) (string, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	history := c.History()
	turn := userTurn(text, images)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if c.systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemInstruction,
		})
	}
	for _, t := range history {
		messages = append(messages, toOpenAIMessage(t))
	}
	messages = append(messages, toOpenAIMessage(turn))

	c.backend.logger.InfoContext(ctx, "sending AI request",
		"provider", c.backend.provider,
		"model", c.backend.model,
		"history_turns", len(history),
		"images", len(images),
		"prompt_length", len(text))

	resp, err := c.backend.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.backend.model,
		Messages: messages,
	})
	if err != nil {
		c.backend.logger.ErrorContext(ctx, "chat completion failed",
			"provider", c.backend.provider,
			tint.Err(err))
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", NewAPIError(c.backend.provider, apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		return "", fmt.Errorf("%s chat completion: %w", c.backend.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", NewAPIError(c.backend.provider, 0, "no choices returned", ErrEmptyResponse)
	}

	content := resp.Choices[0].Message.Content
	c.historyMu.Lock()
	c.history = append(c.history, turn, Turn{Role: RoleModel, Parts: []Part{{Text: content}}})
	c.historyMu.Unlock()

	c.backend.logger.InfoContext(ctx, "received AI response",
		"provider", c.backend.provider,
		"response_length", len(content),
		"finish_reason", resp.Choices[0].FinishReason)

	return content, nil
}

// History implements Chat
func (c *openAIChat) History() []Turn {
	c.historyMu.RLock()
	defer c.historyMu.RUnlock()
	return cloneTurns(c.history)
}

func toOpenAIMessage(t Turn) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if t.Role == RoleModel {
		role = openai.ChatMessageRoleAssistant
	}

	hasImage := false
	for _, p := range t.Parts {
		if p.InlineData != nil {
			hasImage = true
			break
		}
	}
	if !hasImage || role != openai.ChatMessageRoleUser {
		return openai.ChatCompletionMessage{Role: role, Content: t.Text()}
	}

	parts := make([]openai.ChatMessagePart, 0, len(t.Parts))
	for _, p := range t.Parts {
		if p.InlineData != nil {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", p.InlineData.MIMEType, base64.StdEncoding.EncodeToString(p.InlineData.Data)),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: p.Text})
	}
	return openai.ChatCompletionMessage{Role: role, MultiContent: parts}
}
