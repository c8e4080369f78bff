package ai

// Provider and model constants
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderGrok       = "grok"
	DefaultProvider    = ProviderGemini
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o"
	DefaultGrokModel   = "grok-3"
	GrokBaseURL        = "https://api.x.ai/v1"
)

// DefaultModel returns the model used for a provider when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderGrok:
		return DefaultGrokModel
	default:
		return DefaultGeminiModel
	}
}
