package config

import (
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/Dmetrikx/goCharacterChatter/internal/ai"
	"github.com/Dmetrikx/goCharacterChatter/internal/embed"
)

// Config holds all configuration values
type Config struct {
	DiscordToken string `mapstructure:"discord_token"`

	AIProvider   string `mapstructure:"ai_provider"`
	AIModel      string `mapstructure:"ai_model"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	XAIAPIKey    string `mapstructure:"xai_api_key"`
	AIBaseURL    string `mapstructure:"ai_base_url"`

	EmbedBaseURL           string  `mapstructure:"embed_base_url"`
	EmbedRequestsPerSecond float64 `mapstructure:"embed_requests_per_second"`

	ChatHistoryPath      string `mapstructure:"chat_history_path"`
	DefaultCharacterPath string `mapstructure:"default_character_path"`

	CommandPrefixes []string `mapstructure:"command_prefixes"`

	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	MetricsListen string `mapstructure:"metrics_listen"`
}

// Defaults
const (
	DefaultEmbedRequestsPerSecond = 2
	DefaultChatHistoryPath        = "chat.json"
	DefaultCharacterPath          = "default.json"
	DefaultLogLevel               = "info"
	LogFormatJSON                 = "json"
	LogFormatText                 = "text"
)

// DefaultCommandPrefixes are the prefixes the bot answers to
var DefaultCommandPrefixes = []string{"aicha#", "aicha!", "ai#", "ai!"}

// LoadConfig loads environment variables, optionally from envFile (".env" when empty),
// and returns a Config struct
func LoadConfig(envFile string) (*Config, error) {
	// The env file is optional - it may not exist in production
	if envFile == "" {
		_ = godotenv.Load(".env")
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, wrapConfigError("config", "could not load "+envFile, err)
	}

	v := viper.New()
	v.SetDefault("discord_token", "")
	v.SetDefault("ai_provider", ai.DefaultProvider)
	v.SetDefault("ai_model", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("xai_api_key", "")
	v.SetDefault("ai_base_url", "")
	v.SetDefault("embed_base_url", embed.DefaultBaseURL)
	v.SetDefault("embed_requests_per_second", DefaultEmbedRequestsPerSecond)
	v.SetDefault("chat_history_path", DefaultChatHistoryPath)
	v.SetDefault("default_character_path", DefaultCharacterPath)
	v.SetDefault("command_prefixes", DefaultCommandPrefixes)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", LogFormatJSON)
	v.SetDefault("metrics_listen", "")
	v.AutomaticEnv()

	config := &Config{}
	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			trimSliceHookFunc(),
		),
	))
	if err != nil {
		return nil, wrapConfigError("config", "could not decode settings", err)
	}

	config.AIProvider = strings.ToLower(strings.TrimSpace(config.AIProvider))
	if config.AIModel == "" {
		config.AIModel = ai.DefaultModel(config.AIProvider)
	}

	return config, nil
}

// trimSliceHookFunc drops blanks around comma separated values such as "ai#, ai!"
func trimSliceHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, _ reflect.Type, data any) (any, error) {
		items, ok := data.([]string)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}

// APIKey returns the key for the configured provider
func (c *Config) APIKey() string {
	switch c.AIProvider {
	case ai.ProviderOpenAI:
		return c.OpenAIAPIKey
	case ai.ProviderGrok:
		return c.XAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return NewConfigError("DISCORD_TOKEN", "environment variable is required")
	}

	switch c.AIProvider {
	case ai.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return NewConfigError("GEMINI_API_KEY", "required when AI_PROVIDER is gemini")
		}
	case ai.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return NewConfigError("OPENAI_API_KEY", "required when AI_PROVIDER is openai")
		}
	case ai.ProviderGrok:
		if c.XAIAPIKey == "" {
			return NewConfigError("XAI_API_KEY", "required when AI_PROVIDER is grok")
		}
	default:
		return NewConfigError("AI_PROVIDER", "must be one of gemini, openai, grok")
	}

	if len(c.CommandPrefixes) == 0 {
		return NewConfigError("COMMAND_PREFIXES", "at least one prefix is required")
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		return NewConfigError("LOG_FORMAT", "must be json or text")
	}

	if c.ChatHistoryPath == "" || c.DefaultCharacterPath == "" {
		return NewConfigError("CHAT_HISTORY_PATH or DEFAULT_CHARACTER_PATH", "cannot be empty")
	}

	return nil
}
