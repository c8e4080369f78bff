package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DiscordToken:         "test-discord-token",
		AIProvider:           "gemini",
		GeminiAPIKey:         "test-gemini-key",
		CommandPrefixes:      DefaultCommandPrefixes,
		LogFormat:            LogFormatJSON,
		ChatHistoryPath:      DefaultChatHistoryPath,
		DefaultCharacterPath: DefaultCharacterPath,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid gemini config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid grok config",
			mutate: func(c *Config) {
				c.AIProvider = "grok"
				c.GeminiAPIKey = ""
				c.XAIAPIKey = "test-xai-key"
			},
		},
		{
			name: "valid openai config",
			mutate: func(c *Config) {
				c.AIProvider = "openai"
				c.OpenAIAPIKey = "test-openai-key"
			},
		},
		{
			name:    "missing Discord token",
			mutate:  func(c *Config) { c.DiscordToken = "" },
			wantErr: true,
			errMsg:  "DISCORD_TOKEN",
		},
		{
			name:    "missing provider key",
			mutate:  func(c *Config) { c.GeminiAPIKey = "" },
			wantErr: true,
			errMsg:  "GEMINI_API_KEY",
		},
		{
			name:    "openai without key",
			mutate:  func(c *Config) { c.AIProvider = "openai" },
			wantErr: true,
			errMsg:  "OPENAI_API_KEY",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.AIProvider = "palm" },
			wantErr: true,
			errMsg:  "AI_PROVIDER",
		},
		{
			name:    "no prefixes",
			mutate:  func(c *Config) { c.CommandPrefixes = nil },
			wantErr: true,
			errMsg:  "COMMAND_PREFIXES",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
			errMsg:  "LOG_FORMAT",
		},
		{
			name:    "empty state path",
			mutate:  func(c *Config) { c.ChatHistoryPath = "" },
			wantErr: true,
			errMsg:  "CHAT_HISTORY_PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

var configEnvVars = []string{
	"DISCORD_TOKEN", "AI_PROVIDER", "AI_MODEL", "GEMINI_API_KEY", "OPENAI_API_KEY", "XAI_API_KEY",
	"AI_BASE_URL", "EMBED_BASE_URL", "EMBED_REQUESTS_PER_SECOND", "CHAT_HISTORY_PATH",
	"DEFAULT_CHARACTER_PATH", "COMMAND_PREFIXES", "LOG_LEVEL", "LOG_FORMAT", "METRICS_LISTEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("GEMINI_API_KEY", "test-gemini")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.DiscordToken)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.AIModel)
	assert.Equal(t, "https://nemtudo.me", cfg.EmbedBaseURL)
	assert.Equal(t, float64(DefaultEmbedRequestsPerSecond), cfg.EmbedRequestsPerSecond)
	assert.Equal(t, "chat.json", cfg.ChatHistoryPath)
	assert.Equal(t, "default.json", cfg.DefaultCharacterPath)
	assert.Equal(t, DefaultCommandPrefixes, cfg.CommandPrefixes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("AI_PROVIDER", "Grok")
	t.Setenv("XAI_API_KEY", "test-xai")
	t.Setenv("COMMAND_PREFIXES", "bot!, bot#")
	t.Setenv("EMBED_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "grok", cfg.AIProvider)
	assert.Equal(t, "grok-3", cfg.AIModel)
	assert.Equal(t, "test-xai", cfg.APIKey())
	assert.Equal(t, []string{"bot!", "bot#"}, cfg.CommandPrefixes)
	assert.Equal(t, 0.5, cfg.EmbedRequestsPerSecond)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"DISCORD_TOKEN=file-token\nAI_PROVIDER=openai\nOPENAI_API_KEY=file-openai\nAI_MODEL=gpt-4o-mini\n",
	), 0o600))
	t.Cleanup(func() {
		for _, key := range configEnvVars {
			os.Unsetenv(key)
		}
	})

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.DiscordToken)
	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
	assert.Equal(t, "file-openai", cfg.APIKey())

	_, err = LoadConfig(filepath.Join(dir, "missing.env"))
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
