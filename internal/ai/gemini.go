package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/lmittmann/tint"
	"google.golang.org/genai"
)

// SafetySettings disables blocking for every adjustable harm category
var SafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
}

// GeminiBackend creates chats on the Gemini API
type GeminiBackend struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiBackend creates a Gemini backend. The client does not connect until the first send.
// An empty baseURL keeps the SDK default endpoint.
func NewGeminiBackend(ctx context.Context, apiKey, baseURL, model string, httpClient *http.Client, logger *slog.Logger) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, NewValidationError(ProviderGemini, "API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiBackend{client: client, model: model, logger: logger}, nil
}

// NewChat implements Backend
func (b *GeminiBackend) NewChat(ctx context.Context, cfg ChatConfig) (Chat, error) {
	chat, err := b.client.Chats.Create(ctx, b.model, generateConfig(cfg.SystemInstruction), toGenaiContents(cfg.History))
	if err != nil {
		return nil, fmt.Errorf("creating gemini chat: %w", err)
	}
	return &geminiChat{
		chat:    chat,
		model:   b.model,
		logger:  b.logger,
		history: cloneTurns(cfg.History),
	}, nil
}

func generateConfig(systemInstruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{SafetySettings: SafetySettings}
	if systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Role:  RoleUser,
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}
	return cfg
}

// geminiChat wraps a genai.Chat, which is not safe for concurrent use.
// sendMu owns the chat; History serves the snapshot taken after the last exchange.
type geminiChat struct {
	chat   *genai.Chat
	model  string
	logger *slog.Logger

	sendMu    sync.Mutex
	historyMu sync.RWMutex
	history   []Turn
}

// Send implements Chat
func (c *geminiChat) Send(ctx context.Context, text string, images []Image) (string, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	parts := make([]genai.Part, 0, len(images)+1)
	if text != "" {
		parts = append(parts, genai.Part{Text: text})
	}
	for _, img := range images {
		parts = append(parts, genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}})
	}

	c.logger.InfoContext(ctx, "sending AI request",
		"provider", ProviderGemini,
		"model", c.model,
		"images", len(images),
		"prompt_length", len(text))

	resp, err := c.chat.SendMessage(ctx, parts...)
	c.snapshotHistory()
	if err != nil {
		c.logger.ErrorContext(ctx, "gemini request failed", tint.Err(err))
		return "", NewAPIError(ProviderGemini, geminiStatus(err), "send message failed", err)
	}

	content := resp.Text()
	if content == "" {
		return "", NewAPIError(ProviderGemini, 0, "no text in response", ErrEmptyResponse)
	}

	c.logger.InfoContext(ctx, "received AI response",
		"provider", ProviderGemini,
		"response_length", len(content))

	return content, nil
}

// geminiStatus extracts the HTTP status from an SDK error, 0 when there is none
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}

// History implements Chat
func (c *geminiChat) History() []Turn {
	c.historyMu.RLock()
	defer c.historyMu.RUnlock()
	return cloneTurns(c.history)
}

// snapshotHistory copies the chat's transcript; callers hold sendMu
func (c *geminiChat) snapshotHistory() {
	turns := fromGenaiContents(c.chat.History(false))
	c.historyMu.Lock()
	c.history = turns
	c.historyMu.Unlock()
}

func toGenaiContents(turns []Turn) []*genai.Content {
	if len(turns) == 0 {
		return nil
	}
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		content := &genai.Content{Role: t.Role}
		for _, p := range t.Parts {
			part := &genai.Part{Text: p.Text}
			if p.InlineData != nil {
				part.InlineData = &genai.Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}
			}
			content.Parts = append(content.Parts, part)
		}
		contents = append(contents, content)
	}
	return contents
}

func fromGenaiContents(contents []*genai.Content) []Turn {
	turns := make([]Turn, 0, len(contents))
	for _, content := range contents {
		if content == nil {
			continue
		}
		turn := Turn{Role: content.Role}
		for _, p := range content.Parts {
			if p == nil {
				continue
			}
			part := Part{Text: p.Text}
			if p.InlineData != nil {
				part.InlineData = &Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}
			}
			if part.Text == "" && part.InlineData == nil {
				continue
			}
			turn.Parts = append(turn.Parts, part)
		}
		turns = append(turns, turn)
	}
	return turns
}
