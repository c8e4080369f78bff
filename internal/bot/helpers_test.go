package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/Dmetrikx/goCharacterChatter/internal/ai"
	"github.com/Dmetrikx/goCharacterChatter/internal/characters"
	"github.com/Dmetrikx/goCharacterChatter/internal/config"
	"github.com/Dmetrikx/goCharacterChatter/internal/embed"
	"github.com/Dmetrikx/goCharacterChatter/internal/metrics"
	"github.com/Dmetrikx/goCharacterChatter/internal/sessions"
)

const (
	testBotID  = "bot-1"
	testUserID = "user-1"
)

type sentReply struct {
	channelID string
	content   string
	replyTo   string
}

// mockSession records everything the bot sends to Discord
type mockSession struct {
	mu sync.Mutex

	replies []sentReply
	typing  int
	reports []any
	opened  bool
	closed  bool

	reportResponse string
	reportErr      error
	messages       map[string]*discordgo.Message
	sendErr        func(content string) error
}

func newMockSession() *mockSession {
	return &mockSession{
		reportResponse: `{"report_id":"r-1"}`,
		messages:       make(map[string]*discordgo.Message),
	}
}

func (s *mockSession) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

func (s *mockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *mockSession) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if userID != "@me" {
		return nil, errors.New("unexpected user lookup")
	}
	return &discordgo.User{ID: testBotID, Username: "aicha-bot", Bot: true}, nil
}

func (s *mockSession) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		if err := s.sendErr(content); err != nil {
			return nil, err
		}
	}
	s.replies = append(s.replies, sentReply{channelID: channelID, content: content, replyTo: reference.MessageID})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *mockSession) ChannelMessage(_, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return m, nil
}

func (s *mockSession) ChannelTyping(string, ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing++
	return nil
}

func (s *mockSession) RequestWithBucketID(_, _ string, data interface{}, _ string, _ ...discordgo.RequestOption) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, data)
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	return []byte(s.reportResponse), nil
}

func (s *mockSession) AddHandler(interface{}) func() {
	return func() {}
}

func (s *mockSession) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.replies))
	for i, r := range s.replies {
		out[i] = r.content
	}
	return out
}

type sentMessage struct {
	instruction string
	text        string
	images      []ai.Image
}

// fakeBackend answers every message with a canned reply
type fakeBackend struct {
	mu       sync.Mutex
	sent     []sentMessage
	response string
	err      error

	// entered and release let a test hold a generation in flight
	entered chan struct{}
	release chan struct{}
}

func (b *fakeBackend) NewChat(_ context.Context, cfg ai.ChatConfig) (ai.Chat, error) {
	return &fakeChat{backend: b, cfg: cfg, history: append([]ai.Turn(nil), cfg.History...)}, nil
}

func (b *fakeBackend) messages() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMessage(nil), b.sent...)
}

type fakeChat struct {
	backend *fakeBackend
	cfg     ai.ChatConfig
	history []ai.Turn
}

func (c *fakeChat) Send(_ context.Context, text string, images []ai.Image) (string, error) {
	b := c.backend
	if b.entered != nil {
		b.entered <- struct{}{}
		<-b.release
	}

	b.mu.Lock()
	b.sent = append(b.sent, sentMessage{instruction: c.cfg.SystemInstruction, text: text, images: images})
	response, err := b.response, b.err
	b.mu.Unlock()

	if err != nil {
		return "", err
	}
	c.history = append(c.history,
		ai.Turn{Role: ai.RoleUser, Parts: []ai.Part{{Text: text}}},
		ai.Turn{Role: ai.RoleModel, Parts: []ai.Part{{Text: response}}})
	return response, nil
}

func (c *fakeChat) History() []ai.Turn {
	return c.history
}

// fakeRenderer hands out sequential links and can fail on a given call
type fakeRenderer struct {
	mu     sync.Mutex
	embeds []embed.Embed
	failAt int
	panics bool
}

func (r *fakeRenderer) Render(_ context.Context, e embed.Embed) (string, error) {
	if r.panics {
		panic("renderer exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeds = append(r.embeds, e)
	if r.failAt > 0 && len(r.embeds) == r.failAt {
		return "", embed.NewAPIError(500, 0, "internal error", nil)
	}
	return "https://embeds.test/e/" + string(rune('a'+len(r.embeds)-1)), nil
}

func (r *fakeRenderer) rendered() []embed.Embed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]embed.Embed(nil), r.embeds...)
}

func testRegistry() *characters.Registry {
	return characters.NewRegistry(
		characters.Character{ID: "aicha", SystemInstruction: "you are aicha", Color: 0xF58FB6, AvatarURL: "https://cdn.test/aicha.png"},
		characters.Character{ID: "sensei", SystemInstruction: "you are sensei", Color: 0x3366CC, AvatarURL: "https://cdn.test/sensei.png"},
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testBot struct {
	*Bot
	session  *mockSession
	backend  *fakeBackend
	renderer *fakeRenderer
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	return newTestBotIn(t, t.TempDir())
}

// newTestBotIn builds a bot whose JSON files live in dir
func newTestBotIn(t *testing.T, dir string) *testBot {
	t.Helper()

	session := newMockSession()
	backend := &fakeBackend{response: "こんにちは"}
	renderer := &fakeRenderer{}
	registry := testRegistry()
	store := sessions.NewStore(backend, registry, sessions.NewJSONFiles(
		filepath.Join(dir, "chat.json"),
		filepath.Join(dir, "default.json"),
	))
	cfg := &config.Config{CommandPrefixes: config.DefaultCommandPrefixes}

	b := newBot(session, registry, store, renderer, metrics.New(nil), cfg, discardLogger())
	b.botUserID = testBotID

	return &testBot{Bot: b, session: session, backend: backend, renderer: renderer}
}

func userMessage(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-1",
		Content:   content,
		Author:    &discordgo.User{ID: testUserID, Username: "alice"},
	}
}

func (tb *testBot) trigger(content string) Trigger {
	return newMessageTrigger(tb.session, userMessage(content))
}
