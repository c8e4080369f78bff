package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"

	"github.com/Dmetrikx/goCharacterChatter/internal/ai"
	"github.com/Dmetrikx/goCharacterChatter/internal/characters"
	"github.com/Dmetrikx/goCharacterChatter/internal/config"
	"github.com/Dmetrikx/goCharacterChatter/internal/discord"
	"github.com/Dmetrikx/goCharacterChatter/internal/embed"
	"github.com/Dmetrikx/goCharacterChatter/internal/metrics"
	"github.com/Dmetrikx/goCharacterChatter/internal/sessions"
)

// Renderer turns an embed card into a shareable link
type Renderer interface {
	Render(ctx context.Context, e embed.Embed) (string, error)
}

// Bot represents the Discord bot
type Bot struct {
	session    discord.Session
	registry   *characters.Registry
	store      *sessions.Store
	embeds     Renderer
	busy       *BusyGate
	metrics    *metrics.Metrics
	httpClient *http.Client
	config     *config.Config
	logger     *slog.Logger

	botUserID string
}

// NewBot creates a new bot instance
func NewBot(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Bot, error) {
	session, err := discord.NewDiscordSession(cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	backend, err := ai.NewBackend(ctx, ai.Options{
		Provider: cfg.AIProvider,
		Model:    cfg.AIModel,
		APIKey:   cfg.APIKey(),
		BaseURL:  cfg.AIBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating AI backend: %w", err)
	}

	registry := characters.Builtin()
	store := sessions.NewStore(backend, registry,
		sessions.NewJSONFiles(cfg.ChatHistoryPath, cfg.DefaultCharacterPath))

	bot := newBot(session, registry, store,
		embed.NewClient(cfg.EmbedBaseURL, cfg.EmbedRequestsPerSecond, logger),
		metrics.New(nil), cfg, logger)

	// Register message handler
	session.AddHandler(bot.messageHandler)

	return bot, nil
}

func newBot(session discord.Session, registry *characters.Registry, store *sessions.Store, embeds Renderer,
	m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Bot {
	return &Bot{
		session:    session,
		registry:   registry,
		store:      store,
		embeds:     embeds,
		busy:       NewBusyGate(),
		metrics:    m,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
		logger:     logger,
	}
}

// Metrics returns the bot's instruments
func (b *Bot) Metrics() *metrics.Metrics {
	return b.metrics
}

// Start restores persisted conversations and connects to Discord
func (b *Bot) Start(ctx context.Context) error {
	if err := b.store.Load(ctx); err != nil {
		return fmt.Errorf("error loading sessions: %w", err)
	}

	user, err := b.session.User("@me")
	if err != nil {
		return fmt.Errorf("error obtaining account details: %w", err)
	}
	b.botUserID = user.ID

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	b.logger.InfoContext(ctx, "bot started",
		"username", user.Username,
		"user_id", user.ID,
		"characters", b.registry.Len(),
		"prefixes", b.config.CommandPrefixes)

	return nil
}

// Close disconnects from Discord and persists every conversation
func (b *Bot) Close(ctx context.Context) error {
	b.logger.InfoContext(ctx, "closing bot session")

	var errs []error
	if err := b.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection: %w", err))
	}
	if err := b.store.Save(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error saving sessions: %w", err))
	}
	return errors.Join(errs...)
}

// messageHandler handles incoming messages
func (b *Bot) messageHandler(_ *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	defer b.recoverHandler(ctx, m.Message)

	b.handleMessage(ctx, m.Message)
}

func (b *Bot) recoverHandler(ctx context.Context, m *discordgo.Message) {
	if r := recover(); r != nil {
		b.logger.ErrorContext(ctx, "recovered from panic in message handler",
			"panic", r,
			"message_id", m.ID,
			"channel_id", m.ChannelID,
			"stack", string(debug.Stack()))
	}
}

// handleMessage routes a message to the command, reply or mention trigger
func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	// Ignore messages from the bot itself
	if m.Author == nil || m.Author.ID == b.botUserID {
		return
	}

	if prefix, ok := b.commandPrefix(m.Content); ok {
		if !m.Author.Bot {
			b.handleCommand(ctx, m, prefix)
		}
		return
	}

	if m.MessageReference != nil {
		b.handleReplyTrigger(ctx, m)
		return
	}

	if !m.Author.Bot && b.mentionsBot(m) {
		b.handleMention(ctx, m)
	}
}

// handleReplyTrigger continues the conversation a user replied to
func (b *Bot) handleReplyTrigger(ctx context.Context, m *discordgo.Message) {
	if m.Author.Bot {
		return
	}

	referenced := m.ReferencedMessage
	if referenced == nil {
		channelID := m.MessageReference.ChannelID
		if channelID == "" {
			channelID = m.ChannelID
		}
		var err error
		referenced, err = b.session.ChannelMessage(channelID, m.MessageReference.MessageID,
			discordgo.WithContext(ctx))
		if err != nil {
			b.logger.DebugContext(ctx, "could not fetch referenced message",
				"message_id", m.MessageReference.MessageID,
				tint.Err(err))
			return
		}
	}

	if referenced.Author == nil || referenced.Author.ID != b.botUserID {
		return
	}

	characterID, ok := parseMarker(referenced.Content)
	if !ok {
		return
	}

	b.reply(ctx, newMessageTrigger(b.session, m), characterID, b.stripMentions(m))
}

// handleMention answers a mention with the user's default character
func (b *Bot) handleMention(ctx context.Context, m *discordgo.Message) {
	characterToken, ok := b.store.DefaultCharacter(m.Author.ID)
	if !ok {
		characterToken = FallbackCharacter
	}

	b.reply(ctx, newMessageTrigger(b.session, m), characterToken, b.stripMentions(m))
}

func (b *Bot) mentionsBot(m *discordgo.Message) bool {
	for _, user := range m.Mentions {
		if user != nil && user.ID == b.botUserID {
			return true
		}
	}
	return false
}

// stripMentions removes the bot's mention tokens and spells out other users by name.
// Both the mention and the reply triggers pass their text through it.
func (b *Bot) stripMentions(m *discordgo.Message) string {
	content := m.Content
	for _, user := range m.Mentions {
		if user == nil {
			continue
		}
		replacement := "@" + user.Username
		if user.ID == b.botUserID {
			replacement = ""
		}
		content = strings.NewReplacer(
			"<@"+user.ID+">", replacement,
			"<@!"+user.ID+">", replacement,
		).Replace(content)
	}
	return strings.TrimSpace(content)
}
