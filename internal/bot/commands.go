package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"

	"github.com/Dmetrikx/goCharacterChatter/internal/sessions"
)

// commandPrefix returns the configured prefix content starts with
func (b *Bot) commandPrefix(content string) (string, bool) {
	for _, prefix := range b.config.CommandPrefixes {
		if strings.HasPrefix(content, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// handleCommand routes a prefixed message to its command
func (b *Bot) handleCommand(ctx context.Context, m *discordgo.Message, prefix string) {
	command, args := cutField(strings.TrimPrefix(m.Content, prefix))
	t := newMessageTrigger(b.session, m)
	logger := b.logger.With(
		"command", command,
		"user_id", m.Author.ID,
		"channel_id", m.ChannelID)

	logger.InfoContext(ctx, "received command", "args_length", len(args))

	switch command {
	case "characters":
		b.handleCharacters(ctx, logger, t)
	case "default":
		b.handleDefault(ctx, logger, t, prefix, args)
	case "clear":
		b.handleClear(ctx, logger, t, args)
	case "chat", "c":
		b.handleChat(ctx, logger, t, prefix, args)
	case "help":
		b.replyText(ctx, logger, t, formatTemplate(helpText, prefix, b.config.CommandPrefixes))
	default:
		logger.InfoContext(ctx, "unknown command")
	}
}

// handleCharacters lists the characters with their indexes
func (b *Bot) handleCharacters(ctx context.Context, logger *slog.Logger, t Trigger) {
	var sb strings.Builder
	sb.WriteString(msgCharactersHeading)
	for i, key := range b.registry.Keys() {
		fmt.Fprintf(&sb, "\n`%d` %s", i, key)
	}
	b.replyText(ctx, logger, t, sb.String())
}

// handleDefault shows or sets the character used for mentions
func (b *Bot) handleDefault(ctx context.Context, logger *slog.Logger, t Trigger, prefix, args string) {
	token, _ := cutField(args)
	if token == "" {
		current, ok := b.store.DefaultCharacter(t.AuthorID())
		if !ok {
			current, _ = b.registry.Resolve(FallbackCharacter)
		}
		b.replyText(ctx, logger, t,
			formatTemplate(defaultHowTo, prefix, b.config.CommandPrefixes)+"\n\n"+fmt.Sprintf(msgDefaultCurrent, current))
		return
	}

	characterID, err := b.registry.Resolve(token)
	if err != nil {
		b.replyText(ctx, logger, t, characterErrorMessage(err))
		return
	}

	b.store.SetDefaultCharacter(t.AuthorID(), characterID)
	logger.InfoContext(ctx, "default character set", "character", characterID)
	b.replyText(ctx, logger, t, fmt.Sprintf(msgDefaultSet, characterID))
}

// handleClear forgets one conversation, or all of them without an argument
func (b *Bot) handleClear(ctx context.Context, logger *slog.Logger, t Trigger, args string) {
	token, _ := cutField(args)
	characterID := ""
	if token != "" {
		var err error
		characterID, err = b.registry.Resolve(token)
		if err != nil {
			b.replyText(ctx, logger, t, characterErrorMessage(err))
			return
		}
	}

	err := b.store.Clear(t.AuthorID(), characterID)
	var noSession *sessions.NoSessionError
	switch {
	case errors.Is(err, sessions.ErrNoSessions):
		b.replyText(ctx, logger, t, msgNoSessions)
	case errors.As(err, &noSession):
		b.replyText(ctx, logger, t, fmt.Sprintf(msgNoSessionWith, noSession.Character))
	case err != nil:
		logger.ErrorContext(ctx, "failed to clear sessions", tint.Err(err))
		b.replyText(ctx, logger, t, msgGenerationFailed)
	case characterID == "":
		logger.InfoContext(ctx, "cleared all sessions")
		b.replyText(ctx, logger, t, msgClearedAll)
	default:
		logger.InfoContext(ctx, "cleared session", "character", characterID)
		b.replyText(ctx, logger, t, fmt.Sprintf(msgClearedCharacter, characterID))
	}
}

// handleChat runs the reply pipeline for an explicit chat command
func (b *Bot) handleChat(ctx context.Context, logger *slog.Logger, t Trigger, prefix, args string) {
	token, text := cutField(args)
	if token == "" || text == "" {
		b.replyText(ctx, logger, t, formatTemplate(chatHowTo, prefix, b.config.CommandPrefixes))
		return
	}
	b.reply(ctx, t, token, text)
}
