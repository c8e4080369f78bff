package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"github.com/Dmetrikx/goCharacterChatter/internal/ai"
	"github.com/Dmetrikx/goCharacterChatter/internal/characters"
	"github.com/Dmetrikx/goCharacterChatter/internal/discord"
	"github.com/Dmetrikx/goCharacterChatter/internal/embed"
	"github.com/Dmetrikx/goCharacterChatter/internal/metrics"
	"github.com/Dmetrikx/goCharacterChatter/internal/sessions"
)

// reply runs the whole pipeline for one trigger: safety check, character resolution,
// busy gate, generation, embed rendering and link dispatch.
func (b *Bot) reply(ctx context.Context, t Trigger, characterToken, text string) {
	userID := t.AuthorID()
	logger := b.logger.With(
		"request_id", uuid.NewString(),
		"user_id", userID,
		"channel_id", t.ChannelID())

	if mentionsChildAge(text) && b.report(ctx, logger, t) {
		b.metrics.Replies.WithLabelValues("", metrics.OutcomeReported).Inc()
		return
	}

	characterID, err := b.registry.Resolve(characterToken)
	if err != nil {
		logger.InfoContext(ctx, "rejected character", "token", characterToken, tint.Err(err))
		b.metrics.Replies.WithLabelValues("", metrics.OutcomeRejected).Inc()
		b.replyText(ctx, logger, t, characterErrorMessage(err))
		return
	}
	logger = logger.With("character", characterID)

	if !b.busy.TryAcquire(userID) {
		logger.InfoContext(ctx, "dropping request while another is in flight")
		b.metrics.BusyDrops.Inc()
		return
	}
	defer b.busy.Release(userID)

	sess, err := b.store.GetOrCreate(ctx, userID, characterID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get session", tint.Err(err))
		b.metrics.Replies.WithLabelValues(characterID, metrics.OutcomeFailed).Inc()
		b.replyText(ctx, logger, t, msgGenerationFailed)
		return
	}
	defer func() {
		if !b.store.Commit(sess) {
			logger.InfoContext(ctx, "session cleared during generation, transcript dropped")
		}
	}()

	outcome := b.generate(ctx, logger, t, sess, text)
	b.metrics.Replies.WithLabelValues(characterID, outcome).Inc()
}

// generate asks the backend for a reply and posts it as embed links
func (b *Bot) generate(ctx context.Context, logger *slog.Logger, t Trigger, sess *sessions.Session, text string) string {
	stopTyping := b.keepTyping(ctx, logger, t.ChannelID())
	defer stopTyping()

	images := b.downloadImages(ctx, logger, t.Attachments())

	started := time.Now()
	content, err := sess.Send(ctx, text, images)
	b.metrics.GenerationSeconds.WithLabelValues(sess.CharacterID).Observe(time.Since(started).Seconds())
	if err != nil {
		logger.ErrorContext(ctx, "generation failed",
			"temporary", ai.IsTemporary(err),
			tint.Err(err))
		b.replyText(ctx, logger, t, msgGenerationFailed)
		return metrics.OutcomeFailed
	}

	character, _ := b.registry.Get(sess.CharacterID)
	links, err := b.renderChunks(ctx, character, splitText(content, EmbedChunkSize))
	if err != nil {
		logger.ErrorContext(ctx, "embed rendering failed",
			"rendered", len(links),
			tint.Err(err))
		b.replyText(ctx, logger, t, msgGenerationFailed)
		return metrics.OutcomeFailed
	}

	b.dispatchLinks(ctx, logger, t, sess.CharacterID, links)
	logger.InfoContext(ctx, "reply sent",
		"response_length", len(content),
		"embeds", len(links))
	return metrics.OutcomeOK
}

// renderChunks renders every chunk in order and stops at the first failure,
// returning the links produced so far along with the error.
func (b *Bot) renderChunks(ctx context.Context, character characters.Character, chunks []string) ([]string, error) {
	links := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		e := embed.Embed{
			Description: chunk,
			ThumbImage:  true,
			Color:       character.Color,
		}
		if i == 0 {
			e.Title = character.ID
			e.Image = character.AvatarURL
		}

		link, err := b.embeds.Render(ctx, e)
		if err != nil {
			b.metrics.EmbedRequests.WithLabelValues(metrics.OutcomeFailed).Inc()
			return links, fmt.Errorf("rendering chunk %d of %d: %w", i+1, len(chunks), err)
		}
		b.metrics.EmbedRequests.WithLabelValues(metrics.OutcomeOK).Inc()
		links = append(links, hiddenLink(link))
	}
	return links, nil
}

// dispatchLinks sends the links in batches, each reply starting with the character marker.
// A rejected batch is retried with its first link only.
func (b *Bot) dispatchLinks(ctx context.Context, logger *slog.Logger, t Trigger, characterID string, links []string) {
	marker := characterMarker(characterID)
	for _, group := range batch(links, LinkBatchSize) {
		err := t.Reply(ctx, linkMessage(marker, group))
		if err == nil {
			continue
		}

		logger.WarnContext(ctx, "link batch rejected, sending first link only",
			"links", len(group),
			tint.Err(err))
		if err := t.Reply(ctx, marker+group[0]); err != nil {
			logger.ErrorContext(ctx, "failed to send reply", tint.Err(err))
		}
	}
}

// report files a Discord report for the trigger and reports whether it was confirmed
func (b *Bot) report(ctx context.Context, logger *slog.Logger, t Trigger) bool {
	ok, raw, err := discord.ReportMessage(ctx, b.session, t.ChannelID(), t.MessageID())
	switch {
	case err != nil:
		logger.ErrorContext(ctx, "failed to report message", tint.Err(err))
		b.metrics.Reports.WithLabelValues(metrics.OutcomeFailed).Inc()
		return false
	case !ok:
		logger.WarnContext(ctx, "report was not confirmed", "response", raw)
		b.metrics.Reports.WithLabelValues(metrics.OutcomeRejected).Inc()
		return false
	}

	logger.WarnContext(ctx, "reported message", "message_id", t.MessageID())
	b.metrics.Reports.WithLabelValues(metrics.OutcomeOK).Inc()
	b.replyText(ctx, logger, t, msgReported)
	return true
}

// keepTyping shows the typing indicator until the returned func is called
func (b *Bot) keepTyping(ctx context.Context, logger *slog.Logger, channelID string) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			if err := b.session.ChannelTyping(channelID); err != nil {
				logger.DebugContext(ctx, "typing indicator failed", tint.Err(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (b *Bot) replyText(ctx context.Context, logger *slog.Logger, t Trigger, content string) {
	if err := t.Reply(ctx, content); err != nil {
		logger.ErrorContext(ctx, "failed to send reply", tint.Err(err))
	}
}

// characterErrorMessage turns a resolution error into the reply shown to the user
func characterErrorMessage(err error) string {
	var indexErr *characters.IndexError
	if errors.As(err, &indexErr) {
		return fmt.Sprintf(msgIndexOutOfRange, indexErr.Max, formatKeys(indexErr.Valid))
	}
	var unknown *characters.UnknownCharacterError
	if errors.As(err, &unknown) {
		return fmt.Sprintf(msgUnknownCharacter, formatKeys(unknown.Valid))
	}
	return msgGenerationFailed
}

func formatKeys(keys []string) string {
	return "[" + strings.Join(keys, ", ") + "]"
}
