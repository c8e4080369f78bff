package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"

	"github.com/Dmetrikx/goCharacterChatter/internal/ai"
)

// downloadImages fetches the image attachments; other files and failed downloads are skipped
func (b *Bot) downloadImages(ctx context.Context, logger *slog.Logger, attachments []*discordgo.MessageAttachment) []ai.Image {
	var images []ai.Image
	for _, att := range attachments {
		mimeType := attachmentMIMEType(att)
		if !strings.HasPrefix(mimeType, "image/") {
			logger.DebugContext(ctx, "skipping non-image attachment",
				"filename", att.Filename,
				"content_type", att.ContentType)
			continue
		}

		data, err := b.downloadAttachment(ctx, att.URL)
		if err != nil {
			logger.WarnContext(ctx, "failed to download attachment",
				"filename", att.Filename,
				tint.Err(err))
			continue
		}
		images = append(images, ai.Image{MIMEType: mimeType, Data: data})
	}
	return images
}

func attachmentMIMEType(att *discordgo.MessageAttachment) string {
	if att.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(att.ContentType)
		if err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(att.Filename)))
}

func (b *Bot) downloadAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download attachment: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("attachment larger than %d bytes", MaxImageBytes)
	}
	return data, nil
}
