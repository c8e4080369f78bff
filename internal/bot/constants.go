package bot

import "time"

// Reply pipeline constants
const (
	// EmbedChunkSize is the number of characters rendered per embed card
	EmbedChunkSize = 85

	// LinkBatchSize is the number of embed links sent per Discord message;
	// Discord only previews a handful of links per message.
	LinkBatchSize = 4

	// FallbackCharacter is used for mentions from users without a default
	FallbackCharacter = "0"

	// MaxImageBytes caps a downloaded attachment
	MaxImageBytes = 20 << 20

	typingInterval = 8 * time.Second
)
