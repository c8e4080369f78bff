package ai

import "context"

// Backend creates chat sessions against a generative AI provider
type Backend interface {
	// NewChat prepares a chat seeded with a system instruction and prior turns.
	// Implementations must not touch the network here.
	NewChat(ctx context.Context, cfg ChatConfig) (Chat, error)
}

// Chat is a single conversation with the provider
type Chat interface {
	// Send posts a user turn and waits for the full model reply
	Send(ctx context.Context, text string, images []Image) (string, error)

	// History returns the provider's transcript, seed turns included
	History() []Turn
}

// ChatConfig seeds a new chat
type ChatConfig struct {
	SystemInstruction string
	History           []Turn
}
