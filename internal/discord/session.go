package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Session defines the interface for Discord session operations
type Session interface {
	// Open opens a websocket connection to Discord
	Open() error

	// Close closes the websocket connection to Discord
	Close() error

	// User returns a user; "@me" is the bot itself
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)

	// ChannelMessageSendReply sends content as a reply to a message
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)

	// ChannelMessage retrieves a specific message from a channel
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)

	// ChannelTyping shows the typing indicator for a few seconds
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error

	// RequestWithBucketID issues a raw REST request
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string, options ...discordgo.RequestOption) ([]byte, error)

	// AddHandler adds an event handler
	AddHandler(handler interface{}) func()
}

// DiscordSession wraps discordgo.Session to implement the Session interface
type DiscordSession struct {
	*discordgo.Session
}

// NewDiscordSession creates a new DiscordSession wrapper
func NewDiscordSession(token string) (*DiscordSession, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &DiscordSession{Session: session}, nil
}
