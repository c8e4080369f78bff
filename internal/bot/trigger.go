package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/Dmetrikx/goCharacterChatter/internal/discord"
)

// Trigger is the message that started a pipeline run, whatever shape it arrived in
type Trigger interface {
	AuthorID() string
	ChannelID() string
	MessageID() string
	Attachments() []*discordgo.MessageAttachment
	Reply(ctx context.Context, content string) error
}

// messageTrigger adapts a Discord message to Trigger
type messageTrigger struct {
	session discord.Session
	message *discordgo.Message
}

func newMessageTrigger(session discord.Session, message *discordgo.Message) *messageTrigger {
	return &messageTrigger{session: session, message: message}
}

func (t *messageTrigger) AuthorID() string {
	if t.message.Author == nil {
		return ""
	}
	return t.message.Author.ID
}

func (t *messageTrigger) ChannelID() string {
	return t.message.ChannelID
}

func (t *messageTrigger) MessageID() string {
	return t.message.ID
}

func (t *messageTrigger) Attachments() []*discordgo.MessageAttachment {
	return t.message.Attachments
}

func (t *messageTrigger) Reply(ctx context.Context, content string) error {
	_, err := t.session.ChannelMessageSendReply(t.message.ChannelID, content, t.message.Reference(),
		discordgo.WithContext(ctx))
	return err
}
