package discord

import (
	"context"
	"errors"
	"fmt"

	"tornbot/internal/torn/broadcast"

	"github.com/bwmarrin/discordgo"
)

// messageAPI is the part of *discordgo.Session the publisher needs.
type messageAPI interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Publisher posts stock messages through the bot session.
type Publisher struct {
	api messageAPI
}

func NewPublisher(api messageAPI) *Publisher {
	return &Publisher{api: api}
}

func (p *Publisher) Send(ctx context.Context, channelID, content string) (string, error) {
	msg, err := p.api.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return msg.ID, nil
}

// Edit maps Discord's Unknown Message error to broadcast.ErrMessageNotFound.
func (p *Publisher) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := p.api.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	if err == nil {
		return nil
	}
	if isUnknownMessage(err) {
		return broadcast.ErrMessageNotFound
	}
	return fmt.Errorf("edit message %s: %w", messageID, err)
}

func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	return restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}
