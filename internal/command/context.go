// Package command holds the chat-side command plumbing: the context a prefix
// command runs with, prefix parsing and the shared middleware.
package command

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// ErrPermissionDenied is returned when a command needs rights the author lacks.
var ErrPermissionDenied = errors.New("permission denied")

// ErrWrongContext is returned when a command receives an invocation it cannot handle.
var ErrWrongContext = errors.New("wrong context type")

// VoiceState holds minimal voice channel state for a user.
type VoiceState struct {
	ChannelID string
	UserID    string
}

// Bot is what commands need from the chat gateway.
type Bot interface {
	Reply(m *discordgo.Message, content string) error
	SendEmbed(channelID string, e *discordgo.MessageEmbed) error
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
	IsAdministrator(guildID, channelID, userID string) bool
}

// MessageContext is the Invocation.Data of a prefix command.
type MessageContext struct {
	Bot   Bot
	Event *discordgo.MessageCreate
}

// GuildID is the guild the message was sent in, empty for direct messages.
func (c *MessageContext) GuildID() string { return c.Event.GuildID }

// ChannelID is the text channel the message was sent in.
func (c *MessageContext) ChannelID() string { return c.Event.ChannelID }

// Author returns the message author's ID and username.
func (c *MessageContext) Author() (id, name string) {
	if c.Event.Author == nil {
		return "", ""
	}
	return c.Event.Author.ID, c.Event.Author.Username
}

// Reply answers the triggering message.
func (c *MessageContext) Reply(content string) error {
	return c.Bot.Reply(c.Event.Message, content)
}

// SendEmbed posts an embed in the triggering message's channel.
func (c *MessageContext) SendEmbed(e *discordgo.MessageEmbed) error {
	return c.Bot.SendEmbed(c.Event.ChannelID, e)
}

// AuthorVoiceChannel returns the voice channel the author is in, or "".
func (c *MessageContext) AuthorVoiceChannel() string {
	id, _ := c.Author()
	vs, err := c.Bot.FindUserVoiceState(c.GuildID(), id)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}
