// Package commandtest provides a recording Bot for command tests.
package commandtest

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/pkg/cmd"
)

// Bot records replies and embeds. Voice maps user IDs to voice channels and
// Admins lists the users IsAdministrator accepts.
type Bot struct {
	mu      sync.Mutex
	Voice   map[string]string
	Admins  map[string]bool
	Replies []string
	Embeds  []*discordgo.MessageEmbed
}

// NewBot returns an empty recording bot.
func NewBot() *Bot {
	return &Bot{Voice: map[string]string{}, Admins: map[string]bool{}}
}

func (b *Bot) Reply(m *discordgo.Message, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Replies = append(b.Replies, content)
	return nil
}

func (b *Bot) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Embeds = append(b.Embeds, e)
	return nil
}

func (b *Bot) FindUserVoiceState(guildID, userID string) (*command.VoiceState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.Voice[userID]
	if !ok {
		return nil, errors.New("user not in any voice channel")
	}
	return &command.VoiceState{ChannelID: ch, UserID: userID}, nil
}

func (b *Bot) IsAdministrator(guildID, channelID, userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Admins[userID]
}

// LastReply returns the most recent reply or "".
func (b *Bot) LastReply() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Replies) == 0 {
		return ""
	}
	return b.Replies[len(b.Replies)-1]
}

// LastEmbed returns the most recent embed or nil.
func (b *Bot) LastEmbed() *discordgo.MessageEmbed {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Embeds) == 0 {
		return nil
	}
	return b.Embeds[len(b.Embeds)-1]
}

// Invocation builds a guild message invocation from user in guild-1/text-1.
func (b *Bot) Invocation(name, user string, args ...string) *cmd.Invocation {
	return &cmd.Invocation{
		Name: name,
		Args: args,
		Data: &command.MessageContext{
			Bot: b,
			Event: &discordgo.MessageCreate{Message: &discordgo.Message{
				ID:        "msg-1",
				GuildID:   "guild-1",
				ChannelID: "text-1",
				Author:    &discordgo.User{ID: user, Username: user},
			}},
		},
	}
}
