// Package discord is the gateway adapter: it routes prefix commands, owns voice
// connections and renders session notifications.
package discord

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/rs/zerolog"
)

// ListeningStatus is the presence shown while the bot is online.
const ListeningStatus = "🎵 Música para todos"

// Bot is a Discord bot driven by prefix commands.
type Bot struct {
	dg       *discordgo.Session
	prefix   string
	commands *cmd.Registry
	voice    *Voice
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	onVoiceLost func(guildID string)
}

// New creates the gateway session. Nothing connects until Open.
func New(token, prefix string, commands *cmd.Registry, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log = log.With().Str("component", "discord").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		dg:       dg,
		prefix:   prefix,
		commands: commands,
		voice:    newVoice(dg, log),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	return b, nil
}

// Voice returns the voice connector backed by this bot's gateway session.
func (b *Bot) Voice() *Voice { return b.voice }

// OnVoiceLost registers fn to run when the bot is removed from a voice channel it
// did not leave on its own. Call it before Open.
func (b *Bot) OnVoiceLost(fn func(guildID string)) { b.onVoiceLost = fn }

// Open connects to the gateway.
func (b *Bot) Open() error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	return nil
}

// Close cancels running commands and disconnects from the gateway.
func (b *Bot) Close() error {
	b.cancel()
	return b.dg.Close()
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if err := s.UpdateListeningStatus(ListeningStatus); err != nil {
		b.log.Warn().Err(err).Msg("failed to set presence")
	}
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("✅ Discord bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	b.dispatch(b.ctx, b, m)
}

// dispatch runs the command named by m, if any. It reports whether one ran.
func (b *Bot) dispatch(ctx context.Context, bot command.Bot, m *discordgo.MessageCreate) (handled bool) {
	name, args, ok := command.Parse(b.prefix, m.Content)
	if !ok {
		return false
	}
	c := b.commands.Get(name)
	if c == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("command", name).
				Bytes("stack", debug.Stack()).
				Msg("command panicked")
		}
	}()

	inv := &cmd.Invocation{
		Name: name,
		Args: args,
		Data: &command.MessageContext{Bot: bot, Event: m},
	}
	if err := c.Run(ctx, inv); err != nil && !errors.Is(err, command.ErrPermissionDenied) {
		b.log.Debug().Err(err).Str("command", name).Msg("command returned an error")
	}
	return true
}

func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || vs.UserID != s.State.User.ID || vs.ChannelID != "" {
		return
	}
	if !b.voice.lost(vs.GuildID) {
		return
	}
	b.log.Info().Str("guild", vs.GuildID).Msg("removed from voice channel")
	if b.onVoiceLost != nil {
		b.onVoiceLost(vs.GuildID)
	}
}

// Reply answers m in its channel.
func (b *Bot) Reply(m *discordgo.Message, content string) error {
	_, err := b.dg.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	return err
}

// SendText posts a plain message.
func (b *Bot) SendText(channelID, content string) error {
	_, err := b.dg.ChannelMessageSend(channelID, content)
	return err
}

// SendEmbed posts an embed.
func (b *Bot) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	_, err := b.dg.ChannelMessageSendEmbed(channelID, e)
	return err
}

// FindUserVoiceState finds the voice state of a user from the gateway cache.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*command.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return &command.VoiceState{
				ChannelID: vs.ChannelID,
				UserID:    vs.UserID,
			}, nil
		}
	}
	return nil, errors.New("user not in any voice channel")
}

var (
	_ command.Bot = (*Bot)(nil)
	_ Sender      = (*Bot)(nil)
)
