package music

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/internal/discord/embeds"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/sources"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/keshon/suenala/pkg/util"
)

type PlayCommand struct {
	Sessions Sessions
	Resolver Resolver
}

func (c *PlayCommand) Name() string        { return "musica" }
func (c *PlayCommand) Description() string { return "Reproduce una URL o busca una canción" }
func (c *PlayCommand) Aliases() []string   { return []string{"m"} }

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	voiceChannel := mc.AuthorVoiceChannel()
	if voiceChannel == "" {
		return mc.Reply(replyNotInVoice)
	}

	input := strings.TrimSpace(strings.Join(inv.Args, " "))
	if input == "" {
		return mc.Reply(replyMissingInput)
	}

	info, err := c.Resolver.Resolve(ctx, input)
	if err != nil {
		if errors.Is(err, sources.ErrNoResults) {
			return mc.Reply(replyNoResults)
		}
		_ = mc.Reply(replyRequestFailed)
		return err
	}

	_, user := mc.Author()
	track := toTrack(info, user, mc.ChannelID())

	position, started, err := c.Sessions.Enqueue(ctx, mc.GuildID(), voiceChannel, track)
	switch {
	case errors.Is(err, session.ErrConnectionTimeout), errors.Is(err, session.ErrConnectionError):
		_ = mc.Reply(replyConnectFailed)
		return err
	case errors.Is(err, session.ErrNoActiveSession):
		// stopped while joining; the stop command already answered
		return nil
	case err != nil:
		_ = mc.Reply(replyRequestFailed)
		return err
	}

	// a track that started right away is announced by the session
	if !started {
		if err := mc.SendEmbed(embeds.Added(track, position)); err != nil {
			return fmt.Errorf("failed to send queue confirmation: %w", err)
		}
	}
	return nil
}

func toTrack(info sources.TrackInfo, requestedBy, replyTo string) session.Track {
	return session.Track{
		Title:       info.Title,
		URL:         info.URL,
		Duration:    util.FormatDuration(info.Duration),
		Thumbnail:   info.Thumbnail,
		RequestedBy: requestedBy,
		ReplyTo:     replyTo,
		Source:      info.SourceName,
		Parsers:     info.AvailableParsers,
	}
}
