package music

import (
	"context"
	"errors"

	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/pkg/cmd"
)

type SkipCommand struct {
	Sessions Sessions
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Salta la canción actual" }

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}
	if mc.AuthorVoiceChannel() == "" {
		return mc.Reply(replyNotInVoice)
	}

	err = c.Sessions.Skip(ctx, mc.GuildID())
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		return mc.Reply(replyNothingToSkip)
	case err != nil:
		_ = mc.Reply(replyRequestFailed)
		return err
	}
	return mc.Reply(replySkipped)
}
