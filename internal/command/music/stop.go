package music

import (
	"context"
	"errors"

	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/pkg/cmd"
)

type StopCommand struct {
	Sessions Sessions
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Detiene la música y limpia la cola" }

func (c *StopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}
	if mc.AuthorVoiceChannel() == "" {
		return mc.Reply(replyNotInVoice)
	}

	if err := c.Sessions.Stop(mc.GuildID()); err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			return mc.Reply(replyNotPlaying)
		}
		return err
	}
	return mc.Reply(replyStopped)
}
