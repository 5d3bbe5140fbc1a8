package music

import (
	"context"
	"errors"

	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/internal/discord/embeds"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/pkg/cmd"
)

type ListCommand struct {
	Sessions Sessions
}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "Muestra la cola de reproducción" }
func (c *ListCommand) Aliases() []string   { return []string{"queue"} }

func (c *ListCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	snap, err := c.Sessions.List(ctx, mc.GuildID())
	if err != nil && !errors.Is(err, session.ErrNoActiveSession) {
		return err
	}
	if len(snap.Queue) == 0 {
		return mc.Reply(replyQueueEmpty)
	}
	return mc.SendEmbed(embeds.Queue(snap))
}
