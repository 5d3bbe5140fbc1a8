package command

import (
	"context"
	"time"

	"github.com/keshon/suenala/pkg/cmd"
	"github.com/rs/zerolog"
)

const adminRequiredReply = "Necesitas permisos de administrador para usar este comando."

// FromInvocation extracts the message context or returns ErrWrongContext.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, error) {
	mc, ok := inv.Data.(*MessageContext)
	if !ok || mc == nil || mc.Event == nil || mc.Event.Message == nil {
		return nil, ErrWrongContext
	}
	return mc, nil
}

// WithGuildOnly drops invocations that do not come from a guild channel.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if mc, ok := inv.Data.(*MessageContext); ok && mc.Event != nil && mc.GuildID() == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithAdminOnly lets only guild administrators through. Others get a reply and
// the invocation fails with ErrPermissionDenied.
func WithAdminOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc, err := FromInvocation(inv)
			if err != nil {
				return err
			}
			id, _ := mc.Author()
			if !mc.Bot.IsAdministrator(mc.GuildID(), mc.ChannelID(), id) {
				_ = mc.Reply(adminRequiredReply)
				return ErrPermissionDenied
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger logs every execution with its outcome and duration.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			if mc, ok := inv.Data.(*MessageContext); ok && mc.Event != nil {
				id, name := mc.Author()
				ev = ev.Str("guild", mc.GuildID()).
					Str("channel", mc.ChannelID()).
					Str("user_id", id).
					Str("user", name)
			}
			ev.Str("command", c.Name()).
				Str("invoked_as", inv.Name).
				Strs("args", inv.Args).
				Dur("took", time.Since(start)).
				Msg("command executed")
			return err
		})
	}
}
