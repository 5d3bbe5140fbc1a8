// Package phrases holds the phrase commands: frase, addfrase and setfraseschannel.
package phrases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/internal/discord/embeds"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/rs/zerolog"
)

// Phrases is the phrase service the commands use.
type Phrases interface {
	Random() string
	Add(text string) error
	SetChannel(channelID string)
}

// Register adds the phrase commands to r. Changing phrases or the daily channel
// requires administrator rights.
func Register(r *cmd.Registry, svc Phrases, log zerolog.Logger) error {
	open := []cmd.Middleware{command.WithGuildOnly(), command.WithCommandLogger(log)}
	admin := []cmd.Middleware{command.WithGuildOnly(), command.WithAdminOnly(), command.WithCommandLogger(log)}

	for _, c := range []cmd.Command{
		cmd.Apply(&PhraseCommand{Phrases: svc, Now: time.Now}, open...),
		cmd.Apply(&AddPhraseCommand{Phrases: svc}, admin...),
		cmd.Apply(&SetChannelCommand{Phrases: svc}, admin...),
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

type PhraseCommand struct {
	Phrases Phrases
	Now     func() time.Time
}

func (c *PhraseCommand) Name() string        { return "frase" }
func (c *PhraseCommand) Description() string { return "Muestra una frase motivacional al azar" }

func (c *PhraseCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}
	return mc.SendEmbed(embeds.Phrase(c.Phrases.Random(), c.Now()))
}

type AddPhraseCommand struct {
	Phrases Phrases
}

func (c *AddPhraseCommand) Name() string        { return "addfrase" }
func (c *AddPhraseCommand) Description() string { return "Agrega una frase a la colección" }

func (c *AddPhraseCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(inv.Args, " "))
	if text == "" {
		return mc.Reply("Debes proporcionar una frase para agregar.")
	}
	if err := c.Phrases.Add(text); err != nil {
		_ = mc.Reply("Ocurrió un error al agregar la frase.")
		return err
	}
	return mc.Reply(fmt.Sprintf("Frase agregada: \"%s\"", text))
}

type SetChannelCommand struct {
	Phrases Phrases
}

func (c *SetChannelCommand) Name() string        { return "setfraseschannel" }
func (c *SetChannelCommand) Description() string { return "Envía la frase del día a este canal" }

func (c *SetChannelCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}
	c.Phrases.SetChannel(mc.ChannelID())
	return mc.Reply(fmt.Sprintf("Canal configurado para recibir frases diarias: <#%s>", mc.ChannelID()))
}
