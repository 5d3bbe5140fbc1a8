// Package music holds the playback commands: musica, skip, stop and list.
package music

import (
	"context"

	"github.com/keshon/suenala/internal/command"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/sources"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/rs/zerolog"
)

const (
	replyNotInVoice    = "Debes estar en un canal de voz para usar este comando."
	replyMissingInput  = "Debes proporcionar una URL de YouTube o un término de búsqueda."
	replyNoResults     = "No se encontraron resultados para tu búsqueda."
	replyConnectFailed = "❌ No pude conectarme al canal de voz. Inténtalo de nuevo."
	replyRequestFailed = "❌ Hubo un error al procesar tu solicitud. Inténtalo de nuevo."
	replySkipped       = "⏭️ Canción saltada."
	replyNothingToSkip = "No hay canciones en la cola para saltar."
	replyStopped       = "⏹️ Reproducción detenida y cola limpiada."
	replyNotPlaying    = "No estoy reproduciendo música actualmente."
	replyQueueEmpty    = "No hay canciones en la cola."
)

// Sessions is the part of the session registry the commands drive.
type Sessions interface {
	Enqueue(ctx context.Context, guildID, channelID string, t session.Track) (position int, startedPlaying bool, err error)
	Skip(ctx context.Context, guildID string) error
	Stop(guildID string) error
	List(ctx context.Context, guildID string) (session.Snapshot, error)
}

// Resolver turns user input into track metadata.
type Resolver interface {
	Resolve(ctx context.Context, input string) (sources.TrackInfo, error)
}

// Register adds the playback commands to r.
func Register(r *cmd.Registry, sessions Sessions, resolver Resolver, log zerolog.Logger) error {
	mws := []cmd.Middleware{
		command.WithGuildOnly(),
		command.WithCommandLogger(log),
	}
	for _, c := range []cmd.Command{
		&PlayCommand{Sessions: sessions, Resolver: resolver},
		&SkipCommand{Sessions: sessions},
		&StopCommand{Sessions: sessions},
		&ListCommand{Sessions: sessions},
	} {
		if err := r.Register(cmd.Apply(c, mws...)); err != nil {
			return err
		}
	}
	return nil
}
