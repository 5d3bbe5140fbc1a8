// Package embeds renders the bot's rich messages.
package embeds

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
	"github.com/keshon/suenala/internal/music/session"
)

const (
	ColorNowPlaying  = 0x00FF00
	ColorAdded       = 0xFFA500
	ColorInfo        = 0x0099FF
	ColorDailyPhrase = 0xFFD700
)

// MaxUpcoming is how many queued tracks the queue embed lists after the current one.
const MaxUpcoming = 9

// NowPlaying announces the track that just started.
func NowPlaying(t session.Track) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetTitle("🎵 Suenalaaaa!").
		SetDescription(fmt.Sprintf("**%s**", t.Title)).
		AddField("Duración", t.DisplayDuration()).
		AddField("La Pidio este veneco", orDash(t.RequestedBy)).
		SetColor(ColorNowPlaying).
		InlineAllFields()
	if t.Thumbnail != "" {
		e.SetThumbnail(t.Thumbnail)
	}
	return e.MessageEmbed
}

// Added confirms a track was queued behind others.
func Added(t session.Track, position int) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetTitle("📝 Canción añadida a la cola").
		SetDescription(fmt.Sprintf("**%s**", t.Title)).
		AddField("Posición en cola", fmt.Sprint(position)).
		AddField("Duración", t.DisplayDuration()).
		AddField("Solicitado por", orDash(t.RequestedBy)).
		SetColor(ColorAdded).
		InlineAllFields()
	if t.Thumbnail != "" {
		e.SetThumbnail(t.Thumbnail)
	}
	return e.MessageEmbed
}

// Queue lists the current track and up to MaxUpcoming tracks after it.
// The snapshot must hold at least one track.
func Queue(snap session.Snapshot) *discordgo.MessageEmbed {
	current, _ := snap.Current()
	e := embed.NewEmbed().
		SetTitle("🎵 Cola de reproducción").
		SetDescription(fmt.Sprintf("**Reproduciendo ahora:** [%s](%s)", current.Title, current.URL)).
		SetColor(ColorInfo)

	if upcoming := snap.Upcoming(); len(upcoming) > 0 {
		var b strings.Builder
		for i, t := range upcoming {
			if i == MaxUpcoming {
				break
			}
			fmt.Fprintf(&b, "%d. [%s](%s) - Solicitado por: %s\n", i+1, t.Title, t.URL, orDash(t.RequestedBy))
		}
		e.AddField("Próximas canciones", b.String())
	}
	// field values are capped at 1024 characters
	return e.Truncate().MessageEmbed
}

// Phrase shows a phrase requested with the frase command.
func Phrase(text string, at time.Time) *discordgo.MessageEmbed {
	return phrase("Ecualiza tu Factous", text, ColorInfo, at)
}

// DailyPhrase is the scheduled morning phrase.
func DailyPhrase(text string, at time.Time) *discordgo.MessageEmbed {
	return phrase("🌅 Frase del Día", text, ColorDailyPhrase, at)
}

func phrase(title, text string, color int, at time.Time) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetTitle(title).
		SetDescription(text).
		SetColor(color)
	e.Timestamp = at.Format(time.RFC3339)
	return e.MessageEmbed
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
