package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/suenala/internal/discord/embeds"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/rs/zerolog"
)

// NotifierJobName is the jobmgr name of the notification sender.
const NotifierJobName = "notifier"

const (
	msgTrackFailed       = "❌ Error al reproducir la canción. Intentando con la siguiente..."
	msgQueueFinished     = "✅ Se acabo esta vaina."
	msgTransportNotReady = "❌ La conexión de voz no está lista. La canción sigue en la cola."
)

const outboxSize = 64

// Sender posts messages to a text channel.
type Sender interface {
	SendText(channelID, content string) error
	SendEmbed(channelID string, e *discordgo.MessageEmbed) error
}

type outgoing struct {
	channelID string
	text      string
	embed     *discordgo.MessageEmbed
}

// Notifier implements session.Notifier. Messages are queued and sent in order by
// Run, so a slow API call never holds up a session.
type Notifier struct {
	sender Sender
	outbox chan outgoing
	log    zerolog.Logger
}

// NewNotifier returns a notifier; nothing is delivered until Run is started.
func NewNotifier(sender Sender, log zerolog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		outbox: make(chan outgoing, outboxSize),
		log:    log.With().Str("component", "notifier").Logger(),
	}
}

func (n *Notifier) NowPlaying(t session.Track) {
	n.enqueue(outgoing{channelID: t.ReplyTo, embed: embeds.NowPlaying(t)})
}

func (n *Notifier) TrackFailed(t session.Track, err error) {
	n.log.Warn().Err(err).Str("title", t.Title).Str("url", t.URL).Msg("track failed")
	n.enqueue(outgoing{channelID: t.ReplyTo, text: msgTrackFailed})
}

func (n *Notifier) QueueFinished(last session.Track) {
	n.enqueue(outgoing{channelID: last.ReplyTo, text: msgQueueFinished})
}

func (n *Notifier) TransportNotReady(t session.Track) {
	n.enqueue(outgoing{channelID: t.ReplyTo, text: msgTransportNotReady})
}

func (n *Notifier) enqueue(m outgoing) {
	if m.channelID == "" {
		return
	}
	select {
	case n.outbox <- m:
	default:
		n.log.Warn().Str("channel", m.channelID).Msg("notification outbox full, dropping message")
	}
}

// Run delivers queued messages until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-n.outbox:
			var err error
			if m.embed != nil {
				err = n.sender.SendEmbed(m.channelID, m.embed)
			} else {
				err = n.sender.SendText(m.channelID, m.text)
			}
			if err != nil {
				n.log.Warn().Err(err).Str("channel", m.channelID).Msg("failed to send notification")
			}
		}
	}
}

var _ session.Notifier = (*Notifier)(nil)
