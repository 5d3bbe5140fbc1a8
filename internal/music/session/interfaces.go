package session

import (
	"context"
	"io"
)

// Connector opens voice transports.
type Connector interface {
	Connect(ctx context.Context, guildID, channelID string) (Transport, error)
}

// Transport is a connection to one voice channel of one guild.
// Destroy must be safe to call more than once.
type Transport interface {
	WaitReady(ctx context.Context) error
	OpusSend() chan<- []byte
	Speaking(bool) error
	Destroy() error
}

// Opener produces a PCM stream (s16le, 48 kHz, stereo) for a track. ctx bounds the
// lookup only; the returned stream stays valid until it is closed.
type Opener interface {
	Open(ctx context.Context, t Track) (io.ReadCloser, error)
}

// Player streams one resource at a time through a transport. The returned channel
// yields exactly one value: nil on natural end or Stop, an error on a runtime failure.
// Stop returns once the current resource has been released.
type Player interface {
	Play(r io.ReadCloser, t Transport) <-chan error
	Stop()
}

// Notifier delivers asynchronous session events to a track's reply target.
type Notifier interface {
	NowPlaying(t Track)
	TrackFailed(t Track, err error)
	QueueFinished(last Track)
	TransportNotReady(t Track)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) NowPlaying(Track)         {}
func (NopNotifier) TrackFailed(Track, error) {}
func (NopNotifier) QueueFinished(Track)      {}
func (NopNotifier) TransportNotReady(Track)  {}
