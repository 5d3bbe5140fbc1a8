package player

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/stream"
)

var ErrNoTransport = errors.New("no voice transport")

// Player streams one PCM resource at a time through a voice transport.
type Player struct {
	volume float64
	log    zerolog.Logger

	mu           sync.Mutex
	stopPlayback chan struct{}
	playbackDone chan struct{}
	current      io.ReadCloser
}

// New creates a Player that scales output by volume.
func New(volume float64, log zerolog.Logger) *Player {
	return &Player{
		volume: volume,
		log:    log.With().Str("component", "player").Logger(),
	}
}

// Play stops whatever is playing and starts r on t. The returned channel receives
// nil on a clean end or Stop and an error when streaming fails.
func (p *Player) Play(r io.ReadCloser, t session.Transport) <-chan error {
	p.Stop()

	result := make(chan error, 1)
	stop := make(chan struct{})
	done := make(chan struct{})

	p.mu.Lock()
	p.stopPlayback = stop
	p.playbackDone = done
	p.current = r
	p.mu.Unlock()

	go func() {
		defer close(done)
		result <- p.runPlayback(r, t, stop)
	}()

	return result
}

// Stop ends the current resource and waits for the streaming goroutine to exit.
func (p *Player) Stop() {
	p.mu.Lock()
	stop, done, r := p.stopPlayback, p.playbackDone, p.current
	p.stopPlayback, p.playbackDone, p.current = nil, nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	// unblocks a pending read
	r.Close()
	<-done
}

func (p *Player) runPlayback(r io.ReadCloser, t session.Transport, stop <-chan struct{}) (err error) {
	defer r.Close()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("playback panic: %v", rec)
		}
	}()

	if t == nil {
		return ErrNoTransport
	}

	if err := t.Speaking(true); err != nil {
		p.log.Warn().Err(err).Msg("could not set speaking state")
	}
	defer func() {
		if err := t.Speaking(false); err != nil {
			p.log.Debug().Err(err).Msg("could not clear speaking state")
		}
	}()

	if err := stream.StreamOpus(r, stop, t.OpusSend(), p.volume); err != nil {
		p.log.Warn().Err(err).Msg("playback finished with error")
		return err
	}
	p.log.Debug().Msg("playback finished")
	return nil
}
