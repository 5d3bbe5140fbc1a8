package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/rs/zerolog"
)

const readyPollInterval = 50 * time.Millisecond

// Voice joins voice channels and tracks the connections it handed out.
type Voice struct {
	dg  *discordgo.Session
	log zerolog.Logger

	mu   sync.Mutex
	live map[string]*voiceTransport
}

func newVoice(dg *discordgo.Session, log zerolog.Logger) *Voice {
	return &Voice{
		dg:   dg,
		log:  log.With().Str("component", "voice").Logger(),
		live: make(map[string]*voiceTransport),
	}
}

type joinResult struct {
	vc  *discordgo.VoiceConnection
	err error
}

// Connect joins channelID. The join itself cannot be cancelled; when ctx ends first
// the late connection is torn down as soon as it arrives.
func (v *Voice) Connect(ctx context.Context, guildID, channelID string) (session.Transport, error) {
	ch := make(chan joinResult, 1)
	go func() {
		vc, err := v.dg.ChannelVoiceJoin(guildID, channelID, false, true)
		ch <- joinResult{vc, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if r.vc != nil {
				_ = r.vc.Disconnect()
			}
			return nil, r.err
		}
		return v.track(guildID, r.vc), nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.vc != nil {
				_ = r.vc.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
}

func (v *Voice) track(guildID string, vc *discordgo.VoiceConnection) *voiceTransport {
	t := &voiceTransport{vc: vc}
	t.onDestroy = func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.live[guildID] == t {
			delete(v.live, guildID)
		}
	}

	v.mu.Lock()
	v.live[guildID] = t
	v.mu.Unlock()
	return t
}

// lost reports whether guildID still has a transport that nobody destroyed.
func (v *Voice) lost(guildID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.live[guildID]
	return ok
}

type voiceTransport struct {
	vc        *discordgo.VoiceConnection
	onDestroy func()

	once sync.Once
	err  error
}

func (t *voiceTransport) ready() bool {
	t.vc.RLock()
	defer t.vc.RUnlock()
	return t.vc.Ready
}

// WaitReady polls the connection until it reports ready or ctx ends.
func (t *voiceTransport) WaitReady(ctx context.Context) error {
	if t.ready() {
		return nil
	}
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if t.ready() {
				return nil
			}
		}
	}
}

func (t *voiceTransport) OpusSend() chan<- []byte { return t.vc.OpusSend }

func (t *voiceTransport) Speaking(on bool) error { return t.vc.Speaking(on) }

// Destroy leaves the channel once; later calls return the first result.
func (t *voiceTransport) Destroy() error {
	t.once.Do(func() {
		if t.onDestroy != nil {
			t.onDestroy()
		}
		t.err = t.vc.Disconnect()
	})
	return t.err
}
