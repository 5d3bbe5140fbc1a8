package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/keshon/suenala/pkg/util"
	"github.com/rs/zerolog"
)

// stopWorkers bounds concurrent teardowns during StopAll.
const stopWorkers = 4

// Registry maps guilds to their sessions. It is the only place sessions are created.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	connector Connector
	opener    Opener
	newPlayer func() Player
	notifier  Notifier
	opts      Options
	log       zerolog.Logger
}

// NewRegistry wires the collaborators every session shares.
func NewRegistry(connector Connector, opener Opener, newPlayer func() Player, notifier Notifier, opts Options) *Registry {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		connector: connector,
		opener:    opener,
		newPlayer: newPlayer,
		notifier:  notifier,
		opts:      opts,
		log:       opts.Logger.With().Str("component", "registry").Logger(),
	}
}

// GetOrCreate returns the guild's session, creating an idle one if absent.
func (r *Registry) GetOrCreate(guildID string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s, false
	}
	s = newSession(guildID, r.opener, r.newPlayer, r.notifier, r.opts)
	r.sessions[guildID] = s
	r.log.Debug().Str("guild", guildID).Msg("session created")
	return s, true
}

// Get returns the guild's session if one exists.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Guilds returns the guilds with a session, sorted.
func (r *Registry) Guilds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for g := range r.sessions {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

// EnsureConnected makes sure the guild's session has a ready transport, joining
// channelID if it has none. A failed attempt leaves no transport registered.
func (r *Registry) EnsureConnected(ctx context.Context, guildID, channelID string) error {
	s, _ := r.GetOrCreate(guildID)
	err := r.connect(ctx, s, channelID)
	if errors.Is(err, errSessionGone) {
		return ErrNoActiveSession
	}
	if err != nil {
		r.rollback(s)
	}
	return err
}

func (r *Registry) connect(ctx context.Context, s *Session, channelID string) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.ctx.Err() != nil {
		return errSessionGone
	}
	if s.hasTransport() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.ConnectTimeout)
	defer cancel()

	log := r.log.With().Str("guild", s.guildID).Str("channel", channelID).Logger()
	log.Info().Msg("joining voice channel")

	t, err := r.connector.Connect(ctx, s.guildID, channelID)
	if err != nil {
		log.Warn().Err(err).Msg("voice connect failed")
		return connectError(ctx, err)
	}
	if err := t.WaitReady(ctx); err != nil {
		log.Warn().Err(err).Msg("voice connection never became ready")
		_ = t.Destroy()
		return connectError(ctx, err)
	}
	if err := s.setTransport(t); err != nil {
		_ = t.Destroy()
		return err
	}

	log.Info().Msg("voice connection ready")
	return nil
}

func connectError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrConnectionError, err)
}

// rollback removes a session that never got a transport or a track.
func (r *Registry) rollback(s *Session) {
	snap, err := s.Snapshot(context.Background())
	if err != nil || len(snap.Queue) > 0 || snap.Connected {
		return
	}

	r.mu.Lock()
	if r.sessions[s.guildID] == s {
		delete(r.sessions, s.guildID)
	}
	r.mu.Unlock()

	s.Close()
	r.log.Debug().Str("guild", s.guildID).Msg("empty session rolled back")
}

// Enqueue connects to channelID when needed and appends t to the guild's queue.
// The track is only committed once the transport is ready; on a connection error
// nothing is queued and a session created for this call is removed again.
// A Stop that lands while the connection is being set up wins: Enqueue returns
// ErrStopped and nothing is queued.
func (r *Registry) Enqueue(ctx context.Context, guildID, channelID string, t Track) (position int, startedPlaying bool, err error) {
	for range 2 {
		s, _ := r.GetOrCreate(guildID)
		err = r.connect(ctx, s, channelID)
		if errors.Is(err, errSessionGone) {
			// stale pointer to a session stopped before this attempt began
			continue
		}
		if errors.Is(err, ErrStopped) {
			return 0, false, err
		}
		if err != nil {
			r.rollback(s)
			return 0, false, err
		}
		return s.Enqueue(ctx, t)
	}
	return 0, false, ErrNoActiveSession
}

// Skip advances the guild's queue by one track.
func (r *Registry) Skip(ctx context.Context, guildID string) error {
	s, ok := r.Get(guildID)
	if !ok {
		return ErrNoActiveSession
	}
	return s.Skip(ctx)
}

// List returns a snapshot of the guild's queue.
func (r *Registry) List(ctx context.Context, guildID string) (Snapshot, error) {
	s, ok := r.Get(guildID)
	if !ok {
		return Snapshot{}, ErrNoActiveSession
	}
	return s.Snapshot(ctx)
}

// Stop destroys the guild's session. A second call returns ErrNoActiveSession.
func (r *Registry) Stop(guildID string) error {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if ok {
		delete(r.sessions, guildID)
	}
	r.mu.Unlock()

	if !ok {
		return ErrNoActiveSession
	}
	s.Close()
	r.log.Info().Str("guild", guildID).Msg("session stopped")
	return nil
}

// HandleTransportDestroyed tears the session down after the voice connection went
// away underneath it.
func (r *Registry) HandleTransportDestroyed(guildID string) {
	if err := r.Stop(guildID); err == nil {
		r.log.Info().Str("guild", guildID).Msg("voice connection lost, session removed")
	}
}

// StopAll destroys every session.
func (r *Registry) StopAll(ctx context.Context) error {
	return util.Parallel(ctx, r.Guilds(), stopWorkers, func(_ context.Context, guildID string) error {
		if err := r.Stop(guildID); err != nil && !errors.Is(err, ErrNoActiveSession) {
			return err
		}
		return nil
	})
}
