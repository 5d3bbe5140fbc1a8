package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options holds the timings shared by the registry and its sessions.
type Options struct {
	ConnectTimeout time.Duration
	ReadyTimeout   time.Duration
	SettleDelay    time.Duration
	ResolveTimeout time.Duration
	Logger         zerolog.Logger
}

// DefaultOptions returns the production timings.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 30 * time.Second,
		ReadyTimeout:   20 * time.Second,
		SettleDelay:    time.Second,
		ResolveTimeout: 30 * time.Second,
		Logger:         zerolog.Nop(),
	}
}

type enqueueResult struct {
	position int
	started  bool
}

type (
	enqueueEvent struct {
		track Track
		reply chan<- enqueueResult
	}
	skipEvent struct {
		reply chan<- error
	}
	snapshotEvent struct {
		reply chan<- Snapshot
	}
	resolvedEvent struct {
		gen    uint64
		stream io.ReadCloser
		err    error
	}
	endedEvent struct {
		gen uint64
		err error
	}
	advanceEvent struct {
		gen uint64
	}
)

// Session owns one guild's queue, transport and player. All queue and state changes
// happen on a single goroutine that handles events in arrival order.
type Session struct {
	guildID   string
	opener    Opener
	newPlayer func() Player
	notifier  Notifier
	opts      Options
	log       zerolog.Logger

	events    chan any
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	connMu    sync.Mutex // serializes connection attempts
	tmu       sync.RWMutex
	transport Transport

	// owned by the run goroutine
	queue         []Track
	state         State
	player        Player
	gen           uint64
	pending       bool
	timer         *time.Timer
	cancelResolve context.CancelFunc
}

func newSession(guildID string, opener Opener, newPlayer func() Player, notifier Notifier, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		guildID:   guildID,
		opener:    opener,
		newPlayer: newPlayer,
		notifier:  notifier,
		opts:      opts,
		log:       opts.Logger.With().Str("guild", guildID).Logger(),
		events:    make(chan any),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateIdle,
	}
	go s.run()
	return s
}

// GuildID returns the guild the session belongs to.
func (s *Session) GuildID() string { return s.guildID }

// Done is closed once the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Enqueue appends t and starts playback when the session was idle with nothing
// pending. position is 1-based, 1 being the current track.
func (s *Session) Enqueue(ctx context.Context, t Track) (position int, startedPlaying bool, err error) {
	res, err := call(ctx, s, func(reply chan<- enqueueResult) any {
		return enqueueEvent{track: t, reply: reply}
	})
	if err != nil {
		return 0, false, err
	}
	return res.position, res.started, nil
}

// Skip drops the current track and advances the queue the same way a natural
// end does. It returns ErrNoActiveSession when no track is playing or resolving,
// including the settle delay between two tracks.
func (s *Session) Skip(ctx context.Context) error {
	res, err := call(ctx, s, func(reply chan<- error) any {
		return skipEvent{reply: reply}
	})
	if err != nil {
		return err
	}
	return res
}

// Snapshot returns a copy of the queue and state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return call(ctx, s, func(reply chan<- Snapshot) any {
		return snapshotEvent{reply: reply}
	})
}

// Close tears the session down: pending advances are cancelled, the player is
// stopped and the transport destroyed. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(s.cancel)
	<-s.done
}

func (s *Session) hasTransport() bool {
	s.tmu.RLock()
	defer s.tmu.RUnlock()
	return s.transport != nil
}

func (s *Session) currentTransport() Transport {
	s.tmu.RLock()
	defer s.tmu.RUnlock()
	return s.transport
}

func (s *Session) setTransport(t Transport) error {
	s.tmu.Lock()
	defer s.tmu.Unlock()
	if s.ctx.Err() != nil {
		return ErrStopped
	}
	s.transport = t
	return nil
}

// call sends an event built around a reply channel and waits for the answer.
func call[T any](ctx context.Context, s *Session, build func(chan<- T) any) (T, error) {
	var zero T
	reply := make(chan T, 1)

	select {
	case s.events <- build(reply):
	case <-s.done:
		return zero, ErrNoActiveSession
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, ErrNoActiveSession
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// post delivers an internal event unless the session is gone.
func (s *Session) post(ev any) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer s.teardown()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.events:
			if s.ctx.Err() != nil {
				if r, ok := ev.(resolvedEvent); ok && r.stream != nil {
					r.stream.Close()
				}
				return
			}
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev any) {
	switch ev := ev.(type) {
	case enqueueEvent:
		ev.reply <- s.enqueue(ev.track)
	case skipEvent:
		ev.reply <- s.skip()
	case snapshotEvent:
		ev.reply <- s.snapshot()
	case resolvedEvent:
		s.onResolved(ev)
	case endedEvent:
		s.onEnded(ev)
	case advanceEvent:
		s.onAdvance(ev)
	}
}

func (s *Session) enqueue(t Track) enqueueResult {
	s.queue = append(s.queue, t)
	res := enqueueResult{position: len(s.queue)}

	s.log.Info().Str("title", t.Title).Int("position", res.position).Str("state", s.state.String()).Msg("track enqueued")

	// a head left behind by a failed ready wait is picked up again here
	if s.state == StateIdle && !s.pending {
		s.startPlayback()
		res.started = true
	}
	return res
}

// skip only acts on a track that is playing or being resolved. Between tracks
// (settle delay, retry, a head waiting for its transport) there is nothing current
// to skip, so the queue is left alone.
func (s *Session) skip() error {
	switch s.state {
	case StatePlaying:
		s.gen++
		s.player.Stop()
	case StateResolving:
		s.gen++
		s.stopResolve()
	default:
		return ErrNoActiveSession
	}
	head := s.queue[0]

	s.log.Info().Str("title", head.Title).Str("state", s.state.String()).Msg("skipping track")
	s.advance(head)
	return nil
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		GuildID:   s.guildID,
		State:     s.state,
		Queue:     slices.Clone(s.queue),
		Connected: s.hasTransport(),
	}
}

// startPlayback enters Resolving for the head of the queue.
func (s *Session) startPlayback() {
	s.gen++
	s.state = StateResolving

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelResolve = cancel
	go s.resolve(ctx, s.gen, s.queue[0])
}

// resolve waits for the transport and opens the head track off the run goroutine.
func (s *Session) resolve(ctx context.Context, gen uint64, t Track) {
	ev := resolvedEvent{gen: gen}
	defer func() {
		if r := recover(); r != nil {
			ev.err = fmt.Errorf("%w: panic: %v", ErrResolution, r)
		}
		if !s.post(ev) && ev.stream != nil {
			ev.stream.Close()
		}
	}()

	if ev.err = s.awaitTransport(ctx); ev.err != nil {
		return
	}
	ev.stream, ev.err = s.open(ctx, t)
}

func (s *Session) awaitTransport(ctx context.Context) error {
	t := s.currentTransport()
	if t == nil {
		return ErrTransportNotReady
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ReadyTimeout)
	defer cancel()
	if err := t.WaitReady(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrTransportNotReady, err)
	}
	return nil
}

type openResult struct {
	stream io.ReadCloser
	err    error
}

// open bounds the opener by ResolveTimeout even when it ignores its context.
func (s *Session) open(ctx context.Context, t Track) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ResolveTimeout)
	defer cancel()

	ch := make(chan openResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- openResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		stream, err := s.opener.Open(ctx, t)
		ch <- openResult{stream: stream, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrResolution, res.err)
		}
		return res.stream, nil
	case <-ctx.Done():
		go func() {
			if res := <-ch; res.stream != nil {
				res.stream.Close()
			}
		}()
		return nil, fmt.Errorf("%w: %w", ErrResolution, ctx.Err())
	}
}

func (s *Session) onResolved(ev resolvedEvent) {
	if ev.gen != s.gen || s.state != StateResolving {
		if ev.stream != nil {
			ev.stream.Close()
		}
		return
	}
	s.stopResolve()
	head := s.queue[0]

	if ev.err == nil && s.currentTransport() == nil {
		ev.stream.Close()
		ev.err = ErrTransportNotReady
	}

	if ev.err != nil {
		if errors.Is(ev.err, ErrTransportNotReady) {
			s.state = StateIdle
			s.log.Warn().Err(ev.err).Str("title", head.Title).Msg("transport not ready, keeping track at head")
			s.notifier.TransportNotReady(head)
			return
		}
		s.fail(head, ev.err)
		return
	}

	if s.player == nil {
		s.player = s.newPlayer()
	}
	done := s.player.Play(ev.stream, s.currentTransport())
	s.state = StatePlaying

	gen := s.gen
	go func() {
		err := <-done
		s.post(endedEvent{gen: gen, err: err})
	}()

	s.log.Info().Str("title", head.Title).Str("url", head.URL).Msg("now playing")
	s.notifier.NowPlaying(head)
}

func (s *Session) onEnded(ev endedEvent) {
	if ev.gen != s.gen || s.state != StatePlaying {
		return
	}
	head := s.queue[0]

	if ev.err != nil {
		s.fail(head, fmt.Errorf("%w: %w", ErrPlaybackRuntime, ev.err))
		return
	}
	s.log.Debug().Str("title", head.Title).Msg("track ended")
	s.advance(head)
}

func (s *Session) onAdvance(ev advanceEvent) {
	if ev.gen != s.gen || !s.pending {
		return
	}
	s.pending = false
	s.timer = nil

	if len(s.queue) == 0 {
		s.state = StateIdle
		return
	}
	s.startPlayback()
}

// advance pops the finished head. Natural end and skip both come through here.
func (s *Session) advance(finished Track) {
	s.pop()
	s.state = StateIdle
	if len(s.queue) > 0 {
		s.scheduleAdvance()
		return
	}
	s.log.Info().Msg("queue finished")
	s.notifier.QueueFinished(finished)
}

// fail drops the head after a resolution or playback error.
func (s *Session) fail(head Track, err error) {
	s.log.Warn().Err(err).Str("title", head.Title).Str("url", head.URL).Msg("track failed")
	s.notifier.TrackFailed(head, err)

	s.pop()
	if len(s.queue) > 0 {
		s.state = StateRetrying
		s.scheduleAdvance()
		return
	}
	s.state = StateIdle
}

func (s *Session) pop() {
	if len(s.queue) > 0 {
		s.queue[0] = Track{}
		s.queue = s.queue[1:]
	}
}

// scheduleAdvance re-enters playback after the settle delay. Any later state change
// bumps gen, so a timer that fires late is ignored.
func (s *Session) scheduleAdvance() {
	s.stopTimer()
	s.gen++
	gen := s.gen
	s.pending = true
	s.timer = time.AfterFunc(s.opts.SettleDelay, func() {
		s.post(advanceEvent{gen: gen})
	})
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

func (s *Session) stopResolve() {
	if s.cancelResolve != nil {
		s.cancelResolve()
		s.cancelResolve = nil
	}
}

func (s *Session) teardown() {
	s.stopTimer()
	s.stopResolve()
	if s.player != nil {
		s.player.Stop()
	}

	s.tmu.Lock()
	t := s.transport
	s.transport = nil
	s.tmu.Unlock()

	if t != nil {
		if err := t.Destroy(); err != nil {
			s.log.Warn().Err(err).Msg("destroy transport")
		}
	}
	s.queue = nil
	s.state = StateIdle
	s.log.Info().Msg("session closed")
}
