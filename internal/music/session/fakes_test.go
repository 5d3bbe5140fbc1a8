package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testOptions() Options {
	return Options{
		ConnectTimeout: 200 * time.Millisecond,
		ReadyTimeout:   100 * time.Millisecond,
		SettleDelay:    20 * time.Millisecond,
		ResolveTimeout: 150 * time.Millisecond,
		Logger:         zerolog.Nop(),
	}
}

func track(title string) Track {
	return Track{
		Title:       title,
		URL:         "https://www.youtube.com/watch?v=" + title,
		Duration:    "3:45",
		RequestedBy: "tester",
		ReplyTo:     "text-" + title,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// fakeTransport is ready unless notReady is set.
type fakeTransport struct {
	notReady  atomic.Bool
	destroyed atomic.Int32
	send      chan []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{send: make(chan []byte, 16)}
}

func (f *fakeTransport) WaitReady(ctx context.Context) error {
	if f.notReady.Load() {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeTransport) OpusSend() chan<- []byte { return f.send }
func (f *fakeTransport) Speaking(bool) error     { return nil }

func (f *fakeTransport) Destroy() error {
	f.destroyed.Add(1)
	return nil
}

type fakeConnector struct {
	mu         sync.Mutex
	err        error
	block      bool
	gate       chan struct{} // holds Connect until closed
	calls      int
	transports []*fakeTransport
}

func (c *fakeConnector) Connect(ctx context.Context, guildID, channelID string) (Transport, error) {
	c.mu.Lock()
	c.calls++
	err, block, gate := c.err, c.block, c.gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	t := newFakeTransport()
	c.mu.Lock()
	c.transports = append(c.transports, t)
	c.mu.Unlock()
	return t, nil
}

func (c *fakeConnector) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeConnector) last() *fakeTransport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.transports) == 0 {
		return nil
	}
	return c.transports[len(c.transports)-1]
}

type fakeStream struct {
	io.Reader
	closed atomic.Bool
}

func (f *fakeStream) Close() error {
	f.closed.Store(true)
	return nil
}

// fakeOpener fails titles listed in errs and holds titles listed in gates until
// their gate is closed. Titles in hang block forever, ignoring ctx.
type fakeOpener struct {
	mu     sync.Mutex
	errs   map[string]error
	gates  map[string]chan struct{}
	hang   map[string]bool
	opened []string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
		hang:  map[string]bool{},
	}
}

func (o *fakeOpener) Open(ctx context.Context, t Track) (io.ReadCloser, error) {
	o.mu.Lock()
	o.opened = append(o.opened, t.Title)
	err := o.errs[t.Title]
	gate := o.gates[t.Title]
	hang := o.hang[t.Title]
	o.mu.Unlock()

	if hang {
		select {}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &fakeStream{Reader: strings.NewReader("pcm")}, nil
}

func (o *fakeOpener) openCount(title string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, got := range o.opened {
		if got == title {
			n++
		}
	}
	return n
}

// fakePlayer plays until finish or Stop.
type fakePlayer struct {
	mu      sync.Mutex
	current chan error
	stream  io.ReadCloser
	plays   int
	stops   int
}

func (p *fakePlayer) Play(r io.ReadCloser, t Transport) <-chan error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan error, 1)
	p.current = ch
	p.stream = r
	p.plays++
	return ch
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	p.end(nil)
}

// finish ends the current resource as if the player reported err.
func (p *fakePlayer) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.end(err)
}

func (p *fakePlayer) end(err error) {
	if p.current == nil {
		return
	}
	if p.stream != nil {
		p.stream.Close()
	}
	p.current <- err
	p.current = nil
}

func (p *fakePlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

// recorder collects notifications as "kind:title" strings.
type recorder struct {
	mu     sync.Mutex
	events []string
	errs   []error
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) NowPlaying(t Track)    { r.add("playing:" + t.Title) }
func (r *recorder) QueueFinished(t Track) { r.add("finished:" + t.Title) }
func (r *recorder) TransportNotReady(t Track) {
	r.add("notready:" + t.Title)
}

func (r *recorder) TrackFailed(t Track, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.add("failed:" + t.Title)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) has(s string) bool {
	for _, e := range r.list() {
		if e == s {
			return true
		}
	}
	return false
}

func (r *recorder) count(s string) int {
	n := 0
	for _, e := range r.list() {
		if e == s {
			n++
		}
	}
	return n
}

func (r *recorder) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

type harness struct {
	reg       *Registry
	connector *fakeConnector
	opener    *fakeOpener
	notes     *recorder

	mu      sync.Mutex
	players map[*fakePlayer]struct{}
	latest  *fakePlayer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, testOptions())
}

func newHarnessWith(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		connector: &fakeConnector{},
		opener:    newFakeOpener(),
		notes:     &recorder{},
		players:   map[*fakePlayer]struct{}{},
	}
	h.reg = NewRegistry(h.connector, h.opener, func() Player {
		p := &fakePlayer{}
		h.mu.Lock()
		h.players[p] = struct{}{}
		h.latest = p
		h.mu.Unlock()
		return p
	}, h.notes, opts)
	t.Cleanup(func() { _ = h.reg.StopAll(context.Background()) })
	return h
}

func (h *harness) player() *fakePlayer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

func (h *harness) enqueue(t *testing.T, guild string, tr Track) (int, bool) {
	t.Helper()
	pos, started, err := h.reg.Enqueue(context.Background(), guild, "voice-"+guild, tr)
	if err != nil {
		t.Fatalf("Enqueue(%s, %s): %v", guild, tr.Title, err)
	}
	return pos, started
}

func (h *harness) snapshot(t *testing.T, guild string) Snapshot {
	t.Helper()
	snap, err := h.reg.List(context.Background(), guild)
	if err != nil {
		t.Fatalf("List(%s): %v", guild, err)
	}
	return snap
}

func titles(ts []Track) string {
	out := make([]string, len(ts))
	for i, tr := range ts {
		out[i] = tr.Title
	}
	return strings.Join(out, ",")
}

func (h *harness) waitState(t *testing.T, guild string, want State) {
	t.Helper()
	waitFor(t, fmt.Sprintf("%s to be %s", guild, want), func() bool {
		snap, err := h.reg.List(context.Background(), guild)
		return err == nil && snap.State == want
	})
}

var errBoom = errors.New("boom")
