package music

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/keshon/suenala/internal/command/commandtest"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/sources"
	"github.com/keshon/suenala/pkg/cmd"
	"github.com/rs/zerolog"
)

type fakeSessions struct {
	queue      []session.Track
	voice      string
	enqueueErr error
	active     bool
}

func (f *fakeSessions) Enqueue(ctx context.Context, guildID, channelID string, t session.Track) (int, bool, error) {
	if f.enqueueErr != nil {
		return 0, false, f.enqueueErr
	}
	f.voice = channelID
	f.active = true
	f.queue = append(f.queue, t)
	return len(f.queue), len(f.queue) == 1, nil
}

func (f *fakeSessions) Skip(ctx context.Context, guildID string) error {
	if len(f.queue) == 0 {
		return session.ErrNoActiveSession
	}
	f.queue = f.queue[1:]
	return nil
}

func (f *fakeSessions) Stop(guildID string) error {
	if !f.active {
		return session.ErrNoActiveSession
	}
	f.active = false
	f.queue = nil
	return nil
}

func (f *fakeSessions) List(ctx context.Context, guildID string) (session.Snapshot, error) {
	if !f.active {
		return session.Snapshot{}, session.ErrNoActiveSession
	}
	return session.Snapshot{GuildID: guildID, Queue: append([]session.Track(nil), f.queue...)}, nil
}

type fakeResolver struct {
	err error
}

func (f *fakeResolver) Resolve(ctx context.Context, input string) (sources.TrackInfo, error) {
	if f.err != nil {
		return sources.TrackInfo{}, f.err
	}
	return sources.TrackInfo{
		Title:            "title of " + input,
		URL:              "https://www.youtube.com/watch?v=" + input,
		Duration:         225 * time.Second,
		SourceName:       sources.SourceYouTube,
		AvailableParsers: []string{sources.ParserKkdaiLink},
	}, nil
}

type fixture struct {
	reg      *cmd.Registry
	bot      *commandtest.Bot
	sessions *fakeSessions
	resolver *fakeResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reg:      cmd.NewRegistry(),
		bot:      commandtest.NewBot(),
		sessions: &fakeSessions{},
		resolver: &fakeResolver{},
	}
	if err := Register(f.reg, f.sessions, f.resolver, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	f.bot.Voice["ana"] = "voice-1"
	return f
}

func (f *fixture) run(t *testing.T, name, user string, args ...string) error {
	t.Helper()
	c := f.reg.Get(name)
	if c == nil {
		t.Fatalf("command %q not registered", name)
	}
	return c.Run(context.Background(), f.bot.Invocation(name, user, args...))
}

func TestPlayFirstTrackStartsWithoutQueueEmbed(t *testing.T) {
	f := newFixture(t)
	if err := f.run(t, "m", "ana", "despacito"); err != nil {
		t.Fatal(err)
	}
	if f.sessions.voice != "voice-1" {
		t.Fatalf("joined %q", f.sessions.voice)
	}
	got := f.sessions.queue[0]
	if got.Duration != "3:45" || got.RequestedBy != "ana" || got.ReplyTo != "text-1" || got.Parsers[0] != sources.ParserKkdaiLink {
		t.Fatalf("track = %+v", got)
	}
	if len(f.bot.Embeds) != 0 {
		t.Fatal("the session announces the first track, not the command")
	}
}

func TestPlaySecondTrackShowsPosition(t *testing.T) {
	f := newFixture(t)
	_ = f.run(t, "musica", "ana", "uno")
	if err := f.run(t, "musica", "ana", "dos"); err != nil {
		t.Fatal(err)
	}
	e := f.bot.LastEmbed()
	if e == nil || e.Title != "📝 Canción añadida a la cola" || e.Fields[0].Value != "2" {
		t.Fatalf("embed = %+v", e)
	}
}

func TestPlayReplies(t *testing.T) {
	tests := []struct {
		name       string
		user       string
		args       []string
		resolveErr error
		enqueueErr error
		want       string
	}{
		{"not in voice", "bob", []string{"x"}, nil, nil, replyNotInVoice},
		{"no input", "ana", nil, nil, nil, replyMissingInput},
		{"no results", "ana", []string{"zzz"}, fmt.Errorf("%w: %w", session.ErrResolution, sources.ErrNoResults), nil, replyNoResults},
		{"lookup failed", "ana", []string{"x"}, session.ErrResolution, nil, replyRequestFailed},
		{"connect timeout", "ana", []string{"x"}, nil, fmt.Errorf("%w: slow", session.ErrConnectionTimeout), replyConnectFailed},
		{"connect error", "ana", []string{"x"}, nil, session.ErrConnectionError, replyConnectFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.resolver.err = tt.resolveErr
			f.sessions.enqueueErr = tt.enqueueErr
			_ = f.run(t, "musica", tt.user, tt.args...)
			if got := f.bot.LastReply(); got != tt.want {
				t.Fatalf("reply = %q, want %q", got, tt.want)
			}
			if len(f.sessions.queue) != 0 {
				t.Fatal("nothing should be queued")
			}
		})
	}
}

func TestPlayStoppedWhileJoiningIsQuiet(t *testing.T) {
	f := newFixture(t)
	f.sessions.enqueueErr = session.ErrStopped
	if err := f.run(t, "musica", "ana", "x"); err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(f.bot.Replies) != 0 || len(f.bot.Embeds) != 0 {
		t.Fatalf("replies = %v, embeds = %d", f.bot.Replies, len(f.bot.Embeds))
	}
}

func TestSkip(t *testing.T) {
	f := newFixture(t)
	_ = f.run(t, "skip", "ana")
	if f.bot.LastReply() != replyNothingToSkip {
		t.Fatalf("reply = %q", f.bot.LastReply())
	}

	_ = f.run(t, "musica", "ana", "uno")
	_ = f.run(t, "musica", "ana", "dos")
	if err := f.run(t, "skip", "ana"); err != nil {
		t.Fatal(err)
	}
	if f.bot.LastReply() != replySkipped || len(f.sessions.queue) != 1 {
		t.Fatalf("reply = %q queue = %d", f.bot.LastReply(), len(f.sessions.queue))
	}

	_ = f.run(t, "skip", "bob")
	if f.bot.LastReply() != replyNotInVoice {
		t.Fatalf("reply = %q", f.bot.LastReply())
	}
}

func TestStop(t *testing.T) {
	f := newFixture(t)
	_ = f.run(t, "stop", "ana")
	if f.bot.LastReply() != replyNotPlaying {
		t.Fatalf("reply = %q", f.bot.LastReply())
	}

	_ = f.run(t, "musica", "ana", "uno")
	_ = f.run(t, "stop", "ana")
	if f.bot.LastReply() != replyStopped {
		t.Fatalf("reply = %q", f.bot.LastReply())
	}
	_ = f.run(t, "stop", "ana")
	if f.bot.LastReply() != replyNotPlaying {
		t.Fatal("second stop must report nothing playing")
	}
}

func TestListAndQueueAlias(t *testing.T) {
	f := newFixture(t)
	_ = f.run(t, "queue", "ana")
	if f.bot.LastReply() != replyQueueEmpty {
		t.Fatalf("reply = %q", f.bot.LastReply())
	}

	_ = f.run(t, "musica", "ana", "uno")
	_ = f.run(t, "musica", "ana", "dos")
	if err := f.run(t, "list", "bob"); err != nil {
		t.Fatal(err)
	}
	e := f.bot.LastEmbed()
	if e == nil || e.Title != "🎵 Cola de reproducción" || len(e.Fields) != 1 {
		t.Fatalf("embed = %+v", e)
	}
}
