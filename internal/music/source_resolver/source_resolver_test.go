package source_resolver

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/sources"
)

type stubSource struct {
	name  string
	match func(string) bool
	fails int
	err   error
	calls int
}

func (s *stubSource) Match(input string) bool { return s.match(input) }
func (s *stubSource) SourceName() string      { return s.name }
func (s *stubSource) AvailableParsers() []string {
	return []string{"p"}
}

func (s *stubSource) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.calls <= s.fails {
		return nil, errors.New("flaky")
	}
	return []sources.TrackInfo{{URL: input, Title: s.name, SourceName: s.name}}, nil
}

func newResolver(search *stubSource, urls ...sources.Source) *SourceResolver {
	r := New(search, urls, time.Second, zerolog.Nop())
	r.retry.InitialDelay = time.Millisecond
	r.retry.MaxDelay = time.Millisecond
	r.retry.Jitter = false
	return r
}

func TestPickSource(t *testing.T) {
	yt := &stubSource{name: "youtube", match: func(s string) bool { return strings.Contains(s, "youtube.com") }}
	radio := &stubSource{name: "radio", match: func(string) bool { return true }}
	r := newResolver(yt, yt, radio)

	cases := map[string]string{
		"some song":                     "youtube",
		"https://www.youtube.com/watch": "youtube",
		"https://stream.example/live":   "radio",
	}
	for in, want := range cases {
		info, err := r.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", in, err)
		}
		if info.SourceName != want {
			t.Errorf("Resolve(%q) used %s, want %s", in, info.SourceName, want)
		}
	}
}

func TestResolveRetriesTransientErrors(t *testing.T) {
	yt := &stubSource{name: "youtube", match: func(string) bool { return false }, fails: 2}
	r := newResolver(yt)

	if _, err := r.Resolve(context.Background(), "song"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if yt.calls != 3 {
		t.Errorf("calls = %d, want 3", yt.calls)
	}
}

func TestResolveNoResultsIsNotRetried(t *testing.T) {
	yt := &stubSource{name: "youtube", match: func(string) bool { return false }, err: sources.ErrNoResults}
	r := newResolver(yt)

	_, err := r.Resolve(context.Background(), "song")
	if !errors.Is(err, session.ErrResolution) || !errors.Is(err, sources.ErrNoResults) {
		t.Fatalf("err = %v", err)
	}
	if yt.calls != 1 {
		t.Errorf("calls = %d, want 1", yt.calls)
	}
}

func TestResolveUnknownURL(t *testing.T) {
	yt := &stubSource{name: "youtube", match: func(string) bool { return false }}
	r := newResolver(yt, yt)

	if _, err := r.Resolve(context.Background(), "https://nowhere.example"); !errors.Is(err, session.ErrResolution) {
		t.Errorf("err = %v", err)
	}
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, session.ErrResolution) {
		t.Errorf("empty input err = %v", err)
	}
}
