package radio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/keshon/suenala/internal/music/sources"
)

func TestResolveAudioStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/live":
			w.Header().Set("Content-Type", "audio/mpeg; charset=utf-8")
		case "/nohead":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Content-Type", "audio/aac")
			w.Write([]byte("data"))
		default:
			w.Header().Set("Content-Type", "text/html")
		}
	}))
	defer srv.Close()

	src := New()

	for _, p := range []string{"/live", "/nohead"} {
		infos, err := src.Resolve(context.Background(), srv.URL+p)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", p, err)
		}
		info := infos[0]
		if info.SourceName != sources.SourceRadio || info.AvailableParsers[0] != sources.ParserFFmpegLink {
			t.Errorf("info = %+v", info)
		}
		if !strings.HasSuffix(info.Title, p) {
			t.Errorf("title = %q", info.Title)
		}
		if info.Duration != 0 {
			t.Errorf("duration = %v, want unknown", info.Duration)
		}
	}

	if _, err := src.Resolve(context.Background(), srv.URL+"/page"); err == nil {
		t.Error("html page accepted as a stream")
	}
}

func TestIsLikelyPlaylist(t *testing.T) {
	if !isLikelyPlaylist("http://x/stream.M3U8") {
		t.Error("m3u8 not recognised")
	}
	if isLikelyPlaylist("http://x/index.html") {
		t.Error("html treated as playlist")
	}
}
