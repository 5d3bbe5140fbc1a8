package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"github.com/keshon/suenala/internal/music/parsers"
	"github.com/keshon/suenala/internal/music/parsers/ffmpeg"
	"github.com/keshon/suenala/internal/music/parsers/kkdai"
	"github.com/keshon/suenala/internal/music/parsers/ytdlp"
	"github.com/keshon/suenala/internal/music/session"
	"github.com/keshon/suenala/internal/music/sources"
)

// NewStreamersRegistry maps parser names to streamers. yt is shared by both kkdai modes.
func NewStreamersRegistry(yt *youtube.Client) map[string]parsers.Streamer {
	kk := &kkdai.KKDAIStreamer{Client: yt}
	return map[string]parsers.Streamer{
		sources.ParserKkdaiLink:  kk,
		sources.ParserKkdaiPipe:  kk,
		sources.ParserYtdlpLink:  &ytdlp.YTDLPStreamer{},
		sources.ParserFFmpegLink: &ffmpeg.FFMPEGStreamer{},
	}
}

func isPipeMode(parser string) bool {
	return parser == sources.ParserKkdaiPipe
}

// TrackStream is an open PCM stream. Close releases the decoder and is idempotent.
type TrackStream struct {
	io.ReadCloser
	parser  string
	cleanup func()
	once    sync.Once
}

// GetMode returns the parser the stream was opened with.
func (m *TrackStream) GetMode() string {
	return m.parser
}

func (m *TrackStream) Close() error {
	var err error
	m.once.Do(func() {
		err = m.ReadCloser.Close()
		if m.cleanup != nil {
			m.cleanup()
		}
	})
	return err
}

// OpenStream opens track with a single parser.
func OpenStream(ctx context.Context, registry map[string]parsers.Streamer, track *parsers.TrackParse, parser string) (*TrackStream, error) {
	streamer, ok := registry[parser]
	if !ok {
		return nil, fmt.Errorf("streamer not found for parser: %v", parser)
	}

	var (
		r       io.ReadCloser
		cleanup func()
		err     error
	)
	if isPipeMode(parser) && streamer.SupportsPipe() {
		r, cleanup, err = streamer.GetPipeStream(ctx, track)
	} else {
		r, cleanup, err = streamer.GetLinkStream(ctx, track)
	}
	if err != nil {
		return nil, err
	}

	return &TrackStream{ReadCloser: r, parser: parser, cleanup: cleanup}, nil
}

// AutoOpenStream tries each parser in order and returns the first stream that opens.
func AutoOpenStream(ctx context.Context, registry map[string]parsers.Streamer, track *parsers.TrackParse, order []string, log zerolog.Logger) (*TrackStream, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("no parsers available for track %s", track.URL)
	}

	var errs []error
	for _, parser := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		track.CurrentParser = parser
		s, err := OpenStream(ctx, registry, track, parser)
		if err == nil {
			log.Debug().Str("parser", parser).Str("url", track.URL).Msg("stream opened")
			return s, nil
		}

		errs = append(errs, fmt.Errorf("parser %s failed: %w", parser, err))
		log.Warn().Err(err).Str("parser", parser).Str("url", track.URL).Msg("parser failed, trying next")
	}

	return nil, fmt.Errorf("all parsers failed for track %s: %w", track.URL, errors.Join(errs...))
}

// Opener opens session tracks through the parser registry.
type Opener struct {
	registry map[string]parsers.Streamer
	fallback []string
	log      zerolog.Logger
}

// NewOpener returns an Opener. Tracks without their own parser list use fallback.
func NewOpener(registry map[string]parsers.Streamer, fallback []string, log zerolog.Logger) *Opener {
	return &Opener{
		registry: registry,
		fallback: fallback,
		log:      log.With().Str("component", "stream").Logger(),
	}
}

func (o *Opener) Open(ctx context.Context, t session.Track) (io.ReadCloser, error) {
	order := t.Parsers
	if len(order) == 0 {
		order = o.fallback
	}
	track := &parsers.TrackParse{URL: t.URL, Title: t.Title}
	s, err := AutoOpenStream(ctx, o.registry, track, order, o.log)
	if err != nil {
		return nil, err
	}
	o.log.Info().Str("title", t.Title).Str("parser", s.GetMode()).Msg("stream ready")
	return s, nil
}
