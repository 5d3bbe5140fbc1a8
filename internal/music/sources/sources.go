// Package sources turns user input into playable track metadata.
package sources

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	SourceYouTube    = "youtube"
	SourceRadio      = "radio"
	SourceSoundCloud = "soundcloud"
)

// Parser names understood by the stream package.
const (
	ParserKkdaiLink  = "kkdai-link"
	ParserKkdaiPipe  = "kkdai-pipe"
	ParserYtdlpLink  = "ytdlp-link"
	ParserFFmpegLink = "ffmpeg-link"
)

// ErrNoResults is returned when a search finds nothing.
var ErrNoResults = errors.New("no results found")

// TrackInfo is resolved metadata for one playable item. Duration is zero when unknown.
type TrackInfo struct {
	URL              string
	Title            string
	Duration         time.Duration
	Thumbnail        string
	SourceName       string
	AvailableParsers []string
}

type Source interface {
	// Match checks if this source can handle the given input
	Match(input string) bool

	// Resolve turns an input into one or more playable tracks
	Resolve(ctx context.Context, input string) ([]TrackInfo, error)

	// SourceName returns the string identifier ("youtube", "radio", etc.)
	SourceName() string

	// AvailableParsers returns the parsers to try, in order
	AvailableParsers() []string
}

// IsURL reports whether s looks like an http(s) link.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
