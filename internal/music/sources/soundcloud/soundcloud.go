package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/keshon/suenala/internal/music/sources"
)

// Metadata describes a linked track.
type Metadata struct {
	Title     string
	Duration  time.Duration
	Thumbnail string
}

// MetadataFunc looks up metadata for a track link.
type MetadataFunc func(ctx context.Context, link string) (Metadata, error)

// YtdlpMetadata asks yt-dlp for title, duration and thumbnail without downloading.
func YtdlpMetadata(ctx context.Context, link string) (Metadata, error) {
	res, err := ytdlp.New().
		Print("%(title)s\t%(duration)s\t%(thumbnail)s").
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, link)
	if err != nil {
		return Metadata{}, fmt.Errorf("yt-dlp metadata: %w", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}
		d, _ := time.ParseDuration(parts[1] + "s")
		thumb := parts[2]
		if thumb == "NA" {
			thumb = ""
		}
		return Metadata{Title: parts[0], Duration: d, Thumbnail: thumb}, nil
	}
	return Metadata{}, errors.New("yt-dlp returned no metadata")
}

// SoundCloudSource handles soundcloud.com track links. Free-text search goes to YouTube.
type SoundCloudSource struct {
	metadata MetadataFunc
}

func New(metadata MetadataFunc) *SoundCloudSource {
	if metadata == nil {
		metadata = YtdlpMetadata
	}
	return &SoundCloudSource{metadata: metadata}
}

func (s *SoundCloudSource) Match(input string) bool {
	return sources.IsURL(input) && strings.Contains(input, "soundcloud.com/")
}

func (s *SoundCloudSource) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	input = strings.TrimSpace(input)

	meta, err := s.metadata(ctx, input)
	if err != nil {
		return nil, err
	}
	if meta.Title == "" {
		meta.Title = input
	}

	return []sources.TrackInfo{{
		URL:              input,
		Title:            meta.Title,
		Duration:         meta.Duration,
		Thumbnail:        meta.Thumbnail,
		SourceName:       sources.SourceSoundCloud,
		AvailableParsers: s.AvailableParsers(),
	}}, nil
}

func (s *SoundCloudSource) SourceName() string {
	return sources.SourceSoundCloud
}

func (s *SoundCloudSource) AvailableParsers() []string {
	return []string{sources.ParserYtdlpLink}
}
