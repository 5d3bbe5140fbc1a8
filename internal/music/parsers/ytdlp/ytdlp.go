package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/keshon/suenala/internal/music/parsers"
)

// YTDLPStreamer asks yt-dlp for the best audio link and decodes it with ffmpeg.
type YTDLPStreamer struct{}

func (s *YTDLPStreamer) GetLinkStream(ctx context.Context, track *parsers.TrackParse) (io.ReadCloser, func(), error) {
	link, duration, err := bestAudioURL(ctx, track.URL)
	if err != nil {
		return nil, nil, err
	}
	if duration > 0 {
		track.Duration = duration
	}
	return parsers.StartPCM(parsers.PCMArgs(link, true), nil)
}

func (s *YTDLPStreamer) GetPipeStream(ctx context.Context, track *parsers.TrackParse) (io.ReadCloser, func(), error) {
	return nil, nil, parsers.ErrPipeUnsupported
}

func (s *YTDLPStreamer) SupportsPipe() bool {
	return false
}

func bestAudioURL(ctx context.Context, pageURL string) (string, time.Duration, error) {
	res, err := ytdlp.New().
		Format("bestaudio/best").
		Print("%(url)s\t%(duration)s").
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, pageURL)
	if err != nil {
		return "", 0, fmt.Errorf("yt-dlp get-url error: %w", err)
	}
	return parseURLLine(res.Stdout)
}

func parseURLLine(stdout string) (string, time.Duration, error) {
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) == 0 || !strings.HasPrefix(parts[0], "http") {
			continue
		}
		var d time.Duration
		if len(parts) > 1 {
			d, _ = time.ParseDuration(parts[1] + "s")
		}
		return parts[0], d, nil
	}
	return "", 0, errors.New("empty URL returned from yt-dlp")
}
