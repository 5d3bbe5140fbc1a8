package kkdai

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/keshon/suenala/internal/music/parsers"
)

var (
	errUnsupportedScheme = errors.New("unsupported proxy scheme")
	errNoAudio           = errors.New("no audio formats found for video")
)

// KKDAIStreamer resolves YouTube streams with the kkdai client. The link mode hands
// the stream URL to ffmpeg; the pipe mode downloads through the client.
type KKDAIStreamer struct {
	Client *youtube.Client
}

func (s *KKDAIStreamer) GetLinkStream(ctx context.Context, track *parsers.TrackParse) (io.ReadCloser, func(), error) {
	video, format, err := s.lookup(ctx, track)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] %w", err)
	}

	link, err := s.Client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] get stream URL error: %w", err)
	}
	return parsers.StartPCM(parsers.PCMArgs(link, true), nil)
}

func (s *KKDAIStreamer) GetPipeStream(ctx context.Context, track *parsers.TrackParse) (io.ReadCloser, func(), error) {
	video, format, err := s.lookup(ctx, track)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] %w", err)
	}

	// the download outlives the lookup deadline
	stream, _, err := s.Client.GetStreamContext(context.WithoutCancel(ctx), video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] get stream error: %w", err)
	}

	reader, cleanup, err := parsers.StartPCM(parsers.PCMArgs("pipe:0", false), stream)
	if err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("[kkdai-pipe] %w", err)
	}
	return reader, cleanup, nil
}

func (s *KKDAIStreamer) SupportsPipe() bool {
	return true
}

func (s *KKDAIStreamer) lookup(ctx context.Context, track *parsers.TrackParse) (*youtube.Video, *youtube.Format, error) {
	if s.Client == nil {
		s.Client = &youtube.Client{}
	}

	video, err := s.Client.GetVideoContext(ctx, track.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	track.Duration = video.Duration
	if track.Title == "" {
		track.Title = video.Title
	}

	format, err := bestAudioFormat(video.Formats.WithAudioChannels())
	if err != nil {
		return nil, nil, err
	}
	return video, format, nil
}

// bestAudioFormat prefers audio-only formats, then the highest bitrate.
func bestAudioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	if len(formats) == 0 {
		return nil, errNoAudio
	}

	ranked := slices.Clone(formats)
	slices.SortStableFunc(ranked, func(a, b youtube.Format) int {
		aAudio, bAudio := strings.HasPrefix(a.MimeType, "audio/"), strings.HasPrefix(b.MimeType, "audio/")
		if aAudio != bAudio {
			if aAudio {
				return -1
			}
			return 1
		}
		return cmp.Compare(bitrate(b), bitrate(a))
	})
	return &ranked[0], nil
}

func bitrate(f youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}
