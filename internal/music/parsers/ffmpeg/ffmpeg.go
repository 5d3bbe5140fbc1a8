package ffmpeg

import (
	"context"
	"io"

	"github.com/keshon/suenala/internal/music/parsers"
)

// FFMPEGStreamer decodes a direct media link, e.g. an internet radio stream.
type FFMPEGStreamer struct{}

func (s *FFMPEGStreamer) GetLinkStream(ctx context.Context, track *parsers.TrackParse) (io.ReadCloser, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return parsers.StartPCM(parsers.PCMArgs(track.URL, true), nil)
}

func (s *FFMPEGStreamer) GetPipeStream(ctx context.Context, track *parsers.TrackParse) (io.ReadCloser, func(), error) {
	return nil, nil, parsers.ErrPipeUnsupported
}

func (s *FFMPEGStreamer) SupportsPipe() bool {
	return false
}
