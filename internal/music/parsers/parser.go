package parsers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// ErrPipeUnsupported is returned by streamers that only work from a link.
var ErrPipeUnsupported = errors.New("pipe streaming not supported")

// TrackParse is the state a streamer needs for one track. Streamers may fill in
// Title and Duration when they learn them.
type TrackParse struct {
	URL           string
	Title         string
	Duration      time.Duration
	CurrentParser string
}

// Streamer opens s16le 48 kHz stereo PCM for a track. ctx bounds the lookup only;
// the returned reader lives until cleanup is called.
type Streamer interface {
	GetLinkStream(ctx context.Context, track *TrackParse) (io.ReadCloser, func(), error)
	GetPipeStream(ctx context.Context, track *TrackParse) (io.ReadCloser, func(), error)
	SupportsPipe() bool
}

// PCMArgs returns ffmpeg arguments that decode input to raw PCM on stdout.
// Network inputs get reconnect flags.
func PCMArgs(input string, network bool) []string {
	args := []string{"-hide_banner"}
	if network {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", input,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

// StartPCM starts ffmpeg with args, feeding stdin when it is non-nil. The cleanup
// kills ffmpeg, closes stdin and reaps the process; it is safe to call twice.
func StartPCM(args []string, stdin io.ReadCloser) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg", args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			if stdin != nil {
				stdin.Close()
			}
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		})
	}
	return reader, cleanup, nil
}
