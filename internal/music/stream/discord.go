package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"layeh.com/gopus"

	"github.com/keshon/suenala/internal/music/parsers"
)

const maxOpusBytes = parsers.FrameSize * parsers.Channels * 2

// StreamOpus reads PCM frames from r, scales them by volume, encodes them to Opus
// and sends them to sink until r ends or stop is closed. A clean end of input and
// a stop both return nil.
func StreamOpus(r io.Reader, stop <-chan struct{}, sink chan<- []byte, volume float64) error {
	encoder, err := gopus.NewEncoder(parsers.SampleRate, parsers.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	pcmBuf := make([]byte, parsers.FrameSize*parsers.Channels*2)
	intBuf := make([]int16, parsers.FrameSize*parsers.Channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		n, err := io.ReadFull(r, pcmBuf)
		if err != nil {
			if stopped(stop) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("read error: %w", err)
			}
			// pad the final partial frame with silence
			clear(pcmBuf[n:])
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}
		ApplyVolume(intBuf, volume)

		opus, encErr := encoder.Encode(intBuf, parsers.FrameSize, maxOpusBytes)
		if encErr != nil {
			return fmt.Errorf("encode error: %w", encErr)
		}

		select {
		case sink <- opus:
		case <-stop:
			return nil
		}

		if err != nil {
			return nil
		}
	}
}

// ApplyVolume scales samples in place. volume is clamped to [0, 1].
func ApplyVolume(samples []int16, volume float64) {
	if volume >= 1 {
		return
	}
	volume = max(volume, 0)
	for i, s := range samples {
		samples[i] = int16(math.Round(float64(s) * volume))
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
