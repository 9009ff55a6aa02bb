// Package audio provides the playback sink and the render pipeline that
// applies time-stretch and pitch-shift to the source material.
package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep/v2/wav"
)

// ErrEmptyBuffer is returned when an audio file decodes to zero samples.
var ErrEmptyBuffer = errors.New("audio buffer is empty")

// Buffer holds decoded audio as mono float64 samples at a fixed sample
// rate. The source buffer loaded at startup is never mutated; every render
// pass derives a new Buffer from it.
type Buffer struct {
	Samples []float64
	Rate    int
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.Rate) * float64(time.Second))
}

// LoadWAV decodes a WAV file into a mono Buffer. Stereo sources are mixed
// down by averaging the two channels.
func LoadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	samples := make([]float64, 0, streamer.Len())
	block := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(block)
		for i := 0; i < n; i++ {
			samples = append(samples, (block[i][0]+block[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("read wav samples: %w", err)
	}

	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}

	return &Buffer{
		Samples: samples,
		Rate:    int(format.SampleRate),
	}, nil
}
