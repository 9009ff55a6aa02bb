package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// Sink is the playback device abstraction. The render pipeline loads
// transformed buffers into it; the frame loop drives volume and transport.
type Sink interface {
	// Load replaces the currently loaded buffer. It does not start playback.
	Load(buf *Buffer)
	// Play starts the loaded buffer from the beginning, optionally looping.
	Play(loop bool)
	Pause()
	Resume()
	Stop()
	// SetVolume sets the playback gain in [0, 1].
	SetVolume(v float64)
	Volume() float64
	Close() error
}

// SpeakerSink plays buffers through the default audio output device.
type SpeakerSink struct {
	sampleRate beep.SampleRate

	mu     sync.Mutex
	loaded *Buffer
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	gain   float64
}

// NewSpeakerSink initializes the audio output device at the given sample
// rate. The sample rate must match the source buffer; renders never change
// it, so one device initialization at startup is enough.
func NewSpeakerSink(sampleRate int) (*SpeakerSink, error) {
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init audio device: %w", err)
	}
	return &SpeakerSink{
		sampleRate: sr,
		gain:       1.0,
	}, nil
}

// Load replaces the loaded buffer. Playback of a previous buffer keeps
// running until the next Play call swaps it out.
func (s *SpeakerSink) Load(buf *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = buf
}

// Play starts the loaded buffer from sample zero, replacing whatever is
// currently playing. With loop set, the buffer repeats indefinitely.
func (s *SpeakerSink) Play(loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded == nil {
		return
	}

	stream := newBufferStreamer(s.loaded.Samples)
	var src beep.Streamer = stream
	if loop {
		src = beep.Loop(-1, stream)
	}

	ctrl := &beep.Ctrl{Streamer: src}
	vol := &effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   math.Log2(math.Max(s.gain, 1e-4)),
		Silent:   s.gain <= 0,
	}

	speaker.Clear()
	speaker.Play(vol)

	s.ctrl = ctrl
	s.vol = vol
}

// Pause suspends playback without losing position.
func (s *SpeakerSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

// Resume continues playback after Pause.
func (s *SpeakerSink) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

// Stop halts playback and discards the playing stream. The loaded buffer
// stays loaded; Play restarts it from the beginning.
func (s *SpeakerSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	speaker.Clear()
	s.ctrl = nil
	s.vol = nil
}

// SetVolume sets the playback gain. Values outside [0, 1] are clamped.
func (s *SpeakerSink) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = v

	if s.vol == nil {
		return
	}
	speaker.Lock()
	s.vol.Silent = v <= 0
	if v > 0 {
		s.vol.Volume = math.Log2(v)
	}
	speaker.Unlock()
}

// Volume returns the current playback gain.
func (s *SpeakerSink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

// Close releases the audio output device.
func (s *SpeakerSink) Close() error {
	s.Stop()
	speaker.Close()
	return nil
}

// bufferStreamer streams mono float64 samples as stereo beep samples.
// It implements beep.StreamSeeker so it can be looped.
type bufferStreamer struct {
	samples []float64
	pos     int
}

func newBufferStreamer(samples []float64) *bufferStreamer {
	return &bufferStreamer{samples: samples}
}

func (b *bufferStreamer) Stream(out [][2]float64) (int, bool) {
	if b.pos >= len(b.samples) {
		return 0, false
	}
	n := 0
	for n < len(out) && b.pos < len(b.samples) {
		v := b.samples[b.pos]
		out[n][0] = v
		out[n][1] = v
		b.pos++
		n++
	}
	return n, true
}

func (b *bufferStreamer) Err() error { return nil }

func (b *bufferStreamer) Len() int { return len(b.samples) }

func (b *bufferStreamer) Position() int { return b.pos }

func (b *bufferStreamer) Seek(p int) error {
	if p < 0 || p > len(b.samples) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(b.samples))
	}
	b.pos = p
	return nil
}
