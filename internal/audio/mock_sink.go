package audio

import "sync"

// MockSink is a test implementation of the Sink interface that records
// every operation.
type MockSink struct {
	mu sync.Mutex

	loaded  *Buffer
	playing bool
	paused  bool
	looping bool
	gain    float64

	loads int
	plays int
}

// NewMockSink creates a MockSink with full volume.
func NewMockSink() *MockSink {
	return &MockSink{gain: 1.0}
}

func (m *MockSink) Load(buf *Buffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = buf
	m.loads++
}

func (m *MockSink) Play(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded == nil {
		return
	}
	m.playing = true
	m.paused = false
	m.looping = loop
	m.plays++
}

func (m *MockSink) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.paused = true
	}
}

func (m *MockSink) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.paused = false
	}
}

func (m *MockSink) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.paused = false
}

func (m *MockSink) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.gain = v
}

func (m *MockSink) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gain
}

func (m *MockSink) Close() error { return nil }

// Loaded returns the most recently loaded buffer.
func (m *MockSink) Loaded() *Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Playing reports whether playback is active (possibly paused).
func (m *MockSink) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Paused reports whether playback is paused.
func (m *MockSink) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Looping reports whether the last Play requested looping.
func (m *MockSink) Looping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.looping
}

// Counts returns the number of Load and Play calls seen so far.
func (m *MockSink) Counts() (loads, plays int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads, m.plays
}
