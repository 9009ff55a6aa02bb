package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock steps time manually for debounce tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func speedCandidate(v float64) Candidates {
	return Candidates{Speed: v, HasSpeed: true}
}

func pitchCandidate(v float64) Candidates {
	return Candidates{Pitch: v, HasPitch: true}
}

func TestDebouncer_SpeedValueGate(t *testing.T) {
	d := NewDebouncer()
	d.SetClock(newFakeClock().now)

	// Last accepted speed starts at 1.0; 1.04 is within the 0.05 threshold.
	dec := d.Offer(speedCandidate(1.04))
	assert.False(t, dec.SpeedAccepted)
	assert.False(t, dec.Render)

	// 1.06 exceeds the threshold.
	dec = d.Offer(speedCandidate(1.06))
	assert.True(t, dec.SpeedAccepted)
	assert.Equal(t, 1.06, dec.Speed)
	assert.True(t, dec.Render)
}

func TestDebouncer_PitchValueGate(t *testing.T) {
	d := NewDebouncer()
	d.SetClock(newFakeClock().now)

	dec := d.Offer(pitchCandidate(0.4))
	assert.False(t, dec.PitchAccepted)

	dec = d.Offer(pitchCandidate(0.6))
	assert.True(t, dec.PitchAccepted)
	assert.Equal(t, 0.6, dec.Pitch)
}

func TestDebouncer_AcceptedValueBecomesReference(t *testing.T) {
	d := NewDebouncer()
	d.SetClock(newFakeClock().now)

	dec := d.Offer(speedCandidate(1.2))
	assert.True(t, dec.SpeedAccepted)

	// 1.22 is within threshold of the new reference 1.2, not of 1.0.
	dec = d.Offer(speedCandidate(1.22))
	assert.False(t, dec.SpeedAccepted)
}

func TestDebouncer_TimeGate(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer()
	d.SetClock(clock.now)

	// Initial accepted candidate renders and arms the interval gate.
	dec := d.Offer(speedCandidate(1.5))
	assert.True(t, dec.Render)

	// Two value-accepted candidates arrive 50 ms apart while the 200 ms
	// interval is still running: the first is absorbed, the second renders
	// once the interval has elapsed, carrying the later value.
	clock.advance(170 * time.Millisecond)
	dec = d.Offer(speedCandidate(1.2))
	assert.True(t, dec.SpeedAccepted)
	assert.False(t, dec.Render)

	clock.advance(50 * time.Millisecond)
	dec = d.Offer(speedCandidate(1.4))
	assert.True(t, dec.SpeedAccepted)
	assert.Equal(t, 1.4, dec.Speed)
	assert.True(t, dec.Render)
}

func TestDebouncer_Reset(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer()
	d.SetClock(clock.now)

	d.Offer(speedCandidate(1.5))
	d.Offer(pitchCandidate(6))
	d.Reset()

	// After reset the references are back at 1.0 / 0.0 and the interval
	// gate is clear, so the first significant change renders immediately.
	dec := d.Offer(Candidates{
		Speed: 1.06, HasSpeed: true,
		Pitch: 0.6, HasPitch: true,
	})
	assert.True(t, dec.SpeedAccepted)
	assert.True(t, dec.PitchAccepted)
	assert.True(t, dec.Render)
}

func TestDebouncer_IndependentDimensions(t *testing.T) {
	d := NewDebouncer()
	d.SetClock(newFakeClock().now)

	dec := d.Offer(Candidates{
		Speed: 1.02, HasSpeed: true, // under threshold
		Pitch: 3.0, HasPitch: true, // over threshold
	})
	assert.False(t, dec.SpeedAccepted)
	assert.True(t, dec.PitchAccepted)
	assert.True(t, dec.Render)
}
