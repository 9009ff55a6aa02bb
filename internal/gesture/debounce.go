package gesture

import "time"

// Debounce defaults, tuned against the cost of a full re-render: without
// both gates every frame at ~30 Hz would trigger a time-stretch pass.
const (
	DefaultSpeedThreshold = 0.05
	DefaultPitchThreshold = 0.5
	DefaultUpdateInterval = 200 * time.Millisecond
)

// Decision reports what a Debouncer accepted from one frame's candidates.
// Accepted values always update the caller's current parameters; Render is
// set only when enough time has passed since the last render trigger.
type Decision struct {
	Speed         float64
	SpeedAccepted bool
	Pitch         float64
	PitchAccepted bool
	Render        bool
}

// Debouncer gates speed and pitch candidates with two independent checks:
// a per-dimension minimum change threshold and a shared minimum interval
// between render triggers. Volume is not debounced; it is a sink-level gain
// and never needs a render pass.
type Debouncer struct {
	speedThreshold float64
	pitchThreshold float64
	updateInterval time.Duration

	lastSpeed  float64
	lastPitch  float64
	lastRender time.Time

	now func() time.Time
}

// NewDebouncer creates a Debouncer with the default thresholds and the
// given starting values for the accepted speed and pitch.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		speedThreshold: DefaultSpeedThreshold,
		pitchThreshold: DefaultPitchThreshold,
		updateInterval: DefaultUpdateInterval,
		lastSpeed:      1.0,
		lastPitch:      0.0,
		now:            time.Now,
	}
}

// SetThresholds overrides the value-change thresholds.
// Non-positive values are ignored.
func (d *Debouncer) SetThresholds(speed, pitch float64) {
	if speed > 0 {
		d.speedThreshold = speed
	}
	if pitch > 0 {
		d.pitchThreshold = pitch
	}
}

// SetUpdateInterval overrides the minimum interval between render triggers.
func (d *Debouncer) SetUpdateInterval(interval time.Duration) {
	if interval > 0 {
		d.updateInterval = interval
	}
}

// SetClock overrides the time source. Tests use this to step time manually.
func (d *Debouncer) SetClock(now func() time.Time) {
	if now != nil {
		d.now = now
	}
}

// Offer evaluates one frame's candidates.
//
// A speed candidate is accepted when it differs from the last accepted
// speed by more than the speed threshold; pitch likewise. An accepted
// candidate becomes the new reference value immediately, even when no
// render fires this frame: the next render, whenever the interval allows
// it, picks up whatever the latest accepted values are.
func (d *Debouncer) Offer(c Candidates) Decision {
	var dec Decision

	if c.HasSpeed && abs(c.Speed-d.lastSpeed) > d.speedThreshold {
		d.lastSpeed = c.Speed
		dec.Speed = c.Speed
		dec.SpeedAccepted = true
	}

	if c.HasPitch && abs(c.Pitch-d.lastPitch) > d.pitchThreshold {
		d.lastPitch = c.Pitch
		dec.Pitch = c.Pitch
		dec.PitchAccepted = true
	}

	if dec.SpeedAccepted || dec.PitchAccepted {
		now := d.now()
		if now.Sub(d.lastRender) >= d.updateInterval {
			d.lastRender = now
			dec.Render = true
		}
	}

	return dec
}

// SetReference moves the reference values without going through the value
// gates, e.g. after a preset is applied directly.
func (d *Debouncer) SetReference(speed, pitch float64) {
	d.lastSpeed = speed
	d.lastPitch = pitch
}

// Reset restores the reference values to the defaults (speed 1.0, pitch 0)
// and clears the render interval gate so the next accepted candidate
// renders immediately.
func (d *Debouncer) Reset() {
	d.lastSpeed = 1.0
	d.lastPitch = 0.0
	d.lastRender = time.Time{}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
