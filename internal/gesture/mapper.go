package gesture

import "github.com/ayusman/theremin/internal/detector"

// Playback parameter bounds.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
	MinPitch = -12.0
	MaxPitch = 12.0
	MinVol   = 0.0
	MaxVol   = 1.0
)

// Pinch mapping constants: a pinch of 0.1 maps to the neutral value on both
// the speed and pitch scales.
const (
	pinchNeutral   = 0.1
	speedPerPinch  = 2.0
	pitchPerPinch  = 48.0
	pitchBaseShift = -12.0
)

// Candidates holds the per-dimension parameter candidates produced from one
// frame. Dimensions are independent: a frame can move speed without moving
// pitch, and an empty frame produces no candidates at all.
type Candidates struct {
	Volume    float64
	HasVolume bool
	Speed     float64
	HasSpeed  bool
	Pitch     float64
	HasPitch  bool
}

// Mapper converts detected hands into playback parameter candidates using
// thresholded, clamped linear maps over landmark distances.
//
// Hand roles are positional: with two hands, the first detected hand drives
// speed and the second drives pitch. Detection order is not stable across
// frames, so roles can flicker when hands cross; this matches the upstream
// detector's behavior and is not compensated for.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// SpeedFromPinch maps a pinch distance to a playback speed in [0.5, 2.0].
func SpeedFromPinch(pinch float64) float64 {
	return clamp(1.0+(pinch-pinchNeutral)*speedPerPinch, MinSpeed, MaxSpeed)
}

// PitchFromPinch maps a pinch distance to a pitch shift in [-12, 12] semitones.
func PitchFromPinch(pinch float64) float64 {
	return clamp((pinch-pinchNeutral)*pitchPerPinch+pitchBaseShift, MinPitch, MaxPitch)
}

// Map produces the parameter candidates for one frame of detected hands.
//
// Rules, in order:
//   - two hands: volume from the wrist-to-wrist distance, speed from hand
//     0's pinch, pitch from hand 1's pinch;
//   - exactly one hand: pitch from that hand's pinch;
//   - no hands: no candidates, parameters stay where they are.
//
// The single-hand pitch rule deliberately does not fire when two hands are
// present, so there is exactly one pitch source per frame.
func (m *Mapper) Map(hands []detector.HandLandmarks) Candidates {
	var c Candidates

	switch {
	case len(hands) >= 2:
		c.Volume = clamp(Distance(hands[0].WristPoint(), hands[1].WristPoint()), MinVol, MaxVol)
		c.HasVolume = true

		c.Speed = SpeedFromPinch(PinchDistance(&hands[0]))
		c.HasSpeed = true

		c.Pitch = PitchFromPinch(PinchDistance(&hands[1]))
		c.HasPitch = true

	case len(hands) == 1:
		c.Pitch = PitchFromPinch(PinchDistance(&hands[0]))
		c.HasPitch = true
	}

	return c
}
