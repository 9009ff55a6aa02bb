// Package detector provides hand landmark detection interfaces and types.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a landmark position in normalized image coordinates.
// X and Y are in [0, 1]; Z is the MediaPipe depth estimate and is not used
// for gesture mapping, which works in the image plane.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand.
// Hands are reported in detection order; the detector does not guarantee
// identity continuity across frames, so positional roles can flicker when
// the detection order changes.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// WristPoint returns the wrist landmark position.
func (h *HandLandmarks) WristPoint() Point3D {
	return h.Points[Wrist]
}

// PinchPoints returns the thumb-tip and index-fingertip landmark positions
// used as the continuous pinch control signal.
func (h *HandLandmarks) PinchPoints() (thumb, index Point3D) {
	return h.Points[ThumbTip], h.Points[IndexTip]
}
