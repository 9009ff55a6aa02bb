package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PinchHand returns a preset HandLandmarks with the wrist at (wristX, wristY)
// and a thumb-tip to index-fingertip separation of exactly pinch units along
// the X axis. The remaining fingers are folded near the palm; they play no
// role in gesture mapping but keep the pose anatomically plausible for
// overlay rendering.
func PinchHand(wristX, wristY, pinch float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: wristX, Y: wristY}

	// Thumb chain ending at the thumb tip
	lm.Points[ThumbCMC] = Point3D{X: wristX + 0.02, Y: wristY - 0.03}
	lm.Points[ThumbMCP] = Point3D{X: wristX + 0.04, Y: wristY - 0.06}
	lm.Points[ThumbIP] = Point3D{X: wristX + 0.05, Y: wristY - 0.09}
	lm.Points[ThumbTip] = Point3D{X: wristX + 0.06, Y: wristY - 0.12}

	// Index chain; tip placed pinch units from the thumb tip
	lm.Points[IndexMCP] = Point3D{X: wristX + 0.03, Y: wristY - 0.10}
	lm.Points[IndexPIP] = Point3D{X: wristX + 0.04, Y: wristY - 0.13}
	lm.Points[IndexDIP] = Point3D{X: wristX + 0.05, Y: wristY - 0.15}
	lm.Points[IndexTip] = Point3D{X: wristX + 0.06 + pinch, Y: wristY - 0.12}

	// Remaining fingers folded toward the palm
	folded := []struct{ mcp, pip, dip, tip int }{
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}
	for i, f := range folded {
		off := 0.02 * float64(i+1)
		lm.Points[f.mcp] = Point3D{X: wristX - off, Y: wristY - 0.09}
		lm.Points[f.pip] = Point3D{X: wristX - off, Y: wristY - 0.07}
		lm.Points[f.dip] = Point3D{X: wristX - off, Y: wristY - 0.05}
		lm.Points[f.tip] = Point3D{X: wristX - off, Y: wristY - 0.04}
	}

	return lm
}

// TwoPinchHands returns two hands whose wrists are wristDist apart and whose
// pinch separations are pinch0 and pinch1 respectively. Hand order matches
// detection order: hand 0 controls speed, hand 1 controls pitch.
func TwoPinchHands(wristDist, pinch0, pinch1 float64) []HandLandmarks {
	left := PinchHand(0.2, 0.6, pinch0)
	right := PinchHand(0.2+wristDist, 0.6, pinch1)
	right.Handedness = "Left"
	return []HandLandmarks{left, right}
}
