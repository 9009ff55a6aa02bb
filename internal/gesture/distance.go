// Package gesture maps detected hand landmarks to playback parameters.
package gesture

import (
	"math"

	"github.com/ayusman/theremin/internal/detector"
)

// Distance returns the planar Euclidean distance between two landmarks in
// normalized image coordinates. The detector's depth estimate is ignored;
// gesture control works in the image plane.
func Distance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PinchDistance returns the thumb-tip to index-fingertip distance of one hand.
func PinchDistance(h *detector.HandLandmarks) float64 {
	thumb, index := h.PinchPoints()
	return Distance(thumb, index)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
