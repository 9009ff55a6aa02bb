package detector

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planarDist(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func TestPinchHand_PinchSeparation(t *testing.T) {
	for _, pinch := range []float64{0.0, 0.1, 0.25, 0.4} {
		hand := PinchHand(0.3, 0.6, pinch)
		thumb, index := hand.PinchPoints()
		assert.InDelta(t, pinch, planarDist(thumb, index), 1e-9)
	}
}

func TestTwoPinchHands_WristDistance(t *testing.T) {
	hands := TwoPinchHands(0.5, 0.3, 0.3)
	require.Len(t, hands, 2)

	d := planarDist(hands[0].WristPoint(), hands[1].WristPoint())
	assert.InDelta(t, 0.5, d, 1e-9)
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()

	// No hands configured: empty detection
	hands, err := m.Detect(nil)
	require.NoError(t, err)
	assert.Empty(t, hands)

	// Configured hands are returned as-is
	m.SetHands(TwoPinchHands(0.4, 0.2, 0.2))
	hands, err = m.Detect(nil)
	require.NoError(t, err)
	assert.Len(t, hands, 2)

	// Configured error takes precedence
	m.SetError(errors.New("boom"))
	_, err = m.Detect(nil)
	assert.Error(t, err)
}

func TestJSONHandConversion(t *testing.T) {
	h := jsonHand{
		Handedness: "Left",
		Score:      0.8,
		Points: []jsonPoint{
			{X: 0.1, Y: 0.2, Z: 0.01},
			{X: 0.3, Y: 0.4, Z: 0.02},
		},
	}

	lm := h.toHandLandmarks()
	assert.Equal(t, "Left", lm.Handedness)
	assert.Equal(t, 0.8, lm.Score)
	assert.Equal(t, 0.1, lm.Points[Wrist].X)
	assert.Equal(t, 0.4, lm.Points[ThumbCMC].Y)
	// Missing points default to zero
	assert.Equal(t, Point3D{}, lm.Points[ThumbTip])
}
