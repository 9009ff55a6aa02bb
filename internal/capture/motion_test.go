package capture

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestMotionDetector_NoMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame primes the baseline and never counts as motion.
	detected, changePercent := md.Detect(&frame1)
	require.False(t, detected)
	require.Zero(t, changePercent)

	detected, changePercent = md.Detect(&frame2)
	require.False(t, detected, "identical frames must not detect motion, changePercent = %f", changePercent)
}

func TestMotionDetector_WithMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	detected, _ := md.Detect(&blackFrame)
	require.False(t, detected, "priming frame must not detect motion")

	detected, changePercent := md.Detect(&whiteFrame)
	require.True(t, detected, "black to white must detect motion")
	require.Greater(t, changePercent, 50.0)
}

func TestMotionDetector_Reset(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)
	require.True(t, md.primed)

	md.Reset()
	require.False(t, md.primed)
	require.True(t, md.baseline.Empty())

	// The frame after a reset primes a fresh baseline.
	detected, _ := md.Detect(&frame)
	require.False(t, detected)
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	require.Equal(t, 5.0, md.threshold)

	// Non-positive thresholds are ignored.
	md.SetThreshold(-1.0)
	require.Equal(t, 5.0, md.threshold)
	md.SetThreshold(0)
	require.Equal(t, 5.0, md.threshold)
}

func TestMotionDetector_CloseIsIdempotent(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}
