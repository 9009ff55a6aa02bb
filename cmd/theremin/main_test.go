package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/theremin/internal/capture"
)

func TestCaptureLoop_EndsOnReadFailure(t *testing.T) {
	frames := make([]*gocv.Mat, 2)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		defer m.Close()
		frames[i] = &m
	}

	// Non-looping playback: the read after the last frame fails, like a
	// camera that went away.
	camera := capture.NewMockCamera(frames, false)
	require.NoError(t, camera.Open())
	defer camera.Close()

	processed := 0
	err := captureLoop(camera, func(frame *gocv.Mat) bool {
		processed++
		return false
	})

	require.Error(t, err, "a failing camera must end the loop, not retry forever")
	require.Equal(t, 2, processed)
}

func TestCaptureLoop_EndsWhenProcessDone(t *testing.T) {
	m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer m.Close()

	camera := capture.NewMockCamera([]*gocv.Mat{&m}, true)
	require.NoError(t, camera.Open())
	defer camera.Close()

	processed := 0
	err := captureLoop(camera, func(frame *gocv.Mat) bool {
		processed++
		return processed == 3
	})

	require.NoError(t, err)
	require.Equal(t, 3, processed)
}
