package app

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/theremin/internal/audio"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/store"
)

func testSource() *audio.Buffer {
	const rate = 44100
	samples := make([]float64, rate/10)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/rate)
	}
	return &audio.Buffer{Samples: samples, Rate: rate}
}

func testController(t *testing.T, s *store.Store) (*Controller, *detector.MockDetector, *audio.MockSink) {
	t.Helper()

	sink := audio.NewMockSink()
	c := New(Config{Store: s, MotionThresh: 0.05}, testSource(), sink)

	mock := detector.NewMockDetector()
	c.SetDetector(mock)

	t.Cleanup(c.Stop)
	return c, mock, sink
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestController_TwoHandGesture(t *testing.T) {
	c, mock, sink := testController(t, nil)

	c.StartPlayback()
	waitFor(t, func() bool {
		loads, _ := sink.Counts()
		return loads == 1 && sink.Playing()
	}, "initial render never reached the sink")

	// Wrists 0.5 apart, both hands pinched at 0.3.
	mock.SetHands(detector.TwoPinchHands(0.5, 0.3, 0.3))

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hands, err := c.ProcessFrame(&frame)
	require.NoError(t, err)
	require.Len(t, hands, 2)

	st := c.Status()
	require.InDelta(t, 0.5, st.Params.Volume, 1e-9)
	require.InDelta(t, 1.4, st.Params.Speed, 1e-9)
	require.InDelta(t, -2.4, st.Params.Pitch, 1e-9)
	require.InDelta(t, 0.5, sink.Volume(), 1e-9)

	waitFor(t, func() bool {
		loads, _ := sink.Counts()
		return loads == 2
	}, "gesture change never triggered a render")

	// The same frame again lands inside the change thresholds, so it must
	// not render a second time.
	_, err = c.ProcessFrame(&frame)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	loads, _ := sink.Counts()
	require.Equal(t, 2, loads)
	require.True(t, sink.Looping())
}

func TestController_OneHandControlsPitchOnly(t *testing.T) {
	c, mock, sink := testController(t, nil)

	c.StartPlayback()
	waitFor(t, func() bool { return sink.Playing() }, "playback never started")

	mock.SetHands([]detector.HandLandmarks{detector.PinchHand(0.5, 0.5, 0.35)})

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	_, err := c.ProcessFrame(&frame)
	require.NoError(t, err)

	st := c.Status()
	require.InDelta(t, 1.0, st.Params.Speed, 1e-9, "one hand must not move speed")
	require.InDelta(t, 1.0, st.Params.Volume, 1e-9, "one hand must not move volume")
	require.InDelta(t, 0.0, st.Params.Pitch, 1e-9)
}

func TestController_PlayPauseReset(t *testing.T) {
	c, mock, sink := testController(t, nil)

	c.StartPlayback()
	waitFor(t, func() bool { return sink.Playing() }, "playback never started")

	c.TogglePlayPause()
	require.True(t, sink.Paused())
	require.True(t, c.Status().Paused)

	// A render-worthy gesture while paused must not reach the renderer.
	loadsBefore, _ := sink.Counts()
	mock.SetHands(detector.TwoPinchHands(0.5, 0.4, 0.4))

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	_, err := c.ProcessFrame(&frame)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	loads, _ := sink.Counts()
	require.Equal(t, loadsBefore, loads)

	c.TogglePlayPause()
	require.False(t, sink.Paused())

	c.ResetParams()
	st := c.Status()
	require.InDelta(t, 1.0, st.Params.Speed, 1e-9)
	require.InDelta(t, 0.0, st.Params.Pitch, 1e-9)
	waitFor(t, func() bool {
		loads, _ := sink.Counts()
		return loads == loadsBefore+1
	}, "reset never re-rendered the source")
}

func TestController_Presets(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	c, _, sink := testController(t, s)
	c.StartPlayback()
	waitFor(t, func() bool { return sink.Playing() }, "playback never started")

	p, err := c.SavePreset("neutral")
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.InDelta(t, 1.0, p.Speed, 1e-9)

	saved := &store.Preset{ID: p.ID, Name: p.Name, Speed: 1.5, Pitch: 3, Volume: 0.25}
	c.ApplyPreset(saved)

	st := c.Status()
	require.InDelta(t, 1.5, st.Params.Speed, 1e-9)
	require.InDelta(t, 3.0, st.Params.Pitch, 1e-9)
	require.InDelta(t, 0.25, sink.Volume(), 1e-9)
}

func TestController_SavePresetWithoutStore(t *testing.T) {
	c, _, _ := testController(t, nil)

	_, err := c.SavePreset("anything")
	require.ErrorIs(t, err, ErrNoStore)
}
