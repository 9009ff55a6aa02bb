package audio

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineBuffer generates a mono test tone.
func sineBuffer(rate int, freq float64, dur time.Duration) *Buffer {
	n := int(float64(rate) * dur.Seconds())
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &Buffer{Samples: samples, Rate: rate}
}

func TestTransform_Identity(t *testing.T) {
	src := sineBuffer(44100, 440, 200*time.Millisecond)

	out, err := Transform(context.Background(), src, Request{Speed: 1.0, Semitones: 0})
	require.NoError(t, err)

	// Identity transform preserves duration and content exactly.
	require.Len(t, out.Samples, len(src.Samples))
	assert.Equal(t, src.Rate, out.Rate)
	assert.Equal(t, src.Samples, out.Samples)

	// The result must not alias the immutable source.
	out.Samples[0] = 99
	assert.NotEqual(t, 99.0, src.Samples[0])
}

func TestTransform_SpeedScalesDuration(t *testing.T) {
	src := sineBuffer(44100, 440, 500*time.Millisecond)

	cases := []struct {
		speed float64
	}{
		{0.5}, {0.8}, {1.25}, {2.0},
	}
	for _, tc := range cases {
		out, err := Transform(context.Background(), src, Request{Speed: tc.speed, Semitones: 0})
		require.NoError(t, err)

		want := float64(len(src.Samples)) / tc.speed
		got := float64(len(out.Samples))
		assert.InEpsilon(t, want, got, 0.02,
			"speed %.2f: expected ~%.0f samples, got %.0f", tc.speed, want, got)
	}
}

func TestTransform_PitchPreservesDuration(t *testing.T) {
	src := sineBuffer(44100, 440, 300*time.Millisecond)

	for _, semis := range []int{-12, -5, 3, 12} {
		out, err := Transform(context.Background(), src, Request{Speed: 1.0, Semitones: semis})
		require.NoError(t, err)
		assert.Len(t, out.Samples, len(src.Samples),
			"pitch shift of %d semitones must not change duration", semis)
	}
}

func TestTransform_RejectsOutOfRange(t *testing.T) {
	src := sineBuffer(8000, 440, 100*time.Millisecond)

	_, err := Transform(context.Background(), src, Request{Speed: 0.1, Semitones: 0})
	assert.Error(t, err)

	_, err = Transform(context.Background(), src, Request{Speed: 1.0, Semitones: 24})
	assert.Error(t, err)

	_, err = Transform(context.Background(), &Buffer{Rate: 8000}, Request{Speed: 1.0})
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestTransform_Cancelled(t *testing.T) {
	src := sineBuffer(44100, 440, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Transform(ctx, src, Request{Speed: 1.5, Semitones: 0})
	assert.ErrorIs(t, err, context.Canceled)
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

func TestRenderer_LoadsAndLoops(t *testing.T) {
	src := sineBuffer(8000, 440, 100*time.Millisecond)
	sink := NewMockSink()

	r := NewRenderer(src, sink)
	r.Start()
	defer r.Stop()

	r.Submit(1.0, 0)

	waitFor(t, sink.Playing, "renderer never started playback")
	assert.True(t, sink.Looping())
	require.NotNil(t, sink.Loaded())
	assert.Len(t, sink.Loaded().Samples, len(src.Samples))
}

func TestRenderer_LatestRequestWins(t *testing.T) {
	src := sineBuffer(8000, 440, 250*time.Millisecond)
	sink := NewMockSink()

	r := NewRenderer(src, sink)
	r.Start()
	defer r.Stop()

	// Flood the renderer; only the final request's output may end up loaded
	// once the worker drains.
	for _, speed := range []float64{0.5, 0.6, 0.8, 1.2, 1.5, 1.8} {
		r.Submit(speed, 0)
	}
	r.Submit(2.0, 0)

	want := float64(len(src.Samples)) / 2.0
	waitFor(t, func() bool {
		buf := sink.Loaded()
		if buf == nil {
			return false
		}
		return math.Abs(float64(len(buf.Samples))-want)/want < 0.02
	}, "final loaded buffer does not match the last submitted request")
}

func TestRenderer_SequentialSubmitsAllRender(t *testing.T) {
	src := sineBuffer(8000, 440, 50*time.Millisecond)
	sink := NewMockSink()

	r := NewRenderer(src, sink)
	r.Start()
	defer r.Stop()

	// Each submit races the worker dequeueing it. No request may ever be
	// dropped by its own submission, so against a drained worker every
	// submit must produce exactly one load.
	for i := 1; i <= 25; i++ {
		speed := 0.8
		if i%2 == 0 {
			speed = 1.25
		}
		r.Submit(speed, 0)

		want := i
		waitFor(t, func() bool {
			loads, _ := sink.Counts()
			return loads == want
		}, "a submit against an idle worker was dropped without rendering")
	}
}

func TestRenderer_FailureLeavesPlaybackUntouched(t *testing.T) {
	src := sineBuffer(8000, 440, 100*time.Millisecond)
	sink := NewMockSink()

	r := NewRenderer(src, sink)
	r.Start()
	defer r.Stop()

	r.Submit(1.5, 0)
	waitFor(t, sink.Playing, "initial render never applied")
	loadsBefore, _ := sink.Counts()

	// Out-of-range speed fails inside Transform; the sink must not change.
	r.Submit(99.0, 0)
	time.Sleep(200 * time.Millisecond)

	loadsAfter, _ := sink.Counts()
	assert.Equal(t, loadsBefore, loadsAfter)
	assert.True(t, sink.Playing())
}
