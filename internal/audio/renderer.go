package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/effects/pitch"
	"github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/sirupsen/logrus"
)

// Render parameter bounds. Speed and semitone extremes combine to a pitch
// ratio of at most 4x / at least 0.25x, the range the shifter supports.
const (
	MinRenderSpeed = 0.5
	MaxRenderSpeed = 2.0
	MinSemitones   = -12
	MaxSemitones   = 12
)

const identityEps = 1e-9

// Request describes one render: the playback speed and the integer semitone
// shift to apply to the source buffer. Fractional semitones are rounded by
// the caller; the pipeline works at integer resolution.
type Request struct {
	Speed     float64
	Semitones int
}

// Transform applies time-stretch then pitch-shift to the source buffer and
// returns a new buffer; the source is never modified.
//
// The stretch stage resamples from the source rate to rate/speed, which
// scales duration by 1/speed and pitch by speed. The shift stage then
// applies a single pitch correction of 2^(semitones/12)/speed, undoing the
// stretch stage's pitch change and adding the requested shift in one pass.
//
// ctx is checked between stages so a superseded render stops early.
func Transform(ctx context.Context, src *Buffer, req Request) (*Buffer, error) {
	if src == nil || len(src.Samples) == 0 {
		return nil, ErrEmptyBuffer
	}
	if req.Speed < MinRenderSpeed || req.Speed > MaxRenderSpeed || math.IsNaN(req.Speed) {
		return nil, fmt.Errorf("render speed %.3f out of range [%.1f, %.1f]",
			req.Speed, MinRenderSpeed, MaxRenderSpeed)
	}
	if req.Semitones < MinSemitones || req.Semitones > MaxSemitones {
		return nil, fmt.Errorf("render pitch %d out of range [%d, %d] semitones",
			req.Semitones, MinSemitones, MaxSemitones)
	}

	samples := src.Samples
	transformed := false

	if math.Abs(req.Speed-1) > identityEps {
		rs, err := resample.NewForRates(float64(src.Rate), float64(src.Rate)/req.Speed)
		if err != nil {
			return nil, fmt.Errorf("design stretch resampler: %w", err)
		}
		samples = rs.Process(samples)
		transformed = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ratio := math.Pow(2, float64(req.Semitones)/12.0) / req.Speed
	if math.Abs(ratio-1) > identityEps {
		ps, err := pitch.NewPitchShifter(float64(src.Rate))
		if err != nil {
			return nil, fmt.Errorf("create pitch shifter: %w", err)
		}
		if err := ps.SetPitchRatio(ratio); err != nil {
			return nil, fmt.Errorf("set pitch ratio: %w", err)
		}
		samples = ps.Process(samples)
		transformed = true
	}

	if !transformed {
		// Identity render: copy so the result never aliases the source.
		samples = append([]float64(nil), samples...)
	}

	return &Buffer{Samples: samples, Rate: src.Rate}, nil
}

// Renderer serializes render requests onto a single worker goroutine.
//
// The request slot holds at most one pending request; submitting while a
// request is pending replaces it, and submitting while a render is in
// flight cancels that render. At most one render executes at a time and
// all sink loads happen on the worker, so there is no ordering race
// between overlapping renders: the last submitted request always wins.
type Renderer struct {
	src  *Buffer
	sink Sink

	reqCh chan Request
	done  chan struct{}
	wg    sync.WaitGroup

	mu       sync.Mutex
	inflight context.CancelFunc
	started  bool
}

// NewRenderer creates a Renderer for the given immutable source buffer and
// playback sink.
func NewRenderer(src *Buffer, sink Sink) *Renderer {
	return &Renderer{
		src:   src,
		sink:  sink,
		reqCh: make(chan Request, 1),
		done:  make(chan struct{}),
	}
}

// Start launches the render worker.
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.wg.Add(1)
	go r.run()
}

// Stop cancels any in-flight render and waits for the worker to exit.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.mu.Unlock()

	close(r.done)
	r.cancelInflight()
	r.wg.Wait()
}

// Submit queues a render request without blocking. A pending request that
// has not started yet is replaced; an in-flight render is cancelled so the
// worker gets to the new request sooner.
func (r *Renderer) Submit(speed float64, semitones int) {
	req := Request{Speed: speed, Semitones: semitones}

	// Cancel before enqueueing: once the request is in the channel the
	// worker may pick it up at any moment, and a cancel issued after the
	// send could hit the request's own render.
	r.cancelInflight()

	for {
		select {
		case r.reqCh <- req:
			return
		default:
		}
		// Slot occupied: drop the superseded pending request and retry.
		select {
		case <-r.reqCh:
		default:
		}
	}
}

func (r *Renderer) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case req := <-r.reqCh:
			r.render(req)
		}
	}
}

func (r *Renderer) render(req Request) {
	ctx, cancel := context.WithCancel(context.Background())
	r.setInflight(cancel)
	out, err := Transform(ctx, r.src, req)
	r.setInflight(nil)
	cancel()

	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		// Keep the previous playback untouched; no retry.
		logrus.WithFields(logrus.Fields{
			"speed":     req.Speed,
			"semitones": req.Semitones,
		}).WithError(err).Error("Audio render failed")
		return
	}

	r.sink.Load(out)
	r.sink.Play(true)

	logrus.WithFields(logrus.Fields{
		"speed":     req.Speed,
		"semitones": req.Semitones,
		"duration":  out.Duration(),
	}).Debug("Audio rendered")
}

func (r *Renderer) setInflight(cancel context.CancelFunc) {
	r.mu.Lock()
	r.inflight = cancel
	r.mu.Unlock()
}

func (r *Renderer) cancelInflight() {
	r.mu.Lock()
	cancel := r.inflight
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
