// Package app wires the capture, detection, gesture and audio layers into
// the playback controller.
package app

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/theremin/internal/audio"
	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/gesture"
	"github.com/ayusman/theremin/internal/store"
)

// Pipeline timing constants for the background (tray) loop.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while hands are being tracked.
	ActiveFPS = 30
	// IdleTimeoutMs is the time in milliseconds without motion before
	// dropping back to idle mode.
	IdleTimeoutMs = 2000
)

// ErrNoStore is returned by preset operations when no database is configured.
var ErrNoStore = errors.New("no store configured")

// Config holds configuration options for the controller.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
}

// Status is a snapshot of the controller's playback state.
type Status struct {
	Params  audio.Params `json:"params"`
	Playing bool         `json:"playing"`
	Paused  bool         `json:"paused"`
}

// Controller owns the frame-to-audio control flow: each frame's detected
// hands are mapped to parameter candidates, debounced, and applied to the
// playback sink. Volume goes straight to the sink; accepted speed and pitch
// changes are handed off to the render worker.
type Controller struct {
	config    Config
	camera    capture.Camera
	motion    *capture.MotionDetector
	det       detector.Detector
	mapper    *gesture.Mapper
	debouncer *gesture.Debouncer
	renderer  *audio.Renderer
	sink      audio.Sink

	mu      sync.RWMutex
	params  audio.Params
	playing bool
	paused  bool
	stopCh  chan struct{}
}

// New creates a controller for the given source buffer and playback sink.
func New(config Config, source *audio.Buffer, sink audio.Sink) *Controller {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	c := &Controller{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		motion:    capture.NewMotionDetector(motionThreshold),
		mapper:    gesture.NewMapper(),
		debouncer: gesture.NewDebouncer(),
		renderer:  audio.NewRenderer(source, sink),
		sink:      sink,
		params:    audio.DefaultParams(),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		c.det = mp
		logrus.Info("Using MediaPipe hand detection")
	} else {
		logrus.WithError(err).Warn("MediaPipe not available, using mock detector")
		c.det = detector.NewMockDetector()
	}

	return c
}

// SetDetector sets the hand detector implementation to use.
func (c *Controller) SetDetector(d detector.Detector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.det = d
}

// SetCamera replaces the camera, e.g. with a mock for tests.
func (c *Controller) SetCamera(cam capture.Camera) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.camera = cam
}

// Detector returns the hand detector.
func (c *Controller) Detector() detector.Detector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.det
}

// Camera returns the camera instance.
func (c *Controller) Camera() capture.Camera {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.camera
}

// MotionDetector returns the motion detector instance.
func (c *Controller) MotionDetector() *capture.MotionDetector {
	return c.motion
}

// Debouncer returns the parameter debouncer.
func (c *Controller) Debouncer() *gesture.Debouncer {
	return c.debouncer
}

// StartPlayback starts the render worker and kicks off looping playback of
// the source at the current parameters.
func (c *Controller) StartPlayback() {
	c.renderer.Start()

	c.mu.Lock()
	speed := c.params.Speed
	semitones := int(math.Round(c.params.Pitch))
	c.playing = true
	c.paused = false
	c.mu.Unlock()

	c.renderer.Submit(speed, semitones)
	logrus.WithField("speed", speed).Info("Playback started")
}

// ProcessFrame runs hand detection on one frame and applies the resulting
// gesture controls. The detected hands are returned for overlay drawing.
func (c *Controller) ProcessFrame(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	hands, err := c.Detector().Detect(frame)
	if err != nil {
		return nil, err
	}

	c.applyGestures(hands)
	return hands, nil
}

// applyGestures maps one frame's hands to parameter changes. Volume updates
// are applied immediately; speed and pitch go through the debouncer and, when
// a render is due, to the render worker. Renders are not submitted while
// playback is paused.
func (c *Controller) applyGestures(hands []detector.HandLandmarks) {
	cand := c.mapper.Map(hands)

	c.mu.Lock()

	if cand.HasVolume {
		c.params.Volume = cand.Volume
		c.sink.SetVolume(cand.Volume)
	}

	dec := c.debouncer.Offer(cand)
	if dec.SpeedAccepted {
		c.params.Speed = dec.Speed
	}
	if dec.PitchAccepted {
		c.params.Pitch = dec.Pitch
	}

	submit := dec.Render && !c.paused
	speed := c.params.Speed
	semitones := int(math.Round(c.params.Pitch))

	c.mu.Unlock()

	if submit {
		c.renderer.Submit(speed, semitones)
	}
}

// TogglePlayPause pauses playback if it is running, resumes it if paused,
// and starts it if it has not started yet.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.playing:
		c.sink.Play(true)
		c.playing = true
		c.paused = false
		logrus.Info("Playback started")
	case c.paused:
		c.sink.Resume()
		c.paused = false
		logrus.Info("Playback resumed")
	default:
		c.sink.Pause()
		c.paused = true
		logrus.Info("Playback paused")
	}
}

// ResetParams restores speed and pitch to their neutral values, clears the
// debouncer's references and interval gate, and re-renders the unmodified
// source. Volume is left where the hands put it. A paused player resumes.
func (c *Controller) ResetParams() {
	c.mu.Lock()
	c.params.Speed = 1.0
	c.params.Pitch = 0.0
	c.debouncer.Reset()
	if c.paused {
		c.sink.Resume()
		c.paused = false
	}
	c.mu.Unlock()

	c.renderer.Submit(1.0, 0)
	logrus.Info("Parameters reset")
}

// SetVolume sets the playback volume directly, e.g. when restoring the
// persisted level at startup.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Volume = v
	c.sink.SetVolume(v)
}

// Status returns a snapshot of the current playback state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{Params: c.params, Playing: c.playing, Paused: c.paused}
}

// SavePreset persists the current parameters under the given name.
func (c *Controller) SavePreset(name string) (*store.Preset, error) {
	if c.config.Store == nil {
		return nil, ErrNoStore
	}

	st := c.Status()
	p := &store.Preset{
		ID:     uuid.NewString(),
		Name:   name,
		Speed:  st.Params.Speed,
		Pitch:  st.Params.Pitch,
		Volume: st.Params.Volume,
	}

	if err := c.config.Store.Presets().Create(p); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"name":  name,
		"speed": p.Speed,
		"pitch": p.Pitch,
	}).Info("Preset saved")

	return p, nil
}

// ApplyPreset sets the playback parameters from a saved preset and renders
// them. The debouncer's references move with the preset so the next frame's
// candidates are judged against the applied values.
func (c *Controller) ApplyPreset(p *store.Preset) {
	c.mu.Lock()
	c.params.Speed = p.Speed
	c.params.Pitch = p.Pitch
	c.params.Volume = p.Volume
	c.sink.SetVolume(p.Volume)
	c.debouncer.SetReference(p.Speed, p.Pitch)
	speed := c.params.Speed
	semitones := int(math.Round(c.params.Pitch))
	c.mu.Unlock()

	c.renderer.Submit(speed, semitones)

	logrus.WithFields(logrus.Fields{
		"name":  p.Name,
		"speed": p.Speed,
		"pitch": p.Pitch,
	}).Info("Preset applied")
}

// Start opens the camera and begins the background capture loop. It is used
// in tray mode; the windowed mode drives ProcessFrame from its own display
// loop instead.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Don't start if already running
	if c.stopCh != nil {
		return nil
	}

	if err := c.camera.Open(); err != nil {
		return err
	}

	c.camera.SetFPS(IdleFPS)

	c.stopCh = make(chan struct{})
	go c.runPipeline(c.stopCh)

	logrus.Info("Capture pipeline started")
	return nil
}

// Stop halts the capture loop (if running), stops the render worker and
// releases the camera and detectors. The sink is owned by the caller and is
// not closed here.
func (c *Controller) Stop() {
	c.mu.Lock()

	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}

	if err := c.camera.Close(); err != nil {
		logrus.WithError(err).Error("Error closing camera")
	}

	c.motion.Close()

	if c.det != nil {
		if err := c.det.Close(); err != nil {
			logrus.WithError(err).Error("Error closing detector")
		}
	}

	c.mu.Unlock()

	c.renderer.Stop()

	logrus.Info("Controller stopped")
}

func idleTimeout() time.Duration {
	return time.Duration(IdleTimeoutMs) * time.Millisecond
}
