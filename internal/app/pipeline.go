package app

import (
	"time"

	"github.com/sirupsen/logrus"
)

// runPipeline is the background capture loop used in tray mode. It reads
// frames on a ticker and manages the transition between idle and active
// frame rates based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS)
// 2. On motion detected, switch to active mode (ActiveFPS)
// 3. Run hand detection and apply gesture controls
// 4. After 2s without motion, switch back to idle mode
func (c *Controller) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			camera := c.Camera()

			frame, err := camera.ReadFrame()
			if err != nil {
				logrus.WithError(err).Error("Error reading frame")
				continue
			}

			motionDetected, _ := c.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					logrus.Debug("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > idleTimeout() {
					activeMode = false
					camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					logrus.Debug("Switched to idle mode")
				}
			}

			// Hands only move parameters while we are tracking them.
			if !activeMode {
				frame.Close()
				continue
			}

			hands, err := c.Detector().Detect(frame)
			frame.Close()

			if err != nil {
				logrus.WithError(err).Error("Error detecting hands")
				continue
			}

			c.applyGestures(hands)
		}
	}
}
