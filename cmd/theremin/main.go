package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/audio"
	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/detector"
	"github.com/ayusman/theremin/internal/server"
	"github.com/ayusman/theremin/internal/store"
	"github.com/ayusman/theremin/internal/tray"
)

func main() {
	audioPath := flag.String("audio", "music.wav", "WAV file to play")
	cameraID := flag.Int("camera", -1, "camera device index (-1 = last used, prompt if unavailable)")
	listen := flag.String("listen", "", "status server listen address, e.g. :8080 (empty to disable)")
	trayMode := flag.Bool("tray", false, "run in the system tray without a camera window")
	mock := flag.Bool("mock", false, "use the mock hand detector")
	flag.Parse()

	fmt.Println("Theremin - Gesture Controlled Playback")

	if _, err := os.Stat(*audioPath); err != nil {
		fmt.Fprintf(os.Stderr, "Audio file not found: %s\n", *audioPath)
		fmt.Fprintln(os.Stderr, "Place a WAV file there or pass one with --audio.")
		os.Exit(1)
	}

	source, err := audio.LoadWAV(*audioPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load audio file")
	}
	logrus.WithFields(logrus.Fields{
		"file":     *audioPath,
		"rate":     source.Rate,
		"duration": source.Duration(),
	}).Info("Audio loaded")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to get home directory")
	}

	dbDir := filepath.Join(homeDir, ".theremin")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logrus.WithError(err).Fatal("Failed to create data directory")
	}

	st, err := store.New(filepath.Join(dbDir, "theremin.db"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize store")
	}
	defer st.Close()

	// Pick a camera: the flag wins, otherwise the last used index.
	preferred := *cameraID
	if preferred < 0 {
		preferred = int(st.Settings().GetFloat(store.SettingCameraIndex, 0))
	}
	selector := capture.NewSelector(nil, os.Stdin, os.Stdout)
	camID, err := selector.Select(preferred)
	if err != nil {
		logrus.WithError(err).Fatal("No usable camera")
	}
	st.Settings().SetFloat(store.SettingCameraIndex, float64(camID))

	sink, err := audio.NewSpeakerSink(source.Rate)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open audio output")
	}
	defer sink.Close()

	controller := app.New(app.Config{Store: st, CameraID: camID}, source, sink)
	if *mock {
		controller.SetDetector(detector.NewMockDetector())
	}

	// Restore the persisted volume before playback starts.
	controller.SetVolume(st.Settings().GetFloat(store.SettingVolume, 1.0))

	saveVolume := func() {
		if err := st.Settings().SetFloat(store.SettingVolume, controller.Status().Params.Volume); err != nil {
			logrus.WithError(err).Warn("Failed to persist volume")
		}
	}
	defer saveVolume()

	if *listen != "" {
		srv := server.New(server.Config{
			Store:    st,
			Camera:   controller.Camera(),
			Playback: controller,
		})
		go func() {
			logrus.WithField("addr", *listen).Info("HTTP server listening")
			if err := srv.ListenAndServe(*listen); err != nil {
				logrus.WithError(err).Error("HTTP server stopped")
			}
		}()
	}

	controller.StartPlayback()

	if *trayMode {
		runTray(controller, saveVolume)
		return
	}

	runWindow(controller)
	controller.Stop()
}

// runTray runs headless with the system tray as the only UI. The background
// pipeline handles the camera at motion-gated frame rates.
func runTray(controller *app.Controller, saveVolume func()) {
	if err := controller.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start capture pipeline")
	}

	t := tray.New()
	t.OnToggle(func(paused bool) {
		controller.TogglePlayPause()
	})
	t.OnReset(controller.ResetParams)
	t.OnQuit(func() {
		saveVolume()
		controller.Stop()
	})

	// Keep the status line fresh while the menu is open.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			st := controller.Status()
			t.SetParams(st.Params.Speed, st.Params.Pitch)
		}
	}()

	t.Run()
}

// captureLoop reads frames and hands each one to process until process
// reports done or the camera stops delivering frames. A read failure ends
// the loop so the caller shuts playback down instead of spinning against a
// dead camera.
func captureLoop(camera capture.Camera, process func(frame *gocv.Mat) bool) error {
	for {
		frame, err := camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		done := process(frame)
		frame.Close()
		if done {
			return nil
		}
	}
}

// runWindow shows the mirrored camera feed with the playback HUD and handles
// the keyboard transport controls.
func runWindow(controller *app.Controller) {
	camera := controller.Camera()
	if err := camera.Open(); err != nil {
		logrus.WithError(err).Fatal("Failed to open camera")
	}
	defer camera.Close()
	camera.SetFPS(capture.DefaultFPS)

	window := gocv.NewWindow("Theremin")
	defer window.Close()

	err := captureLoop(camera, func(frame *gocv.Mat) bool {
		// Mirror the view so the hands move the way the player expects.
		gocv.Flip(*frame, frame, 1)

		hands, err := controller.ProcessFrame(frame)
		if err != nil {
			logrus.WithError(err).Error("Error detecting hands")
		}

		app.DrawOverlay(frame, hands, controller.Status())
		window.IMShow(*frame)

		switch window.WaitKey(1) {
		case 'q', 27: // Esc
			return true
		case 'p':
			controller.TogglePlayPause()
		case 'r':
			controller.ResetParams()
		case 's':
			name := "preset " + time.Now().Format("2006-01-02 15:04:05")
			if _, err := controller.SavePreset(name); err != nil {
				logrus.WithError(err).Error("Failed to save preset")
			}
		}
		return false
	})
	if err != nil {
		logrus.WithError(err).Error("Camera stopped delivering frames, shutting down")
	}
}
