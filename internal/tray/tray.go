// Package tray provides a system tray interface for running the player
// without a camera window.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: a play/pause toggle, a reset item, a status
// line showing the current playback parameters, and quit.
type Tray struct {
	onToggle func(paused bool)
	onReset  func()
	onQuit   func()
	paused   bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance with playback running.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback for the play/pause menu item.
func (t *Tray) OnToggle(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback for the reset menu item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Theremin")
	systray.SetTooltip("Theremin Gesture Player")

	t.menuToggle = systray.AddMenuItem("❚❚ Pause", "Pause or resume playback")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("speed 1.00x  pitch +0.0", "Current playback parameters")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset Parameters", "Restore neutral speed and pitch")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Theremin")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the play/pause menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused

	if paused {
		t.menuToggle.SetTitle("▶ Resume")
	} else {
		t.menuToggle.SetTitle("❚❚ Pause")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(paused)
	}
}

// handleReset handles the reset menu item click.
func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetParams updates the parameter status line in the menu.
func (t *Tray) SetParams(speed, pitch float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(fmt.Sprintf("speed %.2fx  pitch %+.1f", speed, pitch))
	}
}

// IsPaused returns whether playback is currently paused from the tray.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}
