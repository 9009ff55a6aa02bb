// Package server provides the HTTP status and preset API for the player.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/theremin/internal/app"
	"github.com/ayusman/theremin/internal/capture"
	"github.com/ayusman/theremin/internal/server/api"
	"github.com/ayusman/theremin/internal/store"
)

// Playback is the part of the player the server talks to.
type Playback interface {
	Status() app.Status
	ApplyPreset(p *store.Preset)
}

// Config holds the server configuration.
type Config struct {
	Store    *store.Store
	Camera   capture.Camera
	Playback Playback
}

// Server exposes playback status, the preset API, the camera stream and the
// parameter WebSocket over HTTP.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Playback != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)

		paramsHandler := NewParamsHandler(s.config.Playback)
		s.mux.Handle("/api/params", paramsHandler)
	}

	if s.config.Store != nil {
		var applier api.PresetApplier
		if s.config.Playback != nil {
			applier = s.config.Playback
		}
		presetHandler := api.NewPresetHandler(s.config.Store, applier)
		s.mux.Handle("/api/presets", presetHandler)
		s.mux.Handle("/api/presets/", presetHandler)
	}

	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleStatus handles GET requests to /api/status and returns the current
// playback parameters and transport state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.Playback.Status()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
