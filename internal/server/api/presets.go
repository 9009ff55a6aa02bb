// Package api provides the HTTP API handlers for the player.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/theremin/internal/store"
)

// PresetApplier pushes a preset's parameters into the running player.
type PresetApplier interface {
	ApplyPreset(p *store.Preset)
}

// PresetHandler handles HTTP requests for preset resources.
type PresetHandler struct {
	store   *store.Store
	applier PresetApplier
}

// NewPresetHandler creates a new PresetHandler. The applier may be nil, in
// which case the apply endpoint returns 503.
func NewPresetHandler(s *store.Store, applier PresetApplier) *PresetHandler {
	return &PresetHandler{store: s, applier: applier}
}

// ServeHTTP routes between the collection, item and apply endpoints.
// Expected paths: /api/presets, /api/presets/{id}, /api/presets/{id}/apply.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/apply"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type presetRequest struct {
	Name   string   `json:"name"`
	Speed  *float64 `json:"speed"`
	Pitch  *float64 `json:"pitch"`
	Volume *float64 `json:"volume"`
}

type presetResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Speed     float64 `json:"speed"`
	Pitch     float64 `json:"pitch"`
	Volume    float64 `json:"volume"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type listPresetsResponse struct {
	Presets []presetResponse `json:"presets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Preset to a presetResponse.
func toResponse(p *store.Preset) presetResponse {
	return presetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Speed:     p.Speed,
		Pitch:     p.Pitch,
		Volume:    p.Volume,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// validRanges rejects parameter values the render pipeline cannot honor.
func validRanges(speed, pitch, volume float64) bool {
	return speed >= 0.5 && speed <= 2.0 &&
		pitch >= -12 && pitch <= 12 &&
		volume >= 0 && volume <= 1
}

// list handles GET /api/presets and returns all presets.
func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	response := listPresetsResponse{
		Presets: make([]presetResponse, 0, len(presets)),
	}

	for _, p := range presets {
		response.Presets = append(response.Presets, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/presets/{id} and returns a single preset.
func (h *PresetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(preset))
}

// create handles POST /api/presets and creates a new preset. Missing
// parameters default to the neutral values.
func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	preset := &store.Preset{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Speed:  1.0,
		Pitch:  0.0,
		Volume: 1.0,
	}
	if req.Speed != nil {
		preset.Speed = *req.Speed
	}
	if req.Pitch != nil {
		preset.Pitch = *req.Pitch
	}
	if req.Volume != nil {
		preset.Volume = *req.Volume
	}

	if !validRanges(preset.Speed, preset.Pitch, preset.Volume) {
		writeError(w, http.StatusBadRequest, "Parameter out of range")
		return
	}

	if err := h.store.Presets().Create(preset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create preset")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(preset))
}

// update handles PUT /api/presets/{id} and updates an existing preset.
func (h *PresetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		preset.Name = req.Name
	}
	if req.Speed != nil {
		preset.Speed = *req.Speed
	}
	if req.Pitch != nil {
		preset.Pitch = *req.Pitch
	}
	if req.Volume != nil {
		preset.Volume = *req.Volume
	}

	if !validRanges(preset.Speed, preset.Pitch, preset.Volume) {
		writeError(w, http.StatusBadRequest, "Parameter out of range")
		return
	}

	if err := h.store.Presets().Update(preset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update preset")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(preset))
}

// delete handles DELETE /api/presets/{id} and removes a preset.
func (h *PresetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Presets().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// apply handles POST /api/presets/{id}/apply and pushes the preset's
// parameters into the running player.
func (h *PresetHandler) apply(w http.ResponseWriter, r *http.Request, id string) {
	if h.applier == nil {
		writeError(w, http.StatusServiceUnavailable, "Player not running")
		return
	}

	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	h.applier.ApplyPreset(preset)

	writeJSON(w, http.StatusOK, toResponse(preset))
}
