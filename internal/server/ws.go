package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// paramsBroadcastInterval is the rate at which playback state is pushed to
// connected WebSocket clients.
const paramsBroadcastInterval = 100 * time.Millisecond

// ParamsHandler broadcasts the playback parameters via WebSocket so a UI can
// follow the hands in real time.
type ParamsHandler struct {
	playback Playback
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewParamsHandler creates a new ParamsHandler for the given player.
func NewParamsHandler(p Playback) *ParamsHandler {
	h := &ParamsHandler{
		playback: p,
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ParamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade error")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes the playback state to all connected clients.
func (h *ParamsHandler) broadcast() {
	ticker := time.NewTicker(paramsBroadcastInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		msg, _ := json.Marshal(map[string]any{
			"status":    h.playback.Status(),
			"timestamp": time.Now().UnixMilli(),
		})

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
