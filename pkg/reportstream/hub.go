// Package reportstream pushes computed reports to websocket subscribers and
// provides the reconnecting client used to consume them.
package reportstream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboard may be served from anywhere on the LAN
	},
}

// Hub keeps the latest report and the connected clients.
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	latestMu sync.RWMutex
	latest   []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

// Publish stores the report and broadcasts it.
func (h *Hub) Publish(report *engine.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	h.latestMu.Lock()
	h.latest = payload
	h.latestMu.Unlock()

	h.clientsMu.RLock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, mu := range h.clients {
		clients[c] = mu
	}
	h.clientsMu.RUnlock()

	for client, mu := range clients {
		mu.Lock()
		err := client.WriteMessage(websocket.TextMessage, payload)
		mu.Unlock()
		if err != nil {
			h.remove(client)
		}
	}
	return nil
}

// Latest returns the last published report as JSON, nil if none yet.
func (h *Hub) Latest() []byte {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.latest
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and keeps the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	mu := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = mu
	h.clientsMu.Unlock()

	// Send current report immediately if available
	if latest := h.Latest(); latest != nil {
		mu.Lock()
		conn.WriteMessage(websocket.TextMessage, latest)
		mu.Unlock()
	}

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.clientsMu.Unlock()
	if ok {
		conn.Close()
	}
}
