package websocket

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeDeadline keeps one slow client from blocking a broadcast.
const writeDeadline = 500 * time.Millisecond

// Message is the envelope broadcast to every client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans live agent telemetry out to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Register adds a client connection.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

// Unregister removes a client connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends a typed message to every connected client. Clients that
// fail a write are dropped.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	msg := Message{Type: msgType, Data: data}
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteJSON(msg); err != nil {
			// The hub is wired into log.SetOutput; logging here would
			// re-enter the logger's mutex and deadlock.
			fmt.Printf("WS write error: %v\n", err)
			_ = conn.Close()
			h.Unregister(conn)
		}
	}
}

// LogWriter mirrors process log output to the hub so dashboards can tail
// the agent live.
type LogWriter struct {
	hub *Hub
}

// NewLogWriter creates a hub-backed io.Writer.
func NewLogWriter(hub *Hub) *LogWriter {
	return &LogWriter{hub: hub}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	level := "info"
	upper := strings.ToUpper(msg)
	if strings.Contains(upper, "ERROR") || strings.Contains(upper, "FAILED") {
		level = "error"
	} else if strings.Contains(upper, "WARN") {
		level = "warn"
	}
	w.hub.Broadcast("log", map[string]string{"msg": msg, "level": level})
	return len(p), nil
}
