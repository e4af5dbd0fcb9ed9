package app

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"storemirror/internal/agent/database"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startStatusServer exposes the agent's own telemetry while live sync runs:
// health, recent history, traffic totals and a websocket feed.
func (a *App) startStatusServer(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/history", a.historyHandler)
	mux.HandleFunc("/stats", a.statsHandler)
	mux.HandleFunc("/ws", a.wsHandler)

	log.Printf("Status server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Status server error: %v", err)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthy, lastError := a.Health.GetStatus()
	snap := a.Engine.Stats().Snapshot()
	writeJSON(w, map[string]interface{}{
		"healthy":    healthy,
		"last_error": lastError,
		"state":      a.Engine.State(),
		"uptime":     time.Since(snap.Started).Round(time.Second).String(),
		"counters":   snap,
		"store":      a.Health.GetStoreStatus(),
	})
}

func (a *App) historyHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if env := r.URL.Query().Get("limit"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val > 0 {
			limit = val
		}
	}
	items, err := database.GetHistory(limit, r.URL.Query().Get("q"))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	writeJSON(w, items)
}

func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"counters": a.Engine.Stats().Snapshot(),
		"traffic":  database.GetTrafficStats(),
	})
}

func (a *App) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade failed: %v", err)
		return
	}
	a.Hub.Register(conn)
	defer a.Hub.Unregister(conn)

	// Drain client messages until the connection drops.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
