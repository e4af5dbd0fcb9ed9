package websocket

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newTestConn returns the server side of a live websocket connection.
func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	connCh := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-connCh:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no server connection")
		return nil
	}
}

func TestHub_BroadcastDropsFailedClient(t *testing.T) {
	hub := New()
	conn := newTestConn(t)
	hub.Register(conn)
	_ = conn.Close()

	hub.Broadcast("stats", map[string]int{"uploaded": 1})

	if hub.ClientCount() != 0 {
		t.Errorf("failed client should be unregistered, %d left", hub.ClientCount())
	}
}

// Broadcasting to a dead client must not log through the default logger:
// the hub itself is installed as a log output, so a nested log call would
// re-acquire the logger mutex held by the outer write and wedge the agent.
func TestHub_LogMirrorSurvivesDeadClient(t *testing.T) {
	hub := New()
	conn := newTestConn(t)
	hub.Register(conn)
	_ = conn.Close()

	old := log.Writer()
	log.SetOutput(io.MultiWriter(io.Discard, NewLogWriter(hub)))
	defer log.SetOutput(old)

	done := make(chan struct{})
	go func() {
		log.Printf("sync event for a dropped dashboard")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("log write through the hub never returned")
	}
	if hub.ClientCount() != 0 {
		t.Error("dead client should be dropped during the broadcast")
	}
}
