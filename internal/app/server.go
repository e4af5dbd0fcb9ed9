package app

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Server implements the HTTP file protocol over a local data directory.
// It is the receiving end the sync agent talks to; the agent itself only
// depends on the store client interface.
type Server struct {
	dataDir string
	token   string
	started time.Time
}

// NewServer creates a store server rooted at dataDir. When token is
// non-empty every request must carry it as a bearer token.
func NewServer(dataDir, token string) *Server {
	return &Server{dataDir: dataDir, token: token, started: time.Now()}
}

// Mux returns the route table for the file API.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stat", s.auth(s.StatHandler))
	mux.HandleFunc("/api/list", s.auth(s.ListHandler))
	mux.HandleFunc("/api/file", s.auth(s.FileHandler))
	mux.HandleFunc("/api/mkdir", s.auth(s.MkdirHandler))
	mux.HandleFunc("/api/delete", s.auth(s.DeleteHandler))
	mux.HandleFunc("/health", s.HealthHandler)
	return mux
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// resolvePath maps the request's path parameter to a location under the
// data directory, rejecting traversal attempts.
func (s *Server) resolvePath(r *http.Request) (string, error) {
	queryPath := r.URL.Query().Get("path")
	cleanPath := filepath.Clean("/" + filepath.FromSlash(queryPath))
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("invalid path %q", queryPath)
	}
	return filepath.Join(s.dataDir, cleanPath), nil
}

// HealthHandler reports server liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	log.Printf("[Server] %s", msg)
	http.Error(w, msg, status)
}
