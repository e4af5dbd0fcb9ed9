package app

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// FileHandler serves file reads (GET) and overwriting writes (PUT).
func (s *Server) FileHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.readFile(w, r)
	case http.MethodPut:
		s.writeFile(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) readFile(w http.ResponseWriter, r *http.Request) {
	fullPath, err := s.resolvePath(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer func() { _ = file.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, file); err != nil {
		log.Printf("[Server] Error streaming %s: %v", fullPath, err)
	}
}

func (s *Server) writeFile(w http.ResponseWriter, r *http.Request) {
	fullPath, err := s.resolvePath(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	// Write through a temp file so a dropped connection never leaves a
	// half-written destination.
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write file")
		return
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		_ = os.Remove(tmpPath)
		writeJSONError(w, http.StatusInternalServerError, "failed to finalize file")
		return
	}

	log.Printf("[Server] Wrote %s (%d bytes)", filepath.Base(fullPath), len(data))
	w.WriteHeader(http.StatusCreated)
}
