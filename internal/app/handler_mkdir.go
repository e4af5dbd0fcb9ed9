package app

import (
	"log"
	"net/http"
	"os"
)

// MkdirHandler creates a directory. Creating an existing directory is a
// success, which makes the client's ensure loop idempotent by construction.
func (s *Server) MkdirHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fullPath, err := s.resolvePath(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := os.MkdirAll(fullPath, 0755); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to create directory")
		return
	}

	log.Printf("[Server] Ensured directory %s", fullPath)
	w.WriteHeader(http.StatusCreated)
}
