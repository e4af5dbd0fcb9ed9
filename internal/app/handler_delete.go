package app

import (
	"log"
	"net/http"
	"os"
)

// DeleteHandler removes a file. Deleting an absent path returns 204 so the
// operation is idempotent for the client.
func (s *Server) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fullPath, err := s.resolvePath(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	log.Printf("[Server] Deleted %s", fullPath)
	w.WriteHeader(http.StatusOK)
}
