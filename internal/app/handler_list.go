package app

import (
	"net/http"
	"os"

	"storemirror/internal/store"
)

// ListHandler returns the direct children of a directory.
func (s *Server) ListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fullPath, err := s.resolvePath(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	dirEntries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to read directory")
		return
	}

	entries := make([]store.EntryInfo, 0, len(dirEntries))
	for _, d := range dirEntries {
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, store.EntryInfo{
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   d.IsDir(),
		})
	}

	writeJSON(w, entries)
}
