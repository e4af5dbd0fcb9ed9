package app

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"
)

// StatResponse carries file metadata for the stat endpoint. A missing path
// is reported with Exists=false and status 200, so existence checks need no
// error handling on the client side.
type StatResponse struct {
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// StatHandler returns metadata for a single path.
func (s *Server) StatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fullPath, err := s.resolvePath(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp StatResponse
	info, err := os.Stat(fullPath)
	if err != nil {
		if !os.IsNotExist(err) {
			writeJSONError(w, http.StatusInternalServerError, "failed to stat path")
			return
		}
	} else {
		resp = StatResponse{
			Exists:  true,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		}
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Error encoding response: %v", err)
	}
}
