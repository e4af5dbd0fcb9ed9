package sync

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"storemirror/internal/store"
)

// RestoreStats counts the outcome of one restore run.
type RestoreStats struct {
	Downloaded int
	Skipped    int
	Errors     int
}

// Restorer mirrors a remote tree into a local directory. It is a separate
// entry point from the live watch lifecycle and shares only the store
// client and the ignore filter with it.
type Restorer struct {
	store  store.Store
	filter *IgnoreFilter
}

// NewRestorer creates a restorer over the given store and ignore filter.
func NewRestorer(st store.Store, filter *IgnoreFilter) *Restorer {
	return &Restorer{store: st, filter: filter}
}

// Restore downloads the remote tree rooted at remoteBase into localBase.
// An absent remote base is a normal outcome ("nothing to restore"), not an
// error. A local file whose modification time is not older than the remote
// copy is left untouched: local is authoritative when it is at least as
// new, so stale remote data never clobbers newer local edits.
func (r *Restorer) Restore(remoteBase, localBase string) (RestoreStats, error) {
	var stats RestoreStats

	exists, err := r.store.Exists(remoteBase)
	if err != nil {
		return stats, fmt.Errorf("failed to probe remote base %s: %w", remoteBase, err)
	}
	if !exists {
		log.Printf("[Restore] Remote path %s does not exist, nothing to restore", remoteBase)
		return stats, nil
	}

	r.restoreDir(remoteBase, localBase, "", &stats)
	log.Printf("[Restore] Finished %s -> %s: %d downloaded, %d skipped, %d errors",
		remoteBase, localBase, stats.Downloaded, stats.Skipped, stats.Errors)
	return stats, nil
}

// restoreDir mirrors one remote directory. A listing failure abandons this
// subtree only; the rest of the restore continues.
func (r *Restorer) restoreDir(remoteDir, localBase, relDir string, stats *RestoreStats) {
	entries, err := r.store.List(remoteDir)
	if err != nil {
		stats.Errors++
		log.Printf("[Restore] Failed to list %s: %v", remoteDir, err)
		return
	}

	for _, entry := range entries {
		rel := path.Join(relDir, entry.Name)
		if r.filter.Ignored(rel) {
			continue
		}
		remotePath := path.Join(remoteDir, entry.Name)
		localPath := filepath.Join(localBase, filepath.FromSlash(rel))

		if entry.IsDir {
			r.restoreDir(remotePath, localBase, rel, stats)
			continue
		}
		r.restoreFile(remotePath, localPath, entry, stats)
	}
}

func (r *Restorer) restoreFile(remotePath, localPath string, entry store.EntryInfo, stats *RestoreStats) {
	if info, err := os.Stat(localPath); err == nil {
		if !info.ModTime().Before(entry.ModTime) {
			stats.Skipped++
			return
		}
	}

	data, err := r.store.Read(remotePath)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Removed between listing and read; not a failure.
			return
		}
		stats.Errors++
		log.Printf("[Restore] Failed to read %s: %v", remotePath, err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		stats.Errors++
		log.Printf("[Restore] Failed to create dir for %s: %v", localPath, err)
		return
	}
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		stats.Errors++
		log.Printf("[Restore] Failed to write %s: %v", localPath, err)
		return
	}
	if !entry.ModTime.IsZero() {
		if err := os.Chtimes(localPath, time.Now(), entry.ModTime); err != nil {
			log.Printf("[Restore] Warning: failed to set mtime on %s: %v", localPath, err)
		}
	}

	stats.Downloaded++
	log.Printf("[Restore] Downloaded %s (%d bytes)", remotePath, len(data))
}
