package sync

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// progressCadence is how many files pass between initial sync progress lines.
const progressCadence = 50

// Walker enumerates the files of a watch root, pruning ignored subtrees
// before descending into them.
type Walker struct {
	filter *IgnoreFilter
}

// NewWalker creates a walker using the given ignore filter.
func NewWalker(filter *IgnoreFilter) *Walker {
	return &Walker{filter: filter}
}

// CollectFiles returns every non-ignored file under the root, depth-first.
// Ignored directories are skipped entirely rather than descended and
// filtered.
func (w *Walker) CollectFiles(root WatchRoot) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root.LocalDir, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root.LocalDir, walkPath)
		if err != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		if w.filter.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, walkPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root.LocalDir, err)
	}
	sort.Strings(files)
	return files, nil
}

// initialSync walks every watch root once and pushes each file through the
// upload pipeline one at a time. The serialization is deliberate throttling:
// a large first run must not saturate the store with concurrent requests.
// A missing root directory is logged and skipped, not fatal.
func (e *Engine) initialSync() {
	start := time.Now()
	for _, root := range e.config.Roots {
		if _, err := os.Stat(root.LocalDir); err != nil {
			log.Printf("[Engine] Watch root %s not found, skipping initial sync: %v", root.LocalDir, err)
			continue
		}

		files, err := e.walker.CollectFiles(root)
		if err != nil {
			e.reportError(fmt.Sprintf("Initial sync walk failed for %s: %v", root.LocalDir, err))
			continue
		}
		log.Printf("[Engine] Initial sync of %s: %d files", root.LocalDir, len(files))

		for i, file := range files {
			e.uploader.MaybeUpload(file)
			if (i+1)%progressCadence == 0 {
				log.Printf("[Engine] Initial sync progress for %s: %d/%d", root.LocalDir, i+1, len(files))
			}
		}
	}
	log.Printf("[Engine] Initial sync completed in %v (%s)", time.Since(start).Round(time.Millisecond), e.stats.Summary())
}
