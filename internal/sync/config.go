package sync

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// WatchRoot pairs a local directory tree with a namespace prefix under the
// remote base path.
type WatchRoot struct {
	// LocalDir is the absolute local directory to watch
	LocalDir string
	// RemotePrefix is the namespace under the store base path, e.g. "data"
	RemotePrefix string
}

// SyncConfig configures the sync engine. Loaded once at startup and
// immutable for the process lifetime.
type SyncConfig struct {
	// Roots are the local->remote tree mappings
	Roots []WatchRoot
	// DebounceInterval is the quiet period before an upload fires
	DebounceInterval time.Duration
	// IgnorePatterns are literal substrings matched against root-relative paths
	IgnorePatterns []string
	// IgnoreRegex are compiled expressions matched against root-relative paths
	IgnoreRegex []*regexp.Regexp
	// PropagateDeletes mirrors local file removals to the store
	PropagateDeletes bool
	// InitialSync walks every root once at startup before watching
	InitialSync bool
	// StatsInterval is how often to print running counters (0 = never)
	StatsInterval time.Duration
	// RescanInterval re-runs the full walk periodically to converge missed
	// events (0 = disabled)
	RescanInterval time.Duration
	// Verbose enables per-skip logging
	Verbose bool
	// OnSyncEvent callback for sync events (timestamp, action, path, size)
	OnSyncEvent func(timestamp, action, path string, size int64)
	// OnError callback for counted errors
	OnError func(msg string)
}

// Validate rejects configurations the engine cannot route reliably.
// Nested watch roots would silently mis-route files under first-match
// resolution, so they are refused outright.
func (c *SyncConfig) Validate() error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("no watch roots configured")
	}
	if c.DebounceInterval <= 0 {
		return fmt.Errorf("debounce interval must be positive")
	}
	for i, root := range c.Roots {
		if root.LocalDir == "" {
			return fmt.Errorf("watch root %d has no local directory", i+1)
		}
		if !filepath.IsAbs(root.LocalDir) {
			return fmt.Errorf("watch root %q must be an absolute path", root.LocalDir)
		}
		for j, other := range c.Roots {
			if i == j {
				continue
			}
			if root.LocalDir == other.LocalDir {
				return fmt.Errorf("watch root %q configured twice", root.LocalDir)
			}
			if isSubPath(other.LocalDir, root.LocalDir) {
				return fmt.Errorf("watch root %q is nested inside %q", root.LocalDir, other.LocalDir)
			}
		}
	}
	return nil
}

// isSubPath reports whether child is strictly inside parent.
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// GetConfig returns the engine configuration.
func (e *Engine) GetConfig() SyncConfig {
	return e.config
}
