package sync

import (
	"path"
	"path/filepath"
	"strings"
)

// PathMapper translates between local absolute paths and remote store paths.
// Remote paths are slash-separated and relative to the store base path.
type PathMapper struct {
	roots []WatchRoot
}

// NewPathMapper creates a mapper over the configured watch roots.
func NewPathMapper(roots []WatchRoot) *PathMapper {
	return &PathMapper{roots: roots}
}

// RootFor finds the watch root owning localPath and the path relative to it.
// First match wins; configuration validation keeps roots disjoint.
// Returns false when the path is under no configured root, which callers
// must treat as "skip, do not sync".
func (m *PathMapper) RootFor(localPath string) (WatchRoot, string, bool) {
	for _, root := range m.roots {
		rel, err := filepath.Rel(root.LocalDir, localPath)
		if err != nil {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return root, rel, true
	}
	return WatchRoot{}, "", false
}

// ToRemote maps a local absolute path to its remote store path.
func (m *PathMapper) ToRemote(localPath string) (string, bool) {
	root, rel, ok := m.RootFor(localPath)
	if !ok {
		return "", false
	}
	if rel == "." {
		return root.RemotePrefix, true
	}
	return path.Join(root.RemotePrefix, filepath.ToSlash(rel)), true
}

// ToLocal maps a remote store path back to a local path under the given
// watch root. Inverse of ToRemote, used during restore.
func (m *PathMapper) ToLocal(remotePath string, root WatchRoot) (string, bool) {
	prefix := strings.Trim(root.RemotePrefix, "/")
	cleaned := strings.Trim(path.Clean("/"+remotePath), "/")
	if cleaned == prefix {
		return root.LocalDir, true
	}
	if prefix != "" {
		if !strings.HasPrefix(cleaned, prefix+"/") {
			return "", false
		}
		cleaned = strings.TrimPrefix(cleaned, prefix+"/")
	}
	return filepath.Join(root.LocalDir, filepath.FromSlash(cleaned)), true
}
