package sync

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
)

// HashCache records the last-synchronized content hash per local path. It
// answers "has this file actually changed" independent of filesystem
// timestamps, which can move without the content changing. The cache lives
// only in process memory; after a restart the first upload per path is
// always attempted.
type HashCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewHashCache creates an empty hash cache.
func NewHashCache() *HashCache {
	return &HashCache{entries: make(map[string]string)}
}

// Get returns the cached hash for a local path.
func (c *HashCache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hash, ok := c.entries[path]
	return hash, ok
}

// Set records the hash for a local path after a successful upload.
func (c *HashCache) Set(path, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = hash
}

// Evict drops the entry for a local path, so a future recreation of the
// same path is treated as new content.
func (c *HashCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached entries.
func (c *HashCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// HashFile computes the MD5 digest of a file's contents. Collision
// resistance is not security-critical here; the digest is purely a change
// fingerprint.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer func() { _ = file.Close() }()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
