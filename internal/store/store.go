package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a remote path does not exist.
var ErrNotFound = errors.New("store: not found")

// EntryInfo describes a single entry in the remote store.
type EntryInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// Store is the remote file store contract. All paths are slash-separated
// and relative to the store's configured base path. Implementations must be
// safe for concurrent use; every call is stateless.
type Store interface {
	// Exists reports whether the remote path exists.
	Exists(path string) (bool, error)
	// Stat returns metadata for the remote path, ErrNotFound if absent.
	Stat(path string) (EntryInfo, error)
	// List returns the direct children of a remote directory.
	List(path string) ([]EntryInfo, error)
	// Read returns the full contents of a remote file.
	Read(path string) ([]byte, error)
	// Write stores data at the remote path, overwriting any existing file.
	Write(path string, data []byte) error
	// Mkdir creates a remote directory. Already existing is not an error.
	Mkdir(path string) error
	// Delete removes a remote file. Already absent is not an error.
	Delete(path string) error
}
