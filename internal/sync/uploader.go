package sync

import (
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"storemirror/internal/store"
)

// Uploader pushes single files to the remote store, gated by the hash cache.
type Uploader struct {
	store   store.Store
	mapper  *PathMapper
	cache   *HashCache
	stats   *Stats
	verbose bool

	onEvent func(timestamp, action, path string, size int64)
	onError func(msg string)
}

// NewUploader wires the upload pipeline against its shared services.
func NewUploader(st store.Store, mapper *PathMapper, cache *HashCache, stats *Stats) *Uploader {
	return &Uploader{store: st, mapper: mapper, cache: cache, stats: stats}
}

func (u *Uploader) reportEvent(action, p string, size int64) {
	if u.onEvent != nil {
		u.onEvent(time.Now().Format("2006/01/02 15:04:05"), action, p, size)
	}
}

func (u *Uploader) reportError(msg string) {
	u.stats.AddError()
	log.Printf("[Uploader] %s", msg)
	if u.onError != nil {
		u.onError(msg)
	}
}

// MaybeUpload syncs one local file to the store if its content changed since
// the last successful upload. The hash comparison is the sole gate for
// redundant uploads; modification time is never trusted for this decision.
// On failure the old cached hash is left in place so the next attempt still
// sees a mismatch and retries.
func (u *Uploader) MaybeUpload(localPath string) {
	info, err := os.Stat(localPath)
	if err != nil {
		// Deleted between notification and upload; the delete event
		// handles removal.
		return
	}
	if info.IsDir() {
		return
	}

	hash, err := HashFile(localPath)
	if err != nil {
		u.reportError(fmt.Sprintf("Failed to hash %s: %v", localPath, err))
		return
	}

	if cached, ok := u.cache.Get(localPath); ok && cached == hash {
		u.stats.AddSkipped()
		if u.verbose {
			log.Printf("[Uploader] Unchanged, skipping: %s", localPath)
		}
		return
	}

	remotePath, ok := u.mapper.ToRemote(localPath)
	if !ok {
		log.Printf("[Uploader] No watch root maps %s, skipping", localPath)
		return
	}

	if err := u.EnsureRemoteDir(path.Dir(remotePath)); err != nil {
		u.reportError(fmt.Sprintf("Failed to ensure remote dir for %s: %v", remotePath, err))
		return
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		u.reportError(fmt.Sprintf("Failed to read %s: %v", localPath, err))
		return
	}
	if err := u.store.Write(remotePath, data); err != nil {
		u.reportError(fmt.Sprintf("Failed to upload %s: %v", remotePath, err))
		return
	}

	u.cache.Set(localPath, hash)
	u.stats.AddUploaded(int64(len(data)))
	log.Printf("[Uploader] Uploaded %s -> %s (%d bytes)", localPath, remotePath, len(data))
	u.reportEvent("Uploaded", remotePath, int64(len(data)))
}

// EnsureRemoteDir guarantees every segment of a remote directory path
// exists, creating missing ones left to right. The store is queried each
// time rather than cached: an existence check is cheap, and a stale
// "directory exists" cache would turn an out-of-band remote deletion into
// silent upload failures. Concurrent creation races resolve to success
// because Mkdir is idempotent.
func (u *Uploader) EnsureRemoteDir(remoteDir string) error {
	remoteDir = strings.Trim(path.Clean("/"+remoteDir), "/")
	if remoteDir == "" || remoteDir == "." {
		return nil
	}

	accum := ""
	for _, segment := range strings.Split(remoteDir, "/") {
		if accum == "" {
			accum = segment
		} else {
			accum = accum + "/" + segment
		}
		exists, err := u.store.Exists(accum)
		if err != nil {
			return fmt.Errorf("failed to check remote dir %s: %w", accum, err)
		}
		if exists {
			continue
		}
		if err := u.store.Mkdir(accum); err != nil {
			return fmt.Errorf("failed to create remote dir %s: %w", accum, err)
		}
	}
	return nil
}
