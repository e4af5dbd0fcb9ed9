package sync

import (
	"fmt"
	"log"

	"storemirror/internal/store"
)

// DeletionPropagator mirrors local file removals to the remote store.
type DeletionPropagator struct {
	store   store.Store
	mapper  *PathMapper
	cache   *HashCache
	stats   *Stats
	enabled bool

	onEvent func(timestamp, action, path string, size int64)
	onError func(msg string)
}

// NewDeletionPropagator wires deletion handling against the shared services.
func NewDeletionPropagator(st store.Store, mapper *PathMapper, cache *HashCache, stats *Stats, enabled bool) *DeletionPropagator {
	return &DeletionPropagator{store: st, mapper: mapper, cache: cache, stats: stats, enabled: enabled}
}

// OnDelete handles a local file removal. The hash cache entry is always
// evicted so a recreated path is treated as new content. When propagation
// is enabled the remote counterpart is removed too. A failure is logged and
// counted but not retried here; the periodic rescan re-converges state.
func (p *DeletionPropagator) OnDelete(localPath string) {
	p.cache.Evict(localPath)

	if !p.enabled {
		return
	}

	remotePath, ok := p.mapper.ToRemote(localPath)
	if !ok {
		return
	}

	exists, err := p.store.Exists(remotePath)
	if err != nil {
		p.reportError(fmt.Sprintf("Failed to check remote %s before delete: %v", remotePath, err))
		return
	}
	if !exists {
		return
	}
	if err := p.store.Delete(remotePath); err != nil {
		p.reportError(fmt.Sprintf("Failed to delete remote %s: %v", remotePath, err))
		return
	}

	p.stats.AddDeleted()
	log.Printf("[Deletions] Removed remote %s", remotePath)
	if p.onEvent != nil {
		p.onEvent(timestampNow(), "Deleted", remotePath, 0)
	}
}

func (p *DeletionPropagator) reportError(msg string) {
	p.stats.AddError()
	log.Printf("[Deletions] %s", msg)
	if p.onError != nil {
		p.onError(msg)
	}
}
