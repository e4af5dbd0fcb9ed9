package sync

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"storemirror/internal/store"

	"github.com/fsnotify/fsnotify"
)

// Engine states.
const (
	StateStopped     = "stopped"
	StateConnecting  = "connecting"
	StateInitialSync = "initial-syncing"
	StateWatching    = "watching"
)

// Engine is the live watch controller. It owns startup, event routing,
// periodic statistics and graceful shutdown, and moves through
// stopped -> connecting -> initial-syncing -> watching -> stopped.
type Engine struct {
	config     SyncConfig
	store      store.Store
	filter     *IgnoreFilter
	mapper     *PathMapper
	cache      *HashCache
	stats      *Stats
	uploader   *Uploader
	deletions  *DeletionPropagator
	debouncer  *Debouncer
	walker     *Walker
	watcher    *fsnotify.Watcher
	stopCh     chan struct{}
	stateMu    stdsync.RWMutex
	state      string
	stopOnce   stdsync.Once
	loopDoneCh chan struct{}
}

// NewEngine creates a sync engine over the given store. The configuration
// must already be validated.
func NewEngine(config SyncConfig, st store.Store) *Engine {
	filter := NewIgnoreFilter(config.IgnorePatterns, config.IgnoreRegex)
	mapper := NewPathMapper(config.Roots)
	cache := NewHashCache()
	stats := NewStats()

	uploader := NewUploader(st, mapper, cache, stats)
	uploader.verbose = config.Verbose
	uploader.onEvent = config.OnSyncEvent
	uploader.onError = config.OnError

	deletions := NewDeletionPropagator(st, mapper, cache, stats, config.PropagateDeletes)
	deletions.onEvent = config.OnSyncEvent
	deletions.onError = config.OnError

	e := &Engine{
		config:     config,
		store:      st,
		filter:     filter,
		mapper:     mapper,
		cache:      cache,
		stats:      stats,
		uploader:   uploader,
		deletions:  deletions,
		walker:     NewWalker(filter),
		stopCh:     make(chan struct{}),
		state:      StateStopped,
		loopDoneCh: make(chan struct{}),
	}
	e.debouncer = NewDebouncer(config.DebounceInterval, uploader.MaybeUpload)
	return e
}

// Stats exposes the engine's running counters.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// State returns the current lifecycle state.
func (e *Engine) State() string {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

func (e *Engine) setState(s string) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// Start probes the store, runs the initial sync if configured, then
// subscribes to filesystem notifications for all existing watch roots.
// An unreachable store is fatal: without it there is nothing useful the
// engine can do.
func (e *Engine) Start() error {
	e.setState(StateConnecting)
	if _, err := e.store.Exists(""); err != nil {
		e.setState(StateStopped)
		return fmt.Errorf("remote store unreachable: %w", err)
	}
	log.Printf("[Engine] Store reachable, %d watch roots configured", len(e.config.Roots))

	if e.config.InitialSync {
		e.setState(StateInitialSync)
		e.initialSync()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		e.setState(StateStopped)
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	e.watcher = watcher

	for _, root := range e.config.Roots {
		if _, err := os.Stat(root.LocalDir); err != nil {
			log.Printf("[Engine] Watch root %s not found, not watching: %v", root.LocalDir, err)
			continue
		}
		if err := e.addWatchRecursive(root, root.LocalDir); err != nil {
			// Transient: keep the rest of the roots alive.
			log.Printf("[Engine] Failed to watch %s: %v", root.LocalDir, err)
		}
	}

	e.setState(StateWatching)
	go e.watchLoop()
	if e.config.StatsInterval > 0 {
		go e.statsLoop()
	}
	if e.config.RescanInterval > 0 {
		go e.rescanLoop()
	}
	log.Printf("[Engine] Watching for changes (debounce %v)", e.config.DebounceInterval)
	return nil
}

// Stop cancels pending uploads, closes the subscription and prints the
// final statistics.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		e.debouncer.Stop()
		if e.watcher != nil {
			_ = e.watcher.Close()
			<-e.loopDoneCh
		}
		e.setState(StateStopped)
		log.Printf("[Engine] Stopped. Final stats: %s", e.stats.Summary())
	})
}

// addWatchRecursive registers a directory tree with the watcher, pruning
// ignored subtrees with the same filter the upload paths use.
func (e *Engine) addWatchRecursive(root WatchRoot, dir string) error {
	return filepath.Walk(dir, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root.LocalDir, walkPath)
		if err != nil {
			return nil
		}
		if rel != "." && e.filter.Ignored(rel) {
			return filepath.SkipDir
		}
		if err := e.watcher.Add(walkPath); err != nil {
			return err
		}
		return nil
	})
}

func (e *Engine) watchLoop() {
	defer close(e.loopDoneCh)
	for {
		select {
		case <-e.stopCh:
			return
		case event, ok := <-e.watcher.Events:
			if !ok {
				return
			}
			e.handleEvent(event)
		case err, ok := <-e.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; the engine keeps running.
			log.Printf("[Engine] Watch error: %v", err)
		}
	}
}

// handleEvent routes one filesystem notification. Add/change events go
// through the debouncer; removal events cancel any pending upload and run
// deletion propagation immediately.
func (e *Engine) handleEvent(event fsnotify.Event) {
	root, rel, ok := e.mapper.RootFor(event.Name)
	if !ok {
		return
	}
	if e.filter.Ignored(rel) {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		e.debouncer.Cancel(event.Name)
		e.deletions.OnDelete(event.Name)
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := e.addWatchRecursive(root, event.Name); err != nil {
					log.Printf("[Engine] Failed to watch new dir %s: %v", event.Name, err)
				}
				e.enqueueTree(root, event.Name)
				return
			}
		}
		e.debouncer.Trigger(event.Name)
	}
}

// enqueueTree feeds the files already present under a newly created
// directory through the debouncer. A directory moved into a watch root
// arrives as one create event; its contents never produce notifications of
// their own.
func (e *Engine) enqueueTree(root WatchRoot, dir string) {
	err := filepath.WalkDir(dir, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root.LocalDir, walkPath)
		if err != nil || rel == "." {
			return nil
		}
		if e.filter.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			e.debouncer.Trigger(walkPath)
		}
		return nil
	})
	if err != nil {
		log.Printf("[Engine] Failed to scan new dir %s: %v", dir, err)
	}
}

func (e *Engine) statsLoop() {
	ticker := time.NewTicker(e.config.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			log.Printf("[Engine] Stats: %s", e.stats.Summary())
		}
	}
}

// rescanLoop periodically re-walks every root. This converges files whose
// events were missed and remote deletions that failed earlier.
func (e *Engine) rescanLoop() {
	ticker := time.NewTicker(e.config.RescanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			log.Printf("[Engine] Periodic rescan starting")
			e.initialSync()
		}
	}
}

func (e *Engine) reportError(msg string) {
	e.stats.AddError()
	log.Printf("[Engine] %s", msg)
	if e.config.OnError != nil {
		e.config.OnError(msg)
	}
}

func timestampNow() string {
	return time.Now().Format("2006/01/02 15:04:05")
}
