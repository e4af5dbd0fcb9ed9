package sync

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of change notifications for the same path into
// a single upload after a quiet period. Editors and applications often write
// a file several times in quick succession; collapsing the burst avoids
// redundant round-trips and avoids uploading transient intermediate states.
// The quiet period is also what keeps a file mid-write from being read: the
// timer only fires once writes have paused for the full interval.
//
// Invariant: at most one pending timer per path. A new trigger cancels and
// replaces any existing one, so only the most recent pending change is ever
// uploaded.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	pending  map[string]*time.Timer
	fire     func(path string)
	stopped  bool
}

// NewDebouncer creates a debouncer that invokes fire after interval of
// quiet per path.
func NewDebouncer(interval time.Duration, fire func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]*time.Timer),
		fire:     fire,
	}
}

// Trigger arms (or re-arms) the delay for a path.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if timer, ok := d.pending[path]; ok {
		timer.Stop()
	}
	d.pending[path] = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		delete(d.pending, path)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fire(path)
		}
	})
}

// Cancel disarms any pending timer for a path. Called on deletion events so
// an upload never fires after the file is known deleted.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.pending[path]; ok {
		timer.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns the number of armed timers.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels all pending timers and refuses further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for path, timer := range d.pending {
		timer.Stop()
		delete(d.pending, path)
	}
}
