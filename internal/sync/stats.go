package sync

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats holds the running sync counters. Monotonically updated, reset only
// by process restart.
type Stats struct {
	mu        sync.Mutex
	uploaded  int64
	skipped   int64
	deleted   int64
	errors    int64
	bytesSent int64
	started   time.Time
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Uploaded  int64     `json:"uploaded"`
	Skipped   int64     `json:"skipped"`
	Deleted   int64     `json:"deleted"`
	Errors    int64     `json:"errors"`
	BytesSent int64     `json:"bytes_sent"`
	Started   time.Time `json:"started"`
}

// NewStats creates a counter set stamped with the process start time.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

func (s *Stats) AddUploaded(size int64) {
	s.mu.Lock()
	s.uploaded++
	s.bytesSent += size
	s.mu.Unlock()
}

func (s *Stats) AddSkipped() {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
}

func (s *Stats) AddDeleted() {
	s.mu.Lock()
	s.deleted++
	s.mu.Unlock()
}

func (s *Stats) AddError() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Uploaded:  s.uploaded,
		Skipped:   s.skipped,
		Deleted:   s.deleted,
		Errors:    s.errors,
		BytesSent: s.bytesSent,
		Started:   s.started,
	}
}

// Summary renders a one-line human-readable counter summary.
func (s *Stats) Summary() string {
	snap := s.Snapshot()
	uptime := time.Since(snap.Started).Round(time.Second)
	return fmt.Sprintf("uploaded=%d (%s), skipped=%d, deleted=%d, errors=%d, uptime=%s",
		snap.Uploaded, humanize.IBytes(uint64(snap.BytesSent)), snap.Skipped, snap.Deleted, snap.Errors, uptime)
}
