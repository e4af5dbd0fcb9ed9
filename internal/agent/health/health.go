package health

import (
	"sync"
	"time"
)

// StoreStatus describes the last known state of the remote store.
type StoreStatus struct {
	Reachable bool
	Message   string
	LatencyMS int64
}

// State tracks process health for the status endpoint.
type State struct {
	mu        sync.RWMutex
	healthy   bool
	lastError string
	errorAt   time.Time
	store     StoreStatus
}

// New creates a healthy state.
func New() *State {
	return &State{healthy: true}
}

// ReportSuccess marks the agent healthy again.
func (s *State) ReportSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = true
	s.lastError = ""
}

// ReportError marks the agent unhealthy and forwards the message to the
// notifier, if any.
func (s *State) ReportError(msg string, notify func(msg, level string)) {
	s.mu.Lock()
	s.healthy = false
	s.lastError = msg
	s.errorAt = time.Now()
	s.mu.Unlock()
	if notify != nil {
		go notify("Sync error: "+msg, "ERROR")
	}
}

// ReportStoreStatus records the outcome of a store reachability probe.
func (s *State) ReportStoreStatus(reachable bool, msg string, latencyMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = StoreStatus{Reachable: reachable, Message: msg, LatencyMS: latencyMS}
}

// GetStatus returns the overall health and last error message.
func (s *State) GetStatus() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy, s.lastError
}

// GetStoreStatus returns the last recorded store probe outcome.
func (s *State) GetStoreStatus() StoreStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}
