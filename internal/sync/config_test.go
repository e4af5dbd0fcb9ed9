package sync

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig() SyncConfig {
	return SyncConfig{
		Roots: []WatchRoot{
			{LocalDir: filepath.FromSlash("/srv/app/data"), RemotePrefix: "data"},
			{LocalDir: filepath.FromSlash("/srv/app/config"), RemotePrefix: "config"},
		},
		DebounceInterval: time.Second,
	}
}

func TestSyncConfig_ValidateOK(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestSyncConfig_ValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SyncConfig)
	}{
		{"no roots", func(c *SyncConfig) { c.Roots = nil }},
		{"zero debounce", func(c *SyncConfig) { c.DebounceInterval = 0 }},
		{"empty local dir", func(c *SyncConfig) { c.Roots[0].LocalDir = "" }},
		{"relative local dir", func(c *SyncConfig) { c.Roots[0].LocalDir = "data" }},
		{"duplicate root", func(c *SyncConfig) { c.Roots[1].LocalDir = c.Roots[0].LocalDir }},
		{"nested root", func(c *SyncConfig) {
			c.Roots[1].LocalDir = filepath.Join(c.Roots[0].LocalDir, "inner")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
