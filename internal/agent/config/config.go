package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigPath is the optional JSON config file; env vars fill anything the
// file leaves empty.
var ConfigPath = "/config/agent.json"

// MaxRoots bounds the numbered ROOT_n_* env groups.
const MaxRoots = 10

// Root is one local-to-remote tree mapping.
type Root struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Config is the full agent configuration surface.
type Config struct {
	// Store endpoint
	StoreURL   string `json:"store_url"`
	StoreToken string `json:"store_token"`
	StoreBase  string `json:"store_base"`

	// Watch roots
	Roots []Root `json:"roots"`

	// Engine knobs
	DebounceMS        int      `json:"debounce_ms"`
	IgnorePatterns    []string `json:"ignore_patterns"`
	IgnoreRegex       []string `json:"ignore_regex"`
	PropagateDeletes  bool     `json:"propagate_deletes"`
	InitialSync       bool     `json:"initial_sync"`
	StatsIntervalSec  int      `json:"stats_interval_sec"`
	RescanIntervalSec int      `json:"rescan_interval_sec"`
	Verbose           bool     `json:"verbose"`

	// Store server mode
	DataDir string `json:"data_dir"`

	// Notifications
	DiscordWebhook string `json:"discord_webhook"`
	TelegramToken  string `json:"telegram_token"`
	TelegramChatID string `json:"telegram_chat_id"`
}

// Load reads configuration from file and falls back to environment
// variables for anything unset.
func Load() *Config {
	cfg := &Config{
		DebounceMS:       1000,
		PropagateDeletes: true,
		InitialSync:      true,
		StatsIntervalSec: 300,
		DataDir:          "/data",
	}

	if file, err := os.ReadFile(ConfigPath); err == nil {
		if err := json.Unmarshal(file, cfg); err != nil {
			log.Printf("Failed to unmarshal config: %v", err)
		}
	}

	if cfg.StoreURL == "" {
		cfg.StoreURL = os.Getenv("STORE_URL")
	}
	if cfg.StoreToken == "" {
		cfg.StoreToken = os.Getenv("STORE_TOKEN")
	}
	if cfg.StoreBase == "" {
		cfg.StoreBase = os.Getenv("STORE_BASE")
	}
	if env := os.Getenv("DATA_DIR"); env != "" {
		cfg.DataDir = env
	}

	if len(cfg.Roots) == 0 {
		for i := 1; i <= MaxRoots; i++ {
			prefix := "ROOT_" + strconv.Itoa(i)
			local := os.Getenv(prefix + "_LOCAL")
			if local == "" {
				continue
			}
			remote := os.Getenv(prefix + "_REMOTE")
			if remote == "" {
				remote = "root" + strconv.Itoa(i)
			}
			cfg.Roots = append(cfg.Roots, Root{Local: local, Remote: remote})
		}
	}

	if env := os.Getenv("DEBOUNCE_MS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val > 0 {
			cfg.DebounceMS = val
		}
	}
	if env := os.Getenv("IGNORE_PATTERNS"); env != "" {
		cfg.IgnorePatterns = splitTrimmed(env)
	}
	if env := os.Getenv("IGNORE_REGEX"); env != "" {
		cfg.IgnoreRegex = splitTrimmed(env)
	}
	if env := os.Getenv("PROPAGATE_DELETES"); env != "" {
		cfg.PropagateDeletes = env == "true" || env == "on"
	}
	if env := os.Getenv("INITIAL_SYNC"); env != "" {
		cfg.InitialSync = env == "true" || env == "on"
	}
	if env := os.Getenv("STATS_INTERVAL"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val >= 0 {
			cfg.StatsIntervalSec = val
		}
	}
	if env := os.Getenv("RESCAN_INTERVAL"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val >= 0 {
			cfg.RescanIntervalSec = val
		}
	}
	if os.Getenv("VERBOSE") == "true" {
		cfg.Verbose = true
	}

	if cfg.DiscordWebhook == "" {
		cfg.DiscordWebhook = os.Getenv("DISCORD_WEBHOOK_URL")
	}
	if cfg.TelegramToken == "" {
		cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.TelegramChatID == "" {
		cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	}

	return cfg
}

// DebounceInterval returns the debounce quiet period.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// StatsInterval returns the periodic stats cadence (0 = disabled).
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSec) * time.Second
}

// RescanInterval returns the periodic rescan cadence (0 = disabled).
func (c *Config) RescanInterval() time.Duration {
	return time.Duration(c.RescanIntervalSec) * time.Second
}

// Summary renders the effective configuration for the startup log.
func (c *Config) Summary() string {
	var roots []string
	for _, r := range c.Roots {
		roots = append(roots, fmt.Sprintf("%s -> %s", r.Local, r.Remote))
	}
	return fmt.Sprintf("store=%s base=%q roots=[%s] debounce=%v deletes=%v initial=%v",
		c.StoreURL, c.StoreBase, strings.Join(roots, ", "),
		c.DebounceInterval(), c.PropagateDeletes, c.InitialSync)
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
