package app

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"storemirror/internal/agent/config"
	"storemirror/internal/agent/database"
	"storemirror/internal/agent/health"
	"storemirror/internal/agent/notification"
	"storemirror/internal/agent/websocket"
	"storemirror/internal/store"
	"storemirror/internal/sync"
)

// App wires the agent's components together.
type App struct {
	Config   *config.Config
	Health   *health.State
	Hub      *websocket.Hub
	Notifier *notification.Service
	Engine   *sync.Engine
}

// New loads configuration and initializes the shared services.
func New() (*App, error) {
	cfg := config.Load()

	if err := database.Init(); err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	a := &App{
		Config: cfg,
		Health: health.New(),
		Hub:    websocket.New(),
		Notifier: notification.New(
			cfg.DiscordWebhook,
			cfg.TelegramToken,
			cfg.TelegramChatID,
		),
	}

	// Mirror process logs to connected dashboards.
	log.SetOutput(io.MultiWriter(os.Stdout, websocket.NewLogWriter(a.Hub)))

	return a, nil
}

// Start runs the requested mode: "sync" (live mirroring, the default),
// "restore" (rebuild local trees from the store) or "serve" (run the
// bundled store server).
func (a *App) Start(mode, port string) error {
	switch mode {
	case "serve":
		srv := NewServer(a.Config.DataDir, a.Config.StoreToken)
		log.Printf("Store server starting on port %s (data dir %s)", port, a.Config.DataDir)
		return http.ListenAndServe(":"+port, srv.Mux())
	case "restore":
		return a.runRestore()
	case "sync", "":
		return a.runSync(port)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// newStoreClient builds the HTTP client for the configured store endpoint.
func (a *App) newStoreClient() *store.Client {
	return store.NewClient(store.ClientOptions{
		URL:      a.Config.StoreURL,
		BasePath: a.Config.StoreBase,
		Token:    a.Config.StoreToken,
	})
}

// buildSyncConfig translates the loaded configuration into engine terms.
func (a *App) buildSyncConfig() (sync.SyncConfig, error) {
	var roots []sync.WatchRoot
	for _, r := range a.Config.Roots {
		roots = append(roots, sync.WatchRoot{LocalDir: r.Local, RemotePrefix: r.Remote})
	}

	var regexps []*regexp.Regexp
	for _, expr := range a.Config.IgnoreRegex {
		re, err := regexp.Compile(expr)
		if err != nil {
			return sync.SyncConfig{}, fmt.Errorf("bad ignore regex %q: %w", expr, err)
		}
		regexps = append(regexps, re)
	}

	return sync.SyncConfig{
		Roots:            roots,
		DebounceInterval: a.Config.DebounceInterval(),
		IgnorePatterns:   a.Config.IgnorePatterns,
		IgnoreRegex:      regexps,
		PropagateDeletes: a.Config.PropagateDeletes,
		InitialSync:      a.Config.InitialSync,
		StatsInterval:    a.Config.StatsInterval(),
		RescanInterval:   a.Config.RescanInterval(),
		Verbose:          a.Config.Verbose,
		OnSyncEvent: func(ts, action, path string, size int64) {
			if err := database.LogEvent(ts, action, path, size); err != nil {
				log.Printf("Failed to log event: %v", err)
			}
			a.Hub.Broadcast("history", database.HistoryItem{Time: ts, Action: action, Path: path})
			a.Health.ReportSuccess()
		},
		OnError: func(msg string) {
			a.Health.ReportError(msg, a.Notifier.Send)
		},
	}, nil
}

// runSync is live mode: probe, initial sync, watch until a termination
// signal arrives, then print final stats and close the subscription.
func (a *App) runSync(port string) error {
	syncCfg, err := a.buildSyncConfig()
	if err != nil {
		return err
	}
	if err := syncCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("Effective configuration: %s", a.Config.Summary())

	engine := sync.NewEngine(syncCfg, a.newStoreClient())
	a.Engine = engine

	if err := engine.Start(); err != nil {
		a.Health.ReportError(err.Error(), a.Notifier.Send)
		return err
	}
	a.Health.ReportStoreStatus(true, "connected", 0)

	go a.startStatusServer(port)
	go a.broadcastStatsLoop()
	go a.startHousekeeping()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received %v, shutting down", sig)

	engine.Stop()
	database.Close()
	return nil
}

// runRestore rebuilds every configured watch root from the store and exits.
func (a *App) runRestore() error {
	syncCfg, err := a.buildSyncConfig()
	if err != nil {
		return err
	}

	log.Printf("Effective configuration: %s", a.Config.Summary())

	client := a.newStoreClient()
	filter := sync.NewIgnoreFilter(syncCfg.IgnorePatterns, syncCfg.IgnoreRegex)
	restorer := sync.NewRestorer(client, filter)

	var total sync.RestoreStats
	for _, root := range syncCfg.Roots {
		stats, err := restorer.Restore(root.RemotePrefix, root.LocalDir)
		if err != nil {
			return fmt.Errorf("restore of %s failed: %w", root.RemotePrefix, err)
		}
		total.Downloaded += stats.Downloaded
		total.Skipped += stats.Skipped
		total.Errors += stats.Errors
	}

	log.Printf("Restore summary: %d downloaded, %d skipped, %d errors",
		total.Downloaded, total.Skipped, total.Errors)
	database.Close()
	return nil
}

// broadcastStatsLoop pushes counter snapshots to connected dashboards.
func (a *App) broadcastStatsLoop() {
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if a.Engine == nil {
			continue
		}
		if a.Hub.ClientCount() == 0 {
			continue
		}
		a.Hub.Broadcast("stats", map[string]interface{}{
			"state":    a.Engine.State(),
			"counters": a.Engine.Stats().Snapshot(),
			"traffic":  database.GetTrafficStats(),
		})
	}
}

func (a *App) startHousekeeping() {
	_, _ = database.PruneHistory()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		_, _ = database.PruneHistory()
	}
}
