package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DBPath is where the history database lives. Variable so tests can point
// it at a scratch directory.
var DBPath = "/config/history.db"

// DB is the singleton database handle.
var DB *sql.DB

// Init opens the history database and creates the schema. Opening can race
// with a concurrent startup, so it retries with backoff like any other
// sqlite writer contention.
func Init() error {
	var err error

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(100*(1<<uint(i-1))) * time.Millisecond
			log.Printf("Database init retry %d/%d after %v", i+1, maxRetries, backoff)
			time.Sleep(backoff)
		}

		DB, err = sql.Open("sqlite", DBPath)
		if err != nil {
			continue
		}

		// SQLite works best with a single writer.
		DB.SetMaxOpenConns(1)
		DB.SetMaxIdleConns(1)
		DB.SetConnMaxLifetime(time.Hour)

		if _, err = DB.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = DB.Close()
			continue
		}
		if _, err = DB.Exec("PRAGMA busy_timeout=5000"); err != nil {
			_ = DB.Close()
			continue
		}

		schema := `CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		action TEXT,
		file_path TEXT,
		size_bytes INTEGER DEFAULT 0
	);`
		if _, err = DB.Exec(schema); err != nil {
			_ = DB.Close()
			continue
		}

		log.Println("Database initialized successfully")
		return nil
	}

	return fmt.Errorf("failed to initialize database after %d retries: %w", maxRetries, err)
}

// Close shuts the database handle down.
func Close() {
	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}

// PruneHistory drops events older than 90 days and returns how many rows
// were removed.
func PruneHistory() (int64, error) {
	if DB == nil {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -90).Format("2006/01/02 15:04:05")
	res, err := DB.Exec("DELETE FROM history WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("history prune failed: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Printf("Pruned %d old history rows", n)
	}
	return n, nil
}
