package database

import (
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// HistoryItem is a single recorded sync event.
type HistoryItem struct {
	Time   string `json:"time"`
	Action string `json:"action"`
	Path   string `json:"path"`
	Size   string `json:"size"`
}

// TrafficStats holds uploaded-byte totals.
type TrafficStats struct {
	Today int64 `json:"today"`
	Total int64 `json:"total"`
}

// LogEvent records one sync event.
func LogEvent(timestamp, action, path string, size int64) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec("INSERT INTO history (timestamp, action, file_path, size_bytes) VALUES (?, ?, ?, ?)",
		timestamp, action, path, size)
	if err != nil {
		return fmt.Errorf("DB insert error: %w", err)
	}
	return nil
}

// GetHistory returns recent events, newest first, optionally filtered by a
// path substring.
func GetHistory(limit int, query string) ([]HistoryItem, error) {
	if DB == nil {
		return nil, nil
	}
	q := "SELECT timestamp, action, file_path, size_bytes FROM history"
	var args []interface{}
	if query != "" {
		q += " WHERE file_path LIKE ?"
		args = append(args, "%"+query+"%")
	}
	q += " ORDER BY id DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []HistoryItem
	for rows.Next() {
		var item HistoryItem
		var sizeBytes int64
		if err := rows.Scan(&item.Time, &item.Action, &item.Path, &sizeBytes); err != nil {
			log.Printf("History scan error: %v", err)
			continue
		}
		item.Size = humanize.IBytes(uint64(sizeBytes))
		items = append(items, item)
	}
	return items, nil
}

// GetTrafficStats returns uploaded-byte totals, overall and for today.
func GetTrafficStats() TrafficStats {
	var s TrafficStats
	if DB == nil {
		return s
	}
	if err := DB.QueryRow("SELECT COALESCE(SUM(size_bytes), 0) FROM history WHERE action='Uploaded'").Scan(&s.Total); err != nil {
		log.Printf("DB total stats error: %v", err)
	}
	todayPrefix := time.Now().Format("2006/01/02") + "%"
	if err := DB.QueryRow("SELECT COALESCE(SUM(size_bytes), 0) FROM history WHERE action='Uploaded' AND timestamp LIKE ?",
		todayPrefix).Scan(&s.Today); err != nil {
		log.Printf("DB today stats error: %v", err)
	}
	return s
}
