// Package store keeps a local SQLite history of generation runs so the
// dashboard can show past activity and credit spend without a backend call.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"postdeck/internal/logging"

	_ "modernc.org/sqlite"
)

// HistoryStore records generation runs in SQLite.
type HistoryStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Generation is one recorded generation run.
type Generation struct {
	ID          int64
	PostID      string
	Caption     string
	HasImage    bool
	HasVideo    bool
	CreditsUsed int
	CreatedAt   time.Time
}

// NewHistoryStore opens (or creates) the history database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	logging.Store("opening history store at %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreError("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreError("failed to set journal_mode=WAL: %v", err)
	}

	s := &HistoryStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		has_image INTEGER NOT NULL DEFAULT 0,
		has_video INTEGER NOT NULL DEFAULT 0,
		credits_used INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// RecordGeneration appends a run to the history and returns its row id.
func (s *HistoryStore) RecordGeneration(g Generation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.Exec(
		`INSERT INTO generations (post_id, caption, has_image, has_video, credits_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.PostID, g.Caption, boolToInt(g.HasImage), boolToInt(g.HasVideo), g.CreditsUsed, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record generation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}
	logging.Store("recorded generation post=%s credits=%d", g.PostID, g.CreditsUsed)
	return id, nil
}

// Recent returns the most recent runs, newest first.
func (s *HistoryStore) Recent(limit int) ([]Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, post_id, caption, has_image, has_video, credits_used, created_at
		 FROM generations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		var hasImage, hasVideo int
		if err := rows.Scan(&g.ID, &g.PostID, &g.Caption, &hasImage, &hasVideo, &g.CreditsUsed, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		g.HasImage = hasImage != 0
		g.HasVideo = hasVideo != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

// TotalCredits returns the sum of credits spent across all recorded runs.
func (s *HistoryStore) TotalCredits() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total sql.NullInt64
	if err := s.db.QueryRow(`SELECT SUM(credits_used) FROM generations`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum credits: %w", err)
	}
	return int(total.Int64), nil
}

// CountSince returns how many runs happened at or after the cutoff.
func (s *HistoryStore) CountSince(cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM generations WHERE created_at >= ?`, cutoff.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
