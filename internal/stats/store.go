// Package stats persists the session-spanning counters (URLs scanned,
// threats blocked, last scan time) across runs. The snapshot is stored
// as a single row in SQLite: it is read once at startup and replaces
// the in-memory value wholesale, and it is written back after every
// completed analysis.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/linkgate/linkgate/internal/model"
)

// dbFileName is the snapshot database file under the data directory.
const dbFileName = "linkgate.db"

// Store is the persistent stats snapshot. All access goes through the
// store's mutex; the cached value is authoritative between saves.
type Store struct {
	mu sync.Mutex

	// db is the underlying SQLite connection.
	db *sql.DB

	// cached is the current in-memory stats value.
	cached model.Stats
}

// Open opens or creates the snapshot store under dir and loads any
// prior snapshot. A missing snapshot leaves the cached stats zeroed; a
// present one replaces them wholesale, never field by field.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	// SQLite supports one writer; a larger pool buys nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.createTable(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create stats table: %w", err)
	}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load stats snapshot: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTable creates the single-row snapshot schema.
func (s *Store) createTable() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stats_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		urls_scanned INTEGER NOT NULL DEFAULT 0,
		threats_blocked INTEGER NOT NULL DEFAULT 0,
		last_scan TEXT NOT NULL DEFAULT ''
	);`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// load reads the prior snapshot into the cache, if one exists.
func (s *Store) load() error {
	var (
		urls, threats int64
		lastScan      string
	)
	row := s.db.QueryRowContext(context.Background(),
		`SELECT urls_scanned, threats_blocked, last_scan FROM stats_snapshot WHERE id = 1`)
	if err := row.Scan(&urls, &threats, &lastScan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	loaded := model.Stats{URLsScanned: urls, ThreatsBlocked: threats}
	if lastScan != "" {
		t, err := time.Parse(time.RFC3339Nano, lastScan)
		if err != nil {
			return fmt.Errorf("invalid last_scan timestamp %q: %w", lastScan, err)
		}
		loaded.LastScan = t
	}

	s.mu.Lock()
	s.cached = loaded
	s.mu.Unlock()
	return nil
}

// Stats returns the current snapshot value.
func (s *Store) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached
}

// RecordAnalysis updates the counters for one completed analysis and
// writes the snapshot back. The in-memory update always happens; a
// transient write failure costs durability, not correctness.
func (s *Store) RecordAnalysis(score int, at time.Time) {
	s.mu.Lock()
	s.cached.RecordAnalysis(score, at)
	snapshot := s.cached
	s.mu.Unlock()

	_ = s.save(snapshot)
}

// Save overwrites the persisted snapshot with the given value.
func (s *Store) Save(stats model.Stats) error {
	s.mu.Lock()
	s.cached = stats
	s.mu.Unlock()
	return s.save(stats)
}

// save upserts the single snapshot row.
func (s *Store) save(stats model.Stats) error {
	lastScan := ""
	if !stats.LastScan.IsZero() {
		lastScan = stats.LastScan.Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO stats_snapshot (id, urls_scanned, threats_blocked, last_scan)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			urls_scanned = excluded.urls_scanned,
			threats_blocked = excluded.threats_blocked,
			last_scan = excluded.last_scan`,
		stats.URLsScanned, stats.ThreatsBlocked, lastScan)
	return err
}
