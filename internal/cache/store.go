// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists raw API responses in SQLite, keyed by the SHA-256
// digest of the request URL. Entries older than the TTL read as absent, and
// rows that cannot be decoded read as misses rather than errors.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultTTL is how long a response stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

const dbFile = "responses.db"

// Stats summarizes the cache contents.
type Stats struct {
	Path    string    `json:"path"`
	Entries int       `json:"entries"`
	Fresh   int       `json:"fresh"`
	Expired int       `json:"expired"`
	Corrupt int       `json:"corrupt"`
	Bytes   int64     `json:"bytes"`
	Oldest  time.Time `json:"oldest,omitzero"`
	Newest  time.Time `json:"newest,omitzero"`
}

// Store is the SQLite-backed response cache.
type Store struct {
	db   *sql.DB
	path string
	ttl  time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// Key returns the cache key for a fully qualified URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Open opens or creates the cache database in dir. A non-positive ttl uses
// DefaultTTL.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	path := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, path: path, ttl: ttl, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		data TEXT NOT NULL
	)`)
	return err
}

// Get returns the cached response for url when a fresh, well-formed entry
// exists. Expired or corrupt entries report ok == false.
func (s *Store) Get(ctx context.Context, url string) (data []byte, ok bool, err error) {
	var ts, raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT timestamp, data FROM responses WHERE key = ?`, Key(url),
	).Scan(&ts, &raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	stored, valid := decode(ts, raw)
	if !valid || s.expired(stored) {
		return nil, false, nil
	}
	return []byte(raw), true, nil
}

// Put stores data for url, replacing any previous entry. data must be valid JSON.
func (s *Store) Put(ctx context.Context, url string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("caching %s: response is not valid JSON", url)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, url, timestamp, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET url = excluded.url, timestamp = excluded.timestamp, data = excluded.data`,
		Key(url), url, s.now().UTC().Format(time.RFC3339), string(data),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}

// Prune removes expired and corrupt entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT key, timestamp, data FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("scanning cache: %w", err)
	}
	var stale []string
	for rows.Next() {
		var key, ts, raw string
		if err := rows.Scan(&key, &ts, &raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning cache row: %w", err)
		}
		if stored, valid := decode(ts, raw); !valid || s.expired(stored) {
			stale = append(stale, key)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("scanning cache: %w", err)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}

	for _, key := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
			return 0, fmt.Errorf("deleting cache entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing prune: %w", err)
	}
	return int64(len(stale)), nil
}

// Stats counts entries by freshness.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Path: s.path}
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, data FROM responses`)
	if err != nil {
		return st, fmt.Errorf("scanning cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts, raw string
		if err := rows.Scan(&ts, &raw); err != nil {
			return st, fmt.Errorf("scanning cache row: %w", err)
		}
		st.Entries++
		st.Bytes += int64(len(raw))

		stored, valid := decode(ts, raw)
		switch {
		case !valid:
			st.Corrupt++
			continue
		case s.expired(stored):
			st.Expired++
		default:
			st.Fresh++
		}
		if st.Oldest.IsZero() || stored.Before(st.Oldest) {
			st.Oldest = stored
		}
		if stored.After(st.Newest) {
			st.Newest = stored
		}
	}
	return st, rows.Err()
}

func (s *Store) expired(stored time.Time) bool {
	return s.now().Sub(stored) > s.ttl
}

func decode(ts, raw string) (time.Time, bool) {
	stored, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, false
	}
	return stored, json.Valid([]byte(raw))
}
