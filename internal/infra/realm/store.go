// Package realm persists the QuickBooks realm correlation id.
//
// At most one realm id exists per installation. It is adopted from the
// OAuth redirect URL, read by the submitter at submit time, and lives until
// explicitly cleared — no expiry.
package realm

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const (
	realmKey = "qb_realm_id"

	// RedirectParam is the query parameter QuickBooks appends to the
	// redirect URL.
	RedirectParam = "realmId"
)

// Store is the process-wide correlation store, backed by SQLite so the id
// survives restarts.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	current string
}

// Open opens (creating if needed) the store at path and loads any
// persisted realm id.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	s := &Store{db: db}
	var v string
	switch err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, realmKey).Scan(&v); err {
	case nil:
		s.current = v
	case sql.ErrNoRows:
		// Not linked.
	default:
		db.Close()
		return nil, fmt.Errorf("load realm id: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CurrentID returns the linked realm id, if any.
func (s *Store) CurrentID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != ""
}

// Set persists the given realm id, replacing any previous one.
func (s *Store) Set(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, realmKey, id)
	if err != nil {
		return fmt.Errorf("persist realm id: %w", err)
	}
	s.current = id
	return nil
}

// Clear removes the persisted id and returns the store to the "not linked"
// state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, realmKey); err != nil {
		return fmt.Errorf("clear realm id: %w", err)
	}
	s.current = ""
	return nil
}

// Adopt inspects a redirect URL for the realm id parameter. If present and
// different from the stored value, it is persisted. The returned URL has
// the parameter stripped either way, so the id never lingers in addresses
// that get logged, bookmarked, or re-visited. Adopt reports whether a new
// id was taken.
func (s *Store) Adopt(rawURL string) (cleanURL string, adopted bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, false, fmt.Errorf("parse redirect URL: %w", err)
	}

	q := u.Query()
	id := q.Get(RedirectParam)
	if id == "" {
		return rawURL, false, nil
	}
	q.Del(RedirectParam)
	u.RawQuery = q.Encode()
	cleanURL = u.String()

	if cur, _ := s.CurrentID(); cur == id {
		return cleanURL, false, nil
	}
	if err := s.Set(id); err != nil {
		return cleanURL, false, err
	}
	return cleanURL, true, nil
}
