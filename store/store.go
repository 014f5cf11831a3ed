// Package store is a SQLite-backed durable snapshot cache for
// HIGH-durability files: their last-seen content hash plus the symbol
// table and spans derived from them, so a restarted process can skip
// reparsing a file whose text hasn't changed since the last run.
//
// This is a cache, not a source of truth: every row is keyed by
// (path, contentHash) and is safe to drop and rebuild from the workspace
// at any time.
package store

import (
	"crypto/sha256"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the snapshot cache's three
// tables: files, symbols, spans.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled and
// migrates it to the current schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for callers that need direct access
// (tests, ad hoc inspection).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id            INTEGER PRIMARY KEY,
  path          TEXT NOT NULL UNIQUE,
  content_hash  TEXT NOT NULL,
  durability    TEXT NOT NULL,
  last_cached   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS symbols (
  id         INTEGER PRIMARY KEY,
  file_id    INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  stable_id  TEXT,
  name       TEXT NOT NULL,
  kind       TEXT NOT NULL,
  private    INTEGER NOT NULL DEFAULT 0,
  span_id    INTEGER NOT NULL REFERENCES spans(id)
);

CREATE TABLE IF NOT EXISTS spans (
  id          INTEGER PRIMARY KEY,
  start_byte  INTEGER NOT NULL,
  end_byte    INTEGER NOT NULL,
  start_line  INTEGER NOT NULL,
  start_col   INTEGER NOT NULL,
  end_line    INTEGER NOT NULL,
  end_col     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_stable_id ON symbols(stable_id);
`

// ContentHash returns the cache key for a file's text: the hex-encoded
// SHA-256 digest, matching the (path, contentHash) keying scheme.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}
