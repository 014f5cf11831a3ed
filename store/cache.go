package store

import (
	"database/sql"
	"fmt"
)

// CachedSpan is one span row, independent of the symbol it belongs to so
// it can be inserted first and referenced by foreign key.
type CachedSpan struct {
	StartByte, EndByte int
	StartLine, StartCol int
	EndLine, EndCol     int
}

// CachedSymbol is one symbols-table row for a cached file.
type CachedSymbol struct {
	StableID string
	Name     string
	Kind     string
	Private  bool
	Span     CachedSpan
}

// Snapshot is everything Put persists for one file: its content hash,
// durability tier, and the symbols derived from it.
type Snapshot struct {
	Path        string
	ContentHash string
	Durability  string
	Symbols     []CachedSymbol
}

// Lookup returns the cached snapshot for path if its stored content hash
// equals contentHash, and ok=false otherwise (cache miss: either the path
// was never cached, or its text has since changed).
func (s *Store) Lookup(path, contentHash string) (snap Snapshot, ok bool, err error) {
	var fileID int64
	var durability string
	row := s.db.QueryRow(`SELECT id, durability FROM files WHERE path = ? AND content_hash = ?`, path, contentHash)
	if err := row.Scan(&fileID, &durability); err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	} else if err != nil {
		return Snapshot{}, false, fmt.Errorf("store: lookup %s: %w", path, err)
	}

	rows, err := s.db.Query(`
		SELECT sy.stable_id, sy.name, sy.kind, sy.private,
		       sp.start_byte, sp.end_byte, sp.start_line, sp.start_col, sp.end_line, sp.end_col
		FROM symbols sy JOIN spans sp ON sp.id = sy.span_id
		WHERE sy.file_id = ?
		ORDER BY sp.start_byte`, fileID)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("store: lookup symbols for %s: %w", path, err)
	}
	defer rows.Close()

	snap = Snapshot{Path: path, ContentHash: contentHash, Durability: durability}
	for rows.Next() {
		var sym CachedSymbol
		var private int
		if err := rows.Scan(&sym.StableID, &sym.Name, &sym.Kind, &private,
			&sym.Span.StartByte, &sym.Span.EndByte, &sym.Span.StartLine, &sym.Span.StartCol, &sym.Span.EndLine, &sym.Span.EndCol); err != nil {
			return Snapshot{}, false, fmt.Errorf("store: scan symbol for %s: %w", path, err)
		}
		sym.Private = private != 0
		snap.Symbols = append(snap.Symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, false, fmt.Errorf("store: iterate symbols for %s: %w", path, err)
	}
	return snap, true, nil
}

// Put replaces the cached snapshot for snap.Path with snap, inside one
// transaction: delete the old file row (symbols/spans cascade), insert
// the new file, then its spans and symbols.
func (s *Store) Put(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: put %s: begin: %w", snap.Path, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, snap.Path); err != nil {
		return fmt.Errorf("store: put %s: evict: %w", snap.Path, err)
	}

	res, err := tx.Exec(`INSERT INTO files (path, content_hash, durability) VALUES (?, ?, ?)`,
		snap.Path, snap.ContentHash, snap.Durability)
	if err != nil {
		return fmt.Errorf("store: put %s: insert file: %w", snap.Path, err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: put %s: file id: %w", snap.Path, err)
	}

	for _, sym := range snap.Symbols {
		spanRes, err := tx.Exec(`INSERT INTO spans (start_byte, end_byte, start_line, start_col, end_line, end_col)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sym.Span.StartByte, sym.Span.EndByte, sym.Span.StartLine, sym.Span.StartCol, sym.Span.EndLine, sym.Span.EndCol)
		if err != nil {
			return fmt.Errorf("store: put %s: insert span for %q: %w", snap.Path, sym.Name, err)
		}
		spanID, err := spanRes.LastInsertId()
		if err != nil {
			return fmt.Errorf("store: put %s: span id for %q: %w", snap.Path, sym.Name, err)
		}

		private := 0
		if sym.Private {
			private = 1
		}
		if _, err := tx.Exec(`INSERT INTO symbols (file_id, stable_id, name, kind, private, span_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			fileID, sym.StableID, sym.Name, sym.Kind, private, spanID); err != nil {
			return fmt.Errorf("store: put %s: insert symbol %q: %w", snap.Path, sym.Name, err)
		}
	}

	return tx.Commit()
}

// Evict removes path's cached snapshot, if any. Safe to call on a path
// never cached.
func (s *Store) Evict(path string) error {
	if _, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: evict %s: %w", path, err)
	}
	return nil
}

// Paths returns every path currently cached, for cache-warming diagnostics
// and tests.
func (s *Store) Paths() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM files`)
	if err != nil {
		return nil, fmt.Errorf("store: paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("store: paths: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
