// Package engine implements Topos's demand-driven, memoized query database
// (component C4): a single-logical-writer, many-readers store of file
// inputs with durability-tiered, generation-based invalidation over derived
// parse/symbol/resolution/diagnostic queries.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/store"
	"github.com/topos-lang/topos/toposlog"
)

// Durability annotates an input file: HIGH-durability files (stdlib/common,
// rarely edited) are retained more aggressively than LOW-durability ones.
// Semantic results are identical across tiers; durability only governs
// invalidation amortization and store's write-behind cache eligibility.
type Durability int

const (
	// Low is the default: a file that changes frequently (the common case
	// for a file under active edit).
	Low Durability = iota
	// High marks a file that rarely changes.
	High
)

func (d Durability) String() string {
	if d == High {
		return "high"
	}
	return "low"
}

// Generation is an opaque, monotonically increasing write-generation
// stamp. It embeds a uuid so logs from different processes sharing a
// workspace snapshot can be correlated unambiguously.
type Generation struct {
	Seq   uint64
	Token uuid.UUID
}

// ErrCancelled is returned by any query whose context was cancelled before
// or during execution. Per the cancellation contract, no partial memoized
// value is retained for a cancelled query, and a cancelled query is safe to
// retry.
var ErrCancelled = fmt.Errorf("engine: query cancelled")

type fileEntry struct {
	path       string
	text       string
	durability Durability
	generation uint64 // bumped only when this file's text actually changes
}

// Database is the workspace-wide query database. The zero value is not
// usable; construct with New.
type Database struct {
	mu   sync.RWMutex
	root string

	nextFile  ast.FileID
	files     map[ast.FileID]*fileEntry
	pathIndex map[string]ast.FileID

	generation uint64 // bumped on every write (SetFile that changes text, RemoveFile)

	memo  *memoTable
	log   *toposlog.Logger
	store *store.Store
}

// Option configures a Database at construction time.
type Option func(*Database)

// WithLogger attaches a logger that every memoized query reports its
// start/completion through. Queries are silent if no logger is attached.
func WithLogger(l *toposlog.Logger) Option {
	return func(db *Database) { db.log = l }
}

// New returns an empty Database, configured by opts.
func New(opts ...Option) *Database {
	db := &Database{
		files:     map[ast.FileID]*fileEntry{},
		pathIndex: map[string]ast.FileID{},
		memo:      newMemoTable(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// SetWorkspaceRoot records the workspace's root path. Purely informational;
// queries that need repo-relative paths read it via WorkspaceRoot.
func (db *Database) SetWorkspaceRoot(path string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.root = path
}

// WorkspaceRoot returns the path set by SetWorkspaceRoot, or "" if unset.
func (db *Database) WorkspaceRoot() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.root
}

// SetFile assigns text and durability to an existing file, or, if path was
// never seen before, allocates a new FileID for it. Returns the FileID.
// Writes are exclusive: callers must not call SetFile/RemoveFile
// concurrently with any other Database method.
func (db *Database) SetFile(path string, text string, durability Durability) ast.FileID {
	db.mu.Lock()
	defer db.mu.Unlock()

	file, ok := db.pathIndex[path]
	if !ok {
		file = db.nextFile
		db.nextFile++
		db.pathIndex[path] = file
		db.files[file] = &fileEntry{path: path, durability: durability}
	}
	entry := db.files[file]
	entry.durability = durability
	if entry.text != text {
		entry.text = text
		entry.generation++
		db.generation++
		db.memo.invalidateFile(file)
	}
	return file
}

// RemoveFile removes a file from the workspace. Subsequent per-file queries
// over its FileID return an unknown-file error; resolution across the
// removed file's imports becomes unresolved.
func (db *Database) RemoveFile(file ast.FileID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	entry, ok := db.files[file]
	if !ok {
		return
	}
	delete(db.pathIndex, entry.path)
	delete(db.files, file)
	db.generation++
	db.memo.invalidateFile(file)
	db.memo.invalidateWorkspace()
}

// WorkspaceFiles returns every currently-tracked FileID, sorted for
// deterministic iteration order.
func (db *Database) WorkspaceFiles() []ast.FileID {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]ast.FileID, 0, len(db.files))
	for f := range db.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FilePath returns the canonical path for file, or "" if unknown.
func (db *Database) FilePath(file ast.FileID) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if e, ok := db.files[file]; ok {
		return e.path
	}
	return ""
}

// FileByPath looks up the FileID for a previously-set path.
func (db *Database) FileByPath(path string) (ast.FileID, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	f, ok := db.pathIndex[path]
	return f, ok
}

// fileText returns the raw text and durability for file, plus its
// per-file generation (for memo keying). Callers hold no lock afterward;
// values are copies.
func (db *Database) fileText(file ast.FileID) (text string, durability Durability, gen uint64, ok bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, exists := db.files[file]
	if !exists {
		return "", Low, 0, false
	}
	return e.text, e.durability, e.generation, true
}

func (db *Database) workspaceGeneration() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.generation
}

// checkCancel observes ctx at an input-read boundary, per the cancellation
// contract: every derived query must check at each input fetch.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}
