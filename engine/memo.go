package engine

import (
	"sync"

	"github.com/topos-lang/topos/ast"
)

// memoEntry is one cached derived-query result. key identifies the query +
// arguments; fileGen/wsGen record the generation(s) it was computed at, so a
// later read can cheaply decide whether the cached value is still valid
// (early cutoff per Q2) without recomputing.
type memoEntry struct {
	value   any
	fileGen uint64 // the file generation this entry depends on, for per-file queries
	wsGen   uint64 // the workspace generation this entry depends on, for workspace queries
}

// memoTable holds every derived query's memoized results, split into
// per-file entries (invalidated when that one file's text changes) and
// workspace entries (invalidated on any write, since resolution and
// traceability may read any file's exports).
type memoTable struct {
	mu        sync.Mutex
	perFile   map[ast.FileID]map[string]*memoEntry
	workspace map[string]*memoEntry
	reexecs   map[string]int // re-execution counters, for P4 tests
}

func newMemoTable() *memoTable {
	return &memoTable{
		perFile:   map[ast.FileID]map[string]*memoEntry{},
		workspace: map[string]*memoEntry{},
		reexecs:   map[string]int{},
	}
}

func (m *memoTable) invalidateFile(file ast.FileID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.perFile, file)
}

func (m *memoTable) invalidateWorkspace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspace = map[string]*memoEntry{}
}

// getOrComputeFile returns the memoized value for (file, key) if it is
// still valid at fileGen, otherwise calls compute, stores, and returns the
// fresh value. compute errors are never cached.
func (m *memoTable) getOrComputeFile(file ast.FileID, key string, fileGen uint64, compute func() (any, error)) (any, error) {
	m.mu.Lock()
	byKey := m.perFile[file]
	if byKey != nil {
		if e, ok := byKey[key]; ok && e.fileGen == fileGen {
			m.mu.Unlock()
			return e.value, nil
		}
	}
	m.mu.Unlock()

	m.bumpReexec(key)
	val, err := compute()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perFile[file] == nil {
		m.perFile[file] = map[string]*memoEntry{}
	}
	m.perFile[file][key] = &memoEntry{value: val, fileGen: fileGen}
	return val, nil
}

// getOrComputeWorkspace is the workspace-scoped analogue of
// getOrComputeFile: the cached value is valid as long as the workspace
// generation (bumped on any file write) is unchanged.
func (m *memoTable) getOrComputeWorkspace(key string, wsGen uint64, compute func() (any, error)) (any, error) {
	m.mu.Lock()
	if e, ok := m.workspace[key]; ok && e.wsGen == wsGen {
		m.mu.Unlock()
		return e.value, nil
	}
	m.mu.Unlock()

	m.bumpReexec(key)
	val, err := compute()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspace[key] = &memoEntry{value: val, wsGen: wsGen}
	return val, nil
}

func (m *memoTable) bumpReexec(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reexecs[key]++
}

// ReexecCount returns how many times the named query has actually run its
// compute function (as opposed to hit the memo), for P3/P4 test assertions.
func (db *Database) ReexecCount(key string) int {
	db.memo.mu.Lock()
	defer db.memo.mu.Unlock()
	return db.memo.reexecs[key]
}
