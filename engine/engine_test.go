package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/topos-lang/topos/store"
)

const sampleSource = `# Requirements

## REQ-1 user login
  when ` + "`user`" + ` submits valid credentials the system shall grant access

# Concepts

concept User:
  name: ` + "`Text`" + `
`

func TestParseIsMemoizedUntilTextChanges(t *testing.T) {
	db := New()
	file := db.SetFile("a.tps", sampleSource, Low)
	ctx := context.Background()

	_, _, err := db.Parse(ctx, file)
	require.NoError(t, err)
	require.Equal(t, 1, db.ReexecCount("parse"))

	_, _, err = db.Parse(ctx, file)
	require.NoError(t, err)
	require.Equal(t, 1, db.ReexecCount("parse"))

	db.SetFile("a.tps", sampleSource+"\n", Low)
	_, _, err = db.Parse(ctx, file)
	require.NoError(t, err)
	require.Equal(t, 2, db.ReexecCount("parse"))
}

func TestSetFileNoOpOnIdenticalText(t *testing.T) {
	db := New()
	file := db.SetFile("a.tps", sampleSource, Low)
	ctx := context.Background()
	_, _, err := db.Parse(ctx, file)
	require.NoError(t, err)

	db.SetFile("a.tps", sampleSource, Low) // identical text: no invalidation
	_, _, err = db.Parse(ctx, file)
	require.NoError(t, err)
	require.Equal(t, 1, db.ReexecCount("parse"))
}

func TestParseUnknownFileErrors(t *testing.T) {
	db := New()
	_, _, err := db.Parse(context.Background(), 999)
	require.Error(t, err)
}

func TestParseRespectsCancellation(t *testing.T) {
	db := New()
	file := db.SetFile("a.tps", sampleSource, Low)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := db.Parse(ctx, file)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestFileSymbolsBuildsTable(t *testing.T) {
	db := New()
	file := db.SetFile("a.tps", sampleSource, Low)
	table, err := db.FileSymbols(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, table.Lookup("User"), 1)
	require.Len(t, table.Lookup("REQ-1"), 1)
}

func TestRemoveFileInvalidatesWorkspace(t *testing.T) {
	db := New()
	file := db.SetFile("a.tps", sampleSource, Low)
	ctx := context.Background()
	_, err := db.Traceability(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, db.ReexecCount("traceability"))

	db.RemoveFile(file)
	_, err = db.Traceability(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, db.ReexecCount("traceability"))

	_, ok := db.FileByPath("a.tps")
	require.False(t, ok)
}

func TestWorkspaceFilesSortedByID(t *testing.T) {
	db := New()
	db.SetFile("b.tps", "", Low)
	db.SetFile("a.tps", "", Low)
	files := db.WorkspaceFiles()
	require.Len(t, files, 2)
	require.Less(t, files[0], files[1])
}

func TestFileSymbolsUsesStoreCacheForHighDurability(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// Pre-warm the cache as if an earlier process had already persisted this
	// exact file's symbol table write-behind.
	require.NoError(t, s.Put(store.Snapshot{
		Path:        "a.tps",
		ContentHash: store.ContentHash(sampleSource),
		Durability:  High.String(),
		Symbols: []store.CachedSymbol{
			{StableID: "REQ-1", Name: "REQ-1", Kind: "requirement"},
		},
	}))

	db := New(WithStore(s))
	file := db.SetFile("a.tps", sampleSource, High)
	ctx := context.Background()

	table, err := db.FileSymbols(ctx, file)
	require.NoError(t, err)
	require.Len(t, table.Lookup("REQ-1"), 1)
	// Served entirely from the cache: the underlying compute query never ran.
	require.Equal(t, 0, db.ReexecCount("file_symbols"))
}
