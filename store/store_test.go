package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLookupMissOnEmptyStore(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Lookup("a.tps", "deadbeef")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutThenLookupRoundTrips(t *testing.T) {
	s := openTestStore(t)
	snap := Snapshot{
		Path: "a.tps", ContentHash: "hash1", Durability: "high",
		Symbols: []CachedSymbol{
			{StableID: "REQ-1", Name: "REQ-1", Kind: "requirement",
				Span: CachedSpan{StartByte: 0, EndByte: 10, StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 10}},
		},
	}
	require.NoError(t, s.Put(snap))

	got, ok, err := s.Lookup("a.tps", "hash1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "high", got.Durability)
	require.Len(t, got.Symbols, 1)
	require.Equal(t, "REQ-1", got.Symbols[0].Name)
}

func TestLookupMissesOnStaleContentHash(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(Snapshot{Path: "a.tps", ContentHash: "hash1", Durability: "high"}))

	_, ok, err := s.Lookup("a.tps", "hash2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutReplacesPriorSnapshot(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(Snapshot{
		Path: "a.tps", ContentHash: "hash1", Durability: "high",
		Symbols: []CachedSymbol{{Name: "Old", Kind: "concept"}},
	}))
	require.NoError(t, s.Put(Snapshot{
		Path: "a.tps", ContentHash: "hash2", Durability: "high",
		Symbols: []CachedSymbol{{Name: "New", Kind: "concept"}},
	}))

	got, ok, err := s.Lookup("a.tps", "hash2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Symbols, 1)
	require.Equal(t, "New", got.Symbols[0].Name)
}

func TestEvictRemovesSnapshot(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(Snapshot{Path: "a.tps", ContentHash: "hash1", Durability: "low"}))
	require.NoError(t, s.Evict("a.tps"))

	_, ok, err := s.Lookup("a.tps", "hash1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPathsListsCachedFiles(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(Snapshot{Path: "a.tps", ContentHash: "h1"}))
	require.NoError(t, s.Put(Snapshot{Path: "b.tps", ContentHash: "h2"}))

	paths, err := s.Paths()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.tps", "b.tps"}, paths)
}

func TestContentHashIsDeterministic(t *testing.T) {
	require.Equal(t, ContentHash("same text"), ContentHash("same text"))
	require.NotEqual(t, ContentHash("same text"), ContentHash("different text"))
}
