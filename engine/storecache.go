package engine

import (
	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/store"
	"github.com/topos-lang/topos/symbols"
)

// WithStore attaches a SQLite-backed snapshot cache: HIGH-durability files'
// symbol tables are persisted to it write-behind (after computing, off the
// read path's critical section) and consulted before reparsing, the same
// compute/persist split the teacher's writer goroutine draws in
// engine_parallel.go. LOW-durability files never touch it.
func WithStore(s *store.Store) Option {
	return func(db *Database) { db.store = s }
}

// tableFromSnapshot rebuilds a symbols.Table from a cached snapshot. The
// cache schema persists the flat Symbols list only (store/store.go's three
// tables have no Fields/Params columns), so a cache hit yields a Table with
// an empty Fields/Params map. FileSymbols returns that Table as it is: for a
// HIGH-durability file served from the cache, field and parameter detail is
// absent and no reparse fills it in.
func tableFromSnapshot(file ast.FileID, snap store.Snapshot) *symbols.Table {
	t := symbols.NewTable(file)
	for _, cs := range snap.Symbols {
		t.Add(&symbols.Symbol{
			Name:     cs.Name,
			Kind:     symbolKindFromString(cs.Kind),
			Private:  cs.Private,
			StableID: ast.StableID(cs.StableID),
			File:     file,
			Span: ast.Span{
				StartByte: cs.Span.StartByte, EndByte: cs.Span.EndByte,
				Start: ast.Point{Line: cs.Span.StartLine, Col: cs.Span.StartCol},
				End:   ast.Point{Line: cs.Span.EndLine, Col: cs.Span.EndCol},
			},
		})
	}
	return t
}

func symbolKindFromString(s string) symbols.Kind {
	for _, k := range []symbols.Kind{
		symbols.KindConcept, symbols.KindBehavior, symbols.KindInvariant,
		symbols.KindAesthetic, symbols.KindRequirement, symbols.KindTask, symbols.KindEnumVariant,
	} {
		if k.String() == s {
			return k
		}
	}
	return symbols.KindConcept
}

// snapshotFromTable converts a freshly computed Table into the row shape
// store.Put persists.
func snapshotFromTable(path, contentHash string, durability Durability, t *symbols.Table) store.Snapshot {
	snap := store.Snapshot{Path: path, ContentHash: contentHash, Durability: durability.String()}
	for _, sym := range t.Symbols {
		snap.Symbols = append(snap.Symbols, store.CachedSymbol{
			StableID: string(sym.StableID),
			Name:     sym.Name,
			Kind:     sym.Kind.String(),
			Private:  sym.Private,
			Span: store.CachedSpan{
				StartByte: sym.Span.StartByte, EndByte: sym.Span.EndByte,
				StartLine: sym.Span.Start.Line, StartCol: sym.Span.Start.Col,
				EndLine: sym.Span.End.Line, EndCol: sym.Span.End.Col,
			},
		})
	}
	return snap
}

// persistWriteBehind writes snap to the store in the background; failures
// are swallowed since the cache is strictly an optimization, never a source
// of truth (store/store.go's package doc).
func (db *Database) persistWriteBehind(path, contentHash string, durability Durability, t *symbols.Table) {
	if db.store == nil || durability != High || contentHash == "" {
		return
	}
	snap := snapshotFromTable(path, contentHash, durability, t)
	go func() {
		_ = db.store.Put(snap)
	}()
}
