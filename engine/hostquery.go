package engine

import (
	"context"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/resolve"
	"github.com/topos-lang/topos/symbols"
)

// pointInSpan reports whether p falls within span, comparing (line, col)
// pairs rather than byte offsets since hosts address positions by cursor.
func pointInSpan(p ast.Point, span ast.Span) bool {
	if p.Line < span.Start.Line || p.Line > span.End.Line {
		return false
	}
	if p.Line == span.Start.Line && p.Col < span.Start.Col {
		return false
	}
	if p.Line == span.End.Line && p.Col > span.End.Col {
		return false
	}
	return true
}

// SymbolsIn returns every symbol file declares, in declaration order. The
// host-facing equivalent of the teacher's `symbols` listing command.
func (db *Database) SymbolsIn(ctx context.Context, file ast.FileID) ([]*symbols.Symbol, error) {
	table, err := db.FileSymbols(ctx, file)
	if err != nil {
		return nil, err
	}
	return table.Symbols, nil
}

// SymbolAt returns the innermost declared symbol whose span contains pos,
// the analogue of the teacher's QueryBuilder.SymbolAt.
func (db *Database) SymbolAt(ctx context.Context, file ast.FileID, pos ast.Point) (*symbols.Symbol, bool, error) {
	table, err := db.FileSymbols(ctx, file)
	if err != nil {
		return nil, false, err
	}
	var best *symbols.Symbol
	for _, sym := range table.Symbols {
		if !pointInSpan(pos, sym.Span) {
			continue
		}
		if best == nil || best.Span.Contains(sym.Span) {
			best = sym
		}
	}
	return best, best != nil, nil
}

// referenceAt finds the Reference node in file whose span contains pos, if
// any (the last such one in source order).
func referenceAt(sf *ast.SourceFile, pos ast.Point) *ast.Reference {
	var found *ast.Reference
	consider := func(ref *ast.Reference) {
		if ref != nil && pointInSpan(pos, ref.Span) {
			found = ref
		}
	}
	for _, sec := range sf.Sections {
		for _, b := range sec.Behaviors {
			for _, ref := range b.Implements {
				consider(ref)
			}
		}
		for _, t := range sec.Tasks {
			for _, ref := range t.Requirements {
				consider(ref)
			}
			for _, ref := range t.DependsOn {
				consider(ref)
			}
		}
	}
	return found
}

// ResolveAt resolves the reference located at pos in file, for goto-
// definition hosts. ok is false if pos isn't inside any reference.
func (db *Database) ResolveAt(ctx context.Context, file ast.FileID, pos ast.Point) (resolve.Result, bool, error) {
	sf, _, err := db.Parse(ctx, file)
	if err != nil {
		return resolve.Result{}, false, err
	}
	ref := referenceAt(sf, pos)
	if ref == nil {
		return resolve.Result{}, false, nil
	}
	res, err := db.Resolve(ctx, file, ref, nil)
	if err != nil {
		return resolve.Result{}, false, err
	}
	return res, res.Symbol != nil, nil
}

// sameSymbol reports whether a and b identify the same declaration, using
// StableID where the kind carries one and (File, Kind, Name) otherwise.
func sameSymbol(a, b *symbols.Symbol) bool {
	if a == nil || b == nil {
		return false
	}
	if a.StableID != "" || b.StableID != "" {
		return a.StableID == b.StableID
	}
	return a.File == b.File && a.Kind == b.Kind && a.Name == b.Name
}

// ReferencesTo returns the span of every reference across the workspace
// that resolves to target, the analogue of the teacher's
// QueryBuilder.ReferencesTo.
func (db *Database) ReferencesTo(ctx context.Context, target *symbols.Symbol) ([]ast.Span, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	var out []ast.Span
	for _, file := range db.WorkspaceFiles() {
		sf, _, err := db.Parse(ctx, file)
		if err != nil {
			return nil, err
		}
		check := func(ref *ast.Reference) error {
			if ref == nil {
				return nil
			}
			res, err := db.Resolve(ctx, file, ref, nil)
			if err != nil {
				return err
			}
			if sameSymbol(res.Symbol, target) {
				out = append(out, ref.Span)
			}
			return nil
		}
		for _, sec := range sf.Sections {
			for _, b := range sec.Behaviors {
				for _, ref := range b.Implements {
					if err := check(ref); err != nil {
						return nil, err
					}
				}
			}
			for _, t := range sec.Tasks {
				for _, ref := range t.Requirements {
					if err := check(ref); err != nil {
						return nil, err
					}
				}
				for _, ref := range t.DependsOn {
					if err := check(ref); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return out, nil
}

// HoverInfo is the host-facing summary of a declaration, for hover tooltips.
type HoverInfo struct {
	Symbol          *symbols.Symbol
	Fields          []*symbols.Field     // populated when Symbol.Kind == KindConcept
	Parameters      []*symbols.Parameter // populated when Symbol.Kind == KindBehavior
	InvolvedSymbols []*symbols.Symbol    // requirements a behavior implements; empty for every other kind
}

// HoverAt returns summary information for the declaration at pos, or
// ok == false if pos isn't over any declaration.
func (db *Database) HoverAt(ctx context.Context, file ast.FileID, pos ast.Point) (*HoverInfo, bool, error) {
	sym, ok, err := db.SymbolAt(ctx, file, pos)
	if err != nil || !ok {
		return nil, false, err
	}
	table, err := db.FileSymbols(ctx, file)
	if err != nil {
		return nil, false, err
	}
	info := &HoverInfo{Symbol: sym}
	switch sym.Kind {
	case symbols.KindConcept:
		info.Fields = table.Fields[sym.Name]
	case symbols.KindBehavior:
		info.Parameters = table.Params[sym.Name]
	}
	involved, err := db.involvedSymbols(ctx, file, sym)
	if err != nil {
		return nil, false, err
	}
	info.InvolvedSymbols = involved
	return info, true, nil
}

// involvedSymbols resolves the cross-references a declaration itself carries
// (a Behavior's Implements clauses) into the symbols they name, for hosts
// that want to show the requirements a behavior implements directly from
// hover without a second ReferencesTo round trip. For any other symbol kind
// it returns nil.
func (db *Database) involvedSymbols(ctx context.Context, file ast.FileID, sym *symbols.Symbol) ([]*symbols.Symbol, error) {
	if sym.Kind != symbols.KindBehavior {
		return nil, nil
	}
	sf, _, err := db.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	var refs []*ast.Reference
	for _, sec := range sf.Sections {
		for _, b := range sec.Behaviors {
			if b.Name == sym.Name && b.Span == sym.Span {
				refs = b.Implements
			}
		}
	}
	var out []*symbols.Symbol
	seen := map[string]bool{}
	for _, ref := range refs {
		res, err := db.Resolve(ctx, file, ref, nil)
		if err != nil {
			return nil, err
		}
		if res.Symbol == nil {
			continue
		}
		key := string(res.Symbol.StableID) + "|" + res.Symbol.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, res.Symbol)
	}
	return out, nil
}
