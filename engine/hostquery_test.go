package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/symbols"
)

const hoverSource = `# Requirements

## REQ-1 user login
  when ` + "`user`" + ` submits valid credentials the system shall grant access

# Behaviors

behavior login(user: ` + "`User`" + `) implements ` + "`REQ-1`" + `:
  returns ` + "`Session`" + ` or error ` + "`AuthError`" + `

# Concepts

concept User:
  name: ` + "`Text`" + `
`

func findSymbol(t *testing.T, table *symbols.Table, name string) *symbols.Symbol {
	t.Helper()
	for _, sym := range table.Symbols {
		if sym.Name == name {
			return sym
		}
	}
	t.Fatalf("symbol %q not found", name)
	return nil
}

func TestSymbolsInReturnsDeclarationOrder(t *testing.T) {
	db := New()
	file := db.SetFile("a.tps", hoverSource, Low)
	syms, err := db.SymbolsIn(context.Background(), file)
	require.NoError(t, err)
	require.NotEmpty(t, syms)
	require.Equal(t, "REQ-1", syms[0].Name)
}

func TestSymbolAtFindsDeclarationUnderPoint(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	table, err := db.FileSymbols(ctx, file)
	require.NoError(t, err)
	target := findSymbol(t, table, "User")

	sym, ok, err := db.SymbolAt(ctx, file, target.Span.Start)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "User", sym.Name)
}

func TestSymbolAtMissOutsideAnySpan(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	_, err := db.FileSymbols(ctx, file)
	require.NoError(t, err)

	_, ok, err := db.SymbolAt(ctx, file, ast.Point{Line: 9999, Col: 0})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHoverAtBehaviorIncludesInvolvedSymbols(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	table, err := db.FileSymbols(ctx, file)
	require.NoError(t, err)
	behavior := findSymbol(t, table, "login")

	info, ok, err := db.HoverAt(ctx, file, behavior.Span.Start)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "login", info.Symbol.Name)
	require.Len(t, info.Parameters, 1)
	require.Len(t, info.InvolvedSymbols, 1)
	require.Equal(t, "REQ-1", info.InvolvedSymbols[0].Name)
}

func TestHoverAtConceptIncludesFieldsNoInvolvedSymbols(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	table, err := db.FileSymbols(ctx, file)
	require.NoError(t, err)
	concept := findSymbol(t, table, "User")

	info, ok, err := db.HoverAt(ctx, file, concept.Span.Start)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, info.Fields, 1)
	require.Empty(t, info.InvolvedSymbols)
}

func TestHoverAtMissOutsideAnySpan(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	_, err := db.FileSymbols(ctx, file)
	require.NoError(t, err)

	_, ok, err := db.HoverAt(ctx, file, ast.Point{Line: 9999, Col: 0})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveAtAndReferencesToRoundTrip(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	sf, _, err := db.Parse(ctx, file)
	require.NoError(t, err)

	var implementsRef *ast.Reference
	for _, sec := range sf.Sections {
		for _, b := range sec.Behaviors {
			if len(b.Implements) > 0 {
				implementsRef = b.Implements[0]
			}
		}
	}
	require.NotNil(t, implementsRef)

	res, ok, err := db.ResolveAt(ctx, file, implementsRef.Span.Start)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "REQ-1", res.Symbol.Name)

	refs, err := db.ReferencesTo(ctx, res.Symbol)
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestResolveAtMissOutsideAnyReference(t *testing.T) {
	db := New()
	ctx := context.Background()
	file := db.SetFile("a.tps", hoverSource, Low)
	_, ok, err := db.ResolveAt(ctx, file, ast.Point{Line: 0, Col: 0})
	require.NoError(t, err)
	require.False(t, ok)
}
