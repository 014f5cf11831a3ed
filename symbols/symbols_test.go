package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/syntax"
)

func TestBuildTableFromConceptsAndBehaviors(t *testing.T) {
	src := `# Concepts

concept User:
  name: ` + "`Text`" + `

# Behaviors

behavior login(u: ` + "`User`" + `):
  returns ` + "`Bool`" + `
`
	tree := syntax.Parse([]byte(src), nil)
	sf, errs := ast.Lower(tree, ast.FileID(1))
	require.Empty(t, errs)

	table := Build(sf)
	require.Len(t, table.Lookup("User"), 1)
	require.Equal(t, KindConcept, table.Lookup("User")[0].Kind)
	require.Len(t, table.Fields["User"], 1)
	require.Len(t, table.Lookup("login"), 1)
	require.Len(t, table.Params["login"], 1)
}

func TestExportsExcludesPrivate(t *testing.T) {
	src := `# Concepts

concept private Internal:
  x: ` + "`Text`" + `

concept Public:
  y: ` + "`Text`" + `
`
	tree := syntax.Parse([]byte(src), nil)
	sf, _ := ast.Lower(tree, ast.FileID(1))
	table := Build(sf)
	exports := Exports(table)
	_, hasInternal := exports["Internal"]
	_, hasPublic := exports["Public"]
	require.False(t, hasInternal)
	require.True(t, hasPublic)
}

func TestBuildImportsHandlesGlobAndAlias(t *testing.T) {
	exports := ExportMap{
		"Widget": {Name: "Widget", Kind: KindConcept},
	}
	lookup := func(path string) ExportMap { return exports }

	globImp := []*ast.Import{{Kind: ast.ImportGlob, SourcePath: "shared"}}
	im := BuildImports(globImp, lookup)
	require.Contains(t, im, "Widget")

	itemImp := []*ast.Import{{
		Kind: ast.ImportItems, SourcePath: "shared",
		Items: []*ast.ImportItem{{Name: "Widget", Alias: "Thing"}},
	}}
	im2 := BuildImports(itemImp, lookup)
	require.Contains(t, im2, "Thing")
	require.NotContains(t, im2, "Widget")
}
