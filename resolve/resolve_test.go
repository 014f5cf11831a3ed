package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/symbols"
)

func ref(path ...string) *ast.Reference {
	return &ast.Reference{Path: path}
}

func TestResolveLocalBeforeImport(t *testing.T) {
	ws := NewWorkspace()
	file := ast.FileID(1)
	table := symbols.NewTable(file)
	table.Add(&symbols.Symbol{Name: "User", Kind: symbols.KindConcept, File: file})
	ws.Tables[file] = table
	ws.Imports[file] = symbols.ImportMap{"User": {Name: "User", Kind: symbols.KindConcept}}

	res := ws.Resolve(file, ref("User"), nil)
	require.Equal(t, ResolvedLocal, res.Reason)
}

func TestResolveContextualBeatsLocal(t *testing.T) {
	ws := NewWorkspace()
	file := ast.FileID(1)
	table := symbols.NewTable(file)
	table.Add(&symbols.Symbol{Name: "user", Kind: symbols.KindConcept, File: file})
	ws.Tables[file] = table

	bound := &symbols.Symbol{Name: "user", Kind: symbols.KindConcept}
	res := ws.Resolve(file, ref("user"), map[string]*symbols.Symbol{"user": bound})
	require.Equal(t, ResolvedContextual, res.Reason)
	require.Same(t, bound, res.Symbol)
}

func TestResolveFallsBackToImportThenBuiltin(t *testing.T) {
	ws := NewWorkspace()
	file := ast.FileID(1)
	ws.Tables[file] = symbols.NewTable(file)
	ws.Imports[file] = symbols.ImportMap{"Widget": {Name: "Widget", Kind: symbols.KindConcept}}

	res := ws.Resolve(file, ref("Widget"), nil)
	require.Equal(t, ResolvedImport, res.Reason)

	res = ws.Resolve(file, ref("String"), nil)
	require.Equal(t, ResolvedBuiltin, res.Reason)

	res = ws.Resolve(file, ref("Nonexistent"), nil)
	require.Equal(t, Unresolved, res.Reason)
}

func TestResolveNamespaceQualified(t *testing.T) {
	ws := NewWorkspace()
	file, dep := ast.FileID(1), ast.FileID(2)
	ws.Tables[file] = symbols.NewTable(file)
	depTable := symbols.NewTable(dep)
	depTable.Add(&symbols.Symbol{Name: "Session", Kind: symbols.KindConcept, File: dep})
	ws.Tables[dep] = depTable
	ws.Namespace["auth"] = dep

	res := ws.Resolve(file, ref("auth", "Session"), nil)
	require.Equal(t, ResolvedNamespace, res.Reason)
	require.Equal(t, "Session", res.Symbol.Name)

	res = ws.Resolve(file, ref("unknownmod", "Session"), nil)
	require.Equal(t, UnknownNamespace, res.Reason)
}

func TestResolveAbsolutePathSkipsPrivate(t *testing.T) {
	ws := NewWorkspace()
	file, dep := ast.FileID(1), ast.FileID(2)
	ws.Tables[file] = symbols.NewTable(file)
	depTable := symbols.NewTable(dep)
	depTable.Add(&symbols.Symbol{Name: "Internal", Kind: symbols.KindConcept, Private: true, File: dep})
	ws.Tables[dep] = depTable
	ws.PathIndex["/shared.tps"] = dep

	res := ws.Resolve(file, ref("/shared.tps", "Internal"), nil)
	require.Equal(t, Unresolved, res.Reason)
}

func TestDependenciesAndDependents(t *testing.T) {
	ws := NewWorkspace()
	a, b := ast.FileID(1), ast.FileID(2)
	ws.AddEdge(a, b)
	ws.AddEdge(a, b) // duplicate edge is a no-op

	require.Equal(t, []ast.FileID{b}, ws.Dependencies(a))
	require.Equal(t, []ast.FileID{a}, ws.Dependents(b))
}

func TestHasCycleDetectsCycle(t *testing.T) {
	ws := NewWorkspace()
	a, b, c := ast.FileID(1), ast.FileID(2), ast.FileID(3)
	ws.AddEdge(a, b)
	ws.AddEdge(b, c)
	ws.AddEdge(c, a)

	cycle, found := ws.HasCycle(a)
	require.True(t, found)
	require.Equal(t, a, cycle[0])
	require.Equal(t, a, cycle[len(cycle)-1])
}

func TestHasCycleFalseOnAcyclicGraph(t *testing.T) {
	ws := NewWorkspace()
	a, b := ast.FileID(1), ast.FileID(2)
	ws.AddEdge(a, b)

	_, found := ws.HasCycle(a)
	require.False(t, found)
}
