package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/resolve"
	"github.com/topos-lang/topos/symbols"
	"github.com/topos-lang/topos/syntax"
	"github.com/topos-lang/topos/trace"
)

func parseAndLower(t *testing.T, src string) *ast.SourceFile {
	t.Helper()
	tree := syntax.Parse([]byte(src), nil)
	sf, errs := ast.Lower(tree, ast.FileID(1))
	require.Empty(t, errs)
	return sf
}

func TestFileDiagnosticsFlagsDuplicateStableID(t *testing.T) {
	src := `# Requirements

## REQ-1 first
  when ` + "`a`" + ` occurs the system shall respond

## REQ-1 second
  when ` + "`b`" + ` occurs the system shall respond
`
	sf := parseAndLower(t, src)
	diags := FileDiagnostics(ast.FileID(1), sf, nil)
	require.True(t, hasCode(diags, E103DuplicateStableID))
}

func TestFileDiagnosticsFlagsDuplicateFieldAndConflictingConstraints(t *testing.T) {
	src := `# Concepts

concept User:
  name: ` + "`Text`" + `; unique; optional; default "anon"
  name: ` + "`Text`" + `
`
	sf := parseAndLower(t, src)
	diags := FileDiagnostics(ast.FileID(1), sf, nil)
	require.True(t, hasCode(diags, W205DuplicateFieldName))
	require.True(t, hasCode(diags, W206ConflictingConstraints))
}

func TestFileDiagnosticsIncludesParseErrors(t *testing.T) {
	sf := &ast.SourceFile{}
	perr := []ast.ParseError{{Span: ast.Span{}, Message: "broken"}}
	diags := FileDiagnostics(ast.FileID(1), sf, perr)
	require.Len(t, diags, 1)
	require.Equal(t, E001ParseError, diags[0].Code)
}

func TestReferenceDiagnosticsUnresolvedImplements(t *testing.T) {
	src := `# Behaviors

behavior foo() implements ` + "`REQ-MISSING`" + `:
  returns ` + "`Bool`" + `
`
	sf := parseAndLower(t, src)
	ws := resolve.NewWorkspace()
	ws.Tables[ast.FileID(1)] = symbols.Build(sf)
	diags := ReferenceDiagnostics(ast.FileID(1), sf, ws)
	require.True(t, hasCode(diags, E101UnresolvedReference))
}

func TestReferenceDiagnosticsKindMismatch(t *testing.T) {
	src := `# Concepts

concept User:
  name: ` + "`Text`" + `

# Behaviors

behavior foo() implements ` + "`User`" + `:
  returns ` + "`Bool`" + `
`
	sf := parseAndLower(t, src)
	ws := resolve.NewWorkspace()
	ws.Tables[ast.FileID(1)] = symbols.Build(sf)
	diags := ReferenceDiagnostics(ast.FileID(1), sf, ws)
	require.True(t, hasCode(diags, E102KindMismatch))
}

func TestImportDiagnosticsUnknownPathAndCycle(t *testing.T) {
	sf := &ast.SourceFile{
		Imports: []*ast.Import{{SourcePath: "nowhere.tps"}},
	}
	ws := resolve.NewWorkspace()
	file := ast.FileID(1)
	ws.AddEdge(file, file) // trivial self-cycle
	lookup := func(string) (symbols.ExportMap, bool) { return nil, false }
	diags := ImportDiagnostics(file, sf, ws, lookup)
	require.True(t, hasCode(diags, E105UnknownImportPath))
	require.True(t, hasCode(diags, E104CircularImport))
}

func TestImportDiagnosticsPrivateImport(t *testing.T) {
	sf := &ast.SourceFile{
		Imports: []*ast.Import{{
			SourcePath: "shared.tps", Kind: ast.ImportItems,
			Items: []*ast.ImportItem{{Name: "Internal"}},
		}},
	}
	ws := resolve.NewWorkspace()
	lookup := func(string) (symbols.ExportMap, bool) {
		return symbols.ExportMap{"Internal": {Name: "Internal", Private: true}}, true
	}
	diags := ImportDiagnostics(ast.FileID(1), sf, ws, lookup)
	require.True(t, hasCode(diags, E106PrivateImport))
}

func TestTraceabilityDiagnosticsFlagsMissingCoverage(t *testing.T) {
	report := &trace.Report{
		Requirements: []trace.RequirementEntry{
			{ID: "REQ-1", Coverage: trace.Coverage{HasBehavior: false, HasTask: false}},
		},
		OrphanBehaviors: []trace.OrphanBehavior{{Name: "orphanFn"}},
	}
	diags := TraceabilityDiagnostics(report)
	require.True(t, hasCode(diags, W202NoImplementingBehavior))
	require.True(t, hasCode(diags, W203NoImplementingTask))
	require.True(t, hasCode(diags, W204BehaviorNoImplements))
}

func TestHoleDiagnosticsReportsUnresolved(t *testing.T) {
	diags := HoleDiagnostics([]*ast.TypedHole{{ID: 0}, {ID: 1}})
	require.Len(t, diags, 2)
	for _, d := range diags {
		require.Equal(t, I301UnresolvedHole, d.Code)
		require.Equal(t, Info, d.Severity)
	}
}

func TestMergeSortsBySpanThenCode(t *testing.T) {
	a := []Diagnostic{{Code: W207SoftRatioExceeded, Span: ast.Span{StartByte: 10}}}
	b := []Diagnostic{{Code: E101UnresolvedReference, Span: ast.Span{StartByte: 10}}, {Code: E001ParseError, Span: ast.Span{StartByte: 0}}}
	merged := Merge(a, b)
	require.Len(t, merged, 3)
	require.Equal(t, E001ParseError, merged[0].Code)
	require.Equal(t, E101UnresolvedReference, merged[1].Code)
	require.Equal(t, W207SoftRatioExceeded, merged[2].Code)
}

func hasCode(diags []Diagnostic, code Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
