// Package resolve implements reference resolution against a workspace's
// symbol tables, following a fixed lookup order: contextual bindings, local
// scope, explicit imports, namespace-qualified paths, absolute file paths,
// and finally the built-in primitive set.
package resolve

import (
	"strings"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/symbols"
)

// builtinNames is the fixed set of primitive type names every file can
// reference without an import.
var builtinNames = []string{
	"String", "Boolean", "Natural", "DateTime", "List", "Optional",
	"Email", "Identifier", "UUID", "Money", "Currency", "DocString",
	"Hash", "JWT",
}

// Builtins is the fixed set of primitive type names every file can
// reference without an import, each exposed as a KindConcept symbol.
var Builtins = func() map[string]*symbols.Symbol {
	out := make(map[string]*symbols.Symbol, len(builtinNames))
	for _, name := range builtinNames {
		out[name] = &symbols.Symbol{Name: name, Kind: symbols.KindConcept}
	}
	return out
}()

// Reason is the closed set of resolution outcomes, reported so diagnostics
// can explain *why* a reference failed rather than just that it did.
type Reason int

const (
	ResolvedContextual Reason = iota
	ResolvedLocal
	ResolvedImport
	ResolvedNamespace
	ResolvedAbsolute
	ResolvedBuiltin
	Unresolved
	AmbiguousNamespace
	UnknownNamespace
)

// Result is the outcome of resolving one Reference.
type Result struct {
	Symbol *symbols.Symbol
	Reason Reason
}

// Workspace is the read-only view resolve needs over the whole indexed
// project: one symbol table and import map per file, plus a path->file
// index for namespace/absolute-path lookups.
type Workspace struct {
	Tables    map[ast.FileID]*symbols.Table
	Imports   map[ast.FileID]symbols.ImportMap
	Namespace map[string]ast.FileID // module alias -> file, from ImportAlias imports
	PathIndex map[string]ast.FileID // workspace-relative path -> file
	// Edges records, per file, the files it imports from — the import
	// graph Dependencies/Dependents walk.
	Edges map[ast.FileID][]ast.FileID
}

// NewWorkspace returns an empty Workspace whose maps are ready to be filled
// and whose import graph is ready for AddEdge calls.
func NewWorkspace() *Workspace {
	return &Workspace{
		Tables:    map[ast.FileID]*symbols.Table{},
		Imports:   map[ast.FileID]symbols.ImportMap{},
		Namespace: map[string]ast.FileID{},
		PathIndex: map[string]ast.FileID{},
		Edges:     map[ast.FileID][]ast.FileID{},
	}
}

// AddEdge records that file imports from dependsOn, for Dependencies and
// Dependents queries. The engine calls this once per resolved Import while
// building the workspace.
func (w *Workspace) AddEdge(file, dependsOn ast.FileID) {
	for _, existing := range w.Edges[file] {
		if existing == dependsOn {
			return
		}
	}
	w.Edges[file] = append(w.Edges[file], dependsOn)
}

// Resolve looks up ref as seen from file, in the fixed six-step order:
// contextual bindings, local scope, explicit imports, namespace-qualified
// lookups, absolute path lookups, then built-ins.
func (w *Workspace) Resolve(file ast.FileID, ref *ast.Reference, contextual map[string]*symbols.Symbol) Result {
	if ref == nil || len(ref.Path) == 0 {
		return Result{Reason: Unresolved}
	}

	name := ref.Name()
	qualifier := ref.Qualifier()

	if qualifier == "" {
		if contextual != nil {
			if sym, ok := contextual[name]; ok {
				return Result{Symbol: sym, Reason: ResolvedContextual}
			}
		}

		if table := w.Tables[file]; table != nil {
			if syms := table.Lookup(name); len(syms) > 0 {
				return Result{Symbol: syms[0], Reason: ResolvedLocal}
			}
		}

		if imports := w.Imports[file]; imports != nil {
			if sym, ok := imports[name]; ok {
				return Result{Symbol: sym, Reason: ResolvedImport}
			}
		}

		if sym, ok := Builtins[name]; ok {
			return Result{Symbol: sym, Reason: ResolvedBuiltin}
		}
		return Result{Reason: Unresolved}
	}

	// Absolute path: `/path/to/file.Name` consults that file's exports
	// directly, bypassing module aliases.
	if strings.HasPrefix(qualifier, "/") {
		if fid, ok := w.PathIndex[qualifier]; ok {
			if table := w.Tables[fid]; table != nil {
				if sym := firstExported(table, name); sym != nil {
					return Result{Symbol: sym, Reason: ResolvedAbsolute}
				}
			}
		}
		return Result{Reason: Unresolved}
	}

	// Namespace-qualified: `mod.Name` consults `import mod as path`'s
	// ExportMap.
	target, ok := w.Namespace[qualifier]
	if !ok {
		return Result{Reason: UnknownNamespace}
	}
	table := w.Tables[target]
	if table == nil {
		return Result{Reason: UnknownNamespace}
	}
	if sym := firstExported(table, name); sym != nil {
		return Result{Symbol: sym, Reason: ResolvedNamespace}
	}
	return Result{Reason: Unresolved}
}

func firstExported(t *symbols.Table, name string) *symbols.Symbol {
	for _, s := range t.Lookup(name) {
		if !s.Private {
			return s
		}
	}
	return nil
}

// Dependencies returns the set of files that file directly imports from,
// per the edges recorded via AddEdge while building the workspace.
func (w *Workspace) Dependencies(file ast.FileID) []ast.FileID {
	out := make([]ast.FileID, len(w.Edges[file]))
	copy(out, w.Edges[file])
	return out
}

// Dependents returns every file that directly imports from source, the
// reverse of Dependencies.
func (w *Workspace) Dependents(source ast.FileID) []ast.FileID {
	var out []ast.FileID
	for file, deps := range w.Edges {
		for _, dep := range deps {
			if dep == source {
				out = append(out, file)
				break
			}
		}
	}
	return out
}

// HasCycle reports whether the import graph reachable from start contains a
// cycle, returning the cycle's file path (its first file repeated at the
// end; that file is start when start itself lies on the cycle) when one is
// found. diagnostics.ImportDiagnostics uses it for E104.
func (w *Workspace) HasCycle(start ast.FileID) ([]ast.FileID, bool) {
	var path []ast.FileID
	onStack := map[ast.FileID]bool{}
	visited := map[ast.FileID]bool{}

	var visit func(ast.FileID) ([]ast.FileID, bool)
	visit = func(f ast.FileID) ([]ast.FileID, bool) {
		if onStack[f] {
			cut := 0
			for i, p := range path {
				if p == f {
					cut = i
					break
				}
			}
			cycle := append([]ast.FileID{}, path[cut:]...)
			return append(cycle, f), true
		}
		if visited[f] {
			return nil, false
		}
		visited[f] = true
		onStack[f] = true
		path = append(path, f)
		for _, dep := range w.Edges[f] {
			if cyc, found := visit(dep); found {
				return cyc, true
			}
		}
		path = path[:len(path)-1]
		onStack[f] = false
		return nil, false
	}
	return visit(start)
}
