// Package symbols defines Topos's per-file symbol table, trimmed from the
// internal/store/types.go extraction shapes down to what a
// specification language needs: no call graph, no type members — Concept
// fields and Behavior parameters stand in for those directly.
package symbols

import "github.com/topos-lang/topos/ast"

// Kind is the closed set of symbol kinds a file can export.
type Kind int

const (
	KindConcept Kind = iota
	KindBehavior
	KindInvariant
	KindAesthetic
	KindRequirement
	KindTask
	KindEnumVariant
)

func (k Kind) String() string {
	switch k {
	case KindConcept:
		return "concept"
	case KindBehavior:
		return "behavior"
	case KindInvariant:
		return "invariant"
	case KindAesthetic:
		return "aesthetic"
	case KindRequirement:
		return "requirement"
	case KindTask:
		return "task"
	case KindEnumVariant:
		return "enum-variant"
	default:
		return "unknown"
	}
}

// Symbol is one named, span-bearing declaration captured from a file.
type Symbol struct {
	Name      string
	Kind      Kind
	Span      ast.Span
	File      ast.FileID
	Private   bool
	StableID  ast.StableID // set for Requirement/Task symbols
	NodeID    ast.NodeID
	// Parent holds the owning Concept's name for an EnumVariant symbol,
	// "" otherwise.
	Parent string
}

// Field is a Concept field entry, the analogue of canopy's
// TypeMember but carrying Topos's richer constraint list.
type Field struct {
	Name        string
	Private     bool
	Type        *ast.TypeExpr
	Constraints []*ast.FieldConstraint
	Span        ast.Span
}

// Parameter is a Behavior parameter, the analogue of canopy's
// FunctionParam.
type Parameter struct {
	Name string
	Type *ast.TypeExpr
	Span ast.Span
}

// Table is the full symbol table for one file: every declared Symbol plus
// the Concept-field and Behavior-parameter detail that resolution and
// hole-matching need.
type Table struct {
	File    ast.FileID
	Symbols []*Symbol
	Fields  map[string][]*Field     // concept name -> fields
	Params  map[string][]*Parameter // behavior name -> parameters

	byName map[string][]*Symbol
}

// NewTable builds an (initially empty) table for file.
func NewTable(file ast.FileID) *Table {
	return &Table{
		File:   file,
		Fields: map[string][]*Field{},
		Params: map[string][]*Parameter{},
		byName: map[string][]*Symbol{},
	}
}

// Add inserts sym, indexing it for Lookup.
func (t *Table) Add(sym *Symbol) {
	t.Symbols = append(t.Symbols, sym)
	t.byName[sym.Name] = append(t.byName[sym.Name], sym)
}

// Lookup returns every symbol in the table with the given name (usually
// one, but enum variants and overload-free names can still collide across
// kinds — callers filter by Kind where it matters).
func (t *Table) Lookup(name string) []*Symbol {
	return t.byName[name]
}

// Build extracts a Table from a lowered SourceFile.
func Build(file *ast.SourceFile) *Table {
	t := NewTable(file.File)
	ordinal := map[string]int{}
	nodeID := func(kindPath string) ast.NodeID {
		id := ast.NodeID{File: file.File, KindPath: kindPath, Ordinal: ordinal[kindPath]}
		ordinal[kindPath]++
		return id
	}

	for _, sec := range file.Sections {
		for _, req := range sec.Requirements {
			t.Add(&Symbol{
				Name: string(req.ID), Kind: KindRequirement, Span: req.Span,
				File: file.File, StableID: req.ID, NodeID: nodeID("SourceFile.Section.Requirement"),
			})
		}
		for _, task := range sec.Tasks {
			t.Add(&Symbol{
				Name: string(task.ID), Kind: KindTask, Span: task.Span,
				File: file.File, StableID: task.ID, NodeID: nodeID("SourceFile.Section.Task"),
			})
		}
		for _, c := range sec.Concepts {
			t.Add(&Symbol{
				Name: c.Name, Kind: KindConcept, Span: c.Span, File: file.File,
				Private: c.Private, NodeID: nodeID("SourceFile.Section.Concept"),
			})
			for _, f := range c.Fields {
				t.Fields[c.Name] = append(t.Fields[c.Name], &Field{
					Name: f.Name, Private: f.Private, Type: f.Type, Constraints: f.Constraints, Span: f.Span,
				})
			}
			for _, v := range c.Variants {
				t.Add(&Symbol{
					Name: v.Name, Kind: KindEnumVariant, Span: v.Span, File: file.File,
					Parent: c.Name, NodeID: nodeID("SourceFile.Section.Concept.EnumVariant"),
				})
			}
		}
		for _, b := range sec.Behaviors {
			t.Add(&Symbol{
				Name: b.Name, Kind: KindBehavior, Span: b.Span, File: file.File,
				Private: b.Private, NodeID: nodeID("SourceFile.Section.Behavior"),
			})
			for _, p := range b.Parameters {
				t.Params[b.Name] = append(t.Params[b.Name], &Parameter{Name: p.Name, Type: p.Type, Span: p.Span})
			}
		}
		for _, inv := range sec.Invariants {
			t.Add(&Symbol{
				Name: inv.Name, Kind: KindInvariant, Span: inv.Span, File: file.File,
				Private: inv.Private, NodeID: nodeID("SourceFile.Section.Invariant"),
			})
		}
		for _, a := range sec.Aesthetics {
			t.Add(&Symbol{
				Name: a.Name, Kind: KindAesthetic, Span: a.Span, File: file.File,
				Private: a.Private, NodeID: nodeID("SourceFile.Section.Aesthetic"),
			})
		}
	}
	return t
}

// ExportMap is the subset of a file's Table visible to importers: every
// non-private symbol, keyed by name.
type ExportMap map[string]*Symbol

// Exports derives the ExportMap for a table.
func Exports(t *Table) ExportMap {
	out := ExportMap{}
	for _, s := range t.Symbols {
		if !s.Private {
			out[s.Name] = s
		}
	}
	return out
}

// ImportMap resolves one file's Import statements against the workspace's
// per-file export maps, producing the flat name -> Symbol bindings that
// resolution's "explicit imports" step consults.
type ImportMap map[string]*Symbol

// BuildImports resolves imports against the export maps lookupExports
// returns, applying aliasing.
func BuildImports(imports []*ast.Import, lookupExports func(path string) ExportMap) ImportMap {
	out := ImportMap{}
	for _, imp := range imports {
		exp := lookupExports(imp.SourcePath)
		if exp == nil {
			continue
		}
		switch imp.Kind {
		case ast.ImportGlob:
			for name, sym := range exp {
				out[name] = sym
			}
		case ast.ImportItems:
			for _, item := range imp.Items {
				sym, ok := exp[item.Name]
				if !ok {
					continue
				}
				name := item.Name
				if item.Alias != "" {
					name = item.Alias
				}
				out[name] = sym
			}
		case ast.ImportAlias:
			// Namespace-qualified access (mod.Name) is resolved lazily by
			// the resolve package's own namespace step; record nothing here.
		}
	}
	return out
}
