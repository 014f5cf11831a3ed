// Package diagnostics implements the rule set that turns a parsed,
// resolved workspace into ranked, span-bearing diagnostics (component C9).
package diagnostics

import (
	"sort"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/resolve"
	"github.com/topos-lang/topos/symbols"
	"github.com/topos-lang/topos/trace"
)

// Severity is the closed set of diagnostic severities.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Code is one rule identifier from the minimum rule set.
type Code string

const (
	E001ParseError           Code = "E001"
	E101UnresolvedReference  Code = "E101"
	E102KindMismatch         Code = "E102"
	E103DuplicateStableID    Code = "E103"
	E104CircularImport       Code = "E104"
	E105UnknownImportPath    Code = "E105"
	E106PrivateImport        Code = "E106"
	W201UnknownTaskReqRef    Code = "W201"
	W202NoImplementingBehavior Code = "W202"
	W203NoImplementingTask   Code = "W203"
	W204BehaviorNoImplements Code = "W204"
	W205DuplicateFieldName   Code = "W205"
	W206ConflictingConstraints Code = "W206"
	W207SoftRatioExceeded    Code = "W207"
	I301UnresolvedHole       Code = "I301"
	I302IncompatibleFill     Code = "I302"
)

func severityOf(c Code) Severity {
	switch c {
	case E001ParseError, E101UnresolvedReference, E102KindMismatch, E103DuplicateStableID,
		E104CircularImport, E105UnknownImportPath, E106PrivateImport:
		return Error
	case W201UnknownTaskReqRef, W202NoImplementingBehavior, W203NoImplementingTask,
		W204BehaviorNoImplements, W205DuplicateFieldName, W206ConflictingConstraints, W207SoftRatioExceeded:
		return Warning
	default:
		return Info
	}
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Severity  Severity
	Code      Code
	Span      ast.Span
	Message   string
	QuickFix  string // optional hint; empty if none
}

// sortDiagnostics orders by span start, then by code, per the determinism
// requirement: a fixed workspace always yields the same sequence.
func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Span.StartByte != ds[j].Span.StartByte {
			return ds[i].Span.StartByte < ds[j].Span.StartByte
		}
		return ds[i].Code < ds[j].Code
	})
}

// SoftRatioThreshold is the default soft-to-hard constraint ratio above
// which W207 fires, per the workspace-scope open question: this
// implementation counts each `[~]`/`[~permanent]` aesthetic field marker
// and each hard field constraint token as one unit apiece.
const SoftRatioThreshold = 0.3

// FileDiagnostics runs every rule that only needs a single file's own AST
// plus parse errors: E001, E103 (within-file half), W205, W206, W207.
func FileDiagnostics(file ast.FileID, sf *ast.SourceFile, parseErrors []ast.ParseError) []Diagnostic {
	var out []Diagnostic
	for _, pe := range parseErrors {
		out = append(out, Diagnostic{Severity: Error, Code: E001ParseError, Span: pe.Span, Message: pe.Message})
	}

	seenReq := map[ast.StableID]bool{}
	seenTask := map[ast.StableID]bool{}
	for _, sec := range sf.Sections {
		for _, req := range sec.Requirements {
			if seenReq[req.ID] {
				out = append(out, Diagnostic{Severity: Error, Code: E103DuplicateStableID, Span: req.Span,
					Message: "duplicate requirement id " + string(req.ID)})
			}
			seenReq[req.ID] = true
		}
		for _, task := range sec.Tasks {
			if seenTask[task.ID] {
				out = append(out, Diagnostic{Severity: Error, Code: E103DuplicateStableID, Span: task.Span,
					Message: "duplicate task id " + string(task.ID)})
			}
			seenTask[task.ID] = true
		}
		for _, c := range sec.Concepts {
			out = append(out, fieldDiagnostics(c)...)
		}
	}

	out = append(out, softRatioDiagnostic(sf)...)
	sortDiagnostics(out)
	return out
}

func fieldDiagnostics(c *ast.Concept) []Diagnostic {
	var out []Diagnostic
	seen := map[string]bool{}
	for _, f := range c.Fields {
		if seen[f.Name] {
			out = append(out, Diagnostic{Severity: Warning, Code: W205DuplicateFieldName, Span: f.Span,
				Message: "duplicate field name " + f.Name + " in concept " + c.Name})
		}
		seen[f.Name] = true

		hasUnique, hasOptional, hasDefault := false, false, false
		for _, con := range f.Constraints {
			switch con.Kind {
			case ast.ConstraintUnique:
				hasUnique = true
			case ast.ConstraintOptional:
				hasOptional = true
			case ast.ConstraintDefault:
				hasDefault = true
			}
		}
		if hasUnique && hasOptional && hasDefault {
			out = append(out, Diagnostic{Severity: Warning, Code: W206ConflictingConstraints, Span: f.Span,
				Message: "field " + f.Name + " combines unique, optional and default constraints"})
		}
	}
	return out
}

// softRatioDiagnostic counts [~]/[~permanent] markers against hard
// constraint tokens across the file and reports W207 once if the ratio
// exceeds SoftRatioThreshold.
func softRatioDiagnostic(sf *ast.SourceFile) []Diagnostic {
	soft, hard := 0, 0
	for _, sec := range sf.Sections {
		for _, a := range sec.Aesthetics {
			for _, f := range a.Fields {
				if f.Marker != ast.MarkerNone {
					soft++
				}
			}
		}
		for _, c := range sec.Concepts {
			for _, f := range c.Fields {
				hard += len(f.Constraints)
			}
		}
	}
	if soft+hard == 0 {
		return nil
	}
	ratio := float64(soft) / float64(soft+hard)
	if ratio > SoftRatioThreshold {
		return []Diagnostic{{Severity: Warning, Code: W207SoftRatioExceeded, Span: sf.Span,
			Message: "soft-to-hard constraint ratio exceeds threshold"}}
	}
	return nil
}

// ReferenceDiagnostics runs the rules that need cross-file resolution
// context: E101, E102, W201. References are resolved with no contextual
// bindings.
func ReferenceDiagnostics(file ast.FileID, sf *ast.SourceFile, ws *resolve.Workspace) []Diagnostic {
	var out []Diagnostic
	check := func(ref *ast.Reference, wantKind symbols.Kind, wantKindName string) {
		if ref == nil {
			return
		}
		res := ws.Resolve(file, ref, nil)
		switch res.Reason {
		case resolve.Unresolved, resolve.UnknownNamespace:
			out = append(out, Diagnostic{Severity: Error, Code: E101UnresolvedReference, Span: ref.Span,
				Message: "unresolved reference `" + ref.Text() + "`"})
		default:
			if res.Symbol != nil && res.Symbol.Kind != wantKind {
				out = append(out, Diagnostic{Severity: Error, Code: E102KindMismatch, Span: ref.Span,
					Message: "`" + ref.Text() + "` is not a " + wantKindName})
			}
		}
	}

	for _, sec := range sf.Sections {
		for _, b := range sec.Behaviors {
			for _, ref := range b.Implements {
				check(ref, symbols.KindRequirement, "requirement")
			}
		}
		for _, t := range sec.Tasks {
			for _, ref := range t.Requirements {
				if res := ws.Resolve(file, ref, nil); res.Reason == resolve.Unresolved {
					out = append(out, Diagnostic{Severity: Warning, Code: W201UnknownTaskReqRef, Span: ref.Span,
						Message: "task references unknown requirement `" + ref.Text() + "`"})
				} else if res.Symbol != nil && res.Symbol.Kind != symbols.KindRequirement {
					out = append(out, Diagnostic{Severity: Error, Code: E102KindMismatch, Span: ref.Span,
						Message: "`" + ref.Text() + "` is not a requirement"})
				}
			}
			for _, ref := range t.DependsOn {
				check(ref, symbols.KindTask, "task")
			}
		}
	}
	sortDiagnostics(out)
	return out
}

// ImportDiagnostics runs the import-graph rules: E104, E105, E106.
// lookupExports reports known == false for an unknown path.
func ImportDiagnostics(file ast.FileID, sf *ast.SourceFile, ws *resolve.Workspace, lookupExports func(path string) (symbols.ExportMap, bool)) []Diagnostic {
	var out []Diagnostic
	for _, imp := range sf.Imports {
		exp, known := lookupExports(imp.SourcePath)
		if !known {
			out = append(out, Diagnostic{Severity: Error, Code: E105UnknownImportPath, Span: imp.Span,
				Message: "unknown import path " + imp.SourcePath})
			continue
		}
		if imp.Kind == ast.ImportItems {
			for _, item := range imp.Items {
				if sym, ok := exp[item.Name]; ok && sym.Private {
					out = append(out, Diagnostic{Severity: Error, Code: E106PrivateImport, Span: item.Span,
						Message: "import of private symbol " + item.Name})
				}
			}
		}
	}
	if cycle, found := ws.HasCycle(file); found && len(cycle) > 1 {
		out = append(out, Diagnostic{Severity: Error, Code: E104CircularImport, Span: sf.Span,
			Message: "import cycle detected"})
	}
	sortDiagnostics(out)
	return out
}

// TraceabilityDiagnostics derives W202/W203/W204 from a built trace.Report.
func TraceabilityDiagnostics(report *trace.Report) []Diagnostic {
	var out []Diagnostic
	for _, req := range report.Requirements {
		if !req.Coverage.HasBehavior {
			out = append(out, Diagnostic{Severity: Warning, Code: W202NoImplementingBehavior, Span: req.Span,
				Message: "requirement " + string(req.ID) + " has no implementing behavior"})
		}
		if !req.Coverage.HasTask {
			out = append(out, Diagnostic{Severity: Warning, Code: W203NoImplementingTask, Span: req.Span,
				Message: "requirement " + string(req.ID) + " has no implementing task"})
		}
	}
	for _, ob := range report.OrphanBehaviors {
		out = append(out, Diagnostic{Severity: Warning, Code: W204BehaviorNoImplements, Span: ob.Span,
			Message: "behavior " + ob.Name + " lacks an Implements clause"})
	}
	sortDiagnostics(out)
	return out
}

// HoleDiagnostics reports I301 for every still-unresolved hole in a file.
func HoleDiagnostics(holes []*ast.TypedHole) []Diagnostic {
	var out []Diagnostic
	for _, h := range holes {
		out = append(out, Diagnostic{Severity: Info, Code: I301UnresolvedHole, Span: h.Span,
			Message: "typed hole is still unresolved"})
	}
	sortDiagnostics(out)
	return out
}

// Merge concatenates and re-sorts diagnostic slices, the step that
// combines per-rule-family results into one file's or workspace's final
// deterministic sequence.
func Merge(groups ...[]Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, g := range groups {
		out = append(out, g...)
	}
	sortDiagnostics(out)
	return out
}
