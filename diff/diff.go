// Package diff implements Topos's structural and semantic differ
// (component C10): comparing two parsed workspace snapshots and
// classifying what changed.
package diff

import (
	"sort"
	"strings"

	"github.com/topos-lang/topos/ast"
)

// ChangeKind is the closed sum of structural change classifications.
type ChangeKind string

const (
	RequirementAdded          ChangeKind = "RequirementAdded"
	RequirementRemoved        ChangeKind = "RequirementRemoved"
	RequirementRenamed        ChangeKind = "RequirementRenamed"
	RequirementTitleChanged   ChangeKind = "RequirementTitleChanged"
	RequirementEarsChanged    ChangeKind = "RequirementEarsChanged"
	RequirementAcceptanceChanged ChangeKind = "RequirementAcceptanceChanged"

	ConceptAdded      ChangeKind = "ConceptAdded"
	ConceptRemoved    ChangeKind = "ConceptRemoved"
	FieldAdded        ChangeKind = "FieldAdded"
	FieldRemoved      ChangeKind = "FieldRemoved"
	FieldTypeChanged  ChangeKind = "FieldTypeChanged"
	FieldConstraintsChanged ChangeKind = "FieldConstraintsChanged"

	BehaviorAdded    ChangeKind = "BehaviorAdded"
	BehaviorRemoved  ChangeKind = "BehaviorRemoved"
	SignatureChanged ChangeKind = "SignatureChanged"
	ImplementsChanged ChangeKind = "ImplementsChanged"
	RequiresChanged  ChangeKind = "RequiresChanged"
	EnsuresChanged   ChangeKind = "EnsuresChanged"

	TaskAdded              ChangeKind = "TaskAdded"
	TaskRemoved            ChangeKind = "TaskRemoved"
	TaskStatusChanged      ChangeKind = "TaskStatusChanged"
	TaskEvidenceChanged    ChangeKind = "TaskEvidenceChanged"
	TaskRequirementRefsChanged ChangeKind = "TaskRequirementRefsChanged"

	HoleResolved   ChangeKind = "HoleResolved"
	HoleIntroduced ChangeKind = "HoleIntroduced"
)

// Change is one reported structural difference.
type Change struct {
	Kind   ChangeKind
	Path   string // e.g. "REQ-1", "Concept:User.id", "TASK-1"
	Before string
	After  string
	Span   *ast.Span // set when the change is anchored to one side's node
	// Index disambiguates repeated changes against the same Path, e.g.
	// which EARS clause (by source order) changed within one requirement.
	Index int
	Field string // e.g. "when", "ensures" — set for sub-field changes
}

// Similarity is a Levenshtein-ratio threshold for rename matching. Run does
// not read it: nodes are matched by stable ID or name only, so a renamed
// node is reported as a removal plus an addition and RequirementRenamed is
// never emitted.
const Similarity = 0.8

// Snapshot is one side of a diff: every file's lowered AST, keyed by
// workspace-relative path for deterministic iteration.
type Snapshot struct {
	Files map[string]*ast.SourceFile
}

// Run compares A and B structurally and returns the sorted Change list.
func Run(a, b *Snapshot) []Change {
	var changes []Change
	changes = append(changes, diffRequirements(a, b)...)
	changes = append(changes, diffConcepts(a, b)...)
	changes = append(changes, diffBehaviors(a, b)...)
	changes = append(changes, diffTasks(a, b)...)
	changes = append(changes, diffHoles(a, b)...)
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Kind < changes[j].Kind
	})
	return changes
}

func allRequirements(s *Snapshot) map[ast.StableID]*ast.Requirement {
	out := map[ast.StableID]*ast.Requirement{}
	for _, sf := range s.Files {
		for _, sec := range sf.Sections {
			for _, r := range sec.Requirements {
				out[r.ID] = r
			}
		}
	}
	return out
}

func diffRequirements(a, b *Snapshot) []Change {
	var out []Change
	ra, rb := allRequirements(a), allRequirements(b)
	for id, before := range ra {
		after, ok := rb[id]
		if !ok {
			out = append(out, Change{Kind: RequirementRemoved, Path: string(id), Before: before.Title})
			continue
		}
		if before.Title != after.Title {
			out = append(out, Change{Kind: RequirementTitleChanged, Path: string(id), Before: before.Title, After: after.Title})
		}
		out = append(out, diffEars(string(id), before.Ears, after.Ears)...)
		out = append(out, diffAcceptance(string(id), before.Acceptance, after.Acceptance)...)
	}
	for id, after := range rb {
		if _, ok := ra[id]; !ok {
			out = append(out, Change{Kind: RequirementAdded, Path: string(id), After: after.Title})
		}
	}
	return out
}

func earsKey(e *ast.EarsClause) string {
	return e.Trigger.String() + ":" + e.Condition
}

func diffEars(path string, before, after []*ast.EarsClause) []Change {
	var out []Change
	n := len(before)
	if len(after) > n {
		n = len(after)
	}
	for i := 0; i < n; i++ {
		var b, a *ast.EarsClause
		if i < len(before) {
			b = before[i]
		}
		if i < len(after) {
			a = after[i]
		}
		if b == nil || a == nil {
			out = append(out, Change{Kind: RequirementEarsChanged, Path: path, Index: i, Field: "when"})
			continue
		}
		if b.Condition != a.Condition {
			out = append(out, Change{Kind: RequirementEarsChanged, Path: path, Index: i, Field: "when", Before: b.Condition, After: a.Condition})
		}
		if b.BehaviorText != a.BehaviorText {
			out = append(out, Change{Kind: RequirementEarsChanged, Path: path, Index: i, Field: "shall", Before: b.BehaviorText, After: a.BehaviorText})
		}
	}
	return out
}

func diffAcceptance(path string, before, after []*ast.AcceptanceTriple) []Change {
	if len(before) != len(after) {
		return []Change{{Kind: RequirementAcceptanceChanged, Path: path}}
	}
	for i := range before {
		if before[i].Given != after[i].Given || before[i].When != after[i].When || before[i].Then != after[i].Then {
			return []Change{{Kind: RequirementAcceptanceChanged, Path: path, Index: i}}
		}
	}
	return nil
}

func allConcepts(s *Snapshot) map[string]*ast.Concept {
	out := map[string]*ast.Concept{}
	for _, sf := range s.Files {
		for _, sec := range sf.Sections {
			for _, c := range sec.Concepts {
				out[c.Name] = c
			}
		}
	}
	return out
}

func diffConcepts(a, b *Snapshot) []Change {
	var out []Change
	ca, cb := allConcepts(a), allConcepts(b)
	for name, before := range ca {
		after, ok := cb[name]
		if !ok {
			out = append(out, Change{Kind: ConceptRemoved, Path: "Concept:" + name})
			continue
		}
		out = append(out, diffFields(name, before.Fields, after.Fields)...)
	}
	for name := range cb {
		if _, ok := ca[name]; !ok {
			out = append(out, Change{Kind: ConceptAdded, Path: "Concept:" + name})
		}
	}
	return out
}

func diffFields(concept string, before, after []*ast.Field) []Change {
	var out []Change
	ba, bb := map[string]*ast.Field{}, map[string]*ast.Field{}
	for _, f := range before {
		ba[f.Name] = f
	}
	for _, f := range after {
		bb[f.Name] = f
	}
	path := func(name string) string { return "Concept:" + concept + "." + name }
	for name, f := range ba {
		g, ok := bb[name]
		if !ok {
			out = append(out, Change{Kind: FieldRemoved, Path: path(name)})
			continue
		}
		if typeText(f.Type) != typeText(g.Type) {
			out = append(out, Change{Kind: FieldTypeChanged, Path: path(name), Before: typeText(f.Type), After: typeText(g.Type)})
		}
		if constraintsText(f.Constraints) != constraintsText(g.Constraints) {
			out = append(out, Change{Kind: FieldConstraintsChanged, Path: path(name)})
		}
	}
	for name := range bb {
		if _, ok := ba[name]; !ok {
			out = append(out, Change{Kind: FieldAdded, Path: path(name)})
		}
	}
	return out
}

func typeText(te *ast.TypeExpr) string {
	if te == nil {
		return ""
	}
	if te.Reference != nil {
		return te.Reference.Text()
	}
	return typeText(te.Elem)
}

func constraintsText(cs []*ast.FieldConstraint) string {
	var parts []string
	for _, c := range cs {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, ";")
}

func allBehaviors(s *Snapshot) map[string]*ast.Behavior {
	out := map[string]*ast.Behavior{}
	for _, sf := range s.Files {
		for _, sec := range sf.Sections {
			for _, beh := range sec.Behaviors {
				out[beh.Name] = beh
			}
		}
	}
	return out
}

func diffBehaviors(a, b *Snapshot) []Change {
	var out []Change
	ba, bb := allBehaviors(a), allBehaviors(b)
	for name, before := range ba {
		after, ok := bb[name]
		if !ok {
			out = append(out, Change{Kind: BehaviorRemoved, Path: "Behavior:" + name})
			continue
		}
		if signatureText(before) != signatureText(after) {
			out = append(out, Change{Kind: SignatureChanged, Path: "Behavior:" + name})
		}
		if refsText(before.Implements) != refsText(after.Implements) {
			out = append(out, Change{Kind: ImplementsChanged, Path: "Behavior:" + name})
		}
		if predicatesText(before.Requires) != predicatesText(after.Requires) {
			out = append(out, Change{Kind: RequiresChanged, Path: "Behavior:" + name})
		}
		if predicatesText(before.Ensures) != predicatesText(after.Ensures) {
			out = append(out, Change{Kind: EnsuresChanged, Path: "Behavior:" + name})
		}
	}
	for name := range bb {
		if _, ok := ba[name]; !ok {
			out = append(out, Change{Kind: BehaviorAdded, Path: "Behavior:" + name})
		}
	}
	return out
}

func signatureText(b *ast.Behavior) string {
	var parts []string
	for _, p := range b.Parameters {
		parts = append(parts, p.Name+":"+typeText(p.Type))
	}
	if b.Returns != nil {
		parts = append(parts, "->"+typeText(b.Returns.Success))
	}
	return strings.Join(parts, ",")
}

func refsText(rs []*ast.Reference) string {
	var parts []string
	for _, r := range rs {
		parts = append(parts, r.Text())
	}
	return strings.Join(parts, ",")
}

func predicatesText(ps []*ast.Predicate) string {
	var parts []string
	for _, p := range ps {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "|")
}

func allTasks(s *Snapshot) map[ast.StableID]*ast.Task {
	out := map[ast.StableID]*ast.Task{}
	for _, sf := range s.Files {
		for _, sec := range sf.Sections {
			for _, t := range sec.Tasks {
				out[t.ID] = t
			}
		}
	}
	return out
}

func diffTasks(a, b *Snapshot) []Change {
	var out []Change
	ta, tb := allTasks(a), allTasks(b)
	for id, before := range ta {
		after, ok := tb[id]
		if !ok {
			out = append(out, Change{Kind: TaskRemoved, Path: string(id)})
			continue
		}
		if before.Status != after.Status {
			out = append(out, Change{Kind: TaskStatusChanged, Path: string(id), Before: before.Status.String(), After: after.Status.String()})
		}
		if evidenceText(before.Evidence) != evidenceText(after.Evidence) {
			out = append(out, Change{Kind: TaskEvidenceChanged, Path: string(id)})
		}
		if refsText(before.Requirements) != refsText(after.Requirements) {
			out = append(out, Change{Kind: TaskRequirementRefsChanged, Path: string(id)})
		}
	}
	for id := range tb {
		if _, ok := ta[id]; !ok {
			out = append(out, Change{Kind: TaskAdded, Path: string(id)})
		}
	}
	return out
}

func evidenceText(e *ast.Evidence) string {
	if e == nil {
		return ""
	}
	return strings.Join([]string{e.PR, e.Commit, e.Coverage, e.Benchmark, e.Review}, "|")
}

func diffHoles(a, b *Snapshot) []Change {
	var out []Change
	countHoles := func(s *Snapshot, path string) int {
		sf, ok := s.Files[path]
		if !ok {
			return 0
		}
		return countHolesIn(sf)
	}
	for path := range a.Files {
		before, after := countHoles(a, path), countHoles(b, path)
		if after < before {
			out = append(out, Change{Kind: HoleResolved, Path: path})
		} else if after > before {
			out = append(out, Change{Kind: HoleIntroduced, Path: path})
		}
	}
	return out
}

func countHolesIn(sf *ast.SourceFile) int {
	n := 0
	for _, sec := range sf.Sections {
		for _, req := range sec.Requirements {
			for _, e := range req.Ears {
				if e.Hole != nil {
					n++
				}
			}
		}
		for _, b := range sec.Behaviors {
			for _, e := range b.Ears {
				if e.Hole != nil {
					n++
				}
			}
		}
	}
	return n
}
