package ast

// SourceFile is the root of a parsed .tps/.topos file.
type SourceFile struct {
	File     FileID
	Span     Span
	Spec     *SpecDecl // optional "spec <Name>" declaration
	Imports  []*Import
	Sections []*Section
	// ForeignBlocks collects every fenced code block in the file regardless
	// of which section it appeared under; polyglot extraction walks these
	// rather than re-deriving them from Sections.
	ForeignBlocks []*ForeignBlock
}

// SpecDecl is the optional leading "spec Name" declaration.
type SpecDecl struct {
	Span Span
	Name string
}

// SectionKind enumerates the closed set of top-level section kinds.
type SectionKind int

const (
	SectionUnknown SectionKind = iota
	SectionPrinciples
	SectionRequirements
	SectionDesign
	SectionConcepts
	SectionBehaviors
	SectionInvariants
	SectionAesthetics
	SectionTasks
)

func (k SectionKind) String() string {
	switch k {
	case SectionPrinciples:
		return "Principles"
	case SectionRequirements:
		return "Requirements"
	case SectionDesign:
		return "Design"
	case SectionConcepts:
		return "Concepts"
	case SectionBehaviors:
		return "Behaviors"
	case SectionInvariants:
		return "Invariants"
	case SectionAesthetics:
		return "Aesthetics"
	case SectionTasks:
		return "Tasks"
	default:
		return "Unknown"
	}
}

// Section is a typed child list under one "# Heading".
type Section struct {
	Span Span
	Kind SectionKind
	// Title is the heading text as written; for known kinds it is
	// informational only (Kind drives behavior).
	Title string

	Requirements []*Requirement
	Concepts     []*Concept
	Behaviors    []*Behavior
	Invariants   []*Invariant
	Aesthetics   []*Aesthetic
	Tasks        []*Task
	// Subsections holds "##" headings whose identifier matched neither
	// REQ-* nor TASK-*.
	Subsections []*Subsection
}

// Subsection is a "##" heading that is not a Requirement or Task.
type Subsection struct {
	Span  Span
	Title string
}

// EarsTrigger enumerates the EARS clause trigger keywords.
type EarsTrigger int

const (
	EarsUnknown EarsTrigger = iota
	EarsWhen
	EarsWhile
	EarsIf
	EarsWhere
)

func (t EarsTrigger) String() string {
	switch t {
	case EarsWhen:
		return "when"
	case EarsWhile:
		return "while"
	case EarsIf:
		return "if"
	case EarsWhere:
		return "where"
	default:
		return "unknown"
	}
}

// EarsClause is a (trigger, condition, behavior) triple.
// Behavior is free text unless the author left a typed hole, in which case
// Hole is set and BehaviorText is empty.
type EarsClause struct {
	Span         Span
	Trigger      EarsTrigger
	Condition    string
	BehaviorText string
	Hole         *TypedHole
}

// AcceptanceTriple is one given/when/then row of an acceptance block.
type AcceptanceTriple struct {
	Span  Span
	Given string
	When  string
	Then  string
}

// Requirement is a top-level requirement declaration.
type Requirement struct {
	Span       Span
	ID         StableID // matches REQ-[A-Z0-9-]+
	Title      string
	UserStory  string // optional "As a ... I want ... so that ..." text
	Ears       []*EarsClause
	Acceptance []*AcceptanceTriple
}

// FieldConstraintKind is the closed set of Field constraint kinds.
type FieldConstraintKind int

const (
	ConstraintUnique FieldConstraintKind = iota
	ConstraintOptional
	ConstraintDefault
	ConstraintAtLeastN
	ConstraintDerived
	ConstraintInvariant
	ConstraintFreeform
)

// FieldConstraint is one ordered constraint on a Concept field.
type FieldConstraint struct {
	Span Span
	Kind FieldConstraintKind
	// N is populated for ConstraintAtLeastN.
	N int
	// Text holds the constraint's prose for ConstraintDefault,
	// ConstraintDerived, ConstraintInvariant and ConstraintFreeform.
	Text string
}

// TypeExprKind is the closed sum of TypeExpr shapes.
type TypeExprKind int

const (
	TypeReference TypeExprKind = iota
	TypeList
	TypeOptional
	TypeOneOf
	TypeHoleExpr
)

// TypeExpr is a type expression: a reference, "List of T", "Optional T",
// "one of V1,...,Vn", or a hole.
type TypeExpr struct {
	Span Span
	Kind TypeExprKind

	// Reference is set when Kind == TypeReference.
	Reference *Reference
	// Elem is set when Kind is TypeList or TypeOptional.
	Elem *TypeExpr
	// Variants is set when Kind == TypeOneOf.
	Variants []string
	// Hole is set when Kind == TypeHoleExpr.
	Hole *TypedHole
}

// Field is a Concept field: name, optional type, ordered constraints.
type Field struct {
	Span        Span
	Name        string
	Private     bool
	Type        *TypeExpr // nil if untyped
	Constraints []*FieldConstraint
}

// EnumVariant is one value of a Concept's enumeration variant list.
type EnumVariant struct {
	Span Span
	Name string
}

// Concept is a domain concept declaration: name, fields, and/or variants.
type Concept struct {
	Span          Span
	Name          string
	Private       bool
	Documentation string
	Fields        []*Field
	Variants      []*EnumVariant
}

// Parameter is a Behavior parameter: name + type.
type Parameter struct {
	Span Span
	Name string
	Type *TypeExpr
}

// Returns describes a Behavior's optional returns clause.
type Returns struct {
	Span      Span
	Success   *TypeExpr
	ErrorType *TypeExpr // nil if the behavior does not declare an error type
}

// Predicate is free-form requires/ensures prose with a span.
type Predicate struct {
	Span Span
	Text string
}

// Example is one example block attached to a Behavior.
type Example struct {
	Span Span
	Text string
}

// Behavior is a named operation with parameters, requires/ensures, and EARS clauses.
type Behavior struct {
	Span          Span
	Name          string
	Private       bool
	Implements    []*Reference // syntactic only, per invariant I5
	Documentation string
	Parameters    []*Parameter
	Returns       *Returns
	Requires      []*Predicate
	Ensures       []*Predicate
	Ears          []*EarsClause
	Examples      []*Example
}

// Quantifier is an Invariant's "for-each x in T" binder.
type Quantifier struct {
	Span    Span
	Var     string
	Over    *Reference
}

// Invariant is a universally-quantified predicate over a type.
type Invariant struct {
	Span          Span
	Name          string
	Private       bool
	Documentation string
	Quantifiers   []*Quantifier
	Predicate     *Predicate
}

// AestheticMarker distinguishes soft ([~]) from permanent-soft ([~permanent]).
type AestheticMarker int

const (
	MarkerNone AestheticMarker = iota
	MarkerSoft
	MarkerSoftPermanent
)

// AestheticField is one named field of an Aesthetic block.
type AestheticField struct {
	Span   Span
	Name   string
	Marker AestheticMarker
	Text   string
}

// Aesthetic is a named block of soft, prose-bearing quality fields.
type Aesthetic struct {
	Span    Span
	Name    string
	Private bool
	Fields  []*AestheticField
}

// TaskStatus is the closed set of Task status values.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusInProgress
	StatusDone
	StatusBlocked
)

func (s TaskStatus) String() string {
	switch s {
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	case StatusBlocked:
		return "blocked"
	default:
		return "pending"
	}
}

// Evidence is a Task's optional evidence block.
type Evidence struct {
	Span       Span
	PR         string
	Commit     string
	Coverage   string
	Benchmark  string
	Review     string
}

// Task is a unit of implementation work tracked against requirements.
type Task struct {
	Span         Span
	ID           StableID // matches TASK-[A-Z0-9-]+
	Title        string
	Requirements []*Reference
	FilePath     string
	TestsPath    string
	DependsOn    []*Reference
	Status       TaskStatus
	Evidence     *Evidence
}

// HoleConstraint is one "where:" predicate attached to a TypedHole.
type HoleConstraint struct {
	Span Span
	Text string
}

// TypedHole is an unresolved placeholder expression, written "[? ...]".
type TypedHole struct {
	Span Span
	ID   HoleID
	Name string // optional user-given name

	InputType  *TypeExpr
	OutputType *TypeExpr
	ErrorType  *TypeExpr

	Constraints []*HoleConstraint
	Involving   []*Reference
}

// Reference is a backtick-delimited identifier, optionally dotted
// (namespace-qualified).
type Reference struct {
	Span Span
	// Path is the dot-split identifier, e.g. ["mod", "Name"] for `mod.Name`.
	Path []string
}

// Name returns the last path segment (the referenced identifier itself).
func (r *Reference) Name() string {
	if r == nil || len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// Qualifier returns the namespace prefix, or "" if unqualified.
func (r *Reference) Qualifier() string {
	if r == nil || len(r.Path) < 2 {
		return ""
	}
	return r.Path[0]
}

// Text reconstructs the dotted reference text.
func (r *Reference) Text() string {
	if r == nil {
		return ""
	}
	out := ""
	for i, p := range r.Path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

// ImportKind distinguishes the three import shapes the grammar allows.
type ImportKind int

const (
	ImportItems ImportKind = iota
	ImportGlob
	ImportAlias
)

// ImportItem is one renameable name in an "import from ...: `A`, `B` as `C`"
// statement.
type ImportItem struct {
	Span  Span
	Name  string
	Alias string // "" if not renamed
}

// Import is a source import: an item list, a glob, or a module alias.
type Import struct {
	Span       Span
	SourcePath string
	Kind       ImportKind
	Items      []*ImportItem // ImportItems
	ModAlias   string        // ImportAlias
}

// ForeignBlock is a fenced code block with a lowercase language tag; its
// content is retained verbatim as prose.
type ForeignBlock struct {
	Span     Span
	Language string
	Content  string
}

// ParseError is a side-channel parse diagnostic surfaced during lowering:
// an ERROR/MISSING CST node that still let the rest of the file lower
// successfully.
type ParseError struct {
	Span    Span
	Message string
}
