// Package holes implements typed-hole context and compatibility analysis
// (component C7): for a given hole, what's in scope and what type it could
// be filled with.
package holes

import (
	"fmt"
	"strings"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/resolve"
	"github.com/topos-lang/topos/symbols"
)

// Constraint is one type-position constraint on a hole's fill, derived
// either from its own signature or from the syntactic position it appears
// in (e.g. a hole in a field's type annotation contributes
// InputType=OutputType=field type).
type Constraint struct {
	Input  *ast.TypeExpr
	Output *ast.TypeExpr
}

// Context is everything the analyzer can say about a hole without knowing
// its fill: where it sits, what it could reference, and what it must
// satisfy.
type Context struct {
	Hole *ast.TypedHole

	// Behavior is the enclosing Behavior, nil if the hole sits outside any
	// behavior body (e.g. directly in a field type).
	Behavior *ast.Behavior
	// Concept is the enclosing Concept, nil if the hole isn't inside one.
	Concept *ast.Concept

	// Parameters are the enclosing behavior's parameters, available as
	// symbols the hole's fill may reference.
	Parameters []*symbols.Parameter
	// Fields are the enclosing concept's fields.
	Fields []*symbols.Field
	// InScope is a slot for the concept symbols visible from the hole's
	// file. Neither Locate nor ResolveSemantics fills it, so it is always
	// empty; the file's local and imported concepts are not listed here.
	InScope []*symbols.Symbol

	// TypeConstraints are the signature- and position-derived constraints
	// a compatible fill must satisfy.
	TypeConstraints []Constraint

	// SemanticConstraints are the hole's own "where:" predicates, each
	// with the references it mentions resolved against the workspace
	// (best-effort: an unresolved reference is left with Result.Reason ==
	// resolve.Unresolved rather than causing the whole analysis to fail).
	SemanticConstraints []SemanticConstraint
}

// SemanticConstraint pairs a where: predicate with its resolved references.
type SemanticConstraint struct {
	Predicate *ast.HoleConstraint
	Resolved  []resolve.Result
}

// position describes where, syntactically, a hole occurs, for deriving
// position-based type constraints beyond its own signature.
type position int

const (
	posNone position = iota
	posFieldType
	posParamType
	posReturnsSuccess
	posReturnsError
	posEarsBehavior
)

// Locate finds hole's enclosing Behavior/Concept within sf, and works out
// its syntactic position. Returns ok=false if no hole with that ID exists
// in sf.
func Locate(sf *ast.SourceFile, id ast.HoleID) (ctx *Context, ok bool) {
	ctx = &Context{}
	var pos position
	var fieldType *ast.TypeExpr

	for _, sec := range sf.Sections {
		for _, c := range sec.Concepts {
			for _, f := range c.Fields {
				if f.Type != nil && holeInType(f.Type, id) {
					ctx.Concept = c
					pos = posFieldType
					fieldType = f.Type
					ctx.Hole = findHoleInType(f.Type, id)
					goto found
				}
			}
		}
		for _, b := range sec.Behaviors {
			for _, p := range b.Parameters {
				if p.Type != nil && holeInType(p.Type, id) {
					ctx.Behavior = b
					pos = posParamType
					fieldType = p.Type
					ctx.Hole = findHoleInType(p.Type, id)
					goto found
				}
			}
			if b.Returns != nil {
				if holeInType(b.Returns.Success, id) {
					ctx.Behavior = b
					pos = posReturnsSuccess
					fieldType = b.Returns.Success
					ctx.Hole = findHoleInType(b.Returns.Success, id)
					goto found
				}
				if holeInType(b.Returns.ErrorType, id) {
					ctx.Behavior = b
					pos = posReturnsError
					fieldType = b.Returns.ErrorType
					ctx.Hole = findHoleInType(b.Returns.ErrorType, id)
					goto found
				}
			}
			for _, e := range b.Ears {
				if e.Hole != nil && e.Hole.ID == id {
					ctx.Behavior = b
					pos = posEarsBehavior
					ctx.Hole = e.Hole
					goto found
				}
			}
		}
	}
found:
	if ctx.Hole == nil {
		return nil, false
	}

	switch pos {
	case posFieldType, posParamType:
		ctx.TypeConstraints = append(ctx.TypeConstraints, Constraint{Input: fieldType, Output: fieldType})
	case posReturnsSuccess:
		ctx.TypeConstraints = append(ctx.TypeConstraints, Constraint{Output: fieldType})
	case posReturnsError:
		ctx.TypeConstraints = append(ctx.TypeConstraints, Constraint{Output: fieldType})
	}
	if ctx.Hole.InputType != nil {
		ctx.TypeConstraints = append(ctx.TypeConstraints, Constraint{Input: ctx.Hole.InputType})
	}
	if ctx.Hole.OutputType != nil {
		ctx.TypeConstraints = append(ctx.TypeConstraints, Constraint{Output: ctx.Hole.OutputType})
	}
	if ctx.Hole.ErrorType != nil {
		ctx.TypeConstraints = append(ctx.TypeConstraints, Constraint{Output: ctx.Hole.ErrorType})
	}

	if ctx.Behavior != nil {
		for _, p := range ctx.Behavior.Parameters {
			ctx.Parameters = append(ctx.Parameters, &symbols.Parameter{Name: p.Name, Type: p.Type, Span: p.Span})
		}
	}
	if ctx.Concept != nil {
		for _, f := range ctx.Concept.Fields {
			ctx.Fields = append(ctx.Fields, &symbols.Field{Name: f.Name, Private: f.Private, Type: f.Type, Constraints: f.Constraints, Span: f.Span})
		}
	}
	for _, c := range ctx.Hole.Constraints {
		ctx.SemanticConstraints = append(ctx.SemanticConstraints, SemanticConstraint{Predicate: c})
	}
	return ctx, true
}

func holeInType(te *ast.TypeExpr, id ast.HoleID) bool {
	return findHoleInType(te, id) != nil
}

func findHoleInType(te *ast.TypeExpr, id ast.HoleID) *ast.TypedHole {
	if te == nil {
		return nil
	}
	if te.Kind == ast.TypeHoleExpr && te.Hole != nil {
		if te.Hole.ID == id {
			return te.Hole
		}
		return nil
	}
	if te.Elem != nil {
		return findHoleInType(te.Elem, id)
	}
	return nil
}

// ResolveSemantics fills in ctx.SemanticConstraints[i].Resolved by
// resolving every `involving:` reference against ws as seen from file.
func ResolveSemantics(ctx *Context, ws *resolve.Workspace, file ast.FileID) {
	contextual := contextualBindings(ctx)
	for i, sc := range ctx.SemanticConstraints {
		var results []resolve.Result
		for _, ref := range findRefsInConstraint(ctx.Hole, sc.Predicate) {
			results = append(results, ws.Resolve(file, ref, contextual))
		}
		ctx.SemanticConstraints[i].Resolved = results
	}
}

func contextualBindings(ctx *Context) map[string]*symbols.Symbol {
	out := map[string]*symbols.Symbol{}
	for _, p := range ctx.Parameters {
		out[p.Name] = &symbols.Symbol{Name: p.Name, Kind: symbols.KindBehavior}
	}
	out["result"] = &symbols.Symbol{Name: "result"}
	return out
}

func findRefsInConstraint(hole *ast.TypedHole, pred *ast.HoleConstraint) []*ast.Reference {
	var out []*ast.Reference
	for _, inv := range hole.Involving {
		if strings.Contains(pred.Text, inv.Text()) {
			out = append(out, inv)
		}
	}
	return out
}

// CompatibilityResult is the outcome of checking one proposed fill type
// against a Context's constraints.
type CompatibilityResult struct {
	Compatible   bool
	Explanations []string // populated only when Compatible is false
}

// CheckCompatible reports whether proposed satisfies every declared
// constraint in ctx: for each InputType constraint, proposed <: expected;
// for each OutputType constraint, expected <: proposed.
func CheckCompatible(ctx *Context, proposed *ast.TypeExpr) CompatibilityResult {
	var explanations []string
	for _, c := range ctx.TypeConstraints {
		if c.Input != nil {
			if !subtype(proposed, c.Input) {
				explanations = append(explanations, fmt.Sprintf(
					"proposed type %s is not a subtype of required input type %s", typeText(proposed), typeText(c.Input)))
			}
		}
		if c.Output != nil {
			if !subtype(c.Output, proposed) {
				explanations = append(explanations, fmt.Sprintf(
					"required output type %s is not a subtype of proposed type %s", typeText(c.Output), typeText(proposed)))
			}
		}
	}
	return CompatibilityResult{Compatible: len(explanations) == 0, Explanations: explanations}
}

// subtype implements the nominal-by-name subtyping relation: identity for
// reference types, Optional/List covariance by recursing on the element
// type, true whenever either side is a hole, and false across other
// different TypeExpr kinds.
func subtype(sub, super *ast.TypeExpr) bool {
	if sub == nil || super == nil {
		return sub == super
	}
	if sub.Kind == ast.TypeHoleExpr || super.Kind == ast.TypeHoleExpr {
		return true // an unfilled hole is compatible with anything pending resolution
	}
	if sub.Kind != super.Kind {
		return false
	}
	switch sub.Kind {
	case ast.TypeReference:
		return sub.Reference.Name() == super.Reference.Name()
	case ast.TypeOptional, ast.TypeList:
		return subtype(sub.Elem, super.Elem)
	case ast.TypeOneOf:
		return sameVariants(sub.Variants, super.Variants)
	case ast.TypeHoleExpr:
		return true // an unfilled hole is compatible with anything pending resolution
	default:
		return false
	}
}

func sameVariants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]bool{}
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}

func typeText(te *ast.TypeExpr) string {
	if te == nil {
		return "?"
	}
	switch te.Kind {
	case ast.TypeReference:
		return te.Reference.Text()
	case ast.TypeList:
		return "List of " + typeText(te.Elem)
	case ast.TypeOptional:
		return "Optional " + typeText(te.Elem)
	case ast.TypeOneOf:
		return "one of " + strings.Join(te.Variants, ",")
	default:
		return "[?]"
	}
}
