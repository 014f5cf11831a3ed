package holes

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/resolve"
	"github.com/topos-lang/topos/syntax"
)

func parseAndLower(t *testing.T, src string) *ast.SourceFile {
	t.Helper()
	tree := syntax.Parse([]byte(src), nil)
	sf, errs := ast.Lower(tree, ast.FileID(1))
	require.Empty(t, errs)
	return sf
}

func TestLocateFindsHoleInBehaviorEnsures(t *testing.T) {
	src := `# Behaviors

behavior authenticate(user: ` + "`User`" + `):
  returns ` + "`Session`" + ` or error ` + "`AuthError`" + `
  ensures [?out: ` + "`Bool`" + ` where: involves ` + "`User`" + `]
`
	sf := parseAndLower(t, src)
	ctx, ok := Locate(sf, ast.HoleID(0))
	require.True(t, ok)
	require.NotNil(t, ctx.Behavior)
	require.Equal(t, "authenticate", ctx.Behavior.Name)
	require.Len(t, ctx.Parameters, 1)
	require.Len(t, ctx.SemanticConstraints, 1)
}

func TestLocateMissingHoleReturnsFalse(t *testing.T) {
	src := `# Behaviors

behavior noop():
  returns ` + "`Bool`" + `
`
	sf := parseAndLower(t, src)
	_, ok := Locate(sf, ast.HoleID(5))
	require.False(t, ok)
}

func boolType() *ast.TypeExpr {
	return &ast.TypeExpr{Kind: ast.TypeReference, Reference: &ast.Reference{Path: []string{"Bool"}}}
}

func textType() *ast.TypeExpr {
	return &ast.TypeExpr{Kind: ast.TypeReference, Reference: &ast.Reference{Path: []string{"Text"}}}
}

func TestCheckCompatibleAcceptsMatchingReference(t *testing.T) {
	ctx := &Context{TypeConstraints: []Constraint{{Output: boolType()}}}
	res := CheckCompatible(ctx, boolType())
	require.True(t, res.Compatible)
	require.Empty(t, res.Explanations)
}

func TestCheckCompatibleRejectsMismatchedReference(t *testing.T) {
	ctx := &Context{TypeConstraints: []Constraint{{Output: boolType()}}}
	res := CheckCompatible(ctx, textType())
	require.False(t, res.Compatible)
	require.Len(t, res.Explanations, 1)
}

func TestCheckCompatibleOptionalCovariance(t *testing.T) {
	optBool := &ast.TypeExpr{Kind: ast.TypeOptional, Elem: boolType()}
	ctx := &Context{TypeConstraints: []Constraint{{Input: optBool}}}
	res := CheckCompatible(ctx, optBool)
	require.True(t, res.Compatible)

	optText := &ast.TypeExpr{Kind: ast.TypeOptional, Elem: textType()}
	res = CheckCompatible(ctx, optText)
	require.False(t, res.Compatible)
}

func TestCheckCompatibleHoleExprAlwaysCompatible(t *testing.T) {
	ctx := &Context{TypeConstraints: []Constraint{{Output: boolType()}}}
	hole := &ast.TypeExpr{Kind: ast.TypeHoleExpr}
	res := CheckCompatible(ctx, hole)
	require.True(t, res.Compatible)
}

func TestResolveSemanticsBestEffort(t *testing.T) {
	src := `# Behaviors

behavior authenticate(user: ` + "`User`" + `):
  returns ` + "`Session`" + ` or error ` + "`AuthError`" + `
  ensures [?out: ` + "`Bool`" + ` where: involves ` + "`User`" + `]
`
	sf := parseAndLower(t, src)
	ctx, ok := Locate(sf, ast.HoleID(0))
	require.True(t, ok)

	ws := resolve.NewWorkspace()
	ResolveSemantics(ctx, ws, ast.FileID(1))
	require.Len(t, ctx.SemanticConstraints, 1)
	for _, r := range ctx.SemanticConstraints[0].Resolved {
		require.Equal(t, resolve.Unresolved, r.Reason)
	}
}
