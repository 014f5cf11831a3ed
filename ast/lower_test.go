package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/topos-lang/topos/syntax"
)

func parseAndLower(t *testing.T, src string) (*SourceFile, []ParseError) {
	t.Helper()
	tree := syntax.Parse([]byte(src), nil)
	return Lower(tree, FileID(1))
}

func TestLowerRequirementWithEarsAndAcceptance(t *testing.T) {
	src := `# Requirements

## REQ-LOGIN user authentication
  As a user I want to log in so that I can access my account
  when ` + "`user`" + ` submits valid credentials the system shall grant access
  acceptance:
    given valid credentials, when submit is pressed, then session is created
`
	sf, errs := parseAndLower(t, src)
	require.Empty(t, errs)
	require.Len(t, sf.Sections, 1)
	sec := sf.Sections[0]
	require.Equal(t, SectionRequirements, sec.Kind)
	require.Len(t, sec.Requirements, 1)
	req := sec.Requirements[0]
	require.Equal(t, StableID("REQ-LOGIN"), req.ID)
	require.NotEmpty(t, req.UserStory)
	require.Len(t, req.Ears, 1)
	require.Equal(t, EarsWhen, req.Ears[0].Trigger)
	require.Len(t, req.Acceptance, 1)
	require.Equal(t, "session is created", req.Acceptance[0].Then)
}

func TestLowerConceptFieldsAndConstraints(t *testing.T) {
	src := `# Concepts

concept User:
  name: ` + "`Text`" + `; unique
  email: Optional ` + "`Text`" + `
  role: one of Admin, Member
`
	sf, _ := parseAndLower(t, src)
	require.Len(t, sf.Sections, 1)
	require.Len(t, sf.Sections[0].Concepts, 1)
	c := sf.Sections[0].Concepts[0]
	require.Equal(t, "User", c.Name)
	require.Len(t, c.Fields, 3)
	require.Equal(t, "name", c.Fields[0].Name)
	require.Len(t, c.Fields[0].Constraints, 1)
	require.Equal(t, ConstraintUnique, c.Fields[0].Constraints[0].Kind)
	require.Equal(t, TypeOptional, c.Fields[1].Type.Kind)
}

func TestLowerBehaviorWithTypedHole(t *testing.T) {
	src := `# Behaviors

behavior authenticate(user: ` + "`User`" + `):
  returns ` + "`Session`" + ` or error ` + "`AuthError`" + `
  ensures [?out: ` + "`Bool`" + ` where: involves ` + "`User`" + `]
`
	sf, _ := parseAndLower(t, src)
	b := sf.Sections[0].Behaviors[0]
	require.Equal(t, "authenticate", b.Name)
	require.Len(t, b.Parameters, 1)
	require.NotNil(t, b.Returns)
	require.NotNil(t, b.Returns.ErrorType)
}

func TestLowerTaskFields(t *testing.T) {
	src := `# Tasks

## TASK-1 implement login
  status: in-progress
  file: auth/login.go
`
	sf, _ := parseAndLower(t, src)
	task := sf.Sections[0].Tasks[0]
	require.Equal(t, StableID("TASK-1"), task.ID)
	require.Equal(t, StatusInProgress, task.Status)
	require.Equal(t, "auth/login.go", task.FilePath)
}

func TestLowerNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"# \n",
		"concept :\n",
		"[?broken\n",
		"behavior f(:\n",
	}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			parseAndLower(t, in)
		})
	}
}
