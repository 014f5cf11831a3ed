package polyglot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSupportedKnownLanguages(t *testing.T) {
	require.True(t, Supported("javascript"))
	require.True(t, Supported("python"))
	require.False(t, Supported("rust"))
}

func TestExtractDeclaredSymbolNamesJavaScript(t *testing.T) {
	src := `function login(user) { return user; }
class Session {}
`
	names, ok := ExtractDeclaredSymbolNames("javascript", []byte(src))
	require.True(t, ok)
	require.Contains(t, names, "login")
	require.Contains(t, names, "Session")
}

func TestExtractDeclaredSymbolNamesPython(t *testing.T) {
	src := `def authenticate(user):
    return user

class Account:
    pass
`
	names, ok := ExtractDeclaredSymbolNames("python", []byte(src))
	require.True(t, ok)
	require.Contains(t, names, "authenticate")
	require.Contains(t, names, "Account")
}

func TestExtractDeclaredSymbolNamesUnsupportedLanguage(t *testing.T) {
	names, ok := ExtractDeclaredSymbolNames("ruby", []byte("def foo; end"))
	require.False(t, ok)
	require.Nil(t, names)
}

func TestMustSupport(t *testing.T) {
	require.NoError(t, MustSupport("python"))
	require.Error(t, MustSupport("ruby"))
}
