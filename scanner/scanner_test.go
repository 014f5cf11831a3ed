package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	sc := New([]byte(src), nil)
	var toks []Token
	for {
		tok := sc.Scan()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanIndentDedent(t *testing.T) {
	src := "concept Foo:\n  name\n  age\nconcept Bar:\n"
	toks := scanAll(t, src)
	ks := kinds(toks)
	require.Contains(t, ks, Indent)
	require.Contains(t, ks, Dedent)
}

func TestScanNeverFailsOnDeepIndent(t *testing.T) {
	src := ""
	for i := 0; i < 200; i++ {
		src += "x:\n"
		for j := 0; j <= i; j++ {
			src += " "
		}
	}
	require.NotPanics(t, func() {
		scanAll(t, src+"y\n")
	})
}

func TestProseSkippedForKeywordLine(t *testing.T) {
	toks := scanAll(t, "requires something\n")
	require.Equal(t, Word, toks[0].Kind)
	require.Equal(t, "requires", toks[0].Text)
}

func TestProseLineScannedWhole(t *testing.T) {
	toks := scanAll(t, "This is free-form prose text.\n")
	require.Equal(t, Prose, toks[0].Kind)
	require.Equal(t, "This is free-form prose text.", toks[0].Text)
}

func TestStateRoundTrip(t *testing.T) {
	sc := New([]byte("a:\n  b\n"), nil)
	for {
		tok := sc.Scan()
		if tok.Kind == EOF {
			break
		}
	}
	data, err := sc.State().MarshalBinary()
	require.NoError(t, err)

	restored := NewState()
	require.NoError(t, restored.UnmarshalBinary(data))
	require.Equal(t, sc.State().IndentStack, restored.IndentStack)
}

func TestFenceToken(t *testing.T) {
	toks := scanAll(t, "```python\n")
	require.Equal(t, Fence, toks[0].Kind)
}
