package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBasicStructure(t *testing.T) {
	src := []byte("# Requirements\n\n## REQ-LOGIN\n  when `user` submits credentials the system shall authenticate\n")
	tree := Parse(src, nil)
	require.NotNil(t, tree)
	require.Equal(t, KindSourceFile, tree.Kind(tree.Root()))
	require.False(t, tree.HasErrors())

	var sawHeading1, sawHeading2, sawBlock bool
	tree.Walk(tree.Root(), func(i int) bool {
		switch tree.Kind(i) {
		case KindHeading1:
			sawHeading1 = true
		case KindHeading2:
			sawHeading2 = true
		case KindBlock:
			sawBlock = true
		}
		return true
	})
	require.True(t, sawHeading1)
	require.True(t, sawHeading2)
	require.True(t, sawBlock)
}

func TestParseEarlyCutoffReturnsSameTree(t *testing.T) {
	src := []byte("# Principles\n  simplicity first\n")
	first := Parse(src, nil)
	second := Parse(src, first)
	require.Same(t, first, second)
}

func TestParseFencedBlock(t *testing.T) {
	src := []byte("```python\ndef f():\n    pass\n```\n")
	tree := Parse(src, nil)
	require.False(t, tree.HasErrors())
	var found bool
	tree.Walk(tree.Root(), func(i int) bool {
		if tree.Kind(i) == KindFence {
			found = true
			require.Equal(t, "python", tree.Lang(i))
		}
		return true
	})
	require.True(t, found)
}

func TestParseNeverPanicsOnMalformedInput(t *testing.T) {
	inputs := []string{
		"```\n",
		"#\n##\n",
		"  \t  x\n",
		"```js\nno closing fence",
	}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			Parse([]byte(in), nil)
		})
	}
}
