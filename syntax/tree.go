package syntax

import "github.com/topos-lang/topos/span"

// node is one arena slot. Children are stored as indices into the owning
// Tree's arena rather than pointers, the pure-Go replacement for the
// opaque cgo sitter.Node handles — it keeps DFS iteration
// allocation-free.
type node struct {
	Kind     Kind
	Span     span.Span
	Text     string // verbatim text for KindLine/KindFence leaves
	Lang     string // fence language tag, KindFence only
	Children []int
	Message  string // KindError/KindMissing diagnostic text
}

// Tree is an immutable CST produced by Parse. The zero value is not usable;
// construct via Parse.
type Tree struct {
	src   []byte
	nodes []node
	root  int
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() []byte { return t.src }

// Root returns the root node's index (always KindSourceFile).
func (t *Tree) Root() int { return t.root }

// Kind returns node i's kind.
func (t *Tree) Kind(i int) Kind { return t.nodes[i].Kind }

// Span returns node i's span.
func (t *Tree) Span(i int) span.Span { return t.nodes[i].Span }

// Text returns node i's verbatim text, if any.
func (t *Tree) Text(i int) string { return t.nodes[i].Text }

// Lang returns node i's fence language tag (KindFence only).
func (t *Tree) Lang(i int) string { return t.nodes[i].Lang }

// Message returns node i's diagnostic message (KindError/KindMissing only).
func (t *Tree) Message(i int) string { return t.nodes[i].Message }

// Children returns node i's child indices in source order.
func (t *Tree) Children(i int) []int { return t.nodes[i].Children }

// NodeCount returns the number of nodes in the arena.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// HasErrors reports whether the tree contains any ERROR or MISSING node.
func (t *Tree) HasErrors() bool {
	for _, n := range t.nodes {
		if n.Kind == KindError || n.Kind == KindMissing {
			return true
		}
	}
	return false
}

// Walk performs a pre-order depth-first traversal starting at i, calling fn
// for every visited node. Walk stops descending into a subtree when fn
// returns false for its root.
func (t *Tree) Walk(i int, fn func(idx int) bool) {
	if !fn(i) {
		return
	}
	for _, c := range t.nodes[i].Children {
		t.Walk(c, fn)
	}
}

type builder struct {
	nodes []node
}

func (b *builder) add(n node) int {
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}
