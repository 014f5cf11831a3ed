// Package scanner implements Topos's external scanner: a hand-rolled,
// indentation-sensitive tokenizer that runs ahead of the grammar proper and
// emits synthetic INDENT/DEDENT/NEWLINE/PROSE tokens the way a tree-sitter
// external scanner would, without depending on the tree-sitter runtime
// itself.
package scanner

import "github.com/topos-lang/topos/span"

// Kind is the closed set of token kinds the scanner produces.
type Kind int

const (
	EOF Kind = iota
	Newline
	Indent
	Dedent
	Prose // a run of text on an otherwise-unstructured line
	Hash       // "#"
	HashHash   // "##"
	Backtick   // "`"
	LBracket   // "["
	RBracket   // "]"
	Question   // "?"
	Tilde      // "~"
	Colon      // ":"
	Comma      // ","
	Fence      // "```"
	Word       // a bare identifier/keyword run
	Punctuation
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Newline:
		return "NEWLINE"
	case Indent:
		return "INDENT"
	case Dedent:
		return "DEDENT"
	case Prose:
		return "PROSE"
	case Hash:
		return "#"
	case HashHash:
		return "##"
	case Backtick:
		return "`"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Question:
		return "?"
	case Tilde:
		return "~"
	case Colon:
		return ":"
	case Comma:
		return ","
	case Fence:
		return "```"
	case Word:
		return "WORD"
	default:
		return "PUNCT"
	}
}

// Token is one scanner output: a kind, its text, and its span.
type Token struct {
	Kind Kind
	Text string
	Span span.Span
}

// Keywords is the reserved-word set that disqualifies a line from being
// scanned as PROSE.
// Mirrors the grammar's structured-clause vocabulary.
var Keywords = map[string]bool{
	"spec": true, "import": true, "from": true, "as": true,
	"concept": true, "behavior": true, "invariant": true, "aesthetic": true,
	"requires": true, "ensures": true, "returns": true, "example": true,
	"when": true, "while": true, "if": true, "where": true,
	"for-each": true, "in": true,
	"status": true, "depends-on": true, "file": true, "tests": true,
	"evidence": true, "pr": true, "commit": true, "coverage": true,
	"benchmark": true, "review": true,
	"private": true, "unique": true, "optional": true, "default": true,
	"at-least": true, "derived": true,
	"one": true, "of": true, "List": true, "Optional": true,
}
