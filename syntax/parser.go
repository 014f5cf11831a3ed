package syntax

import (
	"bytes"
	"strings"

	"github.com/topos-lang/topos/span"
	"github.com/topos-lang/topos/scanner"
)

// frame tracks one open indentation container while the parser walks the
// scanner's INDENT/DEDENT stream.
type frame struct {
	container    int
	lastChildIdx int
}

// Parse builds a Tree from text. If prior is non-nil and text is
// byte-identical to the tree prior was built from, Parse returns prior
// unchanged — the early-cutoff half of the incremental contract. Otherwise it performs a full reparse: walking prior's unaffected
// subtrees by comparing byte ranges against the edit window is a documented
// future optimization, not required for observational equality.
func Parse(text []byte, prior *Tree) *Tree {
	if prior != nil && bytes.Equal(prior.src, text) {
		return prior
	}
	p := &parser{src: text, sc: scanner.New(text, nil)}
	return p.run()
}

type parser struct {
	src      []byte
	sc       *scanner.Scanner
	b        builder
	pushback *scanner.Token
}

// next returns the pushed-back token if one is pending, otherwise the next
// token from the scanner.
func (p *parser) next() scanner.Token {
	if p.pushback != nil {
		tok := *p.pushback
		p.pushback = nil
		return tok
	}
	return p.sc.Scan()
}

func (p *parser) run() *Tree {
	root := p.b.add(node{Kind: KindSourceFile})
	stack := []frame{{container: root, lastChildIdx: -1}}

	// appendChild adds idx as a flat sibling under the current frame's
	// container and remembers it as the frame's most recent child, so that
	// a following INDENT knows which sibling its body nests under.
	appendChild := func(idx int) {
		top := &stack[len(stack)-1]
		p.b.nodes[top.container].Children = append(p.b.nodes[top.container].Children, idx)
		top.lastChildIdx = idx
	}

	for {
		tok := p.next()
		switch tok.Kind {
		case scanner.EOF:
			goto done
		case scanner.Newline:
			continue
		case scanner.Indent:
			blockIdx := p.b.add(node{Kind: KindBlock, Span: tok.Span})
			top := &stack[len(stack)-1]
			if top.lastChildIdx >= 0 {
				p.b.nodes[top.lastChildIdx].Children = append(p.b.nodes[top.lastChildIdx].Children, blockIdx)
			} else {
				p.b.nodes[top.container].Children = append(p.b.nodes[top.container].Children, blockIdx)
			}
			stack = append(stack, frame{container: blockIdx, lastChildIdx: -1})
		case scanner.Dedent:
			if len(stack) > 1 {
				f := stack[len(stack)-1]
				p.b.nodes[f.container].Span.EndByte = tok.Span.StartByte
				p.b.nodes[f.container].Span.End = tok.Span.Start
				stack = stack[:len(stack)-1]
			}
		case scanner.Fence:
			idx := p.parseFence(tok)
			appendChild(idx)
		default:
			idx := p.parseLine(tok)
			appendChild(idx)
		}
	}
done:
	// Close any indentation left open by a truncated/malformed file rather
	// than dropping its content.
	p.b.nodes[root].Span = span.Span{StartByte: 0, EndByte: len(p.src)}
	return &Tree{src: p.src, nodes: p.b.nodes, root: root}
}

// parseLine consumes tokens from first (already read) through the next
// Newline/EOF, gathering them into one KindLine (or KindHeading1/2) node
// whose Text is the verbatim source slice. Detailed grammar (EARS clauses,
// field constraints, typed holes, references) is recovered from this text
// during ast.Lower rather than token-by-token here, the same split the
// canopy draws between tree-sitter's CST and canopy's symbol-capture pass.
func (p *parser) parseLine(first scanner.Token) int {
	start := first.Span.StartByte
	end := first.Span.EndByte
	kind := KindLine
	if first.Kind == scanner.Hash {
		kind = KindHeading1
	} else if first.Kind == scanner.HashHash {
		kind = KindHeading2
	}
	endPoint := first.Span.End
	for {
		tok := p.next()
		if tok.Kind == scanner.Newline || tok.Kind == scanner.EOF {
			break
		}
		if tok.Kind == scanner.Indent || tok.Kind == scanner.Dedent {
			// A line's content never itself opens/closes an indent level;
			// this can only happen on malformed input. End the line here and
			// let run() see this token on its next iteration.
			saved := tok
			p.pushback = &saved
			break
		}
		end = tok.Span.EndByte
		endPoint = tok.Span.End
	}
	text := strings.TrimRight(string(p.src[start:end]), " \t\r")
	span := span.Span{StartByte: start, EndByte: end, Start: first.Span.Start, End: endPoint}
	return p.b.add(node{Kind: kind, Span: span, Text: text})
}

func (p *parser) parseFence(open scanner.Token) int {
	// The language tag, if any, is the WORD (or PROSE, since the scanner
	// reads a non-keyword word as PROSE) immediately following the opening
	// fence on the same line.
	lang := ""
	startText := open.Span.EndByte
	langTok := p.next()
	if langTok.Kind == scanner.Word || langTok.Kind == scanner.Prose {
		lang = langTok.Text
		startText = langTok.Span.EndByte
	} else if langTok.Kind != scanner.Newline {
		startText = langTok.Span.StartByte
	}
	// Consume through the line end.
	for langTok.Kind != scanner.Newline && langTok.Kind != scanner.EOF {
		langTok = p.next()
	}
	contentStart := startText
	if langTok.Kind == scanner.Newline {
		contentStart = langTok.Span.EndByte
	}

	var closeTok scanner.Token
	for {
		tok := p.next()
		if tok.Kind == scanner.EOF {
			closeTok = tok
			break
		}
		if tok.Kind == scanner.Fence {
			// A closing fence must be the first token on its line; our
			// scanner only emits Fence when the line begins with "```", so
			// any Fence token here is a valid close.
			closeTok = tok
			break
		}
	}
	contentEnd := closeTok.Span.StartByte
	if contentEnd < contentStart {
		contentEnd = contentStart
	}
	text := string(p.src[contentStart:contentEnd])
	span := span.Span{StartByte: open.Span.StartByte, EndByte: closeTok.Span.EndByte, Start: open.Span.Start, End: closeTok.Span.End}
	// Consume the rest of the closing fence's line.
	for {
		tok := p.next()
		if tok.Kind == scanner.Newline || tok.Kind == scanner.EOF {
			break
		}
	}
	return p.b.add(node{Kind: KindFence, Span: span, Text: text, Lang: lang})
}
