package scanner

import (
	"strings"
	"unicode/utf8"

	"github.com/topos-lang/topos/span"
)

// Scanner tokenizes Topos source text line by line, tracking indentation
// state across the whole file. It never returns an error: unrecognized
// input degenerates to Word tokens rather than being rejected,
// since a partial parse beats no parse at all.
type Scanner struct {
	src   []byte
	pos   int
	line  int
	col   int
	state *State

	atLineStart bool
	pendingDedents int
}

// New returns a Scanner over src, starting from a fresh or restored State.
// Passing the State recovered from a prior Scan lets a caller resume
// scanning mid-file the way an incremental reparse would.
func New(src []byte, state *State) *Scanner {
	if state == nil {
		state = NewState()
	}
	return &Scanner{src: src, state: state, atLineStart: true}
}

// State returns the scanner's current indentation state, for snapshotting.
func (sc *Scanner) State() *State { return sc.state }

func (sc *Scanner) point() span.Point { return span.Point{Line: sc.line, Col: sc.col} }

func (sc *Scanner) eof() bool { return sc.pos >= len(sc.src) }

func (sc *Scanner) peekByte() byte {
	if sc.eof() {
		return 0
	}
	return sc.src[sc.pos]
}

// advance consumes one rune, maintaining line/column and tab-expansion per
// : a tab advances to the next multiple of 4 columns.
func (sc *Scanner) advance() rune {
	r, size := utf8.DecodeRune(sc.src[sc.pos:])
	if r == utf8.RuneError && size <= 1 {
		r = rune(sc.src[sc.pos])
		size = 1
	}
	sc.pos += size
	if r == '\n' {
		sc.line++
		sc.col = 0
	} else if r == '\t' {
		sc.col = (sc.col/4 + 1) * 4
	} else {
		sc.col++
	}
	return r
}

// Scan returns the next token. Callers should loop until Kind == EOF.
func (sc *Scanner) Scan() Token {
	if sc.pendingDedents > 0 {
		sc.pendingDedents--
		return Token{Kind: Dedent, Span: sc.zeroSpan()}
	}
	if sc.atLineStart {
		if tok, ok := sc.scanLineStart(); ok {
			return tok
		}
	}
	return sc.scanToken()
}

func (sc *Scanner) zeroSpan() span.Span {
	p := sc.point()
	return span.Span{StartByte: sc.pos, EndByte: sc.pos, Start: p, End: p}
}

// scanLineStart measures leading whitespace and emits INDENT/DEDENT/NEWLINE
// tokens as needed before resuming ordinary scanning. Blank lines are
// skipped (they carry no indentation signal, per ).
func (sc *Scanner) scanLineStart() (Token, bool) {
	for {
		start := sc.pos
		startPoint := sc.point()
		col := 0
		for !sc.eof() {
			b := sc.peekByte()
			if b == ' ' {
				sc.advance()
				col++
				continue
			}
			if b == '\t' {
				sc.advance()
				col = (col/4 + 1) * 4
				continue
			}
			break
		}
		if sc.eof() {
			sc.atLineStart = false
			return sc.closeAllIndents(startPoint), true
		}
		if sc.peekByte() == '\n' {
			// Blank line: consume it and keep looking for the first real line.
			sc.advance()
			continue
		}
		sc.atLineStart = false
		_ = start
		return sc.reconcileIndent(col, startPoint)
	}
}

func (sc *Scanner) top() int { return sc.state.Top() }

func (sc *Scanner) reconcileIndent(col int, at span.Point) (Token, bool) {
	top := sc.top()
	switch {
	case col > top:
		if sc.state.Push(col) {
			span := span.Span{StartByte: sc.pos, EndByte: sc.pos, Start: at, End: sc.point()}
			return Token{Kind: Indent, Span: span}, true
		}
		// Indent stack exhausted: treat as same level rather than fail.
		return Token{}, false
	case col < top:
		n := 0
		for sc.top() > col {
			sc.state.Pop()
			n++
		}
		if n > 0 {
			sc.pendingDedents = n - 1
			span := span.Span{StartByte: sc.pos, EndByte: sc.pos, Start: at, End: sc.point()}
			return Token{Kind: Dedent, Span: span}, true
		}
		return Token{}, false
	default:
		return Token{}, false
	}
}

// closeAllIndents emits the first of a run of DEDENT tokens that close out
// every still-open indentation level at end of file, with any remaining
// ones queued in pendingDedents; if nothing is open it returns EOF directly.
func (sc *Scanner) closeAllIndents(at span.Point) Token {
	depth := len(sc.state.IndentStack)
	if depth == 0 {
		return Token{Kind: EOF, Span: sc.zeroSpan()}
	}
	sc.state.IndentStack = nil
	sc.pendingDedents = depth - 1
	span := span.Span{StartByte: sc.pos, EndByte: sc.pos, Start: at, End: sc.point()}
	return Token{Kind: Dedent, Span: span}
}

// structuralMarkers are the leading bytes that keep a line out of PROSE mode
// even if its first word isn't a reserved keyword.
func startsStructural(b byte) bool {
	switch b {
	case '#', '`', '[', ']', '?', '~', ':', ',':
		return true
	}
	return false
}

func (sc *Scanner) scanToken() Token {
	if sc.eof() {
		return Token{Kind: EOF, Span: sc.zeroSpan()}
	}
	startByte := sc.pos
	startPoint := sc.point()

	b := sc.peekByte()

	if b == '\n' {
		sc.advance()
		sc.atLineStart = true
		return Token{Kind: Newline, Text: "\n", Span: sc.span(startByte, startPoint)}
	}

	if b == ' ' || b == '\t' {
		for !sc.eof() && (sc.peekByte() == ' ' || sc.peekByte() == '\t') {
			sc.advance()
		}
		return sc.scanToken()
	}

	if strings.HasPrefix(string(sc.src[sc.pos:]), "```") {
		sc.advance()
		sc.advance()
		sc.advance()
		return Token{Kind: Fence, Text: "```", Span: sc.span(startByte, startPoint)}
	}

	if !startsStructural(b) {
		if tok, ok := sc.tryProse(startByte, startPoint); ok {
			return tok
		}
	}

	switch b {
	case '#':
		sc.advance()
		if sc.peekByte() == '#' {
			sc.advance()
			return Token{Kind: HashHash, Text: "##", Span: sc.span(startByte, startPoint)}
		}
		return Token{Kind: Hash, Text: "#", Span: sc.span(startByte, startPoint)}
	case '`':
		sc.advance()
		return Token{Kind: Backtick, Text: "`", Span: sc.span(startByte, startPoint)}
	case '[':
		sc.advance()
		return Token{Kind: LBracket, Text: "[", Span: sc.span(startByte, startPoint)}
	case ']':
		sc.advance()
		return Token{Kind: RBracket, Text: "]", Span: sc.span(startByte, startPoint)}
	case '?':
		sc.advance()
		return Token{Kind: Question, Text: "?", Span: sc.span(startByte, startPoint)}
	case '~':
		sc.advance()
		return Token{Kind: Tilde, Text: "~", Span: sc.span(startByte, startPoint)}
	case ':':
		sc.advance()
		return Token{Kind: Colon, Text: ":", Span: sc.span(startByte, startPoint)}
	case ',':
		sc.advance()
		return Token{Kind: Comma, Text: ",", Span: sc.span(startByte, startPoint)}
	}

	// Fallback: scan a bare word run.
	for !sc.eof() && !isBreak(sc.peekByte()) {
		sc.advance()
	}
	return Token{Kind: Word, Text: string(sc.src[startByte:sc.pos]), Span: sc.span(startByte, startPoint)}
}

func isBreak(b byte) bool {
	switch b {
	case '\n', ' ', '\t', '#', '`', '[', ']', '?', '~', ':', ',':
		return true
	}
	return false
}

// tryProse implements PROSE rule: a line is scanned as a
// single PROSE token, running to end of line, when the grammar's
// valid_symbols mark PROSE as acceptable at this point AND the line's first
// word is not a reserved keyword. The scanner itself cannot see
// valid_symbols (that is the parser's job when it calls the external
// scanner); here we expose the word-boundary half of the rule and let the
// parser veto PROSE by re-scanning structurally when it isn't expecting one.
func (sc *Scanner) tryProse(startByte int, startPoint span.Point) (Token, bool) {
	firstWordEnd := sc.pos
	for firstWordEnd < len(sc.src) && !isBreak(sc.src[firstWordEnd]) {
		firstWordEnd++
	}
	firstWord := string(sc.src[sc.pos:firstWordEnd])
	if Keywords[firstWord] {
		return Token{}, false
	}
	for !sc.eof() && sc.peekByte() != '\n' {
		sc.advance()
	}
	text := strings.TrimRight(string(sc.src[startByte:sc.pos]), " \t")
	return Token{Kind: Prose, Text: text, Span: sc.span(startByte, startPoint)}, true
}

func (sc *Scanner) span(startByte int, startPoint span.Point) span.Span {
	return span.Span{StartByte: startByte, EndByte: sc.pos, Start: startPoint, End: sc.point()}
}
