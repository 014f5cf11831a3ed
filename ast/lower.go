package ast

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/topos-lang/topos/syntax"
)

var (
	backtickRe  = regexp.MustCompile("`([^`]+)`")
	holeRe      = regexp.MustCompile(`\[\?([^\]]*)\]`)
	reqIDRe     = regexp.MustCompile(`^REQ-[A-Z0-9-]+`)
	taskIDRe    = regexp.MustCompile(`^TASK-[A-Z0-9-]+`)
	atLeastRe   = regexp.MustCompile(`^at-least\s+(\d+)\b`)
)

// lowering carries the per-file state threaded through the CST→AST walk:
// the next hole ordinal and the accumulated side-channel errors.
type lowering struct {
	tree   *syntax.Tree
	file   FileID
	errors []ParseError
	nextHole HoleID
}

// Lower converts a parsed Tree into a SourceFile. Lowering is total: it
// never fails outright, instead recording a ParseError and skipping the
// offending construct, so a single malformed line can
// never take down analysis of the rest of the file.
func Lower(tree *syntax.Tree, file FileID) (*SourceFile, []ParseError) {
	lw := &lowering{tree: tree, file: file}
	sf := &SourceFile{File: file, Span: tree.Span(tree.Root())}

	var curSection *Section
	flushSection := func() {
		if curSection != nil {
			sf.Sections = append(sf.Sections, curSection)
			curSection = nil
		}
	}

	for _, idx := range tree.Children(tree.Root()) {
		switch tree.Kind(idx) {
		case syntax.KindHeading1:
			flushSection()
			title := strings.TrimSpace(strings.TrimPrefix(tree.Text(idx), "#"))
			curSection = &Section{Span: tree.Span(idx), Kind: classifySection(title), Title: title}
			lw.lowerSectionBody(curSection, idx)
		case syntax.KindLine:
			text := strings.TrimSpace(tree.Text(idx))
			switch {
			case strings.HasPrefix(text, "spec "):
				sf.Spec = &SpecDecl{Span: tree.Span(idx), Name: strings.TrimSpace(strings.TrimPrefix(text, "spec "))}
			case strings.HasPrefix(text, "import "):
				if imp := lw.lowerImport(text, tree.Span(idx)); imp != nil {
					sf.Imports = append(sf.Imports, imp)
				}
			case text == "":
				// blank/structural-only line, nothing to lower
			default:
				if curSection != nil {
					lw.lowerTopLevelLine(curSection, idx)
				}
			}
		case syntax.KindHeading2:
			if curSection != nil {
				lw.lowerTopLevelLine(curSection, idx)
			}
		case syntax.KindFence:
			fb := &ForeignBlock{Span: tree.Span(idx), Language: tree.Lang(idx), Content: tree.Text(idx)}
			sf.ForeignBlocks = append(sf.ForeignBlocks, fb)
		case syntax.KindError, syntax.KindMissing:
			lw.errors = append(lw.errors, ParseError{Span: tree.Span(idx), Message: tree.Message(idx)})
		}
	}
	flushSection()
	return sf, lw.errors
}

func classifySection(title string) SectionKind {
	switch strings.ToLower(strings.TrimSpace(title)) {
	case "principles":
		return SectionPrinciples
	case "requirements":
		return SectionRequirements
	case "design":
		return SectionDesign
	case "concepts":
		return SectionConcepts
	case "behaviors", "behaviours":
		return SectionBehaviors
	case "invariants":
		return SectionInvariants
	case "aesthetics":
		return SectionAesthetics
	case "tasks":
		return SectionTasks
	default:
		return SectionUnknown
	}
}

// lowerSectionBody walks a Heading1's own nested Block (if the author
// indented section content directly under the "#" line) in addition to the
// flat top-level lines the caller feeds via lowerTopLevelLine; most specs
// use the flat form, but indentation is accepted identically.
func (lw *lowering) lowerSectionBody(sec *Section, headingIdx int) {
	for _, child := range lw.tree.Children(headingIdx) {
		if lw.tree.Kind(child) != syntax.KindBlock {
			continue
		}
		for _, lineIdx := range lw.tree.Children(child) {
			switch lw.tree.Kind(lineIdx) {
			case syntax.KindHeading2, syntax.KindLine:
				lw.lowerTopLevelLine(sec, lineIdx)
			}
		}
	}
}

// lowerTopLevelLine dispatches a single top-level construct line (a "##"
// heading for Requirement/Task/Subsection, or a "concept"/"behavior"/
// "invariant"/"aesthetic" declaration line) into the right Section slot.
func (lw *lowering) lowerTopLevelLine(sec *Section, idx int) {
	text := strings.TrimSpace(lw.tree.Text(idx))
	if lw.tree.Kind(idx) == syntax.KindHeading2 {
		head := strings.TrimSpace(strings.TrimPrefix(text, "##"))
		switch {
		case reqIDRe.MatchString(head):
			sec.Requirements = append(sec.Requirements, lw.lowerRequirement(head, idx))
		case taskIDRe.MatchString(head):
			sec.Tasks = append(sec.Tasks, lw.lowerTask(head, idx))
		default:
			sec.Subsections = append(sec.Subsections, &Subsection{Span: lw.tree.Span(idx), Title: head})
		}
		return
	}

	switch {
	case strings.HasPrefix(text, "concept "):
		sec.Concepts = append(sec.Concepts, lw.lowerConcept(text, idx))
	case strings.HasPrefix(text, "behavior "):
		sec.Behaviors = append(sec.Behaviors, lw.lowerBehavior(text, idx))
	case strings.HasPrefix(text, "invariant "):
		sec.Invariants = append(sec.Invariants, lw.lowerInvariant(text, idx))
	case strings.HasPrefix(text, "aesthetic "):
		sec.Aesthetics = append(sec.Aesthetics, lw.lowerAesthetic(text, idx))
	}
}

// bodyLines returns the node indices directly inside idx's nested Block, if
// it has one, else nil.
func (lw *lowering) bodyLines(idx int) []int {
	for _, child := range lw.tree.Children(idx) {
		if lw.tree.Kind(child) == syntax.KindBlock {
			return lw.tree.Children(child)
		}
	}
	return nil
}

func (lw *lowering) text(idx int) string {
	return strings.TrimSpace(lw.tree.Text(idx))
}

func (lw *lowering) span(idx int) Span { return lw.tree.Span(idx) }

func refs(text string) []*Reference {
	var out []*Reference
	for _, m := range backtickRe.FindAllString(text, -1) {
		out = append(out, parseReference(m))
	}
	return out
}

func parseReference(backtickLiteral string) *Reference {
	inner := strings.Trim(backtickLiteral, "`")
	return &Reference{Path: strings.Split(inner, ".")}
}

// extractHole pulls the first "[? ...]" occurrence out of text, returning
// the cleaned text and a TypedHole (nil if none present). Only one hole per
// clause is supported; additional occurrences stay in the cleaned text as
// written, get no TypedHole of their own, and no diagnostic reports them.
func (lw *lowering) extractHole(text string, span Span) (string, *TypedHole) {
	loc := holeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, nil
	}
	inner := text[loc[2]:loc[3]]
	hole := lw.lowerHoleBody(inner, span)
	cleaned := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return cleaned, hole
}

func (lw *lowering) lowerHoleBody(inner string, span Span) *TypedHole {
	h := &TypedHole{Span: span, ID: lw.nextHole}
	lw.nextHole++
	parts := strings.Split(inner, "where:")
	head := strings.TrimSpace(parts[0])
	if head != "" {
		fields := strings.Fields(head)
		if len(fields) > 0 && !strings.Contains(fields[0], ":") {
			h.Name = fields[0]
			head = strings.TrimSpace(strings.TrimPrefix(head, fields[0]))
		}
		if t := strings.TrimPrefix(head, "in:"); t != head {
			h.InputType = parseTypeExprText(strings.TrimSpace(t))
		} else if t := strings.TrimPrefix(head, "out:"); t != head {
			h.OutputType = parseTypeExprText(strings.TrimSpace(t))
		} else if head != "" {
			h.OutputType = parseTypeExprText(head)
		}
	}
	if len(parts) > 1 {
		for _, c := range strings.Split(parts[1], ";") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			h.Constraints = append(h.Constraints, &HoleConstraint{Span: span, Text: c})
			h.Involving = append(h.Involving, refs(c)...)
		}
	}
	return h
}

func parseTypeExprText(s string) *TypeExpr {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[?") {
		return &TypeExpr{Kind: TypeHoleExpr}
	}
	if rest, ok := cut(s, "List of "); ok {
		return &TypeExpr{Kind: TypeList, Elem: parseTypeExprText(rest)}
	}
	if rest, ok := cut(s, "Optional "); ok {
		return &TypeExpr{Kind: TypeOptional, Elem: parseTypeExprText(rest)}
	}
	if rest, ok := cut(s, "one of "); ok {
		variants := strings.Split(rest, ",")
		for i := range variants {
			variants[i] = strings.TrimSpace(variants[i])
		}
		return &TypeExpr{Kind: TypeOneOf, Variants: variants}
	}
	if refs := backtickRe.FindAllString(s, 1); len(refs) == 1 {
		return &TypeExpr{Kind: TypeReference, Reference: parseReference(refs[0])}
	}
	return &TypeExpr{Kind: TypeReference, Reference: &Reference{Path: []string{s}}}
}

func cut(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(s, prefix)), true
	}
	return "", false
}

// --- Requirement ---

var userStoryRe = regexp.MustCompile(`(?i)^as a .+ i want .+ so that .+`)
var earsRe = regexp.MustCompile(`(?i)^(when|while|if|where)\s+(.+?)\s+(?:the system\s+)?shall\s+(.+)$`)

func (lw *lowering) lowerRequirement(head string, idx int) *Requirement {
	rest := strings.TrimSpace(reqIDRe.ReplaceAllString(head, ""))
	id := reqIDRe.FindString(head)
	req := &Requirement{Span: lw.span(idx), ID: StableID(id), Title: strings.TrimSpace(rest)}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		switch {
		case userStoryRe.MatchString(line):
			req.UserStory = line
		case strings.HasPrefix(strings.ToLower(line), "acceptance"):
			for _, row := range lw.bodyLines(child) {
				req.Acceptance = append(req.Acceptance, lw.lowerAcceptanceTriple(row))
			}
		default:
			if m := earsRe.FindStringSubmatch(line); m != nil {
				req.Ears = append(req.Ears, lw.lowerEarsMatch(m, lw.span(child)))
			}
		}
	}
	return req
}

func (lw *lowering) lowerEarsMatch(m []string, span Span) *EarsClause {
	clause := &EarsClause{Span: span, Condition: strings.TrimSpace(m[2])}
	switch strings.ToLower(m[1]) {
	case "when":
		clause.Trigger = EarsWhen
	case "while":
		clause.Trigger = EarsWhile
	case "if":
		clause.Trigger = EarsIf
	case "where":
		clause.Trigger = EarsWhere
	}
	behaviorText, hole := lw.extractHole(m[3], span)
	clause.BehaviorText = behaviorText
	clause.Hole = hole
	return clause
}

var gwtRe = regexp.MustCompile(`(?i)^given\s+(.+?)\s*,?\s*when\s+(.+?)\s*,?\s*then\s+(.+)$`)

func (lw *lowering) lowerAcceptanceTriple(idx int) *AcceptanceTriple {
	line := lw.text(idx)
	t := &AcceptanceTriple{Span: lw.span(idx)}
	if m := gwtRe.FindStringSubmatch(line); m != nil {
		t.Given, t.When, t.Then = m[1], m[2], m[3]
	} else {
		t.Then = line
	}
	return t
}

// --- Concept ---

func (lw *lowering) lowerConcept(text string, idx int) *Concept {
	rest := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "concept")), ":")
	private := false
	if strings.HasPrefix(strings.TrimSpace(rest), "private ") {
		private = true
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "private"))
	}
	c := &Concept{Span: lw.span(idx), Name: strings.TrimSpace(rest), Private: private}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(line[1:])
		}
		if line == "" {
			continue
		}
		if vs := strings.Split(line, ","); looksLikeEnumList(line) {
			for _, v := range vs {
				v = strings.TrimSpace(v)
				if v != "" {
					c.Variants = append(c.Variants, &EnumVariant{Span: lw.span(child), Name: v})
				}
			}
			continue
		}
		c.Fields = append(c.Fields, lw.lowerField(line, lw.span(child)))
	}
	return c
}

func looksLikeEnumList(line string) bool {
	if !strings.Contains(line, ",") {
		return false
	}
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.ContainsAny(tok, ":") {
			return false
		}
		for _, r := range tok {
			if !(r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
				return false
			}
		}
	}
	return true
}

func (lw *lowering) lowerField(line string, span Span) *Field {
	f := &Field{Span: span}
	parts := strings.SplitN(line, ":", 2)
	namePart := strings.TrimSpace(parts[0])
	if strings.HasPrefix(namePart, "private ") {
		f.Private = true
		namePart = strings.TrimSpace(strings.TrimPrefix(namePart, "private"))
	}
	f.Name = namePart
	if len(parts) < 2 {
		return f
	}
	rest := strings.TrimSpace(parts[1])
	clauses := strings.Split(rest, ";")
	for i, c := range clauses {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if i == 0 {
			f.Type = parseTypeExprText(c)
			continue
		}
		f.Constraints = append(f.Constraints, lw.lowerFieldConstraint(c, span))
	}
	return f
}

func (lw *lowering) lowerFieldConstraint(c string, span Span) *FieldConstraint {
	lc := strings.ToLower(c)
	switch {
	case lc == "unique":
		return &FieldConstraint{Span: span, Kind: ConstraintUnique}
	case lc == "optional":
		return &FieldConstraint{Span: span, Kind: ConstraintOptional}
	case strings.HasPrefix(lc, "default"):
		return &FieldConstraint{Span: span, Kind: ConstraintDefault, Text: strings.TrimSpace(c[len("default"):])}
	case atLeastRe.MatchString(lc):
		m := atLeastRe.FindStringSubmatch(lc)
		n, _ := strconv.Atoi(m[1])
		return &FieldConstraint{Span: span, Kind: ConstraintAtLeastN, N: n}
	case strings.HasPrefix(lc, "derived"):
		return &FieldConstraint{Span: span, Kind: ConstraintDerived, Text: strings.TrimSpace(c[len("derived"):])}
	case strings.HasPrefix(lc, "invariant"):
		return &FieldConstraint{Span: span, Kind: ConstraintInvariant, Text: strings.TrimSpace(c[len("invariant"):])}
	default:
		return &FieldConstraint{Span: span, Kind: ConstraintFreeform, Text: c}
	}
}

// --- Behavior ---

func (lw *lowering) lowerBehavior(text string, idx int) *Behavior {
	rest := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "behavior")), ":")
	private := false
	if strings.HasPrefix(strings.TrimSpace(rest), "private ") {
		private = true
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "private"))
	}
	var implements []*Reference
	if i := strings.Index(rest, "implements"); i >= 0 {
		implements = refs(rest[i:])
		rest = strings.TrimSpace(rest[:i])
	}
	name, params := splitNameAndParens(rest)
	b := &Behavior{Span: lw.span(idx), Name: name, Private: private, Implements: implements}
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		nt := strings.SplitN(p, ":", 2)
		param := &Parameter{Span: lw.span(idx), Name: strings.TrimSpace(nt[0])}
		if len(nt) == 2 {
			param.Type = parseTypeExprText(strings.TrimSpace(nt[1]))
		}
		b.Parameters = append(b.Parameters, param)
	}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "returns"):
			b.Returns = lw.lowerReturns(line, lw.span(child))
		case strings.HasPrefix(lower, "requires"):
			cleaned, hole := lw.extractHole(strings.TrimSpace(line[len("requires"):]), lw.span(child))
			p := &Predicate{Span: lw.span(child), Text: cleaned}
			b.Requires = append(b.Requires, p)
			_ = hole
		case strings.HasPrefix(lower, "ensures"):
			cleaned, _ := lw.extractHole(strings.TrimSpace(line[len("ensures"):]), lw.span(child))
			b.Ensures = append(b.Ensures, &Predicate{Span: lw.span(child), Text: cleaned})
		case strings.HasPrefix(lower, "example"):
			var texts []string
			for _, ex := range lw.bodyLines(child) {
				texts = append(texts, lw.text(ex))
			}
			b.Examples = append(b.Examples, &Example{Span: lw.span(child), Text: strings.Join(texts, "\n")})
		default:
			if m := earsRe.FindStringSubmatch(line); m != nil {
				b.Ears = append(b.Ears, lw.lowerEarsMatch(m, lw.span(child)))
			} else if line != "" {
				b.Documentation = strings.TrimSpace(b.Documentation + "\n" + line)
			}
		}
	}
	return b
}

func splitNameAndParens(s string) (string, []string) {
	open := strings.Index(s, "(")
	if open < 0 {
		return strings.TrimSpace(s), nil
	}
	name := strings.TrimSpace(s[:open])
	closeParen := strings.LastIndex(s, ")")
	if closeParen < open {
		return name, nil
	}
	inner := s[open+1 : closeParen]
	if strings.TrimSpace(inner) == "" {
		return name, nil
	}
	return name, strings.Split(inner, ",")
}

func (lw *lowering) lowerReturns(line string, span Span) *Returns {
	rest := strings.TrimSpace(line[len("returns"):])
	r := &Returns{Span: span}
	if i := strings.Index(strings.ToLower(rest), " or error "); i >= 0 {
		r.Success = parseTypeExprText(strings.TrimSpace(rest[:i]))
		r.ErrorType = parseTypeExprText(strings.TrimSpace(rest[i+len(" or error "):]))
		return r
	}
	r.Success = parseTypeExprText(rest)
	return r
}

// --- Invariant ---

var forEachRe = regexp.MustCompile(`(?i)^for-each\s+(\S+)\s+in\s+(.+)$`)

func (lw *lowering) lowerInvariant(text string, idx int) *Invariant {
	rest := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "invariant")), ":")
	private := false
	if strings.HasPrefix(strings.TrimSpace(rest), "private ") {
		private = true
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "private"))
	}
	inv := &Invariant{Span: lw.span(idx), Name: strings.TrimSpace(rest), Private: private}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		if m := forEachRe.FindStringSubmatch(line); m != nil {
			inv.Quantifiers = append(inv.Quantifiers, &Quantifier{
				Span: lw.span(child), Var: m[1], Over: firstRef(m[2]),
			})
			continue
		}
		if line == "" {
			continue
		}
		cleaned, _ := lw.extractHole(line, lw.span(child))
		if inv.Predicate == nil {
			inv.Predicate = &Predicate{Span: lw.span(child), Text: cleaned}
		} else {
			inv.Predicate.Text += "\n" + cleaned
		}
	}
	return inv
}

func firstRef(s string) *Reference {
	if m := backtickRe.FindString(s); m != "" {
		return parseReference(m)
	}
	return &Reference{Path: []string{strings.TrimSpace(s)}}
}

// --- Aesthetic ---

func (lw *lowering) lowerAesthetic(text string, idx int) *Aesthetic {
	rest := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "aesthetic")), ":")
	private := false
	if strings.HasPrefix(strings.TrimSpace(rest), "private ") {
		private = true
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "private"))
	}
	a := &Aesthetic{Span: lw.span(idx), Name: strings.TrimSpace(rest), Private: private}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		marker := MarkerNone
		if strings.HasPrefix(name, "[~permanent]") {
			marker = MarkerSoftPermanent
			name = strings.TrimSpace(strings.TrimPrefix(name, "[~permanent]"))
		} else if strings.HasPrefix(name, "[~]") {
			marker = MarkerSoft
			name = strings.TrimSpace(strings.TrimPrefix(name, "[~]"))
		}
		a.Fields = append(a.Fields, &AestheticField{
			Span: lw.span(child), Name: name, Marker: marker, Text: strings.TrimSpace(parts[1]),
		})
	}
	return a
}

// --- Task ---

var statusRe = regexp.MustCompile(`(?i)^status:\s*(.+)$`)
var dependsRe = regexp.MustCompile(`(?i)^depends-on:\s*(.+)$`)
var fileRe = regexp.MustCompile(`(?i)^file:\s*(.+)$`)
var testsRe = regexp.MustCompile(`(?i)^tests:\s*(.+)$`)

func (lw *lowering) lowerTask(head string, idx int) *Task {
	rest := strings.TrimSpace(taskIDRe.ReplaceAllString(head, ""))
	id := taskIDRe.FindString(head)
	t := &Task{Span: lw.span(idx), ID: StableID(id), Title: strings.TrimSpace(rest), Status: StatusPending}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		switch {
		case strings.HasPrefix(strings.ToLower(line), "requirements:"):
			t.Requirements = refs(line)
		case statusRe.MatchString(line):
			t.Status = parseTaskStatus(statusRe.FindStringSubmatch(line)[1])
		case dependsRe.MatchString(line):
			t.DependsOn = refs(dependsRe.FindStringSubmatch(line)[1])
		case fileRe.MatchString(line):
			t.FilePath = strings.TrimSpace(fileRe.FindStringSubmatch(line)[1])
		case testsRe.MatchString(line):
			t.TestsPath = strings.TrimSpace(testsRe.FindStringSubmatch(line)[1])
		case strings.HasPrefix(strings.ToLower(line), "evidence"):
			t.Evidence = lw.lowerEvidence(child)
		}
	}
	return t
}

func parseTaskStatus(s string) TaskStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in-progress", "in progress":
		return StatusInProgress
	case "done", "complete", "completed":
		return StatusDone
	case "blocked":
		return StatusBlocked
	default:
		return StatusPending
	}
}

func (lw *lowering) lowerEvidence(idx int) *Evidence {
	ev := &Evidence{Span: lw.span(idx)}
	for _, child := range lw.bodyLines(idx) {
		line := lw.text(child)
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		val := strings.TrimSpace(parts[1])
		switch strings.ToLower(strings.TrimSpace(parts[0])) {
		case "pr":
			ev.PR = val
		case "commit":
			ev.Commit = val
		case "coverage":
			ev.Coverage = val
		case "benchmark":
			ev.Benchmark = val
		case "review":
			ev.Review = val
		}
	}
	return ev
}

// --- Import ---

func (lw *lowering) lowerImport(text string, span Span) *Import {
	rest := strings.TrimSpace(strings.TrimPrefix(text, "import"))
	if from, ok := cut(rest, "from "); ok {
		path, items := splitImportPath(from)
		imp := &Import{Span: span, SourcePath: path}
		if strings.TrimSpace(items) == "*" {
			imp.Kind = ImportGlob
			return imp
		}
		imp.Kind = ImportItems
		for _, item := range strings.Split(items, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			name, alias := item, ""
			if i := strings.Index(strings.ToLower(item), " as "); i >= 0 {
				name = strings.TrimSpace(item[:i])
				alias = strings.TrimSpace(item[i+4:])
			}
			imp.Items = append(imp.Items, &ImportItem{
				Span: span, Name: strings.Trim(name, "`"), Alias: strings.Trim(alias, "`"),
			})
		}
		return imp
	}
	if i := strings.Index(strings.ToLower(rest), " as "); i >= 0 {
		return &Import{
			Span: span, Kind: ImportAlias,
			SourcePath: strings.TrimSpace(rest[:i]),
			ModAlias:   strings.TrimSpace(rest[i+4:]),
		}
	}
	return &Import{Span: span, Kind: ImportAlias, SourcePath: rest}
}

func splitImportPath(s string) (path string, items string) {
	if i := strings.Index(s, ":"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s), "*"
}
