package diff

import (
	"context"
	"errors"
)

// Mode selects how Topos compares two workspace snapshots, per spec.md
// §6.3's `diff(A, B, mode ∈ {structural, hybrid})`.
type Mode string

const (
	ModeStructural Mode = "structural"
	ModeHybrid     Mode = "hybrid"
)

// Severity is the closed set of drift severities a ProseJudge may report.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SemanticJudgement is one ProseJudge verdict comparing a pair of
// before/after prose texts for the same construct.
type SemanticJudgement struct {
	AlignmentScore float64  `json:"alignment_score"`
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	Confidence     float64  `json:"confidence"`
}

// ProseJudge is the pluggable external collaborator spec.md §6.3 reserves
// for hybrid-mode semantic comparison of prose-bearing constructs
// (requirement clauses, invariant predicates, requires/ensures). Topos
// ships no implementation of its own — evaluating the semantics of free
// text is explicitly out of this module's scope (spec.md §1 Non-goals);
// a judge is a caller-supplied collaborator, never the core.
type ProseJudge interface {
	Compare(ctx context.Context, before, after, context string) (SemanticJudgement, error)
}

// errNotJudged is the error every NullProseJudge comparison returns.
var errNotJudged = errors.New("diff: no ProseJudge configured")

// NullProseJudge is the zero-effort ProseJudge: every comparison reports
// inconclusive rather than guessing. RunMode(..., ModeHybrid, nil) uses it,
// so a hybrid run without a collaborator still fills Structural and lists
// every prose-bearing change under Inconclusive instead of panicking.
type NullProseJudge struct{}

// Compare always declines to judge.
func (NullProseJudge) Compare(_ context.Context, _, _, _ string) (SemanticJudgement, error) {
	return SemanticJudgement{}, errNotJudged
}

// SemanticEntry pairs one prose-bearing change's path with its judgement.
type SemanticEntry struct {
	Path           string   `json:"path"`
	AlignmentScore float64  `json:"alignment_score"`
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	Confidence     float64  `json:"confidence"`
}

// Inconclusive records a prose-bearing change that RunMode could not obtain
// a semantic judgement for (no judge configured, or the judge errored).
type Inconclusive struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// DriftReport is the full output of a diff run: spec.md §6.4's
// `{structural, semantic, inconclusive}` shape. Structural is always a pure
// function of (a, b); Semantic and Inconclusive are populated only in
// ModeHybrid and are explicitly non-deterministic per spec.md §4.10.
type DriftReport struct {
	Structural   []Change        `json:"structural"`
	Semantic     []SemanticEntry `json:"semantic"`
	Inconclusive []Inconclusive  `json:"inconclusive"`
}

// proseBearingKinds are the structural change kinds RunMode considers for
// semantic follow-up: ones whose Before/After carry free text rather than
// a structural label.
var proseBearingKinds = map[ChangeKind]bool{
	RequirementTitleChanged: true,
	RequirementEarsChanged:  true,
	RequiresChanged:         true,
	EnsuresChanged:          true,
}

// RunMode compares a and b structurally (always) and, in ModeHybrid, also
// delegates every prose-bearing change with both a before and an after text
// to judge, merging the two outputs into one DriftReport. judge defaults to
// NullProseJudge when nil.
func RunMode(ctx context.Context, a, b *Snapshot, mode Mode, judge ProseJudge) DriftReport {
	changes := Run(a, b)
	report := DriftReport{Structural: changes}
	if mode != ModeHybrid {
		return report
	}
	if judge == nil {
		judge = NullProseJudge{}
	}
	for _, c := range changes {
		if !proseBearingKinds[c.Kind] {
			continue
		}
		if c.Before == "" && c.After == "" {
			continue
		}
		judgement, err := judge.Compare(ctx, c.Before, c.After, string(c.Kind)+" "+c.Path)
		if err != nil {
			report.Inconclusive = append(report.Inconclusive, Inconclusive{Path: c.Path, Reason: err.Error()})
			continue
		}
		report.Semantic = append(report.Semantic, SemanticEntry{
			Path:           c.Path,
			AlignmentScore: judgement.AlignmentScore,
			Category:       judgement.Category,
			Severity:       judgement.Severity,
			Confidence:     judgement.Confidence,
		})
	}
	return report
}
