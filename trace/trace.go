// Package trace builds the workspace-wide requirement→behavior→task→file
// traceability graph and its coverage statistics (component C8).
package trace

import (
	"sort"

	"github.com/topos-lang/topos/ast"
)

// BehaviorRef identifies one Behavior implementing a Requirement.
type BehaviorRef struct {
	Name string
	File ast.FileID
	Span ast.Span
}

// TaskRef identifies one Task referencing a Requirement.
type TaskRef struct {
	ID        ast.StableID
	Title     string
	File      ast.FileID
	FilePath  string
	TestsPath string
	Status    ast.TaskStatus
	FileSpan  ast.Span
}

// Coverage summarizes, for one Requirement, whether it has any
// implementing behavior, any referencing task, any task that names a
// source file, and any task that names a tests path.
type Coverage struct {
	HasBehavior      bool
	HasTask          bool
	HasImplementation bool // some referencing task carries a FilePath
	HasTests         bool // some referencing task carries a TestsPath
}

// RequirementEntry is one Requirement's full traceability record.
type RequirementEntry struct {
	ID        ast.StableID
	Title     string
	File      ast.FileID
	Span      ast.Span
	Behaviors []BehaviorRef
	Tasks     []TaskRef
	Coverage  Coverage
}

// CoverageTotals aggregates RequirementEntry.Coverage across the workspace.
type CoverageTotals struct {
	TotalRequirements int
	WithBehaviors     int
	WithTasks         int
	WithImplementation int
	WithTests         int
}

// OrphanBehavior is a Behavior with no Implements clause.
type OrphanBehavior struct {
	Name string
	File ast.FileID
	Span ast.Span
}

// OrphanTask is a Task with no requirement reference.
type OrphanTask struct {
	ID    ast.StableID
	File  ast.FileID
	Span  ast.Span
}

// Report is the full traceability report for a workspace, matching the
// JSON shape of the query interface's TraceabilityReport.
type Report struct {
	Requirements    []RequirementEntry
	OrphanBehaviors []OrphanBehavior
	OrphanTasks     []OrphanTask
	Coverage        CoverageTotals
}

// FileInput is one file's lowered contents plus its FileID, the unit
// Build operates over.
type FileInput struct {
	File   ast.FileID
	Source *ast.SourceFile
}

// Build walks every file's requirements, behaviors, and tasks, joining
// Implements clauses and task requirement references by stable ID to
// produce the workspace Report. Files are processed in the order given;
// callers should sort FileInput by path first for deterministic output.
func Build(files []FileInput) *Report {
	entries := map[ast.StableID]*RequirementEntry{}
	var order []ast.StableID

	for _, fi := range files {
		for _, sec := range fi.Source.Sections {
			for _, req := range sec.Requirements {
				if _, exists := entries[req.ID]; exists {
					continue // duplicate stable ID: first occurrence wins for traceability
				}
				entries[req.ID] = &RequirementEntry{
					ID: req.ID, Title: req.Title, File: fi.File, Span: req.Span,
				}
				order = append(order, req.ID)
			}
		}
	}

	var orphanBehaviors []OrphanBehavior
	for _, fi := range files {
		for _, sec := range fi.Source.Sections {
			for _, b := range sec.Behaviors {
				if len(b.Implements) == 0 {
					orphanBehaviors = append(orphanBehaviors, OrphanBehavior{Name: b.Name, File: fi.File, Span: b.Span})
					continue
				}
				for _, ref := range b.Implements {
					id := ast.StableID(ref.Name())
					if e, ok := entries[id]; ok {
						e.Behaviors = append(e.Behaviors, BehaviorRef{Name: b.Name, File: fi.File, Span: b.Span})
					}
				}
			}
		}
	}

	var orphanTasks []OrphanTask
	for _, fi := range files {
		for _, sec := range fi.Source.Sections {
			for _, t := range sec.Tasks {
				if len(t.Requirements) == 0 {
					orphanTasks = append(orphanTasks, OrphanTask{ID: t.ID, File: fi.File, Span: t.Span})
					continue
				}
				for _, ref := range t.Requirements {
					id := ast.StableID(ref.Name())
					if e, ok := entries[id]; ok {
						e.Tasks = append(e.Tasks, TaskRef{
							ID: t.ID, Title: t.Title, File: fi.File, FilePath: t.FilePath,
							TestsPath: t.TestsPath, Status: t.Status, FileSpan: t.Span,
						})
					}
				}
			}
		}
	}

	report := &Report{}
	for _, id := range order {
		e := entries[id]
		e.Coverage = computeCoverage(e)
		report.Requirements = append(report.Requirements, *e)
		report.Coverage.TotalRequirements++
		if e.Coverage.HasBehavior {
			report.Coverage.WithBehaviors++
		}
		if e.Coverage.HasTask {
			report.Coverage.WithTasks++
		}
		if e.Coverage.HasImplementation {
			report.Coverage.WithImplementation++
		}
		if e.Coverage.HasTests {
			report.Coverage.WithTests++
		}
	}
	report.OrphanBehaviors = orphanBehaviors
	report.OrphanTasks = orphanTasks

	sort.Slice(report.Requirements, func(i, j int) bool { return report.Requirements[i].ID < report.Requirements[j].ID })
	return report
}

func computeCoverage(e *RequirementEntry) Coverage {
	c := Coverage{
		HasBehavior: len(e.Behaviors) > 0,
		HasTask:     len(e.Tasks) > 0,
	}
	for _, t := range e.Tasks {
		if t.FilePath != "" {
			c.HasImplementation = true
		}
		if t.TestsPath != "" {
			c.HasTests = true
		}
	}
	return c
}
