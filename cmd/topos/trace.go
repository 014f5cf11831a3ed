package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topos-lang/topos/config"
	"github.com/topos-lang/topos/engine"
	"github.com/topos-lang/topos/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace [path]",
	Short: "Report requirement-to-behavior-to-task traceability",
	Long:  "Builds the workspace-wide traceability graph: which requirements have implementing behaviors and tasks, and which behaviors/tasks are orphaned.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTrace,
}

func runTrace(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args, 0)
	if err != nil {
		return outputError("trace", err)
	}

	cfg, err := config.Load(targetDir)
	if err != nil {
		return outputError("trace", err)
	}

	db, err := newDatabase()
	if err != nil {
		return outputError("trace", err)
	}
	if err := loadWorkspace(db, targetDir, cfg); err != nil {
		return outputError("trace", err)
	}

	report, err := db.Traceability(context.Background())
	if err != nil {
		return outputError("trace", fmt.Errorf("building traceability report: %w", err))
	}

	if flagFormat == "text" {
		printTraceabilityText(report)
		return nil
	}
	if err := encodeResult(CLIResult{Command: "trace", Results: report}); err != nil {
		return outputError("trace", err)
	}
	return nil
}

func printTraceabilityText(report *trace.Report) {
	for _, req := range report.Requirements {
		fmt.Printf("%s %s\n", req.ID, req.Title)
		for _, b := range req.Behaviors {
			fmt.Printf("  behavior: %s\n", b.Name)
		}
		for _, t := range req.Tasks {
			fmt.Printf("  task: %s %s\n", t.ID, t.Status)
		}
		if !req.Coverage.HasBehavior {
			fmt.Println("  warning: no implementing behavior")
		}
		if !req.Coverage.HasTask {
			fmt.Println("  warning: no implementing task")
		}
	}
	for _, ob := range report.OrphanBehaviors {
		fmt.Printf("orphan behavior: %s\n", ob.Name)
	}
	for _, ot := range report.OrphanTasks {
		fmt.Printf("orphan task: %s\n", ot.ID)
	}
	fmt.Printf("coverage: %d/%d have behaviors, %d/%d have tasks, %d/%d implemented, %d/%d tested\n",
		report.Coverage.WithBehaviors, report.Coverage.TotalRequirements,
		report.Coverage.WithTasks, report.Coverage.TotalRequirements,
		report.Coverage.WithImplementation, report.Coverage.TotalRequirements,
		report.Coverage.WithTests, report.Coverage.TotalRequirements,
	)
}
