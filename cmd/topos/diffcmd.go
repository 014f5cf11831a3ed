package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/topos-lang/topos/config"
	"github.com/topos-lang/topos/diff"
	"github.com/topos-lang/topos/engine"
)

var flagDiffMode string

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Compare two workspace snapshots",
	Long:  "Loads the workspaces at <before> and <after> and reports every structural change between them: added/removed requirements, concepts, behaviors, tasks, and holes (matched by ID or name; a rename shows as a removal plus an addition). --mode hybrid additionally runs a ProseJudge collaborator over prose-bearing changes; this build has none configured, so hybrid mode reports every prose-bearing change as inconclusive.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&flagDiffMode, "mode", "structural", "comparison mode: structural or hybrid")
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := loadSnapshot(args[0])
	if err != nil {
		return outputError("diff", err)
	}
	after, err := loadSnapshot(args[1])
	if err != nil {
		return outputError("diff", err)
	}

	mode := diff.ModeStructural
	if flagDiffMode == "hybrid" {
		mode = diff.ModeHybrid
	}
	report := diff.RunMode(cmd.Context(), before, after, mode, nil)

	if flagFormat == "text" {
		printDiffText(report.Structural)
		if mode == diff.ModeHybrid {
			printInconclusive(report.Inconclusive)
		}
		return nil
	}
	if mode == diff.ModeStructural {
		count := len(report.Structural)
		if err := encodeResult(CLIResult{Command: "diff", Results: report.Structural, TotalCount: &count}); err != nil {
			return outputError("diff", err)
		}
		return nil
	}
	count := len(report.Structural)
	if err := encodeResult(CLIResult{Command: "diff", Results: report, TotalCount: &count}); err != nil {
		return outputError("diff", err)
	}
	return nil
}

func printInconclusive(items []diff.Inconclusive) {
	for _, i := range items {
		fmt.Printf("inconclusive %s: %s\n", i.Path, i.Reason)
	}
}

func loadSnapshot(dir string) (*diff.Snapshot, error) {
	targetDir, err := resolveTargetDir([]string{dir}, 0)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(targetDir)
	if err != nil {
		return nil, err
	}
	db, err := newDatabase()
	if err != nil {
		return nil, err
	}
	if err := loadWorkspace(db, targetDir, cfg); err != nil {
		return nil, err
	}
	files, err := loadSnapshotFiles(db)
	if err != nil {
		return nil, err
	}
	return &diff.Snapshot{Files: files}, nil
}

func printDiffText(changes []diff.Change) {
	if len(changes) == 0 {
		fmt.Println("no structural changes")
		return
	}
	for _, c := range changes {
		switch {
		case c.Before != "" && c.After != "":
			fmt.Printf("%s %s: %q -> %q\n", c.Kind, c.Path, c.Before, c.After)
		case c.Field != "":
			fmt.Printf("%s %s[%d].%s\n", c.Kind, c.Path, c.Index, c.Field)
		default:
			fmt.Printf("%s %s\n", c.Kind, c.Path)
		}
	}
}
