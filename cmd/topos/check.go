package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/topos-lang/topos/config"
	"github.com/topos-lang/topos/diagnostics"
	"github.com/topos-lang/topos/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Run every diagnostic rule over a workspace",
	Long:  "Parses every .tps/.topos file under path, resolves references, and reports diagnostics. Exits nonzero if at least one error-severity diagnostic exists.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args, 0)
	if err != nil {
		return outputError("check", err)
	}

	cfg, err := config.Load(targetDir)
	if err != nil {
		return outputError("check", err)
	}

	db, err := newDatabase()
	if err != nil {
		return outputError("check", err)
	}
	if err := loadWorkspace(db, targetDir, cfg); err != nil {
		return outputError("check", err)
	}

	ctx := context.Background()
	diags, err := db.WorkspaceDiagnostics(ctx)
	if err != nil {
		return outputError("check", fmt.Errorf("running diagnostics: %w", err))
	}

	hasError := false
	for _, d := range diags {
		if d.Severity == diagnostics.Error {
			hasError = true
			break
		}
	}

	if flagFormat == "text" {
		printDiagnosticsText(diags)
	} else {
		count := len(diags)
		if err := encodeResult(CLIResult{Command: "check", Results: diags, TotalCount: &count}); err != nil {
			return outputError("check", err)
		}
	}

	if hasError {
		errorHandled = true
		os.Exit(1)
	}
	return nil
}

func printDiagnosticsText(diags []diagnostics.Diagnostic) {
	if len(diags) == 0 {
		fmt.Println("no diagnostics")
		return
	}
	for _, d := range diags {
		fmt.Printf("%s %s %s: %s\n", d.Severity, d.Code, d.Span, d.Message)
	}
}
