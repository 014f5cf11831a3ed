package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var flagFormat string
var flagVerbose bool
var flagCache string

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "topos",
	Short:         "Analysis toolchain for Topos specification workspaces",
	Long:          "Topos parses, resolves, and diffs .tps/.topos specification files, surfacing diagnostics and requirement-to-task traceability.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json|yaml")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log query activity to stderr")
	rootCmd.PersistentFlags().StringVar(&flagCache, "cache", "", "path to a SQLite snapshot cache for HIGH-durability files (disabled if empty)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(diffCmd)
}

func validateFormat(format string) error {
	switch format {
	case "json", "yaml", "text":
		return nil
	default:
		return fmt.Errorf("invalid --format %q: must be text, json, or yaml", format)
	}
}

// resolveTargetDir returns the absolute path of the workspace directory to
// analyze, defaulting to the current directory.
func resolveTargetDir(args []string, index int) (string, error) {
	dir := "."
	if len(args) > index {
		dir = args[index]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// outputError writes an error in the selected format and returns it so
// RunE can propagate it to Cobra. In JSON mode the error is written to
// stdout as a CLIResult envelope; in text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	_ = encodeResult(CLIResult{Command: command, Error: err.Error()})
	return err
}
