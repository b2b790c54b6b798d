// # cmd/architect/main.go
package main

import (
	"architect/internal/shared/version"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	verbose       bool
	policy        string
	checkExported bool
	noProgress    bool
	watch         bool
	historyDB     string
	metricsFile   string
	graphOut      string
	workers       int
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	exitCode := 0
	root := newRootCmd(stdout, stderr, &exitCode)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("architect failed", "error", err)
		fmt.Fprintf(stderr, "✖ %v\n", err)
		return 1
	}
	return exitCode
}

func newRootCmd(stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	opts := &options{}

	check := func(cmd *cobra.Command, args []string) error {
		code, err := runCheck(cmd.Context(), args, opts, stdout, stderr)
		*exitCode = code
		return err
	}

	root := &cobra.Command{
		Use:   "architect [path]",
		Short: "Architecture linter for TypeScript and JavaScript projects",
		Long: `architect checks a project against its architecture rules: forbidden
imports between layers, maximum method length, and circular dependencies
between files. The rules are read from architect.json (or .toml/.yaml) in
the project root.`,
		Version:       version.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(stderr, opts.verbose)
		},
		RunE: check,
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&opts.policy, "policy", "", "Per-file check policy: first_only or exhaustive (overrides the config)")
	flags.BoolVar(&opts.checkExported, "check-exported", false, "Also apply the method-length rule to exported classes")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	flags.BoolVar(&opts.watch, "watch", false, "Re-run the analysis when source files change")
	flags.StringVar(&opts.historyDB, "history", "", "Record each run in this SQLite database")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each run")
	flags.StringVar(&opts.graphOut, "graph-out", "", "Export the dependency graph after each run (.dot, .gv, .mmd, .mermaid or .tsv)")
	flags.IntVar(&opts.workers, "workers", 0, "Number of files checked in parallel (default: number of CPUs)")

	root.AddCommand(
		&cobra.Command{
			Use:   "check [path]",
			Short: "Run the architecture checks (same as the root command)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  check,
		},
		newSuggestCmd(stdout, stderr),
		newHistoryCmd(stdout),
	)
	return root
}

func setupLogging(out io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}
