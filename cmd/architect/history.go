package main

import (
	"architect/internal/data/history"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newHistoryCmd(stdout io.Writer) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded runs, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := ""
			if len(args) > 0 {
				root, err := canonicalRoot(args[0])
				if err != nil {
					return err
				}
				project = root
			}

			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), project, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(stdout, "No runs recorded.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("STARTED", "PROJECT", "FILES", "VIOLATIONS", "PARSE FAIL", "CYCLES", "WARNINGS", "RESULT")
			for _, run := range runs {
				result := "PASS"
				if !run.Passed {
					result = "FAIL"
				}
				t.Row(
					run.StartedAt.Local().Format(time.DateTime),
					run.Project,
					strconv.Itoa(run.Files),
					strconv.Itoa(run.Violations),
					strconv.Itoa(run.ParseFailures),
					strconv.Itoa(run.Cycles),
					strconv.Itoa(run.Warnings),
					result,
				)
			}
			fmt.Fprintln(stdout, t.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "architect-history.db", "SQLite history database")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}
