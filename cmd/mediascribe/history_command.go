package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediascribe/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent transcription runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				items, err := store.Items(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No files recorded for run %s\n", runID)
					return nil
				}
				renderItems(cmd, items)
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			renderRuns(cmd, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-file outcomes for one run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func renderRuns(cmd *cobra.Command, runs []history.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := "-"
		if d := run.Duration(); d > 0 {
			elapsed = d.Round(time.Second).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Status,
			run.Engine + "/" + run.Mode,
			strconv.Itoa(run.Written),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			elapsed,
			run.SourceDir,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Status", "Engine", "Written", "Skipped", "Failed", "Time", "Source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
		shouldColorize(out),
	))
}

func renderItems(cmd *cobra.Command, items []history.Item) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, item := range items {
		detail := item.OutputPath
		if detail == "" {
			detail = item.Detail
		}
		fmt.Fprintln(out, renderStatusLine(item.Outcome, outcomeKind(item.Outcome), item.SourcePath+"  "+detail, colorize))
	}
}
