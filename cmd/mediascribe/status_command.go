package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediascribe/internal/deps"
	"mediascribe/internal/language"
	"mediascribe/internal/preflight"
)

type checkJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories and engine configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
			}

			if jsonOut {
				checks := make([]checkJSON, 0, len(results))
				for _, r := range results {
					checks = append(checks, checkJSON(r))
				}
				if err := writeJSON(cmd, checks); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Configuration", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, configLabel(ctx), colorize))
				fmt.Fprintln(out, renderStatusLine("Engine", statusInfo, cfg.Transcribe.Engine, colorize))
				fmt.Fprintln(out, renderStatusLine("Output mode", statusInfo, cfg.Transcribe.OutputMode, colorize))
				fmt.Fprintln(out, renderStatusLine("Language", statusInfo, language.DisplayName(cfg.Transcribe.Language), colorize))
				fmt.Fprintln(out, renderStatusLine("Categorize", statusInfo, yesNo(cfg.Transcribe.CategoryByPrefix), colorize))
				fmt.Fprintln(out, renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize))
				fmt.Fprintln(out)

				rows := make([][]string, 0, len(results))
				for _, r := range results {
					state := "ok"
					if !r.Passed {
						state = "FAIL"
					}
					rows = append(rows, []string{r.Name, state, r.Detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Check", "State", "Detail"}, rows, nil, colorize))
				for _, dep := range deps.Missing(preflight.CheckSystemDeps(cmd.Context(), cfg)) {
					fmt.Fprintln(out, renderStatusLine(dep.Name, statusError, dep.Description, colorize))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print checks as JSON")
	return cmd
}

func configLabel(ctx *commandContext) string {
	if ctx.configSeen {
		return ctx.configPath
	}
	return "defaults (no file at " + ctx.configPath + ")"
}
