package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediascribe/internal/batch"
	"mediascribe/internal/combine"
)

func newCombineCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var recursive bool
	var output string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "combine [dir]",
		Short: "Concatenate transcripts into one file",
		Long: `Combine collects .txt or .srt transcripts, orders them by the number at the
end of each file name and writes <output>.txt or <output>.srt in the
directory. Subtitle cues are renumbered across files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			root, err := resolveDir(args, cfg.Paths.SourceDir)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}

			opts := combine.Options{
				Root:       root,
				Kind:       batch.OptionsFromConfig(cfg).CombineKind(),
				Recursive:  cfg.Combine.Recursive,
				OutputName: cfg.Combine.OutputName,
				Logger:     logger,
			}
			if cmd.Flags().Changed("kind") {
				opts.Kind = strings.TrimSpace(kind)
			}
			if cmd.Flags().Changed("recursive") {
				opts.Recursive = recursive
			}
			if cmd.Flags().Changed("output") {
				opts.OutputName = strings.TrimSpace(output)
			}

			result, err := combine.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Combined %d files into %s\n", len(result.Included), result.Output)
			for _, path := range result.Skipped {
				fmt.Fprintf(out, "Skipped unreadable %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Transcript kind to combine: txt or srt (default follows transcribe.output_mode)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include subdirectories and the categorized tree")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file name without extension")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}
