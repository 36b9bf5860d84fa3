package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediascribe/internal/config"
	"mediascribe/internal/tagging"
)

func newTagCommand(ctx *commandContext) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Edit front matter tags across a tree of notes",
	}
	tagCmd.AddCommand(newTagActionCommand(ctx, tagging.ActionAdd, "Add a tag to every note that lacks it"))
	tagCmd.AddCommand(newTagActionCommand(ctx, tagging.ActionRemove, "Remove a tag from every note that has it"))
	return tagCmd
}

func newTagActionCommand(ctx *commandContext, action, short string) *cobra.Command {
	var dryRun bool
	var extensions []string

	cmd := &cobra.Command{
		Use:   action + " <dir> <tag>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			root, err := resolveDir(args[:1], "")
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			exts := cfg.Tags.Extensions
			if cmd.Flags().Changed("ext") {
				exts = config.NormalizeExtensions(extensions)
			}

			summary, err := tagging.Apply(cmd.Context(), tagging.Options{
				Root:       root,
				Tag:        args[1],
				Action:     action,
				Extensions: exts,
				DryRun:     dryRun,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			printTagSummary(cmd, action, summary)
			if len(summary.Failed) > 0 {
				return fmt.Errorf("%d notes could not be updated", len(summary.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report changes without writing")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Note extensions (default from tags.extensions)")
	return cmd
}

func printTagSummary(cmd *cobra.Command, action string, summary tagging.Summary) {
	out := cmd.OutOrStdout()
	verb := "Updated"
	if summary.DryRun {
		verb = "Would update"
		for _, path := range summary.Changed {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}
	fmt.Fprintf(out, "%s %d of %d notes (%s tag %q)\n", verb, len(summary.Changed), summary.Scanned, action, summary.Tag)
}
