package tagging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"mediascribe/internal/fileutil"
	"mediascribe/internal/frontmatter"
	"mediascribe/internal/logging"
	"mediascribe/internal/scan"
	"mediascribe/internal/services"
)

// Actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Options configures one tagging pass.
type Options struct {
	Root       string
	Tag        string
	Action     string
	Extensions []string
	DryRun     bool
	Logger     *slog.Logger
}

// Failure records a note that could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Summary reports what a pass did. In dry-run mode Changed lists the files
// that would have been rewritten.
type Summary struct {
	Tag       string
	Scanned   int
	Changed   []string
	Unchanged int
	Failed    []Failure
	DryRun    bool
}

// Apply walks opts.Root recursively and applies the tag action to every note.
// A note that cannot be read or written is logged and skipped.
func Apply(ctx context.Context, opts Options) (Summary, error) {
	tag, err := frontmatter.NormalizeTag(opts.Tag)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "tagging", "tag", fmt.Sprintf("%q", opts.Tag), err)
	}
	edit, err := editor(opts.Action)
	if err != nil {
		return Summary{}, err
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".md"}
	}
	logger := logging.NewComponentLogger(opts.Logger, "tagging")

	seq, err := scan.Walk(opts.Root, scan.Options{Extensions: exts, Recursive: true})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Tag: tag, DryRun: opts.DryRun}
	for note, walkErr := range seq {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if walkErr != nil {
			logging.WarnWithContext(logger, "note directory could not be listed", "tagging_scan_failed",
				logging.Error(walkErr),
				logging.String(logging.FieldImpact, "notes in that directory left untouched"),
			)
			continue
		}
		summary.Scanned++
		changed, err := applyOne(note.Path, tag, edit, opts.DryRun)
		if err != nil {
			summary.Failed = append(summary.Failed, Failure{Path: note.Path, Err: err})
			logging.WarnWithContext(logger, "note not updated", "tagging_failed",
				logging.String(logging.FieldFile, note.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "note left untouched"),
			)
			continue
		}
		if !changed {
			summary.Unchanged++
			continue
		}
		summary.Changed = append(summary.Changed, note.Path)
		logger.Debug("note updated",
			logging.String(logging.FieldFile, note.Path),
			logging.String("action", opts.Action),
			logging.Bool("dry_run", opts.DryRun),
		)
	}

	logger.Info("tagging finished",
		logging.String("tag", tag),
		logging.String("action", opts.Action),
		logging.Int("scanned", summary.Scanned),
		logging.Int("changed", len(summary.Changed)),
		logging.Int("failed", len(summary.Failed)),
		logging.Bool("dry_run", opts.DryRun),
	)
	return summary, nil
}

type editFunc func(content, tag string) (string, bool, error)

func editor(action string) (editFunc, error) {
	switch action {
	case ActionAdd, "":
		return frontmatter.AddTag, nil
	case ActionRemove:
		return frontmatter.RemoveTag, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "tagging", "action", fmt.Sprintf("unknown action %q", action), nil)
	}
}

func applyOne(path, tag string, edit editFunc, dryRun bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, services.Wrap(services.ErrNotFound, "tagging", "read", path, err)
	}
	updated, changed, err := edit(string(data), tag)
	if err != nil || !changed {
		return false, err
	}
	if dryRun {
		return true, nil
	}
	if err := fileutil.WriteFileAtomic(path, []byte(updated), fileutil.ModePreserving(path, 0o644)); err != nil {
		return false, services.Wrap(services.ErrExternalTool, "tagging", "write", path, err)
	}
	return true, nil
}
