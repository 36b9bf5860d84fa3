package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mediascribe/internal/batch"
	"mediascribe/internal/config"
	"mediascribe/internal/history"
	"mediascribe/internal/language"
	"mediascribe/internal/logging"
	"mediascribe/internal/media/convert"
	"mediascribe/internal/transcribe"
	"mediascribe/internal/watch"
)

type transcribeFlags struct {
	extensions []string
	recursive  bool
	mode       string
	categorize bool
	chunkMS    int
	headroomDB float64
	noNorm     bool
	engine     string
	language   string
	format     string
	combine    bool
	watch      bool
	json       bool
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var flags transcribeFlags

	cmd := &cobra.Command{
		Use:   "transcribe [dir]",
		Short: "Transcribe every matching media file in a directory",
		Long: `Transcribe converts each matching audio or video file with ffmpeg, runs the
configured speech-to-text engine and writes one .txt or .srt per file.
Files that fail or contain no recognizable speech are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := applyTranscribeFlags(cmd, cfg, flags, args); err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			return runTranscribe(cmd, cfg, flags, logger)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&flags.extensions, "ext", nil, "Accepted extensions, comma separated (default from scan.extensions)")
	f.BoolVarP(&flags.recursive, "recursive", "r", false, "Descend into subdirectories")
	f.StringVar(&flags.mode, "mode", "", "Output mode: text or srt")
	f.BoolVar(&flags.categorize, "categorize", false, "Write transcripts under categorized/<prefix>/")
	f.IntVar(&flags.chunkMS, "chunk-ms", 0, "Subtitle chunk length in milliseconds")
	f.Float64Var(&flags.headroomDB, "headroom-db", 0, "Peak normalization target in dBFS (zero or negative)")
	f.BoolVar(&flags.noNorm, "no-normalize", false, "Skip peak normalization")
	f.StringVar(&flags.engine, "engine", "", "Transcription engine: whisperx or cloud")
	f.StringVar(&flags.language, "language", "", "Spoken language (ISO code, English name or auto)")
	f.StringVar(&flags.format, "format", "", "Intermediate audio format: wav or mp3")
	f.BoolVar(&flags.combine, "combine", false, "Combine transcripts after the batch")
	f.BoolVar(&flags.watch, "watch", false, "Keep running and transcribe new files as they appear")
	f.BoolVar(&flags.json, "json", false, "Print the run summary as JSON")
	return cmd
}

// applyTranscribeFlags overrides cfg with every flag the user set and
// revalidates the result.
func applyTranscribeFlags(cmd *cobra.Command, cfg *config.Config, flags transcribeFlags, args []string) error {
	dir, err := resolveDir(args, cfg.Paths.SourceDir)
	if err != nil {
		return err
	}
	cfg.Paths.SourceDir = dir

	changed := cmd.Flags().Changed
	if changed("ext") {
		cfg.Scan.Extensions = config.NormalizeExtensions(flags.extensions)
	}
	if changed("recursive") {
		cfg.Scan.Recursive = flags.recursive
	}
	if changed("mode") {
		cfg.Transcribe.OutputMode = flags.mode
	}
	if changed("categorize") {
		cfg.Transcribe.CategoryByPrefix = flags.categorize
	}
	if changed("chunk-ms") {
		cfg.Transcribe.ChunkDurationMS = flags.chunkMS
	}
	if changed("headroom-db") {
		cfg.Transcribe.NormalizeHeadroomDB = flags.headroomDB
	}
	if changed("no-normalize") {
		cfg.Transcribe.Normalize = !flags.noNorm
	}
	if changed("engine") {
		cfg.Transcribe.Engine = flags.engine
	}
	if changed("language") {
		code, err := language.Normalize(flags.language)
		if err != nil {
			return fmt.Errorf("--language: %w", err)
		}
		cfg.Transcribe.Language = code
	}
	if changed("format") {
		cfg.Transcribe.IntermediateFormat = flags.format
	}
	if changed("combine") {
		cfg.Transcribe.CombineAfter = flags.combine
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.RequireCloudKey()
}

func runTranscribe(cmd *cobra.Command, cfg *config.Config, flags transcribeFlags, logger *slog.Logger) error {
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	engine, err := transcribe.New(cfg)
	if err != nil {
		return err
	}
	converter := convert.New(cfg.Tools, logger)

	options := []batch.Option{batch.WithLockDir(cfg.LockDir())}
	if cfg.History.Enabled {
		store, err := history.Open(runCtx, cfg)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run is not recorded"),
				logging.String(logging.FieldErrorHint, "delete "+cfg.HistoryPath()+" if the schema is outdated"),
			)
		} else {
			defer store.Close()
			options = append(options, batch.WithRecorder(store))
		}
	}

	runner := batch.NewRunner(batch.OptionsFromConfig(cfg), engine, converter, logger, options...)
	summary, err := runner.Run(runCtx)
	switch {
	case err == nil:
		if flags.json {
			if err := writeJSON(cmd, summaryJSON(summary)); err != nil {
				return err
			}
		} else {
			printSummary(cmd.OutOrStdout(), summary, shouldColorize(cmd.OutOrStdout()))
		}
	case flags.watch && errors.Is(err, batch.ErrNoMediaFiles):
		logger.Info("no existing media, waiting for new files", logging.String("root", cfg.Paths.SourceDir))
	default:
		return err
	}

	if !flags.watch {
		return nil
	}
	return runWatch(runCtx, cfg, runner, logger)
}

func runWatch(ctx context.Context, cfg *config.Config, runner *batch.Runner, logger *slog.Logger) error {
	unlock, err := batch.AcquireLock(cfg.LockDir(), cfg.Paths.SourceDir)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	w := watch.New(watch.Options{
		Root:       cfg.Paths.SourceDir,
		Extensions: cfg.Scan.Extensions,
		Recursive:  cfg.Scan.Recursive,
		Settle:     time.Duration(cfg.Transcribe.WatchSettleSeconds) * time.Second,
		Combine:    cfg.Transcribe.CombineAfter,
	}, runner, logger)
	return w.Run(ctx)
}

type fileJSON struct {
	Source   string `json:"source"`
	Output   string `json:"output,omitempty"`
	Outcome  string `json:"outcome"`
	Detail   string `json:"detail,omitempty"`
	Duration string `json:"duration"`
}

type runSummaryJSON struct {
	RunID    string     `json:"run_id"`
	Root     string     `json:"root"`
	Written  int        `json:"written"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Files    []fileJSON `json:"files"`
	Combined string     `json:"combined,omitempty"`
	Error    string     `json:"combine_error,omitempty"`
}

func summaryJSON(summary batch.Summary) runSummaryJSON {
	out := runSummaryJSON{
		RunID:   summary.RunID,
		Root:    summary.Root,
		Written: summary.Written,
		Skipped: summary.Skipped,
		Failed:  summary.Failed,
		Files:   make([]fileJSON, 0, len(summary.Results)),
	}
	for _, res := range summary.Results {
		out.Files = append(out.Files, fileJSON{
			Source:   res.Source,
			Output:   res.Output,
			Outcome:  res.Outcome,
			Detail:   res.Detail,
			Duration: res.Duration.Round(time.Millisecond).String(),
		})
	}
	if summary.Combined != nil {
		out.Combined = summary.Combined.Output
	}
	if summary.CombineErr != nil {
		out.Error = summary.CombineErr.Error()
	}
	return out
}

func printSummary(out io.Writer, summary batch.Summary, colorize bool) {
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		target := res.Output
		if target == "" {
			target = res.Detail
		}
		rel, err := filepath.Rel(summary.Root, res.Source)
		if err != nil {
			rel = res.Source
		}
		rows = append(rows, []string{rel, res.Outcome, target, res.Duration.Round(time.Second).String()})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Outcome", "Output / Detail", "Time"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}, colorize))

	fmt.Fprintln(out, renderStatusLine("Written", statusOK, fmt.Sprint(summary.Written), colorize))
	fmt.Fprintln(out, renderStatusLine("Skipped", kindFor(summary.Skipped, statusWarn), fmt.Sprint(summary.Skipped), colorize))
	fmt.Fprintln(out, renderStatusLine("Failed", kindFor(summary.Failed, statusError), fmt.Sprint(summary.Failed), colorize))
	switch {
	case summary.CombineErr != nil:
		fmt.Fprintln(out, renderStatusLine("Combined", statusError, summary.CombineErr.Error(), colorize))
	case summary.Combined != nil:
		fmt.Fprintln(out, renderStatusLine("Combined", statusOK,
			fmt.Sprintf("%s (%d files)", summary.Combined.Output, len(summary.Combined.Included)), colorize))
	}
}
