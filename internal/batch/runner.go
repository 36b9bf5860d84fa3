package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mediascribe/internal/combine"
	"mediascribe/internal/config"
	"mediascribe/internal/history"
	"mediascribe/internal/logging"
	"mediascribe/internal/media/convert"
	"mediascribe/internal/scan"
	"mediascribe/internal/services"
	"mediascribe/internal/transcribe"
	"mediascribe/internal/transcript"
)

// ErrNoMediaFiles is returned when the source directory holds no file with
// an accepted extension. Nothing is written in that case.
var ErrNoMediaFiles = errors.New("no matching files")

// Converter produces the engine's intermediate audio and cuts chunks from it.
type Converter interface {
	Convert(ctx context.Context, src string, req convert.Request) (string, error)
	transcribe.ChunkSource
}

// Recorder persists run outcomes. *history.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, run history.Run) error
	RecordItem(ctx context.Context, item history.Item) error
	FinishRun(ctx context.Context, runID string, totals history.Totals) error
}

// Runner processes media files one at a time.
type Runner struct {
	opts      Options
	engine    transcribe.Transcriber
	converter Converter
	recorder  Recorder
	lockDir   string
	logger    *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRecorder attaches a history ledger.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLockDir enables the per-directory run lock.
func WithLockDir(dir string) Option {
	return func(r *Runner) { r.lockDir = dir }
}

// NewRunner builds a runner.
func NewRunner(opts Options, engine transcribe.Transcriber, converter Converter, logger *slog.Logger, options ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeText
	}
	r := &Runner{
		opts:      opts,
		engine:    engine,
		converter: converter,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Options returns the effective batch options.
func (r *Runner) Options() Options {
	return r.opts
}

// FileResult is the outcome of one media file.
type FileResult struct {
	Source   string
	Output   string
	Outcome  string
	Detail   string
	Duration time.Duration
	Err      error
}

// Summary aggregates a batch.
type Summary struct {
	RunID      string
	Root       string
	Results    []FileResult
	Written    int
	Skipped    int
	Failed     int
	Combined   *combine.Result
	CombineErr error
}

func (s *Summary) add(res FileResult) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case services.OutcomeWritten:
		s.Written++
	case services.OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Run scans the source directory and processes every matching file.
// A missing directory wraps services.ErrNotFound and an empty match set
// returns ErrNoMediaFiles; neither writes anything.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Root: r.opts.Root}
	files, err := r.collect()
	if err != nil {
		return summary, err
	}

	if r.lockDir != "" {
		unlock, err := AcquireLock(r.lockDir, r.opts.Root)
		if err != nil {
			return summary, err
		}
		defer func() {
			if err := unlock(); err != nil {
				r.logger.Warn("release run lock failed", logging.Error(err))
			}
		}()
	}

	summary.RunID = uuid.NewString()
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("batch started",
		logging.String("root", r.opts.Root),
		logging.Int("files", len(files)),
		logging.String("mode", r.opts.Mode),
		logging.String("engine", r.engineName()),
	)
	r.beginRun(ctx, summary.RunID)

	var runErr error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		res, err := r.process(ctx, file)
		if err != nil {
			runErr = err
			break
		}
		summary.add(res)
		r.recordItem(ctx, summary.RunID, res)
	}

	r.finishRun(ctx, summary, runErr)
	if runErr != nil {
		logging.WarnWithContext(logger, "batch interrupted", "batch_interrupted",
			logging.Int("written", summary.Written),
			logging.Int("remaining", len(files)-len(summary.Results)),
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "rerun transcribe to finish the remaining files"),
			logging.String(logging.FieldImpact, "remaining files were not processed"),
		)
		return summary, runErr
	}

	if r.opts.Combine {
		result, err := r.Combine(ctx)
		summary.Combined, summary.CombineErr = result, err
	}

	logger.Info("batch finished",
		logging.Int("written", summary.Written),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

// ProcessFile runs a single file as its own history run. The watch loop
// uses it; the caller is responsible for the directory lock.
func (r *Runner) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	file := scan.NewMediaFile(path)
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	r.beginRun(ctx, runID)

	res, err := r.process(ctx, file)
	var summary Summary
	summary.RunID = runID
	if err == nil {
		summary.add(res)
		r.recordItem(ctx, runID, res)
	}
	r.finishRun(ctx, summary, err)
	return res, err
}

// Combine runs the combine pass matching the output mode. Having nothing to
// combine is not an error here and yields a nil result.
func (r *Runner) Combine(ctx context.Context) (*combine.Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	result, err := combine.Run(ctx, combine.Options{
		Root:       r.opts.Root,
		Kind:       r.opts.CombineKind(),
		Recursive:  r.opts.CombineRecursive,
		OutputName: r.opts.CombineOutputName,
		Logger:     logger,
	})
	if errors.Is(err, combine.ErrNothingToCombine) {
		logger.Info("nothing to combine", logging.String("root", r.opts.Root))
		return nil, nil
	}
	if err != nil {
		logging.WarnWithContext(logger, "combine failed", "combine_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "combined output not refreshed"),
		)
		return nil, err
	}
	return &result, nil
}

func (r *Runner) collect() ([]scan.MediaFile, error) {
	seq, err := scan.Walk(r.opts.Root, scan.Options{
		Extensions: r.opts.Extensions,
		Recursive:  r.opts.Recursive,
	})
	if err != nil {
		return nil, err
	}
	files, scanErr := scan.Collect(seq)
	if scanErr != nil {
		logging.WarnWithContext(r.logger, "some entries could not be scanned", "scan_partial",
			logging.Error(scanErr),
			logging.String(logging.FieldImpact, "unreadable entries ignored"),
		)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMediaFiles, r.opts.Root)
	}
	return files, nil
}

// process converts, transcribes and writes one file. The returned error is
// non-nil only when the context is done; every other failure is folded into
// the FileResult.
func (r *Runner) process(ctx context.Context, file scan.MediaFile) (FileResult, error) {
	started := time.Now()
	ctx = services.WithFile(ctx, file.Path)
	logger := logging.WithContext(ctx, r.logger)

	output, err := r.transcribeFile(ctx, file, logger)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return FileResult{Source: file.Path}, ctxErr
		}
	}

	res := FileResult{
		Source:   file.Path,
		Outcome:  services.Outcome(err),
		Duration: time.Since(started),
		Err:      err,
	}
	switch {
	case err == nil:
		res.Output = output
		logger.Info("transcript written",
			logging.String("output", output),
			logging.Duration("elapsed", res.Duration),
		)
	case errors.Is(err, transcribe.ErrUnrecognized):
		res.Detail = "no speech recognized"
		logger.Info("no speech recognized, no transcript written")
	default:
		res.Detail = err.Error()
		logging.WarnWithContext(logger, "file not transcribed", "file_"+res.Outcome,
			logging.Error(err),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
	}
	return res, nil
}

func (r *Runner) transcribeFile(ctx context.Context, file scan.MediaFile, logger *slog.Logger) (string, error) {
	workDir, err := os.MkdirTemp(r.opts.WorkDir, "mediascribe-")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "batch", "work directory", r.opts.WorkDir, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Debug("remove work directory failed", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	audio, err := r.converter.Convert(services.WithStage(ctx, "convert"), file.Path, convert.Request{
		Format:     r.opts.Format,
		Dir:        workDir,
		HeadroomDB: r.opts.HeadroomDB,
		Normalize:  r.opts.Normalize,
	})
	if err != nil {
		return "", err
	}

	output := transcript.OutputPath(r.opts.Root, file, r.opts.Mode, r.opts.Categorize)
	ctx = services.WithStage(ctx, "transcribe")
	if r.opts.Mode == config.ModeSRT {
		chunker := transcribe.Chunker{
			Engine: r.engine,
			Source: r.converter,
			Window: r.opts.ChunkWindow,
			Logger: logging.WithContext(ctx, r.logger),
		}
		chunkDir := filepath.Join(workDir, "chunks")
		if err := os.MkdirAll(chunkDir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "batch", "chunk directory", chunkDir, err)
		}
		segments, err := chunker.Segments(ctx, audio, chunkDir)
		if err != nil {
			return "", err
		}
		return output, transcript.WriteSRT(output, segments)
	}

	text, err := transcribe.Text(ctx, r.engine, audio)
	if err != nil {
		return "", err
	}
	return output, transcript.WriteText(output, text)
}

func (r *Runner) engineName() string {
	if r.engine == nil {
		return r.opts.Engine
	}
	return r.engine.Name()
}

func (r *Runner) beginRun(ctx context.Context, runID string) {
	if r.recorder == nil {
		return
	}
	err := r.recorder.BeginRun(ctx, history.Run{
		ID:        runID,
		SourceDir: r.opts.Root,
		Engine:    r.engineName(),
		Mode:      r.opts.Mode,
		StartedAt: time.Now(),
	})
	if err != nil {
		r.historyFailed(ctx, "begin run", err)
	}
}

func (r *Runner) recordItem(ctx context.Context, runID string, res FileResult) {
	if r.recorder == nil {
		return
	}
	err := r.recorder.RecordItem(ctx, history.Item{
		RunID:      runID,
		SourcePath: res.Source,
		OutputPath: res.Output,
		Outcome:    res.Outcome,
		Detail:     res.Detail,
		Duration:   res.Duration,
	})
	if err != nil {
		r.historyFailed(ctx, "record item", err)
	}
}

func (r *Runner) finishRun(ctx context.Context, summary Summary, runErr error) {
	if r.recorder == nil {
		return
	}
	totals := history.Totals{
		Status:  history.StatusCompleted,
		Written: summary.Written,
		Skipped: summary.Skipped,
		Failed:  summary.Failed,
	}
	if runErr != nil {
		totals.Status = history.StatusInterrupted
		totals.Error = runErr.Error()
	}
	// The run context may already be cancelled; the ledger still needs closing.
	if err := r.recorder.FinishRun(context.WithoutCancel(ctx), summary.RunID, totals); err != nil {
		r.historyFailed(ctx, "finish run", err)
	}
}

func (r *Runner) historyFailed(ctx context.Context, op string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history update failed", "history_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldImpact, "run history incomplete"),
	)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "the file disappeared before it could be processed"
	case errors.Is(err, services.ErrExternalTool):
		return "check that ffmpeg can decode this file"
	case errors.Is(err, services.ErrConfiguration):
		return "run 'mediascribe status' to check engine configuration"
	case errors.Is(err, services.ErrTimeout), errors.Is(err, services.ErrTransient):
		return "retry later; the engine did not respond"
	default:
		return "see log for details"
	}
}
