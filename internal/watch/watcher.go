package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"mediascribe/internal/batch"
	"mediascribe/internal/combine"
	"mediascribe/internal/logging"
	"mediascribe/internal/scan"
	"mediascribe/internal/services"
)

// DefaultSettle is used when Options.Settle is not positive.
const DefaultSettle = 2 * time.Second

// Processor handles settled files. *batch.Runner satisfies it.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (batch.FileResult, error)
	Combine(ctx context.Context) (*combine.Result, error)
}

// Options configures a Watcher.
type Options struct {
	Root       string
	Extensions []string
	Recursive  bool
	Settle     time.Duration
	Combine    bool
}

// Watcher debounces filesystem events and feeds a Processor.
type Watcher struct {
	opts    Options
	proc    Processor
	logger  *slog.Logger
	pending map[string]time.Time
	now     func() time.Time
}

// New builds a watcher.
func New(opts Options, proc Processor, logger *slog.Logger) *Watcher {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Watcher{
		opts:    opts,
		proc:    proc,
		logger:  logging.NewComponentLogger(logger, "watch"),
		pending: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.opts.Root)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "watch", "stat root", w.opts.Root, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrNotFound, "watch", "stat root", w.opts.Root+" is not a directory", nil)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Debug("close watcher failed", logging.Error(err))
		}
	}()

	if err := w.addTree(fsw, w.opts.Root); err != nil {
		return err
	}
	w.logger.Info("watching for new media",
		logging.String("root", w.opts.Root),
		logging.Bool("recursive", w.opts.Recursive),
		logging.Duration("settle", w.opts.Settle),
	)

	tick := max(w.opts.Settle/4, 25*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", logging.Int("pending", len(w.pending)))
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			w.handleEvent(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logging.WarnWithContext(w.logger, "filesystem watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been missed"),
				logging.String(logging.FieldErrorHint, "rerun transcribe without --watch to catch up"),
			)
		case <-ticker.C:
			if err := w.flush(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if event.Has(fsnotify.Create) && w.opts.Recursive {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, event.Name); err != nil {
				w.logger.Warn("watch new directory failed", logging.String("dir", event.Name), logging.Error(err))
			}
			return
		}
	}
	if !scan.Matches(scan.Options{Extensions: w.opts.Extensions}, event.Name) {
		return
	}
	if _, seen := w.pending[event.Name]; !seen {
		w.logger.Debug("media event", logging.String(logging.FieldFile, event.Name), logging.String("op", event.Op.String()))
	}
	w.pending[event.Name] = w.now()
}

// ready returns pending files quiet for at least the settle delay, oldest
// first, and forgets them.
func (w *Watcher) ready() []string {
	now := w.now()
	var paths []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.opts.Settle {
			paths = append(paths, path)
		}
	}
	slices.SortFunc(paths, func(a, b string) int {
		if c := w.pending[a].Compare(w.pending[b]); c != 0 {
			return c
		}
		return combine.Compare(combine.SortKey(a), combine.SortKey(b))
	})
	for _, path := range paths {
		delete(w.pending, path)
	}
	return paths
}

func (w *Watcher) flush(ctx context.Context) error {
	paths := w.ready()
	processed := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			w.logger.Debug("settled file no longer present", logging.String(logging.FieldFile, path))
			continue
		}
		if _, err := w.proc.ProcessFile(ctx, path); err != nil {
			return err
		}
		processed++
	}
	if processed > 0 && w.opts.Combine {
		// Failures are logged by the processor and retried after the next file.
		_, _ = w.proc.Combine(ctx)
	}
	return nil
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if !w.opts.Recursive {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if scan.SkipDir(w.opts.Root, path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
