package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"mediascribe/internal/batch"
	"mediascribe/internal/combine"
	"mediascribe/internal/services"
)

type recordingProcessor struct {
	mu       sync.Mutex
	files    []string
	combines int
	seen     chan string
}

func (p *recordingProcessor) ProcessFile(_ context.Context, path string) (batch.FileResult, error) {
	p.mu.Lock()
	p.files = append(p.files, path)
	p.mu.Unlock()
	p.seen <- path
	return batch.FileResult{Source: path, Outcome: services.OutcomeWritten}, nil
}

func (p *recordingProcessor) Combine(context.Context) (*combine.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.combines++
	return &combine.Result{}, nil
}

func TestWatcherProcessesSettledMedia(t *testing.T) {
	root := t.TempDir()
	proc := &recordingProcessor{seen: make(chan string, 4)}
	w := New(Options{Root: root, Extensions: []string{".m4a"}, Settle: 50 * time.Millisecond, Combine: true}, proc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	media := filepath.Join(root, "memo_1.m4a")
	if err := os.WriteFile(media, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "memo_1.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-proc.seen:
		if got != media {
			t.Fatalf("processed %s, want %s", got, media)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for processed file")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if len(proc.files) != 1 {
		t.Fatalf("expected one processed file, got %v", proc.files)
	}
	if proc.combines != 1 {
		t.Fatalf("expected one combine pass, got %d", proc.combines)
	}
}

func TestReadyWaitsForSettle(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	w := New(Options{Root: "/src", Settle: 2 * time.Second}, &recordingProcessor{}, nil)
	w.now = func() time.Time { return now }

	w.pending["/src/clip_10.m4a"] = base
	w.pending["/src/clip_2.m4a"] = base
	w.pending["/src/late.m4a"] = base.Add(time.Second)

	now = base.Add(time.Second)
	if got := w.ready(); len(got) != 0 {
		t.Fatalf("nothing should be ready yet, got %v", got)
	}

	now = base.Add(2 * time.Second)
	got := w.ready()
	want := []string{"/src/clip_2.m4a", "/src/clip_10.m4a"}
	if !slices.Equal(got, want) {
		t.Fatalf("ready = %v, want %v", got, want)
	}
	if _, ok := w.pending["/src/late.m4a"]; !ok || len(w.pending) != 1 {
		t.Fatalf("late file should stay pending: %v", w.pending)
	}
}

func TestRunMissingRoot(t *testing.T) {
	w := New(Options{Root: filepath.Join(t.TempDir(), "absent")}, &recordingProcessor{}, nil)
	if err := w.Run(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
