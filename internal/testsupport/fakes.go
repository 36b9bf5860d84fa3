package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediascribe/internal/fileutil"
	"mediascribe/internal/media/convert"
)

// FakeTranscriber returns canned text keyed by the audio file stem.
// Stems with no entry return Default.
type FakeTranscriber struct {
	Texts   map[string]string
	Errors  map[string]error
	Default string

	mu    sync.Mutex
	calls []string
}

// Name implements transcribe.Transcriber.
func (f *FakeTranscriber) Name() string { return "fake" }

// Transcribe implements transcribe.Transcriber.
func (f *FakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	f.mu.Lock()
	f.calls = append(f.calls, stem)
	f.mu.Unlock()
	if err, ok := f.Errors[stem]; ok {
		return "", err
	}
	if text, ok := f.Texts[stem]; ok {
		return text, nil
	}
	return f.Default, nil
}

// Calls returns the stems transcribed so far, in order.
func (f *FakeTranscriber) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeConverter copies sources into the work directory instead of running
// ffmpeg. Durations are looked up by source stem.
type FakeConverter struct {
	Durations map[string]time.Duration
	Errors    map[string]error

	mu       sync.Mutex
	requests []convert.Request
}

// Convert implements the batch converter contract.
func (f *FakeConverter) Convert(_ context.Context, src string, req convert.Request) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if err, ok := f.Errors[stem]; ok {
		return "", err
	}
	format := req.Format
	if format == "" {
		format = "wav"
	}
	dest := filepath.Join(req.Dir, stem+"."+format)
	if err := fileutil.CopyFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Duration implements transcribe.ChunkSource.
func (f *FakeConverter) Duration(_ context.Context, path string) (time.Duration, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if d, ok := f.Durations[stem]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("no duration for %s", stem)
}

// ExtractChunk implements transcribe.ChunkSource by writing an empty chunk.
func (f *FakeConverter) ExtractChunk(_ context.Context, _ string, _, _ time.Duration, dest string) error {
	return os.WriteFile(dest, nil, 0o644)
}

// Requests returns the conversion requests seen so far.
func (f *FakeConverter) Requests() []convert.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]convert.Request(nil), f.requests...)
}
