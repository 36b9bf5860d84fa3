// Package transcribe defines the pluggable speech-to-text strategy and the
// chunked subtitle builder that drives it.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/services"
	"mediascribe/internal/services/cloudstt"
	"mediascribe/internal/services/whisperx"
	"mediascribe/internal/transcript"
)

// ErrUnrecognized is returned when an engine ran but heard no speech.
var ErrUnrecognized = services.ErrUnrecognized

// Transcriber turns one audio file into plain text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// New returns the engine selected by cfg.Transcribe.Engine.
func New(cfg *config.Config) (Transcriber, error) {
	switch cfg.Transcribe.Engine {
	case config.EngineWhisperX:
		return whisperx.NewService(whisperx.Config{
			Model:       cfg.WhisperX.Model,
			CUDAEnabled: cfg.WhisperX.CUDAEnabled,
			VADMethod:   cfg.WhisperX.VADMethod,
			HFToken:     cfg.WhisperX.HFToken,
			Language:    cfg.Transcribe.Language,
			UVXBinary:   cfg.Tools.UVX,
		}), nil
	case config.EngineCloud:
		if err := cfg.RequireCloudKey(); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "transcribe", "select engine", "", err)
		}
		return cloudstt.NewClient(cloudstt.Config{
			APIKey:         cfg.Cloud.APIKey,
			BaseURL:        cfg.Cloud.BaseURL,
			Model:          cfg.Cloud.Model,
			Language:       cfg.Transcribe.Language,
			TimeoutSeconds: cfg.Cloud.TimeoutSeconds,
			RetryAttempts:  cfg.Cloud.RetryAttempts,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "select engine", fmt.Sprintf("unknown engine %q", cfg.Transcribe.Engine), nil)
	}
}

// Text transcribes the whole file. Blank results become ErrUnrecognized.
func Text(ctx context.Context, engine Transcriber, audioPath string) (string, error) {
	text, err := engine.Transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}

// ChunkSource measures audio and cuts windows out of it.
type ChunkSource interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
	ExtractChunk(ctx context.Context, src string, start, duration time.Duration, dest string) error
}

// Chunker builds subtitle segments by transcribing fixed windows.
type Chunker struct {
	Engine Transcriber
	Source ChunkSource
	Window time.Duration
	Logger *slog.Logger
}

// Segments splits audioPath into Window-sized chunks inside workDir and
// transcribes each one independently. Chunks that fail or come back empty
// are dropped; only context cancellation aborts. ErrUnrecognized is
// returned when no chunk produced text.
func (c Chunker) Segments(ctx context.Context, audioPath, workDir string) ([]transcript.Segment, error) {
	if c.Window <= 0 {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "chunk", "chunk window must be positive", nil)
	}
	logger := c.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	total, err := c.Source.Duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(audioPath)
	chunks := int((total + c.Window - 1) / c.Window)
	sampler := logging.NewProgressSampler(25)
	var segments []transcript.Segment
	index := 0
	for start := time.Duration(0); start < total; start += c.Window {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		index++
		end := min(start+c.Window, total)
		chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%05d%s", index, ext))

		text, err := c.chunk(ctx, audioPath, chunkPath, start, end-start)
		_ = os.Remove(chunkPath)
		if sampler.ShouldLog(index, chunks) {
			logger.Info("chunk progress",
				logging.Int("chunk", index),
				logging.Int("chunks", chunks),
				logging.Int("percent", logging.Percent(index, chunks)),
			)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, ErrUnrecognized) {
				logger.Debug("chunk had no recognizable speech",
					logging.Int("chunk", index),
					logging.String("start", transcript.FormatTimestamp(start.Milliseconds())),
				)
				continue
			}
			logging.WarnWithContext(logger, "chunk transcription failed", "chunk_failed",
				logging.Int("chunk", index),
				logging.String("start", transcript.FormatTimestamp(start.Milliseconds())),
				logging.Error(err),
				logging.String(logging.FieldImpact, "chunk omitted from subtitles"),
			)
			continue
		}
		segments = append(segments, transcript.Segment{Start: start, End: end, Text: text})
	}
	if len(segments) == 0 {
		return nil, ErrUnrecognized
	}
	return segments, nil
}

func (c Chunker) chunk(ctx context.Context, src, dest string, start, length time.Duration) (string, error) {
	if err := c.Source.ExtractChunk(ctx, src, start, length, dest); err != nil {
		return "", err
	}
	return Text(ctx, c.Engine, dest)
}
