package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/media/ffprobe"
	"mediascribe/internal/services"
)

const (
	sampleRate = "16000"
	channels   = "1"
)

// Runner executes name with args and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Request describes one conversion.
type Request struct {
	// Format is config.FormatWAV or config.FormatMP3.
	Format string
	// Dir receives the converted file. It must exist.
	Dir string
	// HeadroomDB is the target peak level in dBFS (zero or negative).
	HeadroomDB float64
	// Normalize enables the volumedetect pass.
	Normalize bool
}

// Converter wraps ffmpeg and ffprobe.
type Converter struct {
	ffmpeg  string
	ffprobe string
	run     Runner
	logger  *slog.Logger
}

// New constructs a Converter for the configured binaries.
func New(tools config.Tools, logger *slog.Logger) *Converter {
	ffmpegBinary := strings.TrimSpace(tools.FFmpeg)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	ffprobeBinary := strings.TrimSpace(tools.FFprobe)
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Converter{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		run:     execRunner,
		logger:  logging.NewComponentLogger(logger, "convert"),
	}
}

// WithRunner replaces process execution (for testing).
func (c *Converter) WithRunner(run Runner) {
	if run != nil {
		c.run = run
	}
}

// Convert writes src as the requested intermediate format into req.Dir and
// returns the new path. The output name is the source stem plus the format
// extension.
func (c *Converter) Convert(ctx context.Context, src string, req Request) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.Format), "."))
	if format == "" {
		format = config.FormatWAV
	}
	if format != config.FormatWAV && format != config.FormatMP3 {
		return "", services.Wrap(services.ErrValidation, "convert", "format", fmt.Sprintf("unsupported format %q", req.Format), nil)
	}
	if req.Dir == "" {
		return "", services.Wrap(services.ErrValidation, "convert", "destination", "output directory required", nil)
	}
	if _, err := os.Stat(src); err != nil {
		return "", services.Wrap(services.ErrNotFound, "convert", "stat source", src, err)
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dest := filepath.Join(req.Dir, stem+"."+format)

	var filters []string
	if req.Normalize {
		gain, err := c.normalizationGain(ctx, src, req.HeadroomDB)
		if err != nil {
			return "", err
		}
		if gain != 0 {
			filters = append(filters, fmt.Sprintf("volume=%.2fdB", gain))
		}
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", src, "-vn", "-sn", "-dn", "-ac", channels, "-ar", sampleRate}
	if len(filters) > 0 {
		args = append(args, "-af", strings.Join(filters, ","))
	}
	args = append(args, codecArgs(format)...)
	args = append(args, dest)

	if output, err := c.run(ctx, c.ffmpeg, args...); err != nil {
		_ = os.Remove(dest)
		return "", services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", summarize(output), err)
	}
	c.logger.Debug("converted media",
		logging.String(logging.FieldFile, src),
		logging.String("output", dest),
		logging.Int("filters", len(filters)),
	)
	return dest, nil
}

// ExtractChunk cuts [start, start+duration) from src into dest. The codec
// follows dest's extension.
func (c *Converter) ExtractChunk(ctx context.Context, src string, start, duration time.Duration, dest string) error {
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, "convert", "chunk", fmt.Sprintf("invalid duration %s", duration), nil)
	}
	if start < 0 {
		start = 0
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(dest), "."))
	if format != config.FormatMP3 {
		format = config.FormatWAV
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", src,
		"-vn", "-sn", "-dn",
		"-ac", channels, "-ar", sampleRate,
	}
	args = append(args, codecArgs(format)...)
	args = append(args, dest)
	if output, err := c.run(ctx, c.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "convert", "ffmpeg chunk", summarize(output), err)
	}
	return nil
}

// Duration reports the media length as measured by ffprobe.
func (c *Converter) Duration(ctx context.Context, path string) (time.Duration, error) {
	output, err := c.run(ctx, c.ffprobe, ffprobe.Args(path)...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "convert", "ffprobe", summarize(output), err)
	}
	result, err := ffprobe.Parse(output)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "convert", "ffprobe", "decode output", err)
	}
	duration := result.Duration()
	if duration <= 0 {
		return 0, services.Wrap(services.ErrValidation, "convert", "ffprobe", "media has no measurable duration", nil)
	}
	return duration, nil
}

// PeakVolume returns the max_volume reported by ffmpeg volumedetect in dBFS.
// Silent input yields -Inf.
func (c *Converter) PeakVolume(ctx context.Context, src string) (float64, error) {
	args := []string{"-hide_banner", "-nostats", "-i", src, "-vn", "-sn", "-dn", "-af", "volumedetect", "-f", "null", "-"}
	output, err := c.run(ctx, c.ffmpeg, args...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "convert", "volumedetect", summarize(output), err)
	}
	peak, ok := ParseMaxVolume(string(output))
	if !ok {
		return 0, services.Wrap(services.ErrExternalTool, "convert", "volumedetect", "max_volume missing from ffmpeg output", nil)
	}
	return peak, nil
}

func (c *Converter) normalizationGain(ctx context.Context, src string, headroom float64) (float64, error) {
	peak, err := c.PeakVolume(ctx, src)
	if err != nil {
		return 0, err
	}
	gain, ok := Gain(peak, headroom)
	if !ok {
		c.logger.Debug("skipping normalization for silent input", logging.String(logging.FieldFile, src))
	}
	return gain, nil
}

// Gain is the dB shift that moves peak to headroom. Silent input (peak of
// -Inf) reports ok=false and zero gain.
func Gain(peak, headroom float64) (float64, bool) {
	if math.IsInf(peak, -1) || math.IsNaN(peak) {
		return 0, false
	}
	return math.Round((headroom-peak)*100) / 100, true
}

var maxVolumePattern = regexp.MustCompile(`max_volume:\s*(-?inf|-?[0-9]+(?:\.[0-9]+)?)\s*dB`)

// ParseMaxVolume extracts max_volume from ffmpeg volumedetect output.
func ParseMaxVolume(output string) (float64, bool) {
	match := maxVolumePattern.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}
	if strings.HasSuffix(match[1], "inf") {
		return math.Inf(-1), true
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func codecArgs(format string) []string {
	if format == config.FormatMP3 {
		return []string{"-c:a", "libmp3lame", "-q:a", "2"}
	}
	return []string{"-c:a", "pcm_s16le"}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func summarize(output []byte) string {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return "command failed"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " | ")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return output, ctx.Err()
	}
	return output, err
}
