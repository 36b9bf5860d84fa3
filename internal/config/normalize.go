package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Scan.Extensions = normalizeExtensions(c.Scan.Extensions, defaultMediaExtensions)
	c.Tags.Extensions = normalizeExtensions(c.Tags.Extensions, defaultNoteExtensions)
	c.normalizeTranscribe()
	c.normalizeWhisperX()
	c.normalizeCloud()
	c.normalizeCombine()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) != "" {
		if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
			return fmt.Errorf("paths.work_dir: %w", err)
		}
	}
	return nil
}

// NormalizeExtensions lower-cases, dot-prefixes and deduplicates extensions.
// Exported for CLI flag handling.
func NormalizeExtensions(values []string) []string {
	return normalizeExtensions(values, nil)
}

func normalizeExtensions(values []string, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 && len(fallback) > 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

func (c *Config) normalizeTranscribe() {
	c.Transcribe.Engine = strings.ToLower(strings.TrimSpace(c.Transcribe.Engine))
	if c.Transcribe.Engine == "" {
		c.Transcribe.Engine = EngineWhisperX
	}
	c.Transcribe.OutputMode = strings.ToLower(strings.TrimSpace(c.Transcribe.OutputMode))
	if c.Transcribe.OutputMode == "" {
		c.Transcribe.OutputMode = ModeText
	}
	c.Transcribe.IntermediateFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Transcribe.IntermediateFormat), "."))
	if c.Transcribe.IntermediateFormat == "" {
		c.Transcribe.IntermediateFormat = FormatWAV
	}
	if c.Transcribe.ChunkDurationMS == 0 {
		c.Transcribe.ChunkDurationMS = defaultChunkDurationMS
	}
	if c.Transcribe.WatchSettleSeconds <= 0 {
		c.Transcribe.WatchSettleSeconds = defaultWatchSettleSeconds
	}
	c.Transcribe.Language = strings.TrimSpace(c.Transcribe.Language)
}

func (c *Config) normalizeWhisperX() {
	c.WhisperX.Model = strings.TrimSpace(c.WhisperX.Model)
	if c.WhisperX.Model == "" {
		c.WhisperX.Model = defaultWhisperXModel
	}
	c.WhisperX.VADMethod = strings.ToLower(strings.TrimSpace(c.WhisperX.VADMethod))
	if c.WhisperX.VADMethod == "" {
		c.WhisperX.VADMethod = defaultWhisperXVADMethod
	}
	c.WhisperX.HFToken = strings.TrimSpace(c.WhisperX.HFToken)
	if c.WhisperX.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.WhisperX.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.WhisperX.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeCloud() {
	c.Cloud.APIKey = strings.TrimSpace(c.Cloud.APIKey)
	if c.Cloud.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Cloud.APIKey = strings.TrimSpace(value)
		}
	}
	c.Cloud.BaseURL = strings.TrimRight(strings.TrimSpace(c.Cloud.BaseURL), "/")
	if c.Cloud.BaseURL == "" {
		c.Cloud.BaseURL = defaultCloudBaseURL
	}
	c.Cloud.Model = strings.TrimSpace(c.Cloud.Model)
	if c.Cloud.Model == "" {
		c.Cloud.Model = defaultCloudModel
	}
	if c.Cloud.TimeoutSeconds <= 0 {
		c.Cloud.TimeoutSeconds = defaultCloudTimeoutSeconds
	}
	if c.Cloud.RetryAttempts <= 0 {
		c.Cloud.RetryAttempts = defaultCloudRetryAttempts
	}
}

func (c *Config) normalizeCombine() {
	name := strings.TrimSpace(c.Combine.OutputName)
	if ext := strings.ToLower(strings.TrimSpace(name)); strings.HasSuffix(ext, ".txt") || strings.HasSuffix(ext, ".srt") {
		name = name[:len(name)-4]
	}
	if name == "" {
		name = defaultCombineOutputName
	}
	c.Combine.OutputName = name
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if strings.TrimSpace(c.Tools.UVX) == "" {
		c.Tools.UVX = "uvx"
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
