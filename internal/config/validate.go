package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validateCloud(); err != nil {
		return err
	}
	if err := c.validateCombine(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscribe() error {
	switch c.Transcribe.Engine {
	case EngineWhisperX, EngineCloud:
	default:
		return fmt.Errorf("transcribe.engine: unsupported value %q (expected %q or %q)", c.Transcribe.Engine, EngineWhisperX, EngineCloud)
	}
	switch c.Transcribe.OutputMode {
	case ModeText, ModeSRT:
	default:
		return fmt.Errorf("transcribe.output_mode: unsupported value %q (expected %q or %q)", c.Transcribe.OutputMode, ModeText, ModeSRT)
	}
	switch c.Transcribe.IntermediateFormat {
	case FormatWAV, FormatMP3:
	default:
		return fmt.Errorf("transcribe.intermediate_format: unsupported value %q (expected %q or %q)", c.Transcribe.IntermediateFormat, FormatWAV, FormatMP3)
	}
	if c.Transcribe.ChunkDurationMS < 500 {
		return fmt.Errorf("transcribe.chunk_duration_ms must be at least 500 (got %d)", c.Transcribe.ChunkDurationMS)
	}
	if c.Transcribe.NormalizeHeadroomDB > 0 {
		return fmt.Errorf("transcribe.normalize_headroom_db must be zero or negative (got %.2f)", c.Transcribe.NormalizeHeadroomDB)
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	switch c.WhisperX.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("whisperx.vad_method: unsupported value %q", c.WhisperX.VADMethod)
	}
	return nil
}

// validateCloud only checks shape; a missing API key is reported when the
// cloud engine is actually selected so offline users never need one.
func (c *Config) validateCloud() error {
	if !strings.HasPrefix(c.Cloud.BaseURL, "http://") && !strings.HasPrefix(c.Cloud.BaseURL, "https://") {
		return fmt.Errorf("cloud.base_url must be an http(s) URL (got %q)", c.Cloud.BaseURL)
	}
	return nil
}

// RequireCloudKey reports a configuration error when the cloud engine is
// selected without an API key.
func (c *Config) RequireCloudKey() error {
	if c.Transcribe.Engine != EngineCloud {
		return nil
	}
	if c.Cloud.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mediascribe/config.toml"
		}
		return fmt.Errorf("cloud.api_key is required for the cloud engine. Set OPENAI_API_KEY or edit %s (create with 'mediascribe config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateCombine() error {
	if strings.ContainsAny(c.Combine.OutputName, `/\`) || c.Combine.OutputName != filepath.Base(c.Combine.OutputName) {
		return fmt.Errorf("combine.output_name must be a bare file name (got %q)", c.Combine.OutputName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
