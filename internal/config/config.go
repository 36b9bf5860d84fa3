package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Output modes for the transcribe pipeline.
const (
	ModeText = "text"
	ModeSRT  = "srt"
)

// Transcription engines.
const (
	EngineWhisperX = "whisperx"
	EngineCloud    = "cloud"
)

// Intermediate audio formats.
const (
	FormatWAV = "wav"
	FormatMP3 = "mp3"
)

// Paths contains directory configuration.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
	WorkDir   string `toml:"work_dir"`
}

// Scan controls which media files a batch picks up.
type Scan struct {
	Extensions []string `toml:"extensions"`
	Recursive  bool     `toml:"recursive"`
}

// Transcribe controls the convert → transcribe → write pipeline.
type Transcribe struct {
	Engine              string  `toml:"engine"`
	OutputMode          string  `toml:"output_mode"`
	CategoryByPrefix    bool    `toml:"category_by_prefix"`
	ChunkDurationMS     int     `toml:"chunk_duration_ms"`
	Normalize           bool    `toml:"normalize"`
	NormalizeHeadroomDB float64 `toml:"normalize_headroom_db"`
	IntermediateFormat  string  `toml:"intermediate_format"`
	Language            string  `toml:"language"`
	CombineAfter        bool    `toml:"combine_after"`
	WatchSettleSeconds  int     `toml:"watch_settle_seconds"`
}

// WhisperX contains settings for the local offline engine.
type WhisperX struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
}

// Cloud contains settings for the OpenAI-compatible transcription API.
type Cloud struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Combine controls how produced transcripts are concatenated.
type Combine struct {
	OutputName string `toml:"output_name"`
	Recursive  bool   `toml:"recursive"`
}

// Tags controls front-matter tagging of note files.
type Tags struct {
	Extensions []string `toml:"extensions"`
}

// History controls the SQLite run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Tools names the external binaries invoked by the pipeline.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	UVX     string `toml:"uvx"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediascribe.
//
// Configuration sections by subsystem:
//   - Paths: source, log, state and scratch directories
//   - Scan: accepted extensions and recursion
//   - Transcribe: engine, output mode, categorization, chunking, normalization
//   - WhisperX / Cloud: engine-specific settings
//   - Combine: combined output naming and recursion
//   - Tags: note file extensions for front-matter tagging
//   - History: run ledger toggle
//   - Tools: ffmpeg/ffprobe/uvx binary names
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Scan       Scan       `toml:"scan"`
	Transcribe Transcribe `toml:"transcribe"`
	WhisperX   WhisperX   `toml:"whisperx"`
	Cloud      Cloud      `toml:"cloud"`
	Combine    Combine    `toml:"combine"`
	Tags       Tags       `toml:"tags"`
	History    History    `toml:"history"`
	Tools      Tools      `toml:"tools"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediascribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediascribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. The source and
// work directories are never created here: a missing source directory is a
// user error reported by the scanner.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite run ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockDir returns the directory holding per-source batch lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// ChunkDuration returns the subtitle chunk window in milliseconds as an int64.
func (c *Config) ChunkDuration() int64 {
	return int64(c.Transcribe.ChunkDurationMS)
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
