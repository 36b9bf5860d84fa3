package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"mediascribe/internal/config"
	"mediascribe/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkAccess(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckSourceDirectory verifies the media directory is readable and
// traversable. Write access is still required when outputs land beside the
// sources, so a read-only directory passes with a note.
func CheckSourceDirectory(name, path string) Result {
	result := checkAccess(name, path, unix.R_OK|unix.X_OK, "readable")
	if result.Passed && unix.Access(path, unix.W_OK) != nil {
		result.Detail = fmt.Sprintf("%s (read-only: outputs cannot be written beside sources)", path)
	}
	return result
}

func checkAccess(name, path string, mode uint32, okDetail string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckSystemDeps evaluates the external binaries the configured pipeline
// needs. uvx is only required for the whisperx engine.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for audio conversion and normalization",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for duration probing in subtitle mode",
			Optional:    cfg.Transcribe.OutputMode != config.ModeSRT,
		},
	}
	if cfg.Transcribe.Engine == config.EngineWhisperX {
		requirements = append(requirements, deps.Requirement{
			Name:        "uvx",
			Command:     cfg.Tools.UVX,
			Description: "Required for WhisperX-driven transcription",
		})
	}
	return deps.CheckBinaries(requirements)
}

// CheckCloudKey reports whether the cloud engine has credentials.
func CheckCloudKey(cfg *config.Config) Result {
	const name = "Cloud API key"
	if cfg.Transcribe.Engine != config.EngineCloud {
		if cfg.Cloud.APIKey == "" {
			return Result{Name: name, Passed: true, Detail: "not needed (engine " + cfg.Transcribe.Engine + ")"}
		}
		return Result{Name: name, Passed: true, Detail: "configured (unused)"}
	}
	if err := cfg.RequireCloudKey(); err != nil {
		return Result{Name: name, Detail: "missing (set OPENAI_API_KEY or cloud.api_key)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}
