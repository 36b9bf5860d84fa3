package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediascribe/internal/config"
	"mediascribe/internal/fileutil"
	"mediascribe/internal/scan"
	"mediascribe/internal/services"
	"mediascribe/internal/textutil"
)

const uncategorized = "uncategorized"

// Extension returns the output extension for mode.
func Extension(mode string) string {
	if mode == config.ModeSRT {
		return ".srt"
	}
	return ".txt"
}

// OutputPath returns where the transcript for file goes. Without
// categorization it sits beside the source; otherwise under
// <root>/categorized/<category>/.
func OutputPath(root string, file scan.MediaFile, mode string, categorize bool) string {
	name := file.Stem() + Extension(mode)
	if !categorize {
		return filepath.Join(filepath.Dir(file.Path), name)
	}
	category := textutil.SanitizeFileName(file.Category)
	if category == "" {
		category = uncategorized
	}
	return filepath.Join(root, scan.CategoryDir, category, name)
}

// WriteText writes text to path, creating parent directories.
func WriteText(path, text string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrUnrecognized, "transcript", "write text", "empty transcript", nil)
	}
	return write(path, []byte(text))
}

// WriteSRT renders segments to path, creating parent directories.
func WriteSRT(path string, segments []Segment) error {
	body := RenderSRT(segments)
	if body == "" {
		return services.Wrap(services.ErrUnrecognized, "transcript", "write srt", "no recognized segments", nil)
	}
	return write(path, []byte(body))
}

func write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrValidation, "transcript", "create directory", filepath.Dir(path), err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcript", "write", fmt.Sprintf("write %s", path), err)
	}
	return nil
}
