package combine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"mediascribe/internal/fileutil"
	"mediascribe/internal/logging"
	"mediascribe/internal/scan"
	"mediascribe/internal/services"
	"mediascribe/internal/transcript"
)

// Kinds of transcript that can be combined.
const (
	KindText = "txt"
	KindSRT  = "srt"
)

// DefaultOutputName is the combined file stem.
const DefaultOutputName = "combined"

// ErrNothingToCombine reports that no transcripts were found.
var ErrNothingToCombine = errors.New("nothing to combine")

// Options configures a combine pass.
type Options struct {
	Root       string
	Kind       string
	Recursive  bool
	OutputName string
	Logger     *slog.Logger
}

// Result summarizes a combine pass.
type Result struct {
	Output   string
	Included []string
	Skipped  []string
}

// Key orders transcript files.
type Key struct {
	HasNumber bool
	// Number is the trailing digit run without leading zeros. Kept as a
	// string so arbitrarily long runs compare correctly.
	Number string
	Path   string
}

var suffixPattern = regexp.MustCompile(`^(.*?)(\d+)$`)

// SortKey extracts the ordering key for path.
func SortKey(path string) Key {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	match := suffixPattern.FindStringSubmatch(stem)
	if match == nil {
		return Key{Path: path}
	}
	digits := strings.TrimLeft(match[2], "0")
	if digits == "" {
		digits = "0"
	}
	return Key{HasNumber: true, Number: digits, Path: path}
}

// Compare orders keys per the package contract.
func Compare(a, b Key) int {
	switch {
	case a.HasNumber && !b.HasNumber:
		return -1
	case !a.HasNumber && b.HasNumber:
		return 1
	case a.HasNumber && b.HasNumber:
		if c := compareDigits(a.Number, b.Number); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Path, b.Path)
}

func compareDigits(a, b string) int {
	if len(a) <= 18 && len(b) <= 18 {
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
	x, _ := new(big.Int).SetString(a, 10)
	y, _ := new(big.Int).SetString(b, 10)
	return x.Cmp(y)
}

// Sort orders paths in place by SortKey.
func Sort(paths []string) {
	slices.SortFunc(paths, func(a, b string) int {
		return Compare(SortKey(a), SortKey(b))
	})
}

// TitleMarker returns the text-mode separator placed before each file.
func TitleMarker(stem string) string {
	return "\n\n --" + stem + "-- \n\n"
}

// Run collects transcripts under opts.Root and writes the combined file.
func Run(ctx context.Context, opts Options) (Result, error) {
	kind := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(opts.Kind), "."))
	if kind == "" {
		kind = KindText
	}
	if kind != KindText && kind != KindSRT {
		return Result{}, services.Wrap(services.ErrValidation, "combine", "kind", fmt.Sprintf("unsupported kind %q", opts.Kind), nil)
	}
	name := strings.TrimSpace(opts.OutputName)
	if name == "" {
		name = DefaultOutputName
	}
	logger := logging.NewComponentLogger(opts.Logger, "combine")
	output := filepath.Join(opts.Root, name+"."+kind)

	seq, err := scan.Walk(opts.Root, scan.Options{
		Extensions: []string{"." + kind},
		Recursive:  opts.Recursive,
		Exclude:    []string{output},
	})
	if err != nil {
		return Result{}, err
	}
	paths, err := collectPaths(seq)
	if err != nil {
		logging.WarnWithContext(logger, "some entries could not be listed", "combine_scan_partial",
			logging.Error(err),
			logging.String(logging.FieldImpact, "unlisted files left out of the combined output"),
		)
	}
	// The scanner skips the categorized tree, but it holds exactly the
	// transcripts worth combining.
	if opts.Recursive {
		more, err := collectCategorized(opts.Root, kind)
		if err != nil {
			logging.WarnWithContext(logger, "categorized tree could not be listed", "combine_scan_partial",
				logging.Error(err),
				logging.String(logging.FieldImpact, "categorized files left out of the combined output"),
			)
		}
		paths = append(paths, more...)
	}
	if len(paths) == 0 {
		return Result{}, fmt.Errorf("%w: no .%s files under %s", ErrNothingToCombine, kind, opts.Root)
	}
	Sort(paths)

	result := Result{Output: output}
	var b strings.Builder
	nextCue := 1
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logging.WarnWithContext(logger, "transcript vanished before it could be read", "combine_read_failed",
				logging.String(logging.FieldFile, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left out of the combined output"),
			)
			result.Skipped = append(result.Skipped, path)
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if kind == KindText {
			b.WriteString(TitleMarker(stem))
			b.Write(data)
		} else {
			b.WriteString("--" + stem + "--\n\n")
			nextCue = transcript.RenderCues(&b, transcript.ParseSRT(string(data)), nextCue)
		}
		result.Included = append(result.Included, path)
	}
	if len(result.Included) == 0 {
		return result, fmt.Errorf("%w: every .%s file under %s was unreadable", ErrNothingToCombine, kind, opts.Root)
	}

	if err := fileutil.WriteFileAtomic(output, []byte(b.String()), 0o644); err != nil {
		return result, services.Wrap(services.ErrExternalTool, "combine", "write", output, err)
	}
	logger.Info("combined transcripts",
		logging.String("output", output),
		logging.Int("included", len(result.Included)),
		logging.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func collectPaths(seq iter.Seq2[scan.MediaFile, error]) ([]string, error) {
	files, err := scan.Collect(seq)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths, err
}

func collectCategorized(root, kind string) ([]string, error) {
	dir := filepath.Join(root, scan.CategoryDir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}
	seq, err := scan.Walk(dir, scan.Options{Extensions: []string{"." + kind}, Recursive: true})
	if err != nil {
		return nil, err
	}
	return collectPaths(seq)
}
