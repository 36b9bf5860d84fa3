// Package scan discovers media files under a source directory.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mediascribe/internal/services"
	"mediascribe/internal/textutil"
)

// CategoryDir is the output tree the writer creates under the source root.
// The scanner never descends into it.
const CategoryDir = "categorized"

// MediaFile is one discovered input.
type MediaFile struct {
	Path string
	// Ext is lower-case and includes the dot.
	Ext string
	// Category is the NFC-normalized stem prefix before the first underscore,
	// or the whole stem when there is none.
	Category string
}

// Stem returns the base name without extension.
func (m MediaFile) Stem() string {
	base := filepath.Base(m.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Options controls a walk.
type Options struct {
	// Extensions are matched case-insensitively; values without a leading
	// dot are accepted.
	Extensions []string
	Recursive  bool
	// Exclude lists absolute paths that are never yielded.
	Exclude []string
}

// Walk validates root and returns a lazy sequence of matching files. Entries
// come back in directory order. Per-entry errors are yielded and the walk
// continues.
func Walk(root string, opts Options) (iter.Seq2[MediaFile, error], error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "scan", "stat root", root, err)
		}
		return nil, services.Wrap(services.ErrValidation, "scan", "stat root", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "scan", "stat root", fmt.Sprintf("%s is not a directory", root), nil)
	}

	matcher := newMatcher(opts)
	return func(yield func(MediaFile, error) bool) {
		if !opts.Recursive {
			walkFlat(root, matcher, yield)
			return
		}
		walkTree(root, matcher, yield)
	}, nil
}

// Collect drains seq. Files are returned even when some entries failed; the
// entry errors are joined.
func Collect(seq iter.Seq2[MediaFile, error]) ([]MediaFile, error) {
	var (
		files []MediaFile
		errs  []error
	)
	for file, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, file)
	}
	return files, errors.Join(errs...)
}

// NewMediaFile builds a MediaFile for path.
func NewMediaFile(path string) MediaFile {
	file := MediaFile{
		Path: path,
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
	file.Category = Category(file.Stem())
	return file
}

// Category returns the category token for a file stem.
func Category(stem string) string {
	stem = textutil.NFC(stem)
	if prefix, _, found := strings.Cut(stem, "_"); found && prefix != "" {
		return prefix
	}
	return stem
}

// Matches reports whether path would be yielded by a walk with opts. Only
// the name is checked; the file does not need to exist.
func Matches(opts Options, path string) bool {
	return newMatcher(opts).match(path, filepath.Base(path))
}

// SkipDir reports whether a recursive walk of root leaves dir out.
func SkipDir(root, dir string) bool {
	if filepath.Clean(dir) == filepath.Clean(root) {
		return false
	}
	return strings.HasPrefix(filepath.Base(dir), ".") || filepath.Clean(dir) == filepath.Join(root, CategoryDir)
}

type matcher struct {
	extensions map[string]struct{}
	exclude    []string
}

func newMatcher(opts Options) matcher {
	m := matcher{extensions: make(map[string]struct{}, len(opts.Extensions))}
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.extensions[ext] = struct{}{}
	}
	for _, path := range opts.Exclude {
		if abs, err := filepath.Abs(path); err == nil {
			m.exclude = append(m.exclude, abs)
		}
	}
	return m
}

func (m matcher) match(path string, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := m.extensions[strings.ToLower(filepath.Ext(name))]; !ok {
		return false
	}
	if len(m.exclude) > 0 {
		if abs, err := filepath.Abs(path); err == nil && slices.Contains(m.exclude, abs) {
			return false
		}
	}
	return true
}

func walkFlat(root string, m matcher, yield func(MediaFile, error) bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		yield(MediaFile{}, services.Wrap(services.ErrValidation, "scan", "read dir", root, err))
		return
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if !m.match(path, entry.Name()) {
			continue
		}
		if !yield(NewMediaFile(path), nil) {
			return
		}
	}
}

var errStop = errors.New("stop walk")

func walkTree(root string, m matcher, yield func(MediaFile, error) bool) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if !yield(MediaFile{}, services.Wrap(services.ErrValidation, "scan", "walk", path, err)) {
				return errStop
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if SkipDir(root, path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !m.match(path, d.Name()) {
			return nil
		}
		if !yield(NewMediaFile(path), nil) {
			return errStop
		}
		return nil
	})
}
