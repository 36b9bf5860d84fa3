package scan

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"mediascribe/internal/services"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func names(files []MediaFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.Base(f.Path))
	}
	slices.Sort(out)
	return out
}

func TestWalkFlatFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "lecture_01.m4a"))
	touch(t, filepath.Join(root, "lecture_02.MP3"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".hidden.m4a"))
	touch(t, filepath.Join(root, "sub", "deep.m4a"))

	seq, err := Walk(root, Options{Extensions: []string{".m4a", "mp3"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	files, err := Collect(seq)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	got := names(files)
	want := []string{"lecture_01.m4a", "lecture_02.MP3"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for _, f := range files {
		if f.Category != "lecture" {
			t.Fatalf("expected category lecture, got %q", f.Category)
		}
		if f.Ext != ".m4a" && f.Ext != ".mp3" {
			t.Fatalf("expected lower-case extension, got %q", f.Ext)
		}
	}
}

func TestWalkRecursiveSkipsOutputTree(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.m4a"))
	touch(t, filepath.Join(root, "sub", "b.m4a"))
	touch(t, filepath.Join(root, "categorized", "a", "c.m4a"))
	touch(t, filepath.Join(root, ".cache", "d.m4a"))

	seq, err := Walk(root, Options{Extensions: []string{".m4a"}, Recursive: true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	files, err := Collect(seq)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := names(files); !slices.Equal(got, []string{"a.m4a", "b.m4a"}) {
		t.Fatalf("unexpected files %v", got)
	}
}

func TestWalkExclude(t *testing.T) {
	root := t.TempDir()
	combined := filepath.Join(root, "combined.txt")
	touch(t, combined)
	touch(t, filepath.Join(root, "clip_1.txt"))

	seq, err := Walk(root, Options{Extensions: []string{".txt"}, Exclude: []string{combined}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	files, _ := Collect(seq)
	if got := names(files); !slices.Equal(got, []string{"clip_1.txt"}) {
		t.Fatalf("expected combined output excluded, got %v", got)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "missing"), Options{Extensions: []string{".m4a"}})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	file := filepath.Join(t.TempDir(), "file.m4a")
	touch(t, file)
	if _, err := Walk(file, Options{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for file root, got %v", err)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.m4a", "b.m4a", "c.m4a"} {
		touch(t, filepath.Join(root, name))
	}
	seq, err := Walk(root, Options{Extensions: []string{".m4a"}, Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected early break to stop the walk, saw %d", count)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"history_lecture_01", "history"},
		{"plain", "plain"},
		{"_leading", "_leading"},
		{"Café_talk", "Café"},
	}
	for _, tt := range tests {
		if got := Category(tt.stem); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}

func TestMatchesAndSkipDir(t *testing.T) {
	opts := Options{Extensions: []string{"m4a", ".MP3"}}
	cases := map[string]bool{
		"/src/a.m4a":       true,
		"/src/b.Mp3":       true,
		"/src/.hidden.m4a": false,
		"/src/a.txt":       false,
	}
	for path, want := range cases {
		if got := Matches(opts, path); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", path, got, want)
		}
	}
	if SkipDir("/src", "/src") {
		t.Fatal("root must not be skipped")
	}
	if !SkipDir("/src", "/src/categorized") || !SkipDir("/src", "/src/sub/.git") {
		t.Fatal("expected categorized and hidden dirs to be skipped")
	}
	if SkipDir("/src", "/src/sub") {
		t.Fatal("plain subdirectory should be walked")
	}
}
