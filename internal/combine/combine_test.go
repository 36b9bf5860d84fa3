package combine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mediascribe/internal/logging"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSortOrdersByNumericSuffix(t *testing.T) {
	paths := []string{
		"/r/notes.txt",
		"/r/clip_10.txt",
		"/r/b/clip_2.txt",
		"/r/clip_01.txt",
		"/r/a/clip_2.txt",
		"/r/intro.txt",
		"/r/clip_99999999999999999999999.txt",
	}
	Sort(paths)
	want := []string{
		"/r/clip_01.txt",
		"/r/a/clip_2.txt",
		"/r/b/clip_2.txt",
		"/r/clip_10.txt",
		"/r/clip_99999999999999999999999.txt",
		"/r/intro.txt",
		"/r/notes.txt",
	}
	if !slices.Equal(paths, want) {
		t.Fatalf("unexpected order:\n%v\nwant:\n%v", paths, want)
	}
}

func TestSortKey(t *testing.T) {
	tests := []struct {
		path      string
		hasNumber bool
		number    string
	}{
		{"clip_01.txt", true, "1"},
		{"clip_000.srt", true, "0"},
		{"2024-lecture.txt", false, ""},
		{"take7.txt", true, "7"},
		{"plain.txt", false, ""},
	}
	for _, tt := range tests {
		key := SortKey(tt.path)
		if key.HasNumber != tt.hasNumber || key.Number != tt.number {
			t.Errorf("SortKey(%q) = %#v", tt.path, key)
		}
	}
}

func TestRunTextOrdersWithTitleMarkers(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "clip_10.txt"), "ten")
	write(t, filepath.Join(root, "clip_01.txt"), "one")
	write(t, filepath.Join(root, "clip_2.txt"), "two")

	result, err := Run(context.Background(), Options{Root: root, Kind: KindText, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(result.Output)
	if err != nil {
		t.Fatal(err)
	}
	want := "\n\n --clip_01-- \n\none" + "\n\n --clip_2-- \n\ntwo" + "\n\n --clip_10-- \n\nten"
	if string(data) != want {
		t.Fatalf("unexpected combined text:\n%q\nwant:\n%q", data, want)
	}
	if filepath.Base(result.Output) != "combined.txt" {
		t.Fatalf("unexpected output name %s", result.Output)
	}

	// A rerun must not fold the previous combined file back in.
	if _, err := Run(context.Background(), Options{Root: root, Kind: KindText}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	again, _ := os.ReadFile(result.Output)
	if string(again) != want {
		t.Fatalf("rerun changed output:\n%q", again)
	}
}

func TestRunRecursiveIncludesCategorized(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "categorized", "lecture", "lecture_2.txt"), "b")
	write(t, filepath.Join(root, "categorized", "lecture", "lecture_1.txt"), "a")
	write(t, filepath.Join(root, "top_3.txt"), "c")

	result, err := Run(context.Background(), Options{Root: root, Recursive: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Included) != 3 {
		t.Fatalf("expected 3 included files, got %v", result.Included)
	}
	data, _ := os.ReadFile(result.Output)
	if !strings.HasSuffix(string(data), "a\n\n --lecture_2-- \n\nb\n\n --top_3-- \n\nc") {
		t.Fatalf("unexpected combined text %q", data)
	}
}

func TestRunSRTRenumbersCues(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "ep_1.srt"), "1\n00:00:00,000 --> 00:00:03,000\nfirst\n\n2\n00:00:03,000 --> 00:00:06,000\nsecond\n\n")
	write(t, filepath.Join(root, "ep_2.srt"), "1\n00:00:00,000 --> 00:00:03,000\nthird\n")

	result, err := Run(context.Background(), Options{Root: root, Kind: "SRT", OutputName: "all"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if filepath.Base(result.Output) != "all.srt" {
		t.Fatalf("unexpected output %s", result.Output)
	}
	data, _ := os.ReadFile(result.Output)
	want := "--ep_1--\n\n" +
		"1\n00:00:00,000 --> 00:00:03,000\nfirst\n\n" +
		"2\n00:00:03,000 --> 00:00:06,000\nsecond\n\n" +
		"--ep_2--\n\n" +
		"3\n00:00:00,000 --> 00:00:03,000\nthird\n\n"
	if string(data) != want {
		t.Fatalf("unexpected combined srt:\n%q\nwant:\n%q", data, want)
	}
}

func TestRunNothingToCombine(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "audio.m4a"), "x")
	_, err := Run(context.Background(), Options{Root: root})
	if !errors.Is(err, ErrNothingToCombine) {
		t.Fatalf("expected ErrNothingToCombine, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "combined.txt")); !os.IsNotExist(err) {
		t.Fatal("expected no combined file to be written")
	}
}

func TestRunSkipsUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	root := t.TempDir()
	write(t, filepath.Join(root, "a_1.txt"), "one")
	locked := filepath.Join(root, "a_2.txt")
	write(t, locked, "two")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	result, err := Run(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != locked {
		t.Fatalf("expected locked file skipped, got %v", result.Skipped)
	}
	data, _ := os.ReadFile(result.Output)
	if string(data) != "\n\n --a_1-- \n\none" {
		t.Fatalf("unexpected combined text %q", data)
	}
}

func TestRunRejectsUnknownKind(t *testing.T) {
	if _, err := Run(context.Background(), Options{Root: t.TempDir(), Kind: "vtt"}); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}
