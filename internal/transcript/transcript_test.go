package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediascribe/internal/config"
	"mediascribe/internal/scan"
	"mediascribe/internal/services"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00,000"},
		{3661000, "01:01:01,000"},
		{3000, "00:00:03,000"},
		{59_999, "00:00:59,999"},
		{36_000_000 * 3, "30:00:00,000"},
		{-5, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.ms); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestRenderSRTSkipsBlankSegments(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 3 * time.Second, Text: "first"},
		{Start: 3 * time.Second, End: 6 * time.Second, Text: "  "},
		{Start: 6 * time.Second, End: 7500 * time.Millisecond, Text: " third "},
	}
	want := "1\n00:00:00,000 --> 00:00:03,000\nfirst\n\n" +
		"2\n00:00:06,000 --> 00:00:07,500\nthird\n\n"
	if got := RenderSRT(segments); got != want {
		t.Fatalf("unexpected SRT:\n%q\nwant:\n%q", got, want)
	}
}

func TestParseSRTRoundTrip(t *testing.T) {
	content := "\ufeff1\r\n00:00:00,000 --> 00:00:03,000\r\nhello\r\nworld\r\n\r\n2\r\n00:00:03,000 --> 00:00:06,000\r\nagain\r\n"
	cues := ParseSRT(content)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Timing != "00:00:00,000 --> 00:00:03,000" || len(cues[0].Lines) != 2 {
		t.Fatalf("unexpected first cue %#v", cues[0])
	}
	var b strings.Builder
	next := RenderCues(&b, cues, 7)
	if next != 9 {
		t.Fatalf("expected next index 9, got %d", next)
	}
	if !strings.HasPrefix(b.String(), "7\n00:00:00,000 --> 00:00:03,000\nhello\nworld\n\n8\n") {
		t.Fatalf("unexpected renumbered output %q", b.String())
	}
}

func TestParseSRTDropsMalformedBlocks(t *testing.T) {
	cues := ParseSRT("garbage\n\n00:00:01,000 --> 00:00:02,000\nno index\n")
	if len(cues) != 1 || cues[0].Lines[0] != "no index" {
		t.Fatalf("unexpected cues %#v", cues)
	}
}

func TestOutputPath(t *testing.T) {
	root := "/data/audio"
	file := scan.NewMediaFile("/data/audio/sub/history_week_01.m4a")

	if got := OutputPath(root, file, config.ModeText, false); got != "/data/audio/sub/history_week_01.txt" {
		t.Fatalf("unexpected beside-source path %q", got)
	}
	if got := OutputPath(root, file, config.ModeSRT, true); got != "/data/audio/categorized/history/history_week_01.srt" {
		t.Fatalf("unexpected categorized path %q", got)
	}
	odd := scan.MediaFile{Path: "/data/audio/x.m4a", Category: ".."}
	if got := OutputPath(root, odd, config.ModeText, true); got != "/data/audio/categorized/uncategorized/x.txt" {
		t.Fatalf("unexpected fallback category path %q", got)
	}
}

func TestWriteTextCreatesDirectoriesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categorized", "clip", "clip_1.txt")
	if err := WriteText(path, "first"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := WriteText(path, "second"); err != nil {
		t.Fatalf("WriteText overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestWriteRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := WriteText(filepath.Join(dir, "a.txt"), "  \n"); !errors.Is(err, services.ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized for empty text, got %v", err)
	}
	if err := WriteSRT(filepath.Join(dir, "a.srt"), []Segment{{Text: ""}}); !errors.Is(err, services.ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized for empty srt, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files written, found %d", len(entries))
	}
}

func TestWriteTextCategoryDirFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "categorized")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := WriteText(filepath.Join(blocker, "clip", "clip_1.txt"), "text")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for uncreatable category dir, got %v", err)
	}
}
