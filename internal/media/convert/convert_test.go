package convert

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/services"
)

type call struct {
	name string
	args []string
}

type scriptedRunner struct {
	calls   []call
	respond func(name string, args []string) ([]byte, error)
}

func (s *scriptedRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	s.calls = append(s.calls, call{name: name, args: append([]string(nil), args...)})
	if s.respond == nil {
		return nil, nil
	}
	return s.respond(name, args)
}

func newTestConverter(t *testing.T, runner *scriptedRunner) *Converter {
	t.Helper()
	c := New(config.Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}, logging.NewNop())
	c.WithRunner(runner.run)
	return c
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake media"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func containsSeq(args []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(args); i++ {
		match := true
		for j := range seq {
			if args[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestConvertNormalizesToHeadroom(t *testing.T) {
	src := writeSource(t, "lecture_01.m4a")
	outDir := t.TempDir()
	runner := &scriptedRunner{respond: func(_ string, args []string) ([]byte, error) {
		if containsSeq(args, "-af", "volumedetect") {
			return []byte("[Parsed_volumedetect_0 @ 0x1] mean_volume: -20.1 dB\n[Parsed_volumedetect_0 @ 0x1] max_volume: -6.5 dB\n"), nil
		}
		return nil, nil
	}}
	c := newTestConverter(t, runner)

	dest, err := c.Convert(context.Background(), src, Request{Format: config.FormatWAV, Dir: outDir, HeadroomDB: -1.0, Normalize: true})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if want := filepath.Join(outDir, "lecture_01.wav"); dest != want {
		t.Fatalf("unexpected destination %q, want %q", dest, want)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected volumedetect + convert calls, got %d", len(runner.calls))
	}
	convertArgs := runner.calls[1].args
	if !containsSeq(convertArgs, "-af", "volume=5.50dB") {
		t.Fatalf("expected +5.5 dB gain filter, got %v", convertArgs)
	}
	if !containsSeq(convertArgs, "-ac", "1", "-ar", "16000") {
		t.Fatalf("expected mono 16 kHz output, got %v", convertArgs)
	}
	if !containsSeq(convertArgs, "-c:a", "pcm_s16le") {
		t.Fatalf("expected pcm_s16le codec, got %v", convertArgs)
	}
	if convertArgs[len(convertArgs)-1] != dest {
		t.Fatalf("expected destination as final argument, got %v", convertArgs)
	}
}

func TestConvertMP3WithoutNormalization(t *testing.T) {
	src := writeSource(t, "talk.mp4")
	runner := &scriptedRunner{}
	c := newTestConverter(t, runner)

	dest, err := c.Convert(context.Background(), src, Request{Format: "MP3", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.HasSuffix(dest, "talk.mp3") {
		t.Fatalf("unexpected destination %q", dest)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected a single ffmpeg call, got %d", len(runner.calls))
	}
	args := runner.calls[0].args
	if !containsSeq(args, "-c:a", "libmp3lame") {
		t.Fatalf("expected libmp3lame codec, got %v", args)
	}
	for _, arg := range args {
		if arg == "-af" {
			t.Fatalf("did not expect audio filter without normalization: %v", args)
		}
	}
}

func TestConvertSilentInputSkipsGain(t *testing.T) {
	src := writeSource(t, "silence.m4a")
	runner := &scriptedRunner{respond: func(_ string, args []string) ([]byte, error) {
		if containsSeq(args, "-af", "volumedetect") {
			return []byte("max_volume: -inf dB\n"), nil
		}
		return nil, nil
	}}
	c := newTestConverter(t, runner)
	if _, err := c.Convert(context.Background(), src, Request{Dir: t.TempDir(), HeadroomDB: -1, Normalize: true}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, arg := range runner.calls[1].args {
		if strings.HasPrefix(arg, "volume=") {
			t.Fatalf("silent input should not get a gain filter: %v", runner.calls[1].args)
		}
	}
}

func TestConvertFailureWrapsExternalTool(t *testing.T) {
	src := writeSource(t, "broken.m4a")
	runner := &scriptedRunner{respond: func(string, []string) ([]byte, error) {
		return []byte("Invalid data found when processing input"), errors.New("exit status 1")
	}}
	c := newTestConverter(t, runner)

	_, err := c.Convert(context.Background(), src, Request{Dir: t.TempDir()})
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected ffmpeg output in error, got %v", err)
	}
}

func TestConvertMissingSource(t *testing.T) {
	c := newTestConverter(t, &scriptedRunner{})
	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "nope.m4a"), Request{Dir: t.TempDir()})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	c := newTestConverter(t, &scriptedRunner{})
	_, err := c.Convert(context.Background(), writeSource(t, "a.m4a"), Request{Format: "flac", Dir: t.TempDir()})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestExtractChunkArgs(t *testing.T) {
	runner := &scriptedRunner{}
	c := newTestConverter(t, runner)
	dest := filepath.Join(t.TempDir(), "chunk_0001.wav")

	if err := c.ExtractChunk(context.Background(), "/tmp/in.wav", 3*time.Second, 3000*time.Millisecond, dest); err != nil {
		t.Fatalf("ExtractChunk: %v", err)
	}
	args := runner.calls[0].args
	if !containsSeq(args, "-ss", "3.000", "-t", "3.000") {
		t.Fatalf("expected seek/duration args, got %v", args)
	}
	if err := c.ExtractChunk(context.Background(), "/tmp/in.wav", 0, 0, dest); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero duration, got %v", err)
	}
}

func TestDuration(t *testing.T) {
	runner := &scriptedRunner{respond: func(name string, _ []string) ([]byte, error) {
		if name != "ffprobe" {
			t.Fatalf("expected ffprobe call, got %s", name)
		}
		return []byte(`{"streams":[],"format":{"duration":"7.250000"}}`), nil
	}}
	c := newTestConverter(t, runner)
	got, err := c.Duration(context.Background(), "/tmp/in.wav")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 7250*time.Millisecond {
		t.Fatalf("unexpected duration %v", got)
	}
}

func TestDurationRejectsEmptyMedia(t *testing.T) {
	runner := &scriptedRunner{respond: func(string, []string) ([]byte, error) {
		return []byte(`{"streams":[],"format":{}}`), nil
	}}
	c := newTestConverter(t, runner)
	if _, err := c.Duration(context.Background(), "/tmp/in.wav"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestParseMaxVolume(t *testing.T) {
	tests := []struct {
		output string
		want   float64
		ok     bool
	}{
		{"max_volume: -3.2 dB", -3.2, true},
		{"max_volume: 0.0 dB", 0, true},
		{"[x] max_volume: -12 dB", -12, true},
		{"max_volume: -inf dB", math.Inf(-1), true},
		{"mean_volume: -20 dB", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMaxVolume(tt.output)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseMaxVolume(%q) = (%v, %v), want (%v, %v)", tt.output, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGain(t *testing.T) {
	if gain, ok := Gain(-6.5, -1); !ok || gain != 5.5 {
		t.Fatalf("expected +5.5 dB, got %v ok=%v", gain, ok)
	}
	if gain, ok := Gain(0, -1); !ok || gain != -1 {
		t.Fatalf("expected -1 dB attenuation for a clipping peak, got %v", gain)
	}
	if _, ok := Gain(math.Inf(-1), -1); ok {
		t.Fatal("expected silent input to report ok=false")
	}
}
