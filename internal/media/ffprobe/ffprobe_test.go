package ffprobe

import (
	"math"
	"testing"
	"time"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.4567"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.4567 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if got := result.Duration(); got != 123457*time.Millisecond {
		t.Fatalf("unexpected rounded duration: %v", got)
	}
}

func TestDurationFallsBackToAudioStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "4.5"},
			{CodecType: "audio", Duration: "9.25"},
			{CodecType: "video", Duration: "100"},
		},
	}
	if got := result.Duration(); got != 9250*time.Millisecond {
		t.Fatalf("expected longest audio stream duration, got %v", got)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.Duration() != 0 {
		t.Fatalf("expected zero duration for invalid input, got %v", result.Duration())
	}
}

func TestParse(t *testing.T) {
	payload := []byte(`{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac","channels":2}],"format":{"duration":"61.000000","format_name":"mov,mp4,m4a"}}`)
	result, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Format.FormatName != "mov,mp4,m4a" {
		t.Fatalf("unexpected format name %q", result.Format.FormatName)
	}
	if result.Duration() != 61*time.Second {
		t.Fatalf("unexpected duration %v", result.Duration())
	}
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestArgsTerminateOptions(t *testing.T) {
	args := Args("-weird.m4a")
	if args[len(args)-2] != "--" || args[len(args)-1] != "-weird.m4a" {
		t.Fatalf("expected path after --, got %v", args)
	}
}
