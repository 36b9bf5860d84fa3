package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediascribe/internal/config"
	"mediascribe/internal/history"
	"mediascribe/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HF_TOKEN", "")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestTranscribeNoMatchingFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, filepath.Join(env.cfg.Paths.SourceDir, "readme.txt"), "x")

	_, _, err := runCLI(t, []string{"transcribe"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no matching files") {
		t.Fatalf("expected no matching files error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.SourceDir, "combined.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("combined output must not be written, stat err=%v", statErr)
	}
}

func TestTranscribeMissingDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "nowhere")
	_, _, err := runCLI(t, []string{"transcribe", missing}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestTranscribeRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"transcribe", "--mode", "vtt"}, "transcribe.output_mode"},
		{[]string{"transcribe", "--format", "flac"}, "transcribe.intermediate_format"},
		{[]string{"transcribe", "--headroom-db", "3"}, "normalize_headroom_db"},
		{[]string{"transcribe", "--language", "klingon"}, "--language"},
		{[]string{"transcribe", "--engine", "cloud"}, "api_key"},
	}
	for _, tc := range cases {
		_, _, err := runCLI(t, tc.args, env.configPath)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%v: expected error containing %q, got %v", tc.args, tc.want, err)
		}
	}
}

func TestCombineCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	root := env.cfg.Paths.SourceDir
	testsupport.WriteText(t, filepath.Join(root, "part_10.txt"), "ten")
	testsupport.WriteText(t, filepath.Join(root, "part_9.txt"), "nine")

	out, _, err := runCLI(t, []string{"combine", root, "--output", "all"}, env.configPath)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	requireContains(t, out, "Combined 2 files")
	got := testsupport.ReadText(t, filepath.Join(root, "all.txt"))
	if want := "\n\n --part_9-- \n\nnine\n\n --part_10-- \n\nten"; got != want {
		t.Fatalf("unexpected combined output %q", got)
	}

	_, _, err = runCLI(t, []string{"combine", root, "--kind", "srt"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "nothing to combine") {
		t.Fatalf("expected nothing to combine error, got %v", err)
	}
}

func TestTagCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	notes := filepath.Join(env.baseDir, "vault")
	note := filepath.Join(notes, "n.md")
	testsupport.WriteText(t, note, "body\n")

	out, _, err := runCLI(t, []string{"tag", "add", notes, "#Crime", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("tag add --dry-run: %v", err)
	}
	requireContains(t, out, "Would update 1 of 1 notes")
	if got := testsupport.ReadText(t, note); got != "body\n" {
		t.Fatalf("dry run wrote %q", got)
	}

	out, _, err = runCLI(t, []string{"tag", "add", notes, "#Crime"}, env.configPath)
	if err != nil {
		t.Fatalf("tag add: %v", err)
	}
	requireContains(t, out, "Updated 1 of 1 notes")
	if got := testsupport.ReadText(t, note); got != "---\ntags:\n  - Crime\n---\nbody\n" {
		t.Fatalf("unexpected note %q", got)
	}

	out, _, err = runCLI(t, []string{"tag", "remove", notes, "Crime"}, env.configPath)
	if err != nil {
		t.Fatalf("tag remove: %v", err)
	}
	requireContains(t, out, "Updated 1 of 1 notes")
	if got := testsupport.ReadText(t, note); got != "body\n" {
		t.Fatalf("unexpected note after remove %q", got)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "English")
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failing check:\n%s", out)
	}
}

func TestStatusCommandReportsMissingKey(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries(), testsupport.WithEngine(config.EngineCloud))
	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err == nil {
		t.Fatalf("expected failing status, got output %s", out)
	}
	requireContains(t, out, `"passed": false`)
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	ctx := context.Background()
	if err := store.BeginRun(ctx, history.Run{ID: "run-abc", SourceDir: "/audio", Engine: "whisperx", Mode: "text"}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordItem(ctx, history.Item{RunID: "run-abc", SourcePath: "/audio/a.m4a", OutputPath: "/audio/a.txt", Outcome: "written"}); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "run-abc", history.Totals{Written: 1}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "run-abc")
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"history", "--run", "run-abc"}, env.configPath)
	if err != nil {
		t.Fatalf("history --run: %v", err)
	}
	requireContains(t, out, "/audio/a.txt")
}
