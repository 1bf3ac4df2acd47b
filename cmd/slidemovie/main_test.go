package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/config"
	"slidemovie/internal/history"
	"slidemovie/internal/slides"
	"slidemovie/internal/testsupport"
)

type cliEnv struct {
	home       string
	configPath string
	calls      []invocation
	actionErr  error
}

func setupCLI(t *testing.T, configBody string) *cliEnv {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("SLIDEMOVIE_OUTPUT_ROOT", "")
	configPath := filepath.Join(base, "slidemovie.toml")
	testsupport.WriteFile(t, configPath, configBody)
	return &cliEnv{home: home, configPath: configPath}
}

// runCLI executes the command tree with the explicit test config and a
// recording action runner.
func (e *cliEnv) runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	cc := newCommandContext(strings.NewReader(stdin))
	cc.runActions = func(_ context.Context, _ *commandContext, inv invocation, _, _ io.Writer) error {
		e.calls = append(e.calls, inv)
		return e.actionErr
	}
	var stdout, stderr bytes.Buffer
	full := append([]string{"-c", e.configPath}, args...)
	code := execute(context.Background(), cc, full, cc.stdin, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestNoActionPrintsHelpAndExitsOne(t *testing.T) {
	env := setupCLI(t, "")
	for _, args := range [][]string{{}, {"demo"}, {"--video"}} {
		out, _, code := env.runCLI(t, "", args...)
		if code != 1 {
			t.Fatalf("args %v: exit code %d, want 1", args, code)
		}
		if !strings.Contains(out, "Usage:") {
			t.Fatalf("args %v: help not printed:\n%s", args, out)
		}
	}
	if len(env.calls) != 0 {
		t.Fatalf("actions ran without an action flag")
	}
}

func TestPPTXActionUsesFlatDefaults(t *testing.T) {
	env := setupCLI(t, "")
	if _, stderr, code := env.runCLI(t, "", "MyProject", "--pptx"); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if len(env.calls) != 1 {
		t.Fatalf("calls = %d", len(env.calls))
	}
	inv := env.calls[0]
	if !inv.Draft || inv.Build {
		t.Fatalf("actions = draft:%t build:%t", inv.Draft, inv.Build)
	}
	req := inv.Request
	if req.Name != "MyProject" || req.SourceDir != "." || req.Sub != "" || req.OutputRoot != "" || req.Filename != "" {
		t.Fatalf("request = %+v", req)
	}
}

func TestVideoActionWithSubprojectAndDebug(t *testing.T) {
	env := setupCLI(t, "")
	if _, stderr, code := env.runCLI(t, "", "ParentProj", "--sub", "ChildProj", "-v", "--debug", "-f", "final.mp4"); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	inv := env.calls[0]
	if !inv.Build || inv.Draft {
		t.Fatalf("actions = draft:%t build:%t", inv.Draft, inv.Build)
	}
	if inv.Request.Name != "ParentProj" || inv.Request.Sub != "ChildProj" || inv.Request.Filename != "final.mp4" {
		t.Fatalf("request = %+v", inv.Request)
	}
	if inv.Config.Tools.FFmpegLogLevel != "info" || !inv.Config.Logging.ShowSkip || inv.Config.Logging.Level != "debug" {
		t.Fatalf("debug overrides not applied: tools=%+v logging=%+v", inv.Config.Tools, inv.Config.Logging)
	}
}

func TestTTSOverrides(t *testing.T) {
	env := setupCLI(t, "[tts]\nuse_prompt = false\nprompt = \"stored\"\n")
	args := []string{"Proj", "--video", "--tts-provider", "OpenAI", "--tts-model", "tts-1", "--tts-voice", "nova", "--prompt", "Speak calmly."}
	if _, stderr, code := env.runCLI(t, "", args...); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	tts := env.calls[0].Config.TTS
	if tts.Provider != "openai" || tts.Model != "tts-1" || tts.Voice != "nova" {
		t.Fatalf("tts = %+v", tts)
	}
	if !tts.UsePrompt || tts.Prompt != "Speak calmly." {
		t.Fatalf("prompt override = %+v", tts)
	}

	if _, stderr, code := env.runCLI(t, "", "Proj", "--video", "--prompt", "x", "--no-prompt"); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if env.calls[1].Config.TTS.UsePrompt {
		t.Fatalf("--no-prompt did not win")
	}
}

func TestExitCodes(t *testing.T) {
	env := setupCLI(t, "")

	env.actionErr = buildstate.ErrAborted
	if _, stderr, code := env.runCLI(t, "", "Proj", "-v"); code != 0 || !strings.Contains(stderr, "Aborted") {
		t.Fatalf("abort: code=%d stderr=%q", code, stderr)
	}

	env.actionErr = errors.New("synthesis failed")
	if _, stderr, code := env.runCLI(t, "", "Proj", "-v"); code != 1 || !strings.Contains(stderr, "synthesis failed") {
		t.Fatalf("failure: code=%d stderr=%q", code, stderr)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	env := setupCLI(t, "[video]\nfps = 0\n")
	_, stderr, code := env.runCLI(t, "", "Proj", "-v")
	if code != 1 || stderr == "" {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if len(env.calls) != 0 {
		t.Fatalf("actions ran with invalid config")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLI(t, "")
	out, stderr, code := env.runCLI(t, "", "config", "validate")
	if code != 0 {
		t.Fatalf("config validate: %s", stderr)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("validate output:\n%s", out)
	}

	target := filepath.Join(t.TempDir(), "config.toml")
	out, stderr, code = env.runCLI(t, "", "config", "init", "--path", target)
	if code != 0 {
		t.Fatalf("config init: %s", stderr)
	}
	if !strings.Contains(out, "Wrote sample configuration") || !testsupport.Exists(target) {
		t.Fatalf("init output:\n%s", out)
	}
	if _, _, code := env.runCLI(t, "", "config", "init", "--path", target); code != 1 {
		t.Fatalf("init over existing file should fail")
	}
	if _, _, err := config.Load(target); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLI(t, "")
	src := t.TempDir()
	root := t.TempDir()
	cfg := config.Default()
	store, err := buildstate.Open(filepath.Join(src, "status.json"), "demo", buildstate.Settings{
		Build:         buildstate.NewBuildConfig(&cfg),
		TTS:           buildstate.NewTTSConfig(&cfg),
		NarrationFile: "demo.md",
		DeckFile:      "demo.pptx",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Load(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Sync([]slides.Slide{{ID: "demo-01", Index: 1, Title: "**Opening** remarks", Notes: "Hi."}}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	out, stderr, code := env.runCLI(t, "", "status", "demo", "-s", src, "-o", root)
	if code != 0 {
		t.Fatalf("status: %s", stderr)
	}
	for _, want := range []string{"Project demo", "demo-01", "Opening remarks", "Final video"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}

	out, _, code = env.runCLI(t, "", "status", "demo", "-s", src, "-o", root, "--json")
	if code != 0 || !strings.Contains(out, `"project_id": "demo"`) {
		t.Fatalf("json status (code %d):\n%s", code, out)
	}

	empty := t.TempDir()
	if _, stderr, code := env.runCLI(t, "", "status", "demo", "-s", empty, "-o", root); code != 1 || !strings.Contains(stderr, "no build recorded") {
		t.Fatalf("missing state: code=%d stderr=%q", code, stderr)
	}
}

func TestHistoryCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	env := setupCLI(t, "[paths]\nhistory_db = \""+dbPath+"\"\n")

	store, err := history.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	started := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if err := store.StartRun(ctx, history.Run{ID: "abcdef12-3456", ProjectID: "demo", Action: "video", Status: history.RunRunning, StartedAt: started}); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordUnit(ctx, history.Unit{RunID: "abcdef12-3456", Stage: "audio", UnitID: "demo-01", Outcome: history.OutcomeGenerated, RecordedAt: started}); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "abcdef12-3456", history.RunSucceeded, "", started.Add(90*time.Second)); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	out, stderr, code := env.runCLI(t, "", "history", "demo")
	if code != 0 {
		t.Fatalf("history: %s", stderr)
	}
	for _, want := range []string{"abcdef12", "video", "succeeded", "1m30s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history output missing %q:\n%s", want, out)
		}
	}

	out, stderr, code = env.runCLI(t, "", "history", "--run", "abcd")
	if code != 0 {
		t.Fatalf("history --run: %s", stderr)
	}
	if !strings.Contains(out, "demo-01") || !strings.Contains(out, "generated") {
		t.Fatalf("unit output:\n%s", out)
	}

	out, _, _ = env.runCLI(t, "", "history", "other")
	if !strings.Contains(out, "No runs recorded.") {
		t.Fatalf("filtered output:\n%s", out)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLI(t, "[paths]\nhistory_db = \"\"\n")
	if _, stderr, code := env.runCLI(t, "", "history"); code != 1 || !strings.Contains(stderr, "history_db") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}
