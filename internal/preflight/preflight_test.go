package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidemovie/internal/config"
	"slidemovie/internal/deps"
	"slidemovie/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTTSCredentials(t *testing.T) {
	cfg := config.Default()
	if CheckTTSCredentials(&cfg).Passed {
		t.Fatal("expected failure without api key")
	}
	if result := CheckTTSCredentials(&cfg); !strings.Contains(result.Detail, "GEMINI_API_KEY") {
		t.Fatalf("expected the google key hint, got %q", result.Detail)
	}
	cfg.TTS.APIKey = "sk-test"
	if result := CheckTTSCredentials(&cfg); !result.Passed {
		t.Fatalf("expected pass with api key, got %q", result.Detail)
	}
	cfg.TTS.Provider = config.ProviderOpenAI
	cfg.TTS.APIKey = ""
	if result := CheckTTSCredentials(&cfg); result.Passed || !strings.Contains(result.Detail, "OPENAI_API_KEY") {
		t.Fatalf("expected the openai key hint, got %+v", result)
	}
	cfg.TTS.Provider = "espeak"
	if result := CheckTTSCredentials(&cfg); result.Passed || !strings.Contains(result.Detail, "unsupported") {
		t.Fatalf("expected unsupported provider failure, got %+v", result)
	}
}

func TestFromStatusOptional(t *testing.T) {
	result := FromStatus(deps.Status{Requirement: deps.Requirement{Name: "Pandoc", Optional: true}, Detail: `binary "pandoc" not found`})
	if !result.Passed || !strings.HasSuffix(result.Detail, "(optional)") {
		t.Fatalf("unexpected optional result: %+v", result)
	}
	result = FromStatus(deps.Status{Requirement: deps.Requirement{Name: "FFmpeg"}, Detail: "missing"})
	if result.Passed {
		t.Fatal("required missing tool must fail")
	}
}

func TestRunAllReportsMissingTools(t *testing.T) {
	cfg := config.Default()
	cfg.TTS.APIKey = "sk-test"
	cfg.Tools.FFmpeg = "definitely-missing-ffmpeg"

	results := RunAll(&cfg, Targets{SourceDir: t.TempDir()})
	var sawFFmpeg bool
	for _, r := range Failed(results) {
		if r.Name == "FFmpeg" {
			sawFFmpeg = true
		}
		if r.Name == "Source directory" || r.Name == "Pandoc" {
			t.Fatalf("unexpected failure: %+v", r)
		}
	}
	if !sawFFmpeg {
		t.Fatalf("expected ffmpeg failure in %+v", results)
	}
}

func TestRunAllPassesWithStubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	results := RunAll(cfg, Targets{SourceDir: testsupport.BaseDir(cfg), OutputRoot: cfg.Paths.OutputRoot})
	if failed := Failed(results); len(failed) > 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	for _, r := range results {
		if r.Name == "FFmpeg" && !strings.HasSuffix(r.Detail, "ffmpeg") {
			t.Fatalf("ffmpeg should resolve to the stub, got %q", r.Detail)
		}
	}
}
