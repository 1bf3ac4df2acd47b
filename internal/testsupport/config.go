package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"slidemovie/internal/config"
)

// ConfigOption adjusts a generated test configuration.
type ConfigOption func(t testing.TB, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory: the output
// root <tmp>/movie exists, history is off, synthesis has a dummy key, and
// retry cooldowns are zero.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.TTS.APIKey = "test"
	cfg.TTS.RetryCooldownSeconds = 0
	cfg.Paths.OutputRoot = filepath.Join(t.TempDir(), "movie")
	cfg.Paths.HistoryDB = ""
	if err := os.MkdirAll(cfg.Paths.OutputRoot, 0o755); err != nil {
		t.Fatalf("mkdir output root: %v", err)
	}
	for _, opt := range opts {
		opt(t, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp directory backing cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputRoot)
}

// WithShowSkip enables per-unit skip logging.
func WithShowSkip() ConfigOption {
	return func(_ testing.TB, cfg *config.Config) {
		cfg.Logging.ShowSkip = true
	}
}

// WithHistory places the history database beside the output root.
func WithHistory() ConfigOption {
	return func(_ testing.TB, cfg *config.Config) {
		cfg.Paths.HistoryDB = filepath.Join(BaseDir(cfg), "history.db")
	}
}

// WithStubbedBinaries puts no-op executables for names first on PATH. With
// no names every tool slidemovie invokes is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, cfg *config.Config) {
		t.Helper()
		if len(names) == 0 {
			names = []string{cfg.Tools.FFmpeg, cfg.Tools.FFprobe, cfg.Tools.Soffice, cfg.Tools.Pdftoppm, cfg.Tools.Pandoc}
		}
		binDir := filepath.Join(BaseDir(cfg), "bin")
		for _, name := range names {
			WriteFile(t, filepath.Join(binDir, name), "#!/bin/sh\nexit 0\n")
			if err := os.Chmod(filepath.Join(binDir, name), 0o755); err != nil {
				t.Fatalf("chmod stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
