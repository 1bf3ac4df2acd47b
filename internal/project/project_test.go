package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slidemovie/internal/services"
)

func TestResolveFlatDefaultsRootUnderSource(t *testing.T) {
	src := t.TempDir()
	if err := os.Mkdir(filepath.Join(src, "movie"), 0o755); err != nil {
		t.Fatal(err)
	}
	layout, err := Resolve(Request{Name: "intro", SourceDir: src})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	checks := map[string][2]string{
		"project id":   {layout.ProjectID, "intro"},
		"narration":    {layout.Narration, filepath.Join(src, "intro.md")},
		"deck":         {layout.Deck, filepath.Join(src, "intro.pptx")},
		"artifact dir": {layout.ArtifactDir, filepath.Join(src, "movie", "intro")},
		"state":        {layout.StateFile, filepath.Join(src, "status.json")},
		"report":       {layout.ReportFile, filepath.Join(src, "video_length.csv")},
		"lock":         {layout.LockFile, filepath.Join(src, "movie", "intro", ".slidemovie.lock")},
		"video":        {layout.VideoFile, filepath.Join(src, "movie", "intro", "intro.mp4")},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Fatalf("unexpected %s: got %q want %q", name, pair[0], pair[1])
		}
	}
	if info, err := os.Stat(layout.ArtifactDir); err != nil || !info.IsDir() {
		t.Fatalf("expected artifact dir to be created: %v", err)
	}
}

func TestResolveNestedProject(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	layout, err := Resolve(Request{Name: "course", Sub: "week1", SourceDir: src, OutputRoot: root, Filename: "Lecture 1.mp4"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if layout.ProjectID != "course-week1" {
		t.Fatalf("unexpected project id: got %q", layout.ProjectID)
	}
	if want := filepath.Join(src, "week1", "week1.md"); layout.Narration != want {
		t.Fatalf("unexpected narration: got %q want %q", layout.Narration, want)
	}
	if want := filepath.Join(src, "week1", "status.json"); layout.StateFile != want {
		t.Fatalf("unexpected state file: got %q want %q", layout.StateFile, want)
	}
	if want := filepath.Join(root, "course", "week1", "Lecture 1.mp4"); layout.VideoFile != want {
		t.Fatalf("unexpected video file: got %q want %q", layout.VideoFile, want)
	}
	if _, err := os.Stat(filepath.Join(root, "course", "week1")); err != nil {
		t.Fatalf("expected nested artifact dirs: %v", err)
	}
}

func TestResolveRootPriority(t *testing.T) {
	src := t.TempDir()
	flagRoot := t.TempDir()
	configRoot := t.TempDir()

	layout, err := Resolve(Request{Name: "p", SourceDir: src, OutputRoot: flagRoot, ConfigRoot: configRoot, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if layout.OutputRoot != flagRoot {
		t.Fatalf("flag root should win: got %q", layout.OutputRoot)
	}
	layout, err = Resolve(Request{Name: "p", SourceDir: src, ConfigRoot: configRoot, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if layout.OutputRoot != configRoot {
		t.Fatalf("config root should be used: got %q", layout.OutputRoot)
	}
}

func TestResolveMissingRootIsConfigurationError(t *testing.T) {
	src := t.TempDir()
	_, err := Resolve(Request{Name: "p", SourceDir: src})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(src, "movie")); !os.IsNotExist(statErr) {
		t.Fatal("output root must not be created")
	}
}

func TestResolveRootMustBeDirectory(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "root")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(Request{Name: "p", SourceDir: src, OutputRoot: file}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestResolveReadOnlyCreatesNothing(t *testing.T) {
	root := t.TempDir()
	layout, err := Resolve(Request{Name: "p", SourceDir: t.TempDir(), OutputRoot: root, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(layout.ArtifactDir); !os.IsNotExist(err) {
		t.Fatalf("read-only resolve created %s", layout.ArtifactDir)
	}
}

func TestResolveRejectsEmptyName(t *testing.T) {
	if _, err := Resolve(Request{Name: "  "}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestArtifactJoinsArtifactDir(t *testing.T) {
	l := Layout{ArtifactDir: "/out/p"}
	if got := l.Artifact("s1.wav"); got != filepath.Join("/out/p", "s1.wav") {
		t.Fatalf("unexpected artifact path %q", got)
	}
}
