package fingerprint_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidemovie/internal/fingerprint"
)

func TestTextIsStableAndPrefixed(t *testing.T) {
	a := fingerprint.Text("hello")
	b := fingerprint.Text("hello")
	if a != b {
		t.Fatalf("expected stable digest, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, fingerprint.Prefix) {
		t.Fatalf("expected prefix %q, got %q", fingerprint.Prefix, a)
	}
	if want := "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"; a != want {
		t.Fatalf("unexpected digest: got %q want %q", a, want)
	}
	if fingerprint.Text("hello ") == a {
		t.Fatal("expected different digest for different text")
	}
}

func TestFileMatchesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := fingerprint.File(path)
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	if got != fingerprint.Text("hello") {
		t.Fatalf("file digest %q does not match text digest", got)
	}
}

func TestFileMissing(t *testing.T) {
	_, err := fingerprint.File(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, fingerprint.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestSequenceMissingMarker(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp4")
	if err := os.WriteFile(a, []byte("aaa"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []fingerprint.SequenceEntry{{ID: "a", Path: a}, {ID: "b", Path: b}}
	first, err := fingerprint.Sequence(entries)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	second, err := fingerprint.Sequence(entries)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected stable digest with a hole, got %q and %q", first, second)
	}
	if want := fingerprint.Text("aaab:missing"); first != want {
		t.Fatalf("unexpected sequence digest: got %q want %q", first, want)
	}

	if err := os.WriteFile(b, []byte("bbb"), 0o644); err != nil {
		t.Fatal(err)
	}
	filled, err := fingerprint.Sequence(entries)
	if err != nil {
		t.Fatalf("Sequence returned error: %v", err)
	}
	if filled == first {
		t.Fatal("expected digest to change once the missing file appears")
	}
}

func TestSequenceOrderMatters(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	_ = os.WriteFile(a, []byte("one"), 0o644)
	_ = os.WriteFile(b, []byte("two"), 0o644)

	ab, _ := fingerprint.Sequence([]fingerprint.SequenceEntry{{ID: "a", Path: a}, {ID: "b", Path: b}})
	ba, _ := fingerprint.Sequence([]fingerprint.SequenceEntry{{ID: "b", Path: b}, {ID: "a", Path: a}})
	if ab == ba {
		t.Fatal("expected order to affect digest")
	}
}

func TestValue(t *testing.T) {
	type sample struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	a, err := fingerprint.Value(sample{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	b, _ := fingerprint.Value(sample{Width: 1280, Height: 720})
	c, _ := fingerprint.Value(sample{Width: 1920, Height: 1080})
	if a != b {
		t.Fatal("expected equal values to share a digest")
	}
	if a == c {
		t.Fatal("expected different values to differ")
	}
}
