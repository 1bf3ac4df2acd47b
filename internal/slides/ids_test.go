package slides_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slidemovie/internal/slides"
)

func TestAssignIdentifiersRoundTrip(t *testing.T) {
	src := "# One\n\n::: notes\na\n:::\n\n# Two\n## Detail\n\n# Three\n"
	out, added, err := slides.AssignIdentifiers(src, "proj")
	if err != nil {
		t.Fatalf("AssignIdentifiers returned error: %v", err)
	}
	want := []string{"proj-01", "proj-02", "proj-03"}
	if strings.Join(added, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected ids: got %v want %v", added, want)
	}
	if !strings.HasPrefix(out, "<!-- slide-id: proj-01 -->\n# One\n") {
		t.Fatalf("unexpected output head: %q", out)
	}

	parsed, err := slides.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 3 || parsed[2].ID != "proj-03" || parsed[2].Title != "Three" {
		t.Fatalf("unexpected parse of injected source: %+v", parsed)
	}

	again, addedAgain, err := slides.AssignIdentifiers(out, "proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(addedAgain) != 0 || again != out {
		t.Fatalf("expected second pass to be a no-op, added %v", addedAgain)
	}
}

func TestAssignIdentifiersContinuesSequence(t *testing.T) {
	src := "<!-- slide-id: proj-07 -->\n# Seven\n\n<!-- slide-id: other-99 -->\n# Other\n\n# New\n"
	_, added, err := slides.AssignIdentifiers(src, "proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 1 || added[0] != "proj-08" {
		t.Fatalf("unexpected ids: %v", added)
	}
}

func TestAssignIdentifiersVideoMarkerCountsAsTagged(t *testing.T) {
	src := "<!-- slide-id: a -->\n<!-- video-file: clip.mp4 -->\n\n# Clip\n"
	out, added, err := slides.AssignIdentifiers(src, "proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 || out != src {
		t.Fatalf("expected no injection, got %v", added)
	}
}

func TestAssignIdentifiersPreservesCRLF(t *testing.T) {
	src := "# One\r\n::: notes\r\nhi\r\n:::\r\n"
	out, _, err := slides.AssignIdentifiers(src, "p")
	if err != nil {
		t.Fatal(err)
	}
	if want := "<!-- slide-id: p-01 -->\r\n# One\r\n::: notes\r\nhi\r\n:::\r\n"; out != want {
		t.Fatalf("unexpected output: got %q want %q", out, want)
	}
}

func TestAssignIdentifiersDuplicate(t *testing.T) {
	src := "<!-- slide-id: p-01 -->\n# A\n<!-- slide-id: p-01 -->\n# B\n"
	if _, _, err := slides.AssignIdentifiers(src, "p"); !errors.Is(err, slides.ErrDuplicateSlideID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestEnsureIdentifiersRewritesOnlyWhenNeeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.md")
	if err := os.WriteFile(path, []byte("# One\n\n# Two\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	added, err := slides.EnsureIdentifiers(path, "talk")
	if err != nil {
		t.Fatalf("EnsureIdentifiers returned error: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("unexpected ids: %v", added)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode to be preserved, got %o", info.Mode().Perm())
	}

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}
	added, err = slides.EnsureIdentifiers(path, "talk")
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 0 {
		t.Fatalf("expected no new ids, got %v", added)
	}
	info, err = os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(past) {
		t.Fatal("expected file to be left untouched on second run")
	}
}
