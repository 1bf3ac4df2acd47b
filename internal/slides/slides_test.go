package slides_test

import (
	"errors"
	"testing"

	"slidemovie/internal/slides"
)

const sampleSource = `---
title: Demo
---

<!-- slide-id: demo-01 -->
# Introduction

::: notes
  Hello there.

  This is the first slide.
:::

<!-- slide-id: demo-02 -->
<!-- video-file: clip.mp4 -->
# Demo clip
## Subheading

<!-- slide-id: demo-03 -->
# Summary
::: notes
Thanks for watching.
:::
`

func TestParseSlides(t *testing.T) {
	got, err := slides.Parse(sampleSource)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected slide count: got %d want 3", len(got))
	}

	tests := []struct {
		id, title, notes, video string
		index                   int
	}{
		{id: "demo-01", title: "Introduction", notes: "Hello there.\n\n  This is the first slide.", index: 1},
		{id: "demo-02", title: "Demo clip", video: "clip.mp4", index: 2},
		{id: "demo-03", title: "Summary", notes: "Thanks for watching.", index: 3},
	}
	for i, tt := range tests {
		s := got[i]
		if s.ID != tt.id || s.Title != tt.title || s.Index != tt.index {
			t.Fatalf("slide %d: got %+v", i, s)
		}
		if s.Notes != tt.notes {
			t.Fatalf("slide %s notes: got %q want %q", s.ID, s.Notes, tt.notes)
		}
		if s.VideoOverride != tt.video {
			t.Fatalf("slide %s video: got %q want %q", s.ID, s.VideoOverride, tt.video)
		}
	}
	if !got[1].Prerendered() || got[0].Prerendered() {
		t.Fatal("unexpected pre-rendered classification")
	}
}

func TestParseDuplicateID(t *testing.T) {
	src := "<!-- slide-id: x -->\n# One\n\n<!-- slide-id: x -->\n# Two\n"
	_, err := slides.Parse(src)
	if !errors.Is(err, slides.ErrDuplicateSlideID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	var dup *slides.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateIDError, got %T", err)
	}
	if dup.ID != "x" || dup.FirstLine != 1 || dup.RepeatLine != 4 {
		t.Fatalf("unexpected duplicate detail: %+v", dup)
	}
}

func TestParseLastNotesBlockWins(t *testing.T) {
	src := "<!-- slide-id: a -->\n# A\n::: notes\nfirst\n:::\n::: notes\nsecond\n:::\n"
	got, err := slides.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Notes != "second" {
		t.Fatalf("unexpected notes: %q", got[0].Notes)
	}
}

func TestParseUnterminatedNotesAndCRLF(t *testing.T) {
	src := "<!-- slide-id: a -->\r\n# A\r\n::: notes\r\nline one\r\n<!-- slide-id: b -->\r\n# B\r\n::: notes\r\ntail\r\n"
	got, err := slides.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected slide count: %d", len(got))
	}
	if got[0].Notes != "line one" || got[1].Notes != "tail" {
		t.Fatalf("unexpected notes: %q %q", got[0].Notes, got[1].Notes)
	}
	if got[1].Title != "B" {
		t.Fatalf("unexpected title: %q", got[1].Title)
	}
}

func TestParseIgnoresHeadingsInsideNotes(t *testing.T) {
	src := "<!-- slide-id: a -->\n::: notes\n# not a title\n:::\n# Real\n"
	got, err := slides.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Title != "Real" {
		t.Fatalf("unexpected title: %q", got[0].Title)
	}
	if got[0].Notes != "# not a title" {
		t.Fatalf("unexpected notes: %q", got[0].Notes)
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "blank lines", in: "\n  \n\t\n", want: ""},
		{name: "trims lines", in: "  one  \n\n two\r\n", want: "one\ntwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slides.NormalizeNotes(tt.in); got != tt.want {
				t.Fatalf("unexpected normalized notes: got %q want %q", got, tt.want)
			}
		})
	}
}
