package main

import (
	"io"
	"strings"
	"testing"

	"slidemovie/internal/history"
	"slidemovie/internal/pipeline"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "binary \"ffmpeg\" not found", false)
	want := "  FFmpeg:            [ERROR] binary \"ffmpeg\" not found"
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Video", statusOK, "", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("unexpected colouring: %q", got)
	}
	if !strings.Contains(got, "[OK]") {
		t.Fatalf("missing label: %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderSummary(t *testing.T) {
	summary := pipeline.Summary{
		Status: history.RunSucceeded,
		Total:  pipeline.Counts{Generated: 3, Warnings: 1},
		ByStage: map[string]pipeline.Counts{
			pipeline.StageAudio: {Generated: 2},
			pipeline.StageVideo: {Generated: 1, Warnings: 1},
		},
		VideoFile:   "/out/demo/demo.mp4",
		DurationSec: 90,
		Slides:      1,
	}
	out := renderSummary(summary, false)
	for _, want := range []string{"audio", "video", "/out/demo/demo.mp4 (1 slides, 1.5 min)", "1 warning(s)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "images") {
		t.Fatalf("stage without units rendered:\n%s", out)
	}
	if strings.Index(out, "audio") > strings.Index(out, "video") {
		t.Fatalf("stages out of order:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, 1)
	if !strings.Contains(out, "only") || strings.Count(out, "\n") < 4 {
		t.Fatalf("table:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatalf("table without headers should be empty")
	}
}
