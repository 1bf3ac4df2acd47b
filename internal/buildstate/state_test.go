package buildstate

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSlideMapEncodesInSlideOrder(t *testing.T) {
	m := SlideMap{
		"p-03":  {SlideIndex: 1, Title: "first"},
		"p-01":  {SlideIndex: 3, Title: "third"},
		"p-02":  {SlideIndex: 2, Title: "second"},
		"stale": {Title: "no index"},
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	order := []string{`"p-03"`, `"p-02"`, `"p-01"`, `"stale"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		if idx <= last {
			t.Fatalf("key %s out of order in %s", key, out)
		}
		last = idx
	}
}

func TestEncodeKeepsLiteralCharacters(t *testing.T) {
	st := &State{
		SchemaVersion: SchemaVersion,
		ProjectID:     "p",
		Slides: SlideMap{
			"p-01": {SlideIndex: 1, Title: "日本語 <b> & more"},
		},
	}
	data, err := encode(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"title": "日本語 <b> & more"`) {
		t.Fatalf("expected literal title, got:\n%s", out)
	}
	if !strings.Contains(out, "\n  \"project_id\": \"p\"") {
		t.Fatalf("expected two space indentation, got:\n%s", out)
	}
	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Slides["p-01"].Title != "日本語 <b> & more" {
		t.Fatalf("unexpected title after decode: %q", back.Slides["p-01"].Title)
	}
}

func TestTaskGenerated(t *testing.T) {
	task := Task{Status: StatusGenerated, SourceFingerprint: "sha256:a"}
	if !task.Generated("sha256:a") {
		t.Fatal("expected matching task to report generated")
	}
	if task.Generated("sha256:b") {
		t.Fatal("fingerprint mismatch must not report generated")
	}
	task.Status = StatusMissing
	if task.Generated("sha256:a") {
		t.Fatal("missing task must not report generated")
	}
}

func TestDiffBuildListsChangedKeys(t *testing.T) {
	a := BuildConfig{Screen: ScreenConfig{Width: 1280, Height: 720}, Video: VideoConfig{FPS: 30}}
	b := a
	b.Screen.Width = 1920
	b.Video.FPS = 60
	changes := DiffBuild(a, b)
	if len(changes) != 2 {
		t.Fatalf("expected two changes, got %v", changes)
	}
	if changes[0].Key != "screen.width" || changes[0].Stored != "1280" || changes[0].Current != "1920" {
		t.Fatalf("unexpected first change: %+v", changes[0])
	}
	if changes[1].Key != "video.fps" {
		t.Fatalf("unexpected second change: %+v", changes[1])
	}
}
