package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"slidemovie/internal/history"
	"slidemovie/internal/services/tts"
)

// FakeSynthesizer writes "voice:<text>" for every request.
type FakeSynthesizer struct {
	mu       sync.Mutex
	Requests []tts.Request
	// Errs is consumed one per call before succeeding.
	Errs []error
}

// Synthesize implements tts.Synthesizer.
func (f *FakeSynthesizer) Synthesize(_ context.Context, req tts.Request, outPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if len(f.Errs) > 0 {
		err := f.Errs[0]
		f.Errs = f.Errs[1:]
		if err != nil {
			return err
		}
	}
	return os.WriteFile(outPath, []byte("voice:"+req.Text), 0o644)
}

// Texts returns the synthesized texts in call order.
func (f *FakeSynthesizer) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Requests))
	for _, r := range f.Requests {
		out = append(out, r.Text)
	}
	return out
}

// FakeTranscoder emulates ffmpeg with deterministic file contents derived
// from the inputs.
type FakeTranscoder struct {
	mu sync.Mutex
	// Fail maps output base names to the error returned when producing them.
	Fail         map[string]error
	Composed     []string
	Normalized   []string
	ConcatInputs []string
}

func (f *FakeTranscoder) failure(dst string) error {
	if f.Fail == nil {
		return nil
	}
	return f.Fail[filepath.Base(dst)]
}

// PrependSilence appends a marker to the narration file.
func (f *FakeTranscoder) PrependSilence(_ context.Context, path string, seconds float64) error {
	if err := f.failure(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(fmt.Sprintf("silence(%g)+", seconds)), data...), 0o644)
}

// NormalizeVideo writes the source contents behind a marker.
func (f *FakeTranscoder) NormalizeVideo(_ context.Context, src, dst string, hasAudio bool) error {
	f.mu.Lock()
	f.Normalized = append(f.Normalized, filepath.Base(dst))
	f.mu.Unlock()
	if err := f.failure(dst); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(fmt.Sprintf("normalized(audio=%t):%s", hasAudio, data)), 0o644)
}

// ComposeStill writes the image and narration contents together.
func (f *FakeTranscoder) ComposeStill(_ context.Context, image, narration, dst string) error {
	f.mu.Lock()
	f.Composed = append(f.Composed, filepath.Base(dst))
	f.mu.Unlock()
	if err := f.failure(dst); err != nil {
		return err
	}
	img, err := os.ReadFile(image)
	if err != nil {
		return err
	}
	wav, err := os.ReadFile(narration)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("clip["+string(img)+"|"+string(wav)+"]"), 0o644)
}

// Concat joins the inputs in order and records their base names.
func (f *FakeTranscoder) Concat(_ context.Context, inputs []string, manifestPath, dst string) error {
	f.mu.Lock()
	f.ConcatInputs = f.ConcatInputs[:0]
	for _, in := range inputs {
		f.ConcatInputs = append(f.ConcatInputs, filepath.Base(in))
	}
	f.mu.Unlock()
	if err := f.failure(dst); err != nil {
		return err
	}
	var b strings.Builder
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(manifestPath, []byte(strings.Join(inputs, "\n")), 0o644); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(b.String()), 0o644)
}

// FakeProber reports a fixed duration and audio presence.
type FakeProber struct {
	Seconds float64
	// Silent lists base names reported as having no audio stream.
	Silent map[string]bool
}

// Duration implements the pipeline prober.
func (f FakeProber) Duration(_ context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	if f.Seconds == 0 {
		return 1, nil
	}
	return f.Seconds, nil
}

// HasAudio implements the pipeline prober.
func (f FakeProber) HasAudio(_ context.Context, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, err
	}
	return !f.Silent[filepath.Base(path)], nil
}

// FakeRasterizer renders Pages images named slide-N.png whose contents carry
// the deck contents and page number.
type FakeRasterizer struct {
	Pages int
	Err   error
	Calls int
}

// Rasterize implements rasterizer.Rasterizer.
func (f *FakeRasterizer) Rasterize(_ context.Context, deck, workDir string) ([]string, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	data, err := os.ReadFile(deck)
	if err != nil {
		return nil, err
	}
	pages := make([]string, 0, f.Pages)
	for i := 1; i <= f.Pages; i++ {
		path := filepath.Join(workDir, fmt.Sprintf("slide-%d.png", i))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("page%d(%s)", i, data)), 0o644); err != nil {
			return nil, err
		}
		pages = append(pages, path)
	}
	return pages, nil
}

// FakeConverter writes "deck:<source contents>".
type FakeConverter struct {
	Err   error
	Calls int
}

// Convert implements pandoc.Converter.
func (f *FakeConverter) Convert(_ context.Context, source, _ string, out string) error {
	f.Calls++
	if f.Err != nil {
		return f.Err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return os.WriteFile(out, append([]byte("deck:"), data...), 0o644)
}

// MemoryRecorder keeps history in memory.
type MemoryRecorder struct {
	mu       sync.Mutex
	Runs     []history.Run
	Units    []history.Unit
	Finished map[string]history.RunStatus
}

// StartRun implements history.Recorder.
func (m *MemoryRecorder) StartRun(_ context.Context, run history.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, run)
	return nil
}

// RecordUnit implements history.Recorder.
func (m *MemoryRecorder) RecordUnit(_ context.Context, unit history.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Units = append(m.Units, unit)
	return nil
}

// FinishRun implements history.Recorder.
func (m *MemoryRecorder) FinishRun(_ context.Context, runID string, status history.RunStatus, _ string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Finished == nil {
		m.Finished = map[string]history.RunStatus{}
	}
	m.Finished[runID] = status
	return nil
}

// Outcomes returns the recorded outcomes for stage keyed by unit id.
func (m *MemoryRecorder) Outcomes(runID, stage string) map[string]history.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]history.Outcome{}
	for _, u := range m.Units {
		if u.RunID == runID && u.Stage == stage {
			out[u.UnitID] = u.Outcome
		}
	}
	return out
}
