package pipeline

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"slidemovie/internal/config"
	"slidemovie/internal/project"
	"slidemovie/internal/testsupport"
)

const twoSlides = `<!-- slide-id: demo-01 -->
# Intro

::: notes
Hello there.
:::

<!-- slide-id: demo-02 -->
# Second

::: notes
Second slide notes.
:::
`

type harness struct {
	t      *testing.T
	cfg    *config.Config
	layout project.Layout
	synth  *testsupport.FakeSynthesizer
	trans  *testsupport.FakeTranscoder
	prober testsupport.FakeProber
	raster *testsupport.FakeRasterizer
	conv   *testsupport.FakeConverter
	rec    *testsupport.MemoryRecorder
	sleeps []time.Duration
	runs   int
}

func newHarness(t *testing.T, source string, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	src := filepath.Join(testsupport.BaseDir(cfg), "src")
	layout, err := project.Resolve(project.Request{
		Name:       "demo",
		SourceDir:  src,
		ConfigRoot: cfg.Paths.OutputRoot,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	testsupport.WriteFile(t, layout.Narration, source)
	testsupport.WriteFile(t, layout.Deck, "deck-v1")
	return &harness{
		t:      t,
		cfg:    cfg,
		layout: layout,
		synth:  &testsupport.FakeSynthesizer{},
		trans:  &testsupport.FakeTranscoder{},
		prober: testsupport.FakeProber{Seconds: 3},
		raster: &testsupport.FakeRasterizer{Pages: 2},
		conv:   &testsupport.FakeConverter{},
		rec:    &testsupport.MemoryRecorder{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Synthesizer: h.synth,
		Rasterizer:  h.raster,
		Transcoder:  h.trans,
		Prober:      h.prober,
		Converter:   h.conv,
		Recorder:    h.rec,
	}
}

func (h *harness) builder(opts ...Option) *Builder {
	return h.builderWith(h.deps(), opts...)
}

func (h *harness) builderWith(deps Deps, opts ...Option) *Builder {
	base := []Option{
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }),
		WithRunIDs(func() string {
			h.runs++
			return fmt.Sprintf("run-%d", h.runs)
		}),
		WithSleeper(func(d time.Duration) { h.sleeps = append(h.sleeps, d) }),
	}
	return New(*h.cfg, h.layout, deps, append(base, opts...)...)
}

func (h *harness) writeSource(content string) {
	h.t.Helper()
	testsupport.WriteFile(h.t, h.layout.Narration, content)
}
