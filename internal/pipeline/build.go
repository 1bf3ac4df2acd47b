package pipeline

import (
	"context"
	"errors"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/logging"
	"slidemovie/internal/slides"
)

func (b *Builder) checkBuildDeps() error {
	switch {
	case b.deps.Synthesizer == nil:
		return errors.New("pipeline: no synthesizer configured")
	case b.deps.Rasterizer == nil:
		return errors.New("pipeline: no rasterizer configured")
	case b.deps.Transcoder == nil:
		return errors.New("pipeline: no transcoder configured")
	case b.deps.Prober == nil:
		return errors.New("pipeline: no prober configured")
	}
	return nil
}

// Build produces the project video. Identifiers are injected and the source
// parsed before the state file is touched, so a duplicate identifier never
// reaches the store. Fatal conditions (empty notes, exhausted synthesis,
// nothing to concatenate, configuration mismatch) end the build with an
// error; missing assets and per-slide transcode failures are recorded as
// warnings or failures and the build continues.
func (b *Builder) Build(ctx context.Context) (summary Summary, err error) {
	r := b.startRun(ctx, "video")
	defer func() {
		r.finish(err)
		summary = *r.summary
	}()
	if err := b.checkBuildDeps(); err != nil {
		return summary, err
	}

	parsed, err := b.prepareSource(r.logger)
	if err != nil {
		return summary, err
	}
	r.logger.Info("narration parsed",
		logging.String(logging.FieldEventType, "source_parsed"),
		logging.Int("slides", len(parsed)),
	)

	store, err := b.openStore()
	if err != nil {
		return summary, err
	}
	defer store.Close()
	if err := store.Load(r.ctx, b.deps.Resolver); err != nil {
		return summary, err
	}
	if _, err := store.Sync(parsed); err != nil {
		return summary, err
	}

	stages := []func(*run, *buildstate.Store, []slides.Slide) error{
		b.buildAudio,
		b.buildImages,
		b.buildVideos,
		b.buildFinal,
		b.writeReport,
	}
	for _, stage := range stages {
		if err := stage(r, store, parsed); err != nil {
			return summary, err
		}
	}
	return summary, nil
}
