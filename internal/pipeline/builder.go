package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/config"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
	"slidemovie/internal/project"
	"slidemovie/internal/services"
	"slidemovie/internal/services/pandoc"
	"slidemovie/internal/services/rasterizer"
	"slidemovie/internal/services/tts"
	"slidemovie/internal/slides"
)

// Stage names used in logs, history, and summaries.
const (
	StageDeck   = "deck"
	StageAudio  = "audio"
	StageImages = "images"
	StageVideo  = "video"
	StageFinal  = "final"
	StageReport = "report"
)

var (
	// ErrEmptyNotes reports a synthesized slide without narration text.
	ErrEmptyNotes = errors.New("slide has no narration notes")
	// ErrNothingToConcat reports that no per-slide video exists.
	ErrNothingToConcat = errors.New("no slide videos to concatenate")
)

// Transcoder performs the media transforms of the video stages.
type Transcoder interface {
	PrependSilence(ctx context.Context, path string, seconds float64) error
	NormalizeVideo(ctx context.Context, src, dst string, hasAudio bool) error
	ComposeStill(ctx context.Context, image, narration, dst string) error
	Concat(ctx context.Context, inputs []string, manifestPath, dst string) error
}

// Prober reads media metadata.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
	HasAudio(ctx context.Context, path string) (bool, error)
}

// Deps are the collaborators a Builder drives. Converter is only needed by
// DraftDeck; the others only by Build. A nil Recorder disables history.
type Deps struct {
	Synthesizer tts.Synthesizer
	Rasterizer  rasterizer.Rasterizer
	Transcoder  Transcoder
	Prober      Prober
	Converter   pandoc.Converter
	Recorder    history.Recorder
	// Resolver decides synthesis configuration conflicts. Nil aborts.
	Resolver buildstate.ConflictResolver
}

// Builder runs actions for one project.
type Builder struct {
	cfg      config.Config
	layout   project.Layout
	deps     Deps
	logger   *slog.Logger
	now      func() time.Time
	newRunID func() string
	sleeper  func(time.Duration)
}

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRunIDs overrides run identifier generation.
func WithRunIDs(next func() string) Option {
	return func(b *Builder) {
		if next != nil {
			b.newRunID = next
		}
	}
}

// WithSleeper overrides how synthesis cooldowns wait (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(b *Builder) {
		b.sleeper = sleeper
	}
}

// New constructs a Builder. cfg is copied and never modified afterwards.
func New(cfg config.Config, layout project.Layout, deps Deps, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		layout:   layout,
		deps:     deps,
		logger:   logging.NewNop(),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.deps.Recorder == nil {
		b.deps.Recorder = history.Nop{}
	}
	if b.deps.Synthesizer != nil {
		b.deps.Synthesizer = tts.NewRetry(b.deps.Synthesizer, cfg.TTS.MaxAttempts, cfg.RetryCooldown(),
			tts.WithSleeper(b.sleeper),
			tts.WithLogger(logging.NewComponentLogger(b.logger, "tts")),
		)
	}
	return b
}

// Layout returns the project paths the builder works in.
func (b *Builder) Layout() project.Layout { return b.layout }

func (b *Builder) settings() buildstate.Settings {
	return buildstate.Settings{
		Build:         buildstate.NewBuildConfig(&b.cfg),
		TTS:           buildstate.NewTTSConfig(&b.cfg),
		NarrationFile: filepath.Base(b.layout.Narration),
		DeckFile:      filepath.Base(b.layout.Deck),
	}
}

func (b *Builder) openStore() (*buildstate.Store, error) {
	return buildstate.Open(b.layout.StateFile, b.layout.ProjectID, b.settings(),
		buildstate.WithClock(b.now),
		buildstate.WithLockFile(b.layout.LockFile),
		buildstate.WithLogger(logging.NewComponentLogger(b.logger, "buildstate")),
	)
}

// prepareSource injects missing slide identifiers into the narration file and
// returns its parsed slides.
func (b *Builder) prepareSource(logger *slog.Logger) ([]slides.Slide, error) {
	path := b.layout.Narration
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "source", "open narration", path, err)
	}
	inserted, err := slides.EnsureIdentifiers(path, b.layout.ProjectID)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "source", "assign slide ids", "", err)
	}
	if len(inserted) > 0 {
		logger.Info("slide ids inserted",
			logging.String(logging.FieldEventType, "slide_ids_inserted"),
			logging.Int("count", len(inserted)),
			logging.Any("ids", inserted),
		)
	}
	parsed, err := slides.ParseFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "source", "parse narration", "", err)
	}
	return parsed, nil
}

// run tracks one action for history and the summary.
type run struct {
	b       *Builder
	ctx     context.Context
	logger  *slog.Logger
	summary *Summary
	stage   string
	counts  Counts
}

func (b *Builder) startRun(ctx context.Context, action string) *run {
	id := b.newRunID()
	ctx = services.WithRunID(ctx, id)
	ctx = services.WithProjectID(ctx, b.layout.ProjectID)
	r := &run{
		b:       b,
		ctx:     ctx,
		logger:  logging.WithContext(ctx, logging.NewComponentLogger(b.logger, "pipeline")),
		summary: newSummary(id, action),
	}
	if err := b.deps.Recorder.StartRun(ctx, history.Run{
		ID:        id,
		ProjectID: b.layout.ProjectID,
		Action:    action,
		Status:    history.RunRunning,
		StartedAt: b.now(),
	}); err != nil {
		r.historyWarning("start run", err)
	}
	return r
}

func (r *run) finish(err error) {
	status := history.RunSucceeded
	msg := ""
	switch {
	case err == nil:
	case errors.Is(err, buildstate.ErrAborted):
		status = history.RunAborted
		msg = err.Error()
	default:
		status = history.RunFailed
		msg = err.Error()
	}
	r.summary.Status = status
	if ferr := r.b.deps.Recorder.FinishRun(context.WithoutCancel(r.ctx), r.summary.RunID, status, msg, r.b.now()); ferr != nil {
		r.historyWarning("finish run", ferr)
	}
}

func (r *run) historyWarning(op string, err error) {
	logging.WarnWithContext(r.logger, "history write failed",
		"history_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check paths.history_db"),
		logging.String(logging.FieldImpact, "run history is incomplete; the build is unaffected"),
	)
}

// beginStage scopes logs and counters to stage.
func (r *run) beginStage(stage string) {
	r.stage = stage
	r.counts = Counts{}
	r.logger.Debug("stage started",
		logging.String(logging.FieldStage, stage),
		logging.String(logging.FieldEventType, "stage_start"),
	)
}

// endStage logs the stage totals. Without show_skip, per-unit warnings were
// logged at debug level and are summarized here instead.
func (r *run) endStage() {
	attrs := []logging.Attr{
		logging.String(logging.FieldStage, r.stage),
		logging.Int("generated", r.counts.Generated),
		logging.Int("skipped", r.counts.Skipped),
		logging.Int("warnings", r.counts.Warnings),
		logging.Int("failed", r.counts.Failed),
	}
	if r.counts.Warnings > 0 && !r.b.cfg.Logging.ShowSkip {
		logging.WarnWithContext(r.logger, "stage completed with warnings", "stage_warnings",
			append(attrs, logging.String(logging.FieldImpact, "affected slides are missing from the video"))...)
		return
	}
	r.logger.Info("stage completed", logging.Args(append(attrs, logging.String(logging.FieldEventType, "stage_complete"))...)...)
}

// unit records the outcome of one unit and logs it at the configured
// verbosity.
func (r *run) unit(unitID string, outcome history.Outcome, detail string, started time.Time, err error) {
	r.counts.add(outcome)
	r.summary.add(r.stage, outcome)

	attrs := []logging.Attr{
		logging.String(logging.FieldStage, r.stage),
		logging.String(logging.FieldSlideID, unitID),
	}
	if detail != "" {
		attrs = append(attrs, logging.String("detail", detail))
	}
	showSkip := r.b.cfg.Logging.ShowSkip
	switch outcome {
	case history.OutcomeGenerated:
		r.logger.Info("unit generated", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "unit_generated"),
			logging.Duration("elapsed", r.b.now().Sub(started)))...)...)
	case history.OutcomeSkipped:
		attrs = append(attrs, logging.String(logging.FieldEventType, "unit_skipped"))
		if showSkip {
			r.logger.Info("unit skipped", logging.Args(attrs...)...)
		} else {
			r.logger.Debug("unit skipped", logging.Args(attrs...)...)
		}
	case history.OutcomeWarning:
		if showSkip {
			logging.WarnWithContext(r.logger, "unit skipped with warning", "unit_warning", attrs...)
		} else {
			r.logger.Debug("unit skipped with warning", logging.Args(append(attrs, logging.String(logging.FieldEventType, "unit_warning"))...)...)
		}
	case history.OutcomeFailed:
		if err != nil {
			attrs = append(attrs, logging.Error(err), logging.String(logging.FieldErrorHint, services.Hint(err)))
		}
		logging.ErrorWithContext(r.logger, "unit failed", "unit_failed", attrs...)
	}

	if rerr := r.b.deps.Recorder.RecordUnit(r.ctx, history.Unit{
		RunID:      r.summary.RunID,
		Stage:      r.stage,
		UnitID:     unitID,
		Outcome:    outcome,
		Detail:     unitDetail(detail, err),
		Duration:   r.b.now().Sub(started),
		RecordedAt: r.b.now(),
	}); rerr != nil {
		r.historyWarning("record unit", rerr)
	}
}

func unitDetail(detail string, err error) string {
	switch {
	case err == nil:
		return detail
	case detail == "":
		return err.Error()
	default:
		return fmt.Sprintf("%s: %v", detail, err)
	}
}
