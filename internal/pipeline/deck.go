package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
	"slidemovie/internal/services"
)

// DraftDeck converts the narration source into a slide deck for the operator
// to edit. The deck is regenerated only when the narration changed or the
// deck is gone. A converter failure aborts this action and leaves the state
// untouched.
func (b *Builder) DraftDeck(ctx context.Context) (summary Summary, err error) {
	r := b.startRun(ctx, "pptx")
	defer func() {
		r.finish(err)
		summary = *r.summary
	}()
	if b.deps.Converter == nil {
		return summary, errors.New("pipeline: no document converter configured")
	}

	if _, err := b.prepareSource(r.logger); err != nil {
		return summary, err
	}
	store, err := b.openStore()
	if err != nil {
		return summary, err
	}
	defer store.Close()
	if err := store.Load(r.ctx, b.deps.Resolver); err != nil {
		return summary, err
	}

	r.beginStage(StageDeck)
	defer r.endStage()
	started := b.now()
	unitID := filepath.Base(b.layout.Deck)

	fp, err := fingerprint.File(b.layout.Narration)
	if err != nil {
		return summary, services.Wrap(services.ErrNotFound, StageDeck, "fingerprint narration", b.layout.Narration, err)
	}
	task := store.State().PPTXTask
	if task.Generated(fp) && fileutil.Exists(b.layout.Deck) {
		r.unit(unitID, history.OutcomeSkipped, "narration unchanged", started, nil)
		return summary, nil
	}

	r.logger.Info("drafting deck from narration",
		logging.String(logging.FieldEventType, "deck_draft"),
		logging.String("source", b.layout.Narration),
		logging.String("deck", b.layout.Deck),
	)
	if err := b.deps.Converter.Convert(r.ctx, b.layout.Narration, b.layout.SourceDir, b.layout.Deck); err != nil {
		r.unit(unitID, history.OutcomeFailed, "", started, err)
		return summary, err
	}

	st := store.State()
	st.PPTXTask = buildstate.Task{
		Status:            buildstate.StatusGenerated,
		SourceFile:        filepath.Base(b.layout.Narration),
		SourceFingerprint: fp,
		GeneratedAt:       store.Now(),
	}
	if err := store.Save(); err != nil {
		return summary, err
	}
	r.unit(unitID, history.OutcomeGenerated, "", started, nil)
	return summary, nil
}
