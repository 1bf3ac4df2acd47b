package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
	"slidemovie/internal/services"
	"slidemovie/internal/slides"
)

// stagingPattern names the scratch directory pages are rendered into. Pages
// keep their positional names there, so renaming them to slide ids in the
// artifact directory can never overwrite a page not yet moved.
const stagingPattern = ".pages-*"

// buildImages rasterizes the whole deck and names each image after the slide
// at the same position. A missing deck or a rasterizer failure skips the stage.
func (b *Builder) buildImages(r *run, store *buildstate.Store, parsed []slides.Slide) error {
	r.beginStage(StageImages)
	defer r.endStage()

	started := b.now()
	deck := b.layout.Deck
	unitID := filepath.Base(deck)
	if !fileutil.Exists(deck) {
		r.unit(unitID, history.OutcomeWarning, "deck not found: "+deck, started, nil)
		return nil
	}
	fp, err := fingerprint.File(deck)
	if err != nil {
		return err
	}
	task := store.State().ImagesTask
	if task.Generated(fp) && b.outputsExist(task.Outputs) {
		r.unit(unitID, history.OutcomeSkipped, "deck unchanged", started, nil)
		return nil
	}

	if err := b.clearRasters(task.Outputs); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(b.layout.ArtifactDir, stagingPattern)
	if err != nil {
		return fmt.Errorf("create raster staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	ctx := services.WithStage(r.ctx, StageImages)
	pages, err := b.deps.Rasterizer.Rasterize(ctx, deck, staging)
	if err != nil {
		r.unit(unitID, history.OutcomeWarning, "rasterize failed", started, err)
		return nil
	}
	if len(pages) != len(parsed) {
		logging.WarnWithContext(r.logger, "deck and narration slide counts differ", "slide_count_mismatch",
			logging.Int("deck_slides", len(pages)),
			logging.Int("narration_slides", len(parsed)),
			logging.String(logging.FieldErrorHint, "keep one deck slide per narration heading"),
			logging.String(logging.FieldImpact, "images are matched by position up to the shorter count"),
		)
	}

	n := min(len(pages), len(parsed))
	outputs := make([]string, 0, n)
	for i := range n {
		name := parsed[i].ID + ".png"
		if err := os.Rename(pages[i], b.layout.Artifact(name)); err != nil {
			return fmt.Errorf("rename %s: %w", filepath.Base(pages[i]), err)
		}
		outputs = append(outputs, name)
	}

	st := store.State()
	st.ImagesTask = buildstate.Task{
		Status:            buildstate.StatusGenerated,
		SourceFile:        filepath.Base(deck),
		SourceFingerprint: fp,
		GeneratedAt:       store.Now(),
		Outputs:           outputs,
	}
	if err := store.Save(); err != nil {
		return err
	}
	r.unit(unitID, history.OutcomeGenerated, fmt.Sprintf("%d images", len(outputs)), started, nil)
	return nil
}

func (b *Builder) outputsExist(outputs []string) bool {
	if len(outputs) == 0 {
		return false
	}
	for _, name := range outputs {
		if !fileutil.Exists(b.layout.Artifact(name)) {
			return false
		}
	}
	return true
}

// clearRasters removes previously named images and staging directories an
// interrupted run left behind.
func (b *Builder) clearRasters(previous []string) error {
	for _, name := range previous {
		if err := fileutil.RemoveIfExists(b.layout.Artifact(name)); err != nil {
			return fmt.Errorf("remove previous image: %w", err)
		}
	}
	leftovers, err := filepath.Glob(filepath.Join(b.layout.ArtifactDir, stagingPattern))
	if err != nil {
		return fmt.Errorf("list raster leftovers: %w", err)
	}
	for _, path := range leftovers {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove raster leftover: %w", err)
		}
	}
	return nil
}
