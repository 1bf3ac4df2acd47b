package pipeline

import (
	"fmt"
	"path/filepath"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
	"slidemovie/internal/services"
	"slidemovie/internal/slides"
)

const manifestName = "concat_list.txt"

// buildFinal concatenates the per-slide clips in source order. The input
// fingerprint folds every expected clip, so a slide whose clip is missing
// still hashes to a stable value and a later fill-in is detected.
func (b *Builder) buildFinal(r *run, store *buildstate.Store, parsed []slides.Slide) error {
	r.beginStage(StageFinal)
	defer r.endStage()

	started := b.now()
	unitID := filepath.Base(b.layout.VideoFile)
	entries := make([]fingerprint.SequenceEntry, 0, len(parsed))
	for _, slide := range parsed {
		entries = append(entries, fingerprint.SequenceEntry{ID: slide.ID, Path: b.layout.Artifact(slide.ID + ".mp4")})
	}
	fp, err := fingerprint.Sequence(entries)
	if err != nil {
		return err
	}
	final := store.State().FinalMovie
	if final.Status == buildstate.StatusGenerated && final.SourceFingerprint == fp && fileutil.Exists(b.layout.VideoFile) {
		r.summary.VideoFile = b.layout.VideoFile
		r.summary.DurationSec = final.DurationSec
		r.summary.Slides = final.Slides
		r.unit(unitID, history.OutcomeSkipped, "clips unchanged", started, nil)
		return nil
	}

	present := make([]string, 0, len(entries))
	var missing []string
	var clipTotal float64
	for _, entry := range entries {
		if !fileutil.Exists(entry.Path) {
			missing = append(missing, entry.ID)
			continue
		}
		present = append(present, entry.Path)
		if rec := store.Slide(entry.ID); rec != nil && rec.Video != nil {
			clipTotal += rec.Video.DurationSec
		}
	}
	if len(missing) > 0 {
		logging.WarnWithContext(r.logger, "slides missing from final video", "final_missing_clips",
			logging.Int("missing", len(missing)),
			logging.Any("slide_ids", missing),
			logging.String(logging.FieldErrorHint, "fix the earlier stage warnings and rebuild"),
			logging.String(logging.FieldImpact, "the video omits these slides"),
		)
	}
	if len(present) == 0 {
		err := fmt.Errorf("%w: %w", services.ErrValidation, ErrNothingToConcat)
		r.unit(unitID, history.OutcomeFailed, "", started, err)
		return err
	}

	ctx := services.WithStage(r.ctx, StageFinal)
	manifest := b.layout.Artifact(manifestName)
	if err := b.deps.Transcoder.Concat(ctx, present, manifest, b.layout.VideoFile); err != nil {
		r.unit(unitID, history.OutcomeFailed, "", started, err)
		return services.Wrap(services.ErrExternalTool, StageFinal, "concatenate", unitID, err)
	}
	duration, err := b.deps.Prober.Duration(ctx, b.layout.VideoFile)
	if err != nil {
		r.logger.Debug("final duration probe failed; using clip total", logging.Error(err))
		duration = clipTotal
	}

	store.State().FinalMovie = buildstate.FinalMovie{
		Status:            buildstate.StatusGenerated,
		FileName:          filepath.Base(b.layout.VideoFile),
		SourceFingerprint: fp,
		GeneratedAt:       store.Now(),
		Slides:            len(present),
		DurationSec:       duration,
		DurationMin:       duration / 60,
	}
	if err := store.Save(); err != nil {
		return err
	}
	r.summary.VideoFile = b.layout.VideoFile
	r.summary.DurationSec = duration
	r.summary.Slides = len(present)
	r.unit(unitID, history.OutcomeGenerated, fmt.Sprintf("%d slides, %.2f min", len(present), duration/60), started, nil)
	return nil
}
