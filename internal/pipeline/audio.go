package pipeline

import (
	"fmt"
	"unicode/utf8"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
	"slidemovie/internal/services"
	"slidemovie/internal/services/tts"
	"slidemovie/internal/slides"
)

// buildAudio synthesizes narration for every slide without a pre-rendered
// clip. The input fingerprint is the normalized notes text.
func (b *Builder) buildAudio(r *run, store *buildstate.Store, parsed []slides.Slide) error {
	r.beginStage(StageAudio)
	defer r.endStage()

	for _, slide := range parsed {
		started := b.now()
		if slide.Prerendered() {
			r.unit(slide.ID, history.OutcomeSkipped, "pre-rendered video "+slide.VideoOverride, started, nil)
			continue
		}
		rec := store.Slide(slide.ID)
		notes := slides.NormalizeNotes(slide.Notes)
		fp := fingerprint.Text(notes)
		wav := b.layout.Artifact(rec.Audio.WavFilename)

		if rec.Audio.Status == buildstate.StatusGenerated && rec.NotesFingerprint == fp && fileutil.Exists(wav) {
			r.unit(slide.ID, history.OutcomeSkipped, "notes unchanged", started, nil)
			continue
		}
		if notes == "" {
			err := fmt.Errorf("%w: %w: %s (add a \"::: notes\" block)", services.ErrValidation, ErrEmptyNotes, slide.ID)
			r.unit(slide.ID, history.OutcomeFailed, "", started, err)
			return err
		}

		ctx := services.WithSlideID(services.WithStage(r.ctx, StageAudio), slide.ID)
		req := tts.Request{
			Text:         notes,
			Instructions: tts.Instructions(b.cfg.TTS, rec.Audio.AdditionalPrompt),
			Voice:        b.cfg.TTS.Voice,
			Model:        b.cfg.TTS.Model,
		}
		if err := b.deps.Synthesizer.Synthesize(ctx, req, wav); err != nil {
			r.unit(slide.ID, history.OutcomeFailed, "", started, err)
			return fmt.Errorf("synthesize %s: %w", slide.ID, err)
		}
		if err := b.deps.Transcoder.PrependSilence(ctx, wav, b.cfg.Audio.SilenceSeconds); err != nil {
			r.unit(slide.ID, history.OutcomeFailed, "", started, err)
			return services.Wrap(services.ErrExternalTool, StageAudio, "prepend silence", slide.ID, err)
		}
		duration, err := b.deps.Prober.Duration(ctx, wav)
		if err != nil {
			logging.WarnWithContext(r.logger, "audio duration unavailable", "audio_duration_unavailable",
				logging.String(logging.FieldSlideID, slide.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "duration is recorded as zero"),
			)
			duration = 0
		}

		rec.NotesFingerprint = fp
		rec.NotesLength = utf8.RuneCountInString(notes)
		rec.Audio.Status = buildstate.StatusGenerated
		rec.Audio.GeneratedAt = store.Now()
		rec.Audio.DurationSec = duration
		if err := store.Save(); err != nil {
			return err
		}
		r.unit(slide.ID, history.OutcomeGenerated, "", started, nil)
	}
	return nil
}
