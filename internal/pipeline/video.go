package pipeline

import (
	"context"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/fingerprint"
	"slidemovie/internal/history"
	"slidemovie/internal/logging"
	"slidemovie/internal/services"
	"slidemovie/internal/slides"
)

// buildVideos renders one clip per slide. Missing inputs and transcode
// failures affect only that slide.
func (b *Builder) buildVideos(r *run, store *buildstate.Store, parsed []slides.Slide) error {
	r.beginStage(StageVideo)
	defer r.endStage()

	for _, slide := range parsed {
		var err error
		if slide.Prerendered() {
			err = b.normalizeClip(r, store, slide)
		} else {
			err = b.composeClip(r, store, slide)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// normalizeClip fits a supplied clip to the project frame and codecs.
func (b *Builder) normalizeClip(r *run, store *buildstate.Store, slide slides.Slide) error {
	started := b.now()
	rec := store.Slide(slide.ID)
	src := b.layout.Artifact(slide.VideoOverride)
	out := b.layout.Artifact(slide.ID + ".mp4")
	if !fileutil.Exists(src) {
		r.unit(slide.ID, history.OutcomeWarning, "source video not found: "+src, started, nil)
		return nil
	}
	fp, err := fingerprint.File(src)
	if err != nil {
		return err
	}
	v := rec.Video
	if v.Status == buildstate.StatusGenerated && v.SourceVideo == slide.VideoOverride && v.SourceVideoFingerprint == fp && fileutil.Exists(out) {
		r.unit(slide.ID, history.OutcomeSkipped, "source video unchanged", started, nil)
		return nil
	}

	ctx := services.WithSlideID(services.WithStage(r.ctx, StageVideo), slide.ID)
	hasAudio, err := b.deps.Prober.HasAudio(ctx, src)
	if err != nil {
		r.unit(slide.ID, history.OutcomeFailed, "probe source video", started, err)
		return nil
	}
	if err := b.deps.Transcoder.NormalizeVideo(ctx, src, out, hasAudio); err != nil {
		r.unit(slide.ID, history.OutcomeFailed, "normalize video", started, err)
		return nil
	}
	rec.Video = &buildstate.VideoState{
		Status:                 buildstate.StatusGenerated,
		SourceVideo:            slide.VideoOverride,
		SourceVideoFingerprint: fp,
		DurationSec:            b.clipDuration(ctx, r, slide.ID, out),
		GeneratedAt:            store.Now(),
	}
	if err := store.Save(); err != nil {
		return err
	}
	r.unit(slide.ID, history.OutcomeGenerated, "", started, nil)
	return nil
}

// composeClip renders the slide image for the length of its narration.
func (b *Builder) composeClip(r *run, store *buildstate.Store, slide slides.Slide) error {
	started := b.now()
	rec := store.Slide(slide.ID)
	png := b.layout.Artifact(slide.ID + ".png")
	wav := b.layout.Artifact(rec.Audio.WavFilename)
	out := b.layout.Artifact(slide.ID + ".mp4")
	switch {
	case !fileutil.Exists(png):
		r.unit(slide.ID, history.OutcomeWarning, "slide image not found: "+png, started, nil)
		return nil
	case !fileutil.Exists(wav):
		r.unit(slide.ID, history.OutcomeWarning, "narration audio not found: "+wav, started, nil)
		return nil
	}
	pngFP, err := fingerprint.File(png)
	if err != nil {
		return err
	}
	wavFP, err := fingerprint.File(wav)
	if err != nil {
		return err
	}
	v := rec.Video
	if v.Status == buildstate.StatusGenerated && v.PNGFingerprint == pngFP && v.WavFingerprint == wavFP && fileutil.Exists(out) {
		r.unit(slide.ID, history.OutcomeSkipped, "image and audio unchanged", started, nil)
		return nil
	}

	ctx := services.WithSlideID(services.WithStage(r.ctx, StageVideo), slide.ID)
	if err := b.deps.Transcoder.ComposeStill(ctx, png, wav, out); err != nil {
		r.unit(slide.ID, history.OutcomeFailed, "compose still", started, err)
		return nil
	}
	rec.Video = &buildstate.VideoState{
		Status:         buildstate.StatusGenerated,
		WavFingerprint: wavFP,
		PNGFingerprint: pngFP,
		DurationSec:    b.clipDuration(ctx, r, slide.ID, out),
		GeneratedAt:    store.Now(),
	}
	if err := store.Save(); err != nil {
		return err
	}
	r.unit(slide.ID, history.OutcomeGenerated, "", started, nil)
	return nil
}

func (b *Builder) clipDuration(ctx context.Context, r *run, slideID, path string) float64 {
	duration, err := b.deps.Prober.Duration(ctx, path)
	if err != nil {
		logging.WarnWithContext(r.logger, "clip duration unavailable", "clip_duration_unavailable",
			logging.String(logging.FieldSlideID, slideID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "duration is recorded as zero"),
		)
		return 0
	}
	return duration
}
