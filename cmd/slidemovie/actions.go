package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/config"
	"slidemovie/internal/deps"
	"slidemovie/internal/logging"
	"slidemovie/internal/media/ffmpeg"
	"slidemovie/internal/media/ffprobe"
	"slidemovie/internal/notifications"
	"slidemovie/internal/pipeline"
	"slidemovie/internal/preflight"
	"slidemovie/internal/project"
	"slidemovie/internal/services"
	"slidemovie/internal/services/pandoc"
	"slidemovie/internal/services/rasterizer"
	"slidemovie/internal/services/tts"
)

// invocation is a fully resolved root command: effective configuration,
// project request, and the actions to run.
type invocation struct {
	Config  config.Config
	Request project.Request
	Draft   bool
	Build   bool
}

var summaryStages = []string{
	pipeline.StageDeck,
	pipeline.StageAudio,
	pipeline.StageImages,
	pipeline.StageVideo,
	pipeline.StageFinal,
	pipeline.StageReport,
}

// executeActions wires the production collaborators and runs the requested
// actions. Drafting runs first so one invocation can draft and build.
func executeActions(ctx context.Context, cc *commandContext, inv invocation, stdout, stderr io.Writer) error {
	cfg := inv.Config
	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		return err
	}
	cc.reportConfigWarnings(logger)
	logger.Debug("debug logging enabled", logging.String(logging.FieldEventType, "debug_enabled"))

	layout, err := project.Resolve(inv.Request)
	if err != nil {
		return err
	}
	logger.Info("project resolved",
		logging.String(logging.FieldEventType, "project_resolved"),
		logging.String(logging.FieldProjectID, layout.ProjectID),
		logging.String("source_dir", layout.SourceDir),
		logging.String("artifact_dir", layout.ArtifactDir),
	)
	if err := checkRequirements(&cfg, layout, inv, stderr); err != nil {
		return err
	}

	recorder, closeHistory := openHistory(ctx, &cfg, logger)
	defer closeHistory()

	collab := pipeline.Deps{
		Recorder: recorder,
		Resolver: newConflictResolver(cc.stdin, stderr, isInteractive(cc.stdin)),
	}
	if inv.Draft {
		collab.Converter = pandoc.New(cfg.Tools.Pandoc)
	}
	if inv.Build {
		synth, err := tts.New(ctx, &cfg)
		if err != nil {
			return err
		}
		collab.Synthesizer = synth
		collab.Rasterizer = rasterizer.New(&cfg)
		collab.Transcoder = ffmpeg.New(&cfg)
		collab.Prober = ffprobe.New(cfg.Tools.FFprobe)
	}
	builder := pipeline.New(cfg, layout, collab, pipeline.WithLogger(logger))
	colorize := shouldColorize(stdout)

	notifier := notifications.NewService(&cfg)

	if inv.Draft {
		summary, err := builder.DraftDeck(ctx)
		if err != nil {
			notifyFailure(ctx, notifier, logger, layout.ProjectID, err)
			return err
		}
		fmt.Fprint(stdout, renderSummary(summary, colorize))
		if !inv.Build {
			fmt.Fprintf(stdout, "Edit %s, then run with --video to build the movie.\n", layout.Deck)
		}
		publish(ctx, notifier, logger, notifications.EventDeckDrafted, notifications.Message{
			ProjectID: layout.ProjectID,
			File:      layout.Deck,
		})
	}
	if inv.Build {
		summary, err := builder.Build(ctx)
		if err != nil {
			notifyFailure(ctx, notifier, logger, layout.ProjectID, err)
			return err
		}
		fmt.Fprint(stdout, renderSummary(summary, colorize))
		publish(ctx, notifier, logger, notifications.EventBuildCompleted, notifications.Message{
			ProjectID:   layout.ProjectID,
			File:        summary.VideoFile,
			Slides:      summary.Slides,
			DurationSec: summary.DurationSec,
			Warnings:    summary.Total.Warnings,
			Failed:      summary.Total.Failed,
		})
	}
	return nil
}

// notifyFailure reports a failed action. Operator aborts and cancellation are
// not failures worth a push.
func notifyFailure(ctx context.Context, notifier notifications.Service, logger *slog.Logger, projectID string, err error) {
	if errors.Is(err, buildstate.ErrAborted) || errors.Is(err, context.Canceled) {
		return
	}
	publish(context.WithoutCancel(ctx), notifier, logger, notifications.EventBuildFailed, notifications.Message{
		ProjectID: projectID,
		Err:       err,
	})
}

func publish(ctx context.Context, notifier notifications.Service, logger *slog.Logger, event notifications.Event, msg notifications.Message) {
	if err := notifier.Publish(ctx, event, msg); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the action result is unaffected"),
		)
	}
}

// checkRequirements verifies the tools and credentials the requested actions
// need before any file is touched.
func checkRequirements(cfg *config.Config, layout project.Layout, inv invocation, w io.Writer) error {
	results := []preflight.Result{preflight.CheckDirectoryAccess("Output root", layout.OutputRoot)}
	var reqs []deps.Requirement
	if inv.Draft {
		reqs = append(reqs, deps.DraftRequirements(cfg)...)
	}
	if inv.Build {
		results = append(results, preflight.CheckTTSCredentials(cfg))
		reqs = append(reqs, deps.BuildRequirements(cfg)...)
	}
	for _, status := range deps.CheckBinaries(reqs) {
		results = append(results, preflight.FromStatus(status))
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	colorize := shouldColorize(w)
	for _, result := range failed {
		fmt.Fprintln(w, renderStatusLine(result.Name, statusError, result.Detail, colorize))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check requirements",
		fmt.Sprintf("%d check(s) failed; run `slidemovie doctor` for details", len(failed)), nil)
}

func renderSummary(summary pipeline.Summary, colorize bool) string {
	rows := make([][]string, 0, len(summaryStages))
	for _, stage := range summaryStages {
		c, ok := summary.ByStage[stage]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			stage,
			strconv.Itoa(c.Generated),
			strconv.Itoa(c.Skipped),
			strconv.Itoa(c.Warnings),
			strconv.Itoa(c.Failed),
		})
	}
	out := renderTable([]string{"Stage", "Generated", "Skipped", "Warnings", "Failed"}, rows, 1, 2, 3, 4) + "\n"

	kind := statusOK
	if summary.Total.Warnings > 0 || summary.Total.Failed > 0 {
		kind = statusWarn
	}
	if summary.VideoFile != "" {
		msg := fmt.Sprintf("%s (%d slides, %.1f min)", summary.VideoFile, summary.Slides, summary.DurationSec/60)
		out += renderStatusLine("Video", kind, msg, colorize) + "\n"
	}
	if summary.Total.Warnings > 0 || summary.Total.Failed > 0 {
		msg := fmt.Sprintf("%d warning(s), %d failure(s); rerun with --debug for per-slide detail", summary.Total.Warnings, summary.Total.Failed)
		out += renderStatusLine("Attention", statusWarn, msg, colorize) + "\n"
	}
	return out
}
