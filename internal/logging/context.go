package logging

import (
	"context"
	"log/slog"

	"slidemovie/internal/services"
)

const (
	FieldComponent = "component"
	FieldProjectID = "project_id"
	FieldStage     = "stage"
	FieldSlideID   = "slide_id"
	FieldRunID     = "run_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// contextFields maps log keys to their context lookups, in output order.
var contextFields = []struct {
	key    string
	lookup func(context.Context) (string, bool)
}{
	{FieldProjectID, services.ProjectIDFromContext},
	{FieldRunID, services.RunIDFromContext},
	{FieldStage, services.StageFromContext},
	{FieldSlideID, services.SlideIDFromContext},
}

// ContextFields returns the project, run, stage, and slide annotations
// carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, f := range contextFields {
		if v, ok := f.lookup(ctx); ok {
			fields = append(fields, slog.String(f.key, v))
		}
	}
	return fields
}

// WithContext adds the annotations of ctx to logger. A nil logger yields a
// no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(Args(fields...)...)
	}
	return logger
}
