package services

import "context"

type contextKey string

const (
	stageKey     contextKey = "stage"
	projectIDKey contextKey = "project_id"
	slideIDKey   contextKey = "slide_id"
	runIDKey     contextKey = "run_id"
)

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithProjectID annotates context with the project identifier.
func WithProjectID(ctx context.Context, id string) context.Context {
	return withString(ctx, projectIDKey, id)
}

// ProjectIDFromContext returns the project identifier if present.
func ProjectIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, projectIDKey)
}

// WithSlideID annotates context with the slide being processed.
func WithSlideID(ctx context.Context, id string) context.Context {
	return withString(ctx, slideIDKey, id)
}

// SlideIDFromContext returns the slide identifier if present.
func SlideIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, slideIDKey)
}

// WithRunID annotates context with the build run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

// RunIDFromContext returns the build run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, runIDKey)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
