package history

import (
	"context"
	"time"
)

// Recorder receives run and unit outcomes.
type Recorder interface {
	StartRun(ctx context.Context, run Run) error
	RecordUnit(ctx context.Context, unit Unit) error
	FinishRun(ctx context.Context, runID string, status RunStatus, errMsg string, finishedAt time.Time) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) StartRun(context.Context, Run) error { return nil }

func (Nop) RecordUnit(context.Context, Unit) error { return nil }

func (Nop) FinishRun(context.Context, string, RunStatus, string, time.Time) error { return nil }
