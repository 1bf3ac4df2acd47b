package history

import "time"

// Outcome is what happened to one unit of work.
type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeWarning   Outcome = "warning"
	OutcomeFailed    Outcome = "failed"
)

// RunStatus is the lifecycle of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
)

// Run is one invocation against a project.
type Run struct {
	ID         string
	ProjectID  string
	Action     string
	Status     RunStatus
	Error      string
	Generated  int
	Skipped    int
	Warnings   int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Unit is the recorded outcome of one stage unit.
type Unit struct {
	RunID      string
	Stage      string
	UnitID     string
	Outcome    Outcome
	Detail     string
	Duration   time.Duration
	RecordedAt time.Time
}
