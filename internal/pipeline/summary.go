package pipeline

import "slidemovie/internal/history"

// Counts tallies unit outcomes.
type Counts struct {
	Generated int
	Skipped   int
	Warnings  int
	Failed    int
}

func (c *Counts) add(outcome history.Outcome) {
	switch outcome {
	case history.OutcomeGenerated:
		c.Generated++
	case history.OutcomeSkipped:
		c.Skipped++
	case history.OutcomeWarning:
		c.Warnings++
	case history.OutcomeFailed:
		c.Failed++
	}
}

// Summary describes what an action did.
type Summary struct {
	RunID   string
	Action  string
	Status  history.RunStatus
	Total   Counts
	ByStage map[string]Counts
	// VideoFile and DurationSec are set when the final stage produced or
	// kept a video.
	VideoFile   string
	DurationSec float64
	Slides      int
}

func newSummary(runID, action string) *Summary {
	return &Summary{RunID: runID, Action: action, ByStage: map[string]Counts{}}
}

func (s *Summary) add(stage string, outcome history.Outcome) {
	s.Total.add(outcome)
	c := s.ByStage[stage]
	c.add(outcome)
	s.ByStage[stage] = c
}
