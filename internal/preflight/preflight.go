package preflight

import (
	"slidemovie/internal/config"
	"slidemovie/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Targets names the directories a run reads from and writes under. Empty
// fields are skipped.
type Targets struct {
	SourceDir  string
	OutputRoot string
}

// RunAll executes the checks for a video build.
func RunAll(cfg *config.Config, targets Targets) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if targets.SourceDir != "" {
		results = append(results, CheckDirectoryAccess("Source directory", targets.SourceDir))
	}
	if targets.OutputRoot != "" {
		results = append(results, CheckDirectoryAccess("Output root", targets.OutputRoot))
	}
	results = append(results, CheckTTSCredentials(cfg))
	for _, status := range deps.CheckBinaries(SystemRequirements(cfg)) {
		results = append(results, FromStatus(status))
	}
	return results
}

// SystemRequirements returns every external binary slidemovie can invoke.
func SystemRequirements(cfg *config.Config) []deps.Requirement {
	reqs := deps.BuildRequirements(cfg)
	for _, req := range deps.DraftRequirements(cfg) {
		req.Optional = true
		req.Description += " (only for --pptx)"
		reqs = append(reqs, req)
	}
	return reqs
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
