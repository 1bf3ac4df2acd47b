package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary and the config value that selects it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional tools are reported but never block a run.
	Optional bool
}

// Status is a Requirement plus the outcome of resolving it on PATH.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Lookup resolves one requirement.
func Lookup(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Lookup(req)
	}
	return results
}
