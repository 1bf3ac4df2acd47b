package services

import (
	"errors"
	"fmt"
	"strings"
)

// Markers classify failures across packages. Callers test them with
// errors.Is; Hint turns them into operator advice.
var (
	// ErrExternalTool: a collaborator binary or API returned a failure.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation: the narration source or a produced artifact is unusable.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration: settings, flags, or the environment are wrong.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound: a referenced file or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransient: a retry may succeed.
	ErrTransient = errors.New("transient failure")
)

// Wrap tags err with marker and prefixes the non-empty parts of
// stage, operation, and message:
//
//	configuration error: project: resolve: output root /x does not exist
//
// A nil marker is treated as ErrTransient. Both marker and err stay
// reachable through errors.Is.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonEmpty(stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Hint returns a short operator-facing next step for err's marker.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "check slidemovie.toml and command flags"
	case errors.Is(err, ErrValidation):
		return "fix the narration source and rerun"
	case errors.Is(err, ErrNotFound):
		return "verify the referenced file exists"
	case errors.Is(err, ErrExternalTool):
		return "rerun with --debug to see tool output"
	default:
		return "rerun the build; completed slides are kept"
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ": ")
}
