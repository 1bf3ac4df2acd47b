package slides

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"slidemovie/internal/fileutil"
)

// AssignIdentifiers inserts a slide-id marker before every title heading that
// is not already tagged. A heading is tagged when the closest preceding line,
// skipping blank lines and video-file markers, is a slide-id marker. New ids
// take the form "<projectID>-NN" and continue above the highest numeric suffix
// already used under that prefix. Headings inside notes blocks are left alone.
//
// The returned slice lists the inserted ids in order; it is empty when text
// needed no changes, in which case text is returned unmodified.
func AssignIdentifiers(text, projectID string) (string, []string, error) {
	pieces := strings.SplitAfter(text, "\n")

	existing, maxSeq, err := scanIdentifiers(pieces, projectID)
	if err != nil {
		return "", nil, err
	}

	var out strings.Builder
	var added []string
	inNotes, tagged := false, false
	prefix := projectID + "-"
	out.Grow(len(text) + 64)

	for _, piece := range pieces {
		line := strings.TrimSpace(piece)
		switch {
		case line == "":
		case slideIDPattern.MatchString(line):
			tagged = true
			inNotes = false
		case videoFilePattern.MatchString(line):
		case inNotes:
			if line == notesClose {
				inNotes = false
			}
			tagged = false
		case line == notesOpen:
			inNotes = true
			tagged = false
		case isTitleHeading(line):
			if !tagged {
				var id string
				for {
					maxSeq++
					id = fmt.Sprintf("%s%02d", prefix, maxSeq)
					if _, taken := existing[id]; !taken {
						break
					}
				}
				existing[id] = struct{}{}
				added = append(added, id)
				out.WriteString("<!-- slide-id: " + id + " -->" + lineEnding(piece))
			}
			tagged = false
		default:
			tagged = false
		}
		out.WriteString(piece)
	}

	if len(added) == 0 {
		return text, nil, nil
	}
	return out.String(), added, nil
}

// EnsureIdentifiers runs AssignIdentifiers over the file at path and rewrites
// it atomically when at least one id was added.
func EnsureIdentifiers(path, projectID string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read narration source: %w", err)
	}
	updated, added, err := AssignIdentifiers(string(data), projectID)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return nil, nil
	}
	if err := fileutil.WriteFileAtomic(path, []byte(updated), fileutil.FileMode(path, 0o644)); err != nil {
		return nil, fmt.Errorf("rewrite narration source: %w", err)
	}
	return added, nil
}

func scanIdentifiers(pieces []string, projectID string) (map[string]struct{}, int, error) {
	prefix := projectID + "-"
	existing := make(map[string]struct{})
	lines := make(map[string]int)
	maxSeq := 0
	for i, piece := range pieces {
		id, ok := markerValue(slideIDPattern, strings.TrimSpace(piece))
		if !ok {
			continue
		}
		if first, dup := lines[id]; dup {
			return nil, 0, &DuplicateIDError{ID: id, FirstLine: first, RepeatLine: i + 1}
		}
		lines[id] = i + 1
		existing[id] = struct{}{}
		if seq, ok := sequenceSuffix(id, prefix); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return existing, maxSeq, nil
}

func sequenceSuffix(id, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lineEnding(piece string) string {
	if strings.HasSuffix(piece, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
