package slides

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrDuplicateSlideID marks a source that declares the same slide id twice.
var ErrDuplicateSlideID = errors.New("duplicate slide id")

var (
	slideIDPattern   = regexp.MustCompile(`^<!--\s*slide-id:\s*(.+?)\s*-->$`)
	videoFilePattern = regexp.MustCompile(`^<!--\s*video-file:\s*(.+?)\s*-->$`)
)

const (
	notesOpen  = "::: notes"
	notesClose = ":::"
)

// Slide is one narrated unit parsed from the source.
type Slide struct {
	ID    string
	Index int // 1-based position in the source
	Title string
	Notes string
	// VideoOverride names a pre-rendered clip inside the artifact directory.
	VideoOverride string
}

// Prerendered reports whether the slide uses a supplied video instead of a
// rasterized still and synthesized narration.
func (s Slide) Prerendered() bool {
	return s.VideoOverride != ""
}

// DuplicateIDError identifies a repeated slide id and where it appeared.
type DuplicateIDError struct {
	ID         string
	FirstLine  int
	RepeatLine int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate slide id %q on lines %d and %d", e.ID, e.FirstLine, e.RepeatLine)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateSlideID }

type parseState int

const (
	stateOutside parseState = iota
	stateInNotes
)

type parser struct {
	state   parseState
	slides  []Slide
	current *Slide
	notes   []string
	seen    map[string]int
}

// Parse scans text line by line and returns the slides in source order.
// Content before the first slide-id marker is ignored.
func Parse(text string) ([]Slide, error) {
	p := &parser{seen: make(map[string]int)}
	for i, line := range splitLines(text) {
		if err := p.consume(i+1, line); err != nil {
			return nil, err
		}
	}
	p.flush()
	return p.slides, nil
}

// ParseFile reads and parses the narration source at path.
func ParseFile(path string) ([]Slide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read narration source: %w", err)
	}
	return Parse(string(data))
}

func (p *parser) consume(lineNo int, raw string) error {
	line := strings.TrimSpace(raw)
	if id, ok := markerValue(slideIDPattern, line); ok {
		if first, dup := p.seen[id]; dup {
			return &DuplicateIDError{ID: id, FirstLine: first, RepeatLine: lineNo}
		}
		p.seen[id] = lineNo
		p.flush()
		p.current = &Slide{ID: id, Index: len(p.slides) + 1}
		p.state = stateOutside
		return nil
	}
	if p.current == nil {
		return nil
	}
	if name, ok := markerValue(videoFilePattern, line); ok {
		p.current.VideoOverride = name
		return nil
	}

	switch p.state {
	case stateOutside:
		if line == notesOpen {
			p.state = stateInNotes
			p.notes = p.notes[:0]
			return nil
		}
		if p.current.Title == "" && isTitleHeading(line) {
			p.current.Title = strings.TrimSpace(line[2:])
		}
	case stateInNotes:
		if line == notesOpen {
			p.notes = p.notes[:0]
			return nil
		}
		if line == notesClose {
			p.state = stateOutside
			p.current.Notes = joinNotes(p.notes)
			return nil
		}
		p.notes = append(p.notes, raw)
	}
	return nil
}

// flush commits the slide being built. An unterminated notes block still
// counts as that slide's narration.
func (p *parser) flush() {
	if p.current == nil {
		return
	}
	if p.state == stateInNotes {
		p.current.Notes = joinNotes(p.notes)
	}
	p.slides = append(p.slides, *p.current)
	p.current = nil
	p.notes = p.notes[:0]
	p.state = stateOutside
}

func joinNotes(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormalizeNotes trims every line and drops blank ones. The result is what
// gets narrated and fingerprinted.
func NormalizeNotes(notes string) string {
	var kept []string
	for _, line := range splitLines(notes) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func isTitleHeading(line string) bool {
	return strings.HasPrefix(line, "# ")
}

func markerValue(pattern *regexp.Regexp, line string) (string, bool) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	return value, value != ""
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
