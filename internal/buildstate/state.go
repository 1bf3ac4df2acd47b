package buildstate

import (
	"bytes"
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"
)

// SchemaVersion is written to new state files.
const SchemaVersion = "1.0"

// Status is the lifecycle marker shared by every recorded unit.
type Status string

const (
	StatusMissing   Status = "missing"
	StatusGenerated Status = "generated"
)

// Task records a whole-project artifact such as the deck or raster set.
type Task struct {
	Status            Status    `json:"status"`
	SourceFile        string    `json:"source_file"`
	SourceFingerprint string    `json:"source_fingerprint,omitempty"`
	GeneratedAt       time.Time `json:"generated_at,omitzero"`
	Outputs           []string  `json:"outputs,omitempty"`
}

// Generated reports whether the task was built from fingerprint.
func (t Task) Generated(fingerprint string) bool {
	return t.Status == StatusGenerated && t.SourceFingerprint == fingerprint
}

// FinalMovie records the concatenated project video.
type FinalMovie struct {
	Status            Status    `json:"status"`
	FileName          string    `json:"file_name,omitempty"`
	SourceFingerprint string    `json:"source_fingerprint,omitempty"`
	GeneratedAt       time.Time `json:"generated_at,omitzero"`
	Slides            int       `json:"slides,omitempty"`
	DurationSec       float64   `json:"duration_sec,omitempty"`
	DurationMin       float64   `json:"duration_min,omitempty"`
}

// AudioState records the narration track of one slide.
type AudioState struct {
	Status           Status    `json:"status"`
	WavFilename      string    `json:"wav_filename"`
	GeneratedAt      time.Time `json:"generated_at,omitzero"`
	DurationSec      float64   `json:"duration_sec,omitempty"`
	AdditionalPrompt string    `json:"additional_prompt"`
}

// VideoState records the per-slide clip. Synthesized slides carry the wav and
// png fingerprints; pre-rendered slides carry the source video fingerprint.
type VideoState struct {
	Status                 Status    `json:"status"`
	WavFingerprint         string    `json:"wav_fingerprint,omitempty"`
	PNGFingerprint         string    `json:"png_fingerprint,omitempty"`
	SourceVideo            string    `json:"source_video,omitempty"`
	SourceVideoFingerprint string    `json:"source_video_fingerprint,omitempty"`
	DurationSec            float64   `json:"duration_sec,omitempty"`
	GeneratedAt            time.Time `json:"generated_at,omitzero"`
}

// SlideState is the persisted record for one slide.
type SlideState struct {
	SlideIndex       int         `json:"slide_index"`
	Title            string      `json:"title"`
	VideoOverride    string      `json:"video_override,omitempty"`
	NotesFingerprint string      `json:"notes_fingerprint,omitempty"`
	NotesLength      int         `json:"notes_length"`
	Audio            *AudioState `json:"audio"`
	Video            *VideoState `json:"video"`
}

// SlideMap holds slide records keyed by identifier. It encodes in slide order
// so the file reads top to bottom like the narration source.
type SlideMap map[string]*SlideState

// OrderedIDs returns the identifiers sorted by slide index, then identifier.
// Records without an index sort last.
func (m SlideMap) OrderedIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(sortIndex(m[a]), sortIndex(m[b])), strings.Compare(a, b))
	})
	return ids
}

func sortIndex(s *SlideState) int {
	if s == nil || s.SlideIndex <= 0 {
		return math.MaxInt
	}
	return s.SlideIndex
}

// MarshalJSON implements json.Marshaler.
func (m SlideMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, id := range m.OrderedIDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(id); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(m[id]); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// State is the full persisted build record of a project.
type State struct {
	SchemaVersion          string       `json:"schema_version"`
	ProjectID              string       `json:"project_id"`
	LastChecked            time.Time    `json:"last_checked,omitzero"`
	BuildConfig            *BuildConfig `json:"build_config,omitempty"`
	BuildConfigFingerprint string       `json:"build_config_fingerprint,omitempty"`
	TTSConfig              *TTSConfig   `json:"tts_config,omitempty"`
	TTSConfigFingerprint   string       `json:"tts_config_fingerprint,omitempty"`
	PPTXTask               Task         `json:"pptx_task"`
	ImagesTask             Task         `json:"images_task"`
	FinalMovie             FinalMovie   `json:"final_movie"`
	Slides                 SlideMap     `json:"slides"`
}

func newSlideState(id string) *SlideState {
	return &SlideState{
		Audio: newAudioState(id),
		Video: &VideoState{Status: StatusMissing},
	}
}

func newAudioState(id string) *AudioState {
	return &AudioState{Status: StatusMissing, WavFilename: id + ".wav"}
}

// encode renders s the way it is stored on disk: two space indentation with
// HTML characters and non-ASCII text left literal.
func encode(s *State) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
