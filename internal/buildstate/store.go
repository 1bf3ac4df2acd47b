package buildstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"slidemovie/internal/fileutil"
	"slidemovie/internal/logging"
	"slidemovie/internal/slides"
)

var (
	// ErrLocked reports that another run holds the project lock.
	ErrLocked = errors.New("project is locked by another run")
	// ErrBuildConfigMismatch reports that build settings changed since the
	// state file was written.
	ErrBuildConfigMismatch = errors.New("build configuration changed")
	// ErrAborted reports that the operator declined to continue.
	ErrAborted = errors.New("aborted by operator")
)

// ConfigMismatchError carries the differing build settings.
type ConfigMismatchError struct {
	Stored  BuildConfig
	Current BuildConfig
	Changes []Change
}

func (e *ConfigMismatchError) Error() string {
	parts := make([]string, 0, len(e.Changes))
	for _, c := range e.Changes {
		parts = append(parts, c.String())
	}
	msg := "build configuration changed since the last build; resolution, codec, and timing settings cannot change mid-project"
	if len(parts) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ConfigMismatchError) Unwrap() error { return ErrBuildConfigMismatch }

// Decision is the operator's answer to a synthesis configuration conflict.
type Decision int

const (
	Abort Decision = iota
	Overwrite
)

// TTSConflict describes a synthesis configuration that changed since the
// state file was written.
type TTSConflict struct {
	Stored  TTSConfig
	Current TTSConfig
	Changes []Change
}

// ConflictResolver decides whether to continue with a changed synthesis
// configuration.
type ConflictResolver func(ctx context.Context, conflict TTSConflict) (Decision, error)

// Settings is the current configuration a store validates against.
type Settings struct {
	Build BuildConfig
	TTS   TTSConfig
	// NarrationFile and DeckFile are recorded as task source names.
	NarrationFile string
	DeckFile      string
}

// Store owns the state file of one project.
type Store struct {
	path      string
	projectID string
	settings  Settings
	buildFP   string
	ttsFP     string
	lock      *flock.Flock
	state     *State
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLockFile places the project lock at path instead of next to the state
// file.
func WithLockFile(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.lock = flock.New(path)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open locks the project whose state lives at path. The state itself is read
// by Load.
func Open(path, projectID string, settings Settings, opts ...Option) (*Store, error) {
	buildFP, err := settings.Build.Fingerprint()
	if err != nil {
		return nil, err
	}
	ttsFP, err := settings.TTS.Fingerprint()
	if err != nil {
		return nil, err
	}
	s := &Store{
		path:      path,
		projectID: projectID,
		settings:  settings,
		buildFP:   buildFP,
		ttsFP:     ttsFP,
		lock:      flock.New(path + ".lock"),
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.lock.Path()), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, s.lock.Path())
	}
	return s, nil
}

// Close releases the project lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// State returns the loaded state. Callers mutate it and then call Save.
func (s *Store) State() *State { return s.state }

// Slide returns the record for id, or nil.
func (s *Store) Slide(id string) *SlideState {
	if s.state == nil {
		return nil
	}
	return s.state.Slides[id]
}

// Load reads the state file and validates it against the current settings.
// A missing file yields fresh state that is not written until the first save.
// Records from older schemas without configuration fingerprints are stamped
// with the current settings and saved. A changed build configuration is fatal
// and leaves the file untouched. A changed synthesis configuration is put to
// resolve; declining (or a nil resolver) returns ErrAborted without writing.
func (s *Store) Load(ctx context.Context, resolve ConflictResolver) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.state = s.fresh()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode state file %s: %w", s.path, err)
	}

	migrated, err := s.checkBuild(&st)
	if err != nil {
		return err
	}
	ttsChanged, err := s.checkTTS(ctx, &st, resolve)
	if err != nil {
		return err
	}
	if st.Slides == nil {
		st.Slides = SlideMap{}
	}
	if st.SchemaVersion == "" {
		st.SchemaVersion = SchemaVersion
		migrated = true
	}
	if st.ProjectID == "" {
		st.ProjectID = s.projectID
		migrated = true
	}
	s.state = &st
	if migrated || ttsChanged {
		return s.Save()
	}
	return nil
}

func (s *Store) checkBuild(st *State) (bool, error) {
	if st.BuildConfig == nil && st.BuildConfigFingerprint == "" {
		s.logger.Info("state file has no build config; recording current settings")
		s.stampBuild(st)
		return true, nil
	}
	migrated := false
	if st.BuildConfigFingerprint == "" {
		fp, err := st.BuildConfig.Fingerprint()
		if err != nil {
			return false, err
		}
		st.BuildConfigFingerprint = fp
		migrated = true
	}
	if st.BuildConfigFingerprint == s.buildFP {
		if st.BuildConfig == nil {
			stored := s.settings.Build
			st.BuildConfig = &stored
			migrated = true
		}
		return migrated, nil
	}
	var stored BuildConfig
	if st.BuildConfig != nil {
		stored = *st.BuildConfig
	}
	return false, &ConfigMismatchError{
		Stored:  stored,
		Current: s.settings.Build,
		Changes: DiffBuild(stored, s.settings.Build),
	}
}

func (s *Store) checkTTS(ctx context.Context, st *State, resolve ConflictResolver) (bool, error) {
	if st.TTSConfig == nil && st.TTSConfigFingerprint == "" {
		s.logger.Info("state file has no tts config; recording current settings")
		s.stampTTS(st)
		return true, nil
	}
	storedFP := st.TTSConfigFingerprint
	if storedFP == "" {
		fp, err := st.TTSConfig.Fingerprint()
		if err != nil {
			return false, err
		}
		storedFP = fp
	}
	if storedFP == s.ttsFP {
		changed := st.TTSConfigFingerprint == "" || st.TTSConfig == nil
		s.stampTTS(st)
		return changed, nil
	}
	var stored TTSConfig
	if st.TTSConfig != nil {
		stored = *st.TTSConfig
	}
	if resolve == nil {
		return false, ErrAborted
	}
	decision, err := resolve(ctx, TTSConflict{
		Stored:  stored,
		Current: s.settings.TTS,
		Changes: DiffTTS(stored, s.settings.TTS),
	})
	if err != nil {
		return false, err
	}
	if decision != Overwrite {
		return false, ErrAborted
	}
	s.logger.Info("applying new tts config", logging.String(logging.FieldEventType, "tts_config_overwritten"))
	s.stampTTS(st)
	return true, nil
}

func (s *Store) stampBuild(st *State) {
	current := s.settings.Build
	st.BuildConfig = &current
	st.BuildConfigFingerprint = s.buildFP
}

func (s *Store) stampTTS(st *State) {
	current := s.settings.TTS
	st.TTSConfig = &current
	st.TTSConfigFingerprint = s.ttsFP
}

func (s *Store) fresh() *State {
	st := &State{
		SchemaVersion: SchemaVersion,
		ProjectID:     s.projectID,
		PPTXTask:      Task{Status: StatusMissing, SourceFile: s.settings.NarrationFile},
		ImagesTask:    Task{Status: StatusMissing, SourceFile: s.settings.DeckFile},
		FinalMovie:    FinalMovie{Status: StatusMissing},
		Slides:        SlideMap{},
	}
	s.stampBuild(st)
	s.stampTTS(st)
	return st
}

// Sync reconciles the slide records with a freshly parsed narration source.
// Missing records are added, order, title, and override are refreshed, and
// sub-records absent from older files are backfilled. Records for slides no
// longer in the source are kept. The state is saved once if anything changed.
func (s *Store) Sync(parsed []slides.Slide) (bool, error) {
	if s.state == nil {
		return false, errors.New("buildstate: sync before load")
	}
	changed := false
	for _, slide := range parsed {
		rec, ok := s.state.Slides[slide.ID]
		if !ok || rec == nil {
			rec = newSlideState(slide.ID)
			s.state.Slides[slide.ID] = rec
			changed = true
		}
		if rec.SlideIndex != slide.Index {
			rec.SlideIndex = slide.Index
			changed = true
		}
		if rec.Title != slide.Title {
			rec.Title = slide.Title
			changed = true
		}
		if rec.VideoOverride != slide.VideoOverride {
			rec.VideoOverride = slide.VideoOverride
			changed = true
		}
		if backfill(rec, slide.ID) {
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	s.logger.Info("slide order and metadata updated", logging.Int("slides", len(parsed)))
	return true, s.Save()
}

func backfill(rec *SlideState, id string) bool {
	changed := false
	if rec.Audio == nil {
		rec.Audio = newAudioState(id)
		changed = true
	}
	if rec.Audio.WavFilename == "" {
		rec.Audio.WavFilename = id + ".wav"
		changed = true
	}
	if rec.Audio.Status == "" {
		rec.Audio.Status = StatusMissing
		changed = true
	}
	if rec.Video == nil {
		rec.Video = &VideoState{Status: StatusMissing}
		changed = true
	}
	if rec.Video.Status == "" {
		rec.Video.Status = StatusMissing
		changed = true
	}
	return changed
}

// Now returns the store clock truncated to seconds, the precision timestamps
// are recorded with.
func (s *Store) Now() time.Time {
	return s.now().Truncate(time.Second)
}

// Save stamps last_checked and atomically replaces the state file.
func (s *Store) Save() error {
	if s.state == nil {
		return errors.New("buildstate: save before load")
	}
	s.state.LastChecked = s.Now()
	data, err := encode(s.state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, fileutil.FileMode(s.path, 0o644)); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Read decodes the state file at path without locking or validating it.
func Read(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", path, err)
	}
	if st.Slides == nil {
		st.Slides = SlideMap{}
	}
	return &st, nil
}
