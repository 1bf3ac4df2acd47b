package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// TTS contains speech synthesis settings.
type TTS struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	Voice     string `toml:"voice"`
	UsePrompt bool   `toml:"use_prompt"`
	Prompt    string `toml:"prompt"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	// MaxAttempts bounds synthesis calls per slide, including the first.
	MaxAttempts          int `toml:"max_attempts"`
	RetryCooldownSeconds int `toml:"retry_cooldown_seconds"`
	TimeoutSeconds       int `toml:"timeout_seconds"`
}

// Video contains the frame settings every per-slide clip is encoded with.
type Video struct {
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	FPS         int    `toml:"fps"`
	Timescale   int    `toml:"timescale"`
	PixelFormat string `toml:"pix_fmt"`
	Codec       string `toml:"codec"`
}

// Audio contains the audio track settings shared by every clip.
type Audio struct {
	Codec      string `toml:"codec"`
	SampleRate int    `toml:"sample_rate"`
	Bitrate    string `toml:"bitrate"`
	Channels   int    `toml:"channels"`
	// SilenceSeconds is prepended to each narration track.
	SilenceSeconds float64 `toml:"silence_sec"`
}

// Paths contains output and bookkeeping locations.
type Paths struct {
	// OutputRoot is the default root for artifact directories. Empty means
	// "<source>/movie".
	OutputRoot string `toml:"output_root"`
	// HistoryDB is the sqlite run history. Empty disables history.
	HistoryDB string `toml:"history_db"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg         string `toml:"ffmpeg"`
	FFprobe        string `toml:"ffprobe"`
	Pandoc         string `toml:"pandoc"`
	Soffice        string `toml:"soffice"`
	Pdftoppm       string `toml:"pdftoppm"`
	FFmpegLogLevel string `toml:"ffmpeg_loglevel"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// ShowSkip logs every skipped or warned unit instead of only stage
	// summaries.
	ShowSkip bool `toml:"show_skip"`
	// File receives a copy of every log line in addition to stderr.
	File string `toml:"file"`
}

// Notifications configures optional ntfy push messages when an action
// finishes.
type Notifications struct {
	// NtfyTopic is the full topic URL. Empty disables notifications.
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for slidemovie.
//
// Configuration sections by subsystem:
//   - TTS: speech synthesis provider, voice, prompt, and retry policy
//   - Video: frame size, rate, timescale, pixel format, and codec
//   - Audio: codec, sample rate, bitrate, channels, and lead-in silence
//   - Paths: output root and run history database
//   - Tools: external binaries and ffmpeg verbosity
//   - Logging: log format, level, and per-unit skip reporting
//   - Notifications: ntfy topic for completion and failure messages
type Config struct {
	TTS     TTS     `toml:"tts"`
	Video   Video   `toml:"video"`
	Audio   Audio   `toml:"audio"`
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`

	Notifications Notifications `toml:"notifications"`
}

// Sources records which files contributed to a loaded Config and any
// non-fatal problems met while locating them.
type Sources struct {
	Files    []string
	Created  string
	Warnings []string
}

// DefaultConfigPath returns the absolute path of the global configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultGlobalConfigPath)
}

// Load builds a Config from defaults and configuration files, then normalizes
// and validates it. With an explicit path only that file is read and it must
// exist. Otherwise the global file is read (and created from the sample when
// missing) and ./slidemovie.toml is overlaid when present. Failing to create
// the global file is reported in Sources.Warnings, never as an error.
func Load(path string) (*Config, Sources, error) {
	cfg := Default()
	var sources Sources

	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, sources, err
		}
		if err := decodeFile(expanded, &cfg); err != nil {
			return nil, sources, err
		}
		sources.Files = append(sources.Files, expanded)
	} else {
		if err := loadLayered(&cfg, &sources); err != nil {
			return nil, sources, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, sources, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, sources, err
	}
	return &cfg, sources, nil
}

func loadLayered(cfg *Config, sources *Sources) error {
	globalPath, err := DefaultConfigPath()
	if err != nil {
		sources.Warnings = append(sources.Warnings, fmt.Sprintf("resolve global config: %v", err))
	} else {
		exists, err := fileExists(globalPath)
		switch {
		case err != nil:
			sources.Warnings = append(sources.Warnings, fmt.Sprintf("global config: %v", err))
		case !exists:
			if err := CreateSample(globalPath); err != nil {
				sources.Warnings = append(sources.Warnings, fmt.Sprintf("create global config: %v", err))
				break
			}
			sources.Created = globalPath
			fallthrough
		default:
			if err := decodeFile(globalPath, cfg); err != nil {
				return err
			}
			sources.Files = append(sources.Files, globalPath)
		}
	}

	localPath, err := filepath.Abs(localConfigName)
	if err != nil {
		return fmt.Errorf("resolve local config: %w", err)
	}
	exists, err := fileExists(localPath)
	if err != nil {
		return err
	}
	if exists {
		if err := decodeFile(localPath, cfg); err != nil {
			return err
		}
		sources.Files = append(sources.Files, localPath)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
