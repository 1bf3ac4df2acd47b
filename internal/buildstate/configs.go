package buildstate

import (
	"fmt"

	"slidemovie/internal/config"
	"slidemovie/internal/fingerprint"
)

// BuildConfig captures every setting that shapes all artifacts uniformly.
// Changing any of it after a partial build would mix formats in the final
// video, so a mismatch is fatal.
type BuildConfig struct {
	Screen ScreenConfig `json:"screen"`
	Video  VideoConfig  `json:"video"`
	Audio  AudioConfig  `json:"audio"`
	Common CommonConfig `json:"common"`
}

type ScreenConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type VideoConfig struct {
	FPS         int    `json:"fps"`
	Timescale   int    `json:"timescale"`
	PixelFormat string `json:"pix_fmt"`
	Codec       string `json:"codec"`
}

type AudioConfig struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Bitrate    string `json:"bitrate"`
	Channels   int    `json:"channels"`
}

type CommonConfig struct {
	SilenceSec float64 `json:"silence_sec"`
}

// TTSConfig captures the settings that only affect speech synthesis.
type TTSConfig struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Voice     string `json:"voice"`
	UsePrompt bool   `json:"use_prompt"`
	Prompt    string `json:"prompt"`
}

// NewBuildConfig extracts the build configuration from cfg.
func NewBuildConfig(cfg *config.Config) BuildConfig {
	return BuildConfig{
		Screen: ScreenConfig{Width: cfg.Video.Width, Height: cfg.Video.Height},
		Video: VideoConfig{
			FPS:         cfg.Video.FPS,
			Timescale:   cfg.Video.Timescale,
			PixelFormat: cfg.Video.PixelFormat,
			Codec:       cfg.Video.Codec,
		},
		Audio: AudioConfig{
			Codec:      cfg.Audio.Codec,
			SampleRate: cfg.Audio.SampleRate,
			Bitrate:    cfg.Audio.Bitrate,
			Channels:   cfg.Audio.Channels,
		},
		Common: CommonConfig{SilenceSec: cfg.Audio.SilenceSeconds},
	}
}

// NewTTSConfig extracts the synthesis configuration from cfg.
func NewTTSConfig(cfg *config.Config) TTSConfig {
	return TTSConfig{
		Provider:  cfg.TTS.Provider,
		Model:     cfg.TTS.Model,
		Voice:     cfg.TTS.Voice,
		UsePrompt: cfg.TTS.UsePrompt,
		Prompt:    cfg.TTS.Prompt,
	}
}

// Fingerprint digests the configuration.
func (b BuildConfig) Fingerprint() (string, error) {
	return fingerprint.Value(b)
}

// Fingerprint digests the configuration.
func (t TTSConfig) Fingerprint() (string, error) {
	return fingerprint.Value(t)
}

func (b BuildConfig) fields() []field {
	return []field{
		{"screen.width", fmt.Sprint(b.Screen.Width)},
		{"screen.height", fmt.Sprint(b.Screen.Height)},
		{"video.fps", fmt.Sprint(b.Video.FPS)},
		{"video.timescale", fmt.Sprint(b.Video.Timescale)},
		{"video.pix_fmt", b.Video.PixelFormat},
		{"video.codec", b.Video.Codec},
		{"audio.codec", b.Audio.Codec},
		{"audio.sample_rate", fmt.Sprint(b.Audio.SampleRate)},
		{"audio.bitrate", b.Audio.Bitrate},
		{"audio.channels", fmt.Sprint(b.Audio.Channels)},
		{"common.silence_sec", fmt.Sprint(b.Common.SilenceSec)},
	}
}

func (t TTSConfig) fields() []field {
	return []field{
		{"provider", t.Provider},
		{"model", t.Model},
		{"voice", t.Voice},
		{"use_prompt", fmt.Sprint(t.UsePrompt)},
		{"prompt", t.Prompt},
	}
}

type field struct {
	key   string
	value string
}

// Change is one differing configuration key.
type Change struct {
	Key     string
	Stored  string
	Current string
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %q -> %q", c.Key, c.Stored, c.Current)
}

// DiffBuild lists the keys that differ between two build configurations.
func DiffBuild(stored, current BuildConfig) []Change {
	return diff(stored.fields(), current.fields())
}

// DiffTTS lists the keys that differ between two synthesis configurations.
func DiffTTS(stored, current TTSConfig) []Change {
	return diff(stored.fields(), current.fields())
}

func diff(stored, current []field) []Change {
	var changes []Change
	for i := range stored {
		if stored[i].value != current[i].value {
			changes = append(changes, Change{Key: stored[i].key, Stored: stored[i].value, Current: current[i].value})
		}
	}
	return changes
}
