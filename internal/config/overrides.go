package config

import (
	"strings"
	"time"
)

// Overrides carries command line adjustments. Empty strings and nil pointers
// leave the loaded value unchanged.
type Overrides struct {
	OutputRoot  string
	TTSProvider string
	TTSModel    string
	TTSVoice    string
	// Prompt replaces the speaking prompt and enables it.
	Prompt *string
	// NoPrompt disables the speaking prompt. It wins over Prompt.
	NoPrompt bool
	// Debug raises ffmpeg verbosity, enables per-unit skip logging, and
	// switches the log level to debug.
	Debug bool
}

// WithOverrides returns a copy of c with o applied. The receiver is not
// modified.
func (c Config) WithOverrides(o Overrides) (Config, error) {
	out := c
	if root := strings.TrimSpace(o.OutputRoot); root != "" {
		expanded, err := expandPath(root)
		if err != nil {
			return Config{}, err
		}
		out.Paths.OutputRoot = expanded
	}
	if v := strings.TrimSpace(o.TTSModel); v != "" {
		out.TTS.Model = v
	}
	if v := strings.TrimSpace(o.TTSVoice); v != "" {
		out.TTS.Voice = v
	}
	if v := strings.ToLower(strings.TrimSpace(o.TTSProvider)); v != "" && v != out.TTS.Provider {
		out.TTS.Provider = v
		out.TTS.applyProviderDefaults()
		if c.TTS.APIKey != "" && c.TTS.APIKey == providerKey(c.TTS.Provider) {
			out.TTS.APIKey = ""
		}
		out.TTS.lookupAPIKey()
	}
	if o.Prompt != nil {
		out.TTS.Prompt = *o.Prompt
		out.TTS.UsePrompt = true
	}
	if o.NoPrompt {
		out.TTS.UsePrompt = false
	}
	if o.Debug {
		out.Tools.FFmpegLogLevel = defaultFFmpegDebugLogLevel
		out.Logging.ShowSkip = true
		out.Logging.Level = "debug"
	}
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// RetryCooldown returns the wait between synthesis attempts.
func (c Config) RetryCooldown() time.Duration {
	return time.Duration(c.TTS.RetryCooldownSeconds) * time.Second
}

// TTSTimeout bounds a single synthesis request.
func (c Config) TTSTimeout() time.Duration {
	return time.Duration(c.TTS.TimeoutSeconds) * time.Second
}

// NtfyTimeout bounds a single notification request.
func (c Config) NtfyTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}
