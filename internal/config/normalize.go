package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTTS()
	c.normalizeVideo()
	c.normalizeAudio()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.Provider = strings.ToLower(strings.TrimSpace(c.TTS.Provider))
	if c.TTS.Provider == "" {
		c.TTS.Provider = defaultTTSProvider
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	c.TTS.applyProviderDefaults()
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	c.TTS.BaseURL = strings.TrimSpace(c.TTS.BaseURL)
	if c.TTS.BaseURL == "" && c.TTS.Provider == ProviderOpenAI {
		if value, ok := os.LookupEnv(envOpenAIBaseURL); ok {
			c.TTS.BaseURL = strings.TrimSpace(value)
		}
	}
	c.TTS.lookupAPIKey()
	if c.TTS.RetryCooldownSeconds < 0 {
		c.TTS.RetryCooldownSeconds = 0
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

// applyProviderDefaults fills model and voice for the selected provider. A
// value that is another provider's default counts as unset, so switching
// providers does not carry over a model the new one cannot serve.
func (t *TTS) applyProviderDefaults() {
	current, ok := providerDefaults[t.Provider]
	if !ok {
		return
	}
	for name, other := range providerDefaults {
		if name == t.Provider {
			continue
		}
		if t.Model == other.model {
			t.Model = ""
		}
		if t.Voice == other.voice {
			t.Voice = ""
		}
	}
	if t.Model == "" {
		t.Model = current.model
	}
	if t.Voice == "" {
		t.Voice = current.voice
	}
}

// lookupAPIKey reads the provider's credential from the environment when
// the config file leaves it empty.
func (t *TTS) lookupAPIKey() {
	if t.APIKey == "" {
		t.APIKey = providerKey(t.Provider)
	}
}

func providerKey(provider string) string {
	for _, name := range providerDefaults[provider].keyEnv {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

func (c *Config) normalizeVideo() {
	c.Video.PixelFormat = strings.TrimSpace(c.Video.PixelFormat)
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = defaultPixelFormat
	}
	c.Video.Codec = strings.TrimSpace(c.Video.Codec)
	if c.Video.Codec == "" {
		c.Video.Codec = defaultVideoCodec
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Codec = strings.TrimSpace(c.Audio.Codec)
	if c.Audio.Codec == "" {
		c.Audio.Codec = defaultAudioCodec
	}
	c.Audio.Bitrate = strings.TrimSpace(c.Audio.Bitrate)
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputRoot) == "" {
		if value, ok := os.LookupEnv(envOutputRoot); ok {
			c.Paths.OutputRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.OutputRoot, err = expandPath(strings.TrimSpace(c.Paths.OutputRoot)); err != nil {
		return fmt.Errorf("paths.output_root: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = binaryOrDefault(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = binaryOrDefault(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.Pandoc = binaryOrDefault(c.Tools.Pandoc, defaultPandocBinary)
	c.Tools.Soffice = binaryOrDefault(c.Tools.Soffice, defaultSofficeBinary)
	c.Tools.Pdftoppm = binaryOrDefault(c.Tools.Pdftoppm, defaultPdftoppmBinary)
	c.Tools.FFmpegLogLevel = strings.ToLower(strings.TrimSpace(c.Tools.FFmpegLogLevel))
	if c.Tools.FFmpegLogLevel == "" {
		c.Tools.FFmpegLogLevel = defaultFFmpegLogLevel
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := ExpandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}

func binaryOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
