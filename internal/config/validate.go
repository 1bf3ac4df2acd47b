package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ffmpegLogLevels = map[string]struct{}{
	"quiet": {}, "panic": {}, "fatal": {}, "error": {}, "warning": {},
	"info": {}, "verbose": {}, "debug": {}, "trace": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.Model == "" {
		return errors.New("tts.model must be set")
	}
	if c.TTS.Voice == "" {
		return errors.New("tts.voice must be set")
	}
	if c.TTS.MaxAttempts < 1 {
		return errors.New("tts.max_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ensurePositive(map[string]int{
		"video.width":     c.Video.Width,
		"video.height":    c.Video.Height,
		"video.fps":       c.Video.FPS,
		"video.timescale": c.Video.Timescale,
	}); err != nil {
		return err
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return fmt.Errorf("video.width and video.height must be even, got %dx%d", c.Video.Width, c.Video.Height)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if err := ensurePositive(map[string]int{
		"audio.sample_rate": c.Audio.SampleRate,
		"audio.channels":    c.Audio.Channels,
	}); err != nil {
		return err
	}
	if c.Audio.SilenceSeconds < 0 {
		return errors.New("audio.silence_sec must not be negative")
	}
	return nil
}

func (c *Config) validateTools() error {
	if _, ok := ffmpegLogLevels[c.Tools.FFmpegLogLevel]; !ok {
		return fmt.Errorf("tools.ffmpeg_loglevel: unsupported value %q", c.Tools.FFmpegLogLevel)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositive(values map[string]int) error {
	var bad []string
	for key, value := range values {
		if value <= 0 {
			bad = append(bad, key)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return fmt.Errorf("%s must be positive", strings.Join(bad, ", "))
}
