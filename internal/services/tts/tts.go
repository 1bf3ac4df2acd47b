package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/services"
)

var (
	// ErrQuotaExhausted reports that the provider refused the request for
	// lack of quota. Retrying cannot help.
	ErrQuotaExhausted = errors.New("tts quota exhausted")
	// ErrRetriesExhausted reports that every allowed attempt failed.
	ErrRetriesExhausted = errors.New("tts retries exhausted")
)

// Request is one synthesis call.
type Request struct {
	Text string
	// Instructions steer delivery (tone, pacing). Empty means none.
	Instructions string
	Voice        string
	Model        string
}

// Synthesizer renders speech for a request into a WAV file at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request, outPath string) error
}

// New builds the provider selected by cfg.TTS.Provider.
func New(ctx context.Context, cfg *config.Config) (Synthesizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.TTS.Provider)) {
	case config.ProviderGoogle:
		return NewGemini(ctx, GeminiConfig{
			APIKey:  cfg.TTS.APIKey,
			BaseURL: cfg.TTS.BaseURL,
			Timeout: cfg.TTSTimeout(),
		})
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.TTS.APIKey,
			BaseURL: cfg.TTS.BaseURL,
			Timeout: cfg.TTSTimeout(),
		})
	default:
		return nil, services.Wrap(services.ErrConfiguration, "tts", "select provider", fmt.Sprintf("unsupported provider %q", cfg.TTS.Provider), nil)
	}
}

// Instructions returns the delivery prompt for a slide, or "" when prompts
// are disabled.
func Instructions(cfg config.TTS, additional string) string {
	if !cfg.UsePrompt {
		return ""
	}
	return strings.TrimSpace(cfg.Prompt + additional)
}
