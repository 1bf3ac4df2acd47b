package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"slidemovie/internal/fileutil"
	"slidemovie/internal/services"
)

// OpenAIConfig configures the OpenAI speech provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// OpenAI synthesizes speech through the OpenAI audio API.
type OpenAI struct {
	client openai.Client
}

// NewOpenAI validates cfg and constructs the provider. Client level retries
// are disabled; Retry owns the attempt policy.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tts", "openai", "api key missing; set tts.api_key or OPENAI_API_KEY", nil)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &OpenAI{client: openai.NewClient(opts...)}, nil
}

// Synthesize implements Synthesizer.
func (o *OpenAI) Synthesize(ctx context.Context, req Request, outPath string) error {
	params := openai.AudioSpeechNewParams{
		Input:          req.Text,
		Model:          openai.SpeechModel(req.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(req.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	resp, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return classifyOpenAIError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, "tts", "openai", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return writeAudio("openai", resp.Body, outPath)
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests && (apiErr.Code == "insufficient_quota" || apiErr.Type == "insufficient_quota") {
			return fmt.Errorf("%w: %w", ErrQuotaExhausted, err)
		}
		return services.Wrap(services.ErrExternalTool, "tts", "openai", fmt.Sprintf("status %d", apiErr.StatusCode), err)
	}
	return services.Wrap(services.ErrTransient, "tts", "openai", "request failed", err)
}

// writeAudio streams body beside outPath and renames it into place once the
// download completes.
func writeAudio(provider string, body io.Reader, outPath string) error {
	tmp := fileutil.TempSibling(outPath)
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrTransient, "tts", provider, "download audio", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close audio file: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace audio file: %w", err)
	}
	return nil
}
