package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"slidemovie/internal/services"
)

const (
	geminiQuotaStatus = "RESOURCE_EXHAUSTED"
	geminiSampleRate  = 24000
)

// GeminiConfig configures the Google Gemini speech provider.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Gemini synthesizes speech through the Gemini generateContent API with an
// audio response modality.
type Gemini struct {
	client *genai.Client
}

// NewGemini validates cfg and constructs the provider.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tts", "google", "api key missing; set tts.api_key or GEMINI_API_KEY", nil)
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "tts", "google", "create client", err)
	}
	return &Gemini{client: client}, nil
}

// Synthesize implements Synthesizer. Gemini takes delivery instructions as
// part of the spoken prompt and answers with raw 16-bit PCM, which is
// wrapped in a WAV container.
func (g *Gemini) Synthesize(ctx context.Context, req Request, outPath string) error {
	text := req.Text
	if req.Instructions != "" {
		text = req.Instructions + "\n" + req.Text
	}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		},
	})
	if err != nil {
		return classifyGeminiError(err)
	}
	blob := audioPart(resp)
	if blob == nil || len(blob.Data) == 0 {
		return services.Wrap(services.ErrExternalTool, "tts", "google", "response carried no audio", nil)
	}
	return writeAudio("google", wavReader(blob.Data, sampleRate(blob.MIMEType)), outPath)
}

func audioPart(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil {
				return part.InlineData
			}
		}
	}
	return nil
}

// sampleRate reads the rate parameter of an "audio/L16;codec=pcm;rate=N"
// MIME type.
func sampleRate(mimeType string) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return geminiSampleRate
	}
	if rate, err := strconv.Atoi(params["rate"]); err == nil && rate > 0 {
		return rate
	}
	return geminiSampleRate
}

type wavHeader struct {
	RIFF          [4]byte
	Size          uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// wavReader prefixes mono 16-bit PCM with a canonical RIFF header.
func wavReader(pcm []byte, rate int) io.Reader {
	const blockAlign = 2
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		Size:          uint32(36 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		Format:        1,
		Channels:      1,
		SampleRate:    uint32(rate),
		ByteRate:      uint32(rate * blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: 16,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}
	var header bytes.Buffer
	_ = binary.Write(&header, binary.LittleEndian, h)
	return io.MultiReader(&header, bytes.NewReader(pcm))
}

func classifyGeminiError(err error) error {
	code, status, ok := geminiAPIError(err)
	if !ok {
		return services.Wrap(services.ErrTransient, "tts", "google", "request failed", err)
	}
	if status == geminiQuotaStatus {
		return fmt.Errorf("%w: %w", ErrQuotaExhausted, err)
	}
	return services.Wrap(services.ErrExternalTool, "tts", "google", fmt.Sprintf("status %d %s", code, status), err)
}

func geminiAPIError(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}
