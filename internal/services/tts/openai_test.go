package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/openai/openai-go"

	"slidemovie/internal/config"
	"slidemovie/internal/services"
)

func TestOpenAISynthesizeWritesWAV(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF-audio"))
	}))
	defer srv.Close()

	synth, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewOpenAI returned error: %v", err)
	}
	out := filepath.Join(t.TempDir(), "s1.wav")
	req := Request{Text: "Hello there", Instructions: "Speak calmly.", Voice: "alloy", Model: "gpt-4o-mini-tts"}
	if err := synth.Synthesize(context.Background(), req, out); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "RIFF-audio" {
		t.Fatalf("unexpected output %q (%v)", data, err)
	}
	for key, want := range map[string]string{
		"input":           "Hello there",
		"instructions":    "Speak calmly.",
		"voice":           "alloy",
		"model":           "gpt-4o-mini-tts",
		"response_format": "wav",
	} {
		if got, _ := body[key].(string); got != want {
			t.Fatalf("request field %s: got %q want %q", key, got, want)
		}
	}
}

func TestOpenAIServerErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	synth, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "s1.wav")
	err = synth.Synthesize(context.Background(), Request{Text: "x", Voice: "alloy", Model: "tts-1"}, out)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("server errors must stay retryable: %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("expected no output file")
	}
}

func TestClassifyQuotaExhaustion(t *testing.T) {
	quota := fmt.Errorf("POST audio/speech: %w", &openai.Error{StatusCode: http.StatusTooManyRequests, Code: "insufficient_quota"})
	if err := classifyOpenAIError(quota); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("expected quota exhaustion, got %v", err)
	}
	rate := &openai.Error{StatusCode: http.StatusTooManyRequests, Code: "rate_limit_exceeded"}
	if err := classifyOpenAIError(rate); errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("rate limiting must stay retryable: %v", err)
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.TTS.APIKey = "k"
	synth, err := New(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := synth.(*Gemini); !ok {
		t.Fatalf("default provider built %T, want *Gemini", synth)
	}

	cfg.TTS.Provider = config.ProviderOpenAI
	if synth, err = New(context.Background(), &cfg); err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := synth.(*OpenAI); !ok {
		t.Fatalf("openai provider built %T, want *OpenAI", synth)
	}

	cfg.TTS.Provider = "espeak"
	if _, err := New(context.Background(), &cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestInstructions(t *testing.T) {
	cfg := config.TTS{UsePrompt: true, Prompt: "Please speak the following."}
	if got := Instructions(cfg, " Slowly."); got != "Please speak the following. Slowly." {
		t.Fatalf("unexpected instructions %q", got)
	}
	cfg.UsePrompt = false
	if got := Instructions(cfg, "ignored"); got != "" {
		t.Fatalf("expected no instructions, got %q", got)
	}
}
