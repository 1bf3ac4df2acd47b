package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"slidemovie/internal/config"
	"slidemovie/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTTSCredentials verifies the configured provider has what it needs to
// authenticate. It does not contact the service.
func CheckTTSCredentials(cfg *config.Config) Result {
	name := fmt.Sprintf("Speech synthesis (%s)", cfg.TTS.Provider)
	var keyHint string
	switch cfg.TTS.Provider {
	case config.ProviderGoogle:
		keyHint = "GEMINI_API_KEY"
	case config.ProviderOpenAI:
		keyHint = "OPENAI_API_KEY"
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unsupported provider %q", cfg.TTS.Provider)}
	}
	if cfg.TTS.APIKey == "" {
		return Result{Name: name, Detail: fmt.Sprintf("API key missing (set tts.api_key or %s)", keyHint)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s, voice %s", cfg.TTS.Model, cfg.TTS.Voice)}
}

// FromStatus converts a dependency status into a preflight result. Optional
// tools never fail the check.
func FromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available || status.Optional}
	switch {
	case status.Available:
		result.Detail = status.Path
	case status.Optional:
		result.Detail = status.Detail + " (optional)"
	default:
		result.Detail = status.Detail
	}
	return result
}
