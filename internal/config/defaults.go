package config

const (
	defaultTTSProvider          = ProviderGoogle
	defaultTTSUsePrompt         = true
	defaultTTSPrompt            = "Please speak the following."
	defaultTTSMaxAttempts       = 2
	defaultTTSRetryCooldown     = 180
	defaultTTSTimeoutSeconds    = 120
	defaultScreenWidth          = 1280
	defaultScreenHeight         = 720
	defaultFPS                  = 30
	defaultTimescale            = 90000
	defaultPixelFormat          = "yuv420p"
	defaultVideoCodec           = "libx264"
	defaultAudioCodec           = "aac"
	defaultSampleRate           = 44100
	defaultAudioBitrate         = "192k"
	defaultAudioChannels        = 2
	defaultSilenceSeconds       = 2.5
	defaultHistoryDB            = "~/.local/share/slidemovie/history.db"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultPandocBinary         = "pandoc"
	defaultSofficeBinary        = "soffice"
	defaultPdftoppmBinary       = "pdftoppm"
	defaultFFmpegLogLevel       = "error"
	defaultFFmpegDebugLogLevel  = "info"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNtfyTimeoutSeconds   = 10
	defaultGlobalConfigPath     = "~/.config/slidemovie/config.toml"
	localConfigName             = "slidemovie.toml"
	envOpenAIAPIKey             = "OPENAI_API_KEY"
	envGeminiAPIKey             = "GEMINI_API_KEY"
	envGoogleAPIKey             = "GOOGLE_API_KEY"
	envOpenAIBaseURL            = "OPENAI_BASE_URL"
	envOutputRoot               = "SLIDEMOVIE_OUTPUT_ROOT"
)

// Supported speech synthesis providers.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

type providerDefault struct {
	model  string
	voice  string
	keyEnv []string
}

var providerDefaults = map[string]providerDefault{
	ProviderGoogle: {model: "gemini-2.5-flash-preview-tts", voice: "sadaltager", keyEnv: []string{envGeminiAPIKey, envGoogleAPIKey}},
	ProviderOpenAI: {model: "gpt-4o-mini-tts", voice: "alloy", keyEnv: []string{envOpenAIAPIKey}},
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TTS: TTS{
			Provider:             defaultTTSProvider,
			Model:                providerDefaults[defaultTTSProvider].model,
			Voice:                providerDefaults[defaultTTSProvider].voice,
			UsePrompt:            defaultTTSUsePrompt,
			Prompt:               defaultTTSPrompt,
			MaxAttempts:          defaultTTSMaxAttempts,
			RetryCooldownSeconds: defaultTTSRetryCooldown,
			TimeoutSeconds:       defaultTTSTimeoutSeconds,
		},
		Video: Video{
			Width:       defaultScreenWidth,
			Height:      defaultScreenHeight,
			FPS:         defaultFPS,
			Timescale:   defaultTimescale,
			PixelFormat: defaultPixelFormat,
			Codec:       defaultVideoCodec,
		},
		Audio: Audio{
			Codec:          defaultAudioCodec,
			SampleRate:     defaultSampleRate,
			Bitrate:        defaultAudioBitrate,
			Channels:       defaultAudioChannels,
			SilenceSeconds: defaultSilenceSeconds,
		},
		Paths: Paths{
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			FFmpeg:         defaultFFmpegBinary,
			FFprobe:        defaultFFprobeBinary,
			Pandoc:         defaultPandocBinary,
			Soffice:        defaultSofficeBinary,
			Pdftoppm:       defaultPdftoppmBinary,
			FFmpegLogLevel: defaultFFmpegLogLevel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}
