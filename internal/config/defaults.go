package config

const (
	defaultConfigPath             = "~/.config/aurora/config.toml"
	defaultScratchDir             = "~/.local/share/aurora/scratch"
	defaultDataDir                = "~/.local/share/aurora"
	defaultLogDir                 = "~/.local/share/aurora/logs"
	defaultTelegramBaseURL        = "https://api.telegram.org"
	defaultTelegramPollTimeout    = 30
	defaultTelegramMaxConcurrent  = 16
	defaultLLMProvider            = ProviderGemini
	defaultGeminiModel            = "gemini-2.5-flash"
	defaultOpenAIBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenAIModel            = "google/gemini-2.5-flash"
	defaultLLMReferer             = "https://github.com/aurora-bot/aurora"
	defaultLLMTitle               = "Aurora"
	defaultLLMTimeoutSeconds      = 60
	defaultLLMRetryAttempts       = 5
	defaultLLMRetryBaseDelayMS    = 1000
	defaultLLMRetryMaxDelayMS     = 16000
	defaultYtdlpBinary            = "yt-dlp"
	defaultFFmpegBinary           = "ffmpeg"
	defaultMaxUploadMB            = 50
	defaultSessionIdleTTLMinutes  = 120
	defaultSessionJanitorInterval = 300
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 30
)

// Supported completion providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Telegram: Telegram{
			BaseURL:       defaultTelegramBaseURL,
			PollTimeout:   defaultTelegramPollTimeout,
			MaxConcurrent: defaultTelegramMaxConcurrent,
		},
		LLM: LLM{
			Provider:         defaultLLMProvider,
			Referer:          defaultLLMReferer,
			Title:            defaultLLMTitle,
			TimeoutSeconds:   defaultLLMTimeoutSeconds,
			RetryAttempts:    defaultLLMRetryAttempts,
			RetryBaseDelayMS: defaultLLMRetryBaseDelayMS,
			RetryMaxDelayMS:  defaultLLMRetryMaxDelayMS,
		},
		Media: Media{
			YtdlpBinary:       defaultYtdlpBinary,
			FFmpegBinary:      defaultFFmpegBinary,
			Qualities:         []string{"144p", "360p", "720p", "1080p"},
			SubtitleLanguages: []string{"en", "ru"},
			MaxUploadMB:       defaultMaxUploadMB,
		},
		Session: Session{
			IdleTTLMinutes:         defaultSessionIdleTTLMinutes,
			JanitorIntervalSeconds: defaultSessionJanitorInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
