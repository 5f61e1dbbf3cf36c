package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeLLM()
	if err := c.normalizeMedia(); err != nil {
		return err
	}
	if err := c.normalizeRender(); err != nil {
		return err
	}
	c.normalizeSession()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	if c.Telegram.Token == "" {
		c.Telegram.Token = firstEnv("AURORA_TELEGRAM_TOKEN", "API_KEY")
	}
	c.Telegram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.BaseURL), "/")
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = defaultTelegramBaseURL
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = defaultTelegramPollTimeout
	}
	if c.Telegram.MaxConcurrent <= 0 {
		c.Telegram.MaxConcurrent = defaultTelegramMaxConcurrent
	}
	c.Telegram.Creator = strings.TrimSpace(c.Telegram.Creator)
	c.Telegram.AdminIDs = dedupeIDs(c.Telegram.AdminIDs)
	c.Telegram.AllowedChatIDs = dedupeIDs(c.Telegram.AllowedChatIDs)
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = firstEnv("GEMINI_API_KEY")
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultGeminiModel
		}
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = firstEnv("OPENROUTER_API_KEY")
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenAIBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenAIModel
		}
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
	if c.LLM.RetryBaseDelayMS <= 0 {
		c.LLM.RetryBaseDelayMS = defaultLLMRetryBaseDelayMS
	}
	if c.LLM.RetryMaxDelayMS <= 0 {
		c.LLM.RetryMaxDelayMS = defaultLLMRetryMaxDelayMS
	}
}

func (c *Config) normalizeMedia() error {
	c.Media.YtdlpBinary = strings.TrimSpace(c.Media.YtdlpBinary)
	if c.Media.YtdlpBinary == "" {
		c.Media.YtdlpBinary = defaultYtdlpBinary
	}
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	qualities := make([]string, 0, len(c.Media.Qualities))
	for _, q := range c.Media.Qualities {
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" {
			continue
		}
		if !strings.HasSuffix(q, "p") {
			q += "p"
		}
		if !slices.Contains(qualities, q) {
			qualities = append(qualities, q)
		}
	}
	c.Media.Qualities = qualities
	languages := make([]string, 0, len(c.Media.SubtitleLanguages))
	for _, lang := range c.Media.SubtitleLanguages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" && !slices.Contains(languages, lang) {
			languages = append(languages, lang)
		}
	}
	c.Media.SubtitleLanguages = languages
	if c.Media.MaxUploadMB <= 0 {
		c.Media.MaxUploadMB = defaultMaxUploadMB
	}
	return nil
}

func (c *Config) normalizeRender() error {
	c.Render.PDFFontPath = strings.TrimSpace(c.Render.PDFFontPath)
	if c.Render.PDFFontPath == "" {
		return nil
	}
	var err error
	if c.Render.PDFFontPath, err = expandPath(c.Render.PDFFontPath); err != nil {
		return fmt.Errorf("render.pdf_font_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSession() {
	if c.Session.IdleTTLMinutes <= 0 {
		c.Session.IdleTTLMinutes = defaultSessionIdleTTLMinutes
	}
	if c.Session.JanitorIntervalSeconds <= 0 {
		c.Session.JanitorIntervalSeconds = defaultSessionJanitorInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
