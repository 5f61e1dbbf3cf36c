package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var qualityPattern = regexp.MustCompile(`^[0-9]{3,4}p$`)

// coreFontLanguages are subtitle languages whose alphabet fits the cp1252
// code page of the core PDF font.
var coreFontLanguages = map[string]bool{
	"af": true, "ca": true, "da": true, "de": true, "en": true, "es": true,
	"eu": true, "fi": true, "fr": true, "ga": true, "gl": true, "id": true,
	"is": true, "it": true, "lb": true, "ms": true, "nb": true, "nl": true,
	"nn": true, "no": true, "pt": true, "sq": true, "sv": true, "sw": true,
}

// PDFFontWarning describes subtitle languages whose PDFs will fail because
// render.pdf_font_path is empty. It returns "" when nothing is affected.
func (c *Config) PDFFontWarning() string {
	if c.Render.PDFFontPath != "" {
		return ""
	}
	var affected []string
	for _, lang := range c.Media.SubtitleLanguages {
		base, _, _ := strings.Cut(lang, "-")
		if !coreFontLanguages[base] {
			affected = append(affected, lang)
		}
	}
	if len(affected) == 0 {
		return ""
	}
	return fmt.Sprintf("render.pdf_font_path is empty; PDF subtitles in %s need a UTF-8 TrueType font (e.g. DejaVuSans.ttf) and will fail without one",
		strings.Join(affected, ", "))
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireTelegram reports a missing bot token. Commands that do not talk to
// Telegram (user export, doctor) run without one.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("telegram.token is required. Set AURORA_TELEGRAM_TOKEN env var or edit %s (create with 'aurora config init')", defaultPath)
}

func (c *Config) validateTelegram() error {
	if c.Telegram.PollTimeout > 600 {
		return errors.New("telegram.poll_timeout must be at most 600 seconds")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.LLM.Provider)
	}
	if c.LLM.RetryAttempts > 10 {
		return errors.New("llm.retry_attempts must be at most 10")
	}
	if c.LLM.RetryMaxDelayMS < c.LLM.RetryBaseDelayMS {
		return errors.New("llm.retry_max_delay_ms must be at least llm.retry_base_delay_ms")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if len(c.Media.Qualities) == 0 {
		return errors.New("media.qualities must list at least one tier")
	}
	for _, q := range c.Media.Qualities {
		if !qualityPattern.MatchString(q) {
			return fmt.Errorf("media.qualities: invalid tier %q (want e.g. \"720p\")", q)
		}
	}
	if len(c.Media.SubtitleLanguages) == 0 {
		return errors.New("media.subtitle_languages must list at least one language")
	}
	if c.Media.MaxUploadMB > 2000 {
		return errors.New("media.max_upload_mb must be at most 2000")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported level %q", c.Logging.Level)
	}
	return nil
}
