package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// Telegram contains Bot API transport settings.
type Telegram struct {
	Token          string  `toml:"token"`
	BaseURL        string  `toml:"base_url"`
	PollTimeout    int     `toml:"poll_timeout"`
	AdminIDs       []int64 `toml:"admin_ids"`
	AllowedChatIDs []int64 `toml:"allowed_chat_ids"`
	MaxConcurrent  int     `toml:"max_concurrent"`
	Creator        string  `toml:"creator"`
}

// LLM contains completion backend settings for free-form chat.
type LLM struct {
	Provider         string `toml:"provider"`
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	Model            string `toml:"model"`
	Referer          string `toml:"referer"`
	Title            string `toml:"title"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	RetryAttempts    int    `toml:"retry_attempts"`
	RetryBaseDelayMS int    `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS  int    `toml:"retry_max_delay_ms"`
	SystemPrompt     string `toml:"system_prompt"`
}

// Media contains media provider and combiner settings.
type Media struct {
	YtdlpBinary       string   `toml:"ytdlp_binary"`
	FFmpegBinary      string   `toml:"ffmpeg_binary"`
	Qualities         []string `toml:"qualities"`
	SubtitleLanguages []string `toml:"subtitle_languages"`
	MaxUploadMB       int      `toml:"max_upload_mb"`
}

// Render contains document renderer settings.
type Render struct {
	PDFFontPath string `toml:"pdf_font_path"`
}

// Session contains conversation session lifetime settings.
type Session struct {
	IdleTTLMinutes         int `toml:"idle_ttl_minutes"`
	JanitorIntervalSeconds int `toml:"janitor_interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Aurora.
//
// Configuration sections by subsystem:
//   - Paths: scratch area, sqlite/lock data directory, logs
//   - Telegram: bot token, polling and admin identities
//   - LLM: completion backend for free-form chat
//   - Media: yt-dlp/ffmpeg binaries, offered qualities and subtitle languages
//   - Render: PDF font for subtitle documents
//   - Session: idle session eviction
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Telegram Telegram `toml:"telegram"`
	LLM      LLM      `toml:"llm"`
	Media    Media    `toml:"media"`
	Render   Render   `toml:"render"`
	Session  Session  `toml:"session"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("aurora.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for bot operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DirectoryPath returns the SQLite database location of the user directory.
func (c *Config) DirectoryPath() string {
	return filepath.Join(c.Paths.DataDir, "users.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "aurora.lock")
}

// OffsetPath returns the file that persists the Telegram update offset.
func (c *Config) OffsetPath() string {
	return filepath.Join(c.Paths.DataDir, "telegram.offset")
}

// IsAdmin reports whether the Telegram user id is allowed to run admin commands.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionIdleTTL returns how long an untouched session survives.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.Session.IdleTTLMinutes) * time.Minute
}

// SessionJanitorInterval returns the idle session sweep period.
func (c *Config) SessionJanitorInterval() time.Duration {
	return time.Duration(c.Session.JanitorIntervalSeconds) * time.Second
}

// MaxUploadBytes returns the largest attachment the transport accepts.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Media.MaxUploadMB) * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved completion backend settings.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	SystemPrompt   string
}

// GetLLM returns the completion backend settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:       c.LLM.Provider,
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		RetryAttempts:  c.LLM.RetryAttempts,
		RetryBaseDelay: time.Duration(c.LLM.RetryBaseDelayMS) * time.Millisecond,
		RetryMaxDelay:  time.Duration(c.LLM.RetryMaxDelayMS) * time.Millisecond,
		SystemPrompt:   c.LLM.SystemPrompt,
	}
}
