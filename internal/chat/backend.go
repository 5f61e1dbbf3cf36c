package chat

import (
	"context"
	"log/slog"

	"aurora/internal/config"
	"aurora/internal/logging"
	"aurora/internal/services/gemini"
	"aurora/internal/services/llm"
	"aurora/internal/services/retry"
)

// Backend is a completion client that can also report its health.
type Backend interface {
	llm.Completer
	HealthCheck(ctx context.Context) error
}

// NewBackend builds the configured completion client. It returns nil with
// no error when no API key is configured.
func NewBackend(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Backend, error) {
	if cfg.APIKey == "" {
		logging.NewComponentLogger(logger, "chat").Info("no completion api key configured; chat replies will echo",
			logging.String(logging.FieldEventType, "chat_backend_disabled"))
		return nil, nil
	}
	policy := retry.Policy{
		Attempts:  cfg.RetryAttempts,
		BaseDelay: cfg.RetryBaseDelay,
		MaxDelay:  cfg.RetryMaxDelay,
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewClient(llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Referer:        cfg.Referer,
			Title:          cfg.Title,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, llm.WithRetryPolicy(policy)), nil
	default:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			BaseURL:        cfg.BaseURL,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, gemini.WithRetryPolicy(policy))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
