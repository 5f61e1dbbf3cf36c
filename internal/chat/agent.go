package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"aurora/internal/logging"
	"aurora/internal/messages"
	"aurora/internal/services"
	"aurora/internal/services/llm"
	"aurora/internal/services/retry"
)

// Agent answers free-form text. It never fails: backend errors become one
// of the catalogue's fallback messages.
type Agent struct {
	backend  llm.Completer
	prompt   string
	messages *messages.Catalog
	logger   *slog.Logger
}

// NewAgent constructs an Agent. A nil backend makes the agent echo the
// input back, which keeps the bot usable without an API key.
func NewAgent(backend llm.Completer, systemPrompt string, catalog *messages.Catalog, logger *slog.Logger) *Agent {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if catalog == nil {
		catalog = messages.Default()
	}
	return &Agent{
		backend:  backend,
		prompt:   systemPrompt,
		messages: catalog,
		logger:   logging.NewComponentLogger(logger, "chat"),
	}
}

// Configured reports whether a completion backend is wired.
func (a *Agent) Configured() bool { return a.backend != nil }

// Reply returns the text to send back for a chat message.
func (a *Agent) Reply(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if a.backend == nil {
		return a.messages.Text(messages.ChatEcho, "text", text)
	}
	if text == "" {
		return a.messages.Text(messages.ChatIncomplete)
	}

	reply, err := a.backend.Complete(ctx, a.prompt, text)
	if err == nil {
		if reply = strings.TrimSpace(reply); reply != "" {
			return reply
		}
		err = llm.ErrEmptyContent
	}

	key := fallbackKey(err)
	logging.WarnWithContext(logging.WithContext(ctx, a.logger), "chat completion failed", "chat_completion_failed",
		logging.Error(err),
		logging.String("fallback", key),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
		logging.String(logging.FieldImpact, "user received a fallback reply"),
	)
	return a.messages.Text(key)
}

// fallbackKey picks the message for a failed completion. Exhaustion is
// checked before the cause so a run of 503s reads as "try later".
func fallbackKey(err error) string {
	var status *llm.StatusError
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return messages.ChatUnconfigured
	case errors.Is(err, retry.ErrExhausted):
		return messages.ChatExhausted
	case errors.As(err, &status):
		return messages.ChatHTTP
	case errors.Is(err, llm.ErrEmptyContent):
		return messages.ChatIncomplete
	default:
		return messages.ChatNetwork
	}
}
