package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aurora/internal/logging"
	"aurora/internal/services"
	"aurora/internal/services/retry"
)

const (
	// DefaultBaseURL is the public Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"
	// DefaultPollTimeout is the long-poll wait in seconds.
	DefaultPollTimeout = 30

	sendTimeout   = 30 * time.Second
	uploadTimeout = 10 * time.Minute
	pollSlack     = 15 * time.Second
)

// Client calls the Bot API over HTTP.
type Client struct {
	baseURL     string
	token       string
	pollTimeout int
	http        *http.Client
	policy      retry.Policy
	logger      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetryPolicy replaces the send retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithPollTimeout sets the getUpdates long-poll wait in seconds.
func WithPollTimeout(seconds int) Option {
	return func(c *Client) {
		if seconds > 0 {
			c.pollTimeout = seconds
		}
	}
}

// NewClient builds a client for the bot token.
func NewClient(baseURL, token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "telegram", "init", "bot token is not configured", nil)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		pollTimeout: DefaultPollTimeout,
		http:        &http.Client{},
		policy:      retry.Policy{Attempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second},
		logger:      logging.NewComponentLogger(logger, "telegram"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PollTimeout returns the long-poll wait in seconds.
func (c *Client) PollTimeout() int {
	return c.pollTimeout
}

// GetMe returns the bot's own account; used as a token health check.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	var me User
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getMe"), nil)
	if err != nil {
		return User{}, c.requestError(ctx, "getMe", err)
	}
	if err := c.do(ctx, "getMe", req, &me); err != nil {
		return User{}, err
	}
	return me, nil
}

// GetUpdates long-polls for updates at or after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.pollTimeout)*time.Second+pollSlack)
	defer cancel()

	params := url.Values{}
	params.Set("timeout", strconv.Itoa(c.pollTimeout))
	params.Set("allowed_updates", `["message"]`)
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getUpdates")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, c.requestError(ctx, "getUpdates", err)
	}
	var updates []Update
	if err := c.do(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

type sendMessageRequest struct {
	ChatID                int64     `json:"chat_id"`
	Text                  string    `json:"text"`
	ReplyMarkup           *Keyboard `json:"reply_markup,omitempty"`
	DisableWebPagePreview bool      `json:"disable_web_page_preview,omitempty"`
}

// SendMessage sends text, split into as many messages as the length limit
// requires. The keyboard rides on the last chunk.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, kb *Keyboard) error {
	chunks := SplitText(text, MaxMessageRunes)
	if len(chunks) == 0 {
		return services.Wrap(services.ErrValidation, "telegram", "sendMessage", "empty message text", nil)
	}
	for i, chunk := range chunks {
		payload := sendMessageRequest{ChatID: chatID, Text: chunk, DisableWebPagePreview: true}
		if i == len(chunks)-1 {
			payload.ReplyMarkup = kb
		}
		if err := c.postJSON(ctx, "sendMessage", payload); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, "telegram", method, "encode request", err)
	}
	return c.policy.Do(ctx, method, classify, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(body))
		if err != nil {
			return c.requestError(ctx, method, err)
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(ctx, method, req, nil)
	})
}

func (c *Client) do(ctx context.Context, method string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return c.requestError(ctx, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return c.requestError(ctx, method, err)
	}
	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Method: method, StatusCode: resp.StatusCode, Description: compactError(string(raw))}
		}
		return services.Wrap(services.ErrExternalTool, "telegram", method, "decode response", err)
	}
	if !envelope.OK || resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			Code:        envelope.ErrorCode,
			Description: compactError(envelope.Description),
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		return apiErr
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return services.Wrap(services.ErrExternalTool, "telegram", method, "decode result", err)
	}
	return nil
}

// requestError redacts the token, which net/http embeds in URL errors.
func (c *Client) requestError(ctx context.Context, method string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "telegram", method, "request timed out", nil)
		}
		return ctxErr
	}
	msg := strings.ReplaceAll(err.Error(), c.token, "<token>")
	return services.Wrap(services.ErrTransient, "telegram", method, "request failed", errors.New(compactError(msg)))
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// classify retries throttling, server errors and network failures.
func classify(err error) retry.Decision {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == 0 {
			code = apiErr.StatusCode
		}
		if code == http.StatusTooManyRequests {
			return retry.Decision{Retry: true, After: time.Duration(apiErr.RetryAfter) * time.Second}
		}
		return retry.Decision{Retry: retry.RetryableStatus(code)}
	}
	return retry.Decision{Retry: errors.Is(err, services.ErrTransient) || errors.Is(err, services.ErrTimeout)}
}
