// Package gemini implements the chat completion backend over the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"aurora/internal/services"
	"aurora/internal/services/llm"
	"aurora/internal/services/retry"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// Config captures the Gemini connection settings.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client sends persona plus user text to generateContent with retry.
type Client struct {
	generate generateFunc
	model    string
	policy   retry.Policy
}

// Option customizes the client.
type Option func(*Client)

// WithRetryPolicy overrides the attempt budget and backoff delays.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// New constructs a Gemini client. An empty API key is a configuration error.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "init", "api key required", nil)
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	sdk, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gemini", "init", "create client", err)
	}
	return newClient(sdk.Models.GenerateContent, cfg.Model, opts...), nil
}

func newClient(generate generateFunc, model string, opts ...Option) *Client {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultModel
	}
	client := &Client{generate: generate, model: model, policy: retry.Default()}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Complete returns the model's reply to userPrompt under the given persona.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "complete", "user prompt required", nil)
	}
	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}
	var genCfg *genai.GenerateContentConfig
	if system := strings.TrimSpace(systemPrompt); system != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	var reply string
	err := c.policy.Do(ctx, "gemini complete", llm.Classify, func(ctx context.Context) error {
		resp, err := c.generate(ctx, c.model, contents, genCfg)
		if err != nil {
			return translateError(err)
		}
		text := ""
		if resp != nil {
			text = strings.TrimSpace(resp.Text())
		}
		if text == "" {
			return fmt.Errorf("gemini generate: %w", llm.ErrEmptyContent)
		}
		reply = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// HealthCheck verifies the key and model with a one-word prompt.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.Complete(ctx, "Reply with the single word OK.", "ping"); err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	return nil
}

// translateError maps SDK API errors onto llm.StatusError so both backends
// share one retry classifier.
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini generate: %w", &llm.StatusError{StatusCode: apiErr.Code, Body: apiErr.Message})
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("gemini generate: %w", &llm.StatusError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message})
	}
	return fmt.Errorf("gemini generate: %w", err)
}
