package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/genai"

	"aurora/internal/services"
	"aurora/internal/services/llm"
	"aurora/internal/services/retry"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func fastPolicy(attempts int) Option {
	return WithRetryPolicy(retry.Policy{Attempts: attempts, BaseDelay: time.Second, Sleeper: func(time.Duration) {}})
}

func TestCompletePassesPersonaAsSystemInstruction(t *testing.T) {
	var gotModel string
	var gotSystem string
	var gotUser string
	generate := func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotUser = contents[0].Parts[0].Text
		if cfg != nil && cfg.SystemInstruction != nil {
			gotSystem = cfg.SystemInstruction.Parts[0].Text
		}
		return textResponse("hello"), nil
	}
	client := newClient(generate, "", fastPolicy(5))

	reply, err := client.Complete(context.Background(), "You are Aurora.", "hi")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if reply != "hello" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if gotModel != defaultModel || gotSystem != "You are Aurora." || gotUser != "hi" {
		t.Fatalf("unexpected request model=%q system=%q user=%q", gotModel, gotSystem, gotUser)
	}
}

func TestCompleteRetriesOverloadedModel(t *testing.T) {
	calls := 0
	generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		if calls < 3 {
			return nil, genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}
		}
		return textResponse("finally"), nil
	}
	client := newClient(generate, "gemini-test", fastPolicy(5))

	reply, err := client.Complete(context.Background(), "", "hi")
	if err != nil || reply != "finally" {
		t.Fatalf("unexpected result %q err=%v", reply, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestCompleteStopsOnPermanentAPIError(t *testing.T) {
	calls := 0
	generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, genai.APIError{Code: http.StatusBadRequest, Message: "bad key"}
	}
	client := newClient(generate, "gemini-test", fastPolicy(5))

	_, err := client.Complete(context.Background(), "", "hi")
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected translated status error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestCompleteReportsExhaustion(t *testing.T) {
	generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"}
	}
	client := newClient(generate, "gemini-test", fastPolicy(2))

	_, err := client.Complete(context.Background(), "", "hi")
	if !errors.Is(err, retry.ErrExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
}

func TestCompleteEmptyCandidates(t *testing.T) {
	generate := func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}
	client := newClient(generate, "gemini-test", fastPolicy(1))

	_, err := client.Complete(context.Background(), "", "hi")
	if !errors.Is(err, llm.ErrEmptyContent) {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
