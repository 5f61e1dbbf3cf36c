// Package llm provides an OpenAI-compatible chat client (OpenRouter by
// default) used as the free-form chat backend.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send persona and user message, receive plain text.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty content and network
// timeouts with exponential backoff (base 1s, up to 5 attempts by default),
// honouring Retry-After. Context cancellation aborts retries immediately.
// Exhaustion is reported with retry.ErrExhausted so callers can pick a
// fallback reply.
//
// The Completer interface is shared with the Gemini backend.
package llm
