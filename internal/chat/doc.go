// Package chat is the free-form conversation collaborator: it sends the
// user's text with the Aurora persona to the configured completion backend
// (Gemini through google.golang.org/genai, or an OpenAI-compatible API) and
// turns every failure into a friendly fallback reply.
package chat
