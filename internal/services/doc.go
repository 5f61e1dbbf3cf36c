// Package services defines shared utilities consumed by the bot handlers and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp user ids, routed actions, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, so collaborator failures
//     can be classified with errors.Is and logged with an operator hint.
//
// Completion backends live in subpackages (llm, gemini) and share the retry
// policy in services/retry.
package services
