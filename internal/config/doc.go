// Package config loads, normalizes, and validates Aurora configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AURORA_TELEGRAM_TOKEN and GEMINI_API_KEY. The Config type centralizes every
// knob the bot runtime and CLI need, so the scratch area, the user directory
// database and external service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
