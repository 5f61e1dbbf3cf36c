// Package logging assembles structured slog loggers and formatting helpers used
// across Aurora.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so handlers automatically tag log lines
// with the user id, correlation id and routed action of the message being
// processed. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
