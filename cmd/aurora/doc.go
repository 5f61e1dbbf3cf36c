// Package main hosts the aurora CLI entrypoint and command graph.
//
// The Cobra-based command tree starts the bot, inspects and exports the user
// directory, scaffolds and validates configuration, and runs environment
// diagnostics. Runtime wiring lives in internal/botrun; commands here only
// resolve configuration and present results.
package main
