// Package directory is the SQLite-backed record of everyone who has talked
// to the bot. Rows are upserted on every inbound message; the first_seen
// column is written once. Admins export it as CSV.
package directory
