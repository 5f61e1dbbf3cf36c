// Package delivery is the pipeline between a terminal menu choice and the
// attachment the user receives.
//
// Deliver resolves the session's source through a media.Provider,
// materializes the requested stream into a scratch.Batch, renders subtitle
// documents when asked, and hands the file to a Transmitter. Each call ends
// with exactly one Outcome kind, and the batch is cleaned on every path.
//
// Video tiers prefer a combined stream. Without one, the best video-only
// stream at the tier and the best audio-only stream are downloaded and
// combined losslessly; the intermediates are removed once combined.
package delivery
