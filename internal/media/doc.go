// Package media defines the capability interface the delivery pipeline
// consumes: a Provider opens a link into a Source whose Streams can be
// queried and materialized.
//
// Stream selection (combined vs. video-only plus audio, subtitle track
// preference) lives here as pure functions so adapters only have to list
// streams. Subpackages ytdlp and ffmpeg implement Provider and Combiner.
package media
