// Package ffmpeg combines a video-only and an audio-only download into one
// deliverable container with stream copy, and probes the result with ffprobe
// before handing it back.
package ffmpeg
