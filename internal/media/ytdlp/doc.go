// Package ytdlp implements media.Provider on top of the yt-dlp binary via
// github.com/lrstanley/go-ytdlp.
//
// A link is probed once with --dump-single-json; formats become combined,
// video-only or audio-only streams and both uploaded and automatic caption
// tracks become subtitle streams. Downloads and subtitle fetches write
// beneath the caller's scratch path and never touch session state.
package ytdlp
