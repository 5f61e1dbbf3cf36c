package delivery

import (
	"context"

	"aurora/internal/render"
)

// RequestKind names the capability a delivery invokes.
type RequestKind int

const (
	RequestVideo RequestKind = iota
	RequestAudio
	RequestSubtitles
)

func (k RequestKind) String() string {
	switch k {
	case RequestVideo:
		return "video"
	case RequestAudio:
		return "audio"
	case RequestSubtitles:
		return "subtitles"
	default:
		return "unknown"
	}
}

// Request is the user's terminal menu choice.
type Request struct {
	Kind     RequestKind
	Quality  string
	Language string
	Format   render.Format
}

// VideoRequest asks for the video at a quality tier such as "720p".
func VideoRequest(quality string) Request {
	return Request{Kind: RequestVideo, Quality: quality}
}

// AudioRequest asks for the best audio-only stream.
func AudioRequest() Request {
	return Request{Kind: RequestAudio}
}

// SubtitlesRequest asks for a subtitle track in a format.
func SubtitlesRequest(language string, format render.Format) Request {
	return Request{Kind: RequestSubtitles, Language: language, Format: format}
}

// AttachmentKind selects the transport method used to send a file.
type AttachmentKind int

const (
	AttachVideo AttachmentKind = iota
	AttachAudio
	AttachDocument
)

// Attachment is one file handed to the outbound channel.
type Attachment struct {
	Kind     AttachmentKind
	Path     string
	FileName string
	Caption  string
	Size     int64
}

// Transmitter sends attachments to the requesting user.
type Transmitter interface {
	Send(ctx context.Context, attachment Attachment) error
}

// TransmitFunc adapts a function to Transmitter.
type TransmitFunc func(ctx context.Context, attachment Attachment) error

// Send calls f.
func (f TransmitFunc) Send(ctx context.Context, attachment Attachment) error {
	return f(ctx, attachment)
}

// Renderer produces PDF and Word documents from extracted text.
type Renderer interface {
	Render(ctx context.Context, doc render.Document, format render.Format, dest string) error
}
