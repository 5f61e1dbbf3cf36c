package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotAvailable marks an expected absence: the source exists but does not
// offer the requested tier or language. It is not a failure.
var ErrNotAvailable = errors.New("not available")

// StreamKind classifies a stream offered by a source.
type StreamKind int

const (
	KindCombined StreamKind = iota
	KindVideo
	KindAudio
	KindSubtitle
)

func (k StreamKind) String() string {
	switch k {
	case KindCombined:
		return "combined"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindSubtitle:
		return "subtitle"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Stream is one materializable variant of a source.
type Stream struct {
	ID       string
	Kind     StreamKind
	Ext      string
	Width    int
	Height   int
	Bitrate  float64 // kbit/s, zero when unknown
	Language string
	Auto     bool // auto-generated caption track
}

// Resolution is the short side of the frame, so portrait clips report the
// same tier as their landscape counterparts.
func (s Stream) Resolution() int {
	if s.Width > 0 && s.Height > 0 && s.Width < s.Height {
		return s.Width
	}
	return s.Height
}

// Source is a resolved media link. Stream listings are computed once when the
// source is opened, so repeated capability queries are side-effect free.
type Source interface {
	URL() string
	Title() string
	Streams() []Stream
	// Materialize writes the stream under dest (without extension) and
	// returns the path actually written.
	Materialize(ctx context.Context, stream Stream, dest string) (string, error)
}

// Provider resolves links into Sources.
type Provider interface {
	Open(ctx context.Context, url string) (Source, error)
}

// Combiner muxes a video-only and an audio-only file into one container
// without re-encoding.
type Combiner interface {
	Combine(ctx context.Context, video, audio, dest string) error
}

// ParseTier converts a tier label such as "720p" to its height.
func ParseTier(tier string) (int, error) {
	value := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(tier)), "p")
	height, err := strconv.Atoi(value)
	if err != nil || height <= 0 {
		return 0, fmt.Errorf("invalid quality tier %q", tier)
	}
	return height, nil
}

// TierLabel is the inverse of ParseTier.
func TierLabel(height int) string {
	return strconv.Itoa(height) + "p"
}
