package delivery

import (
	"errors"
	"strconv"

	"aurora/internal/render"
)

// ErrTooLarge marks an artifact over the transport's upload limit.
var ErrTooLarge = errors.New("artifact exceeds upload limit")

// Kind tags every Outcome with exactly one result.
type Kind int

const (
	// KindDelivered means the artifact was transmitted (or, for Inspect, the
	// source resolved).
	KindDelivered Kind = iota
	// KindNotAvailable means the source lacks the requested tier or language.
	KindNotAvailable
	// KindMissingSource means no link was selected; no provider call was made.
	KindMissingSource
	// KindProviderError covers unreachable or malformed sources and download failures.
	KindProviderError
	// KindRenderError means the PDF or Word document could not be produced.
	KindRenderError
	// KindTransmitError means the attachment could not be sent.
	KindTransmitError
)

func (k Kind) String() string {
	switch k {
	case KindDelivered:
		return "delivered"
	case KindNotAvailable:
		return "not_available"
	case KindMissingSource:
		return "missing_source"
	case KindProviderError:
		return "provider_error"
	case KindRenderError:
		return "render_error"
	case KindTransmitError:
		return "transmit_error"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Failed reports whether the kind is an external fault.
func (k Kind) Failed() bool {
	return k == KindProviderError || k == KindRenderError || k == KindTransmitError
}

// Outcome carries everything needed to describe a delivery to the user
// without another provider round-trip. Err is for logs only.
type Outcome struct {
	Kind      Kind
	Request   Request
	RequestID string
	Title     string
	Quality   string
	Language  string
	Format    render.Format
	Cleaned   int
	Err       error
}

// Delivered reports whether the artifact was sent.
func (o Outcome) Delivered() bool { return o.Kind == KindDelivered }

// Inspection is what a source offers, limited to the configured tiers and
// languages, in menu order.
type Inspection struct {
	Kind      Kind
	Title     string
	Qualities []string
	Languages []string
	Err       error
}
