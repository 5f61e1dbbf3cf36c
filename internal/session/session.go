package session

import (
	"fmt"
	"strings"
	"time"
)

// State is the position of a conversation in the selection workflow.
type State int

const (
	// NoSource is the initial state: nothing but a link can be acted on.
	NoSource State = iota
	// SourceSelected means a link is set and the top-level options are offered.
	SourceSelected
	// AwaitingQualityChoice means the quality menu is showing.
	AwaitingQualityChoice
	// AwaitingLanguageChoice means the subtitle language/format menu is showing.
	AwaitingLanguageChoice
)

func (s State) String() string {
	switch s {
	case NoSource:
		return "no_source"
	case SourceSelected:
		return "source_selected"
	case AwaitingQualityChoice:
		return "awaiting_quality"
	case AwaitingLanguageChoice:
		return "awaiting_language"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the per-user conversational context. Values handed out by the
// Store are snapshots; mutate through Store methods.
type Session struct {
	UserID    int64
	Source    string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSource reports whether a media link is currently selected.
func (s Session) HasSource() bool {
	return strings.TrimSpace(s.Source) != ""
}

// normalized enforces the invariant that only NoSource is valid without a source.
func (s Session) normalized() Session {
	if !s.HasSource() {
		s.Source = ""
		s.State = NoSource
	} else if s.State == NoSource {
		s.State = SourceSelected
	}
	return s
}
