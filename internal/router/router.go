package router

import (
	"regexp"
	"strings"

	"aurora/internal/render"
	"aurora/internal/session"
)

// Action is what the bot should do with one inbound message.
type Action int

const (
	// ActionChat hands the text to the free-form chat collaborator.
	ActionChat Action = iota
	// ActionPresentOptions shows the top-level Video/Audio/Subtitles menu for a new link.
	ActionPresentOptions
	// ActionPresentQualities shows the quality tier menu.
	ActionPresentQualities
	// ActionPresentLanguages shows the subtitle language/format menu.
	ActionPresentLanguages
	// ActionDeliverVideo delivers the video at Decision.Quality.
	ActionDeliverVideo
	// ActionDeliverAudio delivers the best audio-only stream.
	ActionDeliverAudio
	// ActionDeliverSubtitles delivers subtitles in Decision.Language and Decision.Format.
	ActionDeliverSubtitles
	// ActionReset backs out of a sub-menu.
	ActionReset
	// ActionMissingSource tells the user to send a link first.
	ActionMissingSource
)

func (a Action) String() string {
	switch a {
	case ActionChat:
		return "chat"
	case ActionPresentOptions:
		return "present_options"
	case ActionPresentQualities:
		return "present_qualities"
	case ActionPresentLanguages:
		return "present_languages"
	case ActionDeliverVideo:
		return "deliver_video"
	case ActionDeliverAudio:
		return "deliver_audio"
	case ActionDeliverSubtitles:
		return "deliver_subtitles"
	case ActionReset:
		return "reset"
	case ActionMissingSource:
		return "missing_source"
	default:
		return "unknown"
	}
}

// IsDelivery reports whether the action runs the delivery pipeline.
func (a Action) IsDelivery() bool {
	return a == ActionDeliverVideo || a == ActionDeliverAudio || a == ActionDeliverSubtitles
}

// Decision is the router's verdict: the action, the state the session moves
// to, and the parameters the action needs.
type Decision struct {
	Action   Action
	Next     session.State
	Source   string
	Quality  string
	Language string
	Format   render.Format
	Text     string
}

var (
	youtubeWatch = regexp.MustCompile(`^https?://(?:(?:www|m|music)\.)?youtube\.com/(?:watch\?(?:[^#\s]*&)?v=|shorts/|embed/|live/)[A-Za-z0-9_-]{6,}(?:[?&#][^\s]*)?$`)
	youtubeShort = regexp.MustCompile(`^https?://youtu\.be/[A-Za-z0-9_-]{6,}(?:[?#][^\s]*)?$`)
)

// IsSourceLink reports whether text, as a whole, is a recognized media link.
func IsSourceLink(text string) bool {
	text = strings.TrimSpace(text)
	return youtubeWatch.MatchString(text) || youtubeShort.MatchString(text)
}

// Route classifies input against the current state. It never fails:
// unrecognized input becomes ActionChat.
func (t *Table) Route(state session.State, hasSource bool, input string) Decision {
	text := normalize(input)
	if !hasSource {
		state = session.NoSource
	}

	if IsSourceLink(text) {
		return Decision{Action: ActionPresentOptions, Next: session.SourceSelected, Source: text}
	}

	if text == t.back {
		if hasSource {
			return Decision{Action: ActionReset, Next: session.SourceSelected}
		}
		return Decision{Action: ActionReset, Next: session.NoSource}
	}

	entry, known := t.labels[text]
	if !known {
		return Decision{Action: ActionChat, Next: state, Text: strings.TrimSpace(input)}
	}
	if !hasSource {
		return Decision{Action: ActionMissingSource, Next: session.NoSource}
	}
	if entry.validIn != state {
		return Decision{Action: ActionChat, Next: state, Text: strings.TrimSpace(input)}
	}

	decision := Decision{
		Action:   entry.action,
		Quality:  entry.quality,
		Language: entry.language,
		Format:   entry.format,
	}
	switch entry.action {
	case ActionPresentQualities:
		decision.Next = session.AwaitingQualityChoice
	case ActionPresentLanguages:
		decision.Next = session.AwaitingLanguageChoice
	default:
		decision.Next = session.SourceSelected
	}
	return decision
}

// RouteSession is Route over a session snapshot.
func (t *Table) RouteSession(s session.Session, input string) Decision {
	return t.Route(s.State, s.HasSource(), input)
}
