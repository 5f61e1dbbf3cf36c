package router

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"aurora/internal/media"
	"aurora/internal/render"
	"aurora/internal/session"
)

// Control labels shown on reply keyboards.
const (
	LabelVideo     = "🎬 Video"
	LabelAudio     = "🎧 Audio"
	LabelSubtitles = "📝 Subtitles"
	LabelBack      = "↩️ Back"
)

// SubtitleLabel returns the button text for a language/format pair, e.g. "English · PDF".
func SubtitleLabel(language string, format render.Format) string {
	return media.LanguageName(language) + " · " + format.Label()
}

type labelEntry struct {
	action   Action
	validIn  session.State
	quality  string
	language string
	format   render.Format
}

// Table is the fixed set of control labels and the state each is valid in.
type Table struct {
	labels    map[string]labelEntry
	back      string
	qualities []string
	languages []string
}

// NewTable builds the label table for the offered quality tiers and
// subtitle languages.
func NewTable(qualities, languages []string) *Table {
	t := &Table{
		labels:    make(map[string]labelEntry),
		back:      normalize(LabelBack),
		qualities: append([]string(nil), qualities...),
		languages: append([]string(nil), languages...),
	}
	t.add(LabelVideo, labelEntry{action: ActionPresentQualities, validIn: session.SourceSelected})
	t.add(LabelAudio, labelEntry{action: ActionDeliverAudio, validIn: session.SourceSelected})
	t.add(LabelSubtitles, labelEntry{action: ActionPresentLanguages, validIn: session.SourceSelected})
	for _, q := range qualities {
		t.add(q, labelEntry{action: ActionDeliverVideo, validIn: session.AwaitingQualityChoice, quality: q})
	}
	for _, lang := range languages {
		for _, format := range render.Formats() {
			t.add(SubtitleLabel(lang, format), labelEntry{
				action:   ActionDeliverSubtitles,
				validIn:  session.AwaitingLanguageChoice,
				language: lang,
				format:   format,
			})
		}
	}
	return t
}

// DefaultTable offers 144p through 1080p and English/Russian subtitles.
func DefaultTable() *Table {
	return NewTable([]string{"144p", "360p", "720p", "1080p"}, []string{"en", "ru"})
}

func (t *Table) add(label string, entry labelEntry) {
	t.labels[normalize(label)] = entry
}

// Qualities returns the offered quality tiers in menu order.
func (t *Table) Qualities() []string {
	return append([]string(nil), t.qualities...)
}

// Languages returns the offered subtitle language codes in menu order.
func (t *Table) Languages() []string {
	return append([]string(nil), t.languages...)
}

// IsLabel reports whether text is any known control label, including Back.
func (t *Table) IsLabel(text string) bool {
	key := normalize(text)
	if key == t.back {
		return true
	}
	_, ok := t.labels[key]
	return ok
}

// normalize trims, NFC-normalizes and drops emoji variation selectors so
// keyboard echoes from different clients compare equal.
func normalize(text string) string {
	text = norm.NFC.String(strings.TrimSpace(text))
	return strings.Map(func(r rune) rune {
		if r == '\uFE0F' || r == '\uFE0E' {
			return -1
		}
		return r
	}, text)
}
