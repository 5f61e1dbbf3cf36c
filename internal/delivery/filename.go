package delivery

import (
	"strings"
	"unicode"
)

const maxTitleRunes = 80

// fileName builds the name the recipient sees, e.g. "Some clip (720p).mp4".
func fileName(title, detail, ext string) string {
	base := sanitizeTitle(title)
	if base == "" {
		base = "aurora"
	}
	if detail != "" {
		base += " (" + detail + ")"
	}
	if ext != "" {
		base += "." + ext
	}
	return base
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	count := 0
	lastSpace := false
	for _, r := range strings.TrimSpace(title) {
		if count >= maxTitleRunes {
			break
		}
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), unicode.IsControl(r):
			r = ' '
		}
		if unicode.IsSpace(r) {
			if lastSpace {
				continue
			}
			r = ' '
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
		count++
	}
	return strings.TrimSpace(b.String())
}
