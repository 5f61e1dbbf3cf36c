package telegram

import "strings"

// MaxMessageRunes keeps each chunk safely under the 4096 character Bot API limit.
const MaxMessageRunes = 4000

// SplitText breaks text into chunks of at most maxRunes, preferring to cut
// after a newline in the back half of a chunk. Blank text yields nothing.
func SplitText(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		maxRunes = MaxMessageRunes
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := start + maxRunes
		if end >= len(runes) {
			if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}
		cut := end
		for i := end; i > start+maxRunes/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = cut
	}
	return chunks
}

// compactError flattens an error description for logs and user replies.
func compactError(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return "unknown error"
	}
	if len(raw) > 300 {
		return raw[:297] + "..."
	}
	return raw
}
