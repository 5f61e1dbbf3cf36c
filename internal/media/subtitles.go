package media

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	cueIndex  = regexp.MustCompile(`^\d+$`)
	cueTiming = regexp.MustCompile(`^(?:\d{1,2}:)?\d{2}:\d{2}[,.]\d{1,3}\s*-->\s*(?:\d{1,2}:)?\d{2}:\d{2}[,.]\d{1,3}`)
	markup    = regexp.MustCompile(`</?[^>]+>|\{\\[^}]*\}`)
)

const maxSubtitleLine = 1024 * 1024

// ExtractText returns the spoken text of an SRT (or WebVTT) document: cue
// numbers, timings and markup removed, consecutive duplicate lines collapsed.
// A line longer than maxSubtitleLine fails the extraction instead of
// truncating the text.
func ExtractText(srt string) (string, error) {
	var (
		lines []string
		last  string
	)
	scanner := bufio.NewScanner(strings.NewReader(strings.ReplaceAll(srt, "\r\n", "\n")))
	scanner.Buffer(make([]byte, 0, 64*1024), maxSubtitleLine)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		switch {
		case line == "", line == "WEBVTT", cueIndex.MatchString(line), cueTiming.MatchString(line):
			continue
		}
		line = strings.TrimSpace(markup.ReplaceAllString(line, ""))
		if line == "" || line == last {
			continue
		}
		lines = append(lines, line)
		last = line
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan subtitles: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

// ReadText reads a subtitle file and extracts its text.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ExtractText(string(data))
}
