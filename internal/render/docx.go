package render

import (
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
)

// renderDOCX writes one paragraph per line, with the title as a bold first
// paragraph.
func renderDOCX(doc Document, dest string) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new docx: %w", err)
	}
	if title := strings.TrimSpace(doc.Title); title != "" {
		document.AddParagraph("").AddText(title).Bold(true)
	}
	for _, line := range strings.Split(doc.Body, "\n") {
		document.AddParagraph(strings.TrimSpace(line))
	}
	if err := document.SaveTo(dest); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}
