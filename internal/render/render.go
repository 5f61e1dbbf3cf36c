package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aurora/internal/services"
)

// Format is a deliverable subtitle format.
type Format string

const (
	FormatSRT  Format = "srt"
	FormatPDF  Format = "pdf"
	FormatWord Format = "docx"
)

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	return string(f)
}

// Label returns the short name shown on menu buttons.
func (f Format) Label() string {
	switch f {
	case FormatSRT:
		return "SRT"
	case FormatPDF:
		return "PDF"
	case FormatWord:
		return "Word"
	default:
		return strings.ToUpper(string(f))
	}
}

// NeedsRendering reports whether the format is produced from extracted text
// rather than sent as the raw subtitle track.
func (f Format) NeedsRendering() bool {
	return f == FormatPDF || f == FormatWord
}

// Formats lists every subtitle format in menu order.
func Formats() []Format {
	return []Format{FormatSRT, FormatPDF, FormatWord}
}

// Document is the text payload handed to the renderer.
type Document struct {
	Title string
	Body  string
}

// Renderer writes documents as PDF or Word files.
type Renderer struct {
	fontPath string
}

// New constructs a renderer. fontPath optionally points at a UTF-8 TrueType
// font for PDF output. Without it the core Helvetica font is used: a body
// outside cp1252 fails with ErrFontRequired and such a title is left out.
func New(fontPath string) *Renderer {
	return &Renderer{fontPath: strings.TrimSpace(fontPath)}
}

// Render writes doc to dest in the requested format. A partially written file
// is removed on failure.
func (r *Renderer) Render(ctx context.Context, doc Document, format Format, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(doc.Body) == "" {
		return services.Wrap(services.ErrValidation, "render", string(format), "empty document", nil)
	}
	partial := partialPath(dest)
	var err error
	switch format {
	case FormatPDF:
		err = r.renderPDF(doc, partial)
	case FormatWord:
		err = renderDOCX(doc, partial)
	default:
		return services.Wrap(services.ErrValidation, "render", string(format), "unsupported format", nil)
	}
	if err == nil {
		err = os.Rename(partial, dest)
	}
	if err != nil {
		if removeErr := os.Remove(partial); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove partial %s: %w", partial, removeErr))
		}
		return services.Wrap(services.ErrExternalTool, "render", string(format), "write document", err)
	}
	return nil
}

// partialPath keeps the file name prefix and extension of dest so scratch
// cleanup still matches it.
func partialPath(dest string) string {
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + ".partial" + ext
}
