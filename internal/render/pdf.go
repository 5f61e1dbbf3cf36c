package render

import (
	"errors"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"aurora/internal/services"
)

const (
	pdfFontFamily = "Helvetica"
	pdfUTF8Family = "AuroraText"
	pdfLineHeight = 6.0
)

// ErrFontRequired reports text the core PDF font cannot encode.
var ErrFontRequired = errors.New("text needs a UTF-8 font (set render.pdf_font_path)")

// coreFontEncodes reports whether every rune of text maps onto the cp1252
// code page used by the core PDF fonts.
func coreFontEncodes(text string) bool {
	for _, r := range text {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}

func (r *Renderer) renderPDF(doc Document, dest string) error {
	if r.fontPath == "" && !coreFontEncodes(doc.Body) {
		return services.Wrap(services.ErrConfiguration, "render", "pdf", "body outside cp1252", ErrFontRequired)
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("Aurora", true)

	family := pdfFontFamily
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		pdf.AddUTF8Font(pdfUTF8Family, "", r.fontPath)
		pdf.AddUTF8Font(pdfUTF8Family, "B", r.fontPath)
		family = pdfUTF8Family
		translate = func(s string) string { return s }
	}

	pdf.AddPage()
	if title := strings.TrimSpace(doc.Title); title != "" && (r.fontPath != "" || coreFontEncodes(title)) {
		pdf.SetFont(family, "B", 14)
		pdf.MultiCell(0, 8, translate(title), "", "L", false)
		pdf.Ln(4)
	}
	pdf.SetFont(family, "", 11)
	for _, paragraph := range strings.Split(doc.Body, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			pdf.Ln(pdfLineHeight / 2)
			continue
		}
		pdf.MultiCell(0, pdfLineHeight, translate(paragraph), "", "L", false)
	}
	return pdf.OutputFileAndClose(dest)
}
