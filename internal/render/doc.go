// Package render turns extracted subtitle text into deliverable documents.
//
// PDF output uses github.com/go-pdf/fpdf and Word output uses
// github.com/gomutex/godocx. Documents are written next to the destination
// and renamed into place. Callers own the destination path and its cleanup.
package render
