// Package extractor picks the text extractor that matches an upload's bytes.
package extractor

import (
	"bytes"
	"context"
	"io"

	"github.com/kirillkom/earningscall-analyzer/internal/core/ports"
)

var pdfMagic = []byte("%PDF-")

// Detecting routes PDF uploads to the PDF extractor and everything else to
// the plain text one. The decision is made from the leading bytes only;
// file names and declared content types are ignored.
type Detecting struct {
	pdf  ports.TextExtractor
	text ports.TextExtractor
}

func NewDetecting(pdf, text ports.TextExtractor) *Detecting {
	return &Detecting{pdf: pdf, text: text}
}

func (d *Detecting) Extract(ctx context.Context, src io.ReaderAt, size int64) (string, error) {
	if IsPDF(src, size) || d.text == nil {
		return d.pdf.Extract(ctx, src, size)
	}
	return d.text.Extract(ctx, src, size)
}

// IsPDF reports whether the content starts with the PDF header.
func IsPDF(src io.ReaderAt, size int64) bool {
	if size < int64(len(pdfMagic)) {
		return false
	}
	head := make([]byte, len(pdfMagic))
	if _, err := src.ReadAt(head, 0); err != nil && err != io.EOF {
		return false
	}
	return bytes.Equal(head, pdfMagic)
}

var _ ports.TextExtractor = (*Detecting)(nil)
