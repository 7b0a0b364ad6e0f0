package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// Extractor pulls plain text out of a PDF page by page. Pages are joined with
// a newline in document order. A page without a content stream contributes
// an empty string; a page whose text cannot be decoded fails the whole
// document.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, src io.ReaderAt, size int64) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrExtraction, "read pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(src, size)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open pdf", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, fmt.Sprintf("read pdf page %d", i), err)
		}
		pages = append(pages, pageText)
	}

	slog.Debug("pdf_text_extracted", "pages", numPages, "bytes", size)
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}
