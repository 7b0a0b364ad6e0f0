package plaintext

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// Extractor accepts transcripts that were already saved as UTF-8 text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, src io.ReaderAt, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(io.NewSectionReader(src, 0, size))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read text transcript", err)
	}

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrExtraction, "read text transcript", errors.New("unsupported binary format"))
	}

	text := strings.TrimPrefix(string(raw), "\ufeff")
	return strings.TrimSpace(text), nil
}
