package ports

import (
	"context"
	"io"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// TranscriptAnalyzer is the inbound contract for one analyze action.
type TranscriptAnalyzer interface {
	AnalyzeDocument(ctx context.Context, filename string, body io.ReaderAt, size int64) (*domain.Report, error)
	AnalyzeTranscript(ctx context.Context, filename, transcript string) (*domain.Report, error)
}

// ResponseInterpreter re-parses a raw model response without calling the model.
type ResponseInterpreter interface {
	InterpretResponse(raw string, transcriptChars int) *domain.Report
}
