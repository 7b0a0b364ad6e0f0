package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, src io.ReaderAt, size int64) (string, error)
}

// AnalysisClient performs the single text-in/text-out model exchange.
type AnalysisClient interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error)
	Model() string
}

// StageObserver receives timings for the pipeline stages.
type StageObserver interface {
	ObserveStage(stage string, duration time.Duration, err error)
}

// Pipeline stage names reported to a StageObserver.
const (
	StageExtract = "extract"
	StageModel   = "model"
	StageParse   = "parse"
)
