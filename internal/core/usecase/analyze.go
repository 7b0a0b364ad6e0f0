package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kirillkom/earningscall-analyzer/internal/core/analysis"
	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/core/ports"
)

type AnalyzeTranscriptUseCase struct {
	extractor          ports.TextExtractor
	client             ports.AnalysisClient
	observer           ports.StageObserver
	maxTranscriptChars int
	now                func() time.Time
}

// NewAnalyzeTranscriptUseCase wires the pipeline. client may be nil when no
// credential is configured; every analysis then fails with ErrCredential
// before any model call. observer may be nil.
func NewAnalyzeTranscriptUseCase(
	extractor ports.TextExtractor,
	client ports.AnalysisClient,
	observer ports.StageObserver,
	maxTranscriptChars int,
) *AnalyzeTranscriptUseCase {
	return &AnalyzeTranscriptUseCase{
		extractor:          extractor,
		client:             client,
		observer:           observer,
		maxTranscriptChars: maxTranscriptChars,
		now:                time.Now,
	}
}

func (uc *AnalyzeTranscriptUseCase) AnalyzeDocument(
	ctx context.Context,
	filename string,
	body io.ReaderAt,
	size int64,
) (*domain.Report, error) {
	if body == nil || size <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze document", errors.New("empty upload"))
	}

	transcript, err := uc.extractText(ctx, body, size)
	if err != nil {
		return nil, err
	}
	return uc.AnalyzeTranscript(ctx, filename, transcript)
}

func (uc *AnalyzeTranscriptUseCase) AnalyzeTranscript(
	ctx context.Context,
	filename, transcript string,
) (*domain.Report, error) {
	start := uc.now()

	chars := utf8.RuneCountInString(transcript)
	if uc.maxTranscriptChars > 0 && chars > uc.maxTranscriptChars {
		return nil, domain.WrapError(
			domain.ErrTooLarge,
			"analyze transcript",
			fmt.Errorf("%d characters, limit %d", chars, uc.maxTranscriptChars),
		)
	}
	if uc.client == nil {
		return nil, domain.WrapError(domain.ErrCredential, "analyze transcript", errors.New("analysis client is not configured"))
	}

	raw, err := uc.callModel(ctx, analysis.BuildRequest(transcript))
	if err != nil {
		return nil, err
	}

	report := uc.buildReport(filename, chars, raw)
	report.Model = uc.client.Model()
	report.Duration = uc.now().Sub(start)

	slog.Info("analysis_completed",
		"analysis_id", report.ID,
		"filename", filename,
		"model", report.Model,
		"transcript_chars", chars,
		"risk_score", report.Analysis.RiskScore,
		"verdict", report.Analysis.Verdict,
		"defaulted", report.Analysis.Defaulted,
		"duration_ms", float64(report.Duration.Microseconds())/1000.0,
	)
	return report, nil
}

// InterpretResponse parses an already obtained raw response. It cannot fail.
func (uc *AnalyzeTranscriptUseCase) InterpretResponse(raw string, transcriptChars int) *domain.Report {
	if transcriptChars < 0 {
		transcriptChars = 0
	}
	return uc.buildReport("", transcriptChars, raw)
}

func (uc *AnalyzeTranscriptUseCase) extractText(ctx context.Context, body io.ReaderAt, size int64) (string, error) {
	start := uc.now()
	text, err := uc.extractor.Extract(ctx, body, size)
	uc.observe(ports.StageExtract, start, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("extract transcript: %w", ctxErr)
		}
		if domain.IsKind(err, domain.ErrExtraction) {
			return "", fmt.Errorf("extract transcript: %w", err)
		}
		return "", domain.WrapError(domain.ErrExtraction, "extract transcript", err)
	}
	return text, nil
}

func (uc *AnalyzeTranscriptUseCase) callModel(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	start := uc.now()
	raw, err := uc.client.Analyze(ctx, req)
	uc.observe(ports.StageModel, start, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("call analysis model: %w", ctxErr)
		}
		if domain.IsKind(err, domain.ErrCredential) || domain.IsKind(err, domain.ErrService) {
			return "", fmt.Errorf("call analysis model: %w", err)
		}
		return "", domain.WrapError(domain.ErrService, "call analysis model", err)
	}
	return raw, nil
}

func (uc *AnalyzeTranscriptUseCase) buildReport(filename string, transcriptChars int, raw string) *domain.Report {
	start := uc.now()
	parsed := analysis.Parse(raw)
	uc.observe(ports.StageParse, start, nil)

	if len(parsed.Defaulted) > 0 {
		slog.Debug("analysis_fields_defaulted", "fields", parsed.Defaulted, "raw_bytes", len(raw))
	}

	return &domain.Report{
		ID:              uuid.NewString(),
		Filename:        filename,
		TranscriptChars: transcriptChars,
		Analysis:        parsed,
		RawResponse:     raw,
		CreatedAt:       start.UTC(),
	}
}

func (uc *AnalyzeTranscriptUseCase) observe(stage string, start time.Time, err error) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveStage(stage, uc.now().Sub(start), err)
}
