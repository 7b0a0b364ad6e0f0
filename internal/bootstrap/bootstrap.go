package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/earningscall-analyzer/internal/config"
	"github.com/kirillkom/earningscall-analyzer/internal/core/ports"
	"github.com/kirillkom/earningscall-analyzer/internal/core/usecase"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/extractor"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/resilience"
	"github.com/kirillkom/earningscall-analyzer/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Metrics  *metrics.HTTPServerMetrics
	Executor *resilience.Executor
	// CredentialErr is set when no analysis client could be built. The app
	// still serves pages; analyses report the error.
	CredentialErr error

	AnalyzeUC *usecase.AnalyzeTranscriptUseCase
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	if err := cfg.ValidateLimits(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	pipelineMetrics := metrics.NewPipelineMetrics(service, httpMetrics.Registerer())

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      cfg.BreakerMinRequests,
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      cfg.BreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: cfg.BreakerHalfOpenMaxCalls,
	})

	client, credErr := newAnalysisClient(ctx, cfg, executor)
	if credErr != nil {
		slog.Warn("analysis_client_unavailable", "provider", cfg.LLMProvider, "error", credErr)
	}

	textExtractor := extractor.NewDetecting(pdf.NewExtractor(), plaintext.NewExtractor())
	analyzeUC := usecase.NewAnalyzeTranscriptUseCase(textExtractor, client, pipelineMetrics, cfg.MaxTranscriptChars)

	return &App{
		Config:        cfg,
		Metrics:       httpMetrics,
		Executor:      executor,
		CredentialErr: credErr,
		AnalyzeUC:     analyzeUC,
	}, nil
}

// newAnalysisClient returns a nil interface, never a typed nil, when the
// client cannot be built.
func newAnalysisClient(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.AnalysisClient, error) {
	if cfg.LLMProvider == config.ProviderOllama {
		return ollama.New(ollama.Config{
			BaseURL:       cfg.OllamaURL,
			Model:         cfg.OllamaModel,
			Timeout:       cfg.LLMTimeout,
			ContextTokens: cfg.OllamaContextTokens,
		}, executor), nil
	}

	client, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.LLMTimeout,
	}, executor)
	if err != nil {
		return nil, err
	}
	return client, nil
}
