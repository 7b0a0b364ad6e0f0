package httpadapter

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/earningscall-analyzer/internal/config"
	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/core/ports"
	"github.com/kirillkom/earningscall-analyzer/internal/core/usecase"
	"github.com/kirillkom/earningscall-analyzer/internal/observability/metrics"
)

const wellFormedResponse = `[METRICS]
RISK_SCORE: 82
FOG_INDEX: High
NON_GAAP_INTENSITY: High
FUTURE_FOCUS: Negative
[END METRICS]
[HEADLINE]
Management struggles to explain margin compression amid rising costs.
[VERDICT]
Bearish
[ANALYSIS]
## Red Flags
- Margin guidance was withdrawn.`

type extractorFake struct {
	text string
	err  error
}

func (f extractorFake) Extract(context.Context, io.ReaderAt, int64) (string, error) {
	return f.text, f.err
}

type clientFake struct {
	raw string
	err error
}

func (f clientFake) Analyze(context.Context, domain.AnalysisRequest) (string, error) {
	return f.raw, f.err
}

func (f clientFake) Model() string { return "gemini-test" }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FaviconPath = ""
	cfg.APIRateLimitRPS = 0
	cfg.APIMaxInFlight = 0
	return cfg
}

// newTestHandler wires the real use case around fake collaborators. A nil
// client models a missing credential.
func newTestHandler(t *testing.T, cfg config.Config, extractor ports.TextExtractor, client ports.AnalysisClient) http.Handler {
	t.Helper()

	uc := usecase.NewAnalyzeTranscriptUseCase(extractor, client, nil, cfg.MaxTranscriptChars)
	router, err := NewRouter(cfg, uc, uc, metrics.NewHTTPServerMetrics(serviceName))
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router.Handler()
}

func newUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
