package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestLandingPageShowsFeaturesAndUploadForm(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	for _, want := range []string{
		"<title>EarningsCall.ai Pro</title>",
		"Reveal the Risks Wall Street Misses",
		"Deception Detection",
		"Non-GAAP Scan",
		"Tone Analysis",
		"Fog Index",
		"Q&amp;A Divergence",
		"Future Sentiment",
		"How to Master Earnings Season",
		`action="/analyze"`,
		"Analyzing Executive Tone...",
		`href="data:image/svg&#43;xml,`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("landing page missing %q", want)
		}
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{})
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestFaviconServedFromConfiguredFile(t *testing.T) {
	cfg := testConfig()
	handler := newTestHandler(t, cfg, extractorFake{}, clientFake{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without favicon file, got %d", res.Code)
	}

	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600); err != nil {
		t.Fatalf("write favicon: %v", err)
	}
	cfg.FaviconPath = path
	handler = newTestHandler(t, cfg, extractorFake{}, clientFake{})

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with favicon file, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(res.Body.String(), `href="/favicon.ico"`) {
		t.Fatalf("expected landing page to link the favicon file")
	}
}

func TestAnalyzeUploadRendersDashboard(t *testing.T) {
	handler := newTestHandler(t, testConfig(),
		extractorFake{text: "Operator: welcome to the call."},
		clientFake{raw: wellFormedResponse + "\n<script>alert(1)</script>"},
	)

	req := newUploadRequest(t, "file", "q3.pdf", []byte("%PDF-1.4 fake"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html response, got %q", ct)
	}

	body := res.Body.String()
	for _, want := range []string{
		"Management struggles to explain margin compression amid rising costs.",
		"AI Verdict: BEARISH",
		"Non-GAAP Intensity",
		"CEO Fog Index",
		"Transcript Size",
		"0.0k chars",
		"Management is evasive. High probability of downside.",
		"<h2>Red Flags</h2>",
		"Key Findings",
		"Raw Analysis",
		"RISK_SCORE: 82",
		"#EF4444",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
	if strings.Contains(body, "<script>alert(1)") {
		t.Fatalf("model output must not be rendered as raw html")
	}
}

func TestAnalyzeUploadReturnsJSONWhenAccepted(t *testing.T) {
	handler := newTestHandler(t, testConfig(),
		extractorFake{text: strings.Repeat("a", 1500)},
		clientFake{raw: wellFormedResponse},
	)

	req := newUploadRequest(t, "file", "q3.pdf", []byte("%PDF-1.4 fake"))
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp struct {
		Report domain.Report `json:"report"`
		View   struct {
			VerdictCaption string `json:"verdict_caption"`
			Gauge          struct {
				Band string `json:"band"`
			} `json:"gauge"`
			Tiles []struct {
				Label string `json:"label"`
				Value string `json:"value"`
			} `json:"tiles"`
		} `json:"view"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report.Analysis.RiskScore != 82 || resp.Report.Filename != "q3.pdf" || resp.Report.Model != "gemini-test" {
		t.Fatalf("unexpected report: %+v", resp.Report)
	}
	if resp.View.VerdictCaption != "AI Verdict: BEARISH" || resp.View.Gauge.Band != "high" {
		t.Fatalf("unexpected view: %+v", resp.View)
	}
	if len(resp.View.Tiles) != 4 || resp.View.Tiles[3].Value != "1.5k chars" {
		t.Fatalf("unexpected tiles: %+v", resp.View.Tiles)
	}
}

func TestAnalyzeUploadRequiresFileField(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{})
	req := newUploadRequest(t, "document", "q3.pdf", []byte("%PDF-1.4"))
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAnalyzeUploadReportsMalformedMultipart(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{})
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("plain body"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "multipart/form-data") {
		t.Fatalf("expected underlying multipart error, got %s", body)
	}
	if strings.Contains(body, "is required") {
		t.Fatalf("malformed body must not be reported as a missing field: %s", body)
	}
}

func TestAnalyzeUploadCanceledByClient(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{err: context.Canceled}, clientFake{raw: wellFormedResponse})
	req := newUploadRequest(t, "file", "q3.pdf", []byte("%PDF-1.4"))
	req.Header.Set("Accept", "application/json")
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req.WithContext(ctx))

	if res.Code != statusClientClosedRequest {
		t.Fatalf("expected %d, got %d", statusClientClosedRequest, res.Code)
	}
}

func TestAnalyzeUploadRejectsOversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 256
	handler := newTestHandler(t, cfg, extractorFake{}, clientFake{})

	req := newUploadRequest(t, "file", "big.pdf", bytes.Repeat([]byte("x"), 4096))
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
}

func TestAnalyzeUploadMapsFailures(t *testing.T) {
	tests := []struct {
		name       string
		extractor  extractorFake
		client     *clientFake
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "unreadable pdf",
			extractor:  extractorFake{err: domain.WrapError(domain.ErrExtraction, "open pdf", errors.New("not a PDF file"))},
			client:     &clientFake{raw: wellFormedResponse},
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Error reading PDF",
		},
		{
			name:       "missing credential",
			extractor:  extractorFake{text: "transcript"},
			client:     nil,
			wantStatus: http.StatusUnauthorized,
			wantTitle:  "API Key Error",
		},
		{
			name:       "model failure",
			extractor:  extractorFake{text: "transcript"},
			client:     &clientFake{err: domain.WrapError(domain.ErrService, "gemini_generate", errors.New("quota exhausted"))},
			wantStatus: http.StatusBadGateway,
			wantTitle:  "Analysis Error",
		},
		{
			name:       "temporary model failure",
			extractor:  extractorFake{text: "transcript"},
			client:     &clientFake{err: errors.Join(domain.ErrService, domain.ErrTemporary)},
			wantStatus: http.StatusServiceUnavailable,
			wantTitle:  "Analysis Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handler http.Handler
			if tt.client == nil {
				handler = newTestHandler(t, testConfig(), tt.extractor, nil)
			} else {
				handler = newTestHandler(t, testConfig(), tt.extractor, *tt.client)
			}

			req := newUploadRequest(t, "file", "q3.pdf", []byte("%PDF-1.4"))
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, res.Code)
			}
			body := res.Body.String()
			if !strings.Contains(body, tt.wantTitle) {
				t.Fatalf("expected error page title %q in body", tt.wantTitle)
			}
			if strings.Contains(body, "RISK METER") {
				t.Fatalf("no partial dashboard may be rendered on failure")
			}
		})
	}
}

func TestAnalyzeTextValidatesBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "invalid json", body: `{"transcript":`, wantStatus: http.StatusBadRequest},
		{name: "missing transcript", body: `{"filename":"q3.txt"}`, wantStatus: http.StatusBadRequest},
		{name: "wrong type", body: `{"transcript":42}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"transcript":"x","mode":"fast"}`, wantStatus: http.StatusBadRequest},
		{name: "empty transcript allowed", body: `{"transcript":""}`, wantStatus: http.StatusOK},
		{name: "valid", body: `{"filename":"q3.txt","transcript":"Operator: welcome."}`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{raw: wellFormedResponse})
			req := httptest.NewRequest(http.MethodPost, "/v1/analyses/text", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, res.Code, res.Body.String())
			}
		})
	}
}

func TestAnalyzeTextRejectsOversizedTranscript(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTranscriptChars = 10
	handler := newTestHandler(t, cfg, extractorFake{}, clientFake{raw: wellFormedResponse})

	payload, _ := json.Marshal(map[string]string{"transcript": strings.Repeat("word ", 10)})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses/text", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp["error"] == "" || resp["request_id"] == "" {
		t.Fatalf("expected error and request id, got %v", resp)
	}
}

func TestParseResponseDefaultsMalformedFields(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, nil)

	raw := "RISK_SCORE: high\nsome prose without tags"
	payload, _ := json.Marshal(map[string]any{"raw_response": raw, "transcript_chars": 2000})
	req := httptest.NewRequest(http.MethodPost, "/v1/responses/parse", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp struct {
		Report domain.Report `json:"report"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	got := resp.Report.Analysis
	if got.RiskScore != 50 || got.Verdict != "Neutral" || got.Headline != "Analysis Complete" {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got.NarrativeBody != raw {
		t.Fatalf("expected narrative to equal raw response, got %q", got.NarrativeBody)
	}
	if resp.Report.TranscriptChars != 2000 {
		t.Fatalf("expected transcript chars echoed, got %d", resp.Report.TranscriptChars)
	}
}

func TestParseResponseRejectsNegativeTranscriptChars(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/responses/parse", strings.NewReader(`{"raw_response":"x","transcript_chars":-1}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestOpenAPIDocumentServed(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "/v1/responses/parse") {
		t.Fatalf("expected api document body")
	}
}

func TestMetricsEndpointCountsAnalyses(t *testing.T) {
	handler := newTestHandler(t, testConfig(), extractorFake{}, clientFake{raw: wellFormedResponse})

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses/text", strings.NewReader(`{"transcript":"hello"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := res.Body.String()
	if !strings.Contains(body, `eca_analysis_requests_total{endpoint="analyze_text",outcome="success",service="earnings-api"} 1`) {
		t.Fatalf("expected analysis counter in metrics output:\n%s", body)
	}
	if !strings.Contains(body, `eca_analysis_risk_band_total{band="high",service="earnings-api"} 1`) {
		t.Fatalf("expected risk band counter in metrics output")
	}
}
