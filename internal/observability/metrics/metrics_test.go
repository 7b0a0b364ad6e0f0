package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsRequestsWithBoundedPaths(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/analyze" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	for _, path := range []string{"/analyze", "/wp-admin", "/.env"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodPost, "/analyze", "422")); got != 1 {
		t.Fatalf("expected one /analyze 422, got %v", got)
	}
	if got := testutil.ToFloat64(m.requestTotal.WithLabelValues("api", http.MethodPost, "other", "404")); got != 2 {
		t.Fatalf("expected unknown paths folded into other, got %v", got)
	}
	if got := testutil.ToFloat64(m.requestInFlight); got != 0 {
		t.Fatalf("expected no in-flight requests, got %v", got)
	}
}

func TestRecordParsedAnalysis(t *testing.T) {
	m := NewHTTPServerMetrics("api")

	m.RecordParsedAnalysis("api", "high", []string{"verdict", "headline"}, 52_000)
	m.RecordParsedAnalysis("api", "high", []string{"verdict"}, 10)
	m.RecordAnalysisOutcome("api", "analyze", "success")
	m.RecordRejected("api", "rate_limited")

	if got := testutil.ToFloat64(m.riskBandTotal.WithLabelValues("api", "high")); got != 2 {
		t.Fatalf("expected two high-band analyses, got %v", got)
	}
	if got := testutil.ToFloat64(m.defaultedFieldsTotal.WithLabelValues("api", "verdict")); got != 2 {
		t.Fatalf("expected verdict defaulted twice, got %v", got)
	}
	if got := testutil.ToFloat64(m.analysesTotal.WithLabelValues("api", "analyze", "success")); got != 1 {
		t.Fatalf("expected one successful analysis, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejectedTotal.WithLabelValues("api", "rate_limited")); got != 1 {
		t.Fatalf("expected one rejection, got %v", got)
	}
}

func TestPipelineMetricsShareRegistry(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	pipeline := NewPipelineMetrics("api", m.Registerer())

	pipeline.ObserveStage("extract", 15*time.Millisecond, nil)
	pipeline.ObserveStage("model", 2*time.Second, errors.New("quota"))

	if got := testutil.ToFloat64(pipeline.stageTotal.WithLabelValues("api", "model", "error")); got != 1 {
		t.Fatalf("expected one failed model stage, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "eca_pipeline_stage_total") {
		t.Fatalf("expected pipeline metrics on the shared endpoint, got:\n%s", body)
	}
}
