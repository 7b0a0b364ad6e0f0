package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/earningscall-analyzer/internal/config"
	"github.com/kirillkom/earningscall-analyzer/internal/core/dashboard"
	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/core/ports"
	"github.com/kirillkom/earningscall-analyzer/internal/observability/metrics"
)

const (
	serviceName = "earnings-api"

	// multipartMemory is how much of an upload is kept in memory; the rest
	// spills to a temporary file that is removed after the request.
	multipartMemory  = 8 << 20
	maxJSONBodyExtra = 1 << 20
)

type Router struct {
	cfg         config.Config
	analyzer    ports.TranscriptAnalyzer
	interpreter ports.ResponseInterpreter
	metrics     *metrics.HTTPServerMetrics
	pages       *pageRenderer
	schemas     *requestSchemas
}

// NewRouter builds the HTTP surface. metrics may be nil.
func NewRouter(
	cfg config.Config,
	analyzer ports.TranscriptAnalyzer,
	interpreter ports.ResponseInterpreter,
	m *metrics.HTTPServerMetrics,
) (*Router, error) {
	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}
	schemas, err := loadRequestSchemas()
	if err != nil {
		return nil, err
	}
	return &Router{
		cfg:         cfg,
		analyzer:    analyzer,
		interpreter: interpreter,
		metrics:     m,
		pages:       pages,
		schemas:     schemas,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.index)
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/openapi.yaml", rt.openAPI)
	mux.HandleFunc("/favicon.ico", rt.favicon)
	mux.Handle("/analyze", rt.guard(http.HandlerFunc(rt.analyzeUpload)))
	mux.Handle("/v1/analyses/text", rt.guard(http.HandlerFunc(rt.analyzeText)))
	mux.HandleFunc("/v1/responses/parse", rt.parseResponse)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

// guard puts the model-calling endpoints behind the rate limit and the
// in-flight gate.
func (rt *Router) guard(next http.Handler) http.Handler {
	gated := backpressureMiddleware(next, rt.cfg.APIMaxInFlight, rt.cfg.APIQueueWait, rt.rejectionRecorder("overloaded"))
	return rateLimitMiddleware(gated, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.rejectionRecorder("rate_limited"))
}

func (rt *Router) rejectionRecorder(reason string) func() {
	return func() {
		if rt.metrics != nil {
			rt.metrics.RecordRejected(serviceName, reason)
		}
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.pages.render(w, http.StatusOK, "index", rt.basePage())
}

func (rt *Router) analyzeUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		rt.respondError(w, r, "analyze", uploadError(err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.respondError(w, r, "analyze", domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("multipart field 'file' is required")))
		return
	}
	defer file.Close()

	report, err := rt.analyzer.AnalyzeDocument(r.Context(), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		rt.respondError(w, r, "analyze", err)
		return
	}
	rt.recordSuccess("analyze", report)

	view := dashboard.Build(*report)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, analysisResponse{Report: report, View: view})
		return
	}

	data := rt.basePage()
	data.Dashboard = rt.pages.dashboardPage(view)
	rt.pages.render(w, http.StatusOK, "dashboard", data)
}

type textAnalysisRequest struct {
	Filename   string `json:"filename"`
	Transcript string `json:"transcript"`
}

func (rt *Router) analyzeText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+maxJSONBodyExtra)
	var req textAnalysisRequest
	if err := rt.schemas.decode(r.Body, "TextAnalysisRequest", &req); err != nil {
		rt.respondJSONError(w, r, "analyze_text", err)
		return
	}

	report, err := rt.analyzer.AnalyzeTranscript(r.Context(), req.Filename, req.Transcript)
	if err != nil {
		rt.respondJSONError(w, r, "analyze_text", err)
		return
	}
	rt.recordSuccess("analyze_text", report)

	writeJSON(w, http.StatusOK, analysisResponse{Report: report, View: dashboard.Build(*report)})
}

type parseRequest struct {
	RawResponse     string `json:"raw_response"`
	TranscriptChars int    `json:"transcript_chars"`
}

func (rt *Router) parseResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+maxJSONBodyExtra)
	var req parseRequest
	if err := rt.schemas.decode(r.Body, "ParseRequest", &req); err != nil {
		rt.respondJSONError(w, r, "parse", err)
		return
	}

	report := rt.interpreter.InterpretResponse(req.RawResponse, req.TranscriptChars)
	rt.recordSuccess("parse", report)

	writeJSON(w, http.StatusOK, analysisResponse{Report: report, View: dashboard.Build(*report)})
}

type analysisResponse struct {
	Report *domain.Report `json:"report"`
	View   dashboard.View `json:"view"`
}

func (rt *Router) basePage() pageData {
	return pageData{
		Title:    pageTitle,
		Favicon:  rt.faviconHref(),
		Features: landingFeatures,
		Panels:   landingPanels,
	}
}

func (rt *Router) recordSuccess(endpoint string, report *domain.Report) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAnalysisOutcome(serviceName, endpoint, "success")
	rt.metrics.RecordParsedAnalysis(
		serviceName,
		string(domain.GaugeBand(report.Analysis.RiskScore)),
		report.Analysis.Defaulted,
		report.TranscriptChars,
	)
}

// respondError reports a failed upload as JSON or as the error page,
// following the Accept header.
func (rt *Router) respondError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	if wantsJSON(r) {
		rt.respondJSONError(w, r, endpoint, err)
		return
	}

	status := rt.logFailure(r, endpoint, err)
	data := rt.basePage()
	data.Error = &errorPage{
		Title:     errorTitle(err),
		Message:   err.Error(),
		RequestID: requestIDFromContext(r.Context()),
	}
	rt.pages.render(w, status, "error", data)
}

func (rt *Router) respondJSONError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	status := rt.logFailure(r, endpoint, err)
	writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"request_id": requestIDFromContext(r.Context()),
	})
}

func (rt *Router) logFailure(r *http.Request, endpoint string, err error) int {
	status := mapErrorToHTTPStatus(err)
	if rt.metrics != nil {
		rt.metrics.RecordAnalysisOutcome(serviceName, endpoint, errorOutcome(err))
	}

	attrs := []any{
		"request_id", requestIDFromContext(r.Context()),
		"endpoint", endpoint,
		"status", status,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("analysis_failed", attrs...)
	} else {
		slog.Warn("analysis_failed", attrs...)
	}
	return status
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domain.WrapError(domain.ErrTooLarge, "read upload", err)
	}
	return domain.WrapError(domain.ErrInvalidInput, "read upload", err)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
