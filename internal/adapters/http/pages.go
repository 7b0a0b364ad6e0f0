package httpadapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"

	"github.com/kirillkom/earningscall-analyzer/internal/core/dashboard"
)

const pageTitle = "EarningsCall.ai Pro"

//go:embed templates/*.html
var templateFS embed.FS

type featureCard struct {
	Icon  string
	Title string
	Body  string
	Color string
}

type guidePanel struct {
	Title string
	Body  string
	Style string
}

var landingFeatures = []featureCard{
	{Icon: "🔍", Title: "Deception Detection", Color: "blue", Body: `Identifies vague phrasing like "we hope", "trying to", or "challenging environment" that signals lack of confidence.`},
	{Icon: "📉", Title: "Non-GAAP Scan", Color: "yellow", Body: `Flags when management excessively uses "Adjusted EBITDA" or "Pro-Forma" numbers to mask actual Net Income losses.`},
	{Icon: "🗣️", Title: "Tone Analysis", Color: "green", Body: "Compares the polished, scripted prepared remarks against the unscripted, nervous answers during the Q&A session."},
	{Icon: "🌫️", Title: "Fog Index", Color: "red", Body: "Quantifies how confusing the CEO's language is. A high Fog Index often correlates with hiding bad news."},
	{Icon: "⚡", Title: "Q&A Divergence", Color: "purple", Body: "Detects specific moments where executive sentiment drops significantly when facing tough analyst questions."},
	{Icon: "🔭", Title: "Future Sentiment", Color: "gray", Body: "Measures the ratio of Future Tense (Growth plans) versus Past Tense (Excuses for poor performance)."},
}

var landingPanels = []guidePanel{
	{Title: "1. The Problem", Style: "info", Body: "CEOs are trained to hide bad news in boring paragraphs. Retail traders often only read the headlines, missing the structural risks buried in page 14."},
	{Title: "2. Get Transcripts", Style: "plain", Body: "You don't need expensive terminals. Download free PDF transcripts from Investor Relations pages (e.g., apple.com/investor) or apps like Quarterr."},
	{Title: "3. The Edge", Style: "success", Body: "Our AI scans for hesitation, contradictions, and psychological cues that indicate a stock is about to crash, metrics that charts can't show you."},
}

type pageData struct {
	Title     string
	Favicon   template.URL
	Features  []featureCard
	Panels    []guidePanel
	Dashboard *dashboardPage
	Error     *errorPage
}

type gaugeArc struct {
	Path  string
	Color string
}

type dashboardPage struct {
	View          dashboard.View
	NarrativeHTML template.HTML
	Arcs          []gaugeArc
	ValueArc      string
}

type errorPage struct {
	Title     string
	Message   string
	RequestID string
}

type pageRenderer struct {
	pages    map[string]*template.Template
	markdown *markdownRenderer
}

func newPageRenderer() (*pageRenderer, error) {
	pages := make(map[string]*template.Template, 3)
	for _, name := range []string{"index", "dashboard", "error"} {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &pageRenderer{pages: pages, markdown: newMarkdownRenderer()}, nil
}

func (p *pageRenderer) dashboardPage(view dashboard.View) *dashboardPage {
	arcs := make([]gaugeArc, 0, len(view.Gauge.Steps))
	for _, step := range view.Gauge.Steps {
		arcs = append(arcs, gaugeArc{Path: arcPath(step.From, step.To), Color: step.Color})
	}
	return &dashboardPage{
		View:          view,
		NarrativeHTML: p.markdown.Render(view.Narrative),
		Arcs:          arcs,
		ValueArc:      arcPath(0, view.Gauge.Score),
	}
}

// render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (p *pageRenderer) render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := p.pages[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render_page_failed", "page", page, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

const (
	gaugeCenterX = 100.0
	gaugeCenterY = 105.0
	gaugeRadius  = 80.0
)

// arcPath draws the part of the half-circle gauge between two scores.
func arcPath(from, to int) string {
	from = clampScore(from)
	to = clampScore(to)
	if to < from {
		from, to = to, from
	}
	x1, y1 := gaugePoint(from)
	x2, y2 := gaugePoint(to)
	return fmt.Sprintf("M %.2f %.2f A %.0f %.0f 0 0 1 %.2f %.2f", x1, y1, gaugeRadius, gaugeRadius, x2, y2)
}

func gaugePoint(score int) (float64, float64) {
	angle := math.Pi * (1 - float64(score)/100)
	return gaugeCenterX + gaugeRadius*math.Cos(angle), gaugeCenterY - gaugeRadius*math.Sin(angle)
}

func clampScore(score int) int {
	return max(0, min(100, score))
}
