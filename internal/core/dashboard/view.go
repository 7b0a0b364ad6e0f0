// Package dashboard maps a report onto the widgets of the results page. It
// holds presentation policy only and is shared by the HTML and terminal
// renderers.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

const (
	ColorLow    = "#10B981"
	ColorMedium = "#F59E0B"
	ColorHigh   = "#EF4444"

	StepColorLow    = "#D1FAE5"
	StepColorMedium = "#FEF3C7"
	StepColorHigh   = "#FEE2E2"
)

const (
	AdvisoryHigh   = "Management is evasive. High probability of downside."
	AdvisoryLow    = "Management is confident. Execution risk is low."
	AdvisoryMedium = "Mixed signals. Monitor next quarter closely."
)

// Tone values mirror the delta coloring of a metric tile.
const (
	ToneNormal  = "normal"
	ToneInverse = "inverse"
	ToneNone    = ""
)

type Tile struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Help  string `json:"help,omitempty"`
	Tone  string `json:"tone,omitempty"`
}

type GaugeStep struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Color string `json:"color"`
}

type Gauge struct {
	Score int             `json:"score"`
	Band  domain.RiskBand `json:"band"`
	Color string          `json:"color"`
	Steps []GaugeStep     `json:"steps"`
}

type Advisory struct {
	Level   domain.RiskBand `json:"level"`
	Message string          `json:"message"`
}

type View struct {
	ID             string   `json:"id,omitempty"`
	Filename       string   `json:"filename,omitempty"`
	Model          string   `json:"model,omitempty"`
	Headline       string   `json:"headline"`
	Verdict        string   `json:"verdict"`
	VerdictCaption string   `json:"verdict_caption"`
	Tiles          []Tile   `json:"tiles"`
	Gauge          Gauge    `json:"gauge"`
	Advisory       Advisory `json:"advisory"`
	Narrative      string   `json:"narrative"`
	RawResponse    string   `json:"raw_response"`
	Defaulted      []string `json:"defaulted,omitempty"`
}

// Build derives the dashboard from a finished report.
func Build(report domain.Report) View {
	parsed := report.Analysis
	verdict := strings.ToUpper(parsed.Verdict)

	return View{
		ID:             report.ID,
		Filename:       report.Filename,
		Model:          report.Model,
		Headline:       parsed.Headline,
		Verdict:        verdict,
		VerdictCaption: "AI Verdict: " + verdict,
		Tiles:          buildTiles(parsed, report.TranscriptChars),
		Gauge:          BuildGauge(parsed.RiskScore),
		Advisory:       BuildAdvisory(parsed.RiskScore),
		Narrative:      parsed.NarrativeBody,
		RawResponse:    report.RawResponse,
		Defaulted:      parsed.Defaulted,
	}
}

func buildTiles(parsed domain.ParsedAnalysis, transcriptChars int) []Tile {
	return []Tile{
		{
			Label: "Non-GAAP Intensity",
			Value: parsed.NonGAAPIntensity,
			Help:  "High reliance on 'Adjusted' numbers is a red flag.",
		},
		{
			Label: "Future Sentiment",
			Value: parsed.FutureFocus,
			Tone:  FutureTone(parsed.FutureFocus),
		},
		{
			Label: "CEO Fog Index",
			Value: parsed.FogIndex,
			Help:  "High = Confusing/Evasive Language",
		},
		{
			Label: "Transcript Size",
			Value: FormatTranscriptSize(transcriptChars),
		},
	}
}

func BuildGauge(score int) Gauge {
	return Gauge{
		Score: score,
		Band:  domain.GaugeBand(score),
		Color: BandColor(domain.GaugeBand(score)),
		Steps: []GaugeStep{
			{From: 0, To: 30, Color: StepColorLow},
			{From: 30, To: 70, Color: StepColorMedium},
			{From: 70, To: 100, Color: StepColorHigh},
		},
	}
}

func BuildAdvisory(score int) Advisory {
	level := domain.AdvisoryLevel(score)
	switch level {
	case domain.RiskBandHigh:
		return Advisory{Level: level, Message: AdvisoryHigh}
	case domain.RiskBandLow:
		return Advisory{Level: level, Message: AdvisoryLow}
	default:
		return Advisory{Level: level, Message: AdvisoryMedium}
	}
}

func BandColor(band domain.RiskBand) string {
	switch band {
	case domain.RiskBandHigh:
		return ColorHigh
	case domain.RiskBandMedium:
		return ColorMedium
	default:
		return ColorLow
	}
}

// FutureTone is "normal" only for an exact Positive; any other text,
// including out-of-enum values, renders inverted.
func FutureTone(futureFocus string) string {
	if futureFocus == domain.FocusPositive {
		return ToneNormal
	}
	return ToneInverse
}

func FormatTranscriptSize(chars int) string {
	return fmt.Sprintf("%.1fk chars", float64(chars)/1000)
}
