// Package terminal draws the analysis dashboard for a terminal: header,
// metric tiles, a text risk gauge with advisory, and the narrative rendered
// from Markdown.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kirillkom/earningscall-analyzer/internal/core/dashboard"
	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

const gaugeCells = 20

var (
	mutedColor = lipgloss.Color("#64748B")
	inkColor   = lipgloss.Color("#1E293B")
	accent     = lipgloss.Color("#2962FF")
)

type styles struct {
	headline lipgloss.Style
	caption  lipgloss.Style
	tile     lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	help     lipgloss.Style
	section  lipgloss.Style
	raw      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		headline: lipgloss.NewStyle().Bold(true).Foreground(inkColor),
		caption:  lipgloss.NewStyle().Foreground(mutedColor),
		tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E2E8F0")).
			Padding(0, 1).
			Width(22),
		label:   lipgloss.NewStyle().Foreground(mutedColor),
		value:   lipgloss.NewStyle().Bold(true),
		help:    lipgloss.NewStyle().Foreground(mutedColor).Italic(true),
		section: lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1),
		raw:     lipgloss.NewStyle().Foreground(mutedColor),
	}
}

type Renderer struct {
	markdown *glamour.TermRenderer
	styles   styles
}

// New builds a renderer that wraps Markdown at width. plain selects the
// colorless style used when output is not a terminal.
func New(width int, plain bool) (*Renderer, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Renderer{markdown: md, styles: defaultStyles()}, nil
}

// Render writes the dashboard. With showRaw the verbatim model output is
// appended after the findings.
func (r *Renderer) Render(w io.Writer, view dashboard.View, showRaw bool) error {
	var b strings.Builder

	b.WriteString(r.styles.headline.Render(view.Headline))
	b.WriteString("\n")
	b.WriteString(r.styles.caption.Render(view.VerdictCaption))
	b.WriteString("\n\n")

	b.WriteString(r.renderTiles(view.Tiles))
	b.WriteString("\n")

	b.WriteString(r.styles.section.Render("Risk Meter"))
	b.WriteString("\n")
	b.WriteString(renderGauge(view.Gauge))
	b.WriteString("\n")
	b.WriteString(advisoryStyle(view.Advisory.Level).Render("What this means: " + view.Advisory.Message))
	b.WriteString("\n")

	b.WriteString(r.styles.section.Render("Key Findings"))
	b.WriteString("\n")
	narrative, err := r.markdown.Render(view.Narrative)
	if err != nil {
		narrative = view.Narrative + "\n"
	}
	b.WriteString(narrative)

	if showRaw {
		b.WriteString(r.styles.section.Render("Raw Analysis"))
		b.WriteString("\n")
		b.WriteString(r.styles.raw.Render(view.RawResponse))
		b.WriteString("\n")
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func (r *Renderer) renderTiles(tiles []dashboard.Tile) string {
	cells := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		value := r.styles.value
		switch tile.Tone {
		case dashboard.ToneNormal:
			value = value.Foreground(lipgloss.Color(dashboard.ColorLow))
		case dashboard.ToneInverse:
			value = value.Foreground(lipgloss.Color(dashboard.ColorHigh))
		}

		lines := []string{r.styles.label.Render(tile.Label), value.Render(tile.Value)}
		if tile.Help != "" {
			lines = append(lines, r.styles.help.Render(tile.Help))
		}
		cells = append(cells, r.styles.tile.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func renderGauge(g dashboard.Gauge) string {
	filled := g.Score * gaugeCells / domain.MaxRiskScore
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#E2E8F0")).Render(strings.Repeat("░", gaugeCells-filled))
	return fmt.Sprintf("[%s] %d/100 %s", bar, g.Score, strings.ToUpper(string(g.Band)))
}

func advisoryStyle(level domain.RiskBand) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(dashboard.BandColor(level)))
}
