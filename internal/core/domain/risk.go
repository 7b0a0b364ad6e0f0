package domain

// RiskBand is one of the three gauge bands.
type RiskBand string

const (
	RiskBandLow    RiskBand = "low"
	RiskBandMedium RiskBand = "medium"
	RiskBandHigh   RiskBand = "high"
)

const (
	gaugeMediumFrom = 30
	gaugeHighAbove  = 70

	advisoryHighAbove = 75
	advisoryLowBelow  = 30
)

// GaugeBand buckets a score for gauge coloring: [0,30) low, [30,70] medium,
// (70,100] high.
func GaugeBand(score int) RiskBand {
	switch {
	case score > gaugeHighAbove:
		return RiskBandHigh
	case score >= gaugeMediumFrom:
		return RiskBandMedium
	default:
		return RiskBandLow
	}
}

// AdvisoryLevel buckets a score for the advisory text. Its thresholds differ
// from the gauge: only scores above 75 are called high risk.
func AdvisoryLevel(score int) RiskBand {
	switch {
	case score > advisoryHighAbove:
		return RiskBandHigh
	case score < advisoryLowBelow:
		return RiskBandLow
	default:
		return RiskBandMedium
	}
}
