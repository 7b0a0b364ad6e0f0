package domain

// Enumerated values the model is asked to produce. The parser never
// enforces them; renderers show whatever text the model returned.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"

	FocusPositive = "Positive"
	FocusNeutral  = "Neutral"
	FocusNegative = "Negative"

	VerdictBullish = "Bullish"
	VerdictBearish = "Bearish"
	VerdictNeutral = "Neutral"
)

const (
	DefaultRiskScore        = 50
	DefaultFogIndex         = LevelMedium
	DefaultNonGAAPIntensity = LevelMedium
	DefaultFutureFocus      = FocusNeutral
	DefaultVerdict          = VerdictNeutral
	DefaultHeadline         = "Analysis Complete"

	MinRiskScore = 0
	MaxRiskScore = 100
)

// Field names used in ParsedAnalysis.Defaulted, logs and metrics.
const (
	FieldRiskScore        = "risk_score"
	FieldFogIndex         = "fog_index"
	FieldNonGAAPIntensity = "non_gaap_intensity"
	FieldFutureFocus      = "future_focus"
	FieldVerdict          = "verdict"
	FieldHeadline         = "headline"
	FieldNarrativeBody    = "narrative_body"
)

// AnalysisRequest is the single text payload sent to the model.
type AnalysisRequest struct {
	Prompt          string `json:"prompt"`
	TranscriptChars int    `json:"transcript_chars"`
}

// ParsedAnalysis is always fully populated: fields missing from the model
// output carry their defaults and are listed in Defaulted.
type ParsedAnalysis struct {
	RiskScore        int      `json:"risk_score"`
	FogIndex         string   `json:"fog_index"`
	NonGAAPIntensity string   `json:"non_gaap_intensity"`
	FutureFocus      string   `json:"future_focus"`
	Verdict          string   `json:"verdict"`
	Headline         string   `json:"headline"`
	NarrativeBody    string   `json:"narrative_body"`
	Defaulted        []string `json:"defaulted,omitempty"`
}

// DefaultParsedAnalysis returns the all-default record for a raw response.
func DefaultParsedAnalysis(raw string) ParsedAnalysis {
	return ParsedAnalysis{
		RiskScore:        DefaultRiskScore,
		FogIndex:         DefaultFogIndex,
		NonGAAPIntensity: DefaultNonGAAPIntensity,
		FutureFocus:      DefaultFutureFocus,
		Verdict:          DefaultVerdict,
		Headline:         DefaultHeadline,
		NarrativeBody:    raw,
	}
}
