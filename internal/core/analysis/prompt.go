package analysis

import (
	"unicode/utf8"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// TranscriptDelimiter separates the fixed instructions from the transcript.
const TranscriptDelimiter = "\n\nTRANSCRIPT:\n"

// FixedTemplate is identical for every request; only the transcript varies.
const FixedTemplate = `You are a veteran Wall Street analyst working at a bulge-bracket investment bank. Analyze this earnings call transcript.

STEP 1: CALCULATE ADVANCED METRICS
- RISK_SCORE: (0-100) based on negative sentiment and vague answers.
- FOG_INDEX: (Low/Medium/High) Is the language simple or intentionally confusing?
- NON_GAAP_INTENSITY: (Low/Medium/High) How heavily does management rely on "Adjusted" or "Non-GAAP" metrics?
- FUTURE_FOCUS: (Positive/Neutral/Negative) Are they talking about growth and expansion (future) or challenges and impacts (past)?

STEP 2: EXECUTIVE SUMMARY
- Headline: a WSJ-style headline, at most 10 words.
- Verdict: Bullish, Bearish or Neutral.

STEP 3: DEEP DIVE
- Red Flags: list 3 specific concerns with quotes.
- The Defense: what is the company's main positive argument?
- Q&A Analysis: did they dodge any specific analyst questions?

OUTPUT FORMAT (follow it exactly, one value per line, no JSON):
[METRICS]
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
... (rest of the analysis in Markdown)`

// BuildRequest concatenates the fixed template and the transcript. The
// transcript is passed through untouched.
func BuildRequest(transcript string) domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Prompt:          FixedTemplate + TranscriptDelimiter + transcript,
		TranscriptChars: utf8.RuneCountInString(transcript),
	}
}
