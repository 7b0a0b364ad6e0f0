package analysis

import (
	"fmt"
	"regexp"
)

// Literal tags and keys of the output grammar.
const (
	TagMetrics    = "[METRICS]"
	TagEndMetrics = "[END METRICS]"
	TagHeadline   = "[HEADLINE]"
	TagVerdict    = "[VERDICT]"
	TagAnalysis   = "[ANALYSIS]"

	KeyRiskScore        = "RISK_SCORE"
	KeyFogIndex         = "FOG_INDEX"
	KeyNonGAAPIntensity = "NON_GAAP_INTENSITY"
	KeyFutureFocus      = "FUTURE_FOCUS"
)

var (
	metricsBlockRe = regexp.MustCompile(`(?is)\[METRICS\](.*?)\[END[ _]?METRICS\]`)
	anyTagLineRe   = regexp.MustCompile(`^[*#\s]*\[[A-Za-z _]+\][*\s]*$`)
	riskIntegerRe  = regexp.MustCompile(`^(\d+)(?:$|[\s/%,;)]|\.(?:$|\D))`)
)

// keyLineRe matches "KEY: value" on its own line. Bullets, markdown bold and
// JSON quotes around the key are tolerated; the value never spans lines.
func keyLineRe(key string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`(?im)^[ \t]*[-*>"'{ \t]*%s["'*]*[ \t]*:[*]*[ \t]*([^\n]*)$`,
		regexp.QuoteMeta(key),
	))
}

func tagRe(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(tag))
}
