package analysis

import (
	"strconv"
	"strings"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

// fieldRule extracts one field independently of every other field. A rule
// that finds nothing, or whose validator rejects the value, leaves the
// default in place.
type fieldRule struct {
	field    string
	match    func(raw string) (string, bool)
	validate func(value string) bool
	assign   func(out *domain.ParsedAnalysis, value string)
}

var fieldRules = []fieldRule{
	{
		field:    domain.FieldRiskScore,
		match:    metricMatcher(KeyRiskScore),
		validate: func(v string) bool { _, ok := parseRiskScore(v); return ok },
		assign: func(out *domain.ParsedAnalysis, v string) {
			out.RiskScore, _ = parseRiskScore(v)
		},
	},
	{
		field:    domain.FieldFogIndex,
		match:    metricMatcher(KeyFogIndex),
		validate: nonEmpty,
		assign:   func(out *domain.ParsedAnalysis, v string) { out.FogIndex = v },
	},
	{
		field:    domain.FieldNonGAAPIntensity,
		match:    metricMatcher(KeyNonGAAPIntensity),
		validate: nonEmpty,
		assign:   func(out *domain.ParsedAnalysis, v string) { out.NonGAAPIntensity = v },
	},
	{
		field:    domain.FieldFutureFocus,
		match:    metricMatcher(KeyFutureFocus),
		validate: nonEmpty,
		assign:   func(out *domain.ParsedAnalysis, v string) { out.FutureFocus = v },
	},
	{
		field:    domain.FieldHeadline,
		match:    sectionLineMatcher(TagHeadline),
		validate: nonEmpty,
		assign:   func(out *domain.ParsedAnalysis, v string) { out.Headline = v },
	},
	{
		field:    domain.FieldVerdict,
		match:    sectionLineMatcher(TagVerdict),
		validate: nonEmpty,
		assign:   func(out *domain.ParsedAnalysis, v string) { out.Verdict = v },
	},
	{
		field:    domain.FieldNarrativeBody,
		match:    sectionBodyMatcher(TagAnalysis),
		validate: func(string) bool { return true },
		assign:   func(out *domain.ParsedAnalysis, v string) { out.NarrativeBody = v },
	},
}

// Parse turns a raw model response into a fully populated ParsedAnalysis.
// It never fails: malformed or missing fields fall back to their defaults.
func Parse(raw string) domain.ParsedAnalysis {
	out := domain.DefaultParsedAnalysis(raw)
	for _, rule := range fieldRules {
		value, ok := rule.match(raw)
		if !ok || !rule.validate(value) {
			out.Defaulted = append(out.Defaulted, rule.field)
			continue
		}
		rule.assign(&out, value)
	}
	return out
}

// metricMatcher looks inside the [METRICS] block first so that an echoed
// instruction line elsewhere cannot shadow the real value, then falls back to
// the whole response.
func metricMatcher(key string) func(string) (string, bool) {
	re := keyLineRe(key)
	return func(raw string) (string, bool) {
		if block, ok := metricsBlock(raw); ok {
			if m := re.FindStringSubmatch(block); m != nil {
				return cleanValue(m[1]), true
			}
		}
		m := re.FindStringSubmatch(raw)
		if m == nil {
			return "", false
		}
		return cleanValue(m[1]), true
	}
}

// sectionLineMatcher returns the first non-blank line after the first
// occurrence of tag. Text on the tag's own line counts as that line.
func sectionLineMatcher(tag string) func(string) (string, bool) {
	re := tagRe(tag)
	return func(raw string) (string, bool) {
		loc := re.FindStringIndex(raw)
		if loc == nil {
			return "", false
		}
		for _, line := range strings.Split(skipTagMarkup(raw[loc[1]:]), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if anyTagLineRe.MatchString(line) {
				return "", false
			}
			return line, true
		}
		return "", false
	}
}

// sectionBodyMatcher returns everything after the last occurrence of tag.
func sectionBodyMatcher(tag string) func(string) (string, bool) {
	re := tagRe(tag)
	return func(raw string) (string, bool) {
		locs := re.FindAllStringIndex(raw, -1)
		if len(locs) == 0 {
			return "", false
		}
		last := locs[len(locs)-1]
		return strings.TrimSpace(skipTagMarkup(raw[last[1]:])), true
	}
}

// skipTagMarkup drops the markdown emphasis that closes a tag written as
// "**[HEADLINE]**" or "## [ANALYSIS] ##".
func skipTagMarkup(rest string) string {
	return strings.TrimLeft(rest, "*# \t")
}

func metricsBlock(raw string) (string, bool) {
	m := metricsBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// cleanValue trims whitespace, a trailing comma and surrounding quotes left
// over from JSON-like output.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, ",")
	v = strings.Trim(v, `"'`)
	return strings.TrimSpace(v)
}

// parseRiskScore accepts an unsigned integer literal at the start of the
// value. Decimals, signs and values outside [0,100] are rejected, never
// clamped.
func parseRiskScore(v string) (int, bool) {
	m := riskIntegerRe.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if n < domain.MinRiskScore || n > domain.MaxRiskScore {
		return 0, false
	}
	return n, true
}

func nonEmpty(v string) bool {
	return v != ""
}
