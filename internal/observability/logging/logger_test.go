package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "earnings-api", "info", "json")

	logger.Debug("hidden")
	logger.Info("analysis_completed", "risk_score", 82)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["service"] != "earnings-api" || entry["msg"] != "analysis_completed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["risk_score"] != float64(82) {
		t.Fatalf("expected risk_score attribute, got %v", entry["risk_score"])
	}
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "earnings-cli", "debug", "TEXT")

	logger.Debug("pdf_text_extracted", "pages", 3)

	out := buf.String()
	if !strings.Contains(out, "msg=pdf_text_extracted") || !strings.Contains(out, "service=earnings-cli") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		" WARN ":  "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
