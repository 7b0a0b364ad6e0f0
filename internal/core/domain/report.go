package domain

import "time"

// Report is the outcome of one analyze action. It lives only as long as the
// response that renders it.
type Report struct {
	ID              string         `json:"id"`
	Filename        string         `json:"filename,omitempty"`
	Model           string         `json:"model,omitempty"`
	TranscriptChars int            `json:"transcript_chars"`
	Analysis        ParsedAnalysis `json:"analysis"`
	RawResponse     string         `json:"raw_response"`
	Duration        time.Duration  `json:"duration_ns"`
	CreatedAt       time.Time      `json:"created_at"`
}
