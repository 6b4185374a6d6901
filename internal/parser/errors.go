package parser

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError means the filename extension is not recognized.
// Fatal for the document; no partial result is produced.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file extension: %q", e.Ext)
}

// StageResult records the outcome of one stage of a fallback chain, for
// diagnostics when every stage fails.
type StageResult struct {
	Stage   string `json:"stage"`
	TextLen int    `json:"text_len"`
	Detail  string `json:"detail,omitempty"`
}

// ExtractionFailure means a format-specific extractor produced empty or
// near-empty text after exhausting its fallback chain. Fatal for the
// document; carries per-stage diagnostics.
type ExtractionFailure struct {
	Format string
	Stages []StageResult
	Sample string
}

func (e *ExtractionFailure) Error() string {
	parts := make([]string, 0, len(e.Stages))
	for _, s := range e.Stages {
		d := fmt.Sprintf("%s=%d chars", s.Stage, s.TextLen)
		if s.Detail != "" {
			d += " (" + s.Detail + ")"
		}
		parts = append(parts, d)
	}
	msg := fmt.Sprintf("%s extraction produced no usable text: %s", e.Format, strings.Join(parts, ", "))
	if e.Sample != "" {
		msg += fmt.Sprintf("; sample: %q", e.Sample)
	}
	return msg
}
