package doclink

import (
	"fmt"
	"strings"
)

// WarningKind classifies non-fatal conditions encountered while linking.
type WarningKind string

const (
	// WarnMalformedInput marks a layout element or text block with
	// unusable geometry. The offending item is skipped; the rest of the
	// page is still processed.
	WarnMalformedInput WarningKind = "malformed_input"

	// WarnNoCaption marks a figure-like element for which no caption was
	// found anywhere in its neighborhood. The record receives a fallback
	// identifier during aggregation.
	WarnNoCaption WarningKind = "no_caption_found"
)

// Warning describes a non-fatal issue encountered during processing.
// Processing continues; warnings let callers audit data quality.
type Warning struct {
	// Page is the 0-indexed page the warning relates to, or -1 for
	// document-level warnings.
	Page int

	// Kind classifies the warning.
	Kind WarningKind

	// Message is a human-readable description.
	Message string
}

// String returns a human-readable representation of the warning.
func (w Warning) String() string {
	if w.Page < 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("page %d: %s: %s", w.Page, w.Kind, w.Message)
}

// FormatWarnings formats a slice of warnings as a single string, one
// warning per line. Returns an empty string for an empty slice.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
