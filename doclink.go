// Package doclink links in-text references ("Fig. 2.6", "Table 3",
// "(1.4)") to the figures, tables, equations, and algorithms they denote.
//
// It consumes per-page OCR text blocks and layout-element detections
// produced by upstream collaborators, assigns canonical identifiers to
// figure-like elements by reading nearby captions, groups scattered
// elements into logical figures, extracts typed reference mentions from
// body text, and resolves each mention to at most one figure through a
// scored matching procedure. Unresolved mentions are left visibly
// unmatched rather than guessed.
//
// Basic usage:
//
//	doc, warnings, err := doclink.New(input).Process(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", doclink.FormatWarnings(warnings))
//	}
//
// With options:
//
//	doc, _, err := doclink.New(input).
//	    Parallelism(4).
//	    MatchThreshold(0.6).
//	    Process(ctx)
//
// For advanced use cases the lower-level caption, grouping, refs, and
// mapping packages are also available.
package doclink

import (
	"context"

	"github.com/tsawler/doclink/model"
)

// Link processes a document with default options. It is shorthand for
// New(input).Process(ctx).
func Link(ctx context.Context, input DocumentInput) (*model.Document, []Warning, error) {
	return New(input).Process(ctx)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustLink is a helper that wraps a call to Process() and panics if the
// error is non-nil. It discards warnings and returns just the document.
func MustLink(doc *model.Document, _ []Warning, err error) *model.Document {
	if err != nil {
		panic(err)
	}
	return doc
}
