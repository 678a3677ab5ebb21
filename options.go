package doclink

import (
	"runtime"

	"github.com/tsawler/doclink/caption"
	"github.com/tsawler/doclink/grouping"
	"github.com/tsawler/doclink/mapping"
	"github.com/tsawler/doclink/refs"
)

// LinkOptions holds configuration for document linking.
type LinkOptions struct {
	// Stage configuration
	caption  caption.Config
	grouping grouping.Config
	refs     refs.Config
	mapping  mapping.Config

	// Keyword table shared by the caption, grouping, and reference
	// stages. nil means caption.DefaultKeywordTable.
	keywords caption.KeywordTable

	// Optional upstream span classifier for reference confidence.
	classifier refs.SpanClassifier

	// Maximum pages processed concurrently during the page-local stages.
	parallelism int
}

// defaultOptions returns the default linking options.
func defaultOptions() LinkOptions {
	return LinkOptions{
		caption:     caption.DefaultConfig(),
		grouping:    grouping.DefaultConfig(),
		refs:        refs.DefaultConfig(),
		mapping:     mapping.DefaultConfig(),
		keywords:    nil, // nil means the default table
		classifier:  nil,
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// clone creates a deep copy of LinkOptions.
func (o LinkOptions) clone() LinkOptions {
	newOpts := LinkOptions{
		caption:     o.caption,
		grouping:    o.grouping,
		refs:        o.refs,
		mapping:     o.mapping,
		classifier:  o.classifier,
		parallelism: o.parallelism,
	}

	if o.keywords != nil {
		newOpts.keywords = o.keywords.Clone()
	}

	return newOpts
}
