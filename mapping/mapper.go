// Package mapping resolves reference mentions to figure records through
// a scored bipartite matching: every mention either gets exactly one
// figure or is explicitly left unmatched, never guessed.
package mapping

import (
	"sort"
	"strings"

	"github.com/tsawler/doclink/model"
)

// Config holds the edge weights and acceptance threshold for matching.
type Config struct {
	// MatchThreshold is the minimum edge weight for accepting a match.
	// A mention whose best edge scores strictly below it stays unmatched.
	MatchThreshold float64

	// ExactMatchWeight scores an exact identifier match.
	ExactMatchWeight float64

	// PrefixMatchWeight scores dotted identifiers sharing a leading
	// component where one is a prefix of the other ("2.6" vs "2.60").
	// Strictly weaker than an exact match.
	PrefixMatchWeight float64

	// SamePageWeight scores a figure on the mention's own page.
	SamePageWeight float64

	// SoleFigureWeight scores the only figure of the mention's type in
	// the document, regardless of identifiers.
	SoleFigureWeight float64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MatchThreshold:    0.5,
		ExactMatchWeight:  0.6,
		PrefixMatchWeight: 0.2,
		SamePageWeight:    0.1,
		SoleFigureWeight:  0.1,
	}
}

// Mapper assigns reference mentions to figure records.
type Mapper struct {
	config Config
}

// NewMapper creates a mapper with default configuration.
func NewMapper() *Mapper {
	return NewMapperWithConfig(DefaultConfig())
}

// NewMapperWithConfig creates a mapper with custom configuration.
func NewMapperWithConfig(config Config) *Mapper {
	return &Mapper{config: config}
}

// Resolve assigns each mention to at most one figure. Figures may be the
// target of many mentions; a mention never targets more than one figure.
//
// Candidate edges exist only between a mention and figures of the same
// canonical type: a type mismatch is a hard gate, not a score penalty.
// Among qualifying edges the maximum weight wins; ties prefer a figure
// on the mention's page, then the lexically smallest identifier. A
// mention with no qualifying edge, or whose best edge scores below the
// threshold, is marked NotMatched. Records must be final before calling:
// Resolve mutates each mention exactly once and nothing else.
func (m *Mapper) Resolve(mentions []*model.ReferenceMention, figures []*model.FigureRecord) {
	typeCounts := make(map[model.CanonicalType]int)
	for _, f := range figures {
		typeCounts[f.Type]++
	}

	for _, ref := range mentions {
		best := m.bestCandidate(ref, figures, typeCounts)
		if best == nil {
			ref.NotMatched = true
			ref.MatchedFigureID = ""
			continue
		}
		ref.MatchedFigureID = best.FigureID
		ref.NotMatched = false
	}
}

// candidate pairs a figure with its edge weight for one mention.
type candidate struct {
	figure *model.FigureRecord
	weight float64
}

// bestCandidate returns the winning figure for a mention, or nil when it
// must stay unmatched.
func (m *Mapper) bestCandidate(ref *model.ReferenceMention, figures []*model.FigureRecord, typeCounts map[model.CanonicalType]int) *model.FigureRecord {
	if ref.Type == "" {
		return nil
	}

	var candidates []candidate
	for _, fig := range figures {
		if fig.Type != ref.Type {
			continue
		}
		w := m.edgeWeight(ref, fig, typeCounts[ref.Type])
		candidates = append(candidates, candidate{figure: fig, weight: w})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight > candidates[j].weight
		}
		iSame := candidates[i].figure.PageIndex == ref.PageIndex
		jSame := candidates[j].figure.PageIndex == ref.PageIndex
		if iSame != jSame {
			return iSame
		}
		return candidates[i].figure.FigureID < candidates[j].figure.FigureID
	})

	if candidates[0].weight < m.config.MatchThreshold {
		return nil
	}
	return candidates[0].figure
}

// edgeWeight computes the weighted feature sum for one mention/figure
// edge. The type gate has already been applied.
func (m *Mapper) edgeWeight(ref *model.ReferenceMention, fig *model.FigureRecord, figuresOfType int) float64 {
	w := 0.0
	if ref.DeclaredID != "" && fig.FigureID != "" {
		if ref.DeclaredID == fig.FigureID {
			w += m.config.ExactMatchWeight
		}
		if sharesLeadingComponent(ref.DeclaredID, fig.FigureID) {
			w += m.config.PrefixMatchWeight
		}
	}
	if ref.PageIndex == fig.PageIndex {
		w += m.config.SamePageWeight
	}
	if figuresOfType == 1 {
		w += m.config.SoleFigureWeight
	}
	return w
}

// sharesLeadingComponent reports whether two dotted identifiers agree on
// their first component and one is a prefix of the other. Exact equality
// also satisfies this; callers treat the exact feature separately.
func sharesLeadingComponent(a, b string) bool {
	af, _, _ := strings.Cut(a, ".")
	bf, _, _ := strings.Cut(b, ".")
	if af != bf {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
