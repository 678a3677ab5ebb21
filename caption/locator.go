package caption

import (
	"sort"

	"github.com/tsawler/doclink/model"
)

// Config holds configuration options for the caption locator.
type Config struct {
	// SearchDistanceFactor scales the median line height of the page to
	// obtain the caption search distance.
	SearchDistanceFactor float64

	// FallbackSearchDistance is used when a page has no text blocks to
	// derive a line height from.
	FallbackSearchDistance float64

	// BandTolerance widens the horizontal band used when searching for
	// side captions, in multiples of the element height.
	BandTolerance float64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SearchDistanceFactor:   1.5,
		FallbackSearchDistance: 30,
		BandTolerance:          0.25,
	}
}

// Locator finds the caption text block for a figure-like layout element
// and reads the declared identifier and canonical type from it.
type Locator struct {
	config  Config
	pattern *Pattern
}

// NewLocator creates a locator with default configuration and keywords.
func NewLocator() *Locator {
	return NewLocatorWithConfig(DefaultConfig(), nil)
}

// NewLocatorWithConfig creates a locator with custom configuration.
// A nil table uses DefaultKeywordTable.
func NewLocatorWithConfig(config Config, table KeywordTable) *Locator {
	return &Locator{
		config:  config,
		pattern: NewPattern(table),
	}
}

// Pattern returns the caption pattern the locator matches with.
func (l *Locator) Pattern() *Pattern {
	return l.pattern
}

// Result is the outcome of locating a caption for one layout element.
type Result struct {
	// Record is the figure record for the element. FigureID is empty when
	// no caption was found; the record is then subject to fallback
	// numbering during aggregation.
	Record *model.FigureRecord

	// CaptionBlock is the index into the searched blocks of the text
	// block used as the caption, or -1 when none was found.
	CaptionBlock int
}

// Locate builds a figure record for a figure-like layout element by
// searching nearby text blocks for a caption.
//
// The neighborhood is searched in priority order: directly below the
// element, then above it, then the same horizontal band to the right.
// Within one priority tier the candidate with the smallest vertical gap
// wins, then the smallest horizontal offset. When a caption is found its
// keyword determines the record's canonical type, overriding the
// detector's label: caption text is more reliable than a visual
// classifier. Without a caption the detector's label stands and FigureID
// stays empty.
func (l *Locator) Locate(elemID int, elem model.LayoutElement, blocks []model.TextBlock) Result {
	record := &model.FigureRecord{
		BBox:       elem.BBox,
		PageIndex:  elem.PageIndex,
		Confidence: elem.Confidence,
	}
	if ct, ok := elem.Type.Canonical(); ok {
		record.Type = ct
	}
	record.AddMember(elemID)

	dist := l.SearchDistance(blocks)
	blockIdx, match := l.findCaption(elem, blocks, dist)
	if blockIdx < 0 {
		return Result{Record: record, CaptionBlock: -1}
	}

	// Single override point: the caption keyword is authoritative for
	// both identifier and type.
	record.FigureID = match.ID
	record.Type = match.Type
	record.Title = Normalize(blocks[blockIdx].Text)

	return Result{Record: record, CaptionBlock: blockIdx}
}

// SearchDistance derives the caption search distance from the page's
// median line height. The grouper's pattern strategy uses the same
// distance, so caption attachment scales with the page's typography
// whether the caption arrived as a text block or a layout element.
func (l *Locator) SearchDistance(blocks []model.TextBlock) float64 {
	h := medianLineHeight(blocks)
	if h <= 0 {
		return l.config.FallbackSearchDistance
	}
	return h * l.config.SearchDistanceFactor
}

// candidate is one caption-capable block with its tie-break metrics.
type candidate struct {
	index  int
	match  Match
	gap    float64
	offset float64
}

// findCaption searches the three neighborhood tiers in priority order and
// returns the winning block index, or -1.
func (l *Locator) findCaption(elem model.LayoutElement, blocks []model.TextBlock, dist float64) (int, Match) {
	tiers := []func(model.BBox, model.BBox, float64) bool{
		l.isBelow,
		l.isAbove,
		l.isBeside,
	}

	for _, within := range tiers {
		var candidates []candidate
		for i, block := range blocks {
			if !within(elem.BBox, block.BBox, dist) {
				continue
			}
			m, ok := l.pattern.MatchesCaption(block.Text)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{
				index:  i,
				match:  m,
				gap:    elem.BBox.VerticalGap(block.BBox),
				offset: elem.BBox.HorizontalOffset(block.BBox),
			})
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].gap != candidates[j].gap {
				return candidates[i].gap < candidates[j].gap
			}
			if candidates[i].offset != candidates[j].offset {
				return candidates[i].offset < candidates[j].offset
			}
			return candidates[i].index < candidates[j].index
		})
		return candidates[0].index, candidates[0].match
	}

	return -1, Match{}
}

// isBelow reports whether the block sits directly below the element
// within the search distance.
func (l *Locator) isBelow(elem, block model.BBox, dist float64) bool {
	if block.Center().Y < elem.Bottom() {
		return false
	}
	return elem.HorizontalOverlaps(block) && elem.VerticalGap(block) <= dist
}

// isAbove reports whether the block sits directly above the element
// within the search distance.
func (l *Locator) isAbove(elem, block model.BBox, dist float64) bool {
	if block.Center().Y > elem.Top() {
		return false
	}
	return elem.HorizontalOverlaps(block) && elem.VerticalGap(block) <= dist
}

// isBeside reports whether the block sits to the right of the element in
// the same horizontal band. Equation numbers are commonly set this way.
func (l *Locator) isBeside(elem, block model.BBox, dist float64) bool {
	if block.Left() < elem.Right() {
		return false
	}
	band := elem.Expand(elem.Height * l.config.BandTolerance)
	return band.VerticalOverlaps(block) && block.Left()-elem.Right() <= dist
}

// medianLineHeight returns the median height of the page's text blocks.
func medianLineHeight(blocks []model.TextBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	heights := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		if b.BBox.Height > 0 {
			heights = append(heights, b.BBox.Height)
		}
	}
	if len(heights) == 0 {
		return 0
	}
	sort.Float64s(heights)
	mid := len(heights) / 2
	if len(heights)%2 == 1 {
		return heights[mid]
	}
	return (heights[mid-1] + heights[mid]) / 2
}
