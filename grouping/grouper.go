// Package grouping merges scattered layout elements into single logical
// figures. Detectors report a figure as several boxes (the image region,
// its caption, sub-panels); the grouper folds them into one
// model.FigureRecord using three strategies: shared identifiers, caption
// pattern matching, and spatial proximity.
package grouping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tsawler/doclink/caption"
	"github.com/tsawler/doclink/model"
)

// ErrDuplicateFigureID reports two figure records sharing an identifier
// and canonical type after grouping finished. This is a grouping defect:
// the document output would be inconsistent, so processing aborts.
var ErrDuplicateFigureID = errors.New("duplicate figure identifier after grouping")

// Config holds configuration options for the grouper.
type Config struct {
	// CaptionSearchDistance bounds how far a stray caption box may sit
	// from the element it labels. The pipeline overrides this per page
	// from the page's line height.
	CaptionSearchDistance float64

	// ProximityMergeDistance bounds how far an unattached sub-element may
	// sit from a record to be folded in by the proximity strategy.
	ProximityMergeDistance float64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CaptionSearchDistance:  30,
		ProximityMergeDistance: 20,
	}
}

// Element is a layout element with its document-wide element ID, used for
// member bookkeeping on figure records.
type Element struct {
	ID   int
	Elem model.LayoutElement
}

// Grouper merges figure records and unattached layout elements.
// All merge operations are idempotent: regrouping already-grouped records
// produces an identical set.
type Grouper struct {
	config  Config
	pattern *caption.Pattern
}

// NewGrouper creates a grouper with default configuration and keywords.
func NewGrouper() *Grouper {
	return NewGrouperWithConfig(DefaultConfig(), nil)
}

// NewGrouperWithConfig creates a grouper with custom configuration.
// A nil table uses caption.DefaultKeywordTable.
func NewGrouperWithConfig(config Config, table caption.KeywordTable) *Grouper {
	return &Grouper{
		config:  config,
		pattern: caption.NewPattern(table),
	}
}

// AttachCaptions applies the pattern-match strategy on one page: an
// unattached caption element whose text declares an identifier is
// attached to the nearest figure-like record that has no identifier yet,
// when that record is within searchDistance. Ambiguity between equally
// qualifying records is resolved by bbox-center distance. It returns the
// leftovers that were not consumed.
//
// Pass searchDistance <= 0 to use the configured default.
func (g *Grouper) AttachCaptions(records []*model.FigureRecord, leftovers []Element, searchDistance float64) []Element {
	if searchDistance <= 0 {
		searchDistance = g.config.CaptionSearchDistance
	}

	var remaining []Element
	for _, lo := range leftovers {
		if lo.Elem.Type != model.ElementCaption {
			remaining = append(remaining, lo)
			continue
		}
		m, ok := g.pattern.MatchesCaption(lo.Elem.RawText)
		if !ok {
			remaining = append(remaining, lo)
			continue
		}

		target := nearestUnlabeled(records, lo.Elem.BBox, searchDistance)
		if target == nil {
			remaining = append(remaining, lo)
			continue
		}
		if target.HasMember(lo.ID) {
			// Already attached on a previous pass.
			continue
		}

		target.FigureID = m.ID
		target.Type = m.Type
		target.Title = caption.Normalize(lo.Elem.RawText)
		target.BBox = target.BBox.Union(lo.Elem.BBox)
		target.AddMember(lo.ID)
		target.GroupingMethod = target.GroupingMethod.Combine(model.GroupingPattern)
	}
	return remaining
}

// nearestUnlabeled finds the closest record lacking a figure identifier
// within dist of the box, by bbox-center distance.
func nearestUnlabeled(records []*model.FigureRecord, box model.BBox, dist float64) *model.FigureRecord {
	var best *model.FigureRecord
	bestDist := 0.0
	for _, rec := range records {
		if rec.FigureID != "" {
			continue
		}
		if rec.BBox.Distance(box) > dist {
			continue
		}
		d := rec.BBox.Center().Distance(box.Center())
		if best == nil || d < bestDist {
			best = rec
			bestDist = d
		}
	}
	return best
}

// MergeIdentifiers applies the identifier-match strategy across the whole
// document: records sharing a non-empty identifier and canonical type are
// merged into one, with bounding boxes combined to the minimal enclosing
// rectangle and member sets unioned. The survivor is the earliest record
// in page-then-top-to-bottom order.
func (g *Grouper) MergeIdentifiers(records []*model.FigureRecord) []*model.FigureRecord {
	ordered := make([]*model.FigureRecord, len(records))
	copy(ordered, records)
	sortRecords(ordered)

	byKey := make(map[string]*model.FigureRecord)
	out := make([]*model.FigureRecord, 0, len(ordered))
	for _, rec := range ordered {
		if rec.FigureID == "" {
			out = append(out, rec)
			continue
		}
		key := rec.Key()
		if prev, ok := byKey[key]; ok {
			prev.Absorb(rec)
			prev.GroupingMethod = prev.GroupingMethod.Combine(model.GroupingIdentifier)
			continue
		}
		byKey[key] = rec
		out = append(out, rec)
	}
	return out
}

// FoldProximate applies the proximity-fallback strategy: remaining
// unattached elements and unlabeled records are folded into a nearby
// record of compatible type, without changing the record's identifier or
// type. Returns the surviving records and the leftovers still unattached.
func (g *Grouper) FoldProximate(records []*model.FigureRecord, leftovers []Element) ([]*model.FigureRecord, []Element) {
	// Unlabeled records (sub-panels detected as their own figure-like
	// element) first: they merge into a labeled record of the same
	// canonical type when overlapping or within range.
	out := make([]*model.FigureRecord, 0, len(records))
	for _, rec := range records {
		if rec.FigureID != "" {
			out = append(out, rec)
			continue
		}
		host := g.findHost(records, rec)
		if host == nil {
			out = append(out, rec)
			continue
		}
		host.Absorb(rec)
		host.GroupingMethod = host.GroupingMethod.Combine(model.GroupingProximity)
	}

	// Then stray caption boxes and similar metadata elements, folded as
	// additional members.
	var remaining []Element
	for _, lo := range leftovers {
		if lo.Elem.Type != model.ElementCaption {
			remaining = append(remaining, lo)
			continue
		}
		host := nearestRecord(out, lo.Elem.BBox, g.config.ProximityMergeDistance, lo.Elem.PageIndex)
		if host == nil {
			remaining = append(remaining, lo)
			continue
		}
		if !host.HasMember(lo.ID) {
			host.BBox = host.BBox.Union(lo.Elem.BBox)
			host.AddMember(lo.ID)
			host.GroupingMethod = host.GroupingMethod.Combine(model.GroupingProximity)
		}
	}
	return out, remaining
}

// findHost returns a labeled record the orphan may merge into: same page,
// same canonical type, overlapping or within the proximity distance.
// A table never merges into a figure; type compatibility is exact.
func (g *Grouper) findHost(records []*model.FigureRecord, orphan *model.FigureRecord) *model.FigureRecord {
	var best *model.FigureRecord
	bestDist := 0.0
	for _, rec := range records {
		if rec == orphan || rec.FigureID == "" {
			continue
		}
		if rec.PageIndex != orphan.PageIndex || rec.Type != orphan.Type {
			continue
		}
		d := rec.BBox.Distance(orphan.BBox)
		if d > g.config.ProximityMergeDistance {
			continue
		}
		if best == nil || d < bestDist {
			best = rec
			bestDist = d
		}
	}
	return best
}

// nearestRecord finds the closest record on the page within dist.
func nearestRecord(records []*model.FigureRecord, box model.BBox, dist float64, pageIdx int) *model.FigureRecord {
	var best *model.FigureRecord
	bestDist := 0.0
	for _, rec := range records {
		if rec.PageIndex != pageIdx {
			continue
		}
		d := rec.BBox.Distance(box)
		if d > dist {
			continue
		}
		if best == nil || d < bestDist {
			best = rec
			bestDist = d
		}
	}
	return best
}

// Validate enforces the document invariant: no two records may share a
// non-empty identifier and canonical type once grouping has finished.
func (g *Grouper) Validate(records []*model.FigureRecord) error {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.FigureID == "" {
			continue
		}
		key := rec.Key()
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateFigureID, key)
		}
		seen[key] = true
	}
	return nil
}

// sortRecords orders records by page, then top-to-bottom, then
// left-to-right. This is the document's canonical record order.
func sortRecords(records []*model.FigureRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PageIndex != records[j].PageIndex {
			return records[i].PageIndex < records[j].PageIndex
		}
		if records[i].BBox.Y != records[j].BBox.Y {
			return records[i].BBox.Y < records[j].BBox.Y
		}
		return records[i].BBox.X < records[j].BBox.X
	})
}

// SortRecords exposes the canonical record ordering for aggregation.
func SortRecords(records []*model.FigureRecord) {
	sortRecords(records)
}
