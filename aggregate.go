package doclink

import (
	"fmt"

	"github.com/tsawler/doclink/grouping"
	"github.com/tsawler/doclink/model"
)

// assignFallbackIDs numbers records that never acquired an identifier
// from a caption. Identifiers take the form "<type>_unlabeled_<n>" with
// one counter per canonical type across the whole document, assigned in
// page order and top-to-bottom within a page. Must run after grouping
// completes; the counters are single-writer by construction. Each
// assignment is reported as a warning so the shortfall stays auditable.
func assignFallbackIDs(records []*model.FigureRecord) []Warning {
	grouping.SortRecords(records)

	var warnings []Warning
	counters := make(map[model.CanonicalType]int)
	for _, r := range records {
		if r.FigureID != "" {
			continue
		}
		counters[r.Type]++
		r.FigureID = fmt.Sprintf("%s_unlabeled_%d", r.Type, counters[r.Type])
		warnings = append(warnings, Warning{
			Page:    r.PageIndex,
			Kind:    WarnNoCaption,
			Message: fmt.Sprintf("no caption found for %s, assigned %q", r.Type, r.FigureID),
		})
	}
	return warnings
}

// assignPageSequences fills in each record's position among same-type
// records on its page (1-based) and the page's total for that type.
func assignPageSequences(records []*model.FigureRecord) {
	grouping.SortRecords(records)

	type pageType struct {
		page int
		ct   model.CanonicalType
	}
	totals := make(map[pageType]int)
	for _, r := range records {
		totals[pageType{r.PageIndex, r.Type}]++
	}
	seen := make(map[pageType]int)
	for _, r := range records {
		key := pageType{r.PageIndex, r.Type}
		seen[key]++
		r.SequenceInPage = seen[key]
		r.TotalInPage = totals[key]
	}
}

// computeStatistics fills in the document's mapping and per-type
// statistics from its figures and references.
func computeStatistics(doc *model.Document) {
	stats := model.MappingStatistics{}
	byType := make(model.TypeStatistics)

	typeStats := func(ct model.CanonicalType) *model.TypeStats {
		ts := byType[ct]
		if ts == nil {
			ts = &model.TypeStats{}
			byType[ct] = ts
		}
		return ts
	}

	for _, f := range doc.Figures {
		typeStats(f.Type).Figures++
	}
	for _, page := range doc.Pages {
		for _, ref := range page.References {
			stats.TotalReferences++
			if ref.Type != "" {
				typeStats(ref.Type).References++
			}
			if ref.Resolved() {
				stats.MatchedReferences++
				if ref.Type != "" {
					typeStats(ref.Type).Matched++
				}
			}
		}
	}

	if stats.TotalReferences > 0 {
		stats.MatchRate = float64(stats.MatchedReferences) / float64(stats.TotalReferences)
	}
	for _, ts := range byType {
		if ts.References > 0 {
			ts.MatchRate = float64(ts.Matched) / float64(ts.References)
		}
	}

	doc.MappingStats = stats
	doc.TypeStats = byType
}
