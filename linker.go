package doclink

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/doclink/caption"
	"github.com/tsawler/doclink/grouping"
	"github.com/tsawler/doclink/mapping"
	"github.com/tsawler/doclink/model"
	"github.com/tsawler/doclink/refs"
)

// PageInput is the per-page material the linker consumes: OCR text
// blocks and layout-element detections, both produced upstream and never
// mutated here.
type PageInput struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Blocks is the page's OCR output. Duplicate or near-duplicate
	// blocks are tolerated.
	Blocks []model.TextBlock `json:"blocks"`

	// Elements is the page's layout detections.
	Elements []model.LayoutElement `json:"elements"`
}

// DocumentInput is a complete document ready for linking.
type DocumentInput struct {
	Metadata model.Metadata `json:"metadata"`
	Pages    []PageInput    `json:"pages"`
}

// Linker links in-text references to the figures, tables, equations, and
// algorithms they denote. Configuration methods return a modified copy,
// so a Linker can be stored and reused:
//
//	base := doclink.New(input).Parallelism(4)
//	doc, warnings, err := base.MatchThreshold(0.6).Process(ctx)
type Linker struct {
	input   DocumentInput
	options LinkOptions
}

// New creates a Linker for a document with default options.
func New(input DocumentInput) *Linker {
	return &Linker{
		input:   input,
		options: defaultOptions(),
	}
}

// clone creates a copy of the Linker with deep-copied options. The input
// is shared: it is read-only throughout processing.
func (l *Linker) clone() *Linker {
	return &Linker{
		input:   l.input,
		options: l.options.clone(),
	}
}

// Parallelism sets the maximum number of pages processed concurrently
// during the page-local stages. Values below 1 are treated as 1.
func (l *Linker) Parallelism(n int) *Linker {
	newL := l.clone()
	if n < 1 {
		n = 1
	}
	newL.options.parallelism = n
	return newL
}

// MatchThreshold sets the minimum edge weight for accepting a
// reference-to-figure match.
func (l *Linker) MatchThreshold(t float64) *Linker {
	newL := l.clone()
	newL.options.mapping.MatchThreshold = t
	return newL
}

// CaptionConfig replaces the caption locator configuration.
func (l *Linker) CaptionConfig(config caption.Config) *Linker {
	newL := l.clone()
	newL.options.caption = config
	return newL
}

// GroupingConfig replaces the element grouper configuration.
func (l *Linker) GroupingConfig(config grouping.Config) *Linker {
	newL := l.clone()
	newL.options.grouping = config
	return newL
}

// ReferenceConfig replaces the reference extractor configuration.
func (l *Linker) ReferenceConfig(config refs.Config) *Linker {
	newL := l.clone()
	newL.options.refs = config
	return newL
}

// MappingConfig replaces the structure mapper configuration.
func (l *Linker) MappingConfig(config mapping.Config) *Linker {
	newL := l.clone()
	newL.options.mapping = config
	return newL
}

// Keywords replaces the keyword synonym table used for caption and
// reference recognition. A nil table restores the default.
func (l *Linker) Keywords(table caption.KeywordTable) *Linker {
	newL := l.clone()
	if table == nil {
		newL.options.keywords = nil
		return newL
	}
	newL.options.keywords = table.Clone()
	return newL
}

// WithClassifier attaches an upstream span classifier whose per-span
// probability is folded into reference confidence. Without one the
// pattern-match baseline stands alone.
func (l *Linker) WithClassifier(c refs.SpanClassifier) *Linker {
	newL := l.clone()
	newL.options.classifier = c
	return newL
}

// pageResult is the outcome of the page-local stages for one page.
type pageResult struct {
	blocks    []model.TextBlock
	records   []*model.FigureRecord
	leftovers []grouping.Element
	mentions  []*model.ReferenceMention
	warnings  []Warning
}

// Process runs the full linking pipeline and returns the document
// aggregate, any warnings accumulated, and an error.
//
// The caption-locating and reference-extracting stages are page-local
// and run concurrently across pages. Identifier merging, proximity
// folding, fallback numbering, and reference resolution are
// document-global and run sequentially after all pages complete.
//
// The only fatal condition is a structural invariant violation: two
// distinct records sharing a figure_id/type pair after grouping, which
// surfaces as grouping.ErrDuplicateFigureID. Everything else degrades to
// warnings and statistics. On error the document is nil; partial results
// are not meaningful.
func (l *Linker) Process(ctx context.Context) (*model.Document, []Warning, error) {
	opts := l.options
	locator := caption.NewLocatorWithConfig(opts.caption, opts.keywords)
	extractor := refs.NewExtractorWithConfig(opts.refs, opts.keywords, opts.classifier)
	grouper := grouping.NewGrouperWithConfig(opts.grouping, opts.keywords)

	// Element IDs are document-wide: each page's elements start at the
	// running total of all prior pages.
	elementBase := make([]int, len(l.input.Pages))
	total := 0
	for i, p := range l.input.Pages {
		elementBase[i] = total
		total += len(p.Elements)
	}

	results := make([]pageResult, len(l.input.Pages))
	g, gctx := errgroup.WithContext(ctx)
	limit := opts.parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i := range l.input.Pages {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processPage(i, elementBase[i], l.input.Pages[i], locator, extractor, grouper)
			return nil
		})
	}
	// Hard barrier: everything below reads across pages.
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	var records []*model.FigureRecord
	var leftovers []grouping.Element
	var mentions []*model.ReferenceMention
	for i := range results {
		warnings = append(warnings, results[i].warnings...)
		records = append(records, results[i].records...)
		leftovers = append(leftovers, results[i].leftovers...)
		mentions = append(mentions, results[i].mentions...)
	}

	records = grouper.MergeIdentifiers(records)
	records, _ = grouper.FoldProximate(records, leftovers)
	if err := grouper.Validate(records); err != nil {
		return nil, warnings, fmt.Errorf("grouping: %w", err)
	}

	warnings = append(warnings, assignFallbackIDs(records)...)
	assignPageSequences(records)

	mapping.NewMapperWithConfig(opts.mapping).Resolve(mentions, records)

	doc := l.assemble(records, results)
	return doc, warnings, nil
}

// processPage runs the page-local stages: caption location for
// figure-like elements, page-local caption attachment, and reference
// extraction over body text.
func processPage(pageIdx, elemBase int, page PageInput, locator *caption.Locator, extractor *refs.Extractor, grouper *grouping.Grouper) pageResult {
	var res pageResult

	// Blocks without usable geometry are skipped, not fatal.
	for i, block := range page.Blocks {
		if !block.BBox.IsValid() {
			res.warnings = append(res.warnings, Warning{
				Page: pageIdx,
				Kind: WarnMalformedInput,
				Message: fmt.Sprintf("text block %d has invalid geometry (%.1f x %.1f), skipped",
					i, block.BBox.Width, block.BBox.Height),
			})
			continue
		}
		block.PageIndex = pageIdx
		res.blocks = append(res.blocks, block)
	}

	// Reference extraction must not see a figure's own caption or the
	// page title, or the caption would count as a mention of itself.
	excluded := make([]bool, len(res.blocks))
	for _, elem := range page.Elements {
		if elem.Type != model.ElementCaption && elem.Type != model.ElementTitle {
			continue
		}
		for bi, block := range res.blocks {
			if elem.BBox.Contains(block.BBox.Center()) {
				excluded[bi] = true
			}
		}
	}

	for j, elem := range page.Elements {
		if !elem.BBox.IsValid() {
			res.warnings = append(res.warnings, Warning{
				Page: pageIdx,
				Kind: WarnMalformedInput,
				Message: fmt.Sprintf("layout element %d (%s) has invalid geometry, skipped",
					j, elem.Type),
			})
			continue
		}
		elem.PageIndex = pageIdx
		docID := elemBase + j

		switch {
		case elem.Type.FigureLike():
			located := locator.Locate(docID, elem, res.blocks)
			res.records = append(res.records, located.Record)
			if located.CaptionBlock >= 0 {
				excluded[located.CaptionBlock] = true
			}
		case elem.Type == model.ElementCaption:
			res.leftovers = append(res.leftovers, grouping.Element{ID: docID, Elem: elem})
		}
		// Text, Title, and unrecognized types play no part in grouping.
	}

	// Page-local pattern strategy: caption elements the locator missed
	// attach to the nearest unlabeled record, searched with the same
	// line-height-derived distance the locator used.
	res.leftovers = grouper.AttachCaptions(res.records, res.leftovers, locator.SearchDistance(res.blocks))

	body := make([]model.TextBlock, 0, len(res.blocks))
	for bi, block := range res.blocks {
		if !excluded[bi] {
			body = append(body, block)
		}
	}
	res.mentions = extractor.Extract(body)

	return res
}

// assemble composes the final document from the global records and the
// per-page results.
func (l *Linker) assemble(records []*model.FigureRecord, results []pageResult) *model.Document {
	grouping.SortRecords(records)

	perPage := make(map[int]int)
	for _, r := range records {
		perPage[r.PageIndex]++
	}

	doc := model.NewDocument()
	doc.Metadata = l.input.Metadata
	doc.Figures = records
	for i := range results {
		mentions := results[i].mentions
		if mentions == nil {
			mentions = []*model.ReferenceMention{}
		}
		doc.AddPage(&model.Page{
			Size:        model.PageSize{Width: l.input.Pages[i].Width, Height: l.input.Pages[i].Height},
			Blocks:      results[i].blocks,
			References:  mentions,
			FigureCount: perPage[i],
		})
	}
	computeStatistics(doc)
	return doc
}
