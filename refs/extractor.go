// Package refs extracts reference mentions from body text: in-text
// phrases such as "Fig. 2.6", "Table 3", or "(1.4)" that point at a
// figure-like element elsewhere in the document.
package refs

import (
	"regexp"
	"sort"

	"github.com/tsawler/doclink/caption"
	"github.com/tsawler/doclink/model"
)

// SpanClassifier scores candidate spans. An upstream model may supply,
// per span, the probability that it denotes a reference mention; the
// extractor multiplies that probability into the pattern-match
// confidence. The classifier is optional: a nil classifier behaves as a
// constant factor of 1.0.
type SpanClassifier interface {
	// Score returns a probability in [0, 1] that the span on the given
	// page is a reference mention.
	Score(span string, pageIdx int) float64
}

// Config holds configuration options for the reference extractor.
type Config struct {
	// BaselineConfidence is the confidence assigned to a bare pattern
	// match, before the span classifier factor.
	BaselineConfidence float64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaselineConfidence: 0.7,
	}
}

// parenRe matches a bare parenthesized identifier: "(1)" or "(1.4)".
// Only single integers and dotted pairs qualify; longer dotted runs are
// section numbers, not equation numbers.
var parenRe = regexp.MustCompile(`\((\d+(?:\.\d+)?)\)`)

// runRe continues a keyword match with further identifiers joined by a
// comma, "and", "&", or a dash, as in "Figs. 3 and 4" or "Tables 2, 3".
// It is anchored so continuations chain directly off the previous match.
var runRe = regexp.MustCompile(`^(?i)\s*(?:,|and\b|&|[-–])\s*(\(?(\d+(?:\s*\.\s*\d+)*)\)?)`)

// Extractor scans text blocks for reference mentions.
type Extractor struct {
	config     Config
	pattern    *caption.Pattern
	classifier SpanClassifier
}

// NewExtractor creates an extractor with default configuration and
// keywords and no span classifier.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig(), nil, nil)
}

// NewExtractorWithConfig creates an extractor with custom configuration.
// A nil table uses caption.DefaultKeywordTable; a nil classifier degrades
// to pattern confidence alone.
func NewExtractorWithConfig(config Config, table caption.KeywordTable, classifier SpanClassifier) *Extractor {
	return &Extractor{
		config:     config,
		pattern:    caption.NewPattern(table),
		classifier: classifier,
	}
}

// span is one candidate match inside a block's text.
type span struct {
	start, end int
	text       string
	refType    model.CanonicalType
	id         string
}

// Extract returns one reference mention per non-overlapping match in the
// given blocks. Blocks classified as captions or titles must be filtered
// out by the caller: a figure's own caption is not a mention of itself.
func (e *Extractor) Extract(blocks []model.TextBlock) []*model.ReferenceMention {
	var mentions []*model.ReferenceMention
	for _, block := range blocks {
		mentions = append(mentions, e.extractBlock(block)...)
	}
	return mentions
}

func (e *Extractor) extractBlock(block model.TextBlock) []*model.ReferenceMention {
	text := caption.Normalize(block.Text)
	if text == "" {
		return nil
	}

	var spans []span

	// Primary pattern: keyword + identifier.
	for _, m := range e.pattern.FindAll(text) {
		spans = append(spans, span{
			start:   m.Start,
			end:     m.End,
			text:    m.Text,
			refType: m.Type,
			id:      m.ID,
		})

		// A keyword can introduce a run of identifiers ("Figs. 3 and 4",
		// "Tables 2, 3"). Each continuation becomes its own mention of
		// the keyword's type.
		pos := m.End
		for {
			r := runRe.FindStringSubmatchIndex(text[pos:])
			if r == nil {
				break
			}
			spans = append(spans, span{
				start:   pos + r[2],
				end:     pos + r[3],
				text:    text[pos+r[2] : pos+r[3]],
				refType: m.Type,
				id:      caption.NormalizeID(text[pos+r[4] : pos+r[5]]),
			})
			pos += r[1]
		}
	}

	// Secondary pattern: bare parenthesized identifiers are equation
	// references when no keyword claims them. Overlap resolution below
	// discards any that a keyword match already covers.
	for _, m := range parenRe.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, span{
			start:   m[0],
			end:     m[1],
			text:    text[m[0]:m[1]],
			refType: model.TypeEquation,
			id:      caption.NormalizeID(text[m[2]:m[3]]),
		})
	}

	selected := resolveOverlaps(spans)

	mentions := make([]*model.ReferenceMention, 0, len(selected))
	for _, s := range selected {
		confidence := e.config.BaselineConfidence
		if e.classifier != nil {
			confidence *= e.classifier.Score(s.text, block.PageIndex)
		}
		mentions = append(mentions, &model.ReferenceMention{
			Text:       s.text,
			BBox:       estimateBBox(block.BBox, text, s.start, s.end),
			PageIndex:  block.PageIndex,
			Type:       s.refType,
			DeclaredID: s.id,
			Confidence: confidence,
		})
	}
	return mentions
}

// resolveOverlaps keeps the longest span among overlapping candidates and
// returns the survivors in text order.
func resolveOverlaps(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}

	// Longest first; ties go to the earlier span.
	sort.SliceStable(spans, func(i, j int) bool {
		li, lj := spans[i].end-spans[i].start, spans[j].end-spans[j].start
		if li != lj {
			return li > lj
		}
		return spans[i].start < spans[j].start
	})

	var selected []span
	for _, s := range spans {
		overlaps := false
		for _, kept := range selected {
			if s.start < kept.end && kept.start < s.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			selected = append(selected, s)
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].start < selected[j].start
	})
	return selected
}

// estimateBBox approximates the mention's box by proportional character
// position within the source block. OCR blocks are horizontal lines, so
// a linear estimate is close enough for spatial scoring.
func estimateBBox(blockBBox model.BBox, text string, start, end int) model.BBox {
	total := len(text)
	if total == 0 {
		return blockBBox
	}
	charWidth := blockBBox.Width / float64(total)
	return model.BBox{
		X:      blockBBox.X + float64(start)*charWidth,
		Y:      blockBBox.Y,
		Width:  float64(end-start) * charWidth,
		Height: blockBBox.Height,
	}
}

