package caption

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/doclink/model"
)

// KeywordTable maps caption/reference keywords to their canonical type.
// The table is configuration: adding a synonym extends both caption
// location and reference extraction without code change.
type KeywordTable map[string]model.CanonicalType

// DefaultKeywordTable returns the built-in keyword synonyms.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		"fig":        model.TypeFigure,
		"figs":       model.TypeFigure,
		"figure":     model.TypeFigure,
		"figures":    model.TypeFigure,
		"picture":    model.TypeFigure,
		"image":      model.TypeFigure,
		"chart":      model.TypeFigure,
		"graph":      model.TypeFigure,
		"diagram":    model.TypeFigure,
		"tab":        model.TypeTable,
		"tabs":       model.TypeTable,
		"table":      model.TypeTable,
		"tables":     model.TypeTable,
		"eq":         model.TypeEquation,
		"eqs":        model.TypeEquation,
		"equation":   model.TypeEquation,
		"equations":  model.TypeEquation,
		"formula":    model.TypeEquation,
		"alg":        model.TypeAlgorithm,
		"algorithm":  model.TypeAlgorithm,
		"algorithms": model.TypeAlgorithm,
		"ex":         model.TypeExample,
		"example":    model.TypeExample,
		"examples":   model.TypeExample,
	}
}

// Clone returns a copy of the table safe to modify.
func (kt KeywordTable) Clone() KeywordTable {
	out := make(KeywordTable, len(kt))
	for k, v := range kt {
		out[k] = v
	}
	return out
}

// Match is one keyword+identifier occurrence found in text.
type Match struct {
	Keyword string              // matched keyword, lowercased
	Type    model.CanonicalType // canonical type of the keyword
	ID      string              // normalized identifier ("2.6")
	Start   int                 // byte offset of the match in the text
	End     int                 // byte offset past the end of the match
	Text    string              // the matched span as written
}

// idGrammar matches a dot-separated integer identifier, tolerating OCR
// whitespace around the dots ("2 . 6").
const idGrammar = `(\d+(?:\s*\.\s*\d+)*)`

// Pattern matches caption and reference phrases built from a keyword
// table: a keyword, an optional period, and a dot-separated numeric
// identifier ("Figure 2.6", "Tab. 3", "eq 1.4").
type Pattern struct {
	re    *regexp.Regexp
	table KeywordTable
}

// NewPattern compiles a pattern for the given keyword table.
func NewPattern(table KeywordTable) *Pattern {
	if table == nil {
		table = DefaultKeywordTable()
	}

	// Matching is case-insensitive, so lowercase the keys once here.
	// Lookups in FindAll lowercase the matched keyword to agree with
	// whatever casing the caller used in its table.
	lowered := make(KeywordTable, len(table))
	for k, v := range table {
		lowered[strings.ToLower(k)] = v
	}
	table = lowered

	// Longest keywords first so "figure" wins over "fig".
	keywords := make([]string, 0, len(table))
	for k := range table {
		keywords = append(keywords, regexp.QuoteMeta(k))
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})

	expr := `(?i)\b(` + strings.Join(keywords, "|") + `)\.?\s*\(?` + idGrammar + `\)?`
	return &Pattern{
		re:    regexp.MustCompile(expr),
		table: table,
	}
}

// Table returns the keyword table the pattern was built from.
func (p *Pattern) Table() KeywordTable {
	return p.table
}

// Match returns the first keyword+identifier occurrence in text.
func (p *Pattern) Match(text string) (Match, bool) {
	matches := p.FindAll(text)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// FindAll returns every keyword+identifier occurrence in text, in order.
// Text is NFKC-normalized before matching; offsets refer to the
// normalized form (see Normalize).
func (p *Pattern) FindAll(text string) []Match {
	text = Normalize(text)

	idx := p.re.FindAllStringSubmatchIndex(text, -1)
	if idx == nil {
		return nil
	}

	matches := make([]Match, 0, len(idx))
	for _, m := range idx {
		keyword := strings.ToLower(text[m[2]:m[3]])
		matches = append(matches, Match{
			Keyword: keyword,
			Type:    p.table[keyword],
			ID:      NormalizeID(text[m[4]:m[5]]),
			Start:   m[0],
			End:     m[1],
			Text:    text[m[0]:m[1]],
		})
	}
	return matches
}

// MatchesCaption reports whether text declares a caption: a keyword match
// starting within the first few characters of the block.
func (p *Pattern) MatchesCaption(text string) (Match, bool) {
	m, ok := p.Match(text)
	if !ok {
		return Match{}, false
	}
	// A caption declares its identifier up front; a match deep inside a
	// block is an in-text reference, not a caption.
	if m.Start > captionPrefixSlack {
		return Match{}, false
	}
	return m, true
}

// captionPrefixSlack allows leading OCR noise (quotes, bullets) before
// the caption keyword.
const captionPrefixSlack = 4

// Normalize applies NFKC normalization and trims surrounding whitespace.
// OCR output carries ligatures and fullwidth forms that would otherwise
// defeat pattern matching.
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFKC.String(text))
}

// NormalizeID canonicalizes a dot-separated numeric identifier: whitespace
// around dots is removed and leading zeros are stripped per component
// ("02 . 60" -> "2.60").
func NormalizeID(id string) string {
	parts := strings.Split(id, ".")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		trimmed := strings.TrimLeft(part, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		parts[i] = trimmed
	}
	return strings.Join(parts, ".")
}
