package model

import "time"

// Document represents a fully linked document: per-page content plus the
// document-wide figure records and matching statistics.
type Document struct {
	Metadata     Metadata          `json:"metadata"`
	Pages        []*Page           `json:"pages"`
	Figures      []*FigureRecord   `json:"figures"`
	MappingStats MappingStatistics `json:"mapping_statistics"`
	TypeStats    TypeStatistics    `json:"type_statistics"`
}

// Metadata contains document-level information
type Metadata struct {
	Title        string            `json:"title,omitempty"`
	Author       string            `json:"author,omitempty"`
	Subject      string            `json:"subject,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	Creator      string            `json:"creator,omitempty"`
	Producer     string            `json:"producer,omitempty"`
	CreationDate time.Time         `json:"creation_date,omitempty"`
	ModDate      time.Time         `json:"modification_date,omitempty"`
	Custom       map[string]string `json:"custom,omitempty"`
}

// PageSize holds page dimensions in page coordinate units.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Page represents a single processed page
type Page struct {
	Index       int                 `json:"index"` // 0-indexed
	Size        PageSize            `json:"page_size"`
	Blocks      []TextBlock         `json:"blocks"`
	References  []*ReferenceMention `json:"references"`
	FigureCount int                 `json:"figure_count"`
}

// MappingStatistics summarizes reference resolution for a document.
type MappingStatistics struct {
	TotalReferences   int     `json:"total_references"`
	MatchedReferences int     `json:"matched_references"`
	MatchRate         float64 `json:"match_rate"`
}

// TypeStats holds per-canonical-type counts and match rate.
type TypeStats struct {
	Figures    int     `json:"figures"`
	References int     `json:"references"`
	Matched    int     `json:"matched"`
	MatchRate  float64 `json:"match_rate"`
}

// TypeStatistics maps each canonical type to its statistics.
type TypeStatistics map[CanonicalType]*TypeStats

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Pages:     make([]*Page, 0),
		Figures:   make([]*FigureRecord, 0),
		TypeStats: make(TypeStatistics),
	}
}

// AddPage appends a page to the document and assigns its index.
func (d *Document) AddPage(page *Page) {
	page.Index = len(d.Pages)
	d.Pages = append(d.Pages, page)
}

// GetPage returns a page by index (0-indexed), or nil if out of range.
func (d *Document) GetPage(index int) *Page {
	if index < 0 || index >= len(d.Pages) {
		return nil
	}
	return d.Pages[index]
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// FigureByID returns the figure record with the given identifier, or nil.
func (d *Document) FigureByID(id string) *FigureRecord {
	for _, f := range d.Figures {
		if f.FigureID == id {
			return f
		}
	}
	return nil
}

// FiguresOfType returns all figure records of a canonical type.
func (d *Document) FiguresOfType(t CanonicalType) []*FigureRecord {
	var figures []*FigureRecord
	for _, f := range d.Figures {
		if f.Type == t {
			figures = append(figures, f)
		}
	}
	return figures
}

// AllReferences returns every reference mention across all pages.
func (d *Document) AllReferences() []*ReferenceMention {
	var refs []*ReferenceMention
	for _, page := range d.Pages {
		refs = append(refs, page.References...)
	}
	return refs
}

// UnmatchedReferences returns the mentions that resolution left unmatched.
func (d *Document) UnmatchedReferences() []*ReferenceMention {
	var refs []*ReferenceMention
	for _, ref := range d.AllReferences() {
		if ref.NotMatched {
			refs = append(refs, ref)
		}
	}
	return refs
}
