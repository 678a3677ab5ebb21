package model

import (
	"fmt"
	"sort"
	"strings"
)

// ElementType represents the type of a detected layout element
type ElementType int

const (
	ElementText ElementType = iota
	ElementFigure
	ElementTable
	ElementEquation
	ElementAlgorithm
	ElementCaption
	ElementTitle
)

func (et ElementType) String() string {
	switch et {
	case ElementFigure:
		return "Figure"
	case ElementTable:
		return "Table"
	case ElementEquation:
		return "Equation"
	case ElementAlgorithm:
		return "Algorithm"
	case ElementCaption:
		return "Caption"
	case ElementTitle:
		return "Title"
	default:
		return "Text"
	}
}

// FigureLike returns true for element types that can anchor a figure record
// (figures, tables, equations, and algorithms).
func (et ElementType) FigureLike() bool {
	switch et {
	case ElementFigure, ElementTable, ElementEquation, ElementAlgorithm:
		return true
	default:
		return false
	}
}

// ParseElementType maps a layout detector's free-form type label to an
// ElementType. The detector vocabulary is open; labels that are not
// recognized map to ElementText and are ignored by the figure pipeline.
func ParseElementType(label string) ElementType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "figure", "picture", "image", "chart", "graph", "diagram":
		return ElementFigure
	case "table":
		return ElementTable
	case "equation", "formula", "number":
		return ElementEquation
	case "algorithm":
		return ElementAlgorithm
	case "caption", "figure_caption", "figure_title", "table_caption":
		return ElementCaption
	case "title":
		return ElementTitle
	default:
		return ElementText
	}
}

// MarshalText implements encoding.TextMarshaler
func (et ElementType) MarshalText() ([]byte, error) {
	return []byte(et.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (et *ElementType) UnmarshalText(text []byte) error {
	*et = ParseElementType(string(text))
	return nil
}

// CanonicalType is the normalized category a figure record or reference
// mention belongs to. It is derived from detector labels and caption
// keywords; both sides of the reference matching use the same vocabulary.
type CanonicalType string

const (
	TypeFigure    CanonicalType = "figure"
	TypeTable     CanonicalType = "table"
	TypeEquation  CanonicalType = "equation"
	TypeAlgorithm CanonicalType = "algorithm"
	TypeExample   CanonicalType = "example"
)

// CanonicalTypes lists all canonical types in a stable order.
func CanonicalTypes() []CanonicalType {
	return []CanonicalType{TypeFigure, TypeTable, TypeEquation, TypeAlgorithm, TypeExample}
}

// Canonical returns the canonical type for a figure-like element type.
// The second return value is false for element types that have no
// canonical category (text, captions, titles).
func (et ElementType) Canonical() (CanonicalType, bool) {
	switch et {
	case ElementFigure:
		return TypeFigure, true
	case ElementTable:
		return TypeTable, true
	case ElementEquation:
		return TypeEquation, true
	case ElementAlgorithm:
		return TypeAlgorithm, true
	default:
		return "", false
	}
}

// TextBlock is an atomic piece of OCR output: recognized text with its
// position and recognition confidence. TextBlocks are immutable inputs;
// the linker never modifies them.
type TextBlock struct {
	Text       string  `json:"text"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence"`
	PageIndex  int     `json:"page_idx"`
}

// LayoutElement is one detection from the layout detector: a typed region
// on a page. LayoutElements are immutable inputs to the linker.
type LayoutElement struct {
	Type       ElementType `json:"type"`
	BBox       BBox        `json:"bbox"`
	PageIndex  int         `json:"page_idx"`
	RawText    string      `json:"raw_text,omitempty"`
	Confidence float64     `json:"confidence"`
}

// GroupingMethod records which grouping strategy produced a figure record.
type GroupingMethod string

const (
	GroupingIdentifier GroupingMethod = "identifier"
	GroupingPattern    GroupingMethod = "pattern"
	GroupingProximity  GroupingMethod = "proximity"
	GroupingMulti      GroupingMethod = "multi_strategy"
)

// Combine merges two grouping method markers. When two different
// strategies contributed to the same record the result is GroupingMulti.
func (gm GroupingMethod) Combine(other GroupingMethod) GroupingMethod {
	switch {
	case gm == "":
		return other
	case other == "" || gm == other:
		return gm
	default:
		return GroupingMulti
	}
}

// FigureRecord is one logical figure: an anchor layout element plus any
// grouped sub-elements (caption boxes, sub-panels), with the identifier
// declared by its caption. Records are mutable while the linker groups
// elements and are frozen once reference resolution begins.
type FigureRecord struct {
	FigureID       string         `json:"figure_id"`
	Type           CanonicalType  `json:"type"`
	BBox           BBox           `json:"bbox"`
	PageIndex      int            `json:"page_idx"`
	Title          string         `json:"title,omitempty"`
	Members        []int          `json:"member_element_ids,omitempty"`
	Confidence     float64        `json:"confidence"`
	GroupingMethod GroupingMethod `json:"grouping_method,omitempty"`

	// Position of this record among same-type records on its page,
	// filled in during aggregation (1-based).
	SequenceInPage int `json:"sequence_in_page,omitempty"`
	TotalInPage    int `json:"total_in_page,omitempty"`
}

// AddMember records a member element ID. The member set stays sorted and
// duplicate-free, which keeps repeated merges idempotent.
func (f *FigureRecord) AddMember(id int) {
	i := sort.SearchInts(f.Members, id)
	if i < len(f.Members) && f.Members[i] == id {
		return
	}
	f.Members = append(f.Members, 0)
	copy(f.Members[i+1:], f.Members[i:])
	f.Members[i] = id
}

// HasMember reports whether the element ID is already part of this record.
func (f *FigureRecord) HasMember(id int) bool {
	i := sort.SearchInts(f.Members, id)
	return i < len(f.Members) && f.Members[i] == id
}

// Absorb merges another record into this one: the bounding box grows to
// the minimal enclosing rectangle, member sets are unioned, confidence
// keeps the maximum, and the longer title wins. Absorbing a record twice
// is a no-op beyond the first time.
func (f *FigureRecord) Absorb(other *FigureRecord) {
	f.BBox = f.BBox.Union(other.BBox)
	for _, id := range other.Members {
		f.AddMember(id)
	}
	if other.Confidence > f.Confidence {
		f.Confidence = other.Confidence
	}
	if len(other.Title) > len(f.Title) {
		f.Title = other.Title
	}
	if f.FigureID == "" {
		f.FigureID = other.FigureID
	}
}

// Key returns the identifier/type pair used for uniqueness checks.
func (f *FigureRecord) Key() string {
	return fmt.Sprintf("%s/%s", f.Type, f.FigureID)
}

// ReferenceMention is an in-body-text phrase pointing at a figure-like
// element ("Fig. 2.6", "(1.4)"). Mentions are created by the reference
// extractor and resolved exactly once by the structure mapper.
type ReferenceMention struct {
	Text            string        `json:"text"`
	BBox            BBox          `json:"bbox"`
	PageIndex       int           `json:"page_idx"`
	Type            CanonicalType `json:"reference_type,omitempty"`
	DeclaredID      string        `json:"declared_id,omitempty"`
	MatchedFigureID string        `json:"matched_figure_id,omitempty"`
	Confidence      float64       `json:"confidence"`
	NotMatched      bool          `json:"not_matched"`
}

// Resolved reports whether the mention was matched to a figure.
func (r *ReferenceMention) Resolved() bool {
	return r.MatchedFigureID != ""
}
