package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)

	if b.Left() != 10 {
		t.Errorf("Left() = %v, want 10", b.Left())
	}
	if b.Right() != 110 {
		t.Errorf("Right() = %v, want 110", b.Right())
	}
	if b.Top() != 20 {
		t.Errorf("Top() = %v, want 20", b.Top())
	}
	if b.Bottom() != 70 {
		t.Errorf("Bottom() = %v, want 70", b.Bottom())
	}
	if c := b.Center(); c.X != 60 || c.Y != 45 {
		t.Errorf("Center() = %v, want (60, 45)", c)
	}
}

func TestBBoxUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(20, 30, 10, 10)

	u := a.Union(b)
	want := NewBBox(0, 0, 30, 40)
	if u != want {
		t.Errorf("Union() = %+v, want %+v", u, want)
	}

	// Union with itself is identity
	if got := a.Union(a); got != a {
		t.Errorf("Union(self) = %+v, want %+v", got, a)
	}
}

func TestBBoxIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b BBox
		want bool
	}{
		{"overlapping", NewBBox(0, 0, 10, 10), NewBBox(5, 5, 10, 10), true},
		{"touching edge", NewBBox(0, 0, 10, 10), NewBBox(10, 0, 10, 10), true},
		{"disjoint horizontal", NewBBox(0, 0, 10, 10), NewBBox(20, 0, 10, 10), false},
		{"disjoint vertical", NewBBox(0, 0, 10, 10), NewBBox(0, 20, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBoxDistance(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)

	if d := a.Distance(NewBBox(5, 5, 10, 10)); d != 0 {
		t.Errorf("Distance(overlapping) = %v, want 0", d)
	}
	// 3-4-5 triangle between corners
	if d := a.Distance(NewBBox(13, 14, 10, 10)); d != 5 {
		t.Errorf("Distance() = %v, want 5", d)
	}
}

func TestBBoxVerticalGap(t *testing.T) {
	a := NewBBox(0, 0, 100, 50)
	below := NewBBox(0, 60, 100, 20)

	if g := a.VerticalGap(below); g != 10 {
		t.Errorf("VerticalGap() = %v, want 10", g)
	}
	if g := below.VerticalGap(a); g != 10 {
		t.Errorf("VerticalGap() should be symmetric, got %v, want 10", g)
	}
	if g := a.VerticalGap(NewBBox(0, 40, 100, 50)); g != 0 {
		t.Errorf("VerticalGap(overlapping) = %v, want 0", g)
	}
}

func TestParseElementType(t *testing.T) {
	tests := []struct {
		label string
		want  ElementType
	}{
		{"Figure", ElementFigure},
		{"picture", ElementFigure},
		{"chart", ElementFigure},
		{"Table", ElementTable},
		{"Formula", ElementEquation},
		{"equation", ElementEquation},
		{"Algorithm", ElementAlgorithm},
		{"figure_caption", ElementCaption},
		{"table_caption", ElementCaption},
		{"Title", ElementTitle},
		{"Text", ElementText},
		{"seal", ElementText}, // unknown labels pass through as text
		{"", ElementText},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseElementType(tt.label); got != tt.want {
				t.Errorf("ParseElementType(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestElementTypeFigureLike(t *testing.T) {
	for _, et := range []ElementType{ElementFigure, ElementTable, ElementEquation, ElementAlgorithm} {
		if !et.FigureLike() {
			t.Errorf("%v.FigureLike() = false, want true", et)
		}
	}
	for _, et := range []ElementType{ElementText, ElementCaption, ElementTitle} {
		if et.FigureLike() {
			t.Errorf("%v.FigureLike() = true, want false", et)
		}
	}
}

func TestElementTypeCanonical(t *testing.T) {
	ct, ok := ElementTable.Canonical()
	if !ok || ct != TypeTable {
		t.Errorf("ElementTable.Canonical() = %v, %v, want table, true", ct, ok)
	}
	if _, ok := ElementCaption.Canonical(); ok {
		t.Error("ElementCaption.Canonical() should not have a canonical type")
	}
}

func TestFigureRecordAddMember(t *testing.T) {
	f := &FigureRecord{}
	f.AddMember(3)
	f.AddMember(1)
	f.AddMember(3) // duplicate
	f.AddMember(2)

	want := []int{1, 2, 3}
	if len(f.Members) != len(want) {
		t.Fatalf("Members = %v, want %v", f.Members, want)
	}
	for i := range want {
		if f.Members[i] != want[i] {
			t.Errorf("Members = %v, want %v", f.Members, want)
			break
		}
	}
	if !f.HasMember(2) {
		t.Error("HasMember(2) = false, want true")
	}
	if f.HasMember(9) {
		t.Error("HasMember(9) = true, want false")
	}
}

func TestFigureRecordAbsorb(t *testing.T) {
	a := &FigureRecord{
		FigureID:   "2.6",
		Type:       TypeFigure,
		BBox:       NewBBox(0, 0, 100, 100),
		Members:    []int{0},
		Confidence: 0.8,
		Title:      "Figure 2.6",
	}
	b := &FigureRecord{
		FigureID:   "2.6",
		Type:       TypeFigure,
		BBox:       NewBBox(0, 100, 100, 30),
		Members:    []int{1},
		Confidence: 0.9,
		Title:      "Figure 2.6: Document structure",
	}

	a.Absorb(b)

	if a.BBox != NewBBox(0, 0, 100, 130) {
		t.Errorf("bbox after absorb = %+v, want minimal enclosing rectangle", a.BBox)
	}
	if len(a.Members) != 2 {
		t.Errorf("Members = %v, want union of both member sets", a.Members)
	}
	if a.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", a.Confidence)
	}
	if a.Title != "Figure 2.6: Document structure" {
		t.Errorf("Title = %q, want the longer title", a.Title)
	}

	// Absorbing again changes nothing
	before := *a
	members := append([]int(nil), a.Members...)
	a.Absorb(b)
	if a.BBox != before.BBox || len(a.Members) != len(members) {
		t.Error("Absorb() is not idempotent")
	}
}

func TestGroupingMethodCombine(t *testing.T) {
	tests := []struct {
		a, b, want GroupingMethod
	}{
		{"", GroupingIdentifier, GroupingIdentifier},
		{GroupingIdentifier, "", GroupingIdentifier},
		{GroupingIdentifier, GroupingIdentifier, GroupingIdentifier},
		{GroupingIdentifier, GroupingProximity, GroupingMulti},
		{GroupingMulti, GroupingPattern, GroupingMulti},
	}

	for _, tt := range tests {
		if got := tt.a.Combine(tt.b); got != tt.want {
			t.Errorf("Combine(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDocumentHelpers(t *testing.T) {
	doc := NewDocument()
	doc.AddPage(&Page{})
	doc.AddPage(&Page{})

	if doc.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", doc.PageCount())
	}
	if doc.Pages[1].Index != 1 {
		t.Errorf("page index = %d, want 1", doc.Pages[1].Index)
	}
	if doc.GetPage(5) != nil {
		t.Error("GetPage(5) should return nil for out-of-range index")
	}

	doc.Figures = append(doc.Figures,
		&FigureRecord{FigureID: "1", Type: TypeFigure},
		&FigureRecord{FigureID: "2", Type: TypeTable},
	)

	if f := doc.FigureByID("2"); f == nil || f.Type != TypeTable {
		t.Errorf("FigureByID(2) = %+v, want the table record", f)
	}
	if got := len(doc.FiguresOfType(TypeFigure)); got != 1 {
		t.Errorf("FiguresOfType(figure) returned %d records, want 1", got)
	}
}

func TestReferenceMentionJSON(t *testing.T) {
	ref := &ReferenceMention{
		Text:       "Fig. 2.6",
		PageIndex:  0,
		Type:       TypeFigure,
		DeclaredID: "2.6",
		Confidence: 0.7,
	}

	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	// not_matched must always be serialized, even when false
	if !strings.Contains(string(data), `"not_matched":false`) {
		t.Errorf("serialized reference missing not_matched field: %s", data)
	}
	if strings.Contains(string(data), "matched_figure_id") {
		t.Errorf("unresolved reference should omit matched_figure_id: %s", data)
	}
}
