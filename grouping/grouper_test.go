package grouping

import (
	"errors"
	"testing"

	"github.com/tsawler/doclink/model"
)

func rec(id string, t model.CanonicalType, page int, bbox model.BBox, members ...int) *model.FigureRecord {
	r := &model.FigureRecord{
		FigureID:  id,
		Type:      t,
		PageIndex: page,
		BBox:      bbox,
	}
	for _, m := range members {
		r.AddMember(m)
	}
	return r
}

func TestMergeIdentifiers(t *testing.T) {
	g := NewGrouper()

	records := []*model.FigureRecord{
		rec("2.6", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0),
		rec("2.6", model.TypeFigure, 0, model.NewBBox(100, 310, 300, 20), 1),
		rec("3", model.TypeTable, 1, model.NewBBox(50, 50, 200, 100), 2),
	}

	out := g.MergeIdentifiers(records)

	if len(out) != 2 {
		t.Fatalf("MergeIdentifiers() produced %d records, want 2", len(out))
	}

	merged := out[0]
	if merged.FigureID != "2.6" {
		t.Errorf("FigureID = %q, want %q", merged.FigureID, "2.6")
	}
	if merged.BBox != model.NewBBox(100, 100, 300, 230) {
		t.Errorf("BBox = %+v, want minimal enclosing rectangle", merged.BBox)
	}
	if len(merged.Members) != 2 {
		t.Errorf("Members = %v, want union of both member sets", merged.Members)
	}
	if merged.GroupingMethod != model.GroupingIdentifier {
		t.Errorf("GroupingMethod = %q, want %q", merged.GroupingMethod, model.GroupingIdentifier)
	}
}

// Same identifier but different canonical type must not merge.
func TestMergeIdentifiersTypeGate(t *testing.T) {
	g := NewGrouper()

	records := []*model.FigureRecord{
		rec("1", model.TypeFigure, 0, model.NewBBox(0, 0, 10, 10), 0),
		rec("1", model.TypeTable, 0, model.NewBBox(0, 100, 10, 10), 1),
	}

	out := g.MergeIdentifiers(records)
	if len(out) != 2 {
		t.Errorf("MergeIdentifiers() produced %d records, want 2 (types differ)", len(out))
	}
}

func TestMergeIdentifiersIdempotent(t *testing.T) {
	g := NewGrouper()

	records := []*model.FigureRecord{
		rec("2.6", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0),
		rec("2.6", model.TypeFigure, 0, model.NewBBox(100, 310, 300, 20), 1),
	}

	once := g.MergeIdentifiers(records)
	twice := g.MergeIdentifiers(once)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed record count: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].BBox != twice[i].BBox || once[i].FigureID != twice[i].FigureID ||
			len(once[i].Members) != len(twice[i].Members) {
			t.Errorf("record %d changed on second grouping pass", i)
		}
	}
}

func TestAttachCaptions(t *testing.T) {
	g := NewGrouper()

	records := []*model.FigureRecord{
		rec("", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0),
	}
	leftovers := []Element{
		{ID: 1, Elem: model.LayoutElement{
			Type:    model.ElementCaption,
			BBox:    model.NewBBox(100, 310, 300, 15),
			RawText: "Figure 7: Pipeline overview",
		}},
	}

	remaining := g.AttachCaptions(records, leftovers, 30)

	if len(remaining) != 0 {
		t.Errorf("caption element was not consumed, %d leftovers remain", len(remaining))
	}
	r := records[0]
	if r.FigureID != "7" {
		t.Errorf("FigureID = %q, want %q", r.FigureID, "7")
	}
	if r.Title != "Figure 7: Pipeline overview" {
		t.Errorf("Title = %q, want the caption text", r.Title)
	}
	if !r.HasMember(1) {
		t.Error("caption element should join the member set")
	}
	if r.GroupingMethod != model.GroupingPattern {
		t.Errorf("GroupingMethod = %q, want %q", r.GroupingMethod, model.GroupingPattern)
	}
}

// The caption attaches to the nearest qualifying record by center
// distance when several are in range.
func TestAttachCaptionsNearestWins(t *testing.T) {
	g := NewGrouper()

	far := rec("", model.TypeFigure, 0, model.NewBBox(100, 20, 300, 100), 0)
	near := rec("", model.TypeFigure, 0, model.NewBBox(100, 180, 300, 120), 1)
	records := []*model.FigureRecord{far, near}

	leftovers := []Element{
		{ID: 2, Elem: model.LayoutElement{
			Type:    model.ElementCaption,
			BBox:    model.NewBBox(100, 305, 300, 15),
			RawText: "Figure 4: Nearest",
		}},
	}

	g.AttachCaptions(records, leftovers, 400)

	if near.FigureID != "4" {
		t.Errorf("nearest record FigureID = %q, want %q", near.FigureID, "4")
	}
	if far.FigureID != "" {
		t.Errorf("farther record FigureID = %q, want empty", far.FigureID)
	}
}

// A caption already labeled elsewhere must not attach to a labeled record.
func TestAttachCaptionsSkipsLabeledRecords(t *testing.T) {
	g := NewGrouper()

	records := []*model.FigureRecord{
		rec("9", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0),
	}
	leftovers := []Element{
		{ID: 1, Elem: model.LayoutElement{
			Type:    model.ElementCaption,
			BBox:    model.NewBBox(100, 310, 300, 15),
			RawText: "Figure 7: Stray",
		}},
	}

	remaining := g.AttachCaptions(records, leftovers, 30)

	if records[0].FigureID != "9" {
		t.Errorf("labeled record must keep its identifier, got %q", records[0].FigureID)
	}
	if len(remaining) != 1 {
		t.Errorf("unconsumed caption should remain a leftover")
	}
}

func TestFoldProximateSubPanel(t *testing.T) {
	g := NewGrouper()

	labeled := rec("2.6", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0)
	panel := rec("", model.TypeFigure, 0, model.NewBBox(100, 305, 140, 90), 1)
	records := []*model.FigureRecord{labeled, panel}

	out, _ := g.FoldProximate(records, nil)

	if len(out) != 1 {
		t.Fatalf("FoldProximate() produced %d records, want 1", len(out))
	}
	if out[0].FigureID != "2.6" {
		t.Errorf("FigureID = %q, want unchanged %q", out[0].FigureID, "2.6")
	}
	if !out[0].HasMember(1) {
		t.Error("sub-panel member should be folded into the labeled record")
	}
	if out[0].GroupingMethod != model.GroupingProximity {
		t.Errorf("GroupingMethod = %q, want %q", out[0].GroupingMethod, model.GroupingProximity)
	}
}

// A table never merges into a figure, regardless of distance.
func TestFoldProximateTypeCompatibility(t *testing.T) {
	g := NewGrouper()

	figure := rec("1", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0)
	table := rec("", model.TypeTable, 0, model.NewBBox(100, 305, 300, 90), 1)
	records := []*model.FigureRecord{figure, table}

	out, _ := g.FoldProximate(records, nil)

	if len(out) != 2 {
		t.Errorf("FoldProximate() produced %d records, want 2 (incompatible types)", len(out))
	}
}

// Out-of-range sub-elements stay separate.
func TestFoldProximateDistanceGate(t *testing.T) {
	g := NewGrouper()

	labeled := rec("1", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0)
	distant := rec("", model.TypeFigure, 0, model.NewBBox(100, 700, 140, 90), 1)
	records := []*model.FigureRecord{labeled, distant}

	out, _ := g.FoldProximate(records, nil)
	if len(out) != 2 {
		t.Errorf("FoldProximate() produced %d records, want 2 (beyond merge distance)", len(out))
	}
}

func TestMultiStrategyMarker(t *testing.T) {
	g := NewGrouper()

	records := []*model.FigureRecord{
		rec("", model.TypeFigure, 0, model.NewBBox(100, 100, 300, 200), 0),
		rec("7", model.TypeFigure, 0, model.NewBBox(100, 400, 300, 50), 1),
	}
	leftovers := []Element{
		{ID: 2, Elem: model.LayoutElement{
			Type:    model.ElementCaption,
			BBox:    model.NewBBox(100, 310, 300, 15),
			RawText: "Figure 7: Shared id",
		}},
	}

	// Pattern labels the first record "7"; identifier merge then unifies
	// it with the detector's second "7" record.
	g.AttachCaptions(records, leftovers, 30)
	out := g.MergeIdentifiers(records)

	if len(out) != 1 {
		t.Fatalf("expected one merged record, got %d", len(out))
	}
	if out[0].GroupingMethod != model.GroupingMulti {
		t.Errorf("GroupingMethod = %q, want %q", out[0].GroupingMethod, model.GroupingMulti)
	}
}

func TestValidate(t *testing.T) {
	g := NewGrouper()

	good := []*model.FigureRecord{
		rec("1", model.TypeFigure, 0, model.BBox{}),
		rec("1", model.TypeTable, 0, model.BBox{}), // same id, different type: allowed
		rec("", model.TypeFigure, 0, model.BBox{}),
		rec("", model.TypeFigure, 0, model.BBox{}), // unlabeled duplicates: allowed
	}
	if err := g.Validate(good); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	bad := []*model.FigureRecord{
		rec("1", model.TypeFigure, 0, model.BBox{}),
		rec("1", model.TypeFigure, 1, model.BBox{}),
	}
	err := g.Validate(bad)
	if !errors.Is(err, ErrDuplicateFigureID) {
		t.Errorf("Validate() = %v, want ErrDuplicateFigureID", err)
	}
}
