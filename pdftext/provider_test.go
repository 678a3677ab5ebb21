package pdftext

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func glyph(s string, x, y, w, size float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: size}
}

func TestGroupIntoRows(t *testing.T) {
	p := NewProvider()
	texts := []pdf.Text{
		glyph("world", 60, 700, 30, 12),
		glyph("Hello", 20, 700.5, 30, 12),
		glyph("below", 20, 680, 30, 12),
	}

	rows := p.groupIntoRows(texts)
	if len(rows) != 2 {
		t.Fatalf("groupIntoRows() produced %d rows, want 2", len(rows))
	}
	if rows[0][0].S != "Hello" || rows[0][1].S != "world" {
		t.Errorf("first row = %q %q, want left-to-right Hello world", rows[0][0].S, rows[0][1].S)
	}
	if rows[1][0].S != "below" {
		t.Errorf("second row = %q, want the lower line", rows[1][0].S)
	}
}

func TestGroupIntoRowsTolerance(t *testing.T) {
	p := NewProviderWithConfig(Config{RowTolerance: 0.1})
	texts := []pdf.Text{
		glyph("a", 20, 700, 10, 12),
		glyph("b", 40, 699, 10, 12),
	}

	if rows := p.groupIntoRows(texts); len(rows) != 2 {
		t.Errorf("groupIntoRows() produced %d rows, want 2 with tight tolerance", len(rows))
	}
}

func TestRowToBlock(t *testing.T) {
	row := []pdf.Text{
		glyph("Figure ", 100, 680, 40, 10),
		glyph("2.6", 140, 680, 20, 10),
	}

	block := rowToBlock(row, 3, 792)

	if block.Text != "Figure 2.6" {
		t.Errorf("Text = %q, want %q", block.Text, "Figure 2.6")
	}
	if block.PageIndex != 3 {
		t.Errorf("PageIndex = %d, want 3", block.PageIndex)
	}
	// Baseline 680 with size 10 sits at top-left y = 792 - 690.
	if block.BBox.Y != 102 {
		t.Errorf("BBox.Y = %v, want 102", block.BBox.Y)
	}
	if block.BBox.X != 100 || block.BBox.Width != 60 {
		t.Errorf("BBox horizontal = (%v, %v), want (100, 60)", block.BBox.X, block.BBox.Width)
	}
	if block.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for embedded text", block.Confidence)
	}
}
