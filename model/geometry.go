package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a bounding box (rectangle) in page coordinates.
// The origin is the top-left corner of the page: Y grows downward,
// so Top() < Bottom() for any valid box.
type BBox struct {
	X      float64 `json:"x"` // Left
	Y      float64 `json:"y"` // Top
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Top() && p.Y <= b.Bottom()
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Bottom() < other.Top() ||
		b.Top() > other.Bottom())
}

// Intersection returns the intersection of two bounding boxes
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}

	x := math.Max(b.Left(), other.Left())
	y := math.Max(b.Top(), other.Top())
	right := math.Min(b.Right(), other.Right())
	bottom := math.Min(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Union returns the minimal enclosing rectangle of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Top(), other.Top())
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// Expand expands the bounding box by a margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// OverlapRatio calculates the overlap ratio with another box
// Returns value between 0 and 1
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	intersection := b.Intersection(other)
	minArea := math.Min(b.Area(), other.Area())

	if minArea == 0 {
		return 0
	}

	return intersection.Area() / minArea
}

// Distance returns the minimum edge-to-edge distance to another box.
// Overlapping boxes have distance 0.
func (b BBox) Distance(other BBox) float64 {
	dx := math.Max(0, math.Max(other.Left()-b.Right(), b.Left()-other.Right()))
	dy := math.Max(0, math.Max(other.Top()-b.Bottom(), b.Top()-other.Bottom()))
	return math.Sqrt(dx*dx + dy*dy)
}

// VerticalGap returns the vertical distance between the facing horizontal
// edges of two boxes, or 0 if their vertical extents overlap.
func (b BBox) VerticalGap(other BBox) float64 {
	if other.Top() > b.Bottom() {
		return other.Top() - b.Bottom()
	}
	if b.Top() > other.Bottom() {
		return b.Top() - other.Bottom()
	}
	return 0
}

// HorizontalOffset returns the distance between the horizontal centers
// of two boxes.
func (b BBox) HorizontalOffset(other BBox) float64 {
	return math.Abs(b.Center().X - other.Center().X)
}

// HorizontalOverlaps checks if the horizontal extents of two boxes overlap
func (b BBox) HorizontalOverlaps(other BBox) bool {
	return !(b.Right() < other.Left() || b.Left() > other.Right())
}

// VerticalOverlaps checks if the vertical extents of two boxes overlap
func (b BBox) VerticalOverlaps(other BBox) bool {
	return !(b.Bottom() < other.Top() || b.Top() > other.Bottom())
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// IsValid returns true if the bounding box has non-negative dimensions
func (b BBox) IsValid() bool {
	return b.Width >= 0 && b.Height >= 0
}
