// Package model provides the data model for document structure linking.
//
// This package defines the types the linker consumes and produces. Inputs
// are immutable: [TextBlock] (atomic OCR output) and [LayoutElement]
// (typed regions from a layout detector, with the open detector vocabulary
// normalized by [ParseElementType]). Outputs are [FigureRecord] (a logical
// figure assembled from one or more layout elements) and
// [ReferenceMention] (an in-text phrase pointing at a figure), composed
// into [Page] and [Document] aggregates.
//
// # Canonical types
//
// Figures and references are matched through a shared [CanonicalType]
// vocabulary (figure, table, equation, algorithm, example). Free-form
// detector labels and caption keywords both normalize into it, so a
// "Picture" detection and a "Fig. 2.6" caption land in the same category.
//
// # Geometry
//
// [BBox] and [Point] support the spatial reasoning the linker performs:
// intersection, union, edge distance, and overlap ratios. Coordinates are
// page-local with the origin at the top-left corner.
//
// # Serialization
//
// The aggregate types carry stable JSON field names (index, page_size,
// blocks, references, figure_id, page_idx, not_matched, ...), so a
// marshaled [Document] is the module's wire format. The not_matched field
// is always present on references, false for matched ones.
package model
