package models

// Rect is a rectangle in page coordinate space with the origin at the
// top-left corner, matching how the zone layout is specified. Conversion to
// PDF user space (origin bottom-left) happens at crop time.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Zone is a candidate section of a secondary-document page. Zones carry no
// semantic label; the position in the flattened zone list is what gets
// matched against a record.
type Zone struct {
	// SourcePage is the 0-based page index within the secondary document.
	SourcePage int
	Rect       Rect
	// PageHeight is the source page height, needed to flip Rect into PDF
	// user space.
	PageHeight float64
}
