// Package detect turns raw vision detections into a clean, de-duplicated,
// confidence-ranked ingredient list.
package detect

// Box is an axis-aligned bounding box in absolute pixel coordinates.
// A valid box has X1 < X2 and Y1 < Y2.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Valid reports whether the box has positive width and height.
func (b Box) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns the area of the box, or 0 for an invalid box.
func (b Box) Area() float64 {
	if !b.Valid() {
		return 0
	}
	return b.Width() * b.Height()
}

// Intersection returns the overlapping region of two boxes. The result is
// invalid (zero area) when the boxes are disjoint.
func (b Box) Intersection(o Box) Box {
	return Box{
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
		X2: min(b.X2, o.X2),
		Y2: min(b.Y2, o.Y2),
	}
}

// IoU returns the intersection-over-union ratio of two boxes, in [0,1].
// Disjoint or invalid boxes yield 0.
func (b Box) IoU(o Box) float64 {
	inter := b.Intersection(o).Area()
	if inter == 0 {
		return 0
	}
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
