// Package geom provides fixed-point planar geometry for layout composition.
//
// All coordinates are int64 database units (1 dbu = 1 nm), so every
// placement and alignment computation is exact integer arithmetic with
// zero residual error. Rotations are restricted to quarter turns, which
// keeps transforms closed over the integer grid.
package geom

// Point is a location in database units.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p minus q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p with both coordinates multiplied by k.
func (p Point) Scale(k int64) Point { return Point{p.X * k, p.Y * k} }

// Box is an axis-aligned rectangle. An empty box has X2 < X1 (or Y2 < Y1)
// and acts as the identity for Union.
type Box struct {
	X1 int64 `json:"x1"`
	Y1 int64 `json:"y1"`
	X2 int64 `json:"x2"`
	Y2 int64 `json:"y2"`
}

// EmptyBox returns the canonical empty box.
func EmptyBox() Box { return Box{0, 0, -1, -1} }

// BoxAround returns the box spanning the two corner points in any order.
func BoxAround(a, b Point) Box {
	return Box{min64(a.X, b.X), min64(a.Y, b.Y), max64(a.X, b.X), max64(a.Y, b.Y)}
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool { return b.X2 < b.X1 || b.Y2 < b.Y1 }

// Width returns the horizontal span of the box.
func (b Box) Width() int64 { return b.X2 - b.X1 }

// Height returns the vertical span of the box.
func (b Box) Height() int64 { return b.Y2 - b.Y1 }

// Left returns the low-x edge coordinate.
func (b Box) Left() int64 { return b.X1 }

// Right returns the high-x edge coordinate.
func (b Box) Right() int64 { return b.X2 }

// Bottom returns the low-y edge coordinate.
func (b Box) Bottom() int64 { return b.Y1 }

// Top returns the high-y edge coordinate.
func (b Box) Top() int64 { return b.Y2 }

// Center returns the center point of the box. Odd spans round toward
// negative infinity, matching integer division on the grid.
func (b Box) Center() Point { return Point{b.CenterX(), b.CenterY()} }

// CenterX returns the horizontal center coordinate.
func (b Box) CenterX() int64 { return div2(b.X1 + b.X2) }

// CenterY returns the vertical center coordinate.
func (b Box) CenterY() int64 { return div2(b.Y1 + b.Y2) }

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Box{
		min64(b.X1, o.X1), min64(b.Y1, o.Y1),
		max64(b.X2, o.X2), max64(b.Y2, o.Y2),
	}
}

// Contains reports whether o lies entirely inside b.
func (b Box) Contains(o Box) bool {
	if o.Empty() {
		return true
	}
	return o.X1 >= b.X1 && o.Y1 >= b.Y1 && o.X2 <= b.X2 && o.Y2 <= b.Y2
}

// ContainsPoint reports whether p lies inside b (edges inclusive).
func (b Box) ContainsPoint(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// Path is an ordered polyline with a stroke width, used for waveguide and
// metal-trace shapes.
type Path struct {
	Points []Point `json:"points"`
	Width  int64   `json:"width"`
}

// BBox returns the bounding box of the path centerline, expanded by half
// the stroke width on every side.
func (p Path) BBox() Box {
	if len(p.Points) == 0 {
		return EmptyBox()
	}
	b := BoxAround(p.Points[0], p.Points[0])
	for _, pt := range p.Points[1:] {
		b = b.Union(BoxAround(pt, pt))
	}
	h := p.Width / 2
	return Box{b.X1 - h, b.Y1 - h, b.X2 + h, b.Y2 + h}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// div2 halves v rounding toward negative infinity so centers are stable
// for negative coordinates.
func div2(v int64) int64 {
	if v < 0 && v%2 != 0 {
		return v/2 - 1
	}
	return v / 2
}
