package geom

import "fmt"

// Rot is a counter-clockwise quarter-turn rotation.
type Rot int

// Quarter-turn rotations.
const (
	R0 Rot = iota
	R90
	R180
	R270
)

// String returns the conventional name, e.g. "R90".
func (r Rot) String() string {
	switch r.Norm() {
	case R0:
		return "R0"
	case R90:
		return "R90"
	case R180:
		return "R180"
	default:
		return "R270"
	}
}

// Norm reduces r to the canonical range [R0, R270].
func (r Rot) Norm() Rot {
	n := r % 4
	if n < 0 {
		n += 4
	}
	return n
}

// Add composes two rotations.
func (r Rot) Add(o Rot) Rot { return (r + o).Norm() }

// Inverse returns the rotation that undoes r.
func (r Rot) Inverse() Rot { return (-r).Norm() }

// Opposite returns r turned by a half revolution. Used to face one pin
// against another.
func (r Rot) Opposite() Rot { return r.Add(R180) }

// Dir returns the unit direction vector of r, with R0 pointing along +x.
func (r Rot) Dir() Point {
	switch r.Norm() {
	case R0:
		return Point{1, 0}
	case R90:
		return Point{0, 1}
	case R180:
		return Point{-1, 0}
	default:
		return Point{0, -1}
	}
}

// Horizontal reports whether r points along the x axis.
func (r Rot) Horizontal() bool {
	n := r.Norm()
	return n == R0 || n == R180
}

// Degrees returns the rotation angle in degrees (0, 90, 180, 270).
func (r Rot) Degrees() int { return int(r.Norm()) * 90 }

// RotFromDegrees converts an angle in degrees to a Rot. Only multiples of
// 90 are representable.
func RotFromDegrees(deg int) (Rot, error) {
	if deg%90 != 0 {
		return R0, fmt.Errorf("rotation %d not a quarter turn", deg)
	}
	return Rot(deg / 90).Norm(), nil
}

// Trans is a rigid transform: a quarter-turn rotation about the origin
// followed by a translation.
type Trans struct {
	Rot  Rot   `json:"rot"`
	Disp Point `json:"disp"`
}

// Translate returns a pure translation transform.
func Translate(x, y int64) Trans { return Trans{Rot: R0, Disp: Point{x, y}} }

// Apply maps a point through the transform.
func (t Trans) Apply(p Point) Point {
	return t.rotate(p).Add(t.Disp)
}

// ApplyBox maps a box through the transform. The result stays axis-aligned
// because rotations are quarter turns.
func (t Trans) ApplyBox(b Box) Box {
	if b.Empty() {
		return b
	}
	return BoxAround(t.Apply(Point{b.X1, b.Y1}), t.Apply(Point{b.X2, b.Y2}))
}

// Compose returns the transform equivalent to applying o first, then t.
func (t Trans) Compose(o Trans) Trans {
	return Trans{
		Rot:  t.Rot.Add(o.Rot),
		Disp: t.Apply(o.Disp),
	}
}

// Inverse returns the transform that undoes t.
func (t Trans) Inverse() Trans {
	inv := t.Rot.Inverse()
	return Trans{
		Rot:  inv,
		Disp: Trans{Rot: inv}.rotate(t.Disp).Scale(-1),
	}
}

func (t Trans) rotate(p Point) Point {
	switch t.Rot.Norm() {
	case R0:
		return p
	case R90:
		return Point{-p.Y, p.X}
	case R180:
		return Point{-p.X, -p.Y}
	default:
		return Point{p.Y, -p.X}
	}
}
