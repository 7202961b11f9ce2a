// Package place computes exact transforms for new instances from
// declarative offset rules against reference geometry.
//
// A rule describes where the instance must land — an absolute position,
// an edge alignment against a reference box or instance, or a pin
// alignment against another instance's pin — and Place solves for the
// transform that satisfies it with zero residual, then inserts the
// instance into the parent cell. All arithmetic is integer, so alignment
// is exact at fixed-point resolution.
package place

import (
	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
)

// Edge names one side of a bounding box in the unrotated local frame.
type Edge int

// Box edges.
const (
	Left Edge = iota
	Right
	Bottom
	Top
)

// String returns the lowercase edge name.
func (e Edge) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	default:
		return "top"
	}
}

// Rule computes the transform that places a cell relative to reference
// geometry.
type Rule interface {
	transform(cell *layout.Cell) (geom.Trans, error)
}

// Place inserts cell into parent at the transform the rule resolves to.
func Place(parent, cell *layout.Cell, rule Rule) (*layout.Instance, error) {
	t, err := rule.transform(cell)
	if err != nil {
		return nil, err
	}
	return parent.Insert(cell, t), nil
}

// =============================================================================
// Absolute
// =============================================================================

// Absolute places the cell's origin at a fixed position with a fixed
// rotation.
type Absolute struct {
	At  geom.Point
	Rot geom.Rot
}

func (r Absolute) transform(*layout.Cell) (geom.Trans, error) {
	return geom.Trans{Rot: r.Rot, Disp: r.At}, nil
}

// =============================================================================
// EdgeAlign
// =============================================================================

// Reference supplies the geometry an alignment rule measures against:
// either a bare box or a placed instance. For an instance, edge names
// refer to the instance's own unrotated frame and are mapped through its
// rotation, so "right" on an R180 instance resolves to its absolute left
// side.
type Reference interface {
	// edgeLine resolves a local edge to an absolute axis line:
	// alongX is true for a constant-x (vertical) line.
	edgeLine(e Edge) (alongX bool, coord int64)
	center() geom.Point
}

// BoxRef adapts a plain box (e.g. the die floorplan) as a Reference.
type BoxRef geom.Box

func (b BoxRef) edgeLine(e Edge) (bool, int64) {
	box := geom.Box(b)
	switch e {
	case Left:
		return true, box.Left()
	case Right:
		return true, box.Right()
	case Bottom:
		return false, box.Bottom()
	default:
		return false, box.Top()
	}
}

func (b BoxRef) center() geom.Point { return geom.Box(b).Center() }

// InstRef adapts a placed instance as a Reference.
type InstRef struct{ Inst *layout.Instance }

func (r InstRef) edgeLine(e Edge) (bool, int64) {
	local := r.Inst.Target().BBox()
	p1, p2 := edgeCorners(local, e)
	m1 := r.Inst.Trans.Apply(p1)
	m2 := r.Inst.Trans.Apply(p2)
	if m1.X == m2.X {
		return true, m1.X
	}
	return false, m1.Y
}

func (r InstRef) center() geom.Point { return r.Inst.BBox().Center() }

func edgeCorners(b geom.Box, e Edge) (geom.Point, geom.Point) {
	switch e {
	case Left:
		return geom.Point{X: b.X1, Y: b.Y1}, geom.Point{X: b.X1, Y: b.Y2}
	case Right:
		return geom.Point{X: b.X2, Y: b.Y1}, geom.Point{X: b.X2, Y: b.Y2}
	case Bottom:
		return geom.Point{X: b.X1, Y: b.Y1}, geom.Point{X: b.X2, Y: b.Y1}
	default:
		return geom.Point{X: b.X1, Y: b.Y2}, geom.Point{X: b.X2, Y: b.Y2}
	}
}

// EdgeAlign aligns one edge of the placed cell with one edge of the
// reference, e.g. "my left edge = reference's right edge + Dx, my
// center-y = reference's center-y + Dy". The offset on the edge axis
// comes from Dx or Dy per that axis; the perpendicular axis aligns
// centers plus the remaining offset.
type EdgeAlign struct {
	Ref     Reference
	Edge    Edge // edge of the placed cell, in its unrotated frame
	RefEdge Edge // edge of the reference, in its unrotated frame
	Rot     geom.Rot
	Dx, Dy  int64
}

func (r EdgeAlign) transform(cell *layout.Cell) (geom.Trans, error) {
	rot := geom.Trans{Rot: r.Rot}
	local := cell.BBox()
	if local.Empty() {
		return geom.Trans{}, errors.New(errors.ErrCodeInvalidInput,
			"cannot edge-align empty cell %q", cell.Name)
	}

	p1, p2 := edgeCorners(local, r.Edge)
	m1, m2 := rot.Apply(p1), rot.Apply(p2)
	myAlongX := m1.X == m2.X
	refAlongX, refCoord := r.Ref.edgeLine(r.RefEdge)
	if myAlongX != refAlongX {
		return geom.Trans{}, errors.New(errors.ErrCodeInvalidInput,
			"edge alignment axes incompatible: %s edge against %s edge after rotation %s",
			r.Edge, r.RefEdge, r.Rot)
	}

	mapped := rot.ApplyBox(local)
	refCenter := r.Ref.center()

	var disp geom.Point
	if myAlongX {
		disp.X = refCoord + r.Dx - m1.X
		disp.Y = refCenter.Y + r.Dy - mapped.CenterY()
	} else {
		disp.Y = refCoord + r.Dy - m1.Y
		disp.X = refCenter.X + r.Dx - mapped.CenterX()
	}
	return geom.Trans{Rot: r.Rot, Disp: disp}, nil
}

// =============================================================================
// PinAlign
// =============================================================================

// PinAlign places the cell so its named pin lands exactly on the
// reference instance's named pin, rotated so the two facings oppose.
// This is how chained components butt-couple port to port.
type PinAlign struct {
	Ref    *layout.Instance
	RefPin string
	Pin    string
}

func (r PinAlign) transform(cell *layout.Cell) (geom.Trans, error) {
	refAbs, err := r.Ref.PinAbs(r.RefPin)
	if err != nil {
		return geom.Trans{}, err
	}
	pin, ok := cell.Pin(r.Pin)
	if !ok {
		return geom.Trans{}, errors.New(errors.ErrCodeConnection,
			"no pin %q on cell %q", r.Pin, cell.Name)
	}

	rot := refAbs.Facing.Opposite().Add(pin.Facing.Inverse())
	disp := refAbs.Pos.Sub(geom.Trans{Rot: rot}.Apply(pin.Pos))
	return geom.Trans{Rot: rot, Disp: disp}, nil
}
