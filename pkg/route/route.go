// Package route synthesizes routed connections between resolved pins:
// optical waveguides with bend-radius constraints and electrical traces
// as rectilinear polylines.
//
// A route's terminal points always coincide exactly with the absolute
// positions of its two endpoint pins, and its first and last segments run
// along each pin's facing direction. Geometry that cannot satisfy the
// medium's constraints is a caller configuration error and is reported,
// never silently approximated.
package route

import (
	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
)

// FallbackBendRadius is used when a waveguide type carries no radius of
// its own: 60 µm in 1 nm database units.
const FallbackBendRadius int64 = 60_000

// Kind discriminates routing media.
type Kind string

// Routing media.
const (
	KindOptical    Kind = "optical"
	KindElectrical Kind = "electrical"
)

// Medium describes how a connection is realized: the routing kind, the
// trace or waveguide width, and for optical media the waveguide type name
// and minimum bend radius.
type Medium struct {
	Kind   Kind
	Width  int64
	Type   string // waveguide type, e.g. "SiN Strip TE 1310 nm, w=800 nm"
	Radius int64  // minimum bend radius; <=0 selects FallbackBendRadius
	Layer  string // target layer; defaulted per kind when empty
}

// Optical builds a waveguide medium.
func Optical(wgType string, width, radius int64) Medium {
	return Medium{Kind: KindOptical, Type: wgType, Width: width, Radius: radius}
}

// Electrical builds a metal-trace medium.
func Electrical(width int64) Medium {
	return Medium{Kind: KindElectrical, Width: width}
}

func (m Medium) layer() string {
	if m.Layer != "" {
		return m.Layer
	}
	if m.Kind == KindElectrical {
		return layout.LayerMetal
	}
	return layout.LayerWaveguide
}

func (m Medium) radius() int64 {
	if m.Radius > 0 {
		return m.Radius
	}
	return FallbackBendRadius
}

// Endpoint records one resolved end of a route.
type Endpoint struct {
	Cell string
	Pin  string
	Pos  geom.Point
}

// Route is the geometric realization of one pin-to-pin connection.
type Route struct {
	Medium Medium
	Points []geom.Point
	From   Endpoint
	To     Endpoint
}

// Connect resolves both pins to absolute positions and facings, builds
// the polyline for the medium, and inserts it as a path shape into the
// parent cell. The endpoint instances are not mutated.
func Connect(parent *layout.Cell, from *layout.Instance, fromPin string, to *layout.Instance, toPin string, m Medium) (*Route, error) {
	p1, err := from.PinAbs(fromPin)
	if err != nil {
		return nil, err
	}
	p2, err := to.PinAbs(toPin)
	if err != nil {
		return nil, err
	}

	var pts []geom.Point
	switch m.Kind {
	case KindElectrical:
		pts = electricalRoute(p1, p2)
	case KindOptical:
		pts, err = opticalRoute(p1, p2, m.radius())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeGeometryConstraint, err,
				"route %s.%s -> %s.%s", from.Target().Name, fromPin, to.Target().Name, toPin)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown medium kind %q", m.Kind)
	}

	r := &Route{
		Medium: m,
		Points: pts,
		From:   Endpoint{Cell: from.Target().Name, Pin: fromPin, Pos: p1.Pos},
		To:     Endpoint{Cell: to.Target().Name, Pin: toPin, Pos: p2.Pos},
	}
	parent.AddShape(layout.PathShape(m.layer(), geom.Path{Points: pts, Width: m.Width}))
	return r, nil
}

// electricalRoute is a 2-point straight when the pins share an axis,
// otherwise a 3-point L that first runs parallel to the source facing.
func electricalRoute(p1, p2 layout.AbsPin) []geom.Point {
	if p1.Pos.X == p2.Pos.X || p1.Pos.Y == p2.Pos.Y {
		return []geom.Point{p1.Pos, p2.Pos}
	}
	var corner geom.Point
	if p1.Facing.Horizontal() {
		corner = geom.Point{X: p2.Pos.X, Y: p1.Pos.Y}
	} else {
		corner = geom.Point{X: p1.Pos.X, Y: p2.Pos.Y}
	}
	return []geom.Point{p1.Pos, corner, p2.Pos}
}

// opticalRoute builds a manhattan waveguide path honoring the bend
// radius. Supported pin facings: opposing (straight or S-route) and
// perpendicular (single corner). Same-direction facings would need a
// U-turn at zero clearance and are rejected.
func opticalRoute(p1, p2 layout.AbsPin, radius int64) ([]geom.Point, error) {
	f1, f2 := p1.Facing, p2.Facing
	d := p2.Pos.Sub(p1.Pos)
	dir1 := f1.Dir()
	axial := d.X*dir1.X + d.Y*dir1.Y

	switch {
	case f2 == f1.Opposite():
		if axial < 0 {
			return nil, errors.New(errors.ErrCodeGeometryConstraint,
				"destination pin lies behind the source facing (%s)", f1)
		}
		lateral := d.X*(-dir1.Y) + d.Y*dir1.X
		if lateral == 0 {
			return []geom.Point{p1.Pos, p2.Pos}, nil
		}
		// Two opposite quarter bends: each needs radius clearance on both
		// the axial halves and the lateral jog.
		if axial < 2*radius {
			return nil, errors.New(errors.ErrCodeGeometryConstraint,
				"axial clearance %d below 2x bend radius %d", axial, radius)
		}
		if abs64(lateral) < 2*radius {
			return nil, errors.New(errors.ErrCodeGeometryConstraint,
				"lateral offset %d below 2x bend radius %d", lateral, radius)
		}
		m1 := p1.Pos.Add(dir1.Scale(axial / 2))
		m2 := m1.Add(d.Sub(dir1.Scale(axial)))
		return []geom.Point{p1.Pos, m1, m2, p2.Pos}, nil

	case f2 != f1 && f2 != f1.Opposite():
		// Perpendicular: one corner where the two facing lines cross.
		var corner geom.Point
		if f1.Horizontal() {
			corner = geom.Point{X: p2.Pos.X, Y: p1.Pos.Y}
		} else {
			corner = geom.Point{X: p1.Pos.X, Y: p2.Pos.Y}
		}
		if leg := along(p1.Pos, corner, f1); leg < radius {
			return nil, errors.New(errors.ErrCodeGeometryConstraint,
				"source leg %d below bend radius %d", leg, radius)
		}
		if leg := along(p2.Pos, corner, f2); leg < radius {
			return nil, errors.New(errors.ErrCodeGeometryConstraint,
				"destination leg %d below bend radius %d", leg, radius)
		}
		return []geom.Point{p1.Pos, corner, p2.Pos}, nil

	default: // f1 == f2
		return nil, errors.New(errors.ErrCodeGeometryConstraint,
			"pin facings both point %s; U-turn has zero clearance", f1)
	}
}

// along returns the distance from p to q measured along facing f, or a
// negative value when q is behind the facing.
func along(p, q geom.Point, f geom.Rot) int64 {
	d := q.Sub(p)
	dir := f.Dir()
	return d.X*dir.X + d.Y*dir.Y
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
