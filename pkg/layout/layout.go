// Package layout implements the in-memory cell hierarchy the composer
// builds on: named cells holding shapes, pins, and nested instances of
// other cells, plus JSON persistence and hierarchical search.
//
// # Model
//
// A Layout owns its cells in an arena indexed by CellIndex. A Cell is a
// reusable geometry definition; an Instance places a cell inside a parent
// at a rigid transform. Many instances may share one cell, so cells are
// never mutated once placed — callers copy (CopyTree) before specializing.
//
// Bounding boxes are computed recursively and memoized; any mutation of
// the layout invalidates the memo via a generation counter.
package layout

import (
	"fmt"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
)

// Well-known layer names used by the composer.
const (
	LayerFloorPlan = "FloorPlan"
	LayerKeepout   = "Keepout"
	LayerDevRec    = "DevRec"
	LayerWaveguide = "Waveguide"
	LayerMetal     = "M2_router"
	LayerPinRec    = "PinRec"
	LayerText      = "Text"
)

// CellIndex identifies a cell within its layout.
type CellIndex int

// Layout is an arena of cells.
type Layout struct {
	Name string

	cells  []*Cell
	byName map[string]CellIndex

	// gen bumps on every mutation and invalidates bbox memos.
	gen uint64
}

// New creates an empty layout.
func New(name string) *Layout {
	return &Layout{Name: name, byName: make(map[string]CellIndex)}
}

// CreateCell creates a new empty cell. If the name is taken, a numeric
// suffix is appended to keep cell names unique within the layout.
func (l *Layout) CreateCell(name string) *Cell {
	name = l.uniqueName(name)
	c := &Cell{Name: name, Index: CellIndex(len(l.cells)), layout: l}
	l.cells = append(l.cells, c)
	l.byName[name] = c.Index
	l.gen++
	return c
}

// Cell returns the cell with the given name.
func (l *Layout) Cell(name string) (*Cell, bool) {
	idx, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	return l.cells[idx], true
}

// CellAt returns the cell at the given index.
func (l *Layout) CellAt(idx CellIndex) *Cell { return l.cells[idx] }

// Cells returns all cells in creation order. The slice is shared; callers
// must not modify it.
func (l *Layout) Cells() []*Cell { return l.cells }

func (l *Layout) uniqueName(name string) string {
	if _, taken := l.byName[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s$%d", name, i)
		if _, taken := l.byName[cand]; !taken {
			return cand
		}
	}
}

// Cell is a named, reusable geometry definition.
type Cell struct {
	Name  string
	Index CellIndex

	Shapes []Shape
	Insts  []*Instance
	Pins   []Pin

	layout *Layout

	// bbox memo, valid while bboxGen matches the layout generation.
	bboxGen uint64
	bbox    geom.Box
}

// Layout returns the layout owning this cell.
func (c *Cell) Layout() *Layout { return c.layout }

// Insert places child inside c at the given transform and returns the
// new instance.
func (c *Cell) Insert(child *Cell, t geom.Trans) *Instance {
	inst := &Instance{Cell: child.Index, Trans: t, parent: c}
	c.Insts = append(c.Insts, inst)
	c.layout.gen++
	return inst
}

// AddShape appends a shape to the cell.
func (c *Cell) AddShape(s Shape) {
	c.Shapes = append(c.Shapes, s)
	c.layout.gen++
}

// BBox returns the bounding box of the cell's own shapes plus all nested
// instances, memoized per layout generation. Re-entrant hierarchies are
// cut off rather than recursed into, so the computation terminates.
func (c *Cell) BBox() geom.Box {
	return c.bboxWith(make(map[CellIndex]bool))
}

func (c *Cell) bboxWith(visiting map[CellIndex]bool) geom.Box {
	if c.bboxGen == c.layout.gen && c.bboxGen != 0 {
		return c.bbox
	}
	if visiting[c.Index] {
		return geom.EmptyBox()
	}
	visiting[c.Index] = true
	defer delete(visiting, c.Index)

	b := geom.EmptyBox()
	for _, s := range c.Shapes {
		b = b.Union(s.BBox())
	}
	for _, inst := range c.Insts {
		child := c.layout.cells[inst.Cell]
		b = b.Union(inst.Trans.ApplyBox(child.bboxWith(visiting)))
	}
	c.bbox = b
	c.bboxGen = c.layout.gen
	return b
}

// Instance is a placed occurrence of a cell inside a parent cell.
type Instance struct {
	Cell  CellIndex
	Trans geom.Trans

	parent *Cell
}

// Parent returns the cell this instance was inserted into.
func (i *Instance) Parent() *Cell { return i.parent }

// Target returns the cell this instance places.
func (i *Instance) Target() *Cell { return i.parent.layout.cells[i.Cell] }

// BBox returns the instance bounding box in the parent cell's frame.
func (i *Instance) BBox() geom.Box {
	return i.Trans.ApplyBox(i.Target().BBox())
}

// Move translates the instance by (dx, dy) in the parent frame.
func (i *Instance) Move(dx, dy int64) {
	i.Trans.Disp = i.Trans.Disp.Add(geom.Point{X: dx, Y: dy})
	i.parent.layout.gen++
}

// CopyTree deep-copies the subtree rooted at src (from another layout)
// into l and returns the new root cell. Shared cells in the source stay
// shared in the copy; name collisions get a numeric suffix. The source
// layout is left untouched, which is what lets library and submission
// cells be specialized without mutating the originals.
func (l *Layout) CopyTree(src *Cell) *Cell {
	copied := make(map[CellIndex]*Cell)
	return l.copyCell(src, copied)
}

func (l *Layout) copyCell(src *Cell, copied map[CellIndex]*Cell) *Cell {
	if dst, ok := copied[src.Index]; ok {
		return dst
	}
	dst := l.CreateCell(src.Name)
	copied[src.Index] = dst

	dst.Shapes = append(dst.Shapes, src.Shapes...)
	dst.Pins = append(dst.Pins, src.Pins...)
	for _, inst := range src.Insts {
		child := l.copyCell(src.layout.cells[inst.Cell], copied)
		dst.Insert(child, inst.Trans)
	}
	return dst
}

// Pin is a named, oriented, width-bearing connection point on a cell.
// Facing is the direction a route leaves the pin; Width is the caliper
// width of the waveguide or trace at that point.
type Pin struct {
	Name   string     `json:"name"`
	Pos    geom.Point `json:"pos"`
	Facing geom.Rot   `json:"facing"`
	Width  int64      `json:"width"`
}

// Pin returns the named pin on the cell.
func (c *Cell) Pin(name string) (Pin, bool) {
	for _, p := range c.Pins {
		if p.Name == name {
			return p, true
		}
	}
	return Pin{}, false
}

// AddPin registers a pin on the cell and draws its marker on the PinRec
// layer. Pin names are unique within a cell.
func (c *Cell) AddPin(p Pin) error {
	if _, exists := c.Pin(p.Name); exists {
		return errors.New(errors.ErrCodeInvalidLayout, "cell %q already has pin %q", c.Name, p.Name)
	}
	c.Pins = append(c.Pins, p)
	// Marker: a short path along the facing, centered on the pin.
	half := p.Facing.Dir().Scale(p.Width / 2)
	c.AddShape(PathShape(LayerPinRec, geom.Path{
		Points: []geom.Point{p.Pos.Sub(half), p.Pos.Add(half)},
		Width:  p.Width,
	}))
	return nil
}

// AbsPin is a pin resolved to the parent frame of an instance.
type AbsPin struct {
	Pos    geom.Point
	Facing geom.Rot
	Width  int64
}

// PinAbs resolves the named pin of the instance's cell to the parent
// frame: position mapped through the instance transform and facing
// rotated with it.
func (i *Instance) PinAbs(name string) (AbsPin, error) {
	p, ok := i.Target().Pin(name)
	if !ok {
		return AbsPin{}, errors.New(errors.ErrCodeConnection,
			"no pin %q on cell %q", name, i.Target().Name)
	}
	return AbsPin{
		Pos:    i.Trans.Apply(p.Pos),
		Facing: p.Facing.Add(i.Trans.Rot),
		Width:  p.Width,
	}, nil
}
