package layout

import (
	"testing"

	"github.com/photonforge/piclet/pkg/geom"
)

func TestCellBBoxShapesOnly(t *testing.T) {
	l := New("test")
	c := l.CreateCell("leaf")
	c.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: -10, Y1: -5, X2: 10, Y2: 5}))

	want := geom.Box{X1: -10, Y1: -5, X2: 10, Y2: 5}
	if got := c.BBox(); got != want {
		t.Errorf("BBox = %v, want %v", got, want)
	}
}

func TestCellBBoxThroughHierarchy(t *testing.T) {
	l := New("test")
	leaf := l.CreateCell("leaf")
	leaf.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 100, Y2: 50}))

	mid := l.CreateCell("mid")
	mid.Insert(leaf, geom.Translate(1000, 0))

	top := l.CreateCell("top")
	top.Insert(mid, geom.Trans{Rot: geom.R180})

	// leaf spans [1000,1100]x[0,50] in mid, negated by the R180 in top.
	want := geom.Box{X1: -1100, Y1: -50, X2: -1000, Y2: 0}
	if got := top.BBox(); got != want {
		t.Errorf("BBox = %v, want %v", got, want)
	}
}

func TestCellBBoxInvalidatedOnMutation(t *testing.T) {
	l := New("test")
	c := l.CreateCell("c")
	c.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	_ = c.BBox() // prime the memo

	c.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 200, Y2: 10}))
	if got := c.BBox(); got.Width() != 200 {
		t.Errorf("BBox not invalidated after mutation: %v", got)
	}
}

func TestCellBBoxTerminatesOnCycle(t *testing.T) {
	l := New("test")
	a := l.CreateCell("a")
	b := l.CreateCell("b")
	a.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	a.Insert(b, geom.Translate(100, 0))
	b.Insert(a, geom.Translate(100, 0))

	// Must not hang; the re-entrant branch contributes nothing.
	got := a.BBox()
	if got.Empty() {
		t.Error("BBox should still cover a's own shapes")
	}
}

func TestInstanceBBoxAndMove(t *testing.T) {
	l := New("test")
	leaf := l.CreateCell("leaf")
	leaf.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 40, Y2: 20}))
	top := l.CreateCell("top")
	inst := top.Insert(leaf, geom.Translate(100, 100))

	if got := inst.BBox(); got != (geom.Box{X1: 100, Y1: 100, X2: 140, Y2: 120}) {
		t.Errorf("BBox = %v", got)
	}

	inst.Move(50, -10)
	if got := inst.BBox(); got != (geom.Box{X1: 150, Y1: 90, X2: 190, Y2: 110}) {
		t.Errorf("BBox after Move = %v", got)
	}
}

func TestAddPinRejectsDuplicates(t *testing.T) {
	l := New("test")
	c := l.CreateCell("c")
	pin := Pin{Name: "opt1", Pos: geom.Point{X: 0, Y: 0}, Facing: geom.R180, Width: 800}
	if err := c.AddPin(pin); err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	if err := c.AddPin(pin); err == nil {
		t.Error("duplicate pin name should be rejected")
	}
}

func TestAddPinDrawsMarker(t *testing.T) {
	l := New("test")
	c := l.CreateCell("c")
	if err := c.AddPin(Pin{Name: "opt1", Width: 800, Facing: geom.R0}); err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	if len(c.Shapes) != 1 || c.Shapes[0].Layer != LayerPinRec {
		t.Errorf("expected one PinRec marker shape, got %+v", c.Shapes)
	}
}

func TestPinAbsMapsTransform(t *testing.T) {
	l := New("test")
	c := l.CreateCell("c")
	if err := c.AddPin(Pin{Name: "opt1", Pos: geom.Point{X: 100, Y: 0}, Facing: geom.R0, Width: 800}); err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	top := l.CreateCell("top")
	inst := top.Insert(c, geom.Trans{Rot: geom.R180, Disp: geom.Point{X: 1000, Y: 500}})

	abs, err := inst.PinAbs("opt1")
	if err != nil {
		t.Fatalf("PinAbs: %v", err)
	}
	if abs.Pos != (geom.Point{X: 900, Y: 500}) {
		t.Errorf("Pos = %v, want {900 500}", abs.Pos)
	}
	if abs.Facing != geom.R180 {
		t.Errorf("Facing = %v, want R180", abs.Facing)
	}
	if abs.Width != 800 {
		t.Errorf("Width = %d, want 800", abs.Width)
	}
}

func TestPinAbsMissingPin(t *testing.T) {
	l := New("test")
	c := l.CreateCell("c")
	top := l.CreateCell("top")
	inst := top.Insert(c, geom.Trans{})
	if _, err := inst.PinAbs("nope"); err == nil {
		t.Error("missing pin should error")
	}
}

func TestCopyTreeSharesAndIsolates(t *testing.T) {
	src := New("src")
	leaf := src.CreateCell("leaf")
	leaf.AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	root := src.CreateCell("root")
	root.Insert(leaf, geom.Translate(0, 0))
	root.Insert(leaf, geom.Translate(100, 0))

	dst := New("dst")
	copied := dst.CopyTree(root)

	// Shared cell stays shared: both instances point at one copy.
	if copied.Insts[0].Cell != copied.Insts[1].Cell {
		t.Error("shared source cell should map to one copied cell")
	}

	// Mutating the copy leaves the source untouched.
	copied.Insts[0].Target().AddShape(BoxShape(LayerWaveguide, geom.Box{X1: 0, Y1: 0, X2: 999, Y2: 999}))
	if len(leaf.Shapes) != 1 {
		t.Error("source cell mutated by copy specialization")
	}
}

func TestCreateCellUniqueNames(t *testing.T) {
	l := New("test")
	a := l.CreateCell("pad")
	b := l.CreateCell("pad")
	if a.Name == b.Name {
		t.Errorf("duplicate cell names: %q", a.Name)
	}
	if _, ok := l.Cell(b.Name); !ok {
		t.Errorf("suffixed cell %q not resolvable", b.Name)
	}
}
