package layout

import "github.com/photonforge/piclet/pkg/geom"

// ShapeKind discriminates the shape union.
type ShapeKind string

// Shape kinds.
const (
	ShapeBox  ShapeKind = "box"
	ShapePath ShapeKind = "path"
	ShapeText ShapeKind = "text"
)

// Shape is one geometric element on a named layer. Exactly one of Box,
// Path, Text is set, per Kind.
type Shape struct {
	Layer string     `json:"layer"`
	Kind  ShapeKind  `json:"kind"`
	Box   *geom.Box  `json:"box,omitempty"`
	Path  *geom.Path `json:"path,omitempty"`
	Text  *Text      `json:"text,omitempty"`
}

// Text is a label anchored at a point.
type Text struct {
	Value string     `json:"value"`
	At    geom.Point `json:"at"`
	Size  int64      `json:"size,omitempty"`
}

// BoxShape builds a box shape on the given layer.
func BoxShape(layer string, b geom.Box) Shape {
	return Shape{Layer: layer, Kind: ShapeBox, Box: &b}
}

// PathShape builds a path shape on the given layer.
func PathShape(layer string, p geom.Path) Shape {
	return Shape{Layer: layer, Kind: ShapePath, Path: &p}
}

// TextShape builds a text label on the given layer.
func TextShape(layer string, t Text) Shape {
	return Shape{Layer: layer, Kind: ShapeText, Text: &t}
}

// BBox returns the shape's bounding box. Text anchors contribute a point.
func (s Shape) BBox() geom.Box {
	switch s.Kind {
	case ShapeBox:
		return *s.Box
	case ShapePath:
		return s.Path.BBox()
	case ShapeText:
		return geom.BoxAround(s.Text.At, s.Text.At)
	default:
		return geom.EmptyBox()
	}
}
