package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// Document is the persisted form of a layout: cells referenced by name so
// the format is diffable and survives re-import byte-identically.
type Document struct {
	Name  string    `json:"name"`
	Top   string    `json:"top,omitempty"`
	Cells []CellDoc `json:"cells"`
}

// CellDoc is one cell in a Document.
type CellDoc struct {
	Name   string    `json:"name"`
	Shapes []Shape   `json:"shapes,omitempty"`
	Pins   []Pin     `json:"pins,omitempty"`
	Insts  []InstDoc `json:"insts,omitempty"`
}

// InstDoc is one placed instance, referencing its cell by name.
type InstDoc struct {
	Cell  string     `json:"cell"`
	Trans geom.Trans `json:"trans"`
}

// MarshalLayout converts a layout to indented JSON bytes.
func MarshalLayout(l *Layout, top string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeLayoutTo(l, top, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes a layout to a JSON file with 0644 permissions and
// returns the written path.
func WriteFile(l *Layout, top, path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	defer f.Close()
	if err := writeLayoutTo(l, top, f); err != nil {
		return "", err
	}
	return path, nil
}

// Write writes a layout as JSON to an io.Writer.
func Write(l *Layout, top string, w io.Writer) error {
	return writeLayoutTo(l, top, w)
}

// ReadFile reads a JSON layout file. The second return value is the top
// cell named by the document, or nil when the document names none.
func ReadFile(path string) (*Layout, *Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return readLayoutFrom(f)
}

// Read decodes a JSON layout from an io.Reader.
func Read(r io.Reader) (*Layout, *Cell, error) {
	return readLayoutFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeLayoutTo(l *Layout, top string, w io.Writer) error {
	doc := FromLayout(l, top)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode layout %q", l.Name)
	}
	return nil
}

func readLayoutFrom(r io.Reader) (*Layout, *Cell, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode layout")
	}
	return ToLayout(doc)
}

// FromLayout converts a layout to its document form. Cells appear in
// creation order so output is deterministic for identical inputs.
func FromLayout(l *Layout, top string) Document {
	doc := Document{Name: l.Name, Top: top}
	for _, c := range l.Cells() {
		cd := CellDoc{Name: c.Name, Shapes: c.Shapes, Pins: c.Pins}
		for _, inst := range c.Insts {
			cd.Insts = append(cd.Insts, InstDoc{
				Cell:  inst.Target().Name,
				Trans: inst.Trans,
			})
		}
		doc.Cells = append(doc.Cells, cd)
	}
	return doc
}

// ToLayout materializes a document. Instance references to undeclared
// cells are rejected; forward references and shared cells are fine.
func ToLayout(doc Document) (*Layout, *Cell, error) {
	l := New(doc.Name)
	for _, cd := range doc.Cells {
		c := l.CreateCell(cd.Name)
		if c.Name != cd.Name {
			return nil, nil, errors.New(errors.ErrCodeInvalidLayout,
				"duplicate cell name %q", cd.Name)
		}
	}
	for _, cd := range doc.Cells {
		c, _ := l.Cell(cd.Name)
		c.Shapes = append(c.Shapes, cd.Shapes...)
		for _, p := range cd.Pins {
			c.Pins = append(c.Pins, p)
		}
		for _, id := range cd.Insts {
			child, ok := l.Cell(id.Cell)
			if !ok {
				return nil, nil, errors.New(errors.ErrCodeInvalidLayout,
					"cell %q instantiates undeclared cell %q", cd.Name, id.Cell)
			}
			c.Insert(child, id.Trans)
		}
	}
	if doc.Top == "" {
		return l, nil, nil
	}
	top, ok := l.Cell(doc.Top)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeInvalidLayout,
			"top cell %q not declared", doc.Top)
	}
	return l, top, nil
}

// TopCells returns all cells no other cell instantiates, in creation
// order. Used when importing submissions whose document names no top.
func (l *Layout) TopCells() []*Cell {
	referenced := make(map[CellIndex]bool)
	for _, c := range l.cells {
		for _, inst := range c.Insts {
			referenced[inst.Cell] = true
		}
	}
	var tops []*Cell
	for _, c := range l.cells {
		if !referenced[c.Index] {
			tops = append(tops, c)
		}
	}
	return tops
}

// String summarizes the layout for logs.
func (l *Layout) String() string {
	return fmt.Sprintf("layout %q (%d cells)", l.Name, len(l.cells))
}
