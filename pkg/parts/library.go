package parts

import (
	"sync"

	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
)

// Library is a read-through cache of materialized part cells. Lookups
// miss with (nil, false, nil); a hit returns a cell owned by the
// library's internal layout, which callers must treat as read-only and
// copy before specializing. Safe for concurrent lookups.
type Library struct {
	mu   sync.Mutex
	src  Source
	l    *layout.Layout
	memo map[string]*layout.Cell
}

// NewLibrary creates a library over the given definition source.
func NewLibrary(src Source) *Library {
	return &Library{
		src:  src,
		l:    layout.New("partslib"),
		memo: make(map[string]*layout.Cell),
	}
}

// Default returns a library over the shipped part set.
func Default() *Library {
	return NewLibrary(DefaultSource())
}

// Lookup returns the materialized cell for (name, library), building and
// memoizing it on first use.
func (lib *Library) Lookup(name, library string) (*layout.Cell, bool, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	k := key(name, library)
	if c, ok := lib.memo[k]; ok {
		return c, true, nil
	}
	def, ok, err := lib.src.Definition(name, library)
	if err != nil || !ok {
		return nil, false, err
	}
	c := materialize(lib.l, def)
	lib.memo[k] = c
	return c, true, nil
}

// materialize builds a cell from a definition: the device body on the
// DevRec layer plus the declared pins.
func materialize(l *layout.Layout, def *Def) *layout.Cell {
	c := l.CreateCell(def.Name)
	c.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{
		X1: def.Box[0], Y1: def.Box[1], X2: def.Box[2], Y2: def.Box[3],
	}))
	for _, p := range def.Pins {
		rot, _ := geom.RotFromDegrees(p.Facing) // validated by ParseSource
		// AddPin cannot collide: ParseSource rejects duplicate parts and
		// pin names come from one definition.
		_ = c.AddPin(layout.Pin{
			Name:   p.Name,
			Pos:    geom.Point{X: p.X, Y: p.Y},
			Facing: rot,
			Width:  p.Width,
		})
	}
	return c
}
