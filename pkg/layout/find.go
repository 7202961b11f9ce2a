package layout

import "github.com/photonforge/piclet/pkg/geom"

// Match is the result of a hierarchy search: the cell that satisfied the
// predicate, the absolute (root-frame) center of the matched instance's
// bounding box, and the transform mapping the matched cell's frame to the
// root frame.
type Match struct {
	Cell *Cell
	Pos  geom.Point
	Abs  geom.Trans
}

// FindNamed searches the instance tree under root for a component whose
// cell name satisfies pred.
//
// The traversal is an explicit queue, not language recursion. Each visited
// cell first scans its direct child instances, so a match close to the
// root wins over a deeper one, and whole levels are exhausted before the
// traversal descends. A single visited set spans the whole search: a cell
// instantiated many times is searched once, which bounds the walk at
// O(distinct reachable cells) and terminates on re-entrant hierarchies.
//
// A miss returns ok=false; it is a lookup result, not an error, and
// callers choose their own fallback.
func FindNamed(root *Cell, pred func(name string) bool) (Match, bool) {
	type entry struct {
		cell *Cell
		abs  geom.Trans // maps this cell's frame to the root frame
	}

	visited := map[CellIndex]bool{root.Index: true}
	queue := []entry{{cell: root}}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		// Direct children take priority over deeper matches.
		for _, inst := range e.cell.Insts {
			child := inst.Target()
			if pred(child.Name) {
				return Match{
					Cell: child,
					Pos:  e.abs.ApplyBox(inst.BBox()).Center(),
					Abs:  e.abs.Compose(inst.Trans),
				}, true
			}
		}

		for _, inst := range e.cell.Insts {
			child := inst.Target()
			if visited[child.Index] {
				continue
			}
			visited[child.Index] = true
			queue = append(queue, entry{cell: child, abs: e.abs.Compose(inst.Trans)})
		}
	}

	return Match{}, false
}
