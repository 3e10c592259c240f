package position

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Finder is a position strategy. Find must leave every busbar with a
// structural position, every extern cell with a direction and an order and
// every feeder with an order, and return the slots from left to right.
type Finder interface {
	Name() string
	Find(g *sld.Graph, p params.Parameters, logger *log.Logger) ([]*Slot, error)
}

// Finish completes a strategy run once the slots are ordered: rows and
// columns for the busbars, then directions and orders for the cells.
func Finish(g *sld.Graph, ordered []*Slot, logger *log.Logger) error {
	if err := AssignRows(g, ordered); err != nil {
		return err
	}
	AssignOrders(g, ordered)
	logger.Debug("positions resolved", "graph", g.ID, "slots", len(ordered), "rows", g.MaxRow)
	return nil
}

// lane is a run of busbars drawn on one row, left to right, over a range
// of slots.
type lane struct {
	buses      []*sld.Node
	start, end int
}

func (l *lane) minBusbar() (int, int) {
	bi, idx := l.buses[0].BusbarIndex, l.buses[0].Index
	for _, b := range l.buses[1:] {
		if b.BusbarIndex < bi || (b.BusbarIndex == bi && b.Index < idx) {
			bi, idx = b.BusbarIndex, b.Index
		}
	}
	return bi, idx
}

// AssignRows gives each busbar a row and a column. Every busbar covers the
// range of slots between the first and the last one holding it; busbars
// joined by a two-bus intern cell share a lane when their ranges follow
// each other. Lanes are sorted by busbar index and packed into the lowest
// row where they overlap no other lane; columns count lanes left to right
// within a row.
func AssignRows(g *sld.Graph, ordered []*Slot) error {
	laneOf := make(map[*sld.Node]*lane)
	var lanes []*lane
	for _, b := range g.Buses() {
		first, last := -1, -1
		for k, s := range ordered {
			if s.Has(b) {
				if first < 0 {
					first = k
				}
				last = k
			}
		}
		if first < 0 {
			return errors.New(errors.ErrCodeInconsistentState, "bus is not part of any slot").At(b.ID)
		}
		l := &lane{buses: []*sld.Node{b}, start: first, end: last}
		laneOf[b] = l
		lanes = append(lanes, l)
	}

	interns := g.CellsOfKind(sld.InternCell)
	sld.SortCells(interns)
	for _, c := range interns {
		if c.Shape != sld.ShapeMaybeFlat {
			continue
		}
		lb, rb := c.SideBuses(sld.SideLeft), c.SideBuses(sld.SideRight)
		if len(lb) != 1 || len(rb) != 1 {
			continue
		}
		a, b := laneOf[lb[0]], laneOf[rb[0]]
		if a == b {
			continue
		}
		if b.end < a.start {
			a, b = b, a
		}
		if a.end >= b.start {
			continue
		}
		a.buses = append(a.buses, b.buses...)
		a.end = b.end
		for _, n := range b.buses {
			laneOf[n] = a
		}
		lanes = slices.DeleteFunc(lanes, func(l *lane) bool { return l == b })
	}

	slices.SortStableFunc(lanes, func(x, y *lane) int {
		xb, xi := x.minBusbar()
		yb, yi := y.minBusbar()
		if xb != yb {
			return xb - yb
		}
		return xi - yi
	})
	var rows [][]*lane
	for _, l := range lanes {
		r := 0
		for ; r < len(rows); r++ {
			if !slices.ContainsFunc(rows[r], func(o *lane) bool { return l.start <= o.end && o.start <= l.end }) {
				break
			}
		}
		if r == len(rows) {
			rows = append(rows, nil)
		}
		rows[r] = append(rows[r], l)
	}

	g.MaxRow = len(rows)
	for r, row := range rows {
		slices.SortFunc(row, func(x, y *lane) int { return x.start - y.start })
		h := 1
		for _, l := range row {
			for _, b := range l.buses {
				b.Struct = &sld.BusPosition{V: r + 1, H: h}
				h++
			}
		}
	}
	return nil
}

// AssignOrders walks the slots left to right. Extern cells get increasing
// orders and alternate between TOP and BOTTOM unless one of their feeders
// carries a preset direction; feeders are numbered in the same sweep.
// Extern cells bridged by a shunt then take the direction of the LEFT
// sibling, and so does the shunt cell.
func AssignOrders(g *sld.Graph, ordered []*Slot) {
	order, feederOrder := 0, 0
	next := sld.DirTop
	for _, s := range ordered {
		for _, c := range s.Externs {
			dir := presetDirection(c)
			if dir == sld.DirUndefined {
				dir = next
				next = next.Opposite()
			}
			c.Direction = dir
			c.Order = order
			order++
			for _, f := range c.Feeders() {
				f.SetOrder(feederOrder)
				feederOrder++
			}
		}
	}

	shunts := g.CellsOfKind(sld.ShuntCell)
	sld.SortCells(shunts)
	for _, sh := range shunts {
		left, right := sh.Sibling(sld.SideLeft), sh.Sibling(sld.SideRight)
		if left == nil {
			continue
		}
		sh.Direction = left.Direction
		if right != nil {
			right.Direction = left.Direction
		}
	}

	for _, c := range g.CellsOfKind(sld.ExternCell) {
		for _, f := range c.Feeders() {
			f.Direction = c.Direction
		}
	}
}

func presetDirection(c *sld.Cell) sld.Direction {
	for _, f := range c.Feeders() {
		if f.Direction == sld.DirTop || f.Direction == sld.DirBottom {
			return f.Direction
		}
	}
	return sld.DirUndefined
}
