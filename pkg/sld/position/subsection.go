package position

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Subsection is a column range over which the busbar of every row is fixed.
type Subsection struct {
	Index int
	// Vector holds the column of the busbar of each row, 0 for an empty row.
	Vector []int
	// Buses holds the busbar of each row, nil for an empty row.
	Buses []*sld.Node
	Slots []*Slot

	// Externs are sorted by order.
	Externs []*sld.Cell
	// Verticals are intern cells drawn entirely within the subsection.
	Verticals []*sld.Cell
	// Lefts and Rights are flat and crossover intern cells whose LEFT
	// (respectively RIGHT) leg is drawn here.
	Lefts, Rights []*sld.Cell
}

// Holds reports whether bus is present in the subsection.
func (s *Subsection) Holds(bus *sld.Node) bool {
	r := bus.Row()
	return r >= 1 && r <= len(s.Vector) && s.Vector[r-1] == bus.Column()
}

// HoldsAll reports whether every bus is present in the subsection.
func (s *Subsection) HoldsAll(buses []*sld.Node) bool {
	for _, b := range buses {
		if !s.Holds(b) {
			return false
		}
	}
	return true
}

// Partition cuts the ordered slots into subsections and settles the shape
// of intern cells:
//
//   - a cell whose sides land in one subsection is VERTICAL
//   - a MAYBE_FLAT cell joining adjacent busbars of a row across
//     neighbouring subsections is FLAT
//   - other two-sided cells are CROSSOVER, reversed when needed so the
//     LEFT leg is drawn to the left
//
// With shunt handling on, extern cells bridged by a shunt are made
// neighbours and the extern orders are renumbered.
func Partition(g *sld.Graph, ordered []*Slot, p params.Parameters, logger *log.Logger) ([]*Subsection, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	for _, b := range g.Buses() {
		if b.Struct == nil {
			return nil, errors.New(errors.ErrCodeInconsistentState, "bus has no structural position").At(b.ID)
		}
	}

	subs := buildSubsections(g, ordered)
	subOf := make(map[*Slot]int)
	for k, sub := range subs {
		for _, s := range sub.Slots {
			subOf[s] = k
			sub.Externs = append(sub.Externs, s.Externs...)
		}
		slices.SortStableFunc(sub.Externs, byOrder)
	}

	interns := g.CellsOfKind(sld.InternCell)
	sld.SortCells(interns)
	for _, c := range interns {
		settle(c, subs, subOf)
	}

	if p.HandleShunts {
		groupShunts(g, subs)
		renumber(subs)
	}
	checkMonotonic(subs, logger)

	for _, sub := range subs {
		logger.Debug("subsection", "graph", g.ID, "index", sub.Index, "vector", sub.Vector,
			"extern", len(sub.Externs), "vertical", len(sub.Verticals),
			"left", len(sub.Lefts), "right", len(sub.Rights))
	}
	return subs, nil
}

func byOrder(a, b *sld.Cell) int { return a.Order - b.Order }

// buildSubsections gives each slot the column vector of its busbars, fills
// the rows of busbars over their whole slot range, then merges consecutive
// vectors agreeing on every row both define.
func buildSubsections(g *sld.Graph, ordered []*Slot) []*Subsection {
	vecs := make([][]int, len(ordered))
	for k, s := range ordered {
		v := make([]int, g.MaxRow)
		for _, b := range s.Buses {
			v[b.Row()-1] = b.Column()
		}
		vecs[k] = v
	}
	for _, b := range g.Buses() {
		r, h := b.Row()-1, b.Column()
		first, last := -1, -1
		for k, v := range vecs {
			if v[r] == h {
				if first < 0 {
					first = k
				}
				last = k
			}
		}
		for k := first; k >= 0 && k <= last; k++ {
			if vecs[k][r] == 0 {
				vecs[k][r] = h
			}
		}
	}

	var subs []*Subsection
	for k, s := range ordered {
		if n := len(subs); n > 0 && compatible(subs[n-1].Vector, vecs[k]) {
			cur := subs[n-1]
			for r, h := range vecs[k] {
				if h != 0 {
					cur.Vector[r] = h
				}
			}
			cur.Slots = append(cur.Slots, s)
			continue
		}
		subs = append(subs, &Subsection{Index: len(subs), Vector: slices.Clone(vecs[k]), Slots: []*Slot{s}})
	}
	for _, sub := range subs {
		sub.Buses = make([]*sld.Node, len(sub.Vector))
		for r, h := range sub.Vector {
			if h != 0 {
				sub.Buses[r] = g.BusAt(r+1, h)
			}
		}
	}
	return subs
}

func compatible(a, b []int) bool {
	for r := range a {
		if a[r] != 0 && b[r] != 0 && a[r] != b[r] {
			return false
		}
	}
	return true
}

// settle allocates an intern cell and fixes its shape.
func settle(c *sld.Cell, subs []*Subsection, subOf map[*Slot]int) {
	whole, kL, kR := -1, -1, -1
	for _, sub := range subs {
		for _, s := range sub.Slots {
			side, ok := s.SideOf(c)
			if !ok {
				continue
			}
			switch side {
			case sld.SideLeft:
				kL = subOf[s]
			case sld.SideRight:
				kR = subOf[s]
			default:
				whole = subOf[s]
			}
		}
	}
	switch {
	case whole >= 0:
		vertical(c, subs[whole])
		return
	case kL < 0 || kR < 0:
		vertical(c, subs[max(kL, kR, 0)])
		return
	case kL == kR:
		vertical(c, subs[kL])
		return
	}

	if kL > kR {
		c.Reverse()
		kL, kR = kR, kL
	}
	kL = slip(subs, kL, kR, c.SideBuses(sld.SideLeft))
	kR = slip(subs, kR, kL, c.SideBuses(sld.SideRight))
	if c.Shape == sld.ShapeMaybeFlat && kR == kL+1 && adjacentInRow(c) {
		c.Shape = sld.ShapeFlat
		c.Direction = sld.DirMiddle
	} else {
		c.Shape = sld.ShapeCrossover
	}
	subs[kL].Lefts = append(subs[kL].Lefts, c)
	subs[kR].Rights = append(subs[kR].Rights, c)
}

func vertical(c *sld.Cell, sub *Subsection) {
	if c.HasShape(sld.ShapeMaybeFlat, sld.ShapeUndefined) {
		c.Shape = sld.ShapeVertical
	}
	sub.Verticals = append(sub.Verticals, c)
}

// slip moves a side from subsection k one step at a time towards the
// subsection of the other side while the next one still holds every
// busbar of the side. The two sides never meet.
func slip(subs []*Subsection, k, towards int, buses []*sld.Node) int {
	step := 1
	if towards < k {
		step = -1
	}
	for next := k + step; next != towards && subs[next].HoldsAll(buses); next += step {
		k = next
	}
	return k
}

func adjacentInRow(c *sld.Cell) bool {
	lb, rb := c.SideBuses(sld.SideLeft), c.SideBuses(sld.SideRight)
	if len(lb) != 1 || len(rb) != 1 {
		return false
	}
	return lb[0].Row() == rb[0].Row() && rb[0].Column()-lb[0].Column() == 1
}

// groupShunts moves the RIGHT sibling of every shunt next to its LEFT
// sibling when both sit in the same subsection, and orders their feeders
// so that those closest to the shunt face each other.
func groupShunts(g *sld.Graph, subs []*Subsection) {
	shunts := g.CellsOfKind(sld.ShuntCell)
	sld.SortCells(shunts)
	for _, sh := range shunts {
		a, b := sh.Sibling(sld.SideLeft), sh.Sibling(sld.SideRight)
		if a == nil || b == nil {
			continue
		}
		for _, sub := range subs {
			ia, ib := slices.Index(sub.Externs, a), slices.Index(sub.Externs, b)
			if ia < 0 || ib < 0 {
				continue
			}
			sub.Externs = slices.Delete(sub.Externs, ib, ib+1)
			ia = slices.Index(sub.Externs, a)
			sub.Externs = slices.Insert(sub.Externs, ia+1, b)
		}
		sortFeedersByHinge(a, sh, true)
		sortFeedersByHinge(b, sh, false)
	}
}

// sortFeedersByHinge reorders the feeder orders of c by their distance to
// the hinge shared with sh: nearest last when the shunt is on the right,
// nearest first otherwise.
func sortFeedersByHinge(c, sh *sld.Cell, nearestLast bool) {
	feeders := c.Feeders()
	if len(feeders) < 2 {
		return
	}
	var hinge *sld.Node
	for _, n := range sh.ShuntNodes() {
		if c.Contains(n) {
			hinge = n
		}
	}
	if hinge == nil {
		return
	}
	dist := distances(c, hinge)
	orders := make([]int, len(feeders))
	for i, f := range feeders {
		orders[i] = f.Order
	}
	slices.Sort(orders)
	slices.SortStableFunc(feeders, func(x, y *sld.Node) int {
		if nearestLast {
			return dist[y] - dist[x]
		}
		return dist[x] - dist[y]
	})
	for i, f := range feeders {
		f.SetOrder(orders[i])
	}
}

func distances(c *sld.Cell, from *sld.Node) map[*sld.Node]int {
	g := from.Graph()
	dist := map[*sld.Node]int{from: 0}
	queue := []*sld.Node{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range g.Adjacent(n) {
			if _, seen := dist[m]; seen || !c.Contains(m) || m.IsBus() {
				continue
			}
			dist[m] = dist[n] + 1
			queue = append(queue, m)
		}
	}
	return dist
}

// renumber gives extern cells consecutive orders in subsection order, and
// their feeders consecutive orders in the same sweep.
func renumber(subs []*Subsection) {
	order, feederOrder := 0, 0
	for _, sub := range subs {
		for _, c := range sub.Externs {
			c.Order = order
			order++
			feeders := c.Feeders()
			slices.SortStableFunc(feeders, func(x, y *sld.Node) int { return x.Order - y.Order })
			for _, f := range feeders {
				f.SetOrder(feederOrder)
				feederOrder++
			}
		}
	}
}

// checkMonotonic logs an inconsistent state when extern orders go
// backwards from one subsection to the next.
func checkMonotonic(subs []*Subsection, logger *log.Logger) {
	last := -1
	for _, sub := range subs {
		for _, c := range sub.Externs {
			if c.Order < last {
				logger.Warn("inconsistent state: extern order not monotonic with subsections",
					"cell", c.ID(), "order", c.Order, "previous", last, "subsection", sub.Index)
			}
			last = max(last, c.Order)
		}
	}
}
