package position

import (
	"slices"

	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Place sweeps the subsections from left to right and assigns half-unit
// horizontal positions. Within a subsection the RIGHT legs of crossover
// cells come first, then vertical intern cells, extern cells in order and
// the LEFT legs of crossover cells. Every subsection is at least one column
// wide. A flat cell takes the gap between its two subsections. Busbars span
// from the subsection where they appear to the one where they end.
//
// A crossover cell whose root is a single bus-to-bus run has no legs: it
// reserves one column in each of its subsections and the run spans from
// the first to the second.
//
// Intern cells other than flat ones then get a level: the lowest level at
// which their column range overlaps no other cell.
func Place(g *sld.Graph, subs []*Subsection) {
	h := 0
	opened := make(map[*sld.Node]bool)
	anchors := make(map[*sld.Cell]*[2]int)
	anchor := func(c *sld.Cell, side sld.Side) {
		a := anchors[c]
		if a == nil {
			a = &[2]int{}
			anchors[c] = a
		}
		if side == sld.SideLeft {
			a[0] = h
		} else {
			a[1] = h
		}
		h += 2
	}
	for k, sub := range subs {
		for r, b := range sub.Buses {
			if b != nil && !opened[b] {
				opened[b] = true
				b.BusPos = sld.Position{H: h, V: r + 1}
			}
		}

		start := h
		for _, c := range sub.Rights {
			if c.Shape == sld.ShapeCrossover {
				leg := c.Leg(sld.SideRight)
				if leg == nil {
					anchor(c, sld.SideRight)
					continue
				}
				placeBlock(leg, h, 0)
				h += max(leg.Pos.HSpan, 2)
			}
		}
		for _, c := range sub.Verticals {
			placeBlock(c.Root, h, 0)
			h += max(c.Root.Pos.HSpan, 2)
		}
		for _, c := range sub.Externs {
			placeBlock(c.Root, h, 0)
			h += max(c.Root.Pos.HSpan, 2)
		}
		for _, c := range sub.Lefts {
			if c.Shape == sld.ShapeCrossover {
				leg := c.Leg(sld.SideLeft)
				if leg == nil {
					anchor(c, sld.SideLeft)
					continue
				}
				placeBlock(leg, h, 0)
				h += max(leg.Pos.HSpan, 2)
			}
		}
		h = max(h, start+2)

		var next *Subsection
		if k+1 < len(subs) {
			next = subs[k+1]
		}
		for r, b := range sub.Buses {
			if b == nil || (next != nil && next.Buses[r] == b) {
				continue
			}
			b.BusPos.HSpan = h - b.BusPos.H
		}

		gap := 0
		for _, c := range sub.Lefts {
			if c.Shape == sld.ShapeFlat {
				placeBlock(c.Root, h, 0)
				gap = max(gap, c.Root.Pos.HSpan, 2)
			}
		}
		h += gap
	}
	g.HSpan = h

	for _, sub := range subs {
		for _, c := range sub.Lefts {
			if c.Shape != sld.ShapeCrossover {
				continue
			}
			if a, ok := anchors[c]; ok {
				placeBlock(c.Root, a[0], 0)
				c.Root.Pos.HSpan = a[1] + 2 - a[0]
				continue
			}
			spanLegs(c)
		}
	}
	assignLevels(g)
}

// placeBlock positions b at (h, v) and lays its children out: serial
// children follow each other along the axis, parallel children sit side by
// side across it unless stacked.
func placeBlock(b *sld.Block, h, v int) {
	b.Pos.H, b.Pos.V = h, v
	switch {
	case b.IsPrimary():
	case b.Kind == sld.Serial && b.Axis == sld.Horizontal:
		for _, c := range b.Children {
			placeBlock(c, h, v)
			h += c.Pos.HSpan
		}
	case b.Kind == sld.Serial:
		for _, c := range b.Children {
			placeBlock(c, h+(b.Pos.HSpan-c.Pos.HSpan)/2, v)
			v += c.Pos.VSpan
		}
	case b.Stacked:
		for _, c := range b.Children {
			placeBlock(c, h, v)
		}
	case b.Axis == sld.Vertical:
		for _, c := range b.Children {
			placeBlock(c, h, v)
			h += c.Pos.HSpan
		}
	default:
		for _, c := range b.Children {
			placeBlock(c, h, v)
			v += c.Pos.VSpan
		}
	}
}

// spanLegs stretches the root of a crossover cell from its LEFT leg to its
// RIGHT leg.
func spanLegs(c *sld.Cell) {
	left, right := c.Leg(sld.SideLeft), c.Leg(sld.SideRight)
	if left == nil || right == nil {
		return
	}
	c.Root.Pos.H = left.Pos.H
	c.Root.Pos.HSpan = right.Pos.H + right.Pos.HSpan - left.Pos.H
}

func assignLevels(g *sld.Graph) {
	var cells []*sld.Cell
	for _, c := range g.CellsOfKind(sld.InternCell) {
		if c.Shape == sld.ShapeFlat {
			c.Level = 0
			continue
		}
		cells = append(cells, c)
	}
	slices.SortStableFunc(cells, func(a, b *sld.Cell) int {
		if a.Root.Pos.H != b.Root.Pos.H {
			return a.Root.Pos.H - b.Root.Pos.H
		}
		return a.Number - b.Number
	})
	var levels [][]*sld.Cell
	for _, c := range cells {
		lo, hi := c.Root.Pos.H, c.Root.Pos.H+c.Root.Pos.HSpan
		l := 0
		for ; l < len(levels); l++ {
			if !slices.ContainsFunc(levels[l], func(o *sld.Cell) bool {
				return lo < o.Root.Pos.H+o.Root.Pos.HSpan && o.Root.Pos.H < hi
			}) {
				break
			}
		}
		if l == len(levels) {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], c)
		c.Level = l + 1
		c.Root.Pos.V = 2 * c.Level
	}
}
