// Package coord converts structural positions into panel coordinates.
//
// Busbar rows are stacked from the top of the panel, below the area taken
// by TOP extern cells and intern cell levels. Extern cells hang from the
// first bus row (TOP) or the last one (BOTTOM): leg switches stay within the
// stack height next to the busbars, feeders sit on the feeder line and
// bodies share the room in between. Intern cells rise from their busbars to
// the height of their level, except flat cells which stay on their bus row.
// Shunt cells run straight between their two hinges.
//
// All coordinates written by [Compute] are panel-local; the panel frame is
// placed afterwards by a [Placer].
package coord

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Compute writes the coordinates of every node of g and the size of its
// frame. It can be run again after the snake-line paddings of g change.
func Compute(g *sld.Graph, p params.Parameters, logger *log.Logger) (Geometry, error) {
	if g == nil {
		return Geometry{}, errors.New(errors.ErrCodePrecondition, "nil graph")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	for _, b := range g.Buses() {
		if b.Struct == nil {
			return Geometry{}, errors.New(errors.ErrCodeInconsistentState, "bus has no structural position").At(b.ID)
		}
	}
	for _, c := range g.Cells() {
		if c.Root == nil {
			return Geometry{}, errors.New(errors.ErrCodePrecondition, "cell %s has no block", c.ID())
		}
	}

	geo := NewGeometry(g, p)
	g.Frame.Width, g.Frame.Height = geo.Width, geo.Height

	k := &calc{g: g, p: p, geo: geo, placed: make([]bool, g.NodeCount())}
	for _, b := range g.Buses() {
		b.X = geo.X(b.BusPos.H)
		b.Y = geo.BusY(b.Row())
		b.BusWidth = math.Max(geo.Span(b.BusPos.HSpan)-p.HorizontalBusPadding, 0)
		k.placed[b.Index] = true
	}

	cells := append([]*sld.Cell(nil), g.Cells()...)
	sld.SortCells(cells)
	for _, c := range cells {
		switch c.Kind {
		case sld.ExternCell:
			k.extern(c)
		case sld.InternCell:
			k.intern(c)
		case sld.ShuntCell:
			k.shunt(c)
		}
	}

	logger.Debug("coordinates computed", "graph", g.ID,
		"width", geo.Width, "height", geo.Height, "first_bus_y", geo.FirstBusY)
	return geo, nil
}

type calc struct {
	g      *sld.Graph
	p      params.Parameters
	geo    Geometry
	placed []bool
}

// externFrame holds the landmarks of one extern cell along its axis.
type externFrame struct {
	sign              float64
	stackEnd, feederY float64
}

func (k *calc) centerX(b *sld.Block) float64 {
	return k.geo.X(b.Pos.H) + k.geo.Span(b.Pos.HSpan)/2
}

func (k *calc) extern(c *sld.Cell) {
	dir := c.Direction
	if dir != sld.DirBottom {
		dir = sld.DirTop
	}
	sign, anchor := -1.0, k.geo.FirstBusY
	if dir == sld.DirBottom {
		sign, anchor = 1, k.geo.LastBusY
	}
	e := externFrame{
		sign:     sign,
		stackEnd: anchor + sign*k.p.StackHeight,
		feederY:  k.geo.FeederY(dir),
	}
	bodyEnd := e.feederY - sign*k.p.FeederSpan
	k.externBlock(c.Root, e.stackEnd, bodyEnd, e)

	for _, f := range c.Feeders() {
		f.Orientation = sld.OrientUp
		if dir == sld.DirBottom {
			f.Orientation = sld.OrientDown
		}
	}
}

// externBlock places b, whose body content runs from ya to yb.
func (k *calc) externBlock(b *sld.Block, ya, yb float64, e externFrame) {
	x := k.centerX(b)
	b.Coord = sld.Coord{X: x, Y: (ya + yb) / 2, XSpan: k.geo.Span(b.Pos.HSpan), YSpan: math.Abs(yb - ya)}
	switch {
	case b.Kind == sld.LegPrimary:
		k.leg(b, e.stackEnd, e.feederY)
	case b.Kind == sld.FeederPrimary:
		k.run(b.Nodes, x, yb, x, e.feederY, false)
	case b.Kind == sld.BodyPrimary:
		k.run(b.Nodes, x, ya, x, yb, false)
	case b.Kind == sld.Serial:
		total := 0
		for _, child := range b.Children {
			if isBody(child) {
				total += child.Pos.VSpan
			}
		}
		cur := ya
		for _, child := range b.Children {
			if !isBody(child) || total == 0 {
				k.externBlock(child, cur, cur, e)
				continue
			}
			part := (yb - ya) * float64(child.Pos.VSpan) / float64(total)
			k.externBlock(child, cur, cur+part, e)
			cur += part
		}
	default:
		for i, child := range b.Children {
			ce := e
			if b.Stacked && child.Kind == sld.FeederPrimary {
				ce.feederY -= e.sign * float64(i) * k.p.FeederSpan / float64(len(b.Children))
			}
			k.externBlock(child, ya, yb, ce)
		}
	}
}

func isBody(b *sld.Block) bool { return !b.IsLegLike() && b.Kind != sld.FeederPrimary }

// leg places a leg from its busbar to end. A stacked three-node leg keeps
// its disconnector on the busbar; a leg ending on a feeder reaches the
// feeder line.
func (k *calc) leg(b *sld.Block, end, feederY float64) {
	x := k.centerX(b)
	bus := b.Nodes[0]
	if b.End().IsFeeder() {
		end = feederY
	}
	if b.Parent != nil && b.Parent.Stacked && len(b.Nodes) == 3 {
		k.set(b.Nodes[1], x, bus.Y, false)
		k.set(b.Nodes[2], x, end, false)
		return
	}
	k.run(b.Nodes, x, bus.Y, x, end, false)
}

// run spreads nodes evenly from (xa, ya) to (xb, yb). Busbars are skipped;
// a non-bus extremity placed earlier replaces the corresponding end point.
func (k *calc) run(nodes []*sld.Node, xa, ya, xb, yb float64, horizontal bool) {
	first, last := nodes[0], nodes[len(nodes)-1]
	if !first.IsBus() && k.placed[first.Index] {
		xa, ya = first.X, first.Y
	}
	if len(nodes) > 1 && !last.IsBus() && k.placed[last.Index] {
		xb, yb = last.X, last.Y
	}
	n := len(nodes) - 1
	for i, node := range nodes {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		k.set(node, xa+(xb-xa)*t, ya+(yb-ya)*t, horizontal)
	}
}

func (k *calc) set(n *sld.Node, x, y float64, horizontal bool) {
	if n.IsBus() || k.placed[n.Index] {
		return
	}
	n.X, n.Y = x, y
	n.Rotated = horizontal && n.IsSwitch()
	k.placed[n.Index] = true
}

func (k *calc) intern(c *sld.Cell) {
	if c.Shape == sld.ShapeFlat {
		k.flat(c)
		return
	}
	bodyY := k.geo.FirstBusY - float64(max(c.Level, 1))*k.p.InternCellHeight
	c.Root.Walk(func(b *sld.Block) {
		if b.Kind == sld.LegPrimary && b.Axis == sld.Vertical {
			k.leg(b, bodyY, bodyY)
		}
	})
	c.Root.Walk(func(b *sld.Block) {
		x := k.centerX(b)
		if b.Axis == sld.Vertical {
			top := bodyY
			bottom := k.geo.FirstBusY
			if buses := b.Buses(); len(buses) > 0 {
				bottom = buses[len(buses)-1].Y
			}
			b.Coord = sld.Coord{X: x, Y: (top + bottom) / 2, XSpan: k.geo.Span(b.Pos.HSpan), YSpan: bottom - top}
			return
		}
		b.Coord = sld.Coord{X: x, Y: bodyY, XSpan: k.geo.Span(b.Pos.HSpan)}
		if b.IsPrimary() {
			k.run(b.Nodes, k.geo.X(b.Pos.H), bodyY, k.geo.X(b.Pos.H+b.Pos.HSpan), bodyY, true)
		}
	})
}

// flat places a flat cell on its bus row, in the gap between the end of
// its LEFT busbar and the start of its RIGHT busbar.
func (k *calc) flat(c *sld.Cell) {
	lb, rb := c.SideBuses(sld.SideLeft), c.SideBuses(sld.SideRight)
	left, right := lb[0], rb[0]
	xl, xr, y := left.X+left.BusWidth, right.X, left.Y
	var nodes []*sld.Node
	for _, n := range c.Root.AllNodes() {
		if !n.IsBus() {
			nodes = append(nodes, n)
		}
	}
	for i, n := range nodes {
		t := float64(i+1) / float64(len(nodes)+1)
		k.set(n, xl+(xr-xl)*t, y, true)
	}
	c.Root.Coord = sld.Coord{X: (xl + xr) / 2, Y: y, XSpan: xr - xl}
}

// shunt spreads the interior nodes of a shunt cell between its two hinges,
// at their mean height.
func (k *calc) shunt(c *sld.Cell) {
	hinges := c.ShuntNodes()
	if len(hinges) < 2 {
		return
	}
	a, b := hinges[0], hinges[len(hinges)-1]
	y := (a.Y + b.Y) / 2
	var interior []*sld.Node
	for _, n := range c.Nodes() {
		if n.Kind != sld.KindShunt && !n.IsBus() {
			interior = append(interior, n)
		}
	}
	for i, n := range interior {
		t := float64(i+1) / float64(len(interior)+1)
		k.set(n, a.X+(b.X-a.X)*t, y, true)
	}
	if c.Root != nil {
		c.Root.Coord = sld.Coord{X: (a.X + b.X) / 2, Y: y, XSpan: math.Abs(b.X - a.X)}
	}
}
