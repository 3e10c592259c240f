package sld

import (
	"fmt"
	"slices"
)

// CellKind is the topological role of a cell.
type CellKind int

const (
	// ExternCell links busbars to feeders.
	ExternCell CellKind = iota
	// InternCell links busbars to busbars.
	InternCell
	// ShuntCell bridges two Extern cells between their hinge nodes.
	ShuntCell
)

// String returns the uppercase name of the cell kind.
func (k CellKind) String() string {
	switch k {
	case ExternCell:
		return "EXTERN"
	case InternCell:
		return "INTERN"
	case ShuntCell:
		return "SHUNT"
	default:
		return "UNKNOWN"
	}
}

// Shape is the drawing pattern of an intern cell.
type Shape int

const (
	ShapeUndefined Shape = iota
	// ShapeOneLeg is a bundle of legs meeting at one node, drawn in one column.
	ShapeOneLeg
	// ShapeMaybeFlat is a two-bus cell that may become flat once positions are known.
	ShapeMaybeFlat
	// ShapeFlat is drawn horizontally between two adjacent busbars of a row.
	ShapeFlat
	// ShapeVertical has both legs in the same subsection.
	ShapeVertical
	// ShapeCrossover has its legs in two different subsections.
	ShapeCrossover
	// ShapeUnhandled is the fallback when no pattern applies.
	ShapeUnhandled
)

var shapeNames = [...]string{"UNDEFINED", "ONE_LEG", "MAYBE_FLAT", "FLAT", "VERTICAL", "CROSSOVER", "UNHANDLED_PATTERN"}

// String returns the uppercase name of the shape.
func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "UNKNOWN"
}

// Cell is a group of equipment nodes with a single topological role.
type Cell struct {
	Number int
	Kind   CellKind
	Root   *Block

	// Direction is TOP or BOTTOM for extern and shunt cells, TOP or MIDDLE
	// for intern cells once their shape is known.
	Direction Direction
	// Order is the left-to-right rank of an extern cell, -1 until assigned.
	Order int

	// Intern cells.
	Shape Shape
	Legs  [2]*Block // indexed by sideIndex(LEFT|RIGHT)
	Level int       // vertical level of the body above the first bus row

	// Shunts lists the shunt cells hanging off an extern cell.
	Shunts []*Cell
	// Siblings holds the extern cells on the LEFT and RIGHT of a shunt cell.
	Siblings [2]*Cell

	nodes []*Node
}

// ID returns a stable identifier such as "EXTERN_3".
func (c *Cell) ID() string { return fmt.Sprintf("%s_%d", c.Kind, c.Number) }

// String returns the cell ID.
func (c *Cell) String() string { return c.ID() }

// Nodes returns the cell nodes in detection order. The slice must not be modified.
func (c *Cell) Nodes() []*Node { return c.nodes }

// SetNodes replaces the node list.
func (c *Cell) SetNodes(nodes []*Node) { c.nodes = slices.Clone(nodes) }

// Contains reports whether n is part of the cell.
func (c *Cell) Contains(n *Node) bool { return slices.Contains(c.nodes, n) }

// Buses returns the bus nodes of the cell in detection order.
func (c *Cell) Buses() []*Node { return c.nodesOfKind(KindBus) }

// Feeders returns the feeder nodes of the cell in detection order.
func (c *Cell) Feeders() []*Node { return c.nodesOfKind(KindFeeder) }

// ShuntNodes returns the hinge nodes of the cell.
func (c *Cell) ShuntNodes() []*Node { return c.nodesOfKind(KindShunt) }

func (c *Cell) nodesOfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, n := range c.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// IsShunted reports whether an extern cell is bridged to another by a shunt cell.
func (c *Cell) IsShunted() bool { return len(c.Shunts) > 0 }

// IsTwoSided reports whether an intern cell has distinct LEFT and RIGHT legs.
func (c *Cell) IsTwoSided() bool { return c.Legs[0] != nil && c.Legs[1] != nil }

// Leg returns the leg block on the given side of an intern cell.
func (c *Cell) Leg(side Side) *Block {
	if i := sideIndex(side); i >= 0 {
		return c.Legs[i]
	}
	return nil
}

// SideBuses returns the buses reached by the leg on the given side, or all
// cell buses for an undefined side. A single bus-to-bus run has one bus per
// side, in run order.
func (c *Cell) SideBuses(side Side) []*Node {
	if leg := c.Leg(side); leg != nil {
		return leg.Buses()
	}
	if i := sideIndex(side); i >= 0 && c.Root != nil && c.Root.IsPrimary() {
		if buses := c.Root.Buses(); len(buses) == 2 {
			return buses[i : i+1]
		}
	}
	return c.Buses()
}

// IsSided reports whether LEFT and RIGHT resolve to different bus sets.
func (c *Cell) IsSided() bool {
	if c.IsTwoSided() {
		return true
	}
	return c.Root != nil && c.Root.IsPrimary() && len(c.Root.Buses()) == 2
}

// Sibling returns the extern cell on the given side of a shunt cell.
func (c *Cell) Sibling(side Side) *Cell {
	if i := sideIndex(side); i >= 0 {
		return c.Siblings[i]
	}
	return nil
}

// Reverse swaps the LEFT and RIGHT roles of an intern cell.
func (c *Cell) Reverse() {
	c.Legs[0], c.Legs[1] = c.Legs[1], c.Legs[0]
	if c.Root != nil && (c.Root.Kind == Serial || c.Root.IsPrimary()) {
		c.Root.Reverse()
	}
}

// HasShape reports whether the cell has one of the given shapes.
func (c *Cell) HasShape(shapes ...Shape) bool { return slices.Contains(shapes, c.Shape) }

// IsVerticalLike reports whether an intern cell occupies a single column
// range: one-legged, vertical or unhandled.
func (c *Cell) IsVerticalLike() bool {
	return c.Kind == InternCell && c.HasShape(ShapeOneLeg, ShapeVertical, ShapeUnhandled)
}

func sideIndex(side Side) int {
	switch side {
	case SideLeft:
		return 0
	case SideRight:
		return 1
	default:
		return -1
	}
}

// SortCells orders cells by kind then number, the stable order every stage
// iterates in.
func SortCells(cells []*Cell) {
	slices.SortStableFunc(cells, func(a, b *Cell) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return a.Number - b.Number
	})
}
