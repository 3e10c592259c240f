package blocks

import "github.com/matzehuels/sldlayout/pkg/sld"

// assignAxes sets the drawing axis of every block of c. Extern cells are
// drawn vertically; shunt cells horizontally; intern cells keep their legs
// vertical and run everything else horizontally.
func assignAxes(c *sld.Cell) {
	switch c.Kind {
	case sld.ExternCell:
		c.Root.Walk(func(b *sld.Block) { b.Axis = sld.Vertical })
	case sld.ShuntCell:
		c.Root.Walk(func(b *sld.Block) { b.Axis = sld.Horizontal })
	case sld.InternCell:
		var visit func(b *sld.Block, inLeg bool)
		visit = func(b *sld.Block, inLeg bool) {
			leg := inLeg || (b.IsLegLike() && len(b.Buses()) < 2) || (b.Kind == sld.LegParallel)
			b.Axis = sld.Horizontal
			if leg {
				b.Axis = sld.Vertical
			}
			for _, child := range b.Children {
				visit(child, leg)
			}
		}
		visit(c.Root, false)
	}
}

// Size computes the structural span of b and its descendants in half-cell
// units.
//
//   - Leg and feeder primaries are one column wide: H=2, V=0.
//   - Body primaries of n nodes take 2(n-1) half-units along their axis.
//   - A stacked LegParallel is one column wide whatever its leg count.
//   - Serial blocks add their children along the axis and take the widest
//     child across it; parallel and undefined blocks do the opposite.
func Size(b *sld.Block) {
	for _, child := range b.Children {
		Size(child)
	}

	var along, across int
	switch b.Kind {
	case sld.LegPrimary, sld.FeederPrimary:
		if b.Axis == sld.Horizontal {
			along, across = 2*(len(b.Nodes)-1), 0
		} else {
			along, across = 0, 2
		}
	case sld.BodyPrimary:
		along, across = 2*(len(b.Nodes)-1), 2
		if b.Axis == sld.Horizontal {
			across = 0
		}
	case sld.Serial:
		for _, child := range b.Children {
			along += child.Pos.Span(b.Axis)
			across = max(across, child.Pos.Span(other(b.Axis)))
		}
	case sld.LegParallel, sld.BodyParallel, sld.Undefined:
		for _, child := range b.Children {
			along = max(along, child.Pos.Span(b.Axis))
			across += child.Pos.Span(other(b.Axis))
		}
		if b.Stacked {
			across = 2
		}
	}

	if b.Axis == sld.Horizontal {
		b.Pos.HSpan, b.Pos.VSpan = along, across
	} else {
		b.Pos.HSpan, b.Pos.VSpan = across, along
	}
}

func other(a sld.Axis) sld.Axis {
	if a == sld.Horizontal {
		return sld.Vertical
	}
	return sld.Horizontal
}
