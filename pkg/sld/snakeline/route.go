package snakeline

import (
	"slices"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Router computes polylines against the current panel geometry.
type Router struct {
	d     *sld.Diagram
	p     params.Parameters
	state *RoutingState
}

// NewRouter returns a router for d sharing state.
func NewRouter(d *sld.Diagram, p params.Parameters, state *RoutingState) *Router {
	return &Router{d: d, p: p, state: state}
}

func direction(n *sld.Node) sld.Direction {
	if n.Direction == sld.DirBottom {
		return sld.DirBottom
	}
	return sld.DirTop
}

// Facing reports whether a and b sit in vertically adjacent panels with the
// feeder of the upper panel pointing down and the one of the lower panel
// pointing up. It returns the index of the upper panel.
func (r *Router) Facing(a, b *sld.Node) (int, bool) {
	ia, ib := r.d.PanelIndex(a.Graph()), r.d.PanelIndex(b.Graph())
	if ia < 0 || ib < 0 {
		return 0, false
	}
	if ia > ib {
		a, b = b, a
		ia, ib = ib, ia
	}
	return ia, ib == ia+1 && direction(a) == sld.DirBottom && direction(b) == sld.DirTop
}

// Waypoints returns the bend points of the line from a to b: one or two at
// the midline of the gap for facing feeders, two on a single exit track for
// feeders of one panel pointing the same way, four around a right-hand rail
// otherwise.
func (r *Router) Waypoints(a, b *sld.Node) []sld.Point {
	pa, pb := a.Abs(), b.Abs()
	if upper, ok := r.Facing(a, b); ok {
		g := r.d.Panels()[upper]
		k := r.state.nextMidline(upper)
		ym := g.Frame.Bottom() + r.p.PanelSpacing/2 + float64(k)*r.p.VerticalSnakeLinePadding
		if pa.X == pb.X {
			return []sld.Point{{X: pa.X, Y: ym}}
		}
		return []sld.Point{{X: pa.X, Y: ym}, {X: pb.X, Y: ym}}
	}

	if a.Graph() == b.Graph() && direction(a) == direction(b) {
		y := r.exitY(a)
		return []sld.Point{{X: pa.X, Y: y}, {X: pb.X, Y: y}}
	}

	ya, yb := r.exitY(a), r.exitY(b)
	right := max(a.Graph().Frame.Right(), b.Graph().Frame.Right())
	xRail := right + r.p.HorizontalSnakeLinePadding*float64(r.state.nextRail()+1)
	return []sld.Point{
		{X: pa.X, Y: ya},
		{X: xRail, Y: ya},
		{X: xRail, Y: yb},
		{X: pb.X, Y: yb},
	}
}

// Polyline returns the full line from a to b, endpoints included.
func (r *Router) Polyline(a, b *sld.Node) []sld.Point {
	return slices.Concat([]sld.Point{a.Abs()}, r.Waypoints(a, b), []sld.Point{b.Abs()})
}

// exitY takes the next exit track of the panel of n on the side its
// feeder points to. Tracks are stacked outward from the feeder line, inside
// the snake-line padding of the panel.
func (r *Router) exitY(n *sld.Node) float64 {
	g := n.Graph()
	dir := direction(n)
	k := float64(r.state.nextExit(g, dir))
	pad, v := r.p.VoltageLevelPadding, r.p.VerticalSnakeLinePadding
	if dir == sld.DirBottom {
		return g.Frame.Bottom() - pad.Bottom - g.SnakeBottom + k*v + v/2
	}
	return g.Frame.Y + pad.Top + g.SnakeTop - k*v - v/2
}

// exitAt returns the exit point of n on its next exit track.
func (r *Router) exitAt(n *sld.Node) sld.Point {
	return sld.Point{X: n.Abs().X, Y: r.exitY(n)}
}
