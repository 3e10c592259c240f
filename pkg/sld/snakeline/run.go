package snakeline

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/coord"
)

// Run computes the panel geometry of d and routes every edge and link.
//
// The panels are first measured without snake-line room and the links are
// routed once to count the tracks they need. Each panel then grows by
// exactly that room, the panels are placed again and the state is reset
// before the final pass.
func Run(d *sld.Diagram, p params.Parameters, placer coord.Placer, logger *log.Logger) error {
	if d == nil {
		return errors.New(errors.ErrCodePrecondition, "nil diagram")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if placer == nil {
		placer = coord.VerticalStack{Spacing: p.PanelSpacing}
	}
	panels := d.Panels()

	for _, g := range panels {
		g.SnakeTop, g.SnakeBottom = 0, 0
		if _, err := coord.Compute(g, p, logger); err != nil {
			return err
		}
	}
	placer.Place(panels, nil)

	state := NewRoutingState()
	r := NewRouter(d, p, state)
	if err := r.routeLinks(); err != nil {
		return err
	}

	v := p.VerticalSnakeLinePadding
	gaps := make([]float64, max(len(panels)-1, 0))
	for i, g := range panels {
		g.SnakeTop = float64(state.Exits(g, sld.DirTop)) * v
		g.SnakeBottom = float64(state.Exits(g, sld.DirBottom)) * v
		if _, err := coord.Compute(g, p, logger); err != nil {
			return err
		}
		if i < len(gaps) {
			gaps[i] = float64(state.Midlines(i)) * v
		}
	}
	placer.Place(panels, gaps)
	logger.Debug("snake-line room", "rails", state.Rails(), "gaps", gaps)

	state.Reset()
	if err := r.routeLinks(); err != nil {
		return err
	}
	for _, g := range panels {
		RouteEdges(g)
	}
	return nil
}

// routeLinks routes multi-terminal legs first, junction by junction, then
// direct lines in creation order.
func (r *Router) routeLinks() error {
	for _, m := range r.d.Middles() {
		legs := r.d.Legs(m)
		switch len(legs) {
		case 2:
			r.split2(m, legs[0], legs[1])
		case 3:
			r.split3(m, legs[0], legs[1], legs[2])
		default:
			return errors.New(errors.ErrCodeInconsistentState, "junction has %d legs", len(legs)).At(m.ID)
		}
	}
	for _, l := range r.d.Links() {
		if l.To.IsMiddle() || l.From.IsMiddle() {
			continue
		}
		setPoints(l, r.Polyline(l.From, l.To))
	}
	return nil
}

func feederOf(l *sld.Link) *sld.Node {
	if l.From.IsMiddle() {
		return l.To
	}
	return l.From
}

// setPoints stores a polyline running from the feeder end of l.
func setPoints(l *sld.Link, pts []sld.Point) {
	if l.From.IsMiddle() {
		pts = slices.Clone(pts)
		slices.Reverse(pts)
	}
	l.Points = pts
	l.Waypoints = slices.Clone(pts[1 : len(pts)-1])
}

func (r *Router) split2(m *sld.Node, la, lb *sld.Link) {
	a, b := feederOf(la), feederOf(lb)
	first, second, j, seg := Split(r.Polyline(a, b))
	setPoints(la, first)
	setPoints(lb, second)
	m.X, m.Y = j.X, j.Y
	orient2(m, a.Abs(), b.Abs(), j, seg)
}

func (r *Router) split3(m *sld.Node, la, lb, lc *sld.Link) {
	a, b, c := feederOf(la), feederOf(lb), feederOf(lc)
	first, second, j, seg := Split(r.Polyline(a, b))
	setPoints(la, first)
	setPoints(lb, second)
	exit := r.exitAt(c)
	setPoints(lc, []sld.Point{c.Abs(), exit, {X: j.X, Y: exit.Y}, j})
	m.X, m.Y = j.X, j.Y
	orient3(m, j, exit, seg)
}

// RouteEdges draws every edge of g as a straight segment or a single
// elbow, in absolute coordinates. An edge touching a busbar attaches to it
// straight above or below the other end.
func RouteEdges(g *sld.Graph) {
	for _, e := range g.Edges() {
		a, b := e.From.Abs(), e.To.Abs()
		if e.From.IsBus() {
			a.X = b.X
		}
		if e.To.IsBus() {
			b.X = a.X
		}
		if a.X == b.X || a.Y == b.Y {
			e.Points = []sld.Point{a, b}
			continue
		}
		e.Points = []sld.Point{a, {X: a.X, Y: b.Y}, b}
	}
}
