package sld

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicatePanel is returned by [Diagram.AddPanel] for an already used panel ID.
	ErrDuplicatePanel = errors.New("duplicate panel ID")

	// ErrNotAFeeder is returned when a multi-terminal leg or a line does not
	// end on a feeder node of a panel of the diagram.
	ErrNotAFeeder = errors.New("link endpoint must be a feeder of the diagram")

	// ErrLegCount is returned by [Diagram.AddMultiTerminal] when the number
	// of legs does not match the middle node kind.
	ErrLegCount = errors.New("multi-terminal leg count does not match its kind")
)

// Link is a snake line between two diagram elements that are not adjacent
// in a cell: a feeder and a multi-terminal middle node, or two feeders.
type Link struct {
	ID       string
	From, To *Node

	// Waypoints are the routed bend points between the endpoints.
	Waypoints []Point
	// Points is the full absolute polyline, endpoints included.
	Points []Point
}

// Diagram is a set of voltage-level panels and the snake lines joining them.
type Diagram struct {
	ID string

	panels  []*Graph
	middles []*Node
	links   []*Link
}

// NewDiagram creates an empty diagram.
func NewDiagram(id string) *Diagram { return &Diagram{ID: id} }

// AddPanel appends a voltage-level graph. Panels are laid out in insertion order.
func (d *Diagram) AddPanel(g *Graph) error {
	if slices.ContainsFunc(d.panels, func(p *Graph) bool { return p.ID == g.ID }) {
		return ErrDuplicatePanel
	}
	d.panels = append(d.panels, g)
	return nil
}

// Panels returns the panels in layout order. The slice must not be modified.
func (d *Diagram) Panels() []*Graph { return d.panels }

// Panel returns the panel with the given ID.
func (d *Diagram) Panel(id string) (*Graph, bool) {
	for _, p := range d.panels {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PanelIndex returns the layout index of g, or -1.
func (d *Diagram) PanelIndex(g *Graph) int { return slices.Index(d.panels, g) }

// Middles returns the multi-terminal junction nodes.
func (d *Diagram) Middles() []*Node { return d.middles }

// Links returns every snake line in creation order.
func (d *Diagram) Links() []*Link { return d.links }

// AddMultiTerminal creates a two- or three-winding junction linked to the
// given feeders.
func (d *Diagram) AddMultiTerminal(id string, feeders []*Node) (*Node, error) {
	if id == "" {
		return nil, ErrInvalidNodeID
	}
	kind := KindMiddle2
	switch len(feeders) {
	case 2:
	case 3:
		kind = KindMiddle3
	default:
		return nil, ErrLegCount
	}
	for _, f := range feeders {
		if !d.ownsFeeder(f) {
			return nil, ErrNotAFeeder
		}
	}
	m := &Node{Index: len(d.middles), ID: id, Kind: kind, Order: -1}
	d.middles = append(d.middles, m)
	for i, f := range feeders {
		d.links = append(d.links, &Link{ID: id + "_" + string(rune('1'+i)), From: f, To: m})
	}
	return m, nil
}

// AddLine creates a snake line joining two feeders directly.
func (d *Diagram) AddLine(id string, a, b *Node) (*Link, error) {
	if id == "" {
		return nil, ErrInvalidNodeID
	}
	if !d.ownsFeeder(a) || !d.ownsFeeder(b) {
		return nil, ErrNotAFeeder
	}
	l := &Link{ID: id, From: a, To: b}
	d.links = append(d.links, l)
	return l, nil
}

// Legs returns the links attached to a middle node, in creation order.
func (d *Diagram) Legs(m *Node) []*Link {
	var out []*Link
	for _, l := range d.links {
		if l.To == m || l.From == m {
			out = append(out, l)
		}
	}
	return out
}

func (d *Diagram) ownsFeeder(n *Node) bool {
	return n != nil && n.Kind == KindFeeder && slices.Contains(d.panels, n.graph)
}
