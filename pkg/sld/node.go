package sld

// Node is a vertex of a voltage-level graph or a diagram-level junction.
//
// Nodes live in an index-based arena owned by their [Graph]: Index is the
// position of the node in [Graph.Nodes] and adjacency is stored as index
// lists, so traversal state can be kept in plain slices. Middle nodes of
// multi-terminal equipment belong to a [Diagram] instead and have no graph.
type Node struct {
	Index int
	ID    string
	Kind  NodeKind
	Label string

	// Switch state.
	SwitchKind SwitchKind
	Open       bool

	// Busbar hints from the topology and the structural position computed
	// by the position resolver.
	BusbarIndex  int
	SectionIndex int
	Struct       *BusPosition
	BusPos       Position
	BusWidth     float64

	// Feeder ordering. Direction holds either the preset direction read from
	// the topology or the one assigned with the owning cell.
	Order     int
	Ordered   bool
	Direction Direction

	// Panel-local geometry. Middle nodes use absolute coordinates.
	X, Y        float64
	Rotated     bool
	Orientation Orientation

	// Cell is the owning cell. Buses are shared and keep it nil.
	Cell *Cell

	graph *Graph
}

// Graph returns the voltage-level graph owning the node, or nil for middle nodes.
func (n *Node) Graph() *Graph { return n.graph }

// IsBus reports whether the node is a busbar section.
func (n *Node) IsBus() bool { return n.Kind == KindBus }

// IsFeeder reports whether the node is a feeder.
func (n *Node) IsFeeder() bool { return n.Kind == KindFeeder }

// IsSwitch reports whether the node is a switch.
func (n *Node) IsSwitch() bool { return n.Kind == KindSwitch }

// IsMiddle reports whether the node is a multi-terminal junction.
func (n *Node) IsMiddle() bool { return n.Kind == KindMiddle2 || n.Kind == KindMiddle3 }

// SetOrder assigns the feeder order.
func (n *Node) SetOrder(order int) {
	n.Order = order
	n.Ordered = true
}

// Point returns the panel-local coordinate of the node.
func (n *Node) Point() Point { return Point{X: n.X, Y: n.Y} }

// Abs returns the absolute coordinate of the node, taking the panel frame
// into account.
func (n *Node) Abs() Point {
	if n.graph == nil {
		return Point{X: n.X, Y: n.Y}
	}
	return Point{X: n.graph.Frame.X + n.X, Y: n.graph.Frame.Y + n.Y}
}

// Row returns the structural row of a positioned bus, or 0.
func (n *Node) Row() int {
	if n.Struct == nil {
		return 0
	}
	return n.Struct.V
}

// Column returns the structural column of a positioned bus, or 0.
func (n *Node) Column() int {
	if n.Struct == nil {
		return 0
	}
	return n.Struct.H
}

// String returns the node ID.
func (n *Node) String() string { return n.ID }
