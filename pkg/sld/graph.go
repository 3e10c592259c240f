package sld

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the ID is already used.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the same node.
	ErrSelfLoop = errors.New("edge endpoints must differ")

	// ErrMiddleInPanel is returned by [Graph.AddNode] for multi-terminal
	// junctions, which belong to the diagram rather than to a panel.
	ErrMiddleInPanel = errors.New("middle nodes belong to the diagram")
)

// Edge connects two nodes. Points holds the absolute polyline once routing
// has completed.
type Edge struct {
	From, To *Node
	Points   []Point
}

// Other returns the endpoint opposite to n.
func (e *Edge) Other(n *Node) *Node {
	if e.From == n {
		return e.To
	}
	return e.From
}

// Graph is the topology of one voltage level, drawn as one diagram panel.
//
// The graph is the single shared structure mutated in place by every layout
// stage: cells are attached by the classifier, bus positions by the position
// resolver, coordinates by the coordinate calculator and polylines by the
// router. Graph is not safe for concurrent use.
type Graph struct {
	ID string

	nodes []*Node
	byID  map[string]*Node
	adj   [][]int
	edges []*Edge
	cells []*Cell

	// Frame is the placed rectangle of the panel in diagram coordinates.
	Frame Frame
	// MaxRow is the number of bus rows once positions are resolved.
	MaxRow int
	// HSpan is the total structural width in half-cell units.
	HSpan int
	// SnakeTop and SnakeBottom are the extra paddings reserved for snake
	// lines leaving the panel upward and downward.
	SnakeTop, SnakeBottom float64
}

// NewGraph creates an empty voltage-level graph.
func NewGraph(id string) *Graph {
	return &Graph{ID: id, byID: make(map[string]*Node)}
}

// AddNode copies n into the graph arena and returns the stored node.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return nil, ErrDuplicateNodeID
	}
	if n.IsMiddle() {
		return nil, ErrMiddleInPanel
	}
	node := &n
	node.Index = len(g.nodes)
	node.graph = g
	node.Cell = nil
	g.nodes = append(g.nodes, node)
	g.adj = append(g.adj, nil)
	g.byID[node.ID] = node
	return node, nil
}

// AddEdge connects the nodes with the given IDs.
func (g *Graph) AddEdge(from, to string) (*Edge, error) {
	a, ok := g.byID[from]
	if !ok {
		return nil, ErrUnknownNode
	}
	b, ok := g.byID[to]
	if !ok {
		return nil, ErrUnknownNode
	}
	if a == b {
		return nil, ErrSelfLoop
	}
	e := &Edge{From: a, To: b}
	g.edges = append(g.edges, e)
	g.adj[a.Index] = append(g.adj[a.Index], b.Index)
	g.adj[b.Index] = append(g.adj[b.Index], a.Index)
	return e, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// NodeAt returns the node stored at arena index i.
func (g *Graph) NodeAt(i int) *Node { return g.nodes[i] }

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Edges returns the edges in insertion order. The slice must not be modified.
func (g *Graph) Edges() []*Edge { return g.edges }

// Adjacent returns the neighbours of n in edge insertion order.
func (g *Graph) Adjacent(n *Node) []*Node {
	idx := g.adj[n.Index]
	out := make([]*Node, len(idx))
	for i, j := range idx {
		out[i] = g.nodes[j]
	}
	return out
}

// AdjacentIndexes returns the neighbour indexes of node i. The slice must not be modified.
func (g *Graph) AdjacentIndexes(i int) []int { return g.adj[i] }

// Degree returns the number of edges incident to n.
func (g *Graph) Degree(n *Node) int { return len(g.adj[n.Index]) }

// Buses returns the bus nodes in insertion order.
func (g *Graph) Buses() []*Node {
	var buses []*Node
	for _, n := range g.nodes {
		if n.Kind == KindBus {
			buses = append(buses, n)
		}
	}
	return buses
}

// Feeders returns the feeder nodes in insertion order.
func (g *Graph) Feeders() []*Node {
	var feeders []*Node
	for _, n := range g.nodes {
		if n.Kind == KindFeeder {
			feeders = append(feeders, n)
		}
	}
	return feeders
}

// Retype changes the kind of a node. Only Fictitious, Feeder and Shunt can
// be exchanged; other requests are ignored and reported as false.
func (g *Graph) Retype(n *Node, kind NodeKind) bool {
	convertible := func(k NodeKind) bool {
		return k == KindFictitious || k == KindFeeder || k == KindShunt
	}
	if !convertible(n.Kind) || !convertible(kind) {
		return false
	}
	n.Kind = kind
	return true
}

// Cells returns the cells in creation order. The slice must not be modified.
func (g *Graph) Cells() []*Cell { return g.cells }

// CellsOfKind returns the cells of the given kind in creation order.
func (g *Graph) CellsOfKind(kind CellKind) []*Cell {
	var out []*Cell
	for _, c := range g.cells {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// AddCell registers a new cell owning the given nodes. Non-bus nodes that
// have no owner yet are attached to the cell.
func (g *Graph) AddCell(kind CellKind, nodes []*Node) *Cell {
	c := &Cell{Number: g.nextCellNumber(), Kind: kind, nodes: slices.Clone(nodes), Order: -1}
	for _, n := range c.nodes {
		if n.Kind != KindBus && n.Cell == nil {
			n.Cell = c
		}
	}
	g.cells = append(g.cells, c)
	return c
}

// RemoveCell detaches a cell and releases ownership of its nodes.
func (g *Graph) RemoveCell(c *Cell) {
	g.cells = slices.DeleteFunc(g.cells, func(x *Cell) bool { return x == c })
	for _, n := range c.nodes {
		if n.Cell == c {
			n.Cell = nil
		}
	}
}

func (g *Graph) nextCellNumber() int {
	next := 0
	for _, c := range g.cells {
		if c.Number >= next {
			next = c.Number + 1
		}
	}
	return next
}

// Validate checks arena consistency: indexes, symmetric adjacency and
// edge endpoints owned by this graph.
func (g *Graph) Validate() error {
	for i, n := range g.nodes {
		if n.Index != i || n.graph != g {
			return ErrUnknownNode
		}
	}
	for _, e := range g.edges {
		if e.From.graph != g || e.To.graph != g {
			return ErrUnknownNode
		}
		if !slices.Contains(g.adj[e.From.Index], e.To.Index) || !slices.Contains(g.adj[e.To.Index], e.From.Index) {
			return ErrUnknownNode
		}
	}
	return nil
}

// BusAt returns the bus at structural position (v, h), if any.
func (g *Graph) BusAt(v, h int) *Node {
	for _, n := range g.nodes {
		if n.Kind == KindBus && n.Struct != nil && n.Struct.V == v && n.Struct.H == h {
			return n
		}
	}
	return nil
}
