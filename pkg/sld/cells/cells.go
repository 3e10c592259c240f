// Package cells partitions a voltage-level graph into cells.
//
// Detection runs in passes over the busbars, in graph order:
//
//  1. intern pass: every component reached from a busbar that only leads
//     back to busbars becomes an Intern cell
//  2. extern pass: every remaining component, bounded by busbars and
//     feeders, becomes an Extern cell
//  3. shunt pass: an Extern cell holding two feeder branches bridged by a
//     switch run is split into two Extern cells and one Shunt cell
//
// The block tree of every cell is then built with package blocks and the
// intern cells get their initial shape.
package cells

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/blocks"
)

// Detect classifies every node of g into cells and builds their blocks.
// Detecting twice on the same graph is a precondition violation.
func Detect(g *sld.Graph, p params.Parameters, logger *log.Logger) error {
	if g == nil {
		return errors.New(errors.ErrCodePrecondition, "nil graph")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(g.Cells()) > 0 {
		return errors.New(errors.ErrCodePrecondition, "graph %s already has cells", g.ID)
	}
	if err := checkTopology(g); err != nil {
		return err
	}

	d := &detector{g: g, p: p, logger: logger, allocated: make([]bool, g.NodeCount())}
	d.internPass()
	if err := d.externPass(); err != nil {
		return err
	}
	if err := d.checkCoverage(); err != nil {
		return err
	}
	for _, c := range g.CellsOfKind(sld.ExternCell) {
		d.splitShunts(c)
	}

	for _, c := range g.Cells() {
		if err := blocks.Build(c, p, logger); err != nil {
			return err
		}
	}
	for _, c := range g.CellsOfKind(sld.InternCell) {
		if err := organize(c, p, logger); err != nil {
			return err
		}
	}

	logger.Debug("detected cells", "graph", g.ID,
		"extern", len(g.CellsOfKind(sld.ExternCell)),
		"intern", len(g.CellsOfKind(sld.InternCell)),
		"shunt", len(g.CellsOfKind(sld.ShuntCell)))
	return nil
}

func checkTopology(g *sld.Graph) error {
	if len(g.Buses()) == 0 {
		return errors.New(errors.ErrCodePrecondition, "voltage level has no busbar").At(g.ID)
	}
	for _, f := range g.Feeders() {
		if g.Degree(f) != 1 {
			return errors.New(errors.ErrCodePrecondition,
				"feeder must have exactly one neighbour, has %d", g.Degree(f)).At(f.ID)
		}
	}
	return g.Validate()
}

type detector struct {
	g         *sld.Graph
	p         params.Parameters
	logger    *log.Logger
	allocated []bool
}

type predicate func(*sld.Node) bool

func isBus(n *sld.Node) bool         { return n.IsBus() }
func isFeeder(n *sld.Node) bool      { return n.IsFeeder() }
func isBusOrFeeder(n *sld.Node) bool { return n.IsBus() || n.IsFeeder() }
func never(*sld.Node) bool           { return false }

// walk explores the component reachable from start, origin excluded.
// Nodes matching stop are kept as extremities and not expanded; a node
// matching exclude invalidates the walk. The start node is tested like any
// other. The origin is the first returned node.
func (d *detector) walk(origin, start *sld.Node, stop, exclude predicate) ([]*sld.Node, bool) {
	visited := make([]bool, d.g.NodeCount())
	visited[origin.Index] = true
	out := []*sld.Node{origin}
	valid := true

	var visit func(n *sld.Node)
	visit = func(n *sld.Node) {
		visited[n.Index] = true
		out = append(out, n)
		if exclude(n) {
			valid = false
			return
		}
		if stop(n) {
			return
		}
		for _, j := range d.g.AdjacentIndexes(n.Index) {
			if !visited[j] {
				visit(d.g.NodeAt(j))
			}
		}
	}
	visit(start)
	return out, valid
}

// deadEnds returns the non-bus nodes of a walk that have a single neighbour
// and are not feeders.
func (d *detector) deadEnds(nodes []*sld.Node) []*sld.Node {
	var out []*sld.Node
	for _, n := range nodes {
		if !n.IsBus() && !n.IsFeeder() && d.g.Degree(n) <= 1 {
			out = append(out, n)
		}
	}
	return out
}

func (d *detector) allocate(kind sld.CellKind, nodes []*sld.Node) *sld.Cell {
	for _, n := range nodes {
		if !n.IsBus() {
			d.allocated[n.Index] = true
		}
	}
	return d.g.AddCell(kind, nodes)
}

// candidates yields the unallocated non-bus neighbours of every busbar, in
// bus order then adjacency order.
func (d *detector) candidates(fn func(bus, start *sld.Node) error) error {
	for _, bus := range d.g.Buses() {
		for _, n := range d.g.Adjacent(bus) {
			if n.IsBus() || d.allocated[n.Index] {
				continue
			}
			if err := fn(bus, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *detector) internPass() {
	_ = d.candidates(func(bus, start *sld.Node) error {
		nodes, ok := d.walk(bus, start, isBus, isFeeder)
		if !ok || len(d.deadEnds(nodes)) > 0 {
			return nil
		}
		c := d.allocate(sld.InternCell, nodes)
		d.logger.Debug("intern cell", "cell", c.ID(), "nodes", len(nodes))
		return nil
	})
}

func (d *detector) externPass() error {
	return d.candidates(func(bus, start *sld.Node) error {
		nodes, _ := d.walk(bus, start, isBusOrFeeder, never)
		for _, n := range d.deadEnds(nodes) {
			if n.Kind == sld.KindFictitious {
				d.g.Retype(n, sld.KindFeeder)
				d.logger.Debug("dead-end node retyped as feeder", "node", n.ID)
				continue
			}
			if d.p.ExceptionIfPatternNotHandled {
				return errors.New(errors.ErrCodeUnhandledPattern, "dead-end %s node", n.Kind).At(n.ID)
			}
			d.logger.Warn("unhandled dead-end node", "node", n.ID, "kind", n.Kind)
		}
		c := d.allocate(sld.ExternCell, nodes)
		d.logger.Debug("extern cell", "cell", c.ID(), "nodes", len(nodes))
		return nil
	})
}

func (d *detector) checkCoverage() error {
	for _, n := range d.g.Nodes() {
		if n.IsBus() {
			continue
		}
		if !d.allocated[n.Index] {
			return errors.New(errors.ErrCodePrecondition, "node is not connected to any busbar").At(n.ID)
		}
	}
	for _, b := range d.g.Buses() {
		if d.g.Degree(b) == 0 {
			d.logger.Warn("busbar without cell", "bus", b.ID)
		}
	}
	return nil
}
