// Package sldtest builds small voltage-level topologies for tests.
//
// Node and edge insertion order drive cell numbering and block shapes, so
// every fixture declares its busbars first and wires its switch runs with
// [Builder.Chain] in the order the expected cells are listed.
package sldtest

import (
	"testing"

	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Builder assembles a graph and fails the test on the first error.
type Builder struct {
	t testing.TB
	g *sld.Graph
}

// New starts a graph with the given ID.
func New(t testing.TB, id string) *Builder {
	t.Helper()
	return &Builder{t: t, g: sld.NewGraph(id)}
}

func (b *Builder) add(n sld.Node) {
	b.t.Helper()
	n.Order = -1
	if _, err := b.g.AddNode(n); err != nil {
		b.t.Fatalf("add node %q: %v", n.ID, err)
	}
}

// Bus adds a busbar section.
func (b *Builder) Bus(id string, busbar, section int) *Builder {
	b.t.Helper()
	b.add(sld.Node{ID: id, Kind: sld.KindBus, BusbarIndex: busbar, SectionIndex: section})
	return b
}

// Breaker adds closed breakers.
func (b *Builder) Breaker(ids ...string) *Builder {
	b.t.Helper()
	for _, id := range ids {
		b.add(sld.Node{ID: id, Kind: sld.KindSwitch, SwitchKind: sld.Breaker})
	}
	return b
}

// Disconnector adds closed disconnectors.
func (b *Builder) Disconnector(ids ...string) *Builder {
	b.t.Helper()
	for _, id := range ids {
		b.add(sld.Node{ID: id, Kind: sld.KindSwitch, SwitchKind: sld.Disconnector})
	}
	return b
}

// Fict adds connectivity nodes.
func (b *Builder) Fict(ids ...string) *Builder {
	b.t.Helper()
	for _, id := range ids {
		b.add(sld.Node{ID: id, Kind: sld.KindFictitious})
	}
	return b
}

// Feeder adds feeders without a preset direction.
func (b *Builder) Feeder(ids ...string) *Builder {
	b.t.Helper()
	for _, id := range ids {
		b.add(sld.Node{ID: id, Kind: sld.KindFeeder})
	}
	return b
}

// FeederDir adds a feeder with a preset direction.
func (b *Builder) FeederDir(id string, dir sld.Direction) *Builder {
	b.t.Helper()
	b.add(sld.Node{ID: id, Kind: sld.KindFeeder, Direction: dir})
	return b
}

// Chain links consecutive nodes.
func (b *Builder) Chain(ids ...string) *Builder {
	b.t.Helper()
	for i := 1; i < len(ids); i++ {
		if _, err := b.g.AddEdge(ids[i-1], ids[i]); err != nil {
			b.t.Fatalf("add edge %s-%s: %v", ids[i-1], ids[i], err)
		}
	}
	return b
}

// Graph returns the assembled graph.
func (b *Builder) Graph() *sld.Graph { return b.g }

// MustNode returns the node with the given ID or fails the test.
func MustNode(t testing.TB, g *sld.Graph, id string) *sld.Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("graph %s has no node %q", g.ID, id)
	}
	return n
}

// SingleFeeder is one busbar feeding one line through a disconnector and
// a breaker: bbs1 - d1 - F - b1 - L1.
func SingleFeeder(t testing.TB) *sld.Graph {
	t.Helper()
	return New(t, "VL1").
		Bus("bbs1", 1, 1).
		Disconnector("d1").Fict("F").Breaker("b1").Feeder("L1").
		Chain("bbs1", "d1", "F", "b1", "L1").
		Graph()
}

// DoubleBusbar has two busbars on the same section, two feeders each
// selectable on either busbar and a coupler bbs1 - dc1 - bc - dc2 - bbs2.
func DoubleBusbar(t testing.TB) *sld.Graph {
	t.Helper()
	return New(t, "VL1").
		Bus("bbs1", 1, 1).Bus("bbs2", 2, 1).
		Disconnector("d1a", "d1b").Fict("F1").Breaker("b1").Feeder("L1").
		Disconnector("d2a", "d2b").Fict("F2").Breaker("b2").Feeder("L2").
		Disconnector("dc1").Breaker("bc").Disconnector("dc2").
		Chain("bbs1", "d1a", "F1").Chain("bbs2", "d1b", "F1").Chain("F1", "b1", "L1").
		Chain("bbs1", "d2a", "F2").Chain("bbs2", "d2b", "F2").Chain("F2", "b2", "L2").
		Chain("bbs1", "dc1", "bc", "dc2", "bbs2").
		Graph()
}

// SectionedBusbar has one busbar cut into two sections joined by a
// coupler bbs1 - ds1 - bs - ds2 - bbs2, with one feeder per section.
func SectionedBusbar(t testing.TB) *sld.Graph {
	t.Helper()
	return New(t, "VL1").
		Bus("bbs1", 1, 1).Bus("bbs2", 1, 2).
		Disconnector("d1").Fict("F1").Breaker("b1").Feeder("L1").
		Disconnector("d2").Fict("F2").Breaker("b2").Feeder("L2").
		Disconnector("ds1").Breaker("bs").Disconnector("ds2").
		Chain("bbs1", "d1", "F1", "b1", "L1").
		Chain("bbs2", "d2", "F2", "b2", "L2").
		Chain("bbs1", "ds1", "bs", "ds2", "bbs2").
		Graph()
}

// Shunt has two feeders on two sections whose connectivity nodes H1 and
// H2 are bridged by the switch s1.
func Shunt(t testing.TB) *sld.Graph {
	t.Helper()
	return New(t, "VL1").
		Bus("bbs1", 1, 1).Bus("bbs2", 1, 2).
		Disconnector("d1").Fict("H1").Breaker("b1").Feeder("L1").
		Breaker("s1").Fict("H2").
		Disconnector("d2").Breaker("b2").Feeder("L2").
		Chain("bbs1", "d1", "H1", "b1", "L1").
		Chain("H1", "s1", "H2").
		Chain("bbs2", "d2", "H2", "b2", "L2").
		Graph()
}

// TwoPanels returns a diagram of two single-feeder panels VL1 and VL2,
// their feeders T1 and T2 joined by the two-winding transformer TR. With
// facing set, T1 is preset to BOTTOM so that it faces T2.
func TwoPanels(t testing.TB, facing bool) *sld.Diagram {
	t.Helper()
	dir := sld.DirUndefined
	if facing {
		dir = sld.DirBottom
	}
	vl1 := New(t, "VL1").
		Bus("bbs1", 1, 1).
		Disconnector("d1").Fict("F1").Breaker("b1").FeederDir("T1", dir).
		Chain("bbs1", "d1", "F1", "b1", "T1").
		Graph()
	vl2 := New(t, "VL2").
		Bus("bbs2", 1, 1).
		Disconnector("d2").Fict("F2").Breaker("b2").Feeder("T2").
		Chain("bbs2", "d2", "F2", "b2", "T2").
		Graph()

	d := sld.NewDiagram("substation")
	for _, g := range []*sld.Graph{vl1, vl2} {
		if err := d.AddPanel(g); err != nil {
			t.Fatalf("add panel %s: %v", g.ID, err)
		}
	}
	if _, err := d.AddMultiTerminal("TR", []*sld.Node{MustNode(t, vl1, "T1"), MustNode(t, vl2, "T2")}); err != nil {
		t.Fatalf("add transformer: %v", err)
	}
	return d
}

// Topology is the JSON document of a single voltage level with one
// feeder, as accepted by the topology reader.
const Topology = `{
  "id": "substation",
  "voltageLevels": [
    {
      "id": "VL1",
      "nodes": [
        {"id": "bbs1", "kind": "bus", "busbarIndex": 1, "sectionIndex": 1},
        {"id": "d1", "kind": "switch", "switchKind": "disconnector"},
        {"id": "F", "kind": "fictitious"},
        {"id": "b1", "kind": "switch", "switchKind": "breaker"},
        {"id": "L1", "kind": "feeder"}
      ],
      "edges": [["bbs1", "d1"], ["d1", "F"], ["F", "b1"], ["b1", "L1"]]
    }
  ]
}`
