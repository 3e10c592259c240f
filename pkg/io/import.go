package io

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Topology is the JSON input document.
type Topology struct {
	ID             string          `json:"id"`
	VoltageLevels  []VoltageLevel  `json:"voltageLevels"`
	MultiTerminals []MultiTerminal `json:"multiTerminals,omitempty"`
	Lines          []Line          `json:"lines,omitempty"`
}

// VoltageLevel is one panel of the topology.
type VoltageLevel struct {
	ID    string      `json:"id"`
	Nodes []Node      `json:"nodes"`
	Edges [][2]string `json:"edges"`
}

// Node is a vertex of a voltage level.
type Node struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Label        string `json:"label,omitempty"`
	SwitchKind   string `json:"switchKind,omitempty"`
	Open         bool   `json:"open,omitempty"`
	BusbarIndex  int    `json:"busbarIndex,omitempty"`
	SectionIndex int    `json:"sectionIndex,omitempty"`
	Direction    string `json:"direction,omitempty"`
}

// MultiTerminal is a two- or three-winding transformer joining feeders of
// different voltage levels.
type MultiTerminal struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Feeders []NodeRef `json:"feeders"`
}

// Line joins two feeders directly.
type Line struct {
	ID   string  `json:"id"`
	From NodeRef `json:"from"`
	To   NodeRef `json:"to"`
}

// NodeRef names a node of a voltage level.
type NodeRef struct {
	VoltageLevel string `json:"voltageLevel"`
	Node         string `json:"node"`
}

var switchKinds = map[string]sld.SwitchKind{
	"":                  sld.Breaker,
	"breaker":           sld.Breaker,
	"disconnector":      sld.Disconnector,
	"load_break_switch": sld.LoadBreakSwitch,
}

var legCounts = map[string]int{"2wt": 2, "3wt": 3}

// ReadTopology decodes a JSON topology from r and builds the diagram.
// ReadTopology does not close r.
func ReadTopology(r io.Reader) (*sld.Diagram, error) {
	var t Topology
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode topology")
	}
	return t.Diagram()
}

// ImportTopology reads the JSON topology file at path.
func ImportTopology(path string) (*sld.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadTopology(f)
}

// Diagram builds a fresh diagram from the topology. The topology itself is
// not retained.
func (t Topology) Diagram() (*sld.Diagram, error) {
	if len(t.VoltageLevels) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "topology %q has no voltage level", t.ID)
	}
	d := sld.NewDiagram(t.ID)
	for _, vl := range t.VoltageLevels {
		g, err := vl.graph()
		if err != nil {
			return nil, err
		}
		if err := d.AddPanel(g); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "voltage level %s", vl.ID)
		}
	}

	for _, mt := range t.MultiTerminals {
		if err := errors.ValidateElementID(mt.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "multi-terminal")
		}
		want, ok := legCounts[strings.ToLower(mt.Kind)]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "multi-terminal %s: unknown kind %q", mt.ID, mt.Kind)
		}
		if len(mt.Feeders) != want {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"multi-terminal %s: kind %s needs %d feeders, has %d", mt.ID, mt.Kind, want, len(mt.Feeders))
		}
		feeders := make([]*sld.Node, len(mt.Feeders))
		for i, ref := range mt.Feeders {
			n, err := resolve(d, ref)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "multi-terminal %s", mt.ID)
			}
			feeders[i] = n
		}
		if _, err := d.AddMultiTerminal(mt.ID, feeders); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "multi-terminal %s", mt.ID)
		}
	}

	for _, l := range t.Lines {
		if err := errors.ValidateElementID(l.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line")
		}
		a, err := resolve(d, l.From)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %s", l.ID)
		}
		b, err := resolve(d, l.To)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %s", l.ID)
		}
		if _, err := d.AddLine(l.ID, a, b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %s", l.ID)
		}
	}
	return d, nil
}

func (vl VoltageLevel) graph() (*sld.Graph, error) {
	if err := errors.ValidateElementID(vl.ID); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "voltage level")
	}
	g := sld.NewGraph(vl.ID)
	for _, n := range vl.Nodes {
		node, err := n.node()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "voltage level %s: node %s", vl.ID, n.ID)
		}
		if _, err := g.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "voltage level %s: node %s", vl.ID, n.ID)
		}
	}
	for _, e := range vl.Edges {
		if _, err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "voltage level %s: edge %s-%s", vl.ID, e[0], e[1])
		}
	}
	return g, nil
}

func (n Node) node() (sld.Node, error) {
	if err := errors.ValidateElementID(n.ID); err != nil {
		return sld.Node{}, err
	}
	kind, ok := sld.ParseNodeKind(strings.ToLower(n.Kind))
	if !ok || kind == sld.KindMiddle2 || kind == sld.KindMiddle3 {
		return sld.Node{}, errors.New(errors.ErrCodeInvalidInput, "unknown node kind %q", n.Kind)
	}
	sk, ok := switchKinds[strings.ToLower(n.SwitchKind)]
	if !ok {
		return sld.Node{}, errors.New(errors.ErrCodeInvalidInput, "unknown switch kind %q", n.SwitchKind)
	}
	if n.BusbarIndex < 0 || n.SectionIndex < 0 {
		return sld.Node{}, errors.New(errors.ErrCodeInvalidInput, "busbar and section indexes must not be negative")
	}
	dir := sld.ParseDirection(strings.ToLower(n.Direction))
	if n.Direction != "" && dir != sld.DirTop && dir != sld.DirBottom {
		return sld.Node{}, errors.New(errors.ErrCodeInvalidInput, "direction must be top or bottom, got %q", n.Direction)
	}
	return sld.Node{
		ID:           n.ID,
		Kind:         kind,
		Label:        n.Label,
		SwitchKind:   sk,
		Open:         n.Open,
		BusbarIndex:  n.BusbarIndex,
		SectionIndex: n.SectionIndex,
		Direction:    dir,
		Order:        -1,
	}, nil
}

func resolve(d *sld.Diagram, ref NodeRef) (*sld.Node, error) {
	g, ok := d.Panel(ref.VoltageLevel)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown voltage level %q", ref.VoltageLevel)
	}
	n, ok := g.Node(ref.Node)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown node %q in voltage level %s", ref.Node, ref.VoltageLevel)
	}
	return n, nil
}
