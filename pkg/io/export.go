package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Layout is the JSON output document.
type Layout struct {
	RunID   string        `json:"runId,omitempty"`
	ID      string        `json:"id"`
	Panels  []PanelLayout `json:"panels"`
	Middles []NodeLayout  `json:"middles,omitempty"`
	Links   []LinkLayout  `json:"links,omitempty"`
}

// PanelLayout is the computed layout of one voltage level.
type PanelLayout struct {
	ID    string       `json:"id"`
	Frame sld.Frame    `json:"frame"`
	Rows  int          `json:"rows"`
	Nodes []NodeLayout `json:"nodes"`
	Edges []EdgeLayout `json:"edges"`
	Cells []CellLayout `json:"cells"`
}

// NodeLayout is a placed node in absolute coordinates.
type NodeLayout struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotated     bool    `json:"rotated,omitempty"`
	Orientation string  `json:"orientation"`
	Cell        string  `json:"cell,omitempty"`

	// Buses only.
	Row   int     `json:"row,omitempty"`
	Col   int     `json:"col,omitempty"`
	Width float64 `json:"width,omitempty"`

	// Feeders only.
	Order     *int   `json:"order,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// EdgeLayout is the polyline of an edge.
type EdgeLayout struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Points []sld.Point `json:"points"`
}

// CellLayout describes a detected cell.
type CellLayout struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Shape     string   `json:"shape,omitempty"`
	Direction string   `json:"direction"`
	Order     *int     `json:"order,omitempty"`
	Level     int      `json:"level,omitempty"`
	Block     string   `json:"block,omitempty"`
	Nodes     []string `json:"nodes"`
}

// LinkLayout is a routed snake line.
type LinkLayout struct {
	ID     string      `json:"id"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Points []sld.Point `json:"points"`
}

// NewLayout captures the computed layout of d.
func NewLayout(d *sld.Diagram, runID string) Layout {
	out := Layout{RunID: runID, ID: d.ID}
	for _, g := range d.Panels() {
		out.Panels = append(out.Panels, panelLayout(g))
	}
	for _, m := range d.Middles() {
		out.Middles = append(out.Middles, nodeLayout(m))
	}
	for _, l := range d.Links() {
		out.Links = append(out.Links, LinkLayout{
			ID:     l.ID,
			From:   ref(l.From),
			To:     ref(l.To),
			Points: nonNil(l.Points),
		})
	}
	return out
}

func panelLayout(g *sld.Graph) PanelLayout {
	p := PanelLayout{
		ID:    g.ID,
		Frame: g.Frame,
		Rows:  g.MaxRow,
		Nodes: make([]NodeLayout, 0, g.NodeCount()),
		Edges: make([]EdgeLayout, 0, len(g.Edges())),
	}
	for _, n := range g.Nodes() {
		p.Nodes = append(p.Nodes, nodeLayout(n))
	}
	for _, e := range g.Edges() {
		p.Edges = append(p.Edges, EdgeLayout{From: e.From.ID, To: e.To.ID, Points: nonNil(e.Points)})
	}

	cells := append([]*sld.Cell(nil), g.Cells()...)
	sld.SortCells(cells)
	for _, c := range cells {
		cl := CellLayout{
			ID:        c.ID(),
			Kind:      c.Kind.String(),
			Direction: c.Direction.String(),
			Level:     c.Level,
		}
		if c.Kind == sld.InternCell {
			cl.Shape = c.Shape.String()
		}
		if c.Order >= 0 && c.Kind == sld.ExternCell {
			order := c.Order
			cl.Order = &order
		}
		if c.Root != nil {
			cl.Block = c.Root.String()
		}
		for _, n := range c.Nodes() {
			cl.Nodes = append(cl.Nodes, n.ID)
		}
		p.Cells = append(p.Cells, cl)
	}
	return p
}

func nodeLayout(n *sld.Node) NodeLayout {
	abs := n.Abs()
	nl := NodeLayout{
		ID:          n.ID,
		Kind:        n.Kind.String(),
		X:           abs.X,
		Y:           abs.Y,
		Rotated:     n.Rotated,
		Orientation: n.Orientation.String(),
	}
	if n.Cell != nil {
		nl.Cell = n.Cell.ID()
	}
	switch {
	case n.IsBus():
		nl.Row, nl.Col = n.Row(), n.Column()
		nl.Width = n.BusWidth
	case n.IsFeeder():
		if n.Ordered {
			order := n.Order
			nl.Order = &order
		}
		nl.Direction = n.Direction.String()
	}
	return nl
}

// ref names a node as "panel/node", or just its ID for diagram-level nodes.
func ref(n *sld.Node) string {
	if g := n.Graph(); g != nil {
		return g.ID + "/" + n.ID
	}
	return n.ID
}

func nonNil(pts []sld.Point) []sld.Point {
	if pts == nil {
		return []sld.Point{}
	}
	return pts
}

// WriteLayout encodes the layout of d as indented JSON.
func WriteLayout(d *sld.Diagram, runID string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLayout(d, runID)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes the layout of d to a JSON file at path.
func ExportLayout(d *sld.Diagram, runID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(d, runID, f)
}
