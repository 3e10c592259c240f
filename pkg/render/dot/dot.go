package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Options configures the DOT output.
type Options struct {
	// Detailed adds the block tree to cell labels and the busbar hints to
	// bus labels.
	Detailed bool
}

var shapes = map[sld.NodeKind]string{
	sld.KindBus:        "box",
	sld.KindSwitch:     "square",
	sld.KindFeeder:     "invtriangle",
	sld.KindFictitious: "point",
	sld.KindShunt:      "circle",
	sld.KindMiddle2:    "doublecircle",
	sld.KindMiddle3:    "doublecircle",
}

var cellColors = map[sld.CellKind]string{
	sld.ExternCell: "lightblue",
	sld.InternCell: "lightyellow",
	sld.ShuntCell:  "mistyrose",
}

// ToDOT converts one voltage-level graph to DOT.
func ToDOT(g *sld.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	writeHeader(&buf)
	writePanel(&buf, g, opts, "  ")
	buf.WriteString("}\n")
	return buf.String()
}

// DiagramToDOT converts a whole diagram to DOT, one cluster per panel.
func DiagramToDOT(d *sld.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	writeHeader(&buf)

	for _, g := range d.Panels() {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+g.ID)
		fmt.Fprintf(&buf, "    label=%q;\n    style=dashed;\n", g.ID)
		writePanel(&buf, g, opts, "    ")
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, m := range d.Middles() {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(m), strings.Join(nodeAttrs(m, opts), ", "))
	}
	for _, l := range d.Links() {
		fmt.Fprintf(&buf, "  %q -- %q [style=dotted, label=%q];\n", nodeID(l.From), nodeID(l.To), l.ID)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer) {
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, style=filled, fillcolor=white, width=0.3, height=0.3];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")
}

func writePanel(buf *bytes.Buffer, g *sld.Graph, opts Options, indent string) {
	cells := append([]*sld.Cell(nil), g.Cells()...)
	sld.SortCells(cells)

	for _, c := range cells {
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+g.ID+"_"+c.ID())
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, cellLabel(c, opts))
		fmt.Fprintf(buf, "%s  style=filled;\n%s  fillcolor=%s;\n", indent, indent, cellColors[c.Kind])
		for _, n := range c.Nodes() {
			if n.IsBus() || n.Cell != c {
				continue
			}
			fmt.Fprintf(buf, "%s  %q [%s];\n", indent, nodeID(n), strings.Join(nodeAttrs(n, opts), ", "))
		}
		fmt.Fprintf(buf, "%s}\n", indent)
	}

	for _, n := range g.Nodes() {
		if n.Cell != nil && !n.IsBus() {
			continue
		}
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, nodeID(n), strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(buf, "%s%q -- %q;\n", indent, nodeID(e.From), nodeID(e.To))
	}
}

func cellLabel(c *sld.Cell, opts Options) string {
	parts := []string{c.ID()}
	switch c.Kind {
	case sld.ExternCell:
		parts = append(parts, c.Direction.String())
		if c.Order >= 0 {
			parts = append(parts, fmt.Sprintf("#%d", c.Order))
		}
	case sld.InternCell:
		parts = append(parts, c.Shape.String())
	}
	label := strings.Join(parts, " ")
	if opts.Detailed && c.Root != nil {
		label += "\n" + c.Root.String()
	}
	return label
}

func nodeID(n *sld.Node) string {
	if g := n.Graph(); g != nil {
		return g.ID + "/" + n.ID
	}
	return n.ID
}

func nodeAttrs(n *sld.Node, opts Options) []string {
	label := n.ID
	if n.Label != "" {
		label = n.Label
	}
	if opts.Detailed && n.IsBus() {
		label += fmt.Sprintf("\nbbs %d sec %d", n.BusbarIndex, n.SectionIndex)
		if n.Struct != nil {
			label += " " + n.Struct.String()
		}
	}

	attrs := []string{fmt.Sprintf("label=%q", label), "shape=" + shapes[n.Kind]}
	switch {
	case n.IsBus():
		attrs = append(attrs, "width=1.2", "height=0.15", "fillcolor=black", "fontcolor=white")
	case n.IsSwitch() && n.SwitchKind == sld.Disconnector:
		attrs[1] = "shape=diamond"
	case n.Kind == sld.KindFictitious:
		attrs[0] = fmt.Sprintf("xlabel=%q", label)
	}
	if n.IsSwitch() && n.Open {
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	return attrs
}
