// Package dot renders the cell structure of a diagram as a Graphviz graph.
//
// The view is a debugging aid: it shows which nodes the classifier grouped
// into which cell, one cluster per cell, and the block tree of each cell
// when [Options.Detailed] is set. It does not reflect the computed
// coordinates.
//
// # Usage
//
//	src := dot.ToDOT(g, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [DiagramToDOT] draws every panel of a diagram side by side, plus the
// multi-terminal junctions and the lines joining panels.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process. No external binary is needed.
package dot
