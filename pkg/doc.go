// Package pkg provides the core libraries of sldlayout, the single-line
// diagram layout engine.
//
// # Overview
//
// sldlayout places the equipment of a substation on a single-line diagram:
// busbars on rows and columns, bays (cells) above and below them, coupling
// cells between busbars, and the snake lines joining voltage levels through
// transformers and lines. The pkg directory is organized into four areas:
//
//  1. [sld] - Domain model and the layout stages
//  2. [pipeline] - Orchestration (decode → layout → render)
//  3. [io] - JSON topology import and layout export
//  4. [cache], [observability], [params], [errors] - Infrastructure
//
// # Architecture
//
// The data flow through sldlayout:
//
//	JSON topology
//	     ↓
//	[io] package (voltage levels, transformers, lines)
//	     ↓
//	[sld/cells] package (cells and their block trees)
//	     ↓
//	[sld/position] package (busbar rows/columns, cell order, subsections)
//	     ↓
//	[sld/coord] + [sld/snakeline] packages (coordinates and routing)
//	     ↓
//	JSON layout / DOT debug view
//
// # Quick Start
//
// Lay out a topology document:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Input: topology})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Layout)
//
// # Main Packages
//
// [sld] - Nodes, edges, panels (one per voltage level), diagrams, cells and
// blocks. Nodes live in an index-based arena per panel.
//
// [sld/cells] - Classifies nodes into extern, intern and shunt cells and
// organizes intern cells by shape.
//
// [sld/blocks] - Builds the block tree of a cell (legs, feeders, bodies,
// serial and parallel composition).
//
// [sld/position] - The position strategy contract, subsection partitioning
// and structural block placement. Two strategies:
//
//   - [sld/position/clustering]: Merges leg-bus-set clusters by link strength
//   - [sld/position/free]: Follows busbar section chains without constraints
//
// [sld/coord] - Converts structural positions into coordinates and stacks
// voltage-level panels.
//
// [sld/snakeline] - Routes the lines joining panels, middle nodes and
// transformer legs.
//
// [render/dot] - Graphviz DOT debug view of the cell structure.
//
// # Testing
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/sld/...             # Layout stages
//	go test ./internal/...            # CLI and HTTP server
//
// [sld]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld
// [sld/cells]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/cells
// [sld/blocks]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/blocks
// [sld/position]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/position
// [sld/position/clustering]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/position/clustering
// [sld/position/free]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/position/free
// [sld/coord]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/coord
// [sld/snakeline]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/sld/snakeline
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/observability
// [params]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/params
// [errors]: https://pkg.go.dev/github.com/matzehuels/sldlayout/pkg/errors
package pkg
