package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/sldlayout/pkg/cache"
	sldio "github.com/matzehuels/sldlayout/pkg/io"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Decode builds a diagram from the JSON topology in input.
func (r *Runner) Decode(ctx context.Context, input []byte) (*sld.Diagram, error) {
	var d *sld.Diagram
	err := r.stage(ctx, StageDecode, func() error {
		var err error
		d, err = sldio.ReadTopology(bytes.NewReader(input))
		return err
	})
	return d, err
}

// paramsHash is the content hash of the encoded parameters.
func paramsHash(p params.Parameters) string {
	return cache.HashJSON(p)
}

func countCells(d *sld.Diagram) (nodes, cells int) {
	for _, g := range d.Panels() {
		nodes += g.NodeCount()
		cells += len(g.Cells())
	}
	return nodes, cells
}
