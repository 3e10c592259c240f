package pipeline_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/pipeline"
	"github.com/matzehuels/sldlayout/pkg/sld/sldtest"
)

func ExampleRunner_Execute() {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	defer runner.Close()

	result, err := runner.Execute(context.Background(), pipeline.Options{Input: []byte(sldtest.Topology)})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("panels=%d nodes=%d cells=%d cached=%t\n",
		result.Stats.Panels, result.Stats.Nodes, result.Stats.Cells, result.CacheInfo.LayoutHit)
	// Output: panels=1 nodes=5 cells=1 cached=false
}
