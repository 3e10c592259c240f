package params_test

import (
	"fmt"

	"github.com/matzehuels/sldlayout/pkg/params"
)

func ExampleDecode() {
	p, err := params.Decode([]byte("cell_width = 80\nposition_strategy = \"free\"\n"), "toml")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(p.CellWidth, p.PositionStrategy, p.Stack)
	// Output: 80 free true
}
