package coord

import "github.com/matzehuels/sldlayout/pkg/sld"

// Placer positions the frames of the panels of a diagram. Panel sizes are
// already known; gaps[i] is the extra room needed between panel i and
// panel i+1 and may be nil.
type Placer interface {
	Place(panels []*sld.Graph, gaps []float64)
}

// VerticalStack stacks panels from top to bottom, aligned on the left.
type VerticalStack struct {
	Spacing float64
}

// Place implements [Placer].
func (v VerticalStack) Place(panels []*sld.Graph, gaps []float64) {
	y := 0.0
	for i, g := range panels {
		g.Frame.X, g.Frame.Y = 0, y
		y += g.Frame.Height + v.Spacing
		if i < len(gaps) {
			y += gaps[i]
		}
	}
}
