package coord

import (
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Geometry holds the vertical landmarks of a panel, in panel coordinates.
type Geometry struct {
	// FirstBusY and LastBusY are the y of the first and last bus rows.
	FirstBusY, LastBusY float64
	// TopHeight and BottomHeight are the extern cell heights above the
	// first and below the last bus row, 0 when no cell is drawn there.
	TopHeight, BottomHeight float64
	Width, Height           float64

	p params.Parameters
}

// NewGeometry measures g. Busbars must have their structural positions and
// cells their directions and levels.
func NewGeometry(g *sld.Graph, p params.Parameters) Geometry {
	geo := Geometry{p: p}
	top, bottom := false, false
	maxLevel := 0
	for _, c := range g.Cells() {
		switch c.Kind {
		case sld.ExternCell:
			top = top || c.Direction == sld.DirTop
			bottom = bottom || c.Direction == sld.DirBottom
		case sld.InternCell:
			maxLevel = max(maxLevel, c.Level)
		}
	}
	if top {
		geo.TopHeight = externHeight(g, p, sld.DirTop)
	}
	if bottom {
		geo.BottomHeight = externHeight(g, p, sld.DirBottom)
	}

	pad := p.VoltageLevelPadding
	topArea := max(geo.TopHeight, float64(maxLevel)*p.InternCellHeight)
	geo.FirstBusY = pad.Top + g.SnakeTop + topArea
	geo.LastBusY = geo.BusY(max(g.MaxRow, 1))
	geo.Height = geo.LastBusY + geo.BottomHeight + g.SnakeBottom + pad.Bottom
	geo.Width = pad.Left + geo.Span(g.HSpan) + pad.Right
	return geo
}

// BusY returns the y of a bus row.
func (geo Geometry) BusY(row int) float64 {
	return geo.FirstBusY + float64(row-1)*geo.p.VerticalSpaceBus
}

// X returns the x of a half-unit structural position.
func (geo Geometry) X(h int) float64 {
	return geo.p.VoltageLevelPadding.Left + geo.Span(h)
}

// Span converts a half-unit span to a width.
func (geo Geometry) Span(h int) float64 { return float64(h) / 2 * geo.p.CellWidth }

// FeederY returns the y of the feeder line on the given side.
func (geo Geometry) FeederY(dir sld.Direction) float64 {
	if dir == sld.DirBottom {
		return geo.LastBusY + geo.BottomHeight
	}
	return geo.FirstBusY - geo.TopHeight
}

// externHeight is the extern cell height for one direction. When cell
// heights adapt to content the tallest body decides, bounded below by the
// minimum extern cell height.
func externHeight(g *sld.Graph, p params.Parameters, dir sld.Direction) float64 {
	if !p.AdaptCellHeightToContent {
		return p.ExternCellHeight
	}
	body := 0.0
	for _, c := range g.CellsOfKind(sld.ExternCell) {
		if c.Direction == dir && c.Root != nil {
			body = max(body, BodyHeight(c.Root, p))
		}
	}
	return max(p.MinExternCellHeight, p.StackHeight+p.FeederSpan+body)
}

// BodyHeight is the height the content of b needs: the sum over serial
// children, the maximum over parallel ones. A body run of n non-bus nodes
// needs n-1 component slots; legs and feeder runs need none.
func BodyHeight(b *sld.Block, p params.Parameters) float64 {
	switch {
	case b.Kind == sld.BodyPrimary:
		n := 0
		for _, node := range b.Nodes {
			if !node.IsBus() {
				n++
			}
		}
		return float64(max(n-1, 0)) * (p.MaxComponentHeight + p.MinSpaceBetweenComponents)
	case b.IsPrimary():
		return 0
	case b.Kind == sld.Serial:
		sum := 0.0
		for _, c := range b.Children {
			sum += BodyHeight(c, p)
		}
		return sum
	default:
		h := 0.0
		for _, c := range b.Children {
			h = max(h, BodyHeight(c, p))
		}
		return h
	}
}
