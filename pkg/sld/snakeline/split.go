package snakeline

import (
	"slices"

	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Split cuts the polyline p at its index midpoint. With an odd number of
// points the middle point is the junction; otherwise the junction is the
// middle of the central segment. Both halves end on the junction, the
// second one walked backwards from the last point. seg holds the segment
// supporting the junction.
func Split(p []sld.Point) (first, second []sld.Point, junction sld.Point, seg [2]sld.Point) {
	n := len(p)
	mid := n / 2
	if n%2 == 1 {
		junction = p[mid]
		first = slices.Clone(p[:mid+1])
		second = slices.Clone(p[mid:])
		seg = [2]sld.Point{p[mid-1], p[mid]}
	} else {
		junction = p[mid-1].Middle(p[mid])
		first = append(slices.Clone(p[:mid]), junction)
		second = append([]sld.Point{junction}, p[mid:]...)
		seg = [2]sld.Point{p[mid-1], p[mid]}
	}
	slices.Reverse(second)
	return first, second, junction, seg
}

func vertical(seg [2]sld.Point) bool { return seg[0].X == seg[1].X }

// orient2 orients a two-winding junction. On a horizontal segment the
// symbol points towards b. On a vertical segment it points towards the
// side of the junction when a and b are on different levels, and away
// from them otherwise.
func orient2(m *sld.Node, a, b, j sld.Point, seg [2]sld.Point) {
	m.Rotated = vertical(seg)
	switch {
	case !vertical(seg):
		m.Orientation = sld.OrientLeft
		if b.X > a.X {
			m.Orientation = sld.OrientRight
		}
	case a.Y != b.Y:
		m.Orientation = sld.OrientLeft
		if j.X >= a.X {
			m.Orientation = sld.OrientRight
		}
	default:
		m.Orientation = sld.OrientDown
		if j.Y < a.Y {
			m.Orientation = sld.OrientUp
		}
	}
}

// orient3 orients a three-winding junction towards its third leg.
func orient3(m *sld.Node, j, c sld.Point, seg [2]sld.Point) {
	m.Rotated = vertical(seg)
	if vertical(seg) {
		m.Orientation = sld.OrientLeft
		if c.X > j.X {
			m.Orientation = sld.OrientRight
		}
		return
	}
	m.Orientation = sld.OrientDown
	if c.Y < j.Y {
		m.Orientation = sld.OrientUp
	}
}
