package sld

import "fmt"

// NodeKind identifies the role of a node in a single-line diagram.
type NodeKind int

const (
	// KindBus is a busbar section, drawn as a horizontal segment.
	KindBus NodeKind = iota
	// KindSwitch is a breaker, disconnector or load break switch.
	KindSwitch
	// KindFeeder is the end of an Extern cell (line, load, generator, transformer leg).
	KindFeeder
	// KindFictitious is a connectivity node with no equipment attached.
	KindFictitious
	// KindShunt is a hinge node linking an Extern cell to a Shunt cell.
	KindShunt
	// KindMiddle2 is the junction of a two-winding transformer between panels.
	KindMiddle2
	// KindMiddle3 is the junction of a three-winding transformer between panels.
	KindMiddle3
)

var nodeKindNames = [...]string{"bus", "switch", "feeder", "fictitious", "shunt", "middle2", "middle3"}

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind converts a kind name back to a NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	for i, name := range nodeKindNames {
		if name == s {
			return NodeKind(i), true
		}
	}
	return 0, false
}

// IsTerminal reports whether walks and block decomposition stop at nodes of this kind.
func (k NodeKind) IsTerminal() bool { return k != KindSwitch }

// SwitchKind distinguishes the switching devices.
type SwitchKind int

const (
	Breaker SwitchKind = iota
	Disconnector
	LoadBreakSwitch
)

// String returns the lowercase name of the switch kind.
func (k SwitchKind) String() string {
	switch k {
	case Breaker:
		return "breaker"
	case Disconnector:
		return "disconnector"
	case LoadBreakSwitch:
		return "load_break_switch"
	default:
		return "unknown"
	}
}

// Direction is the side of the busbars on which an extern cell is drawn.
type Direction int

const (
	DirUndefined Direction = iota
	DirTop
	DirBottom
	DirMiddle
)

// String returns the uppercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirTop:
		return "TOP"
	case DirBottom:
		return "BOTTOM"
	case DirMiddle:
		return "MIDDLE"
	default:
		return "UNDEFINED"
	}
}

// Opposite returns TOP for BOTTOM and vice versa. Other values are returned unchanged.
func (d Direction) Opposite() Direction {
	switch d {
	case DirTop:
		return DirBottom
	case DirBottom:
		return DirTop
	default:
		return d
	}
}

// ParseDirection converts "top", "bottom", "middle" (any case) to a Direction.
func ParseDirection(s string) Direction {
	switch s {
	case "top", "TOP":
		return DirTop
	case "bottom", "BOTTOM":
		return DirBottom
	case "middle", "MIDDLE":
		return DirMiddle
	default:
		return DirUndefined
	}
}

// Side is the lateral side of a two-legged intern cell or of a shunt.
type Side int

const (
	SideUndefined Side = iota
	SideLeft
	SideRight
)

// String returns the uppercase name of the side.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "LEFT"
	case SideRight:
		return "RIGHT"
	default:
		return "UNDEFINED"
	}
}

// Flip returns the other side.
func (s Side) Flip() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return s
	}
}

// Orientation is the drawing orientation of a node symbol.
type Orientation int

const (
	OrientUp Orientation = iota
	OrientDown
	OrientLeft
	OrientRight
)

// String returns the uppercase name of the orientation.
func (o Orientation) String() string {
	switch o {
	case OrientUp:
		return "UP"
	case OrientDown:
		return "DOWN"
	case OrientLeft:
		return "LEFT"
	case OrientRight:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// IsHorizontal reports whether the orientation is LEFT or RIGHT.
func (o Orientation) IsHorizontal() bool { return o == OrientLeft || o == OrientRight }

// Axis is the main axis of a block: the one along which a serial block chains
// its children.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// String returns "vertical" or "horizontal".
func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Point is a real 2-D coordinate.
type Point struct {
	X, Y float64
}

// Shift returns p translated by (dx, dy).
func (p Point) Shift(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Middle returns the point halfway between p and q.
func (p Point) Middle(q Point) Point { return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2} }

// BusPosition is the structural (row, column) grid position of a busbar.
// Rows (V) and columns (H) are 1-based.
type BusPosition struct {
	V int // row
	H int // column within the row
}

// String formats the position as "(v,h)".
func (p BusPosition) String() string { return fmt.Sprintf("(%d,%d)", p.V, p.H) }

// Position is the structural span of a block or a bus, measured in half-cell units.
type Position struct {
	H, V         int
	HSpan, VSpan int
}

// Span returns the span along the given axis.
func (p Position) Span(a Axis) int {
	if a == Horizontal {
		return p.HSpan
	}
	return p.VSpan
}

// Coord is the real geometry of a block: center point and full extents.
type Coord struct {
	X, Y         float64
	XSpan, YSpan float64
}

// Span returns the extent along the given axis.
func (c Coord) Span(a Axis) float64 {
	if a == Horizontal {
		return c.XSpan
	}
	return c.YSpan
}

// Frame is the placed rectangle of a diagram panel.
type Frame struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (f Frame) Right() float64 { return f.X + f.Width }

// Bottom returns the y coordinate of the bottom edge.
func (f Frame) Bottom() float64 { return f.Y + f.Height }
