package sld

import (
	"fmt"
	"slices"
	"strings"
)

// BlockKind is the tag of the block union.
type BlockKind int

const (
	// LegPrimary is Bus, switches, then a non-bus terminal.
	LegPrimary BlockKind = iota
	// BodyPrimary is a switch run between two non-bus, non-feeder terminals.
	BodyPrimary
	// FeederPrimary is a switch run ending on a feeder.
	FeederPrimary
	// Serial chains blocks sharing an endpoint.
	Serial
	// LegParallel bundles leg blocks.
	LegParallel
	// BodyParallel bundles non-leg blocks sharing both endpoints.
	BodyParallel
	// Undefined wraps blocks no merge rule could combine.
	Undefined
)

var blockKindNames = [...]string{"LegPrimary", "BodyPrimary", "FeederPrimary", "Serial", "LegParallel", "BodyParallel", "Undefined"}

// String returns the kind name.
func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "Unknown"
}

// IsPrimary reports whether the kind is a primary (node run) kind.
func (k BlockKind) IsPrimary() bool { return k <= FeederPrimary }

// IsParallel reports whether children of this kind sit side by side across the block axis.
func (k BlockKind) IsParallel() bool { return k == LegParallel || k == BodyParallel || k == Undefined }

// Block is a node of a cell's block tree. Primary blocks hold a node run;
// composed blocks hold children.
type Block struct {
	Kind     BlockKind
	Nodes    []*Node
	Children []*Block
	Parent   *Block

	// Axis is the drawing direction of the block. A serial block chains its
	// children along it; the children of a parallel block each run along it
	// and sit side by side across it.
	Axis Axis
	// Stacked marks a parallel block whose children share one column.
	Stacked bool

	Pos   Position
	Coord Coord
}

// NewPrimary creates a primary block over a node run.
func NewPrimary(kind BlockKind, nodes []*Node) *Block {
	return &Block{Kind: kind, Nodes: slices.Clone(nodes)}
}

// NewComposed creates a composed block and adopts the children.
func NewComposed(kind BlockKind, children []*Block) *Block {
	b := &Block{Kind: kind, Children: slices.Clone(children)}
	for _, c := range b.Children {
		c.Parent = b
	}
	return b
}

// IsPrimary reports whether b is a primary block.
func (b *Block) IsPrimary() bool { return b.Kind.IsPrimary() }

// IsLegLike reports whether b is a leg or a bundle of legs.
func (b *Block) IsLegLike() bool { return b.Kind == LegPrimary || b.Kind == LegParallel }

// Start returns the first extremity node.
func (b *Block) Start() *Node {
	if b.IsPrimary() {
		return b.Nodes[0]
	}
	return b.Children[0].Start()
}

// End returns the last extremity node.
func (b *Block) End() *Node {
	if b.IsPrimary() {
		return b.Nodes[len(b.Nodes)-1]
	}
	if b.Kind == Serial {
		return b.Children[len(b.Children)-1].End()
	}
	return b.Children[0].End()
}

// Extremities returns the distinct start and end nodes of the block,
// including every start of a parallel bundle.
func (b *Block) Extremities() []*Node {
	var out []*Node
	add := func(n *Node) {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	switch {
	case b.IsPrimary():
		add(b.Start())
		add(b.End())
	case b.Kind == Serial:
		for _, n := range b.Children[0].Extremities() {
			if n != b.Children[0].End() || len(b.Children) == 1 {
				add(n)
			}
		}
		last := b.Children[len(b.Children)-1]
		for _, n := range last.Extremities() {
			if n != last.Start() {
				add(n)
			}
		}
	default:
		for _, c := range b.Children {
			for _, n := range c.Extremities() {
				add(n)
			}
		}
	}
	return out
}

// Reverse flips the block so that Start and End are exchanged.
func (b *Block) Reverse() {
	if b.IsPrimary() {
		slices.Reverse(b.Nodes)
		return
	}
	if b.Kind == Serial {
		slices.Reverse(b.Children)
	}
	for _, c := range b.Children {
		c.Reverse()
	}
}

// Walk visits b and its descendants depth-first, parents before children.
func (b *Block) Walk(fn func(*Block)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Primaries returns the primary blocks of the subtree in visit order.
func (b *Block) Primaries() []*Block {
	var out []*Block
	b.Walk(func(x *Block) {
		if x.IsPrimary() {
			out = append(out, x)
		}
	})
	return out
}

// Buses returns the distinct bus nodes of the subtree in visit order.
func (b *Block) Buses() []*Node {
	var out []*Node
	for _, p := range b.Primaries() {
		for _, n := range p.Nodes {
			if n.Kind == KindBus && !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// AllNodes returns the distinct nodes of the subtree in visit order.
func (b *Block) AllNodes() []*Node {
	var out []*Node
	for _, p := range b.Primaries() {
		for _, n := range p.Nodes {
			if !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// String renders the block tree compactly, e.g. "Serial(Leg[b1 d1 f], Feeder[f br l])".
func (b *Block) String() string {
	var sb strings.Builder
	b.write(&sb)
	return sb.String()
}

func (b *Block) write(sb *strings.Builder) {
	if b.IsPrimary() {
		ids := make([]string, len(b.Nodes))
		for i, n := range b.Nodes {
			ids[i] = n.ID
		}
		fmt.Fprintf(sb, "%s[%s]", strings.TrimSuffix(b.Kind.String(), "Primary"), strings.Join(ids, " "))
		return
	}
	sb.WriteString(b.Kind.String())
	sb.WriteByte('(')
	for i, c := range b.Children {
		if i > 0 {
			sb.WriteString(", ")
		}
		c.write(sb)
	}
	sb.WriteByte(')')
}
