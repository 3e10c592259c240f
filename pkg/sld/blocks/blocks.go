// Package blocks decomposes a classified cell into its block tree.
//
// The cell is first cut into primary blocks: maximal runs of switches
// between two terminal nodes. Legs sharing a node with the same three-node
// shape are bundled as stackable, then the blocks are merged by an ordered
// list of rules until a single root remains:
//
//  1. parallel: blocks sharing both endpoints, or feeder runs fanning out of
//     the same node
//  2. serial: two blocks meeting at a non-bus node nothing else uses
//
// When no rule applies the remaining blocks are wrapped in an Undefined
// block, or an UNHANDLED_PATTERN error is returned if the parameters ask
// for it.
package blocks

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// Build computes the root block of c, assigns the drawing axis of every
// block and sizes the tree. A nil logger discards warnings.
func Build(c *sld.Cell, p params.Parameters, logger *log.Logger) error {
	if c == nil {
		return errors.New(errors.ErrCodePrecondition, "nil cell")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	bs := primaries(c)
	if len(bs) == 0 {
		return errors.New(errors.ErrCodePrecondition, "cell %s has no primary block", c.ID())
	}
	bs = bundleStackable(bs, p.Stack)

	root, err := merge(c, bs, p, logger)
	if err != nil {
		return err
	}
	c.Root = root
	stackFeederFans(root, p.FeederStacked)
	assignAxes(c)
	Size(root)
	logger.Debug("built blocks", "cell", c.ID(), "root", root.Kind, "tree", root.String())
	return nil
}

// stackFeederFans marks parallel bundles made only of feeder runs as
// stacked, so they share one column.
func stackFeederFans(root *sld.Block, stacked bool) {
	root.Walk(func(b *sld.Block) {
		if b.Kind != sld.BodyParallel {
			return
		}
		for _, c := range b.Children {
			if c.Kind != sld.FeederPrimary {
				return
			}
		}
		b.Stacked = stacked
	})
}

// primaries cuts the cell into runs that start and end on terminal nodes
// and only cross switches in between. Terminals are scanned in cell order
// and their neighbours in adjacency order.
func primaries(c *sld.Cell) []*sld.Block {
	nodes := c.Nodes()
	if len(nodes) == 0 {
		return nil
	}
	g := nodes[0].Graph()
	in := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		in[n.Index] = true
	}
	used := make(map[[2]int]bool)
	edge := func(a, b *sld.Node) [2]int {
		if a.Index < b.Index {
			return [2]int{a.Index, b.Index}
		}
		return [2]int{b.Index, a.Index}
	}

	var out []*sld.Block
	for _, t := range nodes {
		if !t.Kind.IsTerminal() {
			continue
		}
		for _, n := range g.Adjacent(t) {
			if !in[n.Index] || used[edge(t, n)] {
				continue
			}
			used[edge(t, n)] = true
			run := []*sld.Node{t}
			prev, cur := t, n
			for {
				run = append(run, cur)
				if cur.Kind.IsTerminal() {
					break
				}
				var next *sld.Node
				for _, m := range g.Adjacent(cur) {
					if in[m.Index] && m != prev && !used[edge(cur, m)] {
						next = m
						break
					}
				}
				if next == nil {
					break
				}
				used[edge(cur, next)] = true
				prev, cur = cur, next
			}
			out = append(out, classify(run))
		}
	}
	return out
}

// classify picks the primary kind of a run and orients it: legs start on
// their bus, feeder runs end on their feeder.
func classify(run []*sld.Node) *sld.Block {
	first, last := run[0], run[len(run)-1]
	switch {
	case slices.ContainsFunc(run, (*sld.Node).IsBus):
		if !first.IsBus() && last.IsBus() {
			slices.Reverse(run)
		}
		return sld.NewPrimary(sld.LegPrimary, run)
	case first.IsFeeder() || last.IsFeeder():
		if first.IsFeeder() && !last.IsFeeder() {
			slices.Reverse(run)
		}
		return sld.NewPrimary(sld.FeederPrimary, run)
	default:
		return sld.NewPrimary(sld.BodyPrimary, run)
	}
}

// Stackable reports whether two leg blocks can share one column: both have
// three nodes, the same end and different busbars.
func Stackable(a, b *sld.Block) bool {
	return a.Kind == sld.LegPrimary && b.Kind == sld.LegPrimary &&
		len(a.Nodes) == 3 && len(b.Nodes) == 3 &&
		a.End() == b.End() && a.Start() != b.Start()
}

// bundleStackable groups mutually stackable legs into a LegParallel placed
// where the first leg of the group was.
func bundleStackable(bs []*sld.Block, stack bool) []*sld.Block {
	var out []*sld.Block
	taken := make([]bool, len(bs))
	for i, b := range bs {
		if taken[i] {
			continue
		}
		group := []*sld.Block{b}
		for j := i + 1; j < len(bs); j++ {
			if taken[j] || !Stackable(b, bs[j]) {
				continue
			}
			if slices.ContainsFunc(group, func(x *sld.Block) bool { return x.Start() == bs[j].Start() }) {
				continue
			}
			group = append(group, bs[j])
			taken[j] = true
		}
		if len(group) == 1 {
			out = append(out, b)
			continue
		}
		lp := sld.NewComposed(sld.LegParallel, group)
		lp.Stacked = stack
		out = append(out, lp)
	}
	return out
}
