// Package free orders slots without cluster merging.
//
// Busbars joined end to end by two-bus intern cells form horizontal
// chains. Chains sharing slots are aligned so that their orders agree,
// slots reachable from each other through busbars or chains form a
// cluster, and each cluster is sorted by the chain positions of its
// busbars.
package free

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/position"
)

// Finder is the constraint-free position strategy.
type Finder struct{}

// New returns the constraint-free strategy.
func New() *Finder { return &Finder{} }

// Name returns "free".
func (*Finder) Name() string { return params.StrategyFree }

// Find builds the slots of g, orders them and assigns positions.
func (f *Finder) Find(g *sld.Graph, p params.Parameters, logger *log.Logger) ([]*position.Slot, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	slots := position.BuildSlots(g, p)
	ordered := Order(g, slots, logger)
	if err := position.Finish(g, ordered, logger); err != nil {
		return nil, err
	}
	return ordered, nil
}

// Chain is a run of busbars drawn one after the other on a row.
type Chain []*sld.Node

func (c Chain) index(n *sld.Node) int { return slices.Index(c, n) }

func busLess(a, b *sld.Node) int {
	if a.SectionIndex != b.SectionIndex {
		return a.SectionIndex - b.SectionIndex
	}
	return a.Index - b.Index
}

// Chains returns one chain per group of busbars linked by two-bus intern
// cells, every busbar included. A chain starts at its end busbar with the
// lowest section index and follows the links depth first.
func Chains(g *sld.Graph) []Chain {
	buses := g.Buses()
	links := make(map[*sld.Node][]*sld.Node)
	for _, c := range g.CellsOfKind(sld.InternCell) {
		if c.Shape != sld.ShapeMaybeFlat {
			continue
		}
		lb, rb := c.SideBuses(sld.SideLeft), c.SideBuses(sld.SideRight)
		if len(lb) != 1 || len(rb) != 1 || lb[0] == rb[0] {
			continue
		}
		a, b := lb[0], rb[0]
		if !slices.Contains(links[a], b) {
			links[a] = append(links[a], b)
			links[b] = append(links[b], a)
		}
	}
	for _, ns := range links {
		slices.SortFunc(ns, busLess)
	}

	seen := make(map[*sld.Node]bool)
	var chains []Chain
	for _, b := range buses {
		if seen[b] {
			continue
		}
		comp := component(b, links)
		ends := slices.DeleteFunc(slices.Clone(comp), func(n *sld.Node) bool { return len(links[n]) > 1 })
		if len(ends) == 0 {
			ends = comp
		}
		start := slices.MinFunc(ends, busLess)
		var chain Chain
		var visit func(n *sld.Node)
		visit = func(n *sld.Node) {
			seen[n] = true
			chain = append(chain, n)
			for _, m := range links[n] {
				if !seen[m] {
					visit(m)
				}
			}
		}
		visit(start)
		chains = append(chains, chain)
	}
	return chains
}

func component(b *sld.Node, links map[*sld.Node][]*sld.Node) []*sld.Node {
	out := []*sld.Node{b}
	for i := 0; i < len(out); i++ {
		for _, m := range links[out[i]] {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// chainPos returns the lowest position in ch of a busbar of s.
func chainPos(ch Chain, s *position.Slot) (int, bool) {
	best := -1
	for _, b := range s.Buses {
		if i := ch.index(b); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best, best >= 0
}

// Align reverses later chains whose order disagrees with an earlier chain
// over the slots holding busbars of both.
func Align(chains []Chain, slots []*position.Slot) {
	for x := range chains {
		for y := x + 1; y < len(chains); y++ {
			var px, py []int
			for _, s := range slots {
				a, okA := chainPos(chains[x], s)
				b, okB := chainPos(chains[y], s)
				if okA && okB {
					px, py = append(px, a), append(py, b)
				}
			}
			corr := 0
			for i := range px {
				for j := i + 1; j < len(px); j++ {
					corr += cmp.Compare(px[i], px[j]) * cmp.Compare(py[i], py[j])
				}
			}
			if corr < 0 {
				slices.Reverse(chains[y])
			}
		}
	}
}

// Order sorts the slots cluster by cluster.
func Order(g *sld.Graph, slots []*position.Slot, logger *log.Logger) []*position.Slot {
	chains := Chains(g)
	Align(chains, slots)

	parent := make([]int, len(slots))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}
	holder := make(map[*sld.Node]int)
	for i, s := range slots {
		for _, b := range s.Buses {
			if j, ok := holder[b]; ok {
				union(i, j)
			} else {
				holder[b] = i
			}
		}
	}
	for _, ch := range chains {
		for k := 1; k < len(ch); k++ {
			union(holder[ch[0]], holder[ch[k]])
		}
	}

	groups := make(map[int][]*position.Slot)
	var roots []int
	for i, s := range slots {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], s)
	}

	out := make([]*position.Slot, 0, len(slots))
	for _, r := range roots {
		group := groups[r]
		sortSlots(chains, group)
		out = append(out, group...)
	}
	logger.Debug("free ordering", "chains", len(chains), "clusters", len(roots))
	return out
}

// slotKey is the sort key of a slot: the mean relative position of its
// busbars over the chains holding them, then its position in every chain
// (-1 when absent), then its creation order.
type slotKey struct {
	mean float64
	pos  []int
	seq  int
}

func keyOf(chains []Chain, s *position.Slot) slotKey {
	k := slotKey{pos: make([]int, len(chains)), seq: s.Seq()}
	sum, n := 0.0, 0
	for i, ch := range chains {
		p, ok := chainPos(ch, s)
		if !ok {
			k.pos[i] = -1
			continue
		}
		k.pos[i] = p
		if len(ch) > 1 {
			sum += float64(p) / float64(len(ch)-1)
		}
		n++
	}
	if n > 0 {
		k.mean = sum / float64(n)
	}
	return k
}

func (k slotKey) compare(o slotKey) int {
	if c := cmp.Compare(k.mean, o.mean); c != 0 {
		return c
	}
	if c := slices.Compare(k.pos, o.pos); c != 0 {
		return c
	}
	return k.seq - o.seq
}

// sortSlots orders the slots of one cluster by their keys, computed once.
func sortSlots(chains []Chain, group []*position.Slot) {
	keys := make(map[*position.Slot]slotKey, len(group))
	for _, s := range group {
		keys[s] = keyOf(chains, s)
	}
	slices.SortStableFunc(group, func(a, b *position.Slot) int { return keys[a].compare(keys[b]) })
}
