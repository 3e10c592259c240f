// Package clustering orders slots by merging clusters along their
// strongest links.
//
// Every slot starts as its own cluster. Links between slots are scored by
// shared busbars, then by two-bus intern cells whose sides they hold, then
// by the busbars of other two-sided intern cells spanning both. Links are
// processed strongest first; a link joins two clusters only when both of
// its slots sit at an end of their cluster, reversing a cluster so the
// linked ends meet. Clusters left apart are concatenated in creation order.
package clustering

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/position"
)

// Finder is the clustering position strategy.
type Finder struct{}

// New returns the clustering strategy.
func New() *Finder { return &Finder{} }

// Name returns "clustering".
func (*Finder) Name() string { return params.StrategyClustering }

// Find builds the slots of g, orders them and assigns positions.
func (f *Finder) Find(g *sld.Graph, p params.Parameters, logger *log.Logger) ([]*position.Slot, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	slots := position.BuildSlots(g, p)
	ordered := Order(slots, logger)
	if err := position.Finish(g, ordered, logger); err != nil {
		return nil, err
	}
	return ordered, nil
}

// Link scores the affinity between two slots. Fields are compared in
// declaration order.
type Link struct {
	I, J   int
	Shared int
	Flat   int
	Cross  int
}

func (l Link) zero() bool { return l.Shared == 0 && l.Flat == 0 && l.Cross == 0 }

// Links scores every pair of slots with some affinity, strongest first.
// Equal scores keep enumeration order.
func Links(slots []*position.Slot) []Link {
	var out []Link
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			l := score(slots[i], slots[j])
			l.I, l.J = i, j
			if !l.zero() {
				out = append(out, l)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Link) int {
		switch {
		case a.Shared != b.Shared:
			return b.Shared - a.Shared
		case a.Flat != b.Flat:
			return b.Flat - a.Flat
		default:
			return b.Cross - a.Cross
		}
	})
	return out
}

func score(a, b *position.Slot) Link {
	l := Link{Shared: a.Shared(b)}
	var crossBuses []*sld.Node
	for _, sc := range a.Sides {
		if sc.Side == sld.SideUndefined {
			continue
		}
		other, ok := b.SideOf(sc.Cell)
		if !ok || other != sc.Side.Flip() {
			continue
		}
		if sc.Cell.Shape == sld.ShapeMaybeFlat {
			l.Flat++
			continue
		}
		for _, n := range sc.Cell.Buses() {
			if !slices.Contains(crossBuses, n) {
				crossBuses = append(crossBuses, n)
			}
		}
	}
	l.Cross = len(crossBuses)
	return l
}

type cluster struct {
	slots []int
	seq   int
}

func (c *cluster) first() int { return c.slots[0] }
func (c *cluster) last() int  { return c.slots[len(c.slots)-1] }

// at returns the side of the cluster holding slot i, RIGHT first for a
// single-slot cluster, or undefined when i is not at an end.
func (c *cluster) at(i int) sld.Side {
	switch i {
	case c.last():
		return sld.SideRight
	case c.first():
		return sld.SideLeft
	default:
		return sld.SideUndefined
	}
}

// Order merges the slots into one sequence.
func Order(slots []*position.Slot, logger *log.Logger) []*position.Slot {
	owner := make([]*cluster, len(slots))
	clusters := make([]*cluster, len(slots))
	for i := range slots {
		clusters[i] = &cluster{slots: []int{i}, seq: i}
		owner[i] = clusters[i]
	}

	for _, l := range Links(slots) {
		ci, cj := owner[l.I], owner[l.J]
		if ci == cj {
			continue
		}
		si, sj := ci.at(l.I), cj.at(l.J)
		if si == sld.SideUndefined || sj == sld.SideUndefined {
			logger.Debug("link skipped, slot inside its cluster", "i", l.I, "j", l.J)
			continue
		}
		var merged []int
		switch {
		case si == sld.SideRight && sj == sld.SideLeft:
			merged = slices.Concat(ci.slots, cj.slots)
		case si == sld.SideRight && sj == sld.SideRight:
			merged = slices.Concat(ci.slots, reversed(cj.slots))
		case si == sld.SideLeft && sj == sld.SideLeft:
			merged = slices.Concat(reversed(ci.slots), cj.slots)
		default:
			merged = slices.Concat(cj.slots, ci.slots)
		}
		keep := &cluster{slots: merged, seq: min(ci.seq, cj.seq)}
		for _, k := range merged {
			owner[k] = keep
		}
		clusters = slices.DeleteFunc(clusters, func(c *cluster) bool { return c == ci || c == cj })
		clusters = append(clusters, keep)
	}

	slices.SortFunc(clusters, func(a, b *cluster) int { return a.seq - b.seq })
	out := make([]*position.Slot, 0, len(slots))
	for _, c := range clusters {
		for _, k := range c.slots {
			out = append(out, slots[k])
		}
	}
	if len(clusters) > 1 {
		logger.Debug("unlinked clusters concatenated", "clusters", len(clusters))
	}
	return out
}

func reversed(s []int) []int {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}
