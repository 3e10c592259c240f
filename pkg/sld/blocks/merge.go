package blocks

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// rule is one merge step. apply returns the new block list and true when it
// combined something.
type rule struct {
	name  string
	apply func([]*sld.Block) ([]*sld.Block, bool)
}

// rules are tried in order; the first one that applies wins and the list is
// scanned again from the top.
var rules = []rule{
	{name: "parallel", apply: mergeParallel},
	{name: "serial", apply: mergeSerial},
}

func merge(c *sld.Cell, bs []*sld.Block, p params.Parameters, logger *log.Logger) (*sld.Block, error) {
	for len(bs) > 1 {
		applied := false
		for _, r := range rules {
			if next, ok := r.apply(bs); ok {
				logger.Debug("merged blocks", "cell", c.ID(), "rule", r.name, "remaining", len(next))
				bs, applied = next, true
				break
			}
		}
		if applied {
			continue
		}
		if p.ExceptionIfPatternNotHandled {
			return nil, errors.New(errors.ErrCodeUnhandledPattern,
				"no merge rule applies to %d blocks", len(bs)).At(c.ID())
		}
		logger.Warn("no merge rule applies, using undefined block", "cell", c.ID(), "blocks", len(bs))
		return sld.NewComposed(sld.Undefined, bs), nil
	}
	return bs[0], nil
}

func samePair(a, b *sld.Block) bool {
	return (a.Start() == b.Start() && a.End() == b.End()) ||
		(a.Start() == b.End() && a.End() == b.Start())
}

func feederFan(a, b *sld.Block) bool {
	return a.Kind == sld.FeederPrimary && b.Kind == sld.FeederPrimary && a.Start() == b.Start()
}

// mergeParallel bundles the first block that has a parallel partner with
// every later block parallel to it.
func mergeParallel(bs []*sld.Block) ([]*sld.Block, bool) {
	for i, a := range bs {
		var group []int
		for j := i + 1; j < len(bs); j++ {
			if samePair(a, bs[j]) || feederFan(a, bs[j]) {
				group = append(group, j)
			}
		}
		if len(group) == 0 {
			continue
		}
		children := []*sld.Block{a}
		allLegs := a.IsLegLike()
		for _, j := range group {
			b := bs[j]
			if b.Start() != a.Start() && b.End() == a.Start() {
				b.Reverse()
			}
			allLegs = allLegs && b.IsLegLike()
			children = append(children, b)
		}
		kind := sld.BodyParallel
		if allLegs {
			kind = sld.LegParallel
		}
		out := slices.Clone(bs)
		out[i] = sld.NewComposed(kind, children)
		for k := len(group) - 1; k >= 0; k-- {
			out = slices.Delete(out, group[k], group[k]+1)
		}
		return out, true
	}
	return bs, false
}

// mergeSerial chains two blocks meeting at a node no other block touches.
// The block holding a busbar goes first; otherwise the earlier block does.
func mergeSerial(bs []*sld.Block) ([]*sld.Block, bool) {
	for i, a := range bs {
		for _, x := range []*sld.Node{a.Start(), a.End()} {
			if x.IsBus() {
				continue
			}
			users := usersOf(bs, x)
			if len(users) != 2 {
				continue
			}
			lo, hi := users[0], users[1]
			if lo != i && hi != i {
				continue
			}
			first, second := bs[lo], bs[hi]
			if !isEnd(first, x) || !isEnd(second, x) {
				continue
			}
			if len(first.Buses()) == 0 && len(second.Buses()) > 0 {
				first, second = second, first
			}
			if first.End() != x {
				first.Reverse()
			}
			if second.Start() != x {
				second.Reverse()
			}
			out := slices.Clone(bs)
			out[lo] = sld.NewComposed(sld.Serial, slices.Concat(flatten(first), flatten(second)))
			out = slices.Delete(out, hi, hi+1)
			return out, true
		}
	}
	return bs, false
}

func isEnd(b *sld.Block, x *sld.Node) bool { return b.Start() == x || b.End() == x }

// usersOf returns the indexes of the blocks having x as an extremity.
func usersOf(bs []*sld.Block, x *sld.Node) []int {
	var out []int
	for i, b := range bs {
		if slices.Contains(b.Extremities(), x) {
			out = append(out, i)
		}
	}
	return out
}

func flatten(b *sld.Block) []*sld.Block {
	if b.Kind == sld.Serial {
		return b.Children
	}
	return []*sld.Block{b}
}
