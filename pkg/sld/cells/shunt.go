package cells

import (
	"slices"

	"github.com/matzehuels/sldlayout/pkg/sld"
)

// branch is one component of a cell once a hinge candidate is removed.
// Busbars and feeders bound the component and may appear in several
// branches.
type branch struct {
	nodes            []*sld.Node
	buses, feeders   int
	pureBus, pureFdr bool
}

func (b branch) mixed() bool { return b.buses > 0 && b.feeders > 0 }

// splitShunts looks for a hinge node in c whose branches are at least one
// pure-bus branch, at least one pure-feeder branch and exactly one mixed
// branch. The mixed branch is cut at a second hinge: the switch run in
// between becomes a Shunt cell, the hinge side an Extern cell, and the rest
// another Extern cell that is examined again.
func (d *detector) splitShunts(c *sld.Cell) {
	for _, h := range c.Nodes() {
		if !d.hingeCandidate(c, h) {
			continue
		}
		brs := d.branches(c, h, nil)
		var pure [][]*sld.Node
		var mixed []branch
		hasBus, hasFeeder := false, false
		for _, b := range brs {
			switch {
			case b.mixed():
				mixed = append(mixed, b)
			case b.pureBus:
				hasBus = true
				pure = append(pure, b.nodes)
			case b.pureFdr:
				hasFeeder = true
				pure = append(pure, b.nodes)
			}
		}
		if !hasBus || !hasFeeder || len(mixed) != 1 {
			continue
		}
		h2, interior, rest := d.secondHinge(c, h, mixed[0])
		if h2 == nil {
			continue
		}

		left := inCellOrder(c, append([]*sld.Node{h}, slices.Concat(pure...)...))
		right := inCellOrder(c, append([]*sld.Node{h2}, rest...))
		shuntNodes := append(append([]*sld.Node{h}, interior...), h2)

		d.g.RemoveCell(c)
		d.g.Retype(h, sld.KindShunt)
		d.g.Retype(h2, sld.KindShunt)
		a := d.g.AddCell(sld.ExternCell, left)
		b := d.g.AddCell(sld.ExternCell, right)
		s := d.g.AddCell(sld.ShuntCell, shuntNodes)
		s.Siblings = [2]*sld.Cell{a, b}
		a.Shunts = append(a.Shunts, s)
		b.Shunts = append(b.Shunts, s)
		relink(c, a, b)

		d.logger.Debug("split shunt", "cell", c.ID(), "left", a.ID(), "right", b.ID(), "shunt", s.ID(),
			"hinges", []string{h.ID, h2.ID})
		d.splitShunts(b)
		return
	}
}

// hingeCandidate reports whether n may be a shunt hinge: a connectivity
// node with at least three neighbours inside the cell.
func (d *detector) hingeCandidate(c *sld.Cell, n *sld.Node) bool {
	if n.Kind != sld.KindFictitious && n.Kind != sld.KindShunt {
		return false
	}
	count := 0
	for _, m := range d.g.Adjacent(n) {
		if c.Contains(m) {
			count++
		}
	}
	return count >= 3
}

// branches returns the components of c without h (and without the blocked
// node, if any), starting from the neighbours of h in adjacency order.
func (d *detector) branches(c *sld.Cell, h, blocked *sld.Node) []branch {
	seen := make(map[*sld.Node]bool)
	var out []branch
	for _, start := range d.g.Adjacent(h) {
		if !c.Contains(start) || start == blocked || seen[start] {
			continue
		}
		var b branch
		queue := []*sld.Node{start}
		local := map[*sld.Node]bool{start: true}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			b.nodes = append(b.nodes, n)
			switch {
			case n.IsBus():
				b.buses++
				continue
			case n.IsFeeder():
				b.feeders++
				continue
			}
			seen[n] = true
			for _, m := range d.g.Adjacent(n) {
				if m == h || m == blocked || local[m] || !c.Contains(m) {
					continue
				}
				local[m] = true
				queue = append(queue, m)
			}
		}
		b.pureBus = b.buses > 0 && b.feeders == 0
		b.pureFdr = b.feeders > 0 && b.buses == 0
		out = append(out, b)
	}
	return out
}

// secondHinge finds, in breadth-first order from h, the first node of the
// mixed branch that cuts it into a bus-and-feeder-free run attached to h
// and a remainder holding both busbars and feeders.
func (d *detector) secondHinge(c *sld.Cell, h *sld.Node, mixed branch) (h2 *sld.Node, interior, rest []*sld.Node) {
	for _, cand := range mixed.nodes {
		if !d.hingeCandidate(c, cand) {
			continue
		}
		var in []*sld.Node
		clean := true
		for _, b := range d.branches(c, h, cand) {
			if !slices.Contains(mixed.nodes, b.nodes[0]) {
				continue
			}
			if b.buses > 0 || b.feeders > 0 {
				clean = false
				break
			}
			in = append(in, b.nodes...)
		}
		if !clean || len(in) == 0 {
			continue
		}
		var remainder []*sld.Node
		buses, feeders := 0, 0
		for _, n := range mixed.nodes {
			if n == cand || slices.Contains(in, n) {
				continue
			}
			remainder = append(remainder, n)
			if n.IsBus() {
				buses++
			}
			if n.IsFeeder() {
				feeders++
			}
		}
		if buses == 0 || feeders == 0 {
			continue
		}
		return cand, in, remainder
	}
	return nil, nil, nil
}

// inCellOrder filters the nodes of c to those in set, keeping cell order.
func inCellOrder(c *sld.Cell, set []*sld.Node) []*sld.Node {
	var out []*sld.Node
	for _, n := range c.Nodes() {
		if slices.Contains(set, n) {
			out = append(out, n)
		}
	}
	return out
}

// relink moves the shunt links of a replaced extern cell onto whichever of
// its replacements holds the corresponding hinge.
func relink(old *sld.Cell, replacements ...*sld.Cell) {
	for _, s := range old.Shunts {
		hinges := s.ShuntNodes()
		for i := range s.Siblings {
			if s.Siblings[i] != old || i >= len(hinges) {
				continue
			}
			hinge := hinges[0]
			if i == 1 {
				hinge = hinges[len(hinges)-1]
			}
			for _, r := range replacements {
				if r.Contains(hinge) {
					s.Siblings[i] = r
					r.Shunts = append(r.Shunts, s)
					break
				}
			}
		}
	}
}
