// Package position assigns structural positions to busbars and cells.
//
// Positioning has three steps:
//
//  1. [BuildSlots] groups busbars that some cell needs stacked in one
//     column range into slots (leg bus sets)
//  2. a [Finder] strategy orders the slots from left to right; [Resolve]
//     then gives every busbar a (row, column) grid position and every extern
//     cell a direction and an order
//  3. [Partition] cuts the ordered slots into subsections, settles the
//     shape of intern cells and [Place] assigns half-unit spans to blocks
//
// The strategies live in the clustering and free subpackages.
package position

import (
	"slices"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
)

// SideCell tags an intern cell side anchored in a slot. Side is undefined
// when the whole cell is anchored there.
type SideCell struct {
	Cell *sld.Cell
	Side sld.Side
}

// Slot is a set of busbars stacked in one structural column range, with
// the cells anchored there.
type Slot struct {
	Buses   []*sld.Node
	Externs []*sld.Cell
	Sides   []SideCell

	seq int
}

// Seq returns the creation rank of the slot, used to break ties.
func (s *Slot) Seq() int { return s.seq }

// Has reports whether bus is part of the slot.
func (s *Slot) Has(bus *sld.Node) bool { return slices.Contains(s.Buses, bus) }

// Shared returns the number of busbars common to s and o.
func (s *Slot) Shared(o *Slot) int {
	n := 0
	for _, b := range s.Buses {
		if o.Has(b) {
			n++
		}
	}
	return n
}

// SideOf returns the side of c anchored in the slot and whether c is anchored at all.
func (s *Slot) SideOf(c *sld.Cell) (sld.Side, bool) {
	for _, sc := range s.Sides {
		if sc.Cell == c {
			return sc.Side, true
		}
	}
	return sld.SideUndefined, false
}

func (s *Slot) subsetOf(o *Slot) bool { return s.Shared(o) == len(s.Buses) }

func (s *Slot) addBuses(buses []*sld.Node) {
	for _, b := range buses {
		if !s.Has(b) {
			s.Buses = append(s.Buses, b)
		}
	}
}

func (s *Slot) absorb(o *Slot) {
	s.addBuses(o.Buses)
	s.Externs = append(s.Externs, o.Externs...)
	s.Sides = append(s.Sides, o.Sides...)
}

func (s *Slot) normalize() {
	slices.SortFunc(s.Buses, func(a, b *sld.Node) int { return a.Index - b.Index })
	slices.SortStableFunc(s.Externs, func(a, b *sld.Cell) int { return a.Number - b.Number })
}

// BuildSlots creates one slot per extern cell, or per shunt-linked group of
// extern cells when shunts are handled, and one or two per intern cell:
// two when its sides reach different busbar sets. A slot whose busbars are
// a subset of another slot's is merged into it; equal sets merge into the
// older slot. Busbars left without a slot get one of their own.
func BuildSlots(g *sld.Graph, p params.Parameters) []*Slot {
	var slots []*Slot
	add := func(buses []*sld.Node) *Slot {
		s := &Slot{seq: len(slots)}
		s.addBuses(buses)
		slots = append(slots, s)
		return s
	}

	externs := g.CellsOfKind(sld.ExternCell)
	sld.SortCells(externs)
	grouped := make(map[*sld.Cell]*Slot)
	for _, c := range externs {
		var s *Slot
		if p.HandleShunts {
			s = shuntGroup(c, grouped)
		}
		if s == nil {
			s = add(c.Buses())
		} else {
			s.addBuses(c.Buses())
		}
		s.Externs = append(s.Externs, c)
		grouped[c] = s
	}

	interns := g.CellsOfKind(sld.InternCell)
	sld.SortCells(interns)
	for _, c := range interns {
		if c.IsSided() && !c.HasShape(sld.ShapeOneLeg, sld.ShapeUnhandled) {
			lb, rb := c.SideBuses(sld.SideLeft), c.SideBuses(sld.SideRight)
			if !sameSet(lb, rb) {
				add(lb).Sides = []SideCell{{Cell: c, Side: sld.SideLeft}}
				add(rb).Sides = []SideCell{{Cell: c, Side: sld.SideRight}}
				continue
			}
		}
		add(c.Buses()).Sides = []SideCell{{Cell: c, Side: sld.SideUndefined}}
	}

	for _, b := range g.Buses() {
		if !slices.ContainsFunc(slots, func(s *Slot) bool { return s.Has(b) }) {
			add([]*sld.Node{b})
		}
	}

	slots = absorbSubsets(slots)
	for _, s := range slots {
		s.normalize()
	}
	return slots
}

// shuntGroup returns the slot already holding an extern cell linked to c
// by a shunt, if any.
func shuntGroup(c *sld.Cell, grouped map[*sld.Cell]*Slot) *Slot {
	for _, s := range c.Shunts {
		for _, sib := range s.Siblings {
			if sib != nil && sib != c && grouped[sib] != nil {
				return grouped[sib]
			}
		}
	}
	return nil
}

func absorbSubsets(slots []*Slot) []*Slot {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(slots) && !changed; i++ {
			for j := range slots {
				if i == j || !slots[i].subsetOf(slots[j]) {
					continue
				}
				if slots[j].subsetOf(slots[i]) && j > i {
					continue
				}
				slots[j].absorb(slots[i])
				slots = slices.Delete(slots, i, i+1)
				changed = true
				break
			}
		}
	}
	return slots
}

func sameSet(a, b []*sld.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for _, n := range a {
		if !slices.Contains(b, n) {
			return false
		}
	}
	return true
}
