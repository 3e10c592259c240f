// Package snakeline routes the polylines joining diagram elements that are
// not drawn next to each other: transformer legs and lines between
// feeders, within a panel or across panels.
//
// A line between two vertically adjacent panels whose feeders face each
// other runs along the midline of the gap between them. Any other line
// leaves each feeder outward, joins a vertical rail on the right of the
// panels and comes back. Every line takes the next free track of the
// corridor it uses, as counted by a [RoutingState].
//
// [Run] routes twice: the first pass counts the tracks, the panels are
// then grown by the room the tracks need and the second pass routes against
// the final geometry.
package snakeline

import "github.com/matzehuels/sldlayout/pkg/sld"

type exitKey struct {
	panel *sld.Graph
	dir   sld.Direction
}

// RoutingState counts the tracks already taken: exits above or below each
// panel, midlines in each gap between panels and rails on the right.
type RoutingState struct {
	exits    map[exitKey]int
	midlines map[int]int
	rails    int
}

// NewRoutingState returns an empty state.
func NewRoutingState() *RoutingState {
	s := &RoutingState{}
	s.Reset()
	return s
}

// Reset forgets every track.
func (s *RoutingState) Reset() {
	s.exits = make(map[exitKey]int)
	s.midlines = make(map[int]int)
	s.rails = 0
}

// Exits returns the number of tracks used on the given side of a panel.
func (s *RoutingState) Exits(panel *sld.Graph, dir sld.Direction) int {
	return s.exits[exitKey{panel, dir}]
}

// Midlines returns the number of tracks used in the gap below panel i.
func (s *RoutingState) Midlines(i int) int { return s.midlines[i] }

// Rails returns the number of rails used on the right of the panels.
func (s *RoutingState) Rails() int { return s.rails }

func (s *RoutingState) nextExit(panel *sld.Graph, dir sld.Direction) int {
	k := exitKey{panel, dir}
	n := s.exits[k]
	s.exits[k]++
	return n
}

func (s *RoutingState) nextMidline(i int) int {
	n := s.midlines[i]
	s.midlines[i]++
	return n
}

func (s *RoutingState) nextRail() int {
	n := s.rails
	s.rails++
	return n
}
