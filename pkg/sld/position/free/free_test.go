package free

import (
	"testing"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/cells"
	"github.com/matzehuels/sldlayout/pkg/sld/position"
	"github.com/matzehuels/sldlayout/pkg/sld/sldtest"
)

func ids(ch Chain) []string {
	out := make([]string, len(ch))
	for i, n := range ch {
		out[i] = n.ID
	}
	return out
}

func TestChains(t *testing.T) {
	g := sldtest.SectionedBusbar(t)
	if err := cells.Detect(g, params.Default(), nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	chains := Chains(g)
	if len(chains) != 1 {
		t.Fatalf("chains = %d, want 1", len(chains))
	}
	if got := ids(chains[0]); len(got) != 2 || got[0] != "bbs1" || got[1] != "bbs2" {
		t.Errorf("chain = %v, want [bbs1 bbs2]", got)
	}
}

func TestChainsKeepLoneBusbars(t *testing.T) {
	g := sldtest.DoubleBusbar(t)
	if err := cells.Detect(g, params.Default(), nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	// The coupler joins two rows, not two sections: it still links the
	// busbars into one chain.
	chains := Chains(g)
	if len(chains) != 1 || len(chains[0]) != 2 {
		t.Fatalf("chains = %v, want one chain of two", chains)
	}

	lone := sldtest.New(t, "VL2").Bus("x", 1, 1).Bus("y", 2, 1).Graph()
	if chains := Chains(lone); len(chains) != 2 {
		t.Errorf("unlinked busbars give %d chains, want 2", len(chains))
	}
}

func TestAlignReversesDisagreeingChain(t *testing.T) {
	g := sldtest.New(t, "VL1").
		Bus("a1", 1, 1).Bus("a2", 1, 2).Bus("a3", 1, 3).
		Bus("b1", 2, 1).Bus("b2", 2, 2).Bus("b3", 2, 3).
		Graph()
	n := func(id string) *sld.Node { return sldtest.MustNode(t, g, id) }
	chains := []Chain{
		{n("a1"), n("a2"), n("a3")},
		{n("b3"), n("b2"), n("b1")},
	}
	slots := []*position.Slot{
		{Buses: []*sld.Node{n("a1"), n("b1")}},
		{Buses: []*sld.Node{n("a2"), n("b2")}},
		{Buses: []*sld.Node{n("a3"), n("b3")}},
	}

	Align(chains, slots)
	if got := ids(chains[1]); got[0] != "b1" || got[2] != "b3" {
		t.Errorf("second chain = %v, want reversed to [b1 b2 b3]", got)
	}
	if got := ids(chains[0]); got[0] != "a1" {
		t.Errorf("first chain = %v, want unchanged", got)
	}
}

func TestFindSectionedBusbar(t *testing.T) {
	g := sldtest.SectionedBusbar(t)
	p := params.Default()
	p.PositionStrategy = params.StrategyFree
	if err := cells.Detect(g, p, nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	f := New()
	if f.Name() != params.StrategyFree {
		t.Errorf("Name() = %q", f.Name())
	}
	ordered, err := f.Find(g, p, nil)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if len(ordered) != 2 || !ordered[0].Has(sldtest.MustNode(t, g, "bbs1")) {
		t.Fatalf("ordered slots do not start with bbs1")
	}
	for id, col := range map[string]int{"bbs1": 1, "bbs2": 2} {
		if b := sldtest.MustNode(t, g, id); b.Row() != 1 || b.Column() != col {
			t.Errorf("%s at (%d,%d), want (1,%d)", id, b.Row(), b.Column(), col)
		}
	}
}

func TestSortSlotsIgnoresInputOrder(t *testing.T) {
	g := sldtest.New(t, "VL1").
		Bus("a1", 1, 1).Bus("a2", 1, 2).Bus("a3", 1, 3).
		Bus("b1", 2, 1).Bus("b2", 2, 2).Bus("b3", 2, 3).
		Graph()
	n := func(id string) *sld.Node { return sldtest.MustNode(t, g, id) }
	chains := []Chain{{n("a1"), n("a2"), n("a3")}, {n("b1"), n("b2"), n("b3")}}

	// x precedes y on the first chain and z precedes x on the second, while
	// y and z share no chain.
	x := &position.Slot{Buses: []*sld.Node{n("a1"), n("b3")}}
	y := &position.Slot{Buses: []*sld.Node{n("a2")}}
	z := &position.Slot{Buses: []*sld.Node{n("b2")}}

	inputs := [][]*position.Slot{{x, y, z}, {x, z, y}, {y, x, z}, {y, z, x}, {z, x, y}, {z, y, x}}
	var want []*position.Slot
	for _, in := range inputs {
		sortSlots(chains, in)
		if want == nil {
			want = in
			continue
		}
		for i := range in {
			if in[i] != want[i] {
				t.Fatalf("order depends on input order: %v vs %v", in, want)
			}
		}
	}
	for i := 1; i < len(want); i++ {
		if keyOf(chains, want[i-1]).compare(keyOf(chains, want[i])) > 0 {
			t.Errorf("slots %d and %d out of key order", i-1, i)
		}
	}
}
