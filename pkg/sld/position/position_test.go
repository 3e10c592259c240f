package position_test

import (
	"testing"

	"github.com/matzehuels/sldlayout/pkg/errors"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/cells"
	"github.com/matzehuels/sldlayout/pkg/sld/position"
	"github.com/matzehuels/sldlayout/pkg/sld/position/clustering"
	"github.com/matzehuels/sldlayout/pkg/sld/sldtest"
)

// resolve runs cell detection and the clustering strategy on g.
func resolve(t *testing.T, g *sld.Graph, p params.Parameters) []*position.Slot {
	t.Helper()
	if err := cells.Detect(g, p, nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	ordered, err := clustering.New().Find(g, p, nil)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	return ordered
}

func cell(t *testing.T, g *sld.Graph, id string) *sld.Cell {
	t.Helper()
	for _, c := range g.Cells() {
		if c.ID() == id {
			return c
		}
	}
	t.Fatalf("no cell %s", id)
	return nil
}

func assertBus(t *testing.T, g *sld.Graph, id string, row, col int) {
	t.Helper()
	b := sldtest.MustNode(t, g, id)
	if b.Struct == nil {
		t.Fatalf("%s has no structural position", id)
	}
	if b.Struct.V != row || b.Struct.H != col {
		t.Errorf("%s at %v, want (%d,%d)", id, b.Struct, row, col)
	}
}

func TestBuildSlotsDoubleBusbar(t *testing.T) {
	g := sldtest.DoubleBusbar(t)
	p := params.Default()
	if err := cells.Detect(g, p, nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	slots := position.BuildSlots(g, p)
	if len(slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(slots))
	}
	s := slots[0]
	if len(s.Buses) != 2 || len(s.Externs) != 2 {
		t.Errorf("slot holds %d buses and %d externs, want 2 and 2", len(s.Buses), len(s.Externs))
	}
	coupler := cell(t, g, "INTERN_0")
	if side, ok := s.SideOf(coupler); !ok || side != sld.SideLeft {
		t.Errorf("SideOf(coupler) = %v, %v, want LEFT, true", side, ok)
	}
}

func TestFinishDoubleBusbar(t *testing.T) {
	g := sldtest.DoubleBusbar(t)
	resolve(t, g, params.Default())

	assertBus(t, g, "bbs1", 1, 1)
	assertBus(t, g, "bbs2", 2, 1)
	if g.MaxRow != 2 {
		t.Errorf("MaxRow = %d, want 2", g.MaxRow)
	}

	tests := []struct {
		cell   string
		feeder string
		dir    sld.Direction
		order  int
	}{
		{"EXTERN_1", "L1", sld.DirTop, 0},
		{"EXTERN_2", "L2", sld.DirBottom, 1},
	}
	for _, tt := range tests {
		c := cell(t, g, tt.cell)
		if c.Direction != tt.dir || c.Order != tt.order {
			t.Errorf("%s direction %v order %d, want %v %d", tt.cell, c.Direction, c.Order, tt.dir, tt.order)
		}
		f := sldtest.MustNode(t, g, tt.feeder)
		if !f.Ordered || f.Order != tt.order || f.Direction != tt.dir {
			t.Errorf("%s order %d (set %v) direction %v, want %d %v", tt.feeder, f.Order, f.Ordered, f.Direction, tt.order, tt.dir)
		}
	}
}

func TestFinishSectionedBusbarSharesRow(t *testing.T) {
	g := sldtest.SectionedBusbar(t)
	ordered := resolve(t, g, params.Default())

	if len(ordered) != 2 {
		t.Fatalf("slots = %d, want 2", len(ordered))
	}
	if !ordered[0].Has(sldtest.MustNode(t, g, "bbs1")) {
		t.Error("first slot should hold bbs1")
	}
	assertBus(t, g, "bbs1", 1, 1)
	assertBus(t, g, "bbs2", 1, 2)
	if g.MaxRow != 1 {
		t.Errorf("MaxRow = %d, want 1", g.MaxRow)
	}
}

func TestFinishPresetDirection(t *testing.T) {
	g := sldtest.New(t, "VL1").
		Bus("bbs1", 1, 1).
		Disconnector("d1").Fict("F1").Breaker("b1").FeederDir("L1", sld.DirBottom).
		Chain("bbs1", "d1", "F1", "b1", "L1").
		Disconnector("d2").Fict("F2").Breaker("b2").Feeder("L2").
		Chain("bbs1", "d2", "F2", "b2", "L2").
		Graph()
	resolve(t, g, params.Default())

	if c := cell(t, g, "EXTERN_0"); c.Direction != sld.DirBottom {
		t.Errorf("preset cell direction = %v, want BOTTOM", c.Direction)
	}
	if c := cell(t, g, "EXTERN_1"); c.Direction != sld.DirTop {
		t.Errorf("free cell direction = %v, want TOP", c.Direction)
	}
}

func TestPartitionFlatCoupler(t *testing.T) {
	g := sldtest.SectionedBusbar(t)
	p := params.Default()
	ordered := resolve(t, g, p)

	subs, err := position.Partition(g, ordered, p, nil)
	if err != nil {
		t.Fatalf("Partition() error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subsections = %d, want 2", len(subs))
	}
	coupler := cell(t, g, "INTERN_0")
	if coupler.Shape != sld.ShapeFlat || coupler.Direction != sld.DirMiddle {
		t.Errorf("coupler shape %v direction %v, want FLAT MIDDLE", coupler.Shape, coupler.Direction)
	}
	if len(subs[0].Lefts) != 1 || len(subs[1].Rights) != 1 {
		t.Errorf("coupler sides not registered: lefts %d rights %d", len(subs[0].Lefts), len(subs[1].Rights))
	}

	position.Place(g, subs)
	bbs1, bbs2 := sldtest.MustNode(t, g, "bbs1"), sldtest.MustNode(t, g, "bbs2")
	if bbs1.BusPos.H != 0 || bbs1.BusPos.HSpan != 2 {
		t.Errorf("bbs1 span = %+v, want H 0 HSpan 2", bbs1.BusPos)
	}
	if bbs2.BusPos.H != 10 || bbs2.BusPos.HSpan != 2 {
		t.Errorf("bbs2 span = %+v, want H 10 HSpan 2", bbs2.BusPos)
	}
	if coupler.Root.Pos.H != 2 || coupler.Level != 0 {
		t.Errorf("flat coupler at H %d level %d, want H 2 level 0", coupler.Root.Pos.H, coupler.Level)
	}
	if g.HSpan != 12 {
		t.Errorf("HSpan = %d, want 12", g.HSpan)
	}
}

func TestPartitionVerticalCoupler(t *testing.T) {
	g := sldtest.DoubleBusbar(t)
	p := params.Default()
	ordered := resolve(t, g, p)

	subs, err := position.Partition(g, ordered, p, nil)
	if err != nil {
		t.Fatalf("Partition() error: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("subsections = %d, want 1", len(subs))
	}
	coupler := cell(t, g, "INTERN_0")
	if coupler.Shape != sld.ShapeVertical {
		t.Errorf("coupler shape = %v, want VERTICAL", coupler.Shape)
	}

	position.Place(g, subs)
	if coupler.Root.Pos.H != 0 || coupler.Level != 1 || coupler.Root.Pos.V != 2 {
		t.Errorf("coupler at H %d level %d V %d, want 0 1 2", coupler.Root.Pos.H, coupler.Level, coupler.Root.Pos.V)
	}
	for id, h := range map[string]int{"EXTERN_1": 8, "EXTERN_2": 10} {
		if got := cell(t, g, id).Root.Pos.H; got != h {
			t.Errorf("%s at H %d, want %d", id, got, h)
		}
	}
	for _, id := range []string{"bbs1", "bbs2"} {
		if b := sldtest.MustNode(t, g, id); b.BusPos.H != 0 || b.BusPos.HSpan != 12 {
			t.Errorf("%s span = %+v, want H 0 HSpan 12", id, b.BusPos)
		}
	}
}

func TestPartitionShunts(t *testing.T) {
	t.Run("ignored", func(t *testing.T) {
		g := sldtest.Shunt(t)
		p := params.Default()
		ordered := resolve(t, g, p)

		if len(ordered) != 2 {
			t.Fatalf("slots = %d, want 2", len(ordered))
		}
		assertBus(t, g, "bbs1", 1, 1)
		assertBus(t, g, "bbs2", 1, 2)
		subs, err := position.Partition(g, ordered, p, nil)
		if err != nil {
			t.Fatalf("Partition() error: %v", err)
		}
		if len(subs) != 2 {
			t.Errorf("subsections = %d, want 2", len(subs))
		}
	})

	t.Run("grouped", func(t *testing.T) {
		g := sldtest.Shunt(t)
		p := params.Default()
		p.HandleShunts = true
		ordered := resolve(t, g, p)

		if len(ordered) != 1 {
			t.Fatalf("slots = %d, want 1", len(ordered))
		}
		subs, err := position.Partition(g, ordered, p, nil)
		if err != nil {
			t.Fatalf("Partition() error: %v", err)
		}
		if len(subs) != 1 {
			t.Fatalf("subsections = %d, want 1", len(subs))
		}
		left, right := cell(t, g, "EXTERN_0"), cell(t, g, "EXTERN_1")
		if ex := subs[0].Externs; len(ex) != 2 || ex[0] != left || ex[1] != right {
			t.Errorf("externs not adjacent: %v", ex)
		}
		if left.Order != 0 || right.Order != 1 {
			t.Errorf("orders = %d, %d, want 0, 1", left.Order, right.Order)
		}
	})

	t.Run("siblings share direction", func(t *testing.T) {
		g := sldtest.Shunt(t)
		resolve(t, g, params.Default())
		for _, id := range []string{"EXTERN_0", "EXTERN_1", "SHUNT_2"} {
			if c := cell(t, g, id); c.Direction != sld.DirTop {
				t.Errorf("%s direction = %v, want TOP", id, c.Direction)
			}
		}
		if l2 := sldtest.MustNode(t, g, "L2"); l2.Direction != sld.DirTop {
			t.Errorf("L2 direction = %v, want TOP", l2.Direction)
		}
	})
}

func TestPartitionRequiresPositions(t *testing.T) {
	g := sldtest.SingleFeeder(t)
	p := params.Default()
	if err := cells.Detect(g, p, nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	_, err := position.Partition(g, position.BuildSlots(g, p), p, nil)
	if !errors.Is(err, errors.ErrCodeInconsistentState) {
		t.Errorf("Partition() = %v, want inconsistent state", err)
	}
}

func TestAssignRowsRequiresSlot(t *testing.T) {
	g := sldtest.SingleFeeder(t)
	if err := position.AssignRows(g, nil); !errors.Is(err, errors.ErrCodeInconsistentState) {
		t.Errorf("AssignRows() = %v, want inconsistent state", err)
	}
}
