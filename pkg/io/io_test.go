package io_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/sldlayout/pkg/errors"
	sldio "github.com/matzehuels/sldlayout/pkg/io"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/cells"
	"github.com/matzehuels/sldlayout/pkg/sld/position"
	"github.com/matzehuels/sldlayout/pkg/sld/position/clustering"
	"github.com/matzehuels/sldlayout/pkg/sld/sldtest"
	"github.com/matzehuels/sldlayout/pkg/sld/snakeline"
)

func TestReadTopology(t *testing.T) {
	d, err := sldio.ReadTopology(strings.NewReader(sldtest.Topology))
	if err != nil {
		t.Fatalf("ReadTopology() error: %v", err)
	}
	if d.ID != "substation" || len(d.Panels()) != 1 {
		t.Fatalf("diagram %q with %d panels", d.ID, len(d.Panels()))
	}
	g := d.Panels()[0]
	if g.NodeCount() != 5 || len(g.Edges()) != 4 {
		t.Errorf("panel has %d nodes and %d edges, want 5 and 4", g.NodeCount(), len(g.Edges()))
	}
	bus := sldtest.MustNode(t, g, "bbs1")
	if bus.Kind != sld.KindBus || bus.BusbarIndex != 1 || bus.SectionIndex != 1 {
		t.Errorf("bus = %+v", bus)
	}
	d1 := sldtest.MustNode(t, g, "d1")
	if d1.Kind != sld.KindSwitch || d1.SwitchKind != sld.Disconnector {
		t.Errorf("d1 kind %v switch %v", d1.Kind, d1.SwitchKind)
	}
	if l1 := sldtest.MustNode(t, g, "L1"); l1.Order != -1 || l1.Ordered {
		t.Errorf("feeder order = %d (set %v), want unset", l1.Order, l1.Ordered)
	}
}

func TestReadTopologyLinks(t *testing.T) {
	doc := `{
  "id": "S",
  "voltageLevels": [
    {"id": "VL1", "nodes": [
      {"id": "bbs", "kind": "bus", "busbarIndex": 1, "sectionIndex": 1},
      {"id": "b", "kind": "switch"},
      {"id": "T", "kind": "feeder", "direction": "bottom"},
      {"id": "L", "kind": "feeder"}
    ], "edges": [["bbs", "b"], ["b", "T"]]},
    {"id": "VL2", "nodes": [
      {"id": "bbs", "kind": "bus"},
      {"id": "b", "kind": "switch", "open": true},
      {"id": "T", "kind": "feeder"},
      {"id": "L", "kind": "feeder"}
    ], "edges": [["bbs", "b"], ["b", "T"]]}
  ],
  "multiTerminals": [
    {"id": "TR", "kind": "2WT", "feeders": [
      {"voltageLevel": "VL1", "node": "T"}, {"voltageLevel": "VL2", "node": "T"}
    ]}
  ],
  "lines": [
    {"id": "LN", "from": {"voltageLevel": "VL1", "node": "L"}, "to": {"voltageLevel": "VL2", "node": "L"}}
  ]
}`
	d, err := sldio.ReadTopology(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadTopology() error: %v", err)
	}
	if len(d.Middles()) != 1 || d.Middles()[0].Kind != sld.KindMiddle2 {
		t.Fatalf("middles = %v", d.Middles())
	}
	if got := len(d.Legs(d.Middles()[0])); got != 2 {
		t.Errorf("transformer legs = %d, want 2", got)
	}
	if len(d.Links()) != 3 {
		t.Errorf("links = %d, want 3", len(d.Links()))
	}
	vl1, _ := d.Panel("VL1")
	if n := sldtest.MustNode(t, vl1, "T"); n.Direction != sld.DirBottom {
		t.Errorf("preset direction = %v, want BOTTOM", n.Direction)
	}
	vl2, _ := d.Panel("VL2")
	if n := sldtest.MustNode(t, vl2, "b"); !n.Open || n.SwitchKind != sld.Breaker {
		t.Errorf("switch open %v kind %v, want open breaker", n.Open, n.SwitchKind)
	}
}

func TestReadTopologyErrors(t *testing.T) {
	vl := func(nodes, edges string) string {
		return `{"id": "S", "voltageLevels": [{"id": "VL1", "nodes": [` + nodes + `], "edges": [` + edges + `]}]}`
	}
	const bus = `{"id": "bbs", "kind": "bus"}`
	const feeder = `{"id": "L", "kind": "feeder"}`

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{`, "decode topology"},
		{"unknown field", `{"id": "S", "substation": true}`, "decode topology"},
		{"no voltage level", `{"id": "S", "voltageLevels": []}`, "no voltage level"},
		{"unknown kind", vl(`{"id": "x", "kind": "motor"}`, ``), "unknown node kind"},
		{"middle in panel", vl(`{"id": "x", "kind": "middle2"}`, ``), "unknown node kind"},
		{"unknown switch kind", vl(`{"id": "x", "kind": "switch", "switchKind": "fuse"}`, ``), "unknown switch kind"},
		{"bad direction", vl(`{"id": "x", "kind": "feeder", "direction": "left"}`, ``), "direction"},
		{"negative index", vl(`{"id": "x", "kind": "bus", "busbarIndex": -1}`, ``), "negative"},
		{"duplicate node", vl(bus+`,`+bus, ``), "duplicate"},
		{"bad node id", vl(`{"id": "bus 1", "kind": "bus"}`, ``), "invalid element ID"},
		{"unknown edge end", vl(bus, `["bbs", "nope"]`), "edge bbs-nope"},
		{
			"wrong leg count",
			`{"id": "S", "voltageLevels": [{"id": "VL1", "nodes": [` + feeder + `], "edges": []}],
			  "multiTerminals": [{"id": "TR", "kind": "3wt", "feeders": [{"voltageLevel": "VL1", "node": "L"}]}]}`,
			"needs 3 feeders",
		},
		{
			"line on a bus",
			`{"id": "S", "voltageLevels": [{"id": "VL1", "nodes": [` + bus + `,` + feeder + `], "edges": []}],
			  "lines": [{"id": "LN", "from": {"voltageLevel": "VL1", "node": "bbs"}, "to": {"voltageLevel": "VL1", "node": "L"}}]}`,
			"line LN",
		},
		{
			"unknown voltage level",
			`{"id": "S", "voltageLevels": [{"id": "VL1", "nodes": [` + feeder + `], "edges": []}],
			  "lines": [{"id": "LN", "from": {"voltageLevel": "VL9", "node": "L"}, "to": {"voltageLevel": "VL1", "node": "L"}}]}`,
			"unknown voltage level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sldio.ReadTopology(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("ReadTopology() = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestImportTopology(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	if err := os.WriteFile(path, []byte(sldtest.Topology), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := sldio.ImportTopology(path); err != nil {
		t.Fatalf("ImportTopology() error: %v", err)
	}
	if _, err := sldio.ImportTopology(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ImportTopology(missing) = %v, want invalid input", err)
	}
}

// laidOut returns the two-panel transformer diagram with every stage run.
func laidOut(t *testing.T) *sld.Diagram {
	t.Helper()
	d := sldtest.TwoPanels(t, true)
	p := params.Default()
	for _, g := range d.Panels() {
		if err := cells.Detect(g, p, nil); err != nil {
			t.Fatal(err)
		}
		ordered, err := clustering.New().Find(g, p, nil)
		if err != nil {
			t.Fatal(err)
		}
		subs, err := position.Partition(g, ordered, p, nil)
		if err != nil {
			t.Fatal(err)
		}
		position.Place(g, subs)
	}
	if err := snakeline.Run(d, p, nil, nil); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNewLayout(t *testing.T) {
	d := laidOut(t)
	l := sldio.NewLayout(d, "run-1")

	if l.RunID != "run-1" || l.ID != "substation" || len(l.Panels) != 2 {
		t.Fatalf("layout header = %q %q with %d panels", l.RunID, l.ID, len(l.Panels))
	}
	vl2 := l.Panels[1]
	if vl2.Frame.Y != 355 || vl2.Rows != 1 {
		t.Errorf("VL2 frame y %g rows %d, want 355 and 1", vl2.Frame.Y, vl2.Rows)
	}

	nodes := make(map[string]sldio.NodeLayout)
	for _, n := range vl2.Nodes {
		nodes[n.ID] = n
	}
	if bus := nodes["bbs2"]; bus.Row != 1 || bus.Col != 1 || bus.Width != 30 {
		t.Errorf("bus = %+v", bus)
	}
	t2 := nodes["T2"]
	if t2.Y != 375 || t2.Order == nil || *t2.Order != 0 || t2.Direction != "TOP" {
		t.Errorf("feeder = %+v", t2)
	}
	if t2.Cell != "EXTERN_0" {
		t.Errorf("feeder cell = %q, want EXTERN_0", t2.Cell)
	}

	if len(vl2.Cells) != 1 {
		t.Fatalf("cells = %+v", vl2.Cells)
	}
	c := vl2.Cells[0]
	if c.Kind != "EXTERN" || c.Shape != "" || c.Order == nil || *c.Order != 0 {
		t.Errorf("cell = %+v", c)
	}
	if c.Block != "Serial(Leg[bbs2 d2 F2], Feeder[F2 b2 T2])" {
		t.Errorf("cell block = %s", c.Block)
	}

	if len(l.Middles) != 1 || l.Middles[0].X != 45 || l.Middles[0].Y != 310 {
		t.Errorf("middles = %+v", l.Middles)
	}
	if len(l.Links) != 2 || l.Links[0].From != "VL1/T1" || l.Links[0].To != "TR" {
		t.Errorf("links = %+v", l.Links)
	}
}

func TestWriteLayout(t *testing.T) {
	d := laidOut(t)
	var buf bytes.Buffer
	if err := sldio.WriteLayout(d, "run-1", &buf); err != nil {
		t.Fatalf("WriteLayout() error: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"runId", "id", "panels", "middles", "links"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("output misses %q", key)
		}
	}
	if !strings.Contains(buf.String(), "\n  \"panels\"") {
		t.Error("output should be indented")
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := sldio.ExportLayout(d, "run-1", path); err != nil {
		t.Fatalf("ExportLayout() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Error("ExportLayout and WriteLayout disagree")
	}
}
