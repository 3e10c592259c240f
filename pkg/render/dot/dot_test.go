package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/sld"
	"github.com/matzehuels/sldlayout/pkg/sld/cells"
	"github.com/matzehuels/sldlayout/pkg/sld/sldtest"
)

func TestToDOT(t *testing.T) {
	g := sldtest.SingleFeeder(t)
	if err := cells.Detect(g, params.Default(), nil); err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	sldtest.MustNode(t, g, "b1").Open = true

	out := ToDOT(g, Options{})
	for _, want := range []string{
		"graph G {",
		`subgraph "cluster_VL1_EXTERN_0" {`,
		`"VL1/bbs1" [label="bbs1", shape=box, width=1.2`,
		`"VL1/d1" [label="d1", shape=diamond]`,
		`"VL1/F" [xlabel="F", shape=point]`,
		`"VL1/b1" [label="b1", shape=square, style="filled,dashed"]`,
		`"VL1/L1" [label="L1", shape=invtriangle]`,
		`"VL1/bbs1" -- "VL1/d1";`,
		`"VL1/b1" -- "VL1/L1";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Serial(") {
		t.Error("block tree should only appear in detailed output")
	}

	detailed := ToDOT(g, Options{Detailed: true})
	for _, want := range []string{`\nSerial(Leg[bbs1 d1 F], Feeder[F b1 L1])`, `\nbbs 1 sec 1`} {
		if !strings.Contains(detailed, want) {
			t.Errorf("detailed output missing %q", want)
		}
	}
}

func TestToDOTBeforeDetection(t *testing.T) {
	out := ToDOT(sldtest.SingleFeeder(t), Options{})
	if strings.Contains(out, "subgraph") {
		t.Error("no cell clusters expected before detection")
	}
	if !strings.Contains(out, `"VL1/L1" [label="L1"`) {
		t.Error("unowned nodes should still be drawn")
	}
}

func TestDiagramToDOT(t *testing.T) {
	d := sldtest.TwoPanels(t, true)
	out := DiagramToDOT(d, Options{})

	for _, want := range []string{
		`subgraph "cluster_VL1" {`,
		`subgraph "cluster_VL2" {`,
		`"TR" [label="TR", shape=doublecircle]`,
		`"VL1/T1" -- "TR" [style=dotted, label="TR_1"];`,
		`"VL2/T2" -- "TR" [style=dotted, label="TR_2"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="x"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 62.00 116.00" width="62" height="116"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	g := sld.NewGraph("VL1")
	if _, err := g.AddNode(sld.Node{ID: "bbs1", Kind: sld.KindBus}); err != nil {
		t.Fatal(err)
	}
	out, err := RenderSVG(context.Background(), ToDOT(g, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) || !bytes.Contains(out, []byte(`viewBox="0 0 `)) {
		t.Errorf("unexpected SVG output: %.200s", out)
	}
}

func TestRenderInvalidSource(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "graph {"); err == nil {
		t.Error("RenderSVG() should reject broken DOT")
	}
}
