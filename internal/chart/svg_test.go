package chart

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderSVG_Area(t *testing.T) {
	geom := Build(KindArea, []float64{1, 5, 3}, DefaultFrame(600))
	var buf bytes.Buffer
	err := RenderSVG(&buf, geom, SVGOptions{
		Title:  "Tokens <7d>",
		Labels: []string{"6/1", "6/2", "6/3"},
	})
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`d="` + geom.Path + `"`,
		"Tokens &lt;7d&gt;",
		">6/3</text>",
		"<circle",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSVG(&buf, Build(KindBar, nil, DefaultFrame(600)), SVGOptions{}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(buf.String(), "No data") {
		t.Fatalf("empty svg missing empty state:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "<rect") {
		t.Fatal("empty svg should not draw bars")
	}
}

func TestRenderDonutSVG(t *testing.T) {
	var buf bytes.Buffer
	slices := []DonutSlice{
		{Label: "Sonnet", Percentage: 75, Color: "#8B5CF6"},
		{Label: "Opus", Percentage: 25, Color: "#3B82F6"},
	}
	if err := RenderDonutSVG(&buf, slices, "1.2K"); err != nil {
		t.Fatalf("RenderDonutSVG: %v", err)
	}
	out := buf.String()
	if strings.Count(out, `stroke-dasharray=`) != 2 {
		t.Fatalf("want two arcs:\n%s", out)
	}
	if !strings.Contains(out, "rotate(270 80 80)") {
		t.Fatalf("second arc should start at 270 degrees:\n%s", out)
	}
}
