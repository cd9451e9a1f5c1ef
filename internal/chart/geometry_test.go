package chart

import (
	"math"
	"strings"
	"testing"
)

func TestPoints_SinglePointAtPadding(t *testing.T) {
	f := DefaultFrame(800)
	pts := Points([]float64{42}, f)
	if len(pts) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(pts))
	}
	if pts[0].X != f.Padding {
		t.Fatalf("x = %v, want %v", pts[0].X, f.Padding)
	}
	// 42 is the series max, so it sits on the top edge.
	if pts[0].Y != f.Padding {
		t.Fatalf("y = %v, want %v", pts[0].Y, f.Padding)
	}
}

func TestPoints_Mapping(t *testing.T) {
	f := Frame{Width: 280, Height: 180, Padding: 40} // plot 200x100
	pts := Points([]float64{0, 50, 100}, f)
	want := []Point{
		{X: 40, Y: 140, Value: 0},
		{X: 140, Y: 90, Value: 50},
		{X: 240, Y: 40, Value: 100},
	}
	for i := range want {
		if math.Abs(pts[i].X-want[i].X) > 1e-9 || math.Abs(pts[i].Y-want[i].Y) > 1e-9 {
			t.Errorf("point %d = %+v, want %+v", i, pts[i], want[i])
		}
	}
}

func TestEmptyAndDegenerate(t *testing.T) {
	f := DefaultFrame(800)
	if got := AreaPath(nil, f); got != "" {
		t.Fatalf("AreaPath(nil) = %q, want empty", got)
	}
	if got := LinePath([]float64{}, f); got != "" {
		t.Fatalf("LinePath(empty) = %q, want empty", got)
	}
	tiny := Frame{Width: 60, Height: 240, Padding: 40}
	if got := LinePath([]float64{1, 2}, tiny); got != "" {
		t.Fatalf("LinePath on degenerate frame = %q, want empty", got)
	}
	if got := Bars([]float64{1, 2}, tiny); got != nil {
		t.Fatalf("Bars on degenerate frame = %v, want nil", got)
	}

	g := Build(KindArea, nil, f)
	if !g.Empty || g.Path != "" {
		t.Fatalf("Build(empty) = %+v, want empty geometry", g)
	}
}

func TestAreaPath_ClosesAlongBaseline(t *testing.T) {
	f := Frame{Width: 280, Height: 180, Padding: 40}
	got := AreaPath([]float64{0, 100}, f)
	want := "M 40 140 L 240 40 L 240 140 L 40 140 Z"
	if got != want {
		t.Fatalf("AreaPath = %q, want %q", got, want)
	}
}

func TestLinePath(t *testing.T) {
	f := Frame{Width: 280, Height: 180, Padding: 40}
	got := LinePath([]float64{100, 0}, f)
	want := "M 40 40 L 240 140"
	if got != want {
		t.Fatalf("LinePath = %q, want %q", got, want)
	}
}

func TestBars(t *testing.T) {
	f := Frame{Width: 280, Height: 180, Padding: 40} // plot 200x100, 2 slots of 100
	bars := Bars([]float64{50, 100}, f)
	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}
	if math.Abs(bars[0].Width-70) > 1e-9 {
		t.Fatalf("bar width = %v, want 70", bars[0].Width)
	}
	if math.Abs(bars[0].X-55) > 1e-9 || math.Abs(bars[1].X-155) > 1e-9 {
		t.Fatalf("bar x = %v, %v, want 55, 155", bars[0].X, bars[1].X)
	}
	if math.Abs(bars[0].Height-50) > 1e-9 || math.Abs(bars[0].Y-90) > 1e-9 {
		t.Fatalf("bar 0 = %+v, want height 50 at y 90", bars[0])
	}
}

func TestBuild_KindsAreExclusive(t *testing.T) {
	f := DefaultFrame(600)
	values := []float64{1, 3, 2}

	bar := Build(KindBar, values, f)
	if bar.Path != "" || len(bar.Bars) != 3 || len(bar.Points) != 0 {
		t.Fatalf("bar geometry = %+v, want bars only", bar)
	}
	line := Build(KindLine, values, f)
	if line.Path == "" || len(line.Bars) != 0 || strings.HasSuffix(line.Path, "Z") {
		t.Fatalf("line geometry = %+v, want open path only", line)
	}
	area := Build(KindArea, values, f)
	if !strings.HasSuffix(area.Path, "Z") || len(area.Bars) != 0 {
		t.Fatalf("area geometry = %+v, want closed path only", area)
	}
}

func TestMaxValue_DefaultsToOne(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 1},
		{[]float64{0, 0}, 1},
		{[]float64{0.2, 0.5}, 0.5},
		{[]float64{-3, math.Inf(1)}, 1},
		{[]float64{3, math.NaN(), 7}, 7},
	}
	for _, tt := range tests {
		if got := MaxValue(tt.in); got != tt.want {
			t.Errorf("MaxValue(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFractionalPeakReachesTop(t *testing.T) {
	f := DefaultFrame(400)
	pts := Points([]float64{0.25, 0.5}, f)
	if pts[1].Y != f.Padding {
		t.Fatalf("peak y = %v, want top %v", pts[1].Y, f.Padding)
	}
	if mid := f.Baseline() - (f.Baseline()-f.Padding)/2; pts[0].Y != mid {
		t.Fatalf("half-peak y = %v, want %v", pts[0].Y, mid)
	}
}

func TestAllZeroSeriesSitsOnBaseline(t *testing.T) {
	f := DefaultFrame(400)
	for _, p := range Points([]float64{0, 0, 0}, f) {
		if p.Y != f.Baseline() {
			t.Fatalf("y = %v, want baseline %v", p.Y, f.Baseline())
		}
	}
}

func TestTicks(t *testing.T) {
	f := Frame{Width: 280, Height: 180, Padding: 40}
	grid := GridLines(f)
	if len(grid) != 5 || grid[0].Y1 != 40 || grid[4].Y1 != 140 || grid[0].X2 != 240 {
		t.Fatalf("GridLines = %+v", grid)
	}
	ys := YTicks(200, f)
	if ys[0].Value != 200 || ys[0].Pos != 40 || ys[4].Value != 0 || ys[4].Pos != 140 {
		t.Fatalf("YTicks = %+v", ys)
	}
	bars := XLabels(2, KindBar, f)
	if bars[0].Pos != 90 || bars[1].Pos != 190 {
		t.Fatalf("bar XLabels = %+v, want 90, 190", bars)
	}
	pts := XLabels(2, KindLine, f)
	if pts[0].Pos != 40 || pts[1].Pos != 240 {
		t.Fatalf("line XLabels = %+v, want 40, 240", pts)
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind(" Bar "); !ok || k != KindBar {
		t.Fatalf("ParseKind(Bar) = %v, %v", k, ok)
	}
	if k, ok := ParseKind("pie"); ok || k != KindArea {
		t.Fatalf("ParseKind(pie) = %v, %v, want area, false", k, ok)
	}
}
