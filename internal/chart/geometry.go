// Package chart turns numeric series into plot geometry: SVG path strings,
// bar rectangles, axis ticks, and stroke-dash parameters for rings. It draws
// nothing itself; RenderSVG and the terminal renderers consume its output.
package chart

import (
	"math"
	"strconv"
	"strings"
)

// Kind selects how a series is drawn. Kinds are mutually exclusive.
type Kind string

const (
	KindArea Kind = "area"
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// ParseKind accepts area, line or bar. Unknown input yields KindArea, false.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindArea:
		return KindArea, true
	case KindLine:
		return KindLine, true
	case KindBar:
		return KindBar, true
	default:
		return KindArea, false
	}
}

// Frame is the drawing surface. The plot rectangle is inset by Padding on
// every side.
type Frame struct {
	Width   float64
	Height  float64
	Padding float64
}

const (
	DefaultHeight  = 240
	DefaultPadding = 40
)

// DefaultFrame returns a frame of the given width with the standard chart
// height and padding.
func DefaultFrame(width float64) Frame {
	return Frame{Width: width, Height: DefaultHeight, Padding: DefaultPadding}
}

func (f Frame) PlotWidth() float64  { return f.Width - 2*f.Padding }
func (f Frame) PlotHeight() float64 { return f.Height - 2*f.Padding }

// Baseline is the y coordinate of a zero value.
func (f Frame) Baseline() float64 { return f.Padding + f.PlotHeight() }

// Degenerate reports whether the plot area has no drawable size.
func (f Frame) Degenerate() bool {
	return !(f.PlotWidth() > 0) || !(f.PlotHeight() > 0)
}

// y maps a value to a vertical coordinate; larger values sit higher.
func (f Frame) y(value, peak float64) float64 {
	return f.Padding + f.PlotHeight() - normalize(value, peak)*f.PlotHeight()
}

// Point is one plotted coordinate.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// Rect is one bar.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Value  float64 `json:"value"`
}

// MaxValue returns the series maximum, or 1 when no value is positive.
func MaxValue(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if isFinite(v) && v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return 1
	}
	return peak
}

// Points maps values onto the plot rectangle. A single value sits at the
// left padding.
func Points(values []float64, f Frame) []Point {
	if len(values) == 0 || f.Degenerate() {
		return nil
	}
	peak := MaxValue(values)
	span := float64(max1(len(values) - 1))
	pts := make([]Point, len(values))
	for i, v := range values {
		pts[i] = Point{
			X:     f.Padding + float64(i)/span*f.PlotWidth(),
			Y:     f.y(v, peak),
			Value: sanitize(v),
		}
	}
	return pts
}

// LinePath returns an unfilled path through every point.
func LinePath(values []float64, f Frame) string {
	return pathThrough(Points(values, f))
}

// AreaPath returns a path through every point closed along the baseline.
func AreaPath(values []float64, f Frame) string {
	pts := Points(values, f)
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(pathThrough(pts))
	base := num(f.Baseline())
	b.WriteString(" L " + num(pts[len(pts)-1].X) + " " + base)
	b.WriteString(" L " + num(f.Padding) + " " + base)
	b.WriteString(" Z")
	return b.String()
}

// BarFill is the share of each slot a bar occupies; the rest is split evenly
// on both sides.
const BarFill = 0.7

// Bars returns one rectangle per value.
func Bars(values []float64, f Frame) []Rect {
	if len(values) == 0 || f.Degenerate() {
		return nil
	}
	peak := MaxValue(values)
	slot := f.PlotWidth() / float64(len(values))
	width := slot * BarFill
	rects := make([]Rect, len(values))
	for i, v := range values {
		h := normalize(v, peak) * f.PlotHeight()
		rects[i] = Rect{
			X:      f.Padding + float64(i)*slot + (slot-width)/2,
			Y:      f.Baseline() - h,
			Width:  width,
			Height: h,
			Value:  sanitize(v),
		}
	}
	return rects
}

// Geometry is the drawable output for one chart. Path is set for area and
// line charts, Bars for bar charts, never both.
type Geometry struct {
	Kind   Kind    `json:"kind"`
	Frame  Frame   `json:"frame"`
	Max    float64 `json:"max"`
	Path   string  `json:"path,omitempty"`
	Points []Point `json:"points,omitempty"`
	Bars   []Rect  `json:"bars,omitempty"`
	Empty  bool    `json:"empty"`
}

// Build produces the geometry for kind. Empty is set when there is nothing
// to draw so callers can show an empty state instead.
func Build(kind Kind, values []float64, f Frame) Geometry {
	g := Geometry{Kind: kind, Frame: f, Max: MaxValue(values)}
	if len(values) == 0 || f.Degenerate() {
		g.Empty = true
		return g
	}
	switch kind {
	case KindBar:
		g.Bars = Bars(values, f)
	case KindLine:
		g.Points = Points(values, f)
		g.Path = pathThrough(g.Points)
	default:
		g.Kind = KindArea
		g.Points = Points(values, f)
		g.Path = AreaPath(values, f)
	}
	return g
}

// GridRatios are the fractions of plot height where grid lines are drawn.
var GridRatios = []float64{0, 0.25, 0.5, 0.75, 1}

// Line is a horizontal grid line.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// GridLines returns the horizontal guides, top first.
func GridLines(f Frame) []Line {
	if f.Degenerate() {
		return nil
	}
	lines := make([]Line, len(GridRatios))
	for i, r := range GridRatios {
		y := f.Padding + f.PlotHeight()*r
		lines[i] = Line{X1: f.Padding, Y1: y, X2: f.Width - f.Padding, Y2: y}
	}
	return lines
}

// Tick is an axis label anchored at a position.
type Tick struct {
	Pos   float64
	Value float64
	Index int
}

// YTicks returns value labels for each grid line, largest first.
func YTicks(peak float64, f Frame) []Tick {
	if f.Degenerate() {
		return nil
	}
	ticks := make([]Tick, len(GridRatios))
	for i, r := range GridRatios {
		ticks[i] = Tick{
			Pos:   f.Padding + f.PlotHeight()*r,
			Value: peak * (1 - r),
			Index: i,
		}
	}
	return ticks
}

// XLabels returns the horizontal anchor of each category label. Bar labels
// are centred in their slot; point labels sit under the point.
func XLabels(n int, kind Kind, f Frame) []Tick {
	if n <= 0 || f.Degenerate() {
		return nil
	}
	ticks := make([]Tick, n)
	for i := range ticks {
		var x float64
		if kind == KindBar {
			slot := f.PlotWidth() / float64(n)
			x = f.Padding + float64(i)*slot + slot/2
		} else {
			x = f.Padding + float64(i)/float64(max1(n-1))*f.PlotWidth()
		}
		ticks[i] = Tick{Pos: x, Index: i}
	}
	return ticks
}

func pathThrough(pts []Point) string {
	if len(pts) == 0 {
		return ""
	}
	parts := make([]string, len(pts))
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		parts[i] = cmd + " " + num(p.X) + " " + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func normalize(v, peak float64) float64 {
	if !(peak > 0) {
		return 0
	}
	n := sanitize(v) / peak
	if n < 0 {
		return 0
	}
	return n
}

func sanitize(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
