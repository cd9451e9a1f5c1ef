package chart

import "math"

// DegreesPerPercent converts a share of a ring to an angle.
const DegreesPerPercent = 3.6

// DonutRadius and GaugeRadius are the ring sizes used by the breakdown donut
// and the circular progress gauges.
const (
	DonutRadius = 60
	GaugeRadius = 75
)

// Arc describes one ring segment drawn with the stroke-dash technique: a full
// circle stroked with dasharray = Circumference and dashoffset = DashOffset,
// rotated by Rotation degrees.
type Arc struct {
	Percentage    float64 `json:"percentage"`
	Rotation      float64 `json:"rotation"`
	Length        float64 `json:"length"` // degrees
	Circumference float64 `json:"circumference"`
	DashOffset    float64 `json:"dashOffset"`
}

// Circumference returns 2πr.
func Circumference(radius float64) float64 {
	return 2 * math.Pi * radius
}

// Ring returns a single arc starting at rotation 0.
func Ring(pct, radius float64) Arc {
	return arc(pct, 0, radius)
}

// Gauge is Ring at the gauge radius.
func Gauge(pct float64) Arc {
	return Ring(pct, GaugeRadius)
}

// Donut lays out one arc per percentage. Each arc starts where the previous
// ones end; rotation is clamped at 360 so inconsistent totals overdraw rather
// than wrap.
func Donut(percentages []float64, radius float64) []Arc {
	arcs := make([]Arc, len(percentages))
	var cumulative float64
	for i, pct := range percentages {
		rotation := math.Min(cumulative*DegreesPerPercent, 360)
		arcs[i] = arc(pct, rotation, radius)
		cumulative += clampPct(pct)
	}
	return arcs
}

// TotalRotation is where the ring ends after every arc.
func TotalRotation(percentages []float64) float64 {
	var sum float64
	for _, pct := range percentages {
		sum += clampPct(pct)
	}
	return math.Min(sum*DegreesPerPercent, 360)
}

func arc(pct, rotation, radius float64) Arc {
	p := clampPct(pct)
	c := 0.0
	if radius > 0 {
		c = Circumference(radius)
	}
	return Arc{
		Percentage:    p,
		Rotation:      rotation,
		Length:        p * DegreesPerPercent,
		Circumference: c,
		DashOffset:    c * (1 - p/100),
	}
}

func clampPct(p float64) float64 {
	switch {
	case !isFinite(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
