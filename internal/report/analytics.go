package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// DefaultChartWidth is used when no width is requested.
const DefaultChartWidth = 800

// Query selects what an analytics view plots.
type Query struct {
	Window pipeline.Window
	Metric pipeline.Metric
	Kind   chart.Kind
	Width  float64
}

// DefaultQuery is the 7-day token area chart.
func DefaultQuery() Query {
	return Query{
		Window: pipeline.Window7d,
		Metric: pipeline.MetricTokens,
		Kind:   chart.KindArea,
		Width:  DefaultChartWidth,
	}
}

// ParseQuery validates raw selectors. Empty values take defaults; invalid
// ones are reported together and replaced by defaults.
func ParseQuery(window, metric, kind, width string) (Query, error) {
	q := DefaultQuery()
	var errs []error

	if window = strings.TrimSpace(window); window != "" {
		w, ok := pipeline.ParseWindow(window)
		if !ok {
			errs = append(errs, fmt.Errorf("range %q: want 7d or 30d", window))
		}
		q.Window = w
	}
	if metric = strings.TrimSpace(metric); metric != "" {
		m, ok := pipeline.ParseMetric(metric)
		if !ok {
			errs = append(errs, fmt.Errorf("metric %q: want tokens or cost", metric))
		}
		q.Metric = m
	}
	if kind = strings.TrimSpace(kind); kind != "" {
		k, ok := chart.ParseKind(kind)
		if !ok {
			errs = append(errs, fmt.Errorf("chart %q: want area, line, or bar", kind))
		}
		q.Kind = k
	}
	if width = strings.TrimSpace(width); width != "" {
		v, err := strconv.ParseFloat(width, 64)
		if err != nil || v <= 0 {
			errs = append(errs, fmt.Errorf("width %q: want a positive number", width))
		} else {
			q.Width = v
		}
	}
	return q, errors.Join(errs...)
}

// Analytics is the time-series view of one snapshot.
type Analytics struct {
	GeneratedAt time.Time              `json:"generatedAt" yaml:"generated_at"`
	Window      pipeline.Window        `json:"range" yaml:"range"`
	WindowLabel string                 `json:"rangeLabel" yaml:"range_label"`
	Metric      pipeline.Metric        `json:"metric" yaml:"metric"`
	Series      []pipeline.SeriesPoint `json:"series" yaml:"series"`
	Points      []model.ChartPoint     `json:"points" yaml:"points"`
	Chart       chart.Geometry         `json:"chart" yaml:"chart"`
	Week        pipeline.WeekSummary   `json:"week" yaml:"week"`
	Depletion   string                 `json:"depletion" yaml:"depletion"`
	Breakdown   []pipeline.ModelShare  `json:"breakdown" yaml:"breakdown"`
	Donut       []chart.Arc            `json:"donut" yaml:"donut"`
	DonutTotal  float64                `json:"donutRotation" yaml:"donut_rotation"`
}

// BuildAnalytics derives the analytics view for q.
func BuildAnalytics(s *model.UsageSnapshot, q Query, now time.Time) Analytics {
	if q.Width <= 0 {
		q.Width = DefaultChartWidth
	}
	series := pipeline.BuildSeries(pipeline.SelectWindow(s, q.Window))
	values := pipeline.Values(series, q.Metric)

	a := Analytics{
		GeneratedAt: now,
		Window:      q.Window,
		WindowLabel: q.Window.Label(),
		Metric:      q.Metric,
		Series:      series,
		Points:      pipeline.ChartPoints(series, q.Metric),
		Chart:       chart.Build(q.Kind, values, chart.DefaultFrame(q.Width)),
		Depletion:   pipeline.DepletionEstimate{}.String(),
	}
	if s == nil {
		return a
	}

	shares := pipeline.ModelBreakdown(s.Today)
	pcts := pipeline.Percentages(shares)
	a.Week = pipeline.WeeklySummary(s.ThisWeek)
	a.Depletion = pipeline.Depletion(s.PredictedDepleted, s.BurnRate, now).String()
	a.Breakdown = shares
	a.Donut = chart.Donut(pcts, chart.DonutRadius)
	a.DonutTotal = chart.TotalRotation(pcts)
	return a
}

// Labels returns the x-axis labels of the series, short dates for the
// 30-day window and display dates otherwise.
func (a Analytics) Labels() []string {
	labels := make([]string, len(a.Series))
	for i, p := range a.Series {
		if a.Window == pipeline.Window30d {
			labels[i] = p.ShortDate
		} else {
			labels[i] = p.DisplayDate
		}
	}
	return labels
}

// DonutSlices pairs the breakdown with its colours for SVG rendering.
func (a Analytics) DonutSlices() []chart.DonutSlice {
	slices := make([]chart.DonutSlice, len(a.Breakdown))
	for i, m := range a.Breakdown {
		slices[i] = chart.DonutSlice{Label: m.DisplayName, Percentage: m.Percentage, Color: m.Color}
	}
	return slices
}

// SVGOptions styles the trend chart for the selected metric.
func (a Analytics) SVGOptions() chart.SVGOptions {
	opts := chart.SVGOptions{
		Title:      fmt.Sprintf("%s · %s", a.WindowLabel, a.Metric),
		Color:      chart.TokensColor,
		Labels:     a.Labels(),
		FormatTick: cli.FormatCompact,
	}
	if a.Metric == pipeline.MetricCost {
		opts.Color, opts.FormatTick = chart.CostColor, cli.FormatCurrencyPrecise
	}
	return opts
}
