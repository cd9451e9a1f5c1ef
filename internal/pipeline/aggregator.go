// Package pipeline derives classifications, projections, and chart-ready
// series from a usage snapshot. Every function here is pure.
package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// Window selects which daily series a chart draws from.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

// ParseWindow accepts "7d"/"30d" and their spelled-out forms.
func ParseWindow(s string) (Window, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "7d", "7", "week", "7 days":
		return Window7d, true
	case "30d", "30", "month", "30 days":
		return Window30d, true
	default:
		return Window7d, false
	}
}

// Label returns the human-readable window name.
func (w Window) Label() string {
	if w == Window30d {
		return "Last 30 days"
	}
	return "Last 7 days"
}

// Metric selects which value a series plots.
type Metric string

const (
	MetricTokens Metric = "tokens"
	MetricCost   Metric = "cost"
)

// ParseMetric accepts "tokens" or "cost".
func ParseMetric(s string) (Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tokens", "token":
		return MetricTokens, true
	case "cost", "usd":
		return MetricCost, true
	default:
		return MetricTokens, false
	}
}

// SelectWindow returns thisWeek or thisMonth in upstream order.
func SelectWindow(s *model.UsageSnapshot, w Window) []model.DailyUsage {
	if s == nil {
		return nil
	}
	if w == Window30d {
		return s.ThisMonth
	}
	return s.ThisWeek
}

// SeriesPoint is one bucket of a chart series. Index is the position inside
// the window, not a calendar offset, so missing days compress the x axis.
type SeriesPoint struct {
	DisplayDate string  `json:"displayDate" yaml:"display_date"`
	ShortDate   string  `json:"shortDate" yaml:"short_date"`
	ISODate     string  `json:"isoDate" yaml:"iso_date"`
	TotalTokens int64   `json:"totalTokens" yaml:"total_tokens"`
	TotalCost   float64 `json:"totalCost" yaml:"total_cost"`
	Index       int     `json:"index" yaml:"index"`
}

// Value returns the point's value for the given metric.
func (p SeriesPoint) Value(m Metric) float64 {
	if m == MetricCost {
		return p.TotalCost
	}
	return float64(p.TotalTokens)
}

// BuildSeries maps daily buckets to series points.
func BuildSeries(days []model.DailyUsage) []SeriesPoint {
	return lo.Map(days, func(d model.DailyUsage, i int) SeriesPoint {
		display, short := d.Date, d.Date
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(d.Date)); err == nil {
			display = t.Format("Jan 2")
			short = fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
		}
		return SeriesPoint{
			DisplayDate: display,
			ShortDate:   short,
			ISODate:     d.Date,
			TotalTokens: d.TotalTokens,
			TotalCost:   d.TotalCost,
			Index:       i,
		}
	})
}

// Values extracts metric values from a series.
func Values(series []SeriesPoint, m Metric) []float64 {
	return lo.Map(series, func(p SeriesPoint, _ int) float64 {
		return finite(p.Value(m))
	})
}

// ChartPoints normalizes a series against its maximum, or against 1 when no
// value is positive.
func ChartPoints(series []SeriesPoint, m Metric) []model.ChartPoint {
	peak := lo.Max(Values(series, m))
	if peak <= 0 {
		peak = 1
	}
	return lo.Map(series, func(p SeriesPoint, _ int) model.ChartPoint {
		v := finite(p.Value(m))
		return model.ChartPoint{
			Label:       p.ShortDate,
			Value:       v,
			NormalizedY: clamp(v/peak, 0, 1),
		}
	})
}

// ModelShare is one slice of today's model breakdown.
type ModelShare struct {
	Model       string  `json:"model" yaml:"model"`
	DisplayName string  `json:"displayName" yaml:"display_name"`
	Tokens      int64   `json:"tokens" yaml:"tokens"`
	Cost        float64 `json:"cost" yaml:"cost"`
	Percentage  float64 `json:"percentage" yaml:"percentage"` // share of today's total, 0-100
	Color       string  `json:"color" yaml:"color"`
}

// ModelBreakdown splits today's usage per model. Entries are ordered by model
// identifier so colour assignment is stable between renders.
func ModelBreakdown(today model.DailyUsage) []ModelShare {
	if len(today.Models) == 0 {
		return nil
	}

	names := lo.Keys(today.Models)
	sort.Strings(names)

	shares := make([]ModelShare, 0, len(names))
	var sum float64
	for i, name := range names {
		mu := today.Models[name]
		pct := 0.0
		if today.TotalTokens > 0 {
			pct = clamp(float64(mu.Tokens)/float64(today.TotalTokens)*100, 0, 100)
		}
		sum += pct
		shares = append(shares, ModelShare{
			Model:       name,
			DisplayName: DisplayName(name),
			Tokens:      mu.Tokens,
			Cost:        mu.Cost,
			Percentage:  pct,
			Color:       ModelColor(i),
		})
	}

	// Per-model tokens can exceed the reported total upstream.
	if sum > 100 {
		scale := 100 / sum
		for i := range shares {
			shares[i].Percentage *= scale
		}
	}
	return shares
}

// Percentages extracts the share percentages in breakdown order.
func Percentages(shares []ModelShare) []float64 {
	return lo.Map(shares, func(s ModelShare, _ int) float64 { return s.Percentage })
}

var (
	basePalette     = []string{"#8B5CF6", "#3B82F6", "#10B981"}
	extendedPalette = []string{"#F59E0B", "#EF4444", "#EC4899"}
)

// NeutralColor is used once both palettes are exhausted.
const NeutralColor = "#6B7280"

// ModelColor assigns a colour by position in the breakdown.
func ModelColor(index int) string {
	switch {
	case index < 0:
		return NeutralColor
	case index < len(basePalette):
		return basePalette[index]
	case index < len(basePalette)+len(extendedPalette):
		return extendedPalette[index-len(basePalette)]
	default:
		return NeutralColor
	}
}

// WeekDivisor is the fixed denominator for weekly averages, applied even when
// fewer than seven buckets are present.
const WeekDivisor = 7

// WeekSummary totals the current week.
type WeekSummary struct {
	TotalTokens    int64   `json:"totalTokens" yaml:"total_tokens"`
	TotalCost      float64 `json:"totalCost" yaml:"total_cost"`
	AvgDailyTokens float64 `json:"avgDailyTokens" yaml:"avg_daily_tokens"`
	AvgDailyCost   float64 `json:"avgDailyCost" yaml:"avg_daily_cost"`
}

// WeeklySummary sums thisWeek and averages over WeekDivisor days.
func WeeklySummary(week []model.DailyUsage) WeekSummary {
	tokens := lo.SumBy(week, func(d model.DailyUsage) int64 { return d.TotalTokens })
	cost := lo.SumBy(week, func(d model.DailyUsage) float64 { return d.TotalCost })
	return WeekSummary{
		TotalTokens:    tokens,
		TotalCost:      cost,
		AvgDailyTokens: float64(tokens) / WeekDivisor,
		AvgDailyCost:   cost / WeekDivisor,
	}
}

// TodaySummary is the content of the "today" card.
type TodaySummary struct {
	Tokens     int64   `json:"tokens" yaml:"tokens"`
	Cost       float64 `json:"cost" yaml:"cost"`
	ModelCount int     `json:"modelCount" yaml:"model_count"`
}

// SummarizeToday reads today's bucket.
func SummarizeToday(s *model.UsageSnapshot) TodaySummary {
	if s == nil {
		return TodaySummary{}
	}
	return TodaySummary{
		Tokens:     s.Today.TotalTokens,
		Cost:       s.Today.TotalCost,
		ModelCount: len(s.Today.Models),
	}
}

// finite replaces NaN and infinities with zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
