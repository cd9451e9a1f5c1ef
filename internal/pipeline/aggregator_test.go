package pipeline

import (
	"fmt"
	"math"
	"testing"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

func day(date string, tokens int64, cost float64) model.DailyUsage {
	return model.DailyUsage{Date: date, TotalTokens: tokens, TotalCost: cost}
}

func TestWeeklySummary_FixedDivisor(t *testing.T) {
	week := []model.DailyUsage{
		day("2025-06-01", 100, 0.1),
		day("2025-06-02", 100, 0.1),
		day("2025-06-03", 100, 0.1),
		day("2025-06-04", 100, 0.1),
		day("2025-06-05", 100, 0.1),
	}
	got := WeeklySummary(week)
	if got.TotalTokens != 500 {
		t.Fatalf("TotalTokens = %d, want 500", got.TotalTokens)
	}
	if math.Abs(got.AvgDailyTokens-500.0/7) > 1e-9 {
		t.Fatalf("AvgDailyTokens = %v, want %v", got.AvgDailyTokens, 500.0/7)
	}
	if math.Abs(got.AvgDailyCost-0.5/7) > 1e-9 {
		t.Fatalf("AvgDailyCost = %v, want %v", got.AvgDailyCost, 0.5/7)
	}
}

func TestWeeklySummary_Empty(t *testing.T) {
	got := WeeklySummary(nil)
	if got.TotalTokens != 0 || got.AvgDailyTokens != 0 {
		t.Fatalf("WeeklySummary(nil) = %+v, want zero", got)
	}
}

func TestModelBreakdown_Percentages(t *testing.T) {
	today := model.DailyUsage{
		TotalTokens: 1000,
		Models: map[string]model.ModelUsage{
			"claude-sonnet-4-20250514": {Tokens: 600, Cost: 1.2},
			"claude-opus-4-20250514":   {Tokens: 300, Cost: 4.5},
			"claude-3-5-haiku":         {Tokens: 100, Cost: 0.05},
		},
	}
	shares := ModelBreakdown(today)
	if len(shares) != 3 {
		t.Fatalf("len(shares) = %d, want 3", len(shares))
	}

	want := map[string]float64{
		"claude-sonnet-4-20250514": 60,
		"claude-opus-4-20250514":   30,
		"claude-3-5-haiku":         10,
	}
	for _, s := range shares {
		if math.Abs(s.Percentage-want[s.Model]) > 1e-9 {
			t.Errorf("%s percentage = %v, want %v", s.Model, s.Percentage, want[s.Model])
		}
	}

	// Ordered by identifier.
	if shares[0].Model != "claude-3-5-haiku" || shares[0].Color != "#8B5CF6" {
		t.Fatalf("first share = %s/%s, want claude-3-5-haiku/#8B5CF6", shares[0].Model, shares[0].Color)
	}
}

func TestModelBreakdown_ZeroTotal(t *testing.T) {
	today := model.DailyUsage{
		TotalTokens: 0,
		Models: map[string]model.ModelUsage{
			"a": {Tokens: 10},
			"b": {Tokens: 0},
		},
	}
	for _, s := range ModelBreakdown(today) {
		if s.Percentage != 0 || math.IsNaN(s.Percentage) {
			t.Fatalf("%s percentage = %v, want 0", s.Model, s.Percentage)
		}
	}
}

func TestModelBreakdown_SumNeverExceeds100(t *testing.T) {
	cases := []model.DailyUsage{
		{TotalTokens: 100, Models: map[string]model.ModelUsage{"a": {Tokens: 80}, "b": {Tokens: 80}}},
		{TotalTokens: 10, Models: map[string]model.ModelUsage{"a": {Tokens: 1000}}},
		{TotalTokens: 3, Models: map[string]model.ModelUsage{"a": {Tokens: 1}, "b": {Tokens: 1}, "c": {Tokens: 1}}},
		{TotalTokens: 7, Models: map[string]model.ModelUsage{"a": {Tokens: -5}, "b": {Tokens: 2}}},
	}
	for i, today := range cases {
		var sum float64
		for _, s := range ModelBreakdown(today) {
			if s.Percentage < 0 || s.Percentage > 100 {
				t.Fatalf("case %d: %s percentage %v out of range", i, s.Model, s.Percentage)
			}
			sum += s.Percentage
		}
		if sum > 100+1e-9 {
			t.Fatalf("case %d: sum = %v, want <= 100", i, sum)
		}
	}
}

func TestModelColor_Deterministic(t *testing.T) {
	models := map[string]model.ModelUsage{}
	for i := 0; i < 8; i++ {
		models[fmt.Sprintf("model-%d", i)] = model.ModelUsage{Tokens: 1}
	}
	shares := ModelBreakdown(model.DailyUsage{TotalTokens: 8, Models: models})

	want := []string{"#8B5CF6", "#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#EC4899", NeutralColor, NeutralColor}
	for i, s := range shares {
		if s.Color != want[i] {
			t.Errorf("share %d colour = %s, want %s", i, s.Color, want[i])
		}
	}
}

func TestBuildSeries(t *testing.T) {
	series := BuildSeries([]model.DailyUsage{
		day("2025-06-09", 1500, 0.4),
		day("bogus", 10, 0),
	})
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(series))
	}
	if series[0].DisplayDate != "Jun 9" || series[0].ShortDate != "6/9" {
		t.Fatalf("labels = %q/%q, want Jun 9/6/9", series[0].DisplayDate, series[0].ShortDate)
	}
	if series[1].DisplayDate != "bogus" || series[1].Index != 1 {
		t.Fatalf("unparseable date = %+v, want raw label at index 1", series[1])
	}
}

func TestChartPoints_Normalization(t *testing.T) {
	series := BuildSeries([]model.DailyUsage{
		day("2025-06-01", 0, 0),
		day("2025-06-02", 50, 1),
		day("2025-06-03", 200, 2),
	})
	pts := ChartPoints(series, MetricTokens)
	want := []float64{0, 0.25, 1}
	for i, p := range pts {
		if math.Abs(p.NormalizedY-want[i]) > 1e-9 {
			t.Errorf("point %d normalizedY = %v, want %v", i, p.NormalizedY, want[i])
		}
	}

	// A fractional cost peak still spans the full height.
	costs := ChartPoints(BuildSeries([]model.DailyUsage{day("2025-06-01", 0, 0.25), day("2025-06-02", 0, 0.5)}), MetricCost)
	if costs[0].NormalizedY != 0.5 || costs[1].NormalizedY != 1 {
		t.Fatalf("cost normalizedY = %v, %v, want 0.5, 1", costs[0].NormalizedY, costs[1].NormalizedY)
	}
}

func TestChartPoints_AllZero(t *testing.T) {
	pts := ChartPoints(BuildSeries([]model.DailyUsage{day("2025-06-01", 0, 0), day("2025-06-02", 0, 0)}), MetricTokens)
	for _, p := range pts {
		if p.NormalizedY != 0 {
			t.Fatalf("normalizedY = %v, want 0", p.NormalizedY)
		}
	}
}

func TestSelectWindow(t *testing.T) {
	snap := &model.UsageSnapshot{
		ThisWeek:  []model.DailyUsage{day("2025-06-01", 1, 0)},
		ThisMonth: []model.DailyUsage{day("2025-05-01", 1, 0), day("2025-06-01", 1, 0)},
	}
	if got := SelectWindow(snap, Window7d); len(got) != 1 {
		t.Fatalf("7d len = %d, want 1", len(got))
	}
	if got := SelectWindow(snap, Window30d); len(got) != 2 {
		t.Fatalf("30d len = %d, want 2", len(got))
	}
	if got := SelectWindow(nil, Window7d); got != nil {
		t.Fatalf("nil snapshot = %v, want nil", got)
	}
}

func TestParseWindowAndMetric(t *testing.T) {
	if w, ok := ParseWindow("30D"); !ok || w != Window30d {
		t.Fatalf("ParseWindow(30D) = %v, %v", w, ok)
	}
	if w, ok := ParseWindow("year"); ok || w != Window7d {
		t.Fatalf("ParseWindow(year) = %v, %v, want default 7d and false", w, ok)
	}
	if m, ok := ParseMetric("cost"); !ok || m != MetricCost {
		t.Fatalf("ParseMetric(cost) = %v, %v", m, ok)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claude-3-5-sonnet-20241022", "Sonnet-20241022"},
		{"claude-3-opus-20240229", "Opus-20240229"},
		{"claude-3-5-haiku", "Haiku"},
		{"sonnet-4-20250514", "Sonnet 4-"},
		{"gpt-4o", "gpt-4o"},
		{"  ", "  "},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
