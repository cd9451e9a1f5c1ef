package live

import (
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

func TestNarrator_Evaluate(t *testing.T) {
	minute := time.Minute.Milliseconds()
	tests := []struct {
		name string
		snap *model.UsageSnapshot
		want []Note
	}{
		{
			name: "nil snapshot",
			snap: nil,
		},
		{
			name: "calm",
			snap: &model.UsageSnapshot{PercentageUsed: 50},
		},
		{
			name: "high",
			snap: &model.UsageSnapshot{PercentageUsed: 85},
			want: []Note{{model.SeverityWarning, "High usage: 85.0%", GlyphWarning}},
		},
		{
			name: "critical boundary",
			snap: &model.UsageSnapshot{PercentageUsed: 95},
			want: []Note{{model.SeverityError, "Critical usage: 95.0%", GlyphCritical}},
		},
		{
			name: "live card warning is not narrated",
			snap: &model.UsageSnapshot{PercentageUsed: 75},
		},
		{
			name: "reset soon",
			snap: &model.UsageSnapshot{
				PercentageUsed: 10,
				ResetInfo:      &model.ResetInfo{TimeUntilReset: model.Millis(45 * minute)},
			},
			want: []Note{{model.SeverityInfo, "Reset in 45m", GlyphReset}},
		},
		{
			name: "critical and reset",
			snap: &model.UsageSnapshot{
				PercentageUsed: 96,
				ResetInfo:      &model.ResetInfo{TimeUntilReset: model.Millis(5 * minute)},
			},
			want: []Note{
				{model.SeverityError, "Critical usage: 96.0%", GlyphCritical},
				{model.SeverityInfo, "Reset in 5m", GlyphReset},
			},
		},
		{
			name: "reset an hour away is not narrated",
			snap: &model.UsageSnapshot{ResetInfo: &model.ResetInfo{TimeUntilReset: model.Millis(60 * minute)}},
		},
		{
			name: "authoritative reset does not drive narration",
			snap: &model.UsageSnapshot{ActualResetInfo: &model.ResetInfo{TimeUntilReset: model.Millis(5 * minute)}},
		},
		{
			name: "overdue reset is narrated",
			snap: &model.UsageSnapshot{ResetInfo: &model.ResetInfo{TimeUntilReset: model.Millis(-10 * minute)}},
			want: []Note{{model.SeverityInfo, "Reset overdue by 10m", GlyphReset}},
		},
		{
			name: "zero countdown is not narrated",
			snap: &model.UsageSnapshot{ResetInfo: &model.ResetInfo{TimeUntilReset: model.Millis(0)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultNarrator().Evaluate(tt.snap)
			if len(got) != len(tt.want) {
				t.Fatalf("notes = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("note %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
