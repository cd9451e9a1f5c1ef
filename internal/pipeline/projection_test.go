package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

func TestTimeRemaining(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		remaining int64
		want      string
	}{
		{"zero rate", 0, 5000, "unlimited"},
		{"zero rate zero remaining", 0, 0, "unlimited"},
		{"negative rate", -10, 5000, "unlimited"},
		{"minutes", 1200, 1000, "50 minutes"},
		{"one minute", 60, 1, "1 minute"},
		{"hours", 100, 550, "6 hours"},
		{"just under a day", 100, 2390, "24 hours"},
		{"days", 100, 7200, "3 days"},
		{"overage clamps", 100, -500, "0 minutes"},
		{"nan rate", math.NaN(), 100, "N/A"},
		{"inf rate", math.Inf(1), 100, "N/A"},
		{"denormal rate overflows", 1e-320, 1000, "N/A"},
		{"tiny rate past int range", 1e-12, math.MaxInt64, "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeRemaining(tt.rate, tt.remaining).String(); got != tt.want {
				t.Fatalf("TimeRemaining(%v, %d) = %q, want %q", tt.rate, tt.remaining, got, tt.want)
			}
		})
	}
}

func TestTimeRemaining_ZeroRateNeverDivides(t *testing.T) {
	for _, remaining := range []int64{0, 1, 1_000_000, -1} {
		got := TimeRemaining(0, remaining)
		if got.Kind != RemainingUnlimited {
			t.Fatalf("TimeRemaining(0, %d) kind = %v, want unlimited", remaining, got.Kind)
		}
	}
}

func TestDepletion(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	iso := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	tests := []struct {
		name string
		in   string
		rate float64
		want string
	}{
		{"absent", "", 100, "no depletion projected"},
		{"zero burn", iso(48 * time.Hour), 0, "no depletion projected"},
		{"garbage", "not-a-date", 100, "no depletion projected"},
		{"yesterday", iso(-24 * time.Hour), 100, "already depleted"},
		{"now", iso(0), 100, "today"},
		{"half day ago rounds to today", iso(-12 * time.Hour), 100, "today"},
		{"twelve hours", iso(12 * time.Hour), 100, "tomorrow"},
		{"twenty five hours", iso(25 * time.Hour), 100, "in 2 days"},
		{"six days", iso(6 * 24 * time.Hour), 100, "in 6 days"},
		{"seven days", iso(7 * 24 * time.Hour), 100, "in 1 week"},
		{"ten days", iso(10 * 24 * time.Hour), 100, "in 2 weeks"},
		{"forty days", iso(40 * 24 * time.Hour), 100, "in 2 months"},
		{"fractional seconds", "2025-06-10T12:00:00.000Z", 100, "today"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Depletion(tt.in, tt.rate, now).String(); got != tt.want {
				t.Fatalf("Depletion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDepletion_TomorrowRequiresCeilToOne(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	est := Depletion(now.Add(24*time.Hour).Format(time.RFC3339), 10, now)
	if est.Kind != DepletionTomorrow {
		t.Fatalf("exactly 24h ahead: kind = %v, want tomorrow", est.Kind)
	}
	est = Depletion(now.Add(24*time.Hour+time.Minute).Format(time.RFC3339), 10, now)
	if est.Kind != DepletionDays || est.Count != 2 {
		t.Fatalf("24h01m ahead: got %+v, want 2 days", est)
	}
}

func TestTimeProgress(t *testing.T) {
	hour := time.Hour.Milliseconds()
	tests := []struct {
		name  string
		reset *model.ResetInfo
		want  float64
	}{
		{"absent", nil, 0},
		{"no countdown", &model.ResetInfo{NextResetTime: "2025-06-10T00:00:00Z"}, 0},
		{"start of cycle", &model.ResetInfo{TimeUntilReset: model.Millis(24 * hour)}, 0},
		{"half way", &model.ResetInfo{TimeUntilReset: model.Millis(12 * hour)}, 50},
		{"at reset", &model.ResetInfo{TimeUntilReset: model.Millis(0)}, 100},
		{"longer than a cycle", &model.ResetInfo{TimeUntilReset: model.Millis(30 * hour)}, 0},
		{"negative countdown", &model.ResetInfo{TimeUntilReset: model.Millis(-hour)}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeProgress(tt.reset); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("TimeProgress = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResetText_PrefersAuthoritativeSource(t *testing.T) {
	snap := &model.UsageSnapshot{
		ResetInfo:       &model.ResetInfo{TimeUntilReset: model.Millis(3 * time.Hour.Milliseconds())},
		ActualResetInfo: &model.ResetInfo{TimeUntilReset: model.Millis(45 * time.Minute.Milliseconds())},
	}
	if got := ResetText(snap); got != "45m" {
		t.Fatalf("ResetText = %q, want 45m", got)
	}

	snap.ActualResetInfo = nil
	if got := ResetText(snap); got != "3h 0m" {
		t.Fatalf("ResetText fallback = %q, want 3h 0m", got)
	}

	snap.ResetInfo = nil
	if got := ResetText(snap); got != NoActiveSession {
		t.Fatalf("ResetText without sources = %q, want %q", got, NoActiveSession)
	}
}

func TestResetText_FormattedTextWins(t *testing.T) {
	snap := &model.UsageSnapshot{
		ActualResetInfo: &model.ResetInfo{
			TimeUntilReset:         model.Millis(60_000),
			FormattedTimeRemaining: "1m 0s",
		},
	}
	if got := ResetText(snap); got != "1m 0s" {
		t.Fatalf("ResetText = %q, want collector text", got)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0m"},
		{59_999, "0m"},
		{45 * 60_000, "45m"},
		{(2*60 + 5) * 60_000, "2h 5m"},
		{-1, "N/A"},
		{math.MaxInt64, "2562047788015h 12m"},
	}
	for _, tt := range tests {
		if got := FormatCountdown(tt.ms); got != tt.want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestTokenShare(t *testing.T) {
	if got := TokenShare(130); got != 100 {
		t.Fatalf("TokenShare(130) = %v, want 100", got)
	}
	if got := TokenShare(math.NaN()); got != 0 {
		t.Fatalf("TokenShare(NaN) = %v, want 0", got)
	}
}
