package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// CycleLength is the reset cadence assumed by TimeProgress.
const CycleLength = 24 * time.Hour

// NoActiveSession is shown when neither reset source carries timing.
const NoActiveSession = "no active session"

// RemainingKind is the unit bucket of a time-to-depletion projection.
type RemainingKind int

const (
	RemainingUnknown RemainingKind = iota
	RemainingUnlimited
	RemainingMinutes
	RemainingHours
	RemainingDays
)

// Remaining is a time-to-depletion projection at the current burn rate.
type Remaining struct {
	Kind  RemainingKind
	Count int
}

// TimeRemaining projects how long tokensRemaining lasts at burnRate tokens/hour.
// A non-positive burn rate means no depletion can be projected.
func TimeRemaining(burnRate float64, tokensRemaining int64) Remaining {
	if math.IsNaN(burnRate) || math.IsInf(burnRate, 0) {
		return Remaining{Kind: RemainingUnknown}
	}
	if burnRate <= 0 {
		return Remaining{Kind: RemainingUnlimited}
	}
	if tokensRemaining < 0 {
		tokensRemaining = 0
	}

	hours := float64(tokensRemaining) / burnRate
	if math.IsInf(hours, 0) || hours/24 > math.MaxInt32 {
		return Remaining{Kind: RemainingUnknown}
	}
	switch {
	case hours < 1:
		return Remaining{Kind: RemainingMinutes, Count: int(math.Round(hours * 60))}
	case hours < 24:
		return Remaining{Kind: RemainingHours, Count: int(math.Round(hours))}
	default:
		return Remaining{Kind: RemainingDays, Count: int(math.Round(hours / 24))}
	}
}

func (r Remaining) String() string {
	switch r.Kind {
	case RemainingUnlimited:
		return "unlimited"
	case RemainingMinutes:
		return plural(r.Count, "minute")
	case RemainingHours:
		return plural(r.Count, "hour")
	case RemainingDays:
		return plural(r.Count, "day")
	default:
		return "N/A"
	}
}

// DepletionKind is the narration bucket of a depletion date.
type DepletionKind int

const (
	DepletionNone DepletionKind = iota
	DepletionAlready
	DepletionToday
	DepletionTomorrow
	DepletionDays
	DepletionWeeks
	DepletionMonths
)

// DepletionEstimate narrates when the limit is expected to run out.
type DepletionEstimate struct {
	Kind  DepletionKind
	Count int
}

var depletionLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Depletion narrates predictedDepleted relative to now. Missing or unparseable
// timestamps and a non-positive burn rate yield DepletionNone.
func Depletion(predictedDepleted string, burnRate float64, now time.Time) (est DepletionEstimate) {
	defer func() {
		if recover() != nil {
			est = DepletionEstimate{Kind: DepletionNone}
		}
	}()

	predictedDepleted = strings.TrimSpace(predictedDepleted)
	if predictedDepleted == "" || !(burnRate > 0) {
		return DepletionEstimate{Kind: DepletionNone}
	}

	at, ok := parseTimestamp(predictedDepleted, now.Location())
	if !ok {
		return DepletionEstimate{Kind: DepletionNone}
	}

	diffDays := int(math.Ceil(float64(at.Sub(now)) / float64(24*time.Hour)))
	switch {
	case diffDays < 0:
		return DepletionEstimate{Kind: DepletionAlready}
	case diffDays == 0:
		return DepletionEstimate{Kind: DepletionToday}
	case diffDays == 1:
		return DepletionEstimate{Kind: DepletionTomorrow}
	case diffDays < 7:
		return DepletionEstimate{Kind: DepletionDays, Count: diffDays}
	case diffDays < 30:
		return DepletionEstimate{Kind: DepletionWeeks, Count: ceilDiv(diffDays, 7)}
	default:
		return DepletionEstimate{Kind: DepletionMonths, Count: ceilDiv(diffDays, 30)}
	}
}

func (d DepletionEstimate) String() string {
	switch d.Kind {
	case DepletionAlready:
		return "already depleted"
	case DepletionToday:
		return "today"
	case DepletionTomorrow:
		return "tomorrow"
	case DepletionDays:
		return "in " + plural(d.Count, "day")
	case DepletionWeeks:
		return "in " + plural(d.Count, "week")
	case DepletionMonths:
		return "in " + plural(d.Count, "month")
	default:
		return "no depletion projected"
	}
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for i, layout := range depletionLayouts {
		var (
			t   time.Time
			err error
		)
		switch i {
		case 0:
			t, err = time.Parse(layout, s)
		case len(depletionLayouts) - 1:
			// Date-only ISO strings are UTC midnight.
			t, err = time.Parse(layout, s)
		default:
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeProgress returns how far through the 24h cycle the window is, 0-100.
// A missing countdown yields 0.
func TimeProgress(reset *model.ResetInfo) float64 {
	if !reset.HasCountdown() {
		return 0
	}
	cycle := float64(CycleLength.Milliseconds())
	elapsed := cycle - float64(*reset.TimeUntilReset)
	return clamp(elapsed/cycle*100, 0, 100)
}

// TokenShare clamps a usage percentage for gauges that cannot show overage.
func TokenShare(pct float64) float64 {
	if math.IsNaN(pct) {
		return 0
	}
	return clamp(pct, 0, 100)
}

// ResetText describes the time until reset using the authoritative source
// first and the estimated one as fallback.
func ResetText(s *model.UsageSnapshot) string {
	r := s.EffectiveReset()
	if r == nil {
		return NoActiveSession
	}
	if r.FormattedTimeRemaining != "" {
		return r.FormattedTimeRemaining
	}
	if r.HasCountdown() {
		return FormatCountdown(*r.TimeUntilReset)
	}
	return NoActiveSession
}

// FormatCountdown renders milliseconds as "Hh Mm" or "Mm", flooring both parts.
func FormatCountdown(ms int64) string {
	if ms < 0 {
		return "N/A"
	}
	msPerHour := time.Hour.Milliseconds()
	h := ms / msPerHour
	m := (ms % msPerHour) / time.Minute.Milliseconds()
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
