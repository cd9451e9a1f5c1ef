// Package model defines domain types for ccmonitor usage snapshots and derived values.
package model

// UsageSnapshot is one immutable usage report produced by the collector.
// tokensUsed, tokensRemaining and tokenLimit are reported independently and
// are not guaranteed to be consistent with each other.
type UsageSnapshot struct {
	TokensUsed        int64            `json:"tokensUsed"`
	TokenLimit        int64            `json:"tokenLimit"`
	TokensRemaining   int64            `json:"tokensRemaining"`
	PercentageUsed    float64          `json:"percentageUsed"`
	BurnRate          float64          `json:"burnRate"` // tokens per hour
	CurrentPlan       string           `json:"currentPlan"`
	PredictedDepleted string           `json:"predictedDepleted,omitempty"`
	ResetInfo         *ResetInfo       `json:"resetInfo,omitempty"`
	ActualResetInfo   *ResetInfo       `json:"actualResetInfo,omitempty"`
	Today             DailyUsage       `json:"today"`
	ThisWeek          []DailyUsage     `json:"thisWeek"`
	ThisMonth         []DailyUsage     `json:"thisMonth"`
	Velocity          *Velocity        `json:"velocity,omitempty"`
	Prediction        *Prediction      `json:"prediction,omitempty"`
	SessionTracking   *SessionTracking `json:"sessionTracking,omitempty"`
}

// ResetInfo carries reset timing from one source.
type ResetInfo struct {
	TimeUntilReset         *int64 `json:"timeUntilReset,omitempty"` // milliseconds
	NextResetTime          string `json:"nextResetTime,omitempty"`
	FormattedTimeRemaining string `json:"formattedTimeRemaining,omitempty"`
}

// HasCountdown reports whether a millisecond countdown is present.
func (r *ResetInfo) HasCountdown() bool {
	return r != nil && r.TimeUntilReset != nil
}

// DailyUsage aggregates one calendar day.
type DailyUsage struct {
	Date        string                `json:"date"` // YYYY-MM-DD
	TotalTokens int64                 `json:"totalTokens"`
	TotalCost   float64               `json:"totalCost"` // USD
	Models      map[string]ModelUsage `json:"models,omitempty"`
}

// ModelUsage is the per-model slice of a DailyUsage bucket.
type ModelUsage struct {
	Tokens int64   `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// Trend is the direction of consumption velocity.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Glyph returns the indicator shown next to a trend.
func (t Trend) Glyph() string {
	switch t {
	case TrendIncreasing:
		return "📈"
	case TrendDecreasing:
		return "📉"
	default:
		return "➡️"
	}
}

// Velocity describes how consumption is changing.
type Velocity struct {
	Trend        Trend   `json:"trend"`
	TrendPercent float64 `json:"trendPercent"`
}

// Prediction carries the collector's confidence in its depletion estimate.
type Prediction struct {
	Confidence float64 `json:"confidence"` // 0-100
}

// SessionTracking summarizes the active session window.
type SessionTracking struct {
	SessionsInWindow int          `json:"sessionsInWindow"`
	ActiveWindow     ActiveWindow `json:"activeWindow"`
}

// ActiveWindow is the token/cost tally of the current session window.
type ActiveWindow struct {
	TotalTokens int64   `json:"totalTokens"`
	TotalCost   float64 `json:"totalCost,omitempty"`
}

// EffectiveReset returns the authoritative reset info when present and the
// estimated one otherwise. The two are never merged.
func (s *UsageSnapshot) EffectiveReset() *ResetInfo {
	if s == nil {
		return nil
	}
	if s.ActualResetInfo != nil {
		return s.ActualResetInfo
	}
	return s.ResetInfo
}

// Millis is a convenience for building ResetInfo values.
func Millis(ms int64) *int64 {
	return &ms
}
