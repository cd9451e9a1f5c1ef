// Package report assembles the derived views (dashboard, analytics,
// terminal readout, menu bar text) that the CLI, TUI, and daemon present.
// It only composes pipeline and chart results; nothing here does I/O.
package report

import (
	"time"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// Policy carries the per-view classification settings.
type Policy struct {
	Dashboard pipeline.Thresholds
	Live      pipeline.Thresholds
	Burn      pipeline.BurnTiers
}

// DefaultPolicy is the stock calibration of every view.
func DefaultPolicy() Policy {
	return Policy{
		Dashboard: pipeline.DashboardThresholds,
		Live:      pipeline.LiveThresholds,
		Burn:      pipeline.DefaultBurnTiers,
	}
}

// PolicyFrom reads the thresholds section of a config.
func PolicyFrom(t config.ThresholdsConfig) Policy {
	return Policy{Dashboard: t.Dashboard(), Live: t.Live(), Burn: t.Burn()}
}

// Dashboard is the summary view of one snapshot.
type Dashboard struct {
	GeneratedAt     time.Time              `json:"generatedAt" yaml:"generated_at"`
	TokensUsed      int64                  `json:"tokensUsed" yaml:"tokens_used"`
	TokenLimit      int64                  `json:"tokenLimit" yaml:"token_limit"`
	TokensRemaining int64                  `json:"tokensRemaining" yaml:"tokens_remaining"`
	PercentageUsed  float64                `json:"percentageUsed" yaml:"percentage_used"`
	Status          model.Status           `json:"status" yaml:"status"`
	BurnRate        float64                `json:"burnRate" yaml:"burn_rate"`
	BurnTier        model.BurnTier         `json:"burnTier" yaml:"burn_tier"`
	TimeRemaining   string                 `json:"timeRemaining" yaml:"time_remaining"`
	Depletion       string                 `json:"depletion" yaml:"depletion"`
	ResetIn         string                 `json:"resetIn" yaml:"reset_in"`
	Plan            config.PlanLabel       `json:"plan" yaml:"plan"`
	TokenGauge      chart.Arc              `json:"tokenGauge" yaml:"token_gauge"`
	TimeGauge       chart.Arc              `json:"timeGauge" yaml:"time_gauge"`
	TimeProgress    float64                `json:"timeProgress" yaml:"time_progress"`
	Today           pipeline.TodaySummary  `json:"today" yaml:"today"`
	Week            pipeline.WeekSummary   `json:"week" yaml:"week"`
	Models          []pipeline.ModelShare  `json:"models" yaml:"models"`
	Velocity        *model.Velocity        `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Confidence      *float64               `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Session         *model.SessionTracking `json:"session,omitempty" yaml:"session,omitempty"`
}

// BuildDashboard derives the dashboard view. A nil snapshot yields the zero
// dashboard with fallback texts.
func BuildDashboard(s *model.UsageSnapshot, prefs config.Preferences, p Policy, now time.Time) Dashboard {
	d := Dashboard{
		GeneratedAt:   now,
		Status:        p.Dashboard.Classify(0),
		BurnTier:      p.Burn.Classify(0),
		TimeRemaining: pipeline.Remaining{}.String(),
		Depletion:     pipeline.DepletionEstimate{}.String(),
		ResetIn:       pipeline.NoActiveSession,
		Plan:          config.PlanDisplay(prefs, s),
		TokenGauge:    chart.Gauge(0),
		TimeGauge:     chart.Gauge(0),
	}
	if s == nil {
		return d
	}

	progress := pipeline.TimeProgress(s.ResetInfo)
	d.TokensUsed = s.TokensUsed
	d.TokenLimit = config.EffectiveTokenLimit(prefs, s)
	d.TokensRemaining = s.TokensRemaining
	d.PercentageUsed = s.PercentageUsed
	d.Status = p.Dashboard.Classify(s.PercentageUsed)
	d.BurnRate = s.BurnRate
	d.BurnTier = p.Burn.Classify(s.BurnRate)
	d.TimeRemaining = pipeline.TimeRemaining(s.BurnRate, s.TokensRemaining).String()
	d.Depletion = pipeline.Depletion(s.PredictedDepleted, s.BurnRate, now).String()
	d.ResetIn = pipeline.ResetText(s)
	d.TokenGauge = chart.Gauge(pipeline.TokenShare(s.PercentageUsed))
	d.TimeGauge = chart.Gauge(progress)
	d.TimeProgress = progress
	d.Today = pipeline.SummarizeToday(s)
	d.Week = pipeline.WeeklySummary(s.ThisWeek)
	d.Models = pipeline.ModelBreakdown(s.Today)
	d.Velocity = s.Velocity
	d.Session = s.SessionTracking
	if s.Prediction != nil {
		c := s.Prediction.Confidence
		d.Confidence = &c
	}
	return d
}
