package pipeline

import (
	"math"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// Thresholds holds the percentage cut-offs for one view's status policy.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// Each view keeps its own calibration; they are intentionally separate values.
var (
	DashboardThresholds = Thresholds{Warning: 75, Critical: 90}
	LiveThresholds      = Thresholds{Warning: 70, Critical: 90}
)

// Classify maps a usage percentage to a status tier.
func (t Thresholds) Classify(pct float64) model.Status {
	if math.IsNaN(pct) {
		return model.StatusSafe
	}
	switch {
	case pct >= t.Critical:
		return model.StatusCritical
	case pct >= t.Warning:
		return model.StatusWarning
	default:
		return model.StatusSafe
	}
}

// Classify uses the dashboard policy.
func Classify(pct float64) model.Status {
	return DashboardThresholds.Classify(pct)
}

// BurnTiers holds the tokens-per-hour cut-offs for burn rate severity.
type BurnTiers struct {
	Moderate float64
	High     float64
}

// DefaultBurnTiers matches the dashboard and terminal readouts.
var DefaultBurnTiers = BurnTiers{Moderate: 500, High: 1000}

// Classify maps a burn rate to a tier. Both bounds are exclusive.
func (b BurnTiers) Classify(rate float64) model.BurnTier {
	switch {
	case rate > b.High:
		return model.BurnHigh
	case rate > b.Moderate:
		return model.BurnModerate
	default:
		return model.BurnNormal
	}
}

// ClassifyBurn uses DefaultBurnTiers.
func ClassifyBurn(rate float64) model.BurnTier {
	return DefaultBurnTiers.Classify(rate)
}
