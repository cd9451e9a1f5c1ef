package model

import "time"

// Status is the severity tier of a usage percentage.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Glyph returns the traffic-light indicator for the status.
func (s Status) Glyph() string {
	switch s {
	case StatusCritical:
		return "🔴"
	case StatusWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

// BurnTier classifies a burn rate. It is computed independently of Status.
type BurnTier string

const (
	BurnNormal   BurnTier = "normal"
	BurnModerate BurnTier = "moderate"
	BurnHigh     BurnTier = "high"
)

// Glyph returns the indicator shown next to a burn rate.
func (b BurnTier) Glyph() string {
	switch b {
	case BurnHigh:
		return "🔥"
	case BurnModerate:
		return "⚡"
	default:
		return "💤"
	}
}

// Severity is the level of a narration log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// ChartPoint is one plotted value. It is recomputed on every render.
type ChartPoint struct {
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	NormalizedY float64 `json:"normalizedY"` // 0-1
}

// LogEntry is one line of the live narration log.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Glyph     string    `json:"glyph"`
}
