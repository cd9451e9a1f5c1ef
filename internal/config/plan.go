package config

import (
	"strings"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

// Plan is the subscription plan override. PlanAuto trusts the plan the
// collector detected.
type Plan string

const (
	PlanAuto   Plan = "auto"
	PlanPro    Plan = "Pro"
	PlanMax5   Plan = "Max5"
	PlanMax20  Plan = "Max20"
	PlanCustom Plan = "Custom"
)

// Plans lists every plan in display order.
var Plans = []Plan{PlanAuto, PlanPro, PlanMax5, PlanMax20, PlanCustom}

// ParsePlan matches a plan name case-insensitively. Unknown names yield
// PlanAuto, false.
func ParsePlan(s string) (Plan, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Plans {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return PlanAuto, false
}

type planLimit struct {
	tokens int64
	text   string
}

var planLimits = map[Plan]planLimit{
	PlanPro:   {7_000, "7K"},
	PlanMax5:  {35_000, "35K"},
	PlanMax20: {140_000, "140K"},
}

// Limit returns the fixed token limit of a named plan, or 0 for auto and
// custom.
func (p Plan) Limit() int64 {
	return planLimits[p].tokens
}

// EffectiveTokenLimit resolves the limit to display: a positive custom limit
// for PlanCustom, the fixed limit of a named plan, and otherwise the limit
// reported in the snapshot.
func EffectiveTokenLimit(prefs Preferences, s *model.UsageSnapshot) int64 {
	var reported int64
	if s != nil {
		reported = s.TokenLimit
	}
	switch prefs.Plan {
	case PlanCustom:
		if prefs.CustomTokenLimit > 0 {
			return prefs.CustomTokenLimit
		}
		return reported
	case PlanPro, PlanMax5, PlanMax20:
		return prefs.Plan.Limit()
	default:
		return reported
	}
}

// PlanLabel is the plan text shown in the terminal readout.
type PlanLabel struct {
	Plan  string `json:"plan"`
	Label string `json:"label"` // "detected" or "selected"
}

// PlanDisplay describes the active plan.
func PlanDisplay(prefs Preferences, s *model.UsageSnapshot) PlanLabel {
	switch prefs.Plan {
	case PlanCustom:
		return PlanLabel{
			Plan:  "Custom (" + cli.FormatTokens(EffectiveTokenLimit(prefs, s)) + ")",
			Label: "selected",
		}
	case PlanPro, PlanMax5, PlanMax20:
		return PlanLabel{
			Plan:  "Claude " + string(prefs.Plan) + " (" + planLimits[prefs.Plan].text + ")",
			Label: "selected",
		}
	default:
		detected := "unknown"
		if s != nil && s.CurrentPlan != "" {
			detected = s.CurrentPlan
		}
		return PlanLabel{Plan: "Auto-detect (" + detected + ")", Label: "detected"}
	}
}
