package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// Terminal is the monospace readout: block bars, glyph tiers, plan text.
type Terminal struct {
	PercentageUsed float64
	Status         model.Status
	TokenBar       string
	TokensUsed     string
	TokenLimit     string
	TimeProgress   float64
	TimeBar        string
	ResetIn        string
	BurnRate       string
	BurnTier       model.BurnTier
	Plan           config.PlanLabel
	CostToday      string
	Remaining      string
	Session        *model.SessionTracking
	Velocity       *model.Velocity
	SystemStatus   string
}

// BuildTerminal derives the terminal readout. The terminal uses the live
// threshold policy.
func BuildTerminal(s *model.UsageSnapshot, prefs config.Preferences, p Policy) Terminal {
	if s == nil {
		s = &model.UsageSnapshot{}
	}
	progress := pipeline.TimeProgress(s.ResetInfo)
	reset := "no reset info"
	if s.ResetInfo.HasCountdown() && *s.ResetInfo.TimeUntilReset > 0 {
		reset = pipeline.FormatCountdown(*s.ResetInfo.TimeUntilReset)
	}
	status := p.Live.Classify(s.PercentageUsed)
	return Terminal{
		PercentageUsed: s.PercentageUsed,
		Status:         status,
		TokenBar:       cli.TokenBar(s.PercentageUsed),
		TokensUsed:     cli.FormatTokens(s.TokensUsed),
		TokenLimit:     cli.FormatTokens(s.TokenLimit),
		TimeProgress:   progress,
		TimeBar:        cli.TimeBar(progress),
		ResetIn:        reset,
		BurnRate:       cli.FormatCompact(s.BurnRate),
		BurnTier:       p.Burn.Classify(s.BurnRate),
		Plan:           config.PlanDisplay(prefs, s),
		CostToday:      cli.FormatCost(s.Today.TotalCost, 3),
		Remaining:      cli.FormatTokens(s.TokensRemaining),
		Session:        s.SessionTracking,
		Velocity:       s.Velocity,
		SystemStatus:   systemStatus(status),
	}
}

func systemStatus(s model.Status) string {
	switch s {
	case model.StatusCritical:
		return "CRITICAL"
	case model.StatusWarning:
		return "WARNING"
	default:
		return "NORMAL"
	}
}

// Lines renders the readout as plain text lines. Colour is applied by the
// caller's style function, which receives a colour tag and the text.
func (t Terminal) Lines(now time.Time, style func(tag, text string) string) []string {
	if style == nil {
		style = func(_, text string) string { return text }
	}
	lines := []string{
		style("frame", "┌─") + " CLAUDE CODE USAGE MONITOR " + style("frame", "─┐") + "  " + style("muted", now.Format("15:04:05")),
		style("frame", "└─ real-time token tracking ─┘"),
		"",
		fmt.Sprintf("%s %s %s", style("label", "TOKEN USAGE"), fmt.Sprintf("%.1f%%", t.PercentageUsed), t.Status.Glyph()),
		fmt.Sprintf("%s%s%s %s", style("frame", "["), style("bar", t.TokenBar), style("frame", "]"), style("muted", t.TokensUsed+"/"+t.TokenLimit)),
		fmt.Sprintf("%s %s ⏰", style("label", "TIME PROGRESS"), fmt.Sprintf("%.1f%%", t.TimeProgress)),
		fmt.Sprintf("%s%s%s %s", style("frame", "["), style("time", t.TimeBar), style("frame", "]"), style("muted", t.ResetIn+" until reset")),
		"",
		fmt.Sprintf("%-28s %s", style("label", "BURN RATE"), style("label", "PLAN")),
		fmt.Sprintf("%s tokens/hr %s    %s %s 📊", t.BurnRate, t.BurnTier.Glyph(), t.Plan.Plan, style("muted", t.Plan.Label)),
		fmt.Sprintf("%-28s %s", style("label", "COST TODAY"), style("label", "REMAINING")),
		fmt.Sprintf("%s USD 💰    %s tokens 📈", t.CostToday, t.Remaining),
	}
	if t.Session != nil {
		lines = append(lines, "",
			style("label", "SESSION WINDOW"),
			fmt.Sprintf("active sessions: %d   window tokens: %s",
				t.Session.SessionsInWindow, cli.FormatTokens(t.Session.ActiveWindow.TotalTokens)),
		)
	}
	if t.Velocity != nil {
		lines = append(lines, "",
			style("label", "VELOCITY ANALYSIS"),
			fmt.Sprintf("trend: %s%s   change: %s",
				t.Velocity.Trend.Glyph(), t.Velocity.Trend, style("trend", cli.FormatSignedPercent(t.Velocity.TrendPercent))),
		)
	}
	lines = append(lines, "", style("muted", "system: "+t.SystemStatus))
	return lines
}

// String renders the readout without colour.
func (t Terminal) String() string {
	return strings.Join(t.Lines(time.Now(), nil), "\n")
}
