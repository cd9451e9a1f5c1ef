package report

import (
	"fmt"
	"math"

	"github.com/theirongolddev/ccmonitor/internal/cli"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

// MenuBarCost returns the cost the menu bar shows for the chosen source.
// The session window falls back to today when the collector reports no
// window cost.
func MenuBarCost(s *model.UsageSnapshot, src config.CostSource) float64 {
	if s == nil {
		return 0
	}
	if src == config.CostSessionWindow && s.SessionTracking != nil && s.SessionTracking.ActiveWindow.TotalCost > 0 {
		return s.SessionTracking.ActiveWindow.TotalCost
	}
	return s.Today.TotalCost
}

// MenuBarText is the one-line status. In alternate mode even ticks show the
// percentage and odd ticks the cost.
func MenuBarText(s *model.UsageSnapshot, prefs config.Preferences, p Policy, tick int) string {
	if s == nil {
		return "—"
	}
	percent := fmt.Sprintf("%s %.0f%%", p.Dashboard.Classify(s.PercentageUsed).Glyph(), finiteOrZero(s.PercentageUsed))
	cost := cli.FormatCurrency(MenuBarCost(s, prefs.MenuBarCostSource))

	switch prefs.MenuBarDisplayMode {
	case config.DisplayPercentage:
		return percent
	case config.DisplayCost:
		return cost
	default:
		if tick%2 != 0 {
			return cost
		}
		return percent
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
