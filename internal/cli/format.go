// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatTokens formats a token count with a K or M suffix.
// e.g., 950 -> "950", 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatTokens(n int64) string {
	return FormatCompact(float64(n))
}

// FormatCompact is FormatTokens for fractional values such as burn rates and
// axis ticks. Values under 1000 keep comma grouping and up to three decimals.
func FormatCompact(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return humanize.CommafWithDigits(v, 3)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatCurrency formats USD with two decimals and comma grouping.
// e.g., 1234.5 -> "$1,234.50"
func FormatCurrency(amount float64) string {
	return currency(amount, "#,###.##")
}

// FormatCurrencyPrecise formats small USD amounts with five decimals, as
// used on chart axes and per-model costs. Zero and non-finite values render
// as "$0.000".
func FormatCurrencyPrecise(amount float64) string {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0.000"
	}
	return currency(amount, "#,###.#####")
}

// FormatCost renders a cost with a fixed number of decimals and no grouping.
// e.g., FormatCost(0.12345, 3) -> "$0.123"
func FormatCost(amount float64, decimals int) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return fmt.Sprintf("$%.*f", decimals, amount)
}

func currency(amount float64, pattern string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + humanize.FormatFloat(pattern, amount)
}

// FormatPercent formats a 0-100 value with one decimal.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatSignedPercent prefixes positive changes with "+".
// e.g., 12.5 -> "+12.5%", -3 -> "-3%", 0 -> "0%"
func FormatSignedPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "N/A"
	}
	s := humanize.Ftoa(pct) + "%"
	if pct > 0 {
		return "+" + s
	}
	return s
}

// Bar glyph pairs: filled then empty.
var (
	TokenBarGlyphs = [2]string{"█", "░"}
	TimeBarGlyphs  = [2]string{"▓", "▒"}
)

// DefaultBarWidth is the cell width of the terminal readout bars.
const DefaultBarWidth = 20

// ProgressBar renders pct (0-100) as width cells of glyphs. The filled cell
// count is rounded and clamped so overage renders as a full bar.
func ProgressBar(pct float64, width int, glyphs [2]string) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(pct) {
		pct = 0
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat(glyphs[0], filled) + strings.Repeat(glyphs[1], width-filled)
}

// TokenBar is ProgressBar with the token glyphs at the default width.
func TokenBar(pct float64) string {
	return ProgressBar(pct, DefaultBarWidth, TokenBarGlyphs)
}

// TimeBar is ProgressBar with the time glyphs at the default width.
func TimeBar(pct float64) string {
	return ProgressBar(pct, DefaultBarWidth, TimeBarGlyphs)
}

// FormatAgo renders a past time relative to now, e.g. "3 minutes ago".
var FormatAgo = humanize.Time
