package cli

import (
	"math"
	"strings"
	"testing"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{999_999, "1000.0K"},
		{1_234_567, "1.2M"},
		{2_500_000_000, "2500.0M"},
	}
	for _, tt := range tests {
		if got := FormatTokens(tt.in); got != tt.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "0"},
		{0.5, "0.5"},
		{1200.4, "1.2K"},
		{333.3333, "333.333"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1.5, "$1.50"},
		{1234.567, "$1,234.57"},
		{-2, "-$2.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCurrencyPrecise(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.000"},
		{math.NaN(), "$0.000"},
		{0.12345, "$0.12345"},
		{12.5, "$12.50000"},
	}
	for _, tt := range tests {
		if got := FormatCurrencyPrecise(tt.in); got != tt.want {
			t.Errorf("FormatCurrencyPrecise(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	if got := FormatCost(0.12345, 3); got != "$0.123" {
		t.Fatalf("FormatCost = %q, want $0.123", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(96); got != "96.0%" {
		t.Fatalf("FormatPercent(96) = %q", got)
	}
	if got := FormatPercent(math.Inf(1)); got != "N/A" {
		t.Fatalf("FormatPercent(Inf) = %q, want N/A", got)
	}
	if got := FormatSignedPercent(12.5); got != "+12.5%" {
		t.Fatalf("FormatSignedPercent(12.5) = %q", got)
	}
	if got := FormatSignedPercent(-3); got != "-3%" {
		t.Fatalf("FormatSignedPercent(-3) = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pct        float64
		wantFilled int
	}{
		{0, 0},
		{50, 10},
		{52, 10},
		{53, 11},
		{100, 20},
		{140, 20},
		{-10, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		bar := TokenBar(tt.pct)
		if got := strings.Count(bar, "█"); got != tt.wantFilled {
			t.Errorf("TokenBar(%v) filled = %d, want %d", tt.pct, got, tt.wantFilled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != DefaultBarWidth {
			t.Errorf("TokenBar(%v) width = %d, want %d", tt.pct, got, DefaultBarWidth)
		}
	}

	if got := TimeBar(25); got != strings.Repeat("▓", 5)+strings.Repeat("▒", 15) {
		t.Fatalf("TimeBar(25) = %q", got)
	}
}
