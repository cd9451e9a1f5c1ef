package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowPadsShorterCards(t *testing.T) {
	theme.SetActive("flexoki-dark")
	tall := ContentCard("Tall", "1\n2\n3\n4\n5\n6", 20)
	short := ContentCard("Short", "1", 30)
	shortH := lipgloss.Height(short)
	if shortH >= lipgloss.Height(tall) {
		t.Fatal("short card must be shorter than the tall one")
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != lipgloss.Height(tall) {
		t.Fatalf("row height = %d, want %d", len(lines), lipgloss.Height(tall))
	}
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Fatalf("line %d width = %d, want %d", i, w, want)
		}
		if i >= shortH && !strings.Contains(line, "\x1b[") {
			t.Fatalf("padding line %d has no background styling: %q", i, line)
		}
	}
}

func TestTabBarSeparatorsMatchVisualWidths(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for active := range Tabs {
		row := []rune(ansi.Strip(RenderTabBar(active, 200)))
		pos := 0
		for i, tab := range Tabs[:len(Tabs)-1] {
			pos += TabVisualWidth(tab, i == active)
			if pos >= len(row) || row[pos] != '│' {
				t.Fatalf("active=%d: no separator after tab %d at column %d (%q)", active, i, pos, string(row))
			}
			pos++
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'d', 0}, {'l', 1}, {'a', 2}, {'t', 3}, {'x', 4}, {'z', -1},
	}
	for _, tt := range tests {
		if got := TabIdxByKey(tt.key); got != tt.want {
			t.Fatalf("TabIdxByKey(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestStatusBarShowsNoticeAndState(t *testing.T) {
	theme.SetActive("flexoki-dark")
	bar := ansi.Strip(RenderStatusBar(140, StatusInfo{
		UpdatedAt: time.Date(2025, 6, 10, 14, 5, 9, 0, time.UTC),
		Paused:    true,
		Stale:     true,
		Notice:    &Notice{Severity: model.SeverityError, Text: "Refresh failed: boom"},
	}))
	for _, want := range []string{"Refresh failed: boom", "paused", "stale", "updated 14:05:09"} {
		if !strings.Contains(bar, want) {
			t.Fatalf("status bar %q missing %q", bar, want)
		}
	}
	if w := lipgloss.Width(bar); w != 140 {
		t.Fatalf("width = %d, want 140", w)
	}
}

func TestLogListLimitsAndOrders(t *testing.T) {
	theme.SetActive("flexoki-dark")
	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	entries := []model.LogEntry{
		{Timestamp: at.Add(2 * time.Minute), Severity: model.SeverityWarning, Glyph: "⚠", Message: "newest"},
		{Timestamp: at.Add(time.Minute), Severity: model.SeverityInfo, Glyph: "•", Message: "middle"},
		{Timestamp: at, Severity: model.SeverityInfo, Glyph: "•", Message: "oldest"},
	}
	out := ansi.Strip(LogList(entries, 80, 2))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "09:02:00") || !strings.Contains(lines[0], "newest") {
		t.Fatalf("first line = %q", lines[0])
	}

	if empty := ansi.Strip(LogList(nil, 80, 5)); !strings.Contains(empty, "No activity") {
		t.Fatalf("empty list = %q", empty)
	}
}

func TestShareBarClampsFill(t *testing.T) {
	theme.SetActive("flexoki-dark")
	tests := []struct {
		pct    float64
		filled int
	}{
		{0, 0}, {50, 5}, {100, 10}, {140, 10}, {-5, 0},
	}
	for _, tt := range tests {
		out := ansi.Strip(ShareBar("Sonnet 4", tt.pct, lipgloss.Color("#fff"), 10, 10))
		if got := strings.Count(out, "█"); got != tt.filled {
			t.Fatalf("pct=%v filled=%d, want %d", tt.pct, got, tt.filled)
		}
		if got := strings.Count(out, "█") + strings.Count(out, "░"); got != 10 {
			t.Fatalf("pct=%v bar width=%d, want 10", tt.pct, got)
		}
	}
}

func TestRingGaugeGlyph(t *testing.T) {
	theme.SetActive("flexoki-dark")
	tests := []struct {
		length float64
		glyph  string
	}{
		{0, "○"}, {90, "◔"}, {180, "◑"}, {270, "◕"}, {360, "●"},
	}
	for _, tt := range tests {
		out := ansi.Strip(RingGauge("x", chart.Arc{Percentage: tt.length / 3.6, Length: tt.length}, lipgloss.Color("#fff")))
		if !strings.HasPrefix(out, tt.glyph) {
			t.Fatalf("length=%v: got %q, want prefix %q", tt.length, out, tt.glyph)
		}
	}
}

func TestMetricCardRowFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := MetricCardRow([]Metric{
		{Label: "A", Value: "1"},
		{Label: "B", Value: "2"},
		{Label: "C", Value: "3"},
	}, 120)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 120 {
			t.Fatalf("line %d width = %d, want 120", i, w)
		}
	}
}
