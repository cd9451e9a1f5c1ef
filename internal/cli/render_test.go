package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestRenderTable_AlignsWideGlyphs(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderTable(Table{
		Headers: []string{"Model", "Share"},
		Rows: [][]string{
			{"🟢 Sonnet", "60.0%"},
			{"---"},
			{"Opus", "40.0%"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != want {
			t.Fatalf("line %d width = %d, want %d:\n%s", i, w, want, out)
		}
	}
	if !strings.Contains(out, "│ Opus      │ 40.0% │") {
		t.Fatalf("unexpected row layout:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 7, 14}); got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Fatalf("RenderSparkline(zeros) = %q", got)
	}
}

func TestRenderKV(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	out := RenderKV("Today", []KV{{"Tokens", "1.2K"}, {"Cost", "$0.40"}})
	if !strings.Contains(out, "Cost    $0.40") {
		t.Fatalf("RenderKV misaligned:\n%s", out)
	}
}
