// Package theme defines color themes for the ccmonitor TUI and the
// terminal readout.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps color roles to concrete colors.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and bars
	SurfaceHover  lipgloss.Color // selected row, active tab
	SurfaceBright lipgloss.Color

	Border       lipgloss.Color
	BorderAccent lipgloss.Color

	TextDim     lipgloss.Color // hints, axes
	TextMuted   lipgloss.Color // labels
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Green       lipgloss.Color
	GreenBright lipgloss.Color
	Yellow      lipgloss.Color
	Orange      lipgloss.Color
	Red         lipgloss.Color
	Blue        lipgloss.Color
	Cyan        lipgloss.Color
}

// palette lists a theme's colors darkest surface first. Hues are green,
// bright green, yellow, orange, red, blue, cyan.
type palette struct {
	surfaces [4]string
	border   string
	text     [3]string
	accent   [2]string
	hues     [7]string
}

func (p palette) theme(name string) Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Name:          name,
		Background:    c(p.surfaces[0]),
		Surface:       c(p.surfaces[1]),
		SurfaceHover:  c(p.surfaces[2]),
		SurfaceBright: c(p.surfaces[3]),
		Border:        c(p.border),
		BorderAccent:  c(p.accent[0]),
		TextDim:       c(p.text[0]),
		TextMuted:     c(p.text[1]),
		TextPrimary:   c(p.text[2]),
		Accent:        c(p.accent[0]),
		AccentBright:  c(p.accent[1]),
		Green:         c(p.hues[0]),
		GreenBright:   c(p.hues[1]),
		Yellow:        c(p.hues[2]),
		Orange:        c(p.hues[3]),
		Red:           c(p.hues[4]),
		Blue:          c(p.hues[5]),
		Cyan:          c(p.hues[6]),
	}
}

var (
	FlexokiDark = palette{
		surfaces: [4]string{"#100F0F", "#1C1B1A", "#282726", "#343331"},
		border:   "#403E3C",
		text:     [3]string{"#575653", "#878580", "#FFFCF0"},
		accent:   [2]string{"#3AA99F", "#5BC8BE"},
		hues:     [7]string{"#879A39", "#A3B859", "#D0A215", "#DA702C", "#D14D41", "#4385BE", "#24837B"},
	}.theme("flexoki-dark")

	CatppuccinMocha = palette{
		surfaces: [4]string{"#1E1E2E", "#313244", "#45475A", "#585B70"},
		border:   "#585B70",
		text:     [3]string{"#6C7086", "#A6ADC8", "#CDD6F4"},
		accent:   [2]string{"#89B4FA", "#B4D0FB"},
		hues:     [7]string{"#A6E3A1", "#C6F6C1", "#F9E2AF", "#FAB387", "#F38BA8", "#89B4FA", "#94E2D5"},
	}.theme("catppuccin-mocha")

	TokyoNight = palette{
		surfaces: [4]string{"#1A1B26", "#24283B", "#343A52", "#414868"},
		border:   "#565F89",
		text:     [3]string{"#565F89", "#A9B1D6", "#C0CAF5"},
		accent:   [2]string{"#7AA2F7", "#A9C1FF"},
		hues:     [7]string{"#9ECE6A", "#B9E87A", "#E0AF68", "#FF9E64", "#F7768E", "#7AA2F7", "#7DCFFF"},
	}.theme("tokyo-night")

	// Terminal sticks to the 16 ANSI colors.
	Terminal = palette{
		surfaces: [4]string{"0", "0", "8", "8"},
		border:   "8",
		text:     [3]string{"8", "7", "15"},
		accent:   [2]string{"6", "14"},
		hues:     [7]string{"2", "10", "3", "3", "1", "4", "6"},
	}.theme("terminal")
)

// All lists the themes in display order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Active is the theme every renderer reads.
var Active = FlexokiDark

// ByName returns the named theme, or FlexokiDark when unknown.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive switches Active to the named theme.
func SetActive(name string) { Active = ByName(name) }

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}
