package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// settingsField is one editable row. Key is the config.Set key.
type settingsField struct {
	Label       string
	Key         string
	Placeholder string
}

var settingsFields = []settingsField{
	{"Plan", config.KeyPlan, "auto, Pro, Max5, Max20, Custom"},
	{"Custom Token Limit", config.KeyCustomTokenLimit, "50000 (Custom plan only)"},
	{"Timezone", config.KeyTimezone, "IANA name, empty for system zone"},
	{"Reset Hour", config.KeyResetHour, "0-23"},
	{"Menu Bar Display", config.KeyMenuBarDisplayMode, "percentage, cost, alternate"},
	{"Menu Bar Cost", config.KeyMenuBarCostSource, "today, sessionWindow"},
	{"Theme", "theme", strings.Join(theme.Names(), ", ")},
	{"Auto Refresh", "auto_refresh", "true or false"},
	{"Refresh Interval", "refresh_interval_sec", "seconds, applies on restart"},
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

// settingsValue is the current value of a field as text.
func (a App) settingsValue(f settingsField) string {
	switch f.Key {
	case config.KeyPlan:
		return string(a.prefs.Plan)
	case config.KeyCustomTokenLimit:
		if a.prefs.CustomTokenLimit == 0 {
			return "(not set)"
		}
		return strconv.FormatInt(a.prefs.CustomTokenLimit, 10)
	case config.KeyTimezone:
		if a.prefs.Timezone == "" {
			return "(system)"
		}
		return a.prefs.Timezone
	case config.KeyResetHour:
		return strconv.Itoa(a.prefs.ResetHour)
	case config.KeyMenuBarDisplayMode:
		return string(a.prefs.MenuBarDisplayMode)
	case config.KeyMenuBarCostSource:
		return string(a.prefs.MenuBarCostSource)
	case "theme":
		return theme.Active.Name
	case "auto_refresh":
		return strconv.FormatBool(a.cfg.TUI.AutoRefresh)
	case "refresh_interval_sec":
		return fmt.Sprintf("%ds", int(a.cfg.TUI.RefreshEvery().Seconds()))
	}
	return ""
}

// settingsRaw is the editable form of a field's value.
func (a App) settingsRaw(f settingsField) string {
	switch f.Key {
	case config.KeyCustomTokenLimit:
		if a.prefs.CustomTokenLimit == 0 {
			return ""
		}
	case config.KeyTimezone:
		return a.prefs.Timezone
	case "refresh_interval_sec":
		return strconv.Itoa(int(a.cfg.TUI.RefreshEvery().Seconds()))
	}
	return a.settingsValue(f)
}

func (a App) updateSettingsKey(key string) (bool, App, tea.Cmd) {
	switch key {
	case "j", "down":
		if a.settings.cursor < len(settingsFields)-1 {
			a.settings.cursor++
		}
		return true, a, nil
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
		return true, a, nil
	case "enter":
		next, cmd := a.settingsStartEdit()
		return true, next, cmd
	}
	return false, a, nil
}

func (a App) settingsStartEdit() (App, tea.Cmd) {
	f := settingsFields[a.settings.cursor]

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	ti.Placeholder = f.Placeholder
	ti.SetValue(a.settingsRaw(f))
	ti.Focus()

	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil
	a.settings.input = ti
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value through config.Set and persists
// the whole configuration.
func (a *App) settingsSave() {
	f := settingsFields[a.settings.cursor]
	cfg := a.cfg
	if err := cfg.Set(f.Key, strings.TrimSpace(a.settings.input.Value())); err != nil {
		a.settings.saveErr = err
		return
	}
	if err := a.save(cfg); err != nil {
		a.settings.saveErr = err
		return
	}
	a.adoptConfig(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	innerW := components.CardInnerWidth(cw)

	var form strings.Builder
	for i, f := range settingsFields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.Label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		value := a.settingsValue(f)
		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.Label+":"))
			val := selectedStyle.Render(value)
			form.WriteString(marker + label + val)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(val); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.Label+":")))
			form.WriteString(valueStyle.Render(value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		form.WriteString("\n")
		form.WriteString(warnStyle.Render(truncStr("Save failed: "+a.settings.saveErr.Error(), innerW)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	src := a.cfg.General.SnapshotPath
	if a.cfg.General.SourceURL != "" {
		src = a.cfg.General.SourceURL
	}
	var info strings.Builder
	info.WriteString(labelStyle.Render("Snapshot source: ") + valueStyle.Render(truncStr(src, innerW-17)) + "\n")
	info.WriteString(labelStyle.Render("Monitor state:   ") + valueStyle.Render(string(a.monitor.State())) + "\n")
	info.WriteString(labelStyle.Render("Log entries:     ") + valueStyle.Render(strconv.Itoa(len(a.monitor.Entries()))) + "\n")
	info.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(truncStr(config.ConfigPath(), innerW-17)))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
