package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// keyMap holds the bindings that work on every tab. Tab-local keys are
// listed for help only and matched by the tab handlers.
type keyMap struct {
	Next, Prev, Jump      key.Binding
	Refresh, Pause        key.Binding
	Checkpoint, Clear     key.Binding
	Range, Metric, Edit   key.Binding
	Help, Quit, ForceQuit key.Binding
}

var keys = keyMap{
	Next:       key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→/tab", "next tab")),
	Prev:       key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←/S-tab", "previous tab")),
	Jump:       key.NewBinding(key.WithKeys("d", "l", "a", "t", "x"), key.WithHelp("d l a t x", "jump to tab")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
	Pause:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
	Checkpoint: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "live: checkpoint")),
	Clear:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "live: clear log")),
	Range:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "analytics: range")),
	Metric:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "analytics: metric")),
	Edit:       key.NewBinding(key.WithKeys("j", "k", "enter"), key.WithHelp("j/k enter", "settings: pick, edit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Jump, k.Refresh, k.Pause, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Jump},
		{k.Refresh, k.Pause, k.Checkpoint, k.Clear},
		{k.Range, k.Metric, k.Edit},
		{k.Help, k.Quit},
	}
}

// newHelp returns a help model styled for the card surface.
func newHelp() help.Model {
	t := theme.Active
	on := lipgloss.NewStyle().Background(t.Surface)
	h := help.New()
	h.ShowAll = true
	h.FullSeparator = on.Render("    ")
	h.Styles.FullKey = on.Foreground(t.Cyan).Bold(true)
	h.Styles.FullDesc = on.Foreground(t.TextMuted)
	h.Styles.FullSeparator = on
	h.Styles.ShortKey = h.Styles.FullKey
	h.Styles.ShortDesc = h.Styles.FullDesc
	h.Styles.ShortSeparator = on.Foreground(t.TextDim)
	return h
}
