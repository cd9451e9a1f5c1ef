// Package tui provides the interactive Bubble Tea dashboard for ccmonitor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/live"
	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/source"
	"github.com/theirongolddev/ccmonitor/internal/tui/components"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// SnapshotMsg carries the outcome of the initial load or a manual refresh.
type SnapshotMsg struct {
	Snapshot *model.UsageSnapshot
	Err      error
	Manual   bool
}

// EntryMsg delivers one narration entry from the live monitor.
type EntryMsg struct {
	Entry model.LogEntry
}

// Options configure the dashboard.
type Options struct {
	Source    source.Source
	Config    config.Config
	Logger    *zap.Logger
	NeedSetup bool
	// Save persists configuration edits; nil uses config.Save.
	Save func(config.Config) error
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	src     source.Source
	monitor *live.Monitor
	entries <-chan model.LogEntry
	unsub   func()
	log     *zap.Logger
	save    func(config.Config) error

	cfg    config.Config
	prefs  config.Preferences
	policy report.Policy

	snap       *model.UsageSnapshot
	loaded     bool
	lastErr    error
	staleAt    time.Time
	updatedAt  time.Time
	refreshing bool
	ticks      int

	// Notifications, newest first
	notices []components.Notice

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	query    report.Query
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	maxNotices = 5

	// alternateTicks is how many clock ticks each menu bar frame stays up.
	alternateTicks = 3

	loadTimeout = 30 * time.Second
)

const (
	tabDashboard = iota
	tabLive
	tabAnalytics
	tabTerminal
	tabSettings
)

// NewApp creates the TUI model. The monitor it owns is started by Start and
// torn down by Close.
func NewApp(opts Options) App {
	log := logger.OrNop(opts.Logger)
	cfg := opts.Config

	prefs, err := cfg.Prefs()
	if err != nil {
		log.Warn("invalid preferences, using defaults", zap.Error(err))
	}
	theme.SetActive(cfg.Appearance.Theme)

	narrator := live.Narrator{Thresholds: cfg.Thresholds.Narration(), ResetSoon: live.DefaultResetSoon}
	mon := live.NewMonitor(opts.Source, live.Config{
		Interval: cfg.TUI.RefreshEvery(),
		Narrator: &narrator,
		Logger:   log,
	})
	if !cfg.TUI.AutoRefresh {
		mon.Pause()
	}
	entries, unsub := mon.Subscribe()

	save := opts.Save
	if save == nil {
		save = config.Save
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		src:       opts.Source,
		monitor:   mon,
		entries:   entries,
		unsub:     unsub,
		log:       log,
		save:      save,
		cfg:       cfg,
		prefs:     prefs,
		policy:    report.PolicyFrom(cfg.Thresholds),
		query:     report.DefaultQuery(),
		needSetup: opts.NeedSetup,
		spinner:   sp,
	}
	if a.needSetup {
		a.setupVals = newSetupValues(cfg, prefs)
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Start launches the background refresh schedule.
func (a App) Start(ctx context.Context) {
	a.monitor.Start(ctx)
}

// Close unsubscribes from the monitor and stops it.
func (a App) Close() {
	a.unsub()
	a.monitor.Stop()
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadSnapshotCmd(a.src),
		a.spinner.Tick,
		tickCmd(),
		waitForEntry(a.entries),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		a.ticks++
		return a, tickCmd()

	case SnapshotMsg:
		a.applySnapshot(msg)
		return a, nil

	case EntryMsg:
		a.syncMonitor(msg.Entry)
		return a, waitForEntry(a.entries)

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return a, tea.Quit
	}
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if !a.loaded {
		if key.Matches(msg, keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	n := len(components.Tabs)
	switch {
	case key.Matches(msg, keys.Help):
		a.showHelp = true
		return a, nil
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Next):
		a.activeTab = (a.activeTab + 1) % n
		return a, nil
	case key.Matches(msg, keys.Prev):
		a.activeTab = (a.activeTab + n - 1) % n
		return a, nil
	case key.Matches(msg, keys.Refresh):
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, refreshCmd(a.monitor)
	case key.Matches(msg, keys.Pause):
		verb := lo.Ternary(a.monitor.Toggle() == live.StatePaused, "paused", "resumed")
		a.notify(model.SeverityInfo, "Auto refresh "+verb)
		return a, nil
	}

	// Tab-local bindings shadow the tab shortcuts.
	k := msg.String()
	switch a.activeTab {
	case tabLive:
		if handled, next := a.updateLiveKey(k); handled {
			return next, nil
		}
	case tabAnalytics:
		if handled, next := a.updateAnalyticsKey(k); handled {
			return next, nil
		}
	case tabSettings:
		if handled, next, cmd := a.updateSettingsKey(k); handled {
			return next, cmd
		}
	}
	if key.Matches(msg, keys.Jump) {
		a.activeTab = components.TabIdxByKey(msg.Runes[0])
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetup(); err != nil {
			a.notify(model.SeverityError, "Saving preferences failed: "+err.Error())
		} else {
			a.notify(model.SeveritySuccess, "Preferences saved")
		}
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// applySnapshot handles the initial load and manual refresh results. A failed
// acquisition keeps the last good snapshot on screen.
func (a *App) applySnapshot(msg SnapshotMsg) {
	a.loaded = true
	a.refreshing = false

	if msg.Snapshot != nil {
		a.snap = msg.Snapshot
	}
	if msg.Err != nil {
		a.lastErr = msg.Err
		if at, ok := source.IsStale(msg.Err); ok {
			a.staleAt = at
		}
		a.notify(model.SeverityError, "Refresh failed: "+rootCause(msg.Err))
		return
	}

	a.lastErr = nil
	a.staleAt = time.Time{}
	a.updatedAt = time.Now()
	if msg.Manual {
		a.notify(model.SeveritySuccess, "Manual refresh completed")
		return
	}
	// Seed the monitor so narration starts from the first snapshot.
	a.monitor.Push(msg.Snapshot)
}

// syncMonitor adopts the monitor's current snapshot after it logs an entry.
func (a *App) syncMonitor(e model.LogEntry) {
	cur := a.monitor.Current()
	if cur.Snapshot != nil {
		a.snap = cur.Snapshot
		a.loaded = true
	}
	if !cur.UpdatedAt.IsZero() {
		a.updatedAt = cur.UpdatedAt
	}
	a.lastErr = a.monitor.Err()
	if a.lastErr == nil {
		a.staleAt = time.Time{}
	} else if at, ok := source.IsStale(a.lastErr); ok {
		a.staleAt = at
	}
	if e.Severity == model.SeverityError || e.Severity == model.SeverityWarning {
		a.notify(e.Severity, e.Message)
	}
}

// notify pushes a status bar notification, keeping the newest maxNotices.
func (a *App) notify(sev model.Severity, text string) {
	n := components.Notice{At: time.Now(), Severity: sev, Text: text}
	a.notices = append([]components.Notice{n}, a.notices...)
	if len(a.notices) > maxNotices {
		a.notices = a.notices[:maxNotices]
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  ccmonitor needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return fitHeight(msg, h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)
	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ ccmonitor"))
	b.WriteString(subtitleStyle.Render(" · Claude Code usage"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Reading usage snapshot..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	on := lipgloss.NewStyle().Background(t.Surface)
	body := lipgloss.JoinVertical(lipgloss.Left,
		on.Foreground(t.AccentBright).Bold(true).Render("◈ Keyboard Shortcuts"),
		"",
		newHelp().View(keys),
		"",
		on.Foreground(t.TextDim).Render("Mouse: click a tab to select it. Any key closes this."),
	)
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderInfoRow(w)

	status := components.StatusInfo{
		UpdatedAt:  a.updatedAt,
		Refreshing: a.refreshing,
		Paused:     a.monitor.State() == live.StatePaused,
		Stale:      a.snap != nil && (a.lastErr != nil || !a.staleAt.IsZero()),
	}
	if len(a.notices) > 0 {
		status.Notice = &a.notices[0]
	}
	statusBar := components.RenderStatusBar(w, status)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabLive:
		content = a.renderLiveTab(cw, contentH)
	case tabAnalytics:
		content = a.renderAnalyticsTab(cw)
	case tabTerminal:
		content = a.renderTerminalTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = fillWidth(fitHeight(content, contentH), cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderInfoRow is the pill under the tab bar: plan, usage, and the text the
// menu bar would show right now.
func (a App) renderInfoRow(w int) string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	plan := report.BuildTerminal(a.snap, a.prefs, a.policy).Plan
	row := pill.Render(" ") + accent.Render(plan.Plan) + pill.Render(" "+plan.Label)
	if a.snap != nil {
		status := a.policy.Dashboard.Classify(a.snap.PercentageUsed)
		barW := 28
		if a.isCompactLayout() {
			barW = 20
		}
		row += pill.Render(" │ ") + components.CompactUsageBar("usage", a.snap.PercentageUsed, status, barW)
	}
	row += pill.Render(" │ menu bar ") + accent.Render(report.MenuBarText(a.snap, a.prefs, a.policy, a.ticks/alternateTicks))
	if !a.staleAt.IsZero() {
		row += pill.Render(" │ ") + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("cached "+a.staleAt.Local().Format("2006-01-02 15:04:05"))
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(w).MaxWidth(w).Render(row)
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadSnapshotCmd reads the first snapshot.
func loadSnapshotCmd(src source.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		snap, err := src.Snapshot(ctx)
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

// refreshCmd forces a refresh through the monitor so it is narrated.
func refreshCmd(m *live.Monitor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		err := m.ForceRefresh(ctx)
		return SnapshotMsg{Snapshot: m.Current().Snapshot, Err: err, Manual: true}
	}
}

// waitForEntry blocks on the monitor subscription. A closed channel ends
// the subscription loop.
func waitForEntry(ch <-chan model.LogEntry) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return EntryMsg{Entry: e}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// rootCause strips the cached-data suffix; the info row shows it instead.
func rootCause(err error) string {
	var stale *source.StaleError
	if errors.As(err, &stale) && stale.Err != nil {
		return stale.Err.Error()
	}
	return err.Error()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
