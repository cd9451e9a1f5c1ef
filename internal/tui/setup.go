package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/tui/theme"
)

// setupValues are the fields the preference form binds to. The form keeps
// pointers into it, so it must outlive the form.
type setupValues struct {
	Plan        string
	CustomLimit string
	Timezone    string
	ResetHour   string
	DisplayMode string
	CostSource  string
	Theme       string
	AutoRefresh bool
}

func newSetupValues(cfg config.Config, prefs config.Preferences) *setupValues {
	limit := ""
	if prefs.CustomTokenLimit > 0 {
		limit = strconv.FormatInt(prefs.CustomTokenLimit, 10)
	}
	themeName := cfg.Appearance.Theme
	if themeName == "" {
		themeName = theme.FlexokiDark.Name
	}
	return &setupValues{
		Plan:        string(prefs.Plan),
		CustomLimit: limit,
		Timezone:    prefs.Timezone,
		ResetHour:   strconv.Itoa(prefs.ResetHour),
		DisplayMode: string(prefs.MenuBarDisplayMode),
		CostSource:  string(prefs.MenuBarCostSource),
		Theme:       themeName,
		AutoRefresh: cfg.TUI.AutoRefresh,
	}
}

// newSetupForm builds the preference form over v.
func newSetupForm(v *setupValues) *huh.Form {
	plans := make([]huh.Option[string], 0, len(config.Plans))
	for _, p := range config.Plans {
		label := string(p)
		if limit := p.Limit(); limit > 0 {
			label = fmt.Sprintf("%s (%d tokens)", p, limit)
		}
		plans = append(plans, huh.NewOption(label, string(p)))
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("ccmonitor setup").
				Description("Preferences for the dashboard, terminal readout and menu bar."),
			huh.NewSelect[string]().
				Title("Plan").
				Description("Auto trusts the plan the collector detects.").
				Options(plans...).
				Value(&v.Plan),
			huh.NewInput().
				Title("Custom token limit").
				Description("Used only with the Custom plan.").
				Placeholder("50000").
				Value(&v.CustomLimit).
				Validate(validateLimit),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Timezone").
				Description("IANA name, empty for the system zone.").
				Placeholder("Europe/Berlin").
				Value(&v.Timezone).
				Validate(validateTimezone),
			huh.NewInput().
				Title("Reset hour").
				Description("0-23").
				Value(&v.ResetHour).
				Validate(validateResetHour),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Menu bar shows").
				Options(
					huh.NewOption("Percentage", string(config.DisplayPercentage)),
					huh.NewOption("Cost", string(config.DisplayCost)),
					huh.NewOption("Alternate between both", string(config.DisplayAlternate)),
				).
				Value(&v.DisplayMode),
			huh.NewSelect[string]().
				Title("Menu bar cost").
				Options(
					huh.NewOption("Today", string(config.CostToday)),
					huh.NewOption("Session window", string(config.CostSessionWindow)),
				).
				Value(&v.CostSource),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(themes...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Refresh automatically?").
				Value(&v.AutoRefresh),
		),
	).WithTheme(huh.ThemeCatppuccin())
}

// NewSetupForm returns the preference form for cfg together with a function
// that writes the submitted values back into cfg.
func NewSetupForm(cfg config.Config) (*huh.Form, func(*config.Config) error) {
	prefs, _ := cfg.Prefs()
	v := newSetupValues(cfg, prefs)
	return newSetupForm(v), v.apply
}

// apply validates the form values through config.Set.
func (v *setupValues) apply(cfg *config.Config) error {
	limit := strings.TrimSpace(v.CustomLimit)
	if limit == "" {
		limit = "0"
	}
	pairs := [][2]string{
		{config.KeyPlan, v.Plan},
		{config.KeyCustomTokenLimit, limit},
		{config.KeyTimezone, strings.TrimSpace(v.Timezone)},
		{config.KeyResetHour, strings.TrimSpace(v.ResetHour)},
		{config.KeyMenuBarDisplayMode, v.DisplayMode},
		{config.KeyMenuBarCostSource, v.CostSource},
		{"theme", v.Theme},
		{"auto_refresh", strconv.FormatBool(v.AutoRefresh)},
	}
	var errs []error
	for _, kv := range pairs {
		if err := cfg.Set(kv[0], kv[1]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// saveSetup applies the completed form and persists it.
func (a *App) saveSetup() error {
	cfg := a.cfg
	if err := a.setupVals.apply(&cfg); err != nil {
		return err
	}
	if err := a.save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	a.adoptConfig(cfg)
	return nil
}

// adoptConfig makes a saved configuration take effect.
func (a *App) adoptConfig(cfg config.Config) {
	a.cfg = cfg
	if prefs, err := cfg.Prefs(); err == nil {
		a.prefs = prefs
	}
	a.policy = report.PolicyFrom(cfg.Thresholds)
	theme.SetActive(cfg.Appearance.Theme)
	if cfg.TUI.AutoRefresh {
		a.monitor.Resume()
	} else {
		a.monitor.Pause()
	}
}

func validateLimit(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return errors.New("enter a non-negative whole number")
	}
	return nil
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown timezone %q", s)
	}
	return nil
}

func validateResetHour(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 23 {
		return errors.New("enter an hour between 0 and 23")
	}
	return nil
}
