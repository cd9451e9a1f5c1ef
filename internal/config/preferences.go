package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPreference marks a recognized preference key with a bad value.
var ErrInvalidPreference = errors.New("invalid preference")

// Recognized preference keys.
const (
	KeyTimezone           = "timezone"
	KeyResetHour          = "resetHour"
	KeyPlan               = "plan"
	KeyCustomTokenLimit   = "customTokenLimit"
	KeyMenuBarDisplayMode = "menuBarDisplayMode"
	KeyMenuBarCostSource  = "menuBarCostSource"
)

// PreferenceKeys lists the recognized keys in display order.
var PreferenceKeys = []string{
	KeyTimezone, KeyResetHour, KeyPlan, KeyCustomTokenLimit, KeyMenuBarDisplayMode, KeyMenuBarCostSource,
}

// DisplayMode selects what the menu bar shows.
type DisplayMode string

const (
	DisplayPercentage DisplayMode = "percentage"
	DisplayCost       DisplayMode = "cost"
	DisplayAlternate  DisplayMode = "alternate"
)

// ParseDisplayMode yields DisplayAlternate, false for unknown input.
func ParseDisplayMode(s string) (DisplayMode, bool) {
	switch m := DisplayMode(strings.ToLower(strings.TrimSpace(s))); m {
	case DisplayPercentage, DisplayCost, DisplayAlternate:
		return m, true
	default:
		return DisplayAlternate, false
	}
}

// CostSource selects which cost the menu bar shows.
type CostSource string

const (
	CostToday         CostSource = "today"
	CostSessionWindow CostSource = "sessionWindow"
)

// ParseCostSource yields CostToday, false for unknown input.
func ParseCostSource(s string) (CostSource, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return CostToday, true
	case "sessionwindow", "session_window", "session":
		return CostSessionWindow, true
	default:
		return CostToday, false
	}
}

// Preferences are the validated user preferences.
type Preferences struct {
	Timezone           string // IANA name; empty means the system zone
	ResetHour          int    // 0-23
	Plan               Plan
	CustomTokenLimit   int64
	MenuBarDisplayMode DisplayMode
	MenuBarCostSource  CostSource
}

// DefaultPreferences returns the documented defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		Plan:               PlanAuto,
		MenuBarDisplayMode: DisplayAlternate,
		MenuBarCostSource:  CostToday,
	}
}

// Location resolves the timezone, falling back to time.Local.
func (p Preferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ParsePreferences validates a plain key/value preference map. Unrecognized
// keys are ignored and missing keys keep their defaults. A recognized key
// with an invalid value also keeps its default; every such key is reported
// in the joined error while the remaining preferences are still returned.
func ParsePreferences(raw map[string]any) (Preferences, error) {
	p := DefaultPreferences()
	var errs []error
	bad := func(key string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalidPreference, key, v))
	}

	if v, ok := raw[KeyTimezone]; ok && v != nil {
		s, isStr := v.(string)
		s = strings.TrimSpace(s)
		switch {
		case !isStr:
			bad(KeyTimezone, v)
		case s == "":
			// System zone.
		default:
			if _, err := time.LoadLocation(s); err != nil {
				bad(KeyTimezone, v)
			} else {
				p.Timezone = s
			}
		}
	}

	if v, ok := raw[KeyResetHour]; ok && v != nil {
		if n, isInt := toInt(v); isInt && n >= 0 && n <= 23 {
			p.ResetHour = int(n)
		} else {
			bad(KeyResetHour, v)
		}
	}

	if v, ok := raw[KeyPlan]; ok && v != nil {
		s, _ := v.(string)
		if plan, valid := ParsePlan(s); valid {
			p.Plan = plan
		} else {
			bad(KeyPlan, v)
		}
	}

	if v, ok := raw[KeyCustomTokenLimit]; ok && v != nil {
		if n, isInt := toInt(v); isInt && n >= 0 {
			p.CustomTokenLimit = n
		} else {
			bad(KeyCustomTokenLimit, v)
		}
	}

	if v, ok := raw[KeyMenuBarDisplayMode]; ok && v != nil {
		s, _ := v.(string)
		if m, valid := ParseDisplayMode(s); valid {
			p.MenuBarDisplayMode = m
		} else {
			bad(KeyMenuBarDisplayMode, v)
		}
	}

	if v, ok := raw[KeyMenuBarCostSource]; ok && v != nil {
		s, _ := v.(string)
		if c, valid := ParseCostSource(s); valid {
			p.MenuBarCostSource = c
		} else {
			bad(KeyMenuBarCostSource, v)
		}
	}

	return p, errors.Join(errs...)
}

// Map returns the preferences as the plain key/value form ParsePreferences
// accepts.
func (p Preferences) Map() map[string]any {
	return map[string]any{
		KeyTimezone:           p.Timezone,
		KeyResetHour:          p.ResetHour,
		KeyPlan:               string(p.Plan),
		KeyCustomTokenLimit:   p.CustomTokenLimit,
		KeyMenuBarDisplayMode: string(p.MenuBarDisplayMode),
		KeyMenuBarCostSource:  string(p.MenuBarCostSource),
	}
}

// toInt accepts the integer shapes JSON, TOML and flag strings produce.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
