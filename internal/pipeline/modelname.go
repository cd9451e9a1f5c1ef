package pipeline

import "strings"

// displayNameReplacements run in order and each fires at most once. The
// generic "claude-3-" removal must run after "claude-3-5-" and before the
// family capitalisations, which assume the prefix is already gone.
var displayNameReplacements = [][2]string{
	{"claude-3-5-", ""},
	{"claude-3-", ""},
	{"sonnet-4-", "Sonnet 4-"},
	{"sonnet", "Sonnet"},
	{"opus", "Opus"},
	{"haiku", "Haiku"},
	{"20250514", ""},
}

// DisplayName shortens a model identifier for legends and tables.
func DisplayName(model string) string {
	name := model
	for _, r := range displayNameReplacements {
		name = strings.Replace(name, r[0], r[1], 1)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model
	}
	return name
}
