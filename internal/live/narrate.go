package live

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// Narration thresholds. These sit higher than the live status card
// thresholds and are kept separate from them.
var DefaultNarrationThresholds = pipeline.Thresholds{Warning: 80, Critical: 95}

// DefaultResetSoon is how close a reset must be before it is narrated.
const DefaultResetSoon = time.Hour

// Note is an entry the narrator wants appended.
type Note struct {
	Severity model.Severity
	Message  string
	Glyph    string
}

// Narrator turns a snapshot into log notes. Every evaluation narrates the
// current condition, so a sustained high usage repeats on each refresh.
type Narrator struct {
	Thresholds pipeline.Thresholds
	ResetSoon  time.Duration
}

// DefaultNarrator uses DefaultNarrationThresholds and DefaultResetSoon.
func DefaultNarrator() Narrator {
	return Narrator{Thresholds: DefaultNarrationThresholds, ResetSoon: DefaultResetSoon}
}

// Evaluate returns at most one usage note followed by at most one reset note.
func (n Narrator) Evaluate(s *model.UsageSnapshot) []Note {
	if s == nil {
		return nil
	}

	var notes []Note
	switch n.Thresholds.Classify(s.PercentageUsed) {
	case model.StatusCritical:
		notes = append(notes, Note{
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("Critical usage: %.1f%%", s.PercentageUsed),
			Glyph:    GlyphCritical,
		})
	case model.StatusWarning:
		notes = append(notes, Note{
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("High usage: %.1f%%", s.PercentageUsed),
			Glyph:    GlyphWarning,
		})
	}

	// Only the estimated reset source drives this note.
	if r := s.ResetInfo; r.HasCountdown() {
		// A zero countdown carries no information; negative means overdue.
		ms := *r.TimeUntilReset
		msg := "Reset in " + pipeline.FormatCountdown(ms)
		if ms < 0 {
			msg = "Reset overdue by " + pipeline.FormatCountdown(-ms)
		}
		if ms != 0 && ms < n.ResetSoon.Milliseconds() {
			notes = append(notes, Note{
				Severity: model.SeverityInfo,
				Message:  msg,
				Glyph:    GlyphReset,
			})
		}
	}
	return notes
}
