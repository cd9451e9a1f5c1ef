// Package live runs the live narration log: a bounded newest-first buffer of
// events, the rules that narrate each new snapshot, and the Monitor that
// refreshes on a fixed tick.
package live

import (
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// DefaultCapacity is the number of entries a Log keeps.
const DefaultCapacity = 50

// Entry glyphs.
const (
	GlyphRefresh    = "🔄"
	GlyphCritical   = "🚨"
	GlyphWarning    = "⚠️"
	GlyphReset      = "⏰"
	GlyphCheckpoint = "📍"
	GlyphSuccess    = "✅"
	GlyphError      = "❌"
)

// Log is a bounded buffer with the newest entry at index 0. Entries beyond
// capacity are dropped silently. A Log is not safe for concurrent use; the
// Monitor serializes access.
type Log struct {
	capacity int
	entries  []model.LogEntry

	now   func() time.Time
	newID func() string
}

// NewLog returns an empty log. A non-positive capacity means DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		entries:  make([]model.LogEntry, 0, capacity),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Append records a new entry at the front and returns it.
func (l *Log) Append(sev model.Severity, message, glyph string) model.LogEntry {
	e := model.LogEntry{
		ID:        l.newID(),
		Timestamp: l.now(),
		Severity:  sev,
		Message:   message,
		Glyph:     glyph,
	}

	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, model.LogEntry{})
	}
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = e
	return e
}

// Entries returns a copy, newest first.
func (l *Log) Entries() []model.LogEntry {
	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int      { return len(l.entries) }
func (l *Log) Capacity() int { return l.capacity }

// Clear drops every entry.
func (l *Log) Clear() {
	l.entries = l.entries[:0]
}
