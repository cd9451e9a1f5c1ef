package live

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

func TestLog_NeverExceedsCapacity(t *testing.T) {
	l := NewLog(0)
	for i := 0; i < 120; i++ {
		l.Append(model.SeverityInfo, fmt.Sprintf("entry %d", i), GlyphRefresh)
		if l.Len() > DefaultCapacity {
			t.Fatalf("after %d appends Len = %d, want <= %d", i+1, l.Len(), DefaultCapacity)
		}
		if got := l.Entries()[0].Message; got != fmt.Sprintf("entry %d", i) {
			t.Fatalf("newest entry = %q, want entry %d", got, i)
		}
	}
	entries := l.Entries()
	if len(entries) != 50 {
		t.Fatalf("len = %d, want 50", len(entries))
	}
	if entries[49].Message != "entry 70" {
		t.Fatalf("oldest kept = %q, want entry 70", entries[49].Message)
	}
}

func TestLog_EntriesIsACopy(t *testing.T) {
	l := NewLog(3)
	l.Append(model.SeverityInfo, "a", "")
	got := l.Entries()
	got[0].Message = "mutated"
	if l.Entries()[0].Message != "a" {
		t.Fatal("Entries exposed internal storage")
	}
}

func TestLog_AppendStampsEntry(t *testing.T) {
	l := NewLog(3)
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return at }
	l.newID = func() string { return "id-1" }

	e := l.Append(model.SeverityWarning, "High usage: 85.0%", GlyphWarning)
	if e.ID != "id-1" || !e.Timestamp.Equal(at) || e.Severity != model.SeverityWarning {
		t.Fatalf("entry = %+v", e)
	}
}

func TestLog_UniqueIDs(t *testing.T) {
	l := NewLog(10)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		id := l.Append(model.SeverityInfo, "x", "").ID
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog(5)
	l.Append(model.SeverityInfo, "a", "")
	l.Append(model.SeverityInfo, "b", "")
	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", l.Len())
	}
	l.Append(model.SeverityInfo, "c", "")
	if l.Entries()[0].Message != "c" {
		t.Fatal("append after Clear failed")
	}
}
