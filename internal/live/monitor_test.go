package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	snap  *model.UsageSnapshot
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*model.UsageSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeRefresher) set(snap *model.UsageSnapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap, f.err = snap, err
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func messages(entries []model.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestMonitor_TickRefreshesAndNarrates(t *testing.T) {
	src := &fakeRefresher{snap: &model.UsageSnapshot{PercentageUsed: 85}}
	m := NewMonitor(src, Config{Interval: 10 * time.Millisecond})
	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, func() bool { return len(m.Entries()) >= 2 })
	m.Stop()

	entries := m.Entries()
	// Newest first: the narration follows the refresh entry.
	if entries[0].Message != "High usage: 85.0%" || entries[1].Message != "Data refreshed" {
		t.Fatalf("entries = %v", messages(entries[:2]))
	}
	if entries[1].Severity != model.SeverityInfo || entries[1].Glyph != GlyphRefresh {
		t.Fatalf("refresh entry = %+v", entries[1])
	}
}

func TestMonitor_StopHaltsTicks(t *testing.T) {
	src := &fakeRefresher{snap: &model.UsageSnapshot{}}
	m := NewMonitor(src, Config{Interval: 5 * time.Millisecond})
	m.Start(context.Background())
	waitFor(t, func() bool { return src.count() >= 1 })
	m.Stop()
	m.Stop()

	n := src.count()
	time.Sleep(30 * time.Millisecond)
	if got := src.count(); got != n {
		t.Fatalf("refresh calls after Stop = %d, want %d", got, n)
	}

	m.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	if got := src.count(); got != n {
		t.Fatal("Start after Stop restarted the scheduler")
	}
}

func TestMonitor_PauseStopsScheduling(t *testing.T) {
	src := &fakeRefresher{snap: &model.UsageSnapshot{}}
	m := NewMonitor(src, Config{Interval: 5 * time.Millisecond})
	if m.State() != StateRunning {
		t.Fatalf("initial state = %q, want running", m.State())
	}

	m.Pause()
	m.Start(context.Background())
	defer m.Stop()

	time.Sleep(30 * time.Millisecond)
	if got := src.count(); got != 0 {
		t.Fatalf("refresh calls while paused = %d, want 0", got)
	}

	if got := m.Toggle(); got != StateRunning {
		t.Fatalf("Toggle = %q, want running", got)
	}
	waitFor(t, func() bool { return src.count() > 0 })
}

func TestMonitor_FailureKeepsLastGood(t *testing.T) {
	good := &model.UsageSnapshot{TokensUsed: 42}
	src := &fakeRefresher{snap: good}
	m := NewMonitor(src, Config{})

	if err := m.ForceRefresh(context.Background()); err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if got := m.Entries()[0].Message; got != "Manual refresh completed" {
		t.Fatalf("latest entry = %q, want manual refresh narration", got)
	}

	src.set(nil, errors.New("collector offline"))
	if err := m.ForceRefresh(context.Background()); err == nil {
		t.Fatal("ForceRefresh succeeded, want error")
	}

	cur := m.Current()
	if cur.Snapshot != good {
		t.Fatal("last good snapshot was replaced after a failure")
	}
	if !cur.Stale || cur.LastError != "collector offline" {
		t.Fatalf("Current = %+v, want stale with error", cur)
	}
	e := m.Entries()[0]
	if e.Severity != model.SeverityError || e.Message != "Refresh failed: collector offline" {
		t.Fatalf("error entry = %+v", e)
	}
	if m.Err() == nil {
		t.Fatal("Err() = nil after failure")
	}

	src.set(good, nil)
	_ = m.ForceRefresh(context.Background())
	if cur := m.Current(); cur.Stale || cur.LastError != "" || m.Err() != nil {
		t.Fatalf("Current after recovery = %+v", cur)
	}
}

func TestMonitor_PushHasNoRefreshNarration(t *testing.T) {
	m := NewMonitor(&fakeRefresher{}, Config{})
	m.Push(&model.UsageSnapshot{PercentageUsed: 10})
	if n := len(m.Entries()); n != 0 {
		t.Fatalf("entries after calm push = %v, want none", messages(m.Entries()))
	}

	m.Push(&model.UsageSnapshot{PercentageUsed: 97})
	entries := m.Entries()
	if len(entries) != 1 || entries[0].Message != "Critical usage: 97.0%" {
		t.Fatalf("entries = %v", messages(entries))
	}
	if m.Current().Snapshot.PercentageUsed != 97 {
		t.Fatal("pushed snapshot not accepted")
	}
}

func TestMonitor_RepeatsWhileConditionHolds(t *testing.T) {
	m := NewMonitor(&fakeRefresher{}, Config{})
	snap := &model.UsageSnapshot{PercentageUsed: 82}
	for i := 0; i < 3; i++ {
		m.Push(snap)
	}
	if n := len(m.Entries()); n != 3 {
		t.Fatalf("warning entries = %d, want 3", n)
	}
}

func TestMonitor_CheckpointAndClear(t *testing.T) {
	m := NewMonitor(&fakeRefresher{}, Config{Capacity: 5})
	for i := 0; i < 8; i++ {
		m.Checkpoint()
	}
	if n := len(m.Entries()); n != 5 {
		t.Fatalf("entries = %d, want capacity 5", n)
	}
	if g := m.Entries()[0].Glyph; g != GlyphCheckpoint {
		t.Fatalf("glyph = %q, want checkpoint", g)
	}
	m.Clear()
	if n := len(m.Entries()); n != 0 {
		t.Fatalf("entries after Clear = %d, want 0", n)
	}
}

func TestMonitor_Subscribe(t *testing.T) {
	m := NewMonitor(&fakeRefresher{}, Config{})
	ch, unsubscribe := m.Subscribe()
	if m.Subscribers() != 1 {
		t.Fatalf("Subscribers = %d, want 1", m.Subscribers())
	}

	want := m.Checkpoint()
	select {
	case got := <-ch:
		if got.ID != want.ID {
			t.Fatalf("received %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive entry")
	}

	unsubscribe()
	unsubscribe()
	if m.Subscribers() != 0 {
		t.Fatalf("Subscribers after unsubscribe = %d, want 0", m.Subscribers())
	}
	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}
	m.Checkpoint()
}

func TestMonitor_SlowSubscriberDoesNotBlock(t *testing.T) {
	m := NewMonitor(&fakeRefresher{}, Config{})
	_, unsubscribe := m.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			m.Checkpoint()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Checkpoint blocked on a full subscriber")
	}
}

type staleRefresher struct{ snap *model.UsageSnapshot }

func (s staleRefresher) Refresh(context.Context) (*model.UsageSnapshot, error) {
	return s.snap, errors.New("collector offline")
}

func TestMonitor_AdoptsFallbackWhenEmpty(t *testing.T) {
	cached := &model.UsageSnapshot{PercentageUsed: 40}
	m := NewMonitor(staleRefresher{snap: cached}, Config{})
	if err := m.ForceRefresh(context.Background()); err == nil {
		t.Fatal("ForceRefresh returned nil error")
	}
	cur := m.Current()
	if cur.Snapshot != cached || !cur.Stale {
		t.Fatalf("Current = %+v, want cached snapshot marked stale", cur)
	}
	if got := m.Entries()[0].Message; got != "Refresh failed: collector offline" {
		t.Fatalf("entry = %q", got)
	}
}

func TestMonitor_EmptyRefreshIsAFailure(t *testing.T) {
	src := &fakeRefresher{}
	m := NewMonitor(src, Config{Interval: 10 * time.Millisecond})

	if err := m.ForceRefresh(context.Background()); !errors.Is(err, ErrEmptyRefresh) {
		t.Fatalf("ForceRefresh err = %v, want ErrEmptyRefresh", err)
	}
	if cur := m.Current(); cur.Snapshot != nil || cur.Stale || cur.LastError == "" {
		t.Fatalf("Current = %+v, want no snapshot with an error", cur)
	}

	m.Start(context.Background())
	defer m.Stop()
	waitFor(t, func() bool { return src.count() >= 3 })
	m.Stop()

	for _, e := range m.Entries() {
		if e.Severity != model.SeverityError {
			t.Fatalf("entry %+v, want only refresh failures", e)
		}
	}
	if !errors.Is(m.Err(), ErrEmptyRefresh) {
		t.Fatalf("Err() = %v, want ErrEmptyRefresh", m.Err())
	}
}
