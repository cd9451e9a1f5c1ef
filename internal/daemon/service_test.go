package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/live"
	"github.com/theirongolddev/ccmonitor/internal/model"
)

type fakeSource struct {
	mu        sync.Mutex
	snap      *model.UsageSnapshot
	err       error
	refreshes int
}

func (f *fakeSource) Snapshot(context.Context) (*model.UsageSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.err
}

func (f *fakeSource) Refresh(ctx context.Context) (*model.UsageSnapshot, error) {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
	return f.Snapshot(ctx)
}

func sampleSnapshot(pct float64) *model.UsageSnapshot {
	return &model.UsageSnapshot{
		TokensUsed:      int64(pct * 70),
		TokenLimit:      7000,
		TokensRemaining: 7000 - int64(pct*70),
		PercentageUsed:  pct,
		BurnRate:        600,
		CurrentPlan:     "Pro",
		Today: model.DailyUsage{
			Date: "2025-06-10", TotalTokens: int64(pct * 70), TotalCost: 1.2,
			Models: map[string]model.ModelUsage{"claude-sonnet-4": {Tokens: int64(pct * 70), Cost: 1.2}},
		},
		ThisWeek: []model.DailyUsage{{Date: "2025-06-10", TotalTokens: int64(pct * 70), TotalCost: 1.2}},
	}
}

func newTestService(t *testing.T, src *fakeSource, token string) (*Service, *httptest.Server) {
	t.Helper()
	s := New(Config{Source: src, Interval: time.Hour, Token: token, EventsBuffer: 50})
	stop := s.start(context.Background())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		stop()
	})
	return s, srv
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

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp
}

func TestDiffSummaries(t *testing.T) {
	prev := Summary{TokensUsed: 1000, PercentageUsed: 10, BurnRate: 500, TodayCostUSD: 10.5}
	curr := Summary{TokensUsed: 1250, PercentageUsed: 12.5, BurnRate: 450, TodayCostUSD: 13.1}

	delta := diffSummaries(prev, curr)
	if delta.TokensUsed != 250 {
		t.Fatalf("TokensUsed delta = %d, want 250", delta.TokensUsed)
	}
	if delta.PercentageUsed != 2.5 {
		t.Fatalf("PercentageUsed delta = %v, want 2.5", delta.PercentageUsed)
	}
	if delta.BurnRate != -50 {
		t.Fatalf("BurnRate delta = %v, want -50", delta.BurnRate)
	}
	if math.Abs(delta.TodayCostUSD-2.6) > 1e-9 {
		t.Fatalf("Cost delta = %.2f, want 2.60", delta.TodayCostUSD)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSummaries(curr, curr).isZero() {
		t.Fatal("identical summaries produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Source: &fakeSource{}, EventsBuffer: 2})

	s.publishEvent(Event{Type: EventLog})
	s.publishEvent(Event{Type: EventLog})
	s.publishEvent(Event{Type: EventLog})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestHealthz(t *testing.T) {
	_, srv := newTestService(t, &fakeSource{snap: sampleSnapshot(10)}, "")
	resp := getJSON(t, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz status = %d", resp.StatusCode)
	}
}

func TestStatusAndEvents(t *testing.T) {
	src := &fakeSource{snap: sampleSnapshot(85)}
	s, srv := newTestService(t, src, "")

	waitFor(t, func() bool { return s.snapshotStatus().Summary != nil })

	var st Status
	getJSON(t, srv.URL+"/v1/status", &st)
	if st.Summary == nil || st.Summary.PercentageUsed != 85 || st.Summary.Status != model.StatusWarning {
		t.Fatalf("status summary = %+v", st.Summary)
	}
	if st.State != live.StateRunning {
		t.Fatalf("state = %s, want running", st.State)
	}

	src.mu.Lock()
	src.snap = sampleSnapshot(92)
	src.mu.Unlock()
	if err := s.Monitor().ForceRefresh(context.Background()); err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}

	var events []Event
	waitFor(t, func() bool {
		getJSON(t, srv.URL+"/v1/events", &events)
		for _, ev := range events {
			if ev.Type == EventUsageDelta {
				return true
			}
		}
		return false
	})
	var sawSnapshot, sawLog bool
	for _, ev := range events {
		switch ev.Type {
		case EventSnapshot:
			sawSnapshot = true
		case EventLog:
			sawLog = ev.Entry != nil
		case EventUsageDelta:
			if ev.Delta.PercentageUsed != 7 {
				t.Errorf("delta = %+v, want +7%%", ev.Delta)
			}
		}
	}
	if !sawSnapshot || !sawLog {
		t.Fatalf("events missing snapshot or log: %+v", events)
	}
}

func TestWatchedSnapshotUpdatesStatusWhilePaused(t *testing.T) {
	s, srv := newTestService(t, &fakeSource{snap: sampleSnapshot(40)}, "")
	waitFor(t, func() bool { return s.snapshotStatus().Summary != nil })
	s.Monitor().Pause()
	before := len(s.Monitor().Entries())

	s.push(sampleSnapshot(50))

	if n := len(s.Monitor().Entries()); n != before {
		t.Fatalf("entries = %d, want %d (quiet push)", n, before)
	}
	var st Status
	getJSON(t, srv.URL+"/v1/status", &st)
	if st.Summary == nil || st.Summary.PercentageUsed != 50 {
		t.Fatalf("status summary = %+v, want 50%%", st.Summary)
	}
	if st.State != live.StatePaused {
		t.Fatalf("state = %s, want paused", st.State)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	src := &fakeSource{snap: sampleSnapshot(40)}
	_, srv := newTestService(t, src, "")

	var got model.UsageSnapshot
	resp := getJSON(t, srv.URL+"/v1/snapshot", &got)
	if resp.StatusCode != http.StatusOK || got.PercentageUsed != 40 {
		t.Fatalf("snapshot = %d %+v", resp.StatusCode, got)
	}

	src.mu.Lock()
	before := src.refreshes
	src.mu.Unlock()
	getJSON(t, srv.URL+"/v1/snapshot?refresh=1", &got)
	src.mu.Lock()
	after := src.refreshes
	src.mu.Unlock()
	if after != before+1 {
		t.Fatalf("refresh=1 did not refresh (before %d, after %d)", before, after)
	}
}

func TestSnapshotEndpoint_NoData(t *testing.T) {
	s, srv := newTestService(t, &fakeSource{}, "")
	resp := getJSON(t, srv.URL+"/v1/snapshot", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if !errors.Is(s.Monitor().Err(), live.ErrEmptyRefresh) {
		t.Fatalf("monitor err = %v, want ErrEmptyRefresh", s.Monitor().Err())
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	_, srv := newTestService(t, &fakeSource{snap: sampleSnapshot(50)}, "")

	var a struct {
		Range  string `json:"range"`
		Metric string `json:"metric"`
		Chart  struct {
			Kind string `json:"kind"`
			Bars []any  `json:"bars"`
		} `json:"chart"`
		Breakdown []any `json:"breakdown"`
	}
	resp := getJSON(t, srv.URL+"/v1/analytics?range=7d&metric=cost&chart=bar&width=400", &a)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if a.Range != "7d" || a.Metric != "cost" || a.Chart.Kind != "bar" || len(a.Chart.Bars) != 1 || len(a.Breakdown) != 1 {
		t.Fatalf("analytics = %+v", a)
	}

	resp = getJSON(t, srv.URL+"/v1/analytics?range=1y", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad range status = %d, want 400", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/v1/analytics?format=svg")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("svg content type = %q", ct)
	}
}

func TestLogEndpoints(t *testing.T) {
	s, srv := newTestService(t, &fakeSource{snap: sampleSnapshot(10)}, "")

	resp, err := http.Post(srv.URL+"/v1/log/checkpoint", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkpoint status = %d", resp.StatusCode)
	}

	var entries []model.LogEntry
	getJSON(t, srv.URL+"/v1/log?limit=1", &entries)
	if len(entries) != 1 || entries[0].Message != "Checkpoint created" {
		t.Fatalf("log = %+v", entries)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/log", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if len(s.Monitor().Entries()) != 0 {
		t.Fatalf("log not cleared")
	}

	resp, err = http.Post(srv.URL+"/v1/pause", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if s.Monitor().State() != live.StatePaused {
		t.Fatalf("state = %s, want paused", s.Monitor().State())
	}
}

func TestTokenRequired(t *testing.T) {
	_, srv := newTestService(t, &fakeSource{snap: sampleSnapshot(10)}, "secret")

	resp := getJSON(t, srv.URL+"/v1/status", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", resp.StatusCode)
	}

	if resp := getJSON(t, srv.URL+"/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz should not need a token, got %d", resp.StatusCode)
	}
}

func TestStreamSendsEntries(t *testing.T) {
	s, srv := newTestService(t, &fakeSource{snap: sampleSnapshot(10)}, "")
	waitFor(t, func() bool { return s.snapshotStatus().Summary != nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading stream: %v", err)
			}
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}

	if got := readEvent(); got != EventSnapshot {
		t.Fatalf("first event = %q, want snapshot", got)
	}
	waitFor(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.subs) == 1
	})
	s.Monitor().Checkpoint()
	if got := readEvent(); got != EventLog {
		t.Fatalf("next event = %q, want log", got)
	}
}
