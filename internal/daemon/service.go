// Package daemon provides the long-running background usage monitor service.
package daemon

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/chart"
	"github.com/theirongolddev/ccmonitor/internal/config"
	"github.com/theirongolddev/ccmonitor/internal/live"
	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/metrics"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/report"
	"github.com/theirongolddev/ccmonitor/internal/source"
)

// DefaultAddr is where the daemon listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:8787"

// Config controls the daemon runtime behavior.
type Config struct {
	Source       source.Source
	WatchPath    string // snapshot file to watch for push updates; empty disables
	Interval     time.Duration
	Addr         string
	Token        string // bearer token required on /v1 endpoints when set
	EventsBuffer int
	Preferences  config.Preferences
	Policy       report.Policy
	Narrator     *live.Narrator
	Logger       *zap.Logger
}

// Summary is a compact usage state for status/event payloads.
type Summary struct {
	At              time.Time    `json:"at"`
	TokensUsed      int64        `json:"tokens_used"`
	TokenLimit      int64        `json:"token_limit"`
	TokensRemaining int64        `json:"tokens_remaining"`
	PercentageUsed  float64      `json:"percentage_used"`
	Status          model.Status `json:"status"`
	BurnRate        float64      `json:"burn_rate"`
	TodayCostUSD    float64      `json:"today_cost_usd"`
	ResetIn         string       `json:"reset_in"`
}

// Delta captures summary deltas between accepted snapshots.
type Delta struct {
	TokensUsed     int64   `json:"tokens_used"`
	PercentageUsed float64 `json:"percentage_used"`
	BurnRate       float64 `json:"burn_rate"`
	TodayCostUSD   float64 `json:"today_cost_usd"`
}

func (d Delta) isZero() bool {
	return d.TokensUsed == 0 &&
		d.PercentageUsed == 0 &&
		d.BurnRate == 0 &&
		d.TodayCostUSD == 0
}

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventUsageDelta = "usage_delta"
	EventLog        = "log"
)

// Event is emitted for every narration entry and whenever usage changes.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Summary   *Summary        `json:"summary,omitempty"`
	Delta     *Delta          `json:"delta,omitempty"`
	Entry     *model.LogEntry `json:"entry,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time  `json:"started_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	PollIntervalSec int        `json:"poll_interval_sec"`
	State           live.State `json:"state"`
	Stale           bool       `json:"stale"`
	Summary         *Summary   `json:"summary,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	EventCount      int        `json:"event_count"`
	LogCount        int        `json:"log_count"`
	SubscriberCount int        `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *zap.Logger
	monitor *live.Monitor
	now     func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	hasSummary  bool
	summary     Summary
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = live.DefaultInterval
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Policy == (report.Policy{}) {
		cfg.Policy = report.DefaultPolicy()
	}
	log := logger.OrNop(cfg.Logger).Named("daemon")

	return &Service{
		cfg: cfg,
		log: log,
		monitor: live.NewMonitor(cfg.Source, live.Config{
			Interval: cfg.Interval,
			Narrator: cfg.Narrator,
			Logger:   log,
		}),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Monitor exposes the underlying narration monitor.
func (s *Service) Monitor() *live.Monitor { return s.monitor }

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening", zap.String("addr", s.cfg.Addr))

	stop := s.start(ctx)
	defer stop()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// start seeds the first snapshot, then runs the monitor, the optional file
// watcher, and the entry pump. The returned func stops all three.
func (s *Service) start(ctx context.Context) func() {
	entries, unsubscribe := s.monitor.Subscribe()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for entry := range entries {
			s.onEntry(entry)
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	if err := s.monitor.ForceRefresh(ctx); err != nil {
		s.log.Warn("initial refresh failed", zap.Error(err))
	}
	s.monitor.Start(ctx)

	var watcher *source.Watcher
	if s.cfg.WatchPath != "" {
		watcher = source.NewWatcher(s.cfg.WatchPath, 0, s.push, s.log)
		if err := watcher.Start(); err != nil {
			s.log.Warn("snapshot watcher unavailable", zap.Error(err))
			watcher = nil
		}
	}

	return func() {
		if watcher != nil {
			watcher.Stop()
		}
		s.monitor.Stop()
		unsubscribe()
		<-pumpDone
	}
}

// onEntry republishes a narration entry and, when the accepted snapshot
// moved, a usage event.
func (s *Service) onEntry(entry model.LogEntry) {
	e := entry
	s.publishEvent(Event{Type: EventLog, Timestamp: entry.Timestamp, Entry: &e})
	s.syncSummary()
}

// push hands a watched snapshot to the monitor. Pushes narrate only when a
// condition holds, so the summary is synced here too.
func (s *Service) push(snap *model.UsageSnapshot) {
	s.monitor.Push(snap)
	s.syncSummary()
}

// syncSummary recomputes the status summary from the monitor and publishes
// a snapshot or delta event when it moved.
func (s *Service) syncSummary() {
	cur := s.monitor.Current()
	if cur.Snapshot == nil {
		return
	}
	sum := s.summarize(cur.Snapshot, cur.UpdatedAt)

	s.mu.Lock()
	prev, prevExists := s.summary, s.hasSummary
	s.summary, s.hasSummary = sum, true
	s.mu.Unlock()

	if !prevExists {
		s.publishEvent(Event{Type: EventSnapshot, Timestamp: sum.At, Summary: &sum})
		return
	}
	if delta := diffSummaries(prev, sum); !delta.isZero() {
		s.publishEvent(Event{Type: EventUsageDelta, Timestamp: sum.At, Summary: &sum, Delta: &delta})
	}
}

func (s *Service) summarize(snap *model.UsageSnapshot, at time.Time) Summary {
	d := report.BuildDashboard(snap, s.cfg.Preferences, s.cfg.Policy, s.now())
	return Summary{
		At:              at,
		TokensUsed:      d.TokensUsed,
		TokenLimit:      d.TokenLimit,
		TokensRemaining: d.TokensRemaining,
		PercentageUsed:  d.PercentageUsed,
		Status:          d.Status,
		BurnRate:        d.BurnRate,
		TodayCostUSD:    d.Today.Cost,
		ResetIn:         d.ResetIn,
	}
}

func diffSummaries(prev, curr Summary) Delta {
	return Delta{
		TokensUsed:     curr.TokensUsed - prev.TokensUsed,
		PercentageUsed: curr.PercentageUsed - prev.PercentageUsed,
		BurnRate:       curr.BurnRate - prev.BurnRate,
		TodayCostUSD:   curr.TodayCostUSD - prev.TodayCostUSD,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	cur := s.monitor.Current()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		UpdatedAt:       cur.UpdatedAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		State:           s.monitor.State(),
		Stale:           cur.Stale,
		LastError:       cur.LastError,
		EventCount:      len(s.events),
		LogCount:        len(s.monitor.Entries()),
		SubscriberCount: len(s.subs),
	}
	if s.hasSummary {
		sum := s.summary
		st.Summary = &sum
	}
	return st
}

// Handler builds the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/status", s.handleStatus)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/events", s.handleEvents)
		r.Get("/log", s.handleLog)
		r.Post("/log/checkpoint", s.handleCheckpoint)
		r.Delete("/log", s.handleClearLog)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// requestLogger puts a logger tagged with the request id and route on the
// request context.
func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With(
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

func (s *Service) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Token)) != 1 {
				logger.FromContext(r.Context()).Info("rejected request with bad token")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleSnapshot serves the raw snapshot in the collector's own format, so
// another ccmonitor can use this daemon as its HTTP source.
func (s *Service) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" {
		if err := s.monitor.ForceRefresh(r.Context()); err != nil {
			logger.FromContext(r.Context()).Debug("refresh requested over http failed", zap.Error(err))
		}
	}
	cur := s.monitor.Current()
	if cur.Snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if cur.Stale {
		w.Header().Set("X-Ccmonitor-Stale", "1")
	}
	writeJSON(w, http.StatusOK, cur.Snapshot)
}

func (s *Service) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	cur := s.monitor.Current()
	if cur.Snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, report.BuildDashboard(cur.Snapshot, s.cfg.Preferences, s.cfg.Policy, s.now()))
}

func (s *Service) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := report.ParseQuery(q.Get("range"), q.Get("metric"), q.Get("chart"), q.Get("width"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a := report.BuildAnalytics(s.monitor.Current().Snapshot, query, s.now())

	if q.Get("format") == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := chart.RenderSVG(w, a.Chart, a.SVGOptions()); err != nil {
			logger.FromContext(r.Context()).Warn("rendering svg", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleLog(w http.ResponseWriter, r *http.Request) {
	entries := s.monitor.Entries()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if n < len(entries) {
			entries = entries[:n]
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleCheckpoint(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, s.monitor.Checkpoint())
}

func (s *Service) handleClearLog(w http.ResponseWriter, _ *http.Request) {
	s.monitor.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.monitor.Pause()
	writeJSON(w, http.StatusOK, map[string]live.State{"state": s.monitor.State()})
}

func (s *Service) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.monitor.Resume()
	writeJSON(w, http.StatusOK, map[string]live.State{"state": s.monitor.State()})
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current summary immediately.
	if st := s.snapshotStatus(); st.Summary != nil {
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: s.now(), Summary: st.Summary})
	} else {
		_, _ = fmt.Fprint(w, ": waiting for first snapshot\n\n")
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
