package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/metrics"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/pipeline"
)

// DefaultInterval is the refresh tick period.
const DefaultInterval = 3 * time.Second

// ErrEmptyRefresh is recorded when a Refresher reports success without a
// snapshot.
var ErrEmptyRefresh = errors.New("live: refresh returned no snapshot")

// Refresher forces a re-collection of the usage snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*model.UsageSnapshot, error)
}

// State is the scheduler state of a Monitor.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Config controls a Monitor. Zero values take defaults.
type Config struct {
	Interval time.Duration
	Capacity int
	Narrator *Narrator
	Logger   *zap.Logger
}

// Current is the last accepted snapshot plus the outcome of the latest
// acquisition. Stale is set when the latest attempt failed and Snapshot is
// an older good one.
type Current struct {
	Snapshot  *model.UsageSnapshot `json:"snapshot,omitempty"`
	LastError string               `json:"lastError,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Stale     bool                 `json:"stale"`
}

// Monitor owns the narration log and its refresh scheduler. All mutations go
// through one mutex, so tick handling and manual actions apply in arrival
// order and never interleave.
type Monitor struct {
	src      Refresher
	interval time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	entries  *Log
	narrator Narrator
	state    State
	current  Current
	lastErr  error

	nextSubID int
	subs      map[int]chan model.LogEntry

	signal  chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// NewMonitor returns a running-state monitor that has not started ticking.
func NewMonitor(src Refresher, cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	n := DefaultNarrator()
	if cfg.Narrator != nil {
		n = *cfg.Narrator
	}
	return &Monitor{
		src:      src,
		interval: cfg.Interval,
		log:      logger.OrNop(cfg.Logger),
		entries:  NewLog(cfg.Capacity),
		narrator: n,
		state:    StateRunning,
		subs:     make(map[int]chan model.LogEntry),
		signal:   make(chan struct{}, 1),
	}
}

// Start launches the tick goroutine. It returns immediately; call Stop to
// tear it down. Starting twice, or after Stop, is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.done != nil || m.stopped {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go m.run(ctx, done)
}

// Stop cancels the scheduler and waits for the goroutine to exit. It is safe
// to call more than once and before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	cancel, done := m.cancel, m.done
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	if m.State() == StatePaused {
		ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.signal:
			if m.State() == StatePaused {
				ticker.Stop()
			} else {
				ticker.Reset(m.interval)
			}
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	if m.State() == StatePaused {
		return
	}
	snap, err := m.refresh(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		m.fail(snap, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceptLocked(snap)
	m.appendLocked(model.SeverityInfo, "Data refreshed", GlyphRefresh)
	m.evaluateLocked(snap)
}

// Pause stops scheduling ticks. A refresh already in flight completes.
func (m *Monitor) Pause() { m.setState(StatePaused) }

// Resume restarts the tick schedule one full interval from now.
func (m *Monitor) Resume() { m.setState(StateRunning) }

// Toggle flips between running and paused and returns the new state.
func (m *Monitor) Toggle() State {
	m.mu.Lock()
	next := StatePaused
	if m.state == StatePaused {
		next = StateRunning
	}
	m.mu.Unlock()
	m.setState(next)
	return next
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()
	if !changed {
		return
	}
	m.log.Debug("live monitor state changed", zap.String("state", string(s)))
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// State reports whether the monitor is running or paused.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ForceRefresh refreshes immediately regardless of state and narrates the
// outcome.
func (m *Monitor) ForceRefresh(ctx context.Context) error {
	snap, err := m.refresh(ctx)
	if err != nil {
		m.fail(snap, err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceptLocked(snap)
	m.appendLocked(model.SeveritySuccess, "Manual refresh completed", GlyphSuccess)
	m.evaluateLocked(snap)
	return nil
}

// Push accepts an unsolicited snapshot update. It is evaluated like a
// refresh but produces no refresh narration.
func (m *Monitor) Push(snap *model.UsageSnapshot) {
	if snap == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceptLocked(snap)
	m.evaluateLocked(snap)
}

// Checkpoint appends a marker entry.
func (m *Monitor) Checkpoint() model.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(model.SeverityInfo, "Checkpoint created", GlyphCheckpoint)
}

// Clear empties the log.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Clear()
}

// Entries returns the log, newest first.
func (m *Monitor) Entries() []model.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Entries()
}

// Current returns the last good snapshot and the latest acquisition outcome.
func (m *Monitor) Current() Current {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Err returns the error of the latest acquisition, nil after a success.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Subscribe returns a channel receiving every appended entry and a function
// that unsubscribes and closes the channel. Slow subscribers miss entries
// rather than block the log.
func (m *Monitor) Subscribe() (<-chan model.LogEntry, func()) {
	ch := make(chan model.LogEntry, 16)
	m.mu.Lock()
	m.nextSubID++
	id := m.nextSubID
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			close(ch)
			m.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (m *Monitor) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *Monitor) refresh(ctx context.Context) (*model.UsageSnapshot, error) {
	snap, err := m.src.Refresh(ctx)
	if err == nil && snap == nil {
		err = ErrEmptyRefresh
	}
	metrics.RecordRefresh(err)
	return snap, err
}

// fail records a failed acquisition. A fallback snapshot that came with the
// error (a cached copy) is adopted only when nothing has been accepted yet.
func (m *Monitor) fail(fallback *model.UsageSnapshot, err error) {
	m.log.Warn("snapshot refresh failed", zap.Error(err))

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Snapshot == nil && fallback != nil {
		m.current.Snapshot = fallback
	}
	m.lastErr = err
	m.current.LastError = err.Error()
	m.current.Stale = m.current.Snapshot != nil
	m.appendLocked(model.SeverityError, "Refresh failed: "+err.Error(), GlyphError)
}

func (m *Monitor) acceptLocked(snap *model.UsageSnapshot) {
	m.lastErr = nil
	m.current = Current{Snapshot: snap, UpdatedAt: m.entries.now()}
	metrics.ObserveSnapshot(snap, pipeline.LiveThresholds.Classify(snap.PercentageUsed))
}

func (m *Monitor) evaluateLocked(snap *model.UsageSnapshot) {
	for _, n := range m.narrator.Evaluate(snap) {
		m.appendLocked(n.Severity, n.Message, n.Glyph)
	}
}

func (m *Monitor) appendLocked(sev model.Severity, msg, glyph string) model.LogEntry {
	e := m.entries.Append(sev, msg, glyph)
	metrics.RecordEntry(sev)
	for _, ch := range m.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}
