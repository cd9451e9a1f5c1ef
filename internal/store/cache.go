// Package store provides a SQLite-backed cache of usage snapshots: the
// last-known-good snapshot and a compact history of every accepted one.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrEmpty is returned when no snapshot has been cached yet.
var ErrEmpty = errors.New("store: no cached snapshot")

// Cache provides SQLite-backed snapshot caching.
type Cache struct {
	db *sql.DB
}

// Dir returns the platform-appropriate cache directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccmonitor")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "ccmonitor")
}

// DefaultPath returns the full path to the cache database.
func DefaultPath() string {
	return filepath.Join(Dir(), "snapshots.db")
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Cached is a stored snapshot with where and when it was captured.
type Cached struct {
	Snapshot   *model.UsageSnapshot
	Origin     string
	CapturedAt time.Time
}

// Save replaces the last-known-good snapshot and appends a history row.
func (c *Cache) Save(s *model.UsageSnapshot, origin string, at time.Time) error {
	if s == nil {
		return errors.New("store: nil snapshot")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := at.UTC().Format(time.RFC3339Nano)
	_, err = tx.Exec(`INSERT OR REPLACE INTO last_good (id, origin, captured_at, payload)
		VALUES (1, ?, ?, ?)`, origin, ts, string(payload))
	if err != nil {
		return fmt.Errorf("saving last good snapshot: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO snapshots
		(captured_at, tokens_used, token_limit, tokens_remaining, percentage_used, burn_rate, current_plan, today_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts, s.TokensUsed, s.TokenLimit, s.TokensRemaining, s.PercentageUsed, s.BurnRate, s.CurrentPlan, s.Today.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}

	return tx.Commit()
}

// LastGood returns the most recently saved snapshot, or ErrEmpty.
func (c *Cache) LastGood() (Cached, error) {
	var origin, ts, payload string
	err := c.db.QueryRow("SELECT origin, captured_at, payload FROM last_good WHERE id = 1").
		Scan(&origin, &ts, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Cached{}, ErrEmpty
	}
	if err != nil {
		return Cached{}, fmt.Errorf("reading last good snapshot: %w", err)
	}

	var s model.UsageSnapshot
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return Cached{}, fmt.Errorf("decoding cached snapshot: %w", err)
	}
	at, _ := time.Parse(time.RFC3339Nano, ts)
	return Cached{Snapshot: &s, Origin: origin, CapturedAt: at}, nil
}

// HistoryPoint is one row of snapshot history.
type HistoryPoint struct {
	CapturedAt     time.Time `json:"capturedAt"`
	TokensUsed     int64     `json:"tokensUsed"`
	TokenLimit     int64     `json:"tokenLimit"`
	PercentageUsed float64   `json:"percentageUsed"`
	BurnRate       float64   `json:"burnRate"`
	CurrentPlan    string    `json:"currentPlan,omitempty"`
	TodayCost      float64   `json:"todayCost"`
}

// History returns rows captured at or after since, oldest first, at most
// limit rows (the most recent ones). A non-positive limit means no limit.
func (c *Cache) History(since time.Time, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`SELECT captured_at, tokens_used, token_limit, percentage_used, burn_rate, current_plan, today_cost
		FROM (
			SELECT * FROM snapshots WHERE captured_at >= ? ORDER BY captured_at DESC, id DESC LIMIT ?
		) ORDER BY captured_at ASC, id ASC`,
		since.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		var ts string
		var plan sql.NullString
		if err := rows.Scan(&ts, &p.TokensUsed, &p.TokenLimit, &p.PercentageUsed, &p.BurnRate, &plan, &p.TodayCost); err != nil {
			return nil, err
		}
		p.CapturedAt, _ = time.Parse(time.RFC3339Nano, ts)
		p.CurrentPlan = plan.String
		points = append(points, p)
	}
	return points, rows.Err()
}

// Prune deletes history rows captured before cutoff and returns how many
// were removed. The last-known-good snapshot is never pruned.
func (c *Cache) Prune(cutoff time.Time) (int64, error) {
	res, err := c.db.Exec("DELETE FROM snapshots WHERE captured_at < ?", cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of history rows.
func (c *Cache) Count() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n)
	return n, err
}
