// Package source acquires usage snapshots from the collector, either by
// reading the JSON file it writes or by fetching the same document over HTTP.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

var (
	// ErrNoSnapshot indicates the collector has not produced a snapshot yet.
	ErrNoSnapshot = errors.New("source: no snapshot available")
	// ErrUnauthorized indicates the endpoint rejected the bearer token.
	ErrUnauthorized = errors.New("source: unauthorized (token missing or invalid)")
	// ErrRateLimited indicates the endpoint asked us to slow down.
	ErrRateLimited = errors.New("source: rate limited")
	// ErrUnavailable indicates the endpoint answered with an unexpected status.
	ErrUnavailable = errors.New("source: unavailable")
)

// Source yields usage snapshots. Snapshot returns the latest report as-is;
// Refresh asks the collector to re-collect first when it can.
type Source interface {
	Snapshot(ctx context.Context) (*model.UsageSnapshot, error)
	Refresh(ctx context.Context) (*model.UsageSnapshot, error)
}

// Decode parses one snapshot document. An empty document or JSON null is
// ErrNoSnapshot.
func Decode(r io.Reader) (*model.UsageSnapshot, error) {
	var s *model.UsageSnapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("source: decoding snapshot: %w", err)
	}
	if s == nil {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

// StaleError reports a failed acquisition that was answered from the cache.
// The cached snapshot is returned alongside it.
type StaleError struct {
	Err        error
	CapturedAt time.Time
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%v (showing cached data from %s)", e.Err, e.CapturedAt.Local().Format("2006-01-02 15:04:05"))
}

func (e *StaleError) Unwrap() error { return e.Err }

// IsStale reports whether err carries a cached fallback, returning when the
// cached snapshot was captured.
func IsStale(err error) (time.Time, bool) {
	var se *StaleError
	if errors.As(err, &se) {
		return se.CapturedAt, true
	}
	return time.Time{}, false
}
