package source

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/ccmonitor/internal/logger"
	"github.com/theirongolddev/ccmonitor/internal/model"
	"github.com/theirongolddev/ccmonitor/internal/store"
)

// Cached stores every good snapshot from Inner and answers from the cache
// when Inner fails. A cache answer comes with a *StaleError wrapping the
// original failure.
type Cached struct {
	Inner  Source
	Cache  *store.Cache
	Origin string
	Log    *zap.Logger

	now func() time.Time
}

// NewCached wraps inner with cache. origin labels stored rows ("file", "http").
func NewCached(inner Source, cache *store.Cache, origin string, log *zap.Logger) *Cached {
	return &Cached{
		Inner:  inner,
		Cache:  cache,
		Origin: origin,
		Log:    logger.OrNop(log),
		now:    time.Now,
	}
}

// Snapshot reads through the cache.
func (c *Cached) Snapshot(ctx context.Context) (*model.UsageSnapshot, error) {
	s, err := c.Inner.Snapshot(ctx)
	return c.settle(s, err)
}

// Refresh refreshes through the cache.
func (c *Cached) Refresh(ctx context.Context) (*model.UsageSnapshot, error) {
	s, err := c.Inner.Refresh(ctx)
	return c.settle(s, err)
}

func (c *Cached) settle(s *model.UsageSnapshot, err error) (*model.UsageSnapshot, error) {
	log := logger.OrNop(c.Log)
	if err == nil {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		if saveErr := c.Cache.Save(s, c.Origin, now()); saveErr != nil {
			log.Warn("caching snapshot failed", zap.Error(saveErr))
		}
		return s, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	cached, cacheErr := c.Cache.LastGood()
	if cacheErr != nil {
		if !errors.Is(cacheErr, store.ErrEmpty) {
			log.Warn("reading cached snapshot failed", zap.Error(cacheErr))
		}
		return nil, err
	}
	log.Debug("serving cached snapshot",
		zap.Error(err),
		zap.Time("captured_at", cached.CapturedAt),
		zap.String("origin", cached.Origin),
	)
	return cached.Snapshot, &StaleError{Err: err, CapturedAt: cached.CapturedAt}
}
