package sheet

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/incident-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Extractor is the shape shared by Client and CachedSource.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// CachedSource serves the last successful fetch until it is older than ttl.
// Failures are never cached so the next call retries immediately.
type CachedSource struct {
	inner Extractor
	ttl   time.Duration
	clock clockwork.Clock

	mu        sync.Mutex
	records   []domain.RawRecord
	fetchedAt time.Time
	valid     bool
}

// NewCachedSource wraps inner with a TTL cache. A nil clock uses real time;
// a ttl of zero disables caching.
func NewCachedSource(inner Extractor, ttl time.Duration, clock clockwork.Clock) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{inner: inner, ttl: ttl, clock: clock}
}

// Extract serves the cached records while they are younger than the TTL and
// reads through to the wrapped source otherwise.
func (c *CachedSource) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.clock.Since(c.fetchedAt) < c.ttl {
		return c.records, nil
	}

	records, err := c.inner.Extract(ctx)
	if err != nil {
		return nil, err
	}

	c.records = records
	c.fetchedAt = c.clock.Now()
	c.valid = true
	return records, nil
}

// Invalidate drops the cached feed so the next Extract fetches.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.records = nil
}
