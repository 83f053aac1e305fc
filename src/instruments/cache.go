// Package instruments owns the in-memory contract metadata cache. The cache
// is refreshed as a whole when its TTL lapses; there is no per-symbol
// invalidation.
package instruments

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/model"
)

// MetadataSource lists the tradeable products and their contract details.
type MetadataSource interface {
	ListActiveProducts(ctx context.Context) ([]string, error)
	GetProductDetail(ctx context.Context, symbol string) (model.Instrument, error)
}

// Cache maps symbol to instrument metadata, refreshing the whole mapping
// once it is older than the TTL. Reads during an in-flight refresh serve the
// stale value once rather than blocking; a failed refresh keeps the previous
// contents serving.
type Cache struct {
	src MetadataSource
	ttl time.Duration

	mu          sync.Mutex
	bySymbol    map[string]model.Instrument
	lastRefresh time.Time
	refreshing  bool

	now func() time.Time
}

func NewCache(src MetadataSource, ttl time.Duration) *Cache {
	return &Cache{
		src:      src,
		ttl:      ttl,
		bySymbol: make(map[string]model.Instrument),
		now:      time.Now,
	}
}

// Get returns the metadata for symbol, refreshing the cache first when it is
// stale. A symbol absent after a refresh gets the conservative fallback
// instrument so one missing or delisted symbol never blocks the others. Get
// never returns an error; degraded metadata is the failure mode.
func (c *Cache) Get(ctx context.Context, symbol string) model.Instrument {
	c.refreshIfStale(ctx)

	c.mu.Lock()
	inst, ok := c.bySymbol[symbol]
	c.mu.Unlock()

	if !ok {
		logger.WithField("symbol", symbol).
			Warn("Instrument missing from cache, serving fallback metadata")
		return model.FallbackInstrument(symbol)
	}
	return inst
}

// refreshIfStale is the single TTL checkpoint. Only one refresh runs at a
// time; a caller arriving while another refresh is in flight is served the
// stale mapping once.
func (c *Cache) refreshIfStale(ctx context.Context) {
	c.mu.Lock()
	stale := c.now().Sub(c.lastRefresh) > c.ttl
	if !stale || c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.mu.Unlock()

	fresh, err := c.fetchAll(ctx)

	c.mu.Lock()
	c.refreshing = false
	if err != nil {
		// Non-fatal: the previous contents keep serving.
		logger.WithError(err).Warn("Instrument cache refresh failed, serving stale metadata")
	} else {
		c.bySymbol = fresh
		c.lastRefresh = c.now()
	}
	c.mu.Unlock()
}

// Refresh forces a full refresh regardless of age.
func (c *Cache) Refresh(ctx context.Context) error {
	fresh, err := c.fetchAll(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.bySymbol = fresh
	c.lastRefresh = c.now()
	c.mu.Unlock()
	return nil
}

// fetchAll pulls the active product list and then the per-product detail.
// Individual detail failures are logged and skipped; a partial mapping is
// acceptable. A failed product list is a refresh failure.
func (c *Cache) fetchAll(ctx context.Context) (map[string]model.Instrument, error) {
	symbols, err := c.src.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	fresh := make(map[string]model.Instrument, len(symbols))
	for _, symbol := range symbols {
		inst, err := c.src.GetProductDetail(ctx, symbol)
		if err != nil {
			logger.WithError(err).
				WithField("symbol", symbol).
				Warn("Skipping instrument with unavailable detail")
			continue
		}
		fresh[inst.Symbol] = inst
	}
	return fresh, nil
}
