package repository

import (
	"context"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/cache"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/metrics"
)

// BarcodeCache keeps recently looked-up products in Redis keyed by
// barcode. A nil cache is valid and caches nothing. Cache failures are
// logged and otherwise ignored.
type BarcodeCache struct {
	client  *cache.Client
	ttl     time.Duration
	metrics *metrics.InventoryMetrics
	logger  *logger.Logger
}

// NewBarcodeCache creates a barcode cache. It returns nil when client is nil.
func NewBarcodeCache(client *cache.Client, ttl time.Duration, m *metrics.InventoryMetrics, log *logger.Logger) *BarcodeCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &BarcodeCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  log,
	}
}

func (c *BarcodeCache) key(barcode string) string {
	return c.client.Key("product", "barcode", barcode)
}

// Get returns the cached product for barcode
func (c *BarcodeCache) Get(ctx context.Context, barcode string) (*domain.Product, bool) {
	if c == nil {
		return nil, false
	}

	var p domain.Product
	found, err := c.client.GetJSON(ctx, c.key(barcode), &p)
	if err != nil {
		c.logger.Warn().Err(err).Str("barcode", barcode).Msg("barcode cache read failed")
		return nil, false
	}
	c.metrics.IncCacheLookup(found)
	if !found {
		return nil, false
	}
	return &p, true
}

// Set caches p under its barcode
func (c *BarcodeCache) Set(ctx context.Context, p *domain.Product) {
	if c == nil || p == nil {
		return
	}
	if err := c.client.SetJSON(ctx, c.key(p.Barcode), p, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("barcode", p.Barcode).Msg("barcode cache write failed")
	}
}

// Invalidate removes the entries for barcodes
func (c *BarcodeCache) Invalidate(ctx context.Context, barcodes ...string) {
	if c == nil || len(barcodes) == 0 {
		return
	}
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		if b != "" {
			keys = append(keys, c.key(b))
		}
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		c.logger.Warn().Err(err).Strs("barcodes", barcodes).Msg("barcode cache invalidation failed")
	}
}
