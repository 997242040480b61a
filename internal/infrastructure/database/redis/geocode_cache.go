// internal/infrastructure/database/redis/geocode_cache.go
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/geo"
)

const geocodeKeyPrefix = "geocode:osm:"

// GeocodeCache remembers Nominatim answers so repeated addresses do not
// spend the public service's rate budget.
type GeocodeCache struct {
	client *Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewGeocodeCache creates a cache whose entries live for ttl
func NewGeocodeCache(client *Client, ttl time.Duration, logger logrus.FieldLogger) *GeocodeCache {
	return &GeocodeCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached answer for a sanitized query
func (g *GeocodeCache) Get(ctx context.Context, query string) (geo.CachedResult, bool) {
	var result geo.CachedResult
	err := g.client.GetJSON(ctx, geocodeKeyPrefix+query, &result)
	if errors.Is(err, redis.Nil) {
		return geo.CachedResult{}, false
	}
	if err != nil {
		g.logger.WithError(err).WithField("query", query).Warn("Geocode cache read failed")
		return geo.CachedResult{}, false
	}
	return result, true
}

// Set stores the answer for a sanitized query. Failures only cost a cache miss.
func (g *GeocodeCache) Set(ctx context.Context, query string, result geo.CachedResult) {
	if err := g.client.SetJSON(ctx, geocodeKeyPrefix+query, result, g.ttl); err != nil {
		g.logger.WithError(err).WithField("query", query).Warn("Geocode cache write failed")
	}
}
