// internal/domain/cart/registry.go
package cart

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
)

// Registry keeps one Store per session. Stores that see no use for the idle
// TTL are evicted and rebuilt from the server on the next request.
type Registry struct {
	api    API
	logger logrus.FieldLogger
	stores *ttlcache.Cache[string, *Store]
}

// NewRegistry creates a registry and starts its expiry loop
func NewRegistry(api API, idleTTL time.Duration, logger logrus.FieldLogger) *Registry {
	r := &Registry{
		api:    api,
		logger: logger,
		stores: ttlcache.New[string, *Store](ttlcache.WithTTL[string, *Store](idleTTL)),
	}

	r.stores.OnInsertion(func(_ context.Context, _ *ttlcache.Item[string, *Store]) {
		metrics.SetActiveSessions(r.Len())
	})
	r.stores.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Store]) {
		if reason == ttlcache.EvictionReasonExpired {
			r.logger.WithField("session", item.Key()).Debug("Cart session expired")
		}
		metrics.SetActiveSessions(r.Len())
	})

	go r.stores.Start()
	return r
}

// Get returns the session's store, creating an empty one on first use
func (r *Registry) Get(session string) *Store {
	if item := r.stores.Get(session); item != nil {
		return item.Value()
	}

	item, _ := r.stores.GetOrSet(session, NewStore(r.api, r.logger.WithField("session", session)))
	return item.Value()
}

// Lookup returns the session's store only if it exists
func (r *Registry) Lookup(session string) (*Store, bool) {
	item := r.stores.Get(session)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Drop forgets the session's store, e.g. on logout
func (r *Registry) Drop(session string) {
	r.stores.Delete(session)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.stores.Len()
}

// Stop halts the expiry loop
func (r *Registry) Stop() {
	r.stores.Stop()
}
