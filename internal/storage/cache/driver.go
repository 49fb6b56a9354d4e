package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/hashmap"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
	"github.com/rs/zerolog/log"
)

const (
	objectLifetime  = 5 * time.Minute
	cleanupInterval = 10 * time.Second
)

// Driver represents a storage driver implementation that wraps another one in order to implement in-memory caching.
// Single objects are cached by their ID; writes additionally drop the cached listing results of the affected resource.
type Driver struct {
	underlying   storage.Driver
	queries      *querycache.Client
	offers       *OfferRepository
	universities *UniversityRepository
}

var _ storage.Driver = (*Driver)(nil)

// New returns a new caching storage driver; queries may be nil if no listing results are cached
func New(underlying storage.Driver, queries *querycache.Client) *Driver {
	return &Driver{
		underlying: underlying,
		queries:    queries,
	}
}

// Initialize initializes the caching repositories
func (driver *Driver) Initialize(_ context.Context) error {
	offerCache := hashmap.NewExpiring[uuid.UUID, *offer.Offer](objectLifetime)
	offerCache.ScheduleCleanupTask(cleanupInterval)
	driver.offers = &OfferRepository{
		repo:       driver.underlying.Offers(),
		cache:      offerCache,
		invalidate: driver.invalidate,
	}

	universityCache := hashmap.NewExpiring[uuid.UUID, *university.University](objectLifetime)
	universityCache.ScheduleCleanupTask(cleanupInterval)
	driver.universities = &UniversityRepository{
		repo:       driver.underlying.Universities(),
		cache:      universityCache,
		offers:     offerCache,
		invalidate: driver.invalidate,
	}

	return nil
}

// Offers provides the caching offer repository implementation
func (driver *Driver) Offers() offer.Repository {
	return driver.offers
}

// Universities provides the caching university repository implementation
func (driver *Driver) Universities() university.Repository {
	return driver.universities
}

// Close closes the caching repositories and disposes their instances
func (driver *Driver) Close() {
	driver.offers.cache.StopCleanupTask()
	driver.offers = nil
	driver.universities.cache.StopCleanupTask()
	driver.universities = nil
}

// invalidate drops the cached listing results of the given query keys
func (driver *Driver) invalidate(ctx context.Context, keys ...string) {
	if driver.queries == nil {
		return
	}
	for _, key := range keys {
		n, err := driver.queries.InvalidatePrefix(ctx, key+":")
		if err != nil {
			log.Warn().Err(err).Str("query_key", key).Msg("could not invalidate cached listing results")
			continue
		}
		log.Debug().Str("query_key", key).Int("amount", n).Msg("invalidated cached listing results")
	}
}
