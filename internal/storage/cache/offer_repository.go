package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/hashmap"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
)

// OfferRepository implements the offer.Repository interface in order to implement caching
type OfferRepository struct {
	repo       offer.Repository
	cache      *hashmap.ExpiringMap[uuid.UUID, *offer.Offer]
	invalidate func(ctx context.Context, keys ...string)
}

var _ offer.Repository = (*OfferRepository)(nil)

// GetByFilter retrieves one page of offers following a filter and caches every retrieved offer
func (repo *OfferRepository) GetByFilter(ctx context.Context, filter *offer.Filter) ([]*offer.Offer, uint64, error) {
	offers, n, err := repo.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, obj := range offers {
		repo.cache.Set(obj.ID, obj)
	}
	return offers, n, nil
}

// GetByID retrieves an offer by its ID
func (repo *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	cached, ok := repo.cache.Lookup(id)
	if ok {
		return cached, nil
	}
	obj, err := repo.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj != nil {
		repo.cache.Set(obj.ID, obj)
	}
	return obj, nil
}

// Create stores a new offer
func (repo *OfferRepository) Create(ctx context.Context, obj *offer.Offer) error {
	if err := repo.repo.Create(ctx, obj); err != nil {
		return err
	}
	repo.cache.Set(obj.ID, obj)
	repo.invalidate(ctx, offer.QueryKey)
	return nil
}

// Delete deletes an offer by its ID
func (repo *OfferRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := repo.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	repo.cache.Unset(id)
	if deleted {
		repo.invalidate(ctx, offer.QueryKey)
	}
	return deleted, nil
}
