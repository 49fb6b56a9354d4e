package cache

import (
	"context"

	"github.com/google/uuid"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/hashmap"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

// UniversityRepository implements the university.Repository interface in order to implement caching
type UniversityRepository struct {
	repo       university.Repository
	cache      *hashmap.ExpiringMap[uuid.UUID, *university.University]
	offers     *hashmap.ExpiringMap[uuid.UUID, *offer.Offer]
	invalidate func(ctx context.Context, keys ...string)
}

var _ university.Repository = (*UniversityRepository)(nil)

// GetByFilter retrieves one page of universities following a filter and caches every retrieved university
func (repo *UniversityRepository) GetByFilter(ctx context.Context, filter *university.Filter) ([]*university.University, uint64, error) {
	universities, n, err := repo.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, obj := range universities {
		repo.cache.Set(obj.ID, obj)
	}
	return universities, n, nil
}

// GetByID retrieves a university by its ID
func (repo *UniversityRepository) GetByID(ctx context.Context, id uuid.UUID) (*university.University, error) {
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

// Create stores a new university
func (repo *UniversityRepository) Create(ctx context.Context, obj *university.University) error {
	if err := repo.repo.Create(ctx, obj); err != nil {
		return err
	}
	repo.cache.Set(obj.ID, obj)
	repo.invalidate(ctx, university.QueryKey)
	return nil
}

// Delete deletes a university by its ID; the offers of the university are dropped from the cache as well
func (repo *UniversityRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := repo.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	repo.cache.Unset(id)
	if deleted {
		for _, offerID := range repo.offers.Keys() {
			if obj, ok := repo.offers.Lookup(offerID); ok && obj.UniversityID == id {
				repo.offers.Unset(offerID)
			}
		}
		repo.invalidate(ctx, university.QueryKey, offer.QueryKey)
	}
	return deleted, nil
}
