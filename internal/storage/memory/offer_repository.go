package memory

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
)

// ErrUnknownUniversity is returned when an offer references a university that does not exist
var ErrUnknownUniversity = errors.New("the referenced university does not exist")

// OfferRepository implements the offer.Repository interface using go-memdb
type OfferRepository struct {
	db *memdb.MemDB
}

var _ offer.Repository = (*OfferRepository)(nil)

// GetByFilter retrieves one page of offers following a filter together with the total amount of matching offers
func (repo *OfferRepository) GetByFilter(_ context.Context, filter *offer.Filter) ([]*offer.Offer, uint64, error) {
	txn := repo.db.Txn(false)

	var (
		iterator memdb.ResultIterator
		err      error
	)
	if filter.UniversityID != nil {
		iterator, err = txn.Get(tableOffers, "university", *filter.UniversityID)
	} else {
		iterator, err = txn.Get(tableOffers, "id")
	}
	if err != nil {
		return nil, 0, err
	}

	matches := []*offer.Offer{}
	for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
		obj := raw.(*offer.Offer)
		if filter.Matches(obj) {
			matches = append(matches, obj)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		res := offer.Compare(matches[i], matches[j], filter.SortBy)
		if filter.SortOrder == listing.Desc {
			res = -res
		}
		if res == 0 {
			return bytes.Compare(matches[i].ID[:], matches[j].ID[:]) < 0
		}
		return res < 0
	})

	return paginate(matches, filter.Offset, filter.Limit), uint64(len(matches)), nil
}

// GetByID retrieves an offer by its ID
func (repo *OfferRepository) GetByID(_ context.Context, id uuid.UUID) (*offer.Offer, error) {
	txn := repo.db.Txn(false)
	obj, err := txn.First(tableOffers, "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*offer.Offer), nil
}

// Create stores a new offer; the referenced university has to exist
func (repo *OfferRepository) Create(_ context.Context, obj *offer.Offer) error {
	txn := repo.db.Txn(true)
	defer txn.Abort()

	owner, err := txn.First(tableUniversities, "id", obj.UniversityID)
	if err != nil {
		return err
	}
	if owner == nil {
		return ErrUnknownUniversity
	}
	if err := txn.Insert(tableOffers, obj); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Delete deletes an offer by its ID
func (repo *OfferRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	txn := repo.db.Txn(true)
	defer txn.Abort()
	n, err := txn.DeleteAll(tableOffers, "id", id)
	if err != nil {
		return false, err
	}
	txn.Commit()
	return n > 0, nil
}
