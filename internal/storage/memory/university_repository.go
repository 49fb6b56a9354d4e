package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

// UniversityRepository implements the university.Repository interface using go-memdb
type UniversityRepository struct {
	db *memdb.MemDB
}

var _ university.Repository = (*UniversityRepository)(nil)

// GetByFilter retrieves one page of universities following a filter together with the total amount of matches
func (repo *UniversityRepository) GetByFilter(_ context.Context, filter *university.Filter) ([]*university.University, uint64, error) {
	txn := repo.db.Txn(false)
	iterator, err := txn.Get(tableUniversities, "id")
	if err != nil {
		return nil, 0, err
	}

	matches := []*university.University{}
	for raw := iterator.Next(); raw != nil; raw = iterator.Next() {
		obj := raw.(*university.University)
		if filter.Matches(obj) {
			matches = append(matches, obj)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		res := university.Compare(matches[i], matches[j], filter.SortBy)
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

// GetByID retrieves a university by its ID
func (repo *UniversityRepository) GetByID(_ context.Context, id uuid.UUID) (*university.University, error) {
	txn := repo.db.Txn(false)
	obj, err := txn.First(tableUniversities, "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*university.University), nil
}

// Create stores a new university
func (repo *UniversityRepository) Create(_ context.Context, obj *university.University) error {
	txn := repo.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableUniversities, obj); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Delete deletes a university by its ID together with all of its offers
func (repo *UniversityRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	txn := repo.db.Txn(true)
	defer txn.Abort()
	n, err := txn.DeleteAll(tableUniversities, "id", id)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := txn.DeleteAll(tableOffers, "university", id); err != nil {
		return false, err
	}
	txn.Commit()
	return true, nil
}
