package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

const (
	tableOffers       = "offers"
	tableUniversities = "universities"
)

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableOffers: {
			Name: tableOffers,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &uuidIndex[*offer.Offer]{id: func(obj *offer.Offer) uuid.UUID { return obj.ID }},
				},
				"university": {
					Name:         "university",
					Unique:       false,
					AllowMissing: true,
					Indexer:      &uuidIndex[*offer.Offer]{id: func(obj *offer.Offer) uuid.UUID { return obj.UniversityID }},
				},
			},
		},
		tableUniversities: {
			Name: tableUniversities,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &uuidIndex[*university.University]{id: func(obj *university.University) uuid.UUID { return obj.ID }},
				},
			},
		},
	},
}

// Driver represents the in-memory storage driver built using hashicorp/go-memdb
type Driver struct {
	db           *memdb.MemDB
	offers       *OfferRepository
	universities *UniversityRepository
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty in-memory storage driver.
// Use Initialize to create the database and the repository implementations.
func New() *Driver {
	return &Driver{}
}

// Initialize creates the in-memory database and the repository implementations
func (driver *Driver) Initialize(_ context.Context) error {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return err
	}
	driver.db = db
	driver.offers = &OfferRepository{db: db}
	driver.universities = &UniversityRepository{db: db}
	return nil
}

// Offers provides the in-memory offer repository implementation
func (driver *Driver) Offers() offer.Repository {
	return driver.offers
}

// Universities provides the in-memory university repository implementation
func (driver *Driver) Universities() university.Repository {
	return driver.universities
}

// Close discards the repository implementations together with all stored data
func (driver *Driver) Close() {
	driver.offers = nil
	driver.universities = nil
	driver.db = nil
}
