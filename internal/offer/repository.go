package offer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the offer repository API
type Repository interface {
	// GetByFilter retrieves one page of offers following a filter together with the total amount of matching offers
	GetByFilter(ctx context.Context, filter *Filter) ([]*Offer, uint64, error)

	// GetByID retrieves an offer by its ID; absent offers yield nil without an error
	GetByID(ctx context.Context, id uuid.UUID) (*Offer, error)

	// Create stores a new offer
	Create(ctx context.Context, obj *Offer) error

	// Delete deletes an offer by its ID and reports whether it existed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
