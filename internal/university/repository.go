package university

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the university repository API
type Repository interface {
	// GetByFilter retrieves one page of universities following a filter together with the total amount of matches
	GetByFilter(ctx context.Context, filter *Filter) ([]*University, uint64, error)

	// GetByID retrieves a university by its ID; absent universities yield nil without an error
	GetByID(ctx context.Context, id uuid.UUID) (*University, error)

	// Create stores a new university
	Create(ctx context.Context, obj *University) error

	// Delete deletes a university by its ID and reports whether it existed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
