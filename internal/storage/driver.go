package storage

import (
	"context"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

// Driver represents a storage driver
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection)
	Initialize(ctx context.Context) error

	// Offers provides an offer repository implementation
	Offers() offer.Repository

	// Universities provides a university repository implementation
	Universities() university.Repository

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}
