package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver represents the PostgreSQL storage driver implementation
type Driver struct {
	dsn          string
	db           *pgxpool.Pool
	offers       *OfferRepository
	universities *UniversityRepository
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty PostgreSQL storage driver.
// Use Initialize to open the database connection and initialize the repository implementations.
func New(dsn string) *Driver {
	return &Driver{
		dsn: dsn,
	}
}

// Initialize opens the database connection, migrates the database and initializes the repository implementations
func (driver *Driver) Initialize(ctx context.Context) error {
	// Perform SQL migrations
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, driver.dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	// Initialize the database connection pool
	pool, err := pgxpool.Connect(ctx, driver.dsn)
	if err != nil {
		return err
	}
	driver.db = pool

	driver.offers = &OfferRepository{db: pool}
	driver.universities = &UniversityRepository{db: pool}
	return nil
}

// Offers provides the PostgreSQL offer repository implementation
func (driver *Driver) Offers() offer.Repository {
	return driver.offers
}

// Universities provides the PostgreSQL university repository implementation
func (driver *Driver) Universities() university.Repository {
	return driver.universities
}

// Close discards the repository implementations and closes the database connection
func (driver *Driver) Close() {
	driver.offers = nil
	driver.universities = nil

	driver.db.Close()
	driver.db = nil
}
