package app

import (
	"database/sql"
	"errors"
	"fmt"

	catalogDomain "github.com/felixgeelhaar/reelgate/internal/catalog/domain"
	catalogPersistence "github.com/felixgeelhaar/reelgate/internal/catalog/infrastructure/persistence"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	entitlementPersistence "github.com/felixgeelhaar/reelgate/internal/entitlement/infrastructure/persistence"
	quotaDomain "github.com/felixgeelhaar/reelgate/internal/quota/domain"
	quotaPersistence "github.com/felixgeelhaar/reelgate/internal/quota/infrastructure/persistence"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	driver database.Driver
	pool   *pgxpool.Pool
	db     *sql.DB
}

// NewPostgresRepositoryFactory creates a factory backed by a pgx pool.
func NewPostgresRepositoryFactory(pool *pgxpool.Pool) *RepositoryFactory {
	return &RepositoryFactory{driver: database.DriverPostgres, pool: pool}
}

// NewSQLiteRepositoryFactory creates a factory backed by a SQLite handle.
func NewSQLiteRepositoryFactory(db *sql.DB) *RepositoryFactory {
	return &RepositoryFactory{driver: database.DriverSQLite, db: db}
}

// EntitlementRepository creates an entitlement repository for the configured driver.
func (f *RepositoryFactory) EntitlementRepository() (entitlementDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		if f.pool == nil {
			return nil, errNoPool
		}
		return entitlementPersistence.NewPostgresEntitlementRepository(f.pool), nil

	case database.DriverSQLite:
		if f.db == nil {
			return nil, errNoDB
		}
		return entitlementPersistence.NewSQLiteEntitlementRepository(f.db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// CatalogRepository creates a catalog repository for the configured driver.
func (f *RepositoryFactory) CatalogRepository() (catalogDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		if f.pool == nil {
			return nil, errNoPool
		}
		return catalogPersistence.NewPostgresCatalogRepository(f.pool), nil

	case database.DriverSQLite:
		if f.db == nil {
			return nil, errNoDB
		}
		return catalogPersistence.NewSQLiteCatalogRepository(f.db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// QuotaTracker creates the database-backed quota tracker for the configured
// driver. The Redis tracker is chosen by the container when Redis is configured.
func (f *RepositoryFactory) QuotaTracker() (quotaDomain.Tracker, error) {
	switch f.driver {
	case database.DriverPostgres:
		if f.pool == nil {
			return nil, errNoPool
		}
		return quotaPersistence.NewPostgresTracker(f.pool), nil

	case database.DriverSQLite:
		if f.db == nil {
			return nil, errNoDB
		}
		return quotaPersistence.NewSQLiteTracker(f.db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

var (
	errNoPool = errors.New("postgres factory has no pool")
	errNoDB   = errors.New("sqlite factory has no database handle")
)
