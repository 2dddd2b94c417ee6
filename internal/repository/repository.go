package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool used by the repository. pgxmock implements it in tests.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CustomerSource delivers the customer list one page at a time.
type CustomerSource interface {
	FetchCustomers(ctx context.Context, state search.State) (*models.Page, error)
}

// CoordinateStore persists geocoding outcomes in batches.
type CoordinateStore interface {
	SaveCoordinates(ctx context.Context, coords []models.StoredCoordinates) error
	SaveUnresolved(ctx context.Context, unresolved []models.UnresolvedAddress) error
}

// Interface combines reading customers and writing geocoding results.
type Interface interface {
	CustomerSource
	CoordinateStore
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
