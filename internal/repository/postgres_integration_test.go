//go:build integration

package repository_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const schema = `
	CREATE TABLE customers (
		id              SERIAL PRIMARY KEY,
		customer_number TEXT,
		name            TEXT NOT NULL,
		contact_person  TEXT,
		street          TEXT,
		postal_code     TEXT,
		city            TEXT,
		phone           TEXT,
		comment         TEXT,
		color_code      TEXT,
		industry        TEXT,
		employees       INTEGER,
		contact_date    TEXT,
		contact_agent   TEXT,
		latitude        DOUBLE PRECISION,
		longitude       DOUBLE PRECISION,
		geocode_google  TEXT,
		geocode_maps_co TEXT,
		area            TEXT
	);
	INSERT INTO customers (customer_number, name, street, postal_code, city, area) VALUES
		('1001', 'Alpha GmbH', 'Lendplatz 3', '8020', 'Graz', '1'),
		('0', 'Beta KG', 'Hauptplatz 1', '8010', 'Graz', '1'),
		(NULL, 'Gamma OG', 'Ring 5', '1010', 'Wien', '2');
`

func TestRepository_Postgres(t *testing.T) {
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("meridian"),
		postgres.WithUsername("meridian"),
		postgres.WithPassword("meridian"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := repository.Connect(dsn, 10*time.Second)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	repo := repository.NewRepository(pool, slog.Default())

	page, err := repo.FetchCustomers(ctx, search.Parse("gebiet=1&results=1"))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "Alpha GmbH", page.Customers[0].Name)
	assert.True(t, page.Customers[0].NeedsGeocoding())

	first := page.Customers[0].ID
	require.NoError(t, repo.SaveCoordinates(ctx, []models.StoredCoordinates{
		{Latitude: 47.07, Longitude: 15.43, CustomerID: first},
	}))

	page, err = repo.FetchCustomers(ctx, search.Parse("search=gamma"))
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, models.CategoryNK, page.Customers[0].Category())
	require.NoError(t, repo.SaveUnresolved(ctx, []models.UnresolvedAddress{{CustomerID: page.Customers[0].ID}}))

	page, err = repo.FetchCustomers(ctx, search.New())
	require.NoError(t, err)
	require.Len(t, page.Customers, 3)
	assert.InEpsilon(t, 47.07, page.Customers[0].Latitude, 0.0001)
	assert.True(t, page.Customers[2].Unresolvable())
}
