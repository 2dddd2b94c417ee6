package repository

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

const customersTable = "customers"

var dialect = goqu.Dialect("postgres")

// likeEscaper makes a search term match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// customerColumns lists the selected columns in the order scanCustomer expects them.
var customerColumns = []any{
	goqu.C("id"),
	goqu.COALESCE(goqu.C("customer_number"), "").As("customer_number"),
	goqu.C("name"),
	goqu.COALESCE(goqu.C("contact_person"), "").As("contact_person"),
	goqu.COALESCE(goqu.C("street"), "").As("street"),
	goqu.COALESCE(goqu.C("postal_code"), "").As("postal_code"),
	goqu.COALESCE(goqu.C("city"), "").As("city"),
	goqu.COALESCE(goqu.C("phone"), "").As("phone"),
	goqu.COALESCE(goqu.C("comment"), "").As("comment"),
	goqu.COALESCE(goqu.C("color_code"), "").As("color_code"),
	goqu.COALESCE(goqu.C("industry"), "").As("industry"),
	goqu.COALESCE(goqu.C("employees"), 0).As("employees"),
	goqu.COALESCE(goqu.C("contact_date"), "").As("contact_date"),
	goqu.COALESCE(goqu.C("contact_agent"), "").As("contact_agent"),
	goqu.COALESCE(goqu.C("latitude"), 0).As("latitude"),
	goqu.COALESCE(goqu.C("longitude"), 0).As("longitude"),
	goqu.COALESCE(goqu.C("geocode_google"), "").As("geocode_google"),
	goqu.COALESCE(goqu.C("geocode_maps_co"), "").As("geocode_maps_co"),
}

// FetchCustomers returns one page of customers matching the filters in state.
// Totals are counted over the whole result so callers can page through it.
func (r *Repository) FetchCustomers(ctx context.Context, state search.State) (*models.Page, error) {
	where := customerFilter(state)
	results := state.Results()
	page := state.Page()

	countSQL, countArgs, err := dialect.From(customersTable).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(where...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err = r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	listSQL, listArgs, err := dialect.From(customersTable).Prepared(true).
		Select(customerColumns...).
		Where(where...).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		Limit(uint(results)).
		Offset(uint((page - 1) * results)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build customer query: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		customer, errScan := scanCustomer(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", errScan)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Fetched customer page", "page", page, "results", results, "total", total)

	return &models.Page{
		Total:     int(total),
		Current:   page,
		Pages:     pageCount(int(total), results),
		Customers: customers,
	}, nil
}

func customerFilter(state search.State) []exp.Expression {
	var where []exp.Expression

	if area := state.Get(search.KeyArea); area != "" {
		where = append(where, goqu.C("area").Eq(area))
	}
	if color := state.Get(search.KeyColor); color != "" && color != "null" {
		where = append(where, goqu.C("color_code").Eq(color))
	}
	if term := html.UnescapeString(state.Get(search.KeySearch)); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		where = append(where, goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("street").ILike(pattern),
			goqu.C("city").ILike(pattern),
			goqu.C("customer_number").ILike(pattern),
		))
	}

	return where
}

func scanCustomer(row pgx.Row) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID, &c.Number, &c.Name, &c.ContactPerson,
		&c.Street, &c.PostalCode, &c.City, &c.Phone,
		&c.Comment, &c.ColorCode, &c.Industry, &c.Employees,
		&c.ContactDate, &c.ContactAgent, &c.Latitude, &c.Longitude,
		&c.GeocodeGoogle, &c.GeocodeMapsCo,
	)

	return c, err
}

func pageCount(total, results int) int {
	if total == 0 || results < 1 {
		return 0
	}

	return (total + results - 1) / results
}

// SaveCoordinates writes a batch of resolved positions in one transaction.
func (r *Repository) SaveCoordinates(ctx context.Context, coords []models.StoredCoordinates) error {
	if len(coords) == 0 {
		return nil
	}

	query := `
		UPDATE customers
		SET
			latitude = $1,
			longitude = $2
		WHERE
			id = $3;
	`

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		for _, c := range coords {
			if _, err := tx.Exec(ctx, query, c.Latitude, c.Longitude, c.CustomerID); err != nil {
				return fmt.Errorf("failed to update customer coordinates: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.InfoContext(ctx, "Saved customer coordinates", "count", len(coords))

	return nil
}

// SaveUnresolved flags customers whose address could not be geocoded, so later
// loads skip the remote lookup.
func (r *Repository) SaveUnresolved(ctx context.Context, unresolved []models.UnresolvedAddress) error {
	if len(unresolved) == 0 {
		return nil
	}

	query := `
		UPDATE customers
		SET geocode_maps_co = $1
		WHERE id = $2;
	`

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		for _, u := range unresolved {
			if _, err := tx.Exec(ctx, query, models.Unfound, u.CustomerID); err != nil {
				return fmt.Errorf("failed to mark address as unfound: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.InfoContext(ctx, "Saved unresolved addresses", "count", len(unresolved))

	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if errRollback := tx.Rollback(ctx); errRollback != nil {
			r.log.ErrorContext(ctx, "Failed to roll back transaction", "error", errRollback)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
