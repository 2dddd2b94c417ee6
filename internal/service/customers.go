// Package service loads customer pages for the list and map views and feeds
// customers without coordinates to the geocoding queue.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/search"
)

const (
	// MapMinResults is the smallest page size used while loading the map.
	MapMinResults = 1000
	// MapMaxEntries caps the number of customers loaded onto the map.
	MapMaxEntries = 100000
)

// Enqueuer accepts customers for a background lookup.
type Enqueuer interface {
	EnqueueAll(customers []*models.Customer) int
}

// Marker is a customer placed on the map.
type Marker struct {
	CustomerID int
	Name       string
	Address    string
	Latitude   float64
	Longitude  float64
	Color      string
	Category   models.Category
}

// MapResult is everything the map view needs after a full load.
type MapResult struct {
	Total     int      // Total matching customers, taken from the first page.
	Pages     int      // Pages reported by the first page.
	Fetched   int      // Pages actually fetched.
	Markers   []Marker // Customers that already have coordinates.
	Queued    int      // Customers handed to the geocoding queue.
	Truncated bool     // Set when the entry cap stopped the load early.
}

// CustomerService serves customer pages from a source.
type CustomerService struct {
	log          *slog.Logger
	source       repository.CustomerSource
	queue        Enqueuer
	useGeocoding bool
	metrics      *metrics.Metrics
}

// NewCustomerService creates a service. queue may be nil when useGeocoding is false.
func NewCustomerService(
	log *slog.Logger,
	source repository.CustomerSource,
	queue Enqueuer,
	useGeocoding bool,
	metrics *metrics.Metrics,
) *CustomerService {
	return &CustomerService{
		log:          log,
		source:       source,
		queue:        queue,
		useGeocoding: useGeocoding && queue != nil,
		metrics:      metrics,
	}
}

// ListPage fetches the single page the state points at. A page past the end of
// the result is clamped to the last page.
func (cs *CustomerService) ListPage(ctx context.Context, state search.State) (*models.Page, error) {
	state = state.Clone()
	state.Set(search.KeyMode, search.ModeList)

	page, err := cs.fetchList(ctx, state)
	if err != nil {
		return nil, err
	}
	if page.Pages > 0 && state.Page() > page.Pages {
		state.JumpTo(state.Page(), page.Pages)
		return cs.fetchList(ctx, state)
	}

	return page, nil
}

func (cs *CustomerService) fetchList(ctx context.Context, state search.State) (*models.Page, error) {
	page, err := cs.source.FetchCustomers(ctx, state)
	if err != nil {
		cs.log.ErrorContext(ctx, "Failed to load customer list", "query", state.Encode(), "error", err)
		return nil, fmt.Errorf("failed to load customer list: %w", err)
	}
	cs.metrics.PagesFetched.WithLabelValues(search.ModeList).Inc()

	return page, nil
}

// LoadMap fetches every page of the result, at least MapMinResults customers at a
// time and at most MapMaxEntries in total. Customers with coordinates become
// markers; the others are queued page by page when lookups are enabled.
func (cs *CustomerService) LoadMap(ctx context.Context, state search.State) (*MapResult, error) {
	state = state.Clone()
	state.Set(search.KeyMode, search.ModeMap)
	results := max(state.Results(), MapMinResults)
	state.SetResults(results)
	maxPages := max(MapMaxEntries/results, 1)

	result := &MapResult{}
	for pageNo := 1; ; pageNo++ {
		state.SetPage(pageNo)

		page, err := cs.source.FetchCustomers(ctx, state)
		if err != nil {
			cs.log.ErrorContext(ctx, "Failed to load map page", "page", pageNo, "error", err)
			return nil, fmt.Errorf("failed to load map page %d: %w", pageNo, err)
		}
		cs.metrics.PagesFetched.WithLabelValues(search.ModeMap).Inc()
		result.Fetched++

		if pageNo == 1 {
			result.Total = page.Total
			result.Pages = page.Pages
		}
		result.Queued += cs.collect(page, result)

		if page.Empty() || pageNo >= page.Pages {
			break
		}
		if pageNo >= maxPages {
			result.Truncated = true
			cs.log.WarnContext(ctx, "Map entry cap reached", "pages", page.Pages, "limit", MapMaxEntries)
			break
		}
	}

	cs.log.InfoContext(ctx, "Map loaded",
		"total", result.Total, "markers", len(result.Markers), "queued", result.Queued, "pages", result.Fetched)

	return result, nil
}

// collect adds markers for placed customers and queues the rest.
func (cs *CustomerService) collect(page *models.Page, result *MapResult) int {
	var pending []*models.Customer
	for i := range page.Customers {
		customer := &page.Customers[i]
		if customer.HasCoordinates() {
			result.Markers = append(result.Markers, Marker{
				CustomerID: customer.ID,
				Name:       customer.Name,
				Address:    customer.Address(),
				Latitude:   customer.Latitude,
				Longitude:  customer.Longitude,
				Color:      customer.RowColor(),
				Category:   customer.Category(),
			})
			continue
		}
		if cs.useGeocoding {
			pending = append(pending, customer)
		}
	}

	if len(pending) == 0 {
		return 0
	}

	return cs.queue.EnqueueAll(pending)
}
