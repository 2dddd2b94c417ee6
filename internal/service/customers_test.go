package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func onPage(n int) interface{} {
	return mock.MatchedBy(func(s search.State) bool {
		return s.Page() == n && s.Mode() == search.ModeMap
	})
}

func placed(id int) models.Customer {
	return models.Customer{ID: id, Name: "placed", Latitude: 47.07, Longitude: 15.43, Number: "1001"}
}

func unplaced(id int) models.Customer {
	return models.Customer{ID: id, Name: "unplaced", Street: "Lendplatz 3", PostalCode: "8020", City: "Graz"}
}

func newService(t *testing.T, queue service.Enqueuer, useGeocoding bool) (*service.CustomerService, *mocks.CustomerSource, *metrics.Metrics) {
	t.Helper()

	source := mocks.NewCustomerSource(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return service.NewCustomerService(logger, source, queue, useGeocoding, m), source, m
}

func TestLoadMap(t *testing.T) {
	t.Run("fetches every page and queues each unplaced customer once", func(t *testing.T) {
		queue := mocks.NewEnqueuer(t)
		svc, source, m := newService(t, queue, true)

		source.On("FetchCustomers", mock.Anything, onPage(1)).Return(&models.Page{
			Total: 3, Pages: 2, Current: 1,
			Customers: []models.Customer{placed(1), unplaced(2)},
		}, nil).Once()
		source.On("FetchCustomers", mock.Anything, onPage(2)).Return(&models.Page{
			Total: 99, Pages: 2, Current: 2,
			Customers: []models.Customer{unplaced(3)},
		}, nil).Once()

		var queued []int
		queue.On("EnqueueAll", mock.Anything).Return(func(cs []*models.Customer) int {
			for _, c := range cs {
				queued = append(queued, c.ID)
			}
			return len(cs)
		}).Twice()

		result, err := svc.LoadMap(t.Context(), search.Parse("mode=list&results=20"))

		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Fetched)
		assert.Equal(t, 2, result.Queued)
		assert.Equal(t, []int{2, 3}, queued)
		require.Len(t, result.Markers, 1)
		assert.Equal(t, 1, result.Markers[0].CustomerID)
		assert.Equal(t, models.CategoryBK, result.Markers[0].Category)
		assert.False(t, result.Truncated)
		assert.InDelta(t, 2, testutil.ToFloat64(m.PagesFetched.WithLabelValues(search.ModeMap)), 0)
	})

	t.Run("page size is raised to the map minimum", func(t *testing.T) {
		svc, source, _ := newService(t, nil, false)

		source.On("FetchCustomers", mock.Anything, mock.MatchedBy(func(s search.State) bool {
			return s.Results() == service.MapMinResults
		})).Return(&models.Page{Pages: 1, Customers: []models.Customer{unplaced(1)}}, nil).Once()

		result, err := svc.LoadMap(t.Context(), search.New())

		require.NoError(t, err)
		assert.Zero(t, result.Queued)
		assert.Empty(t, result.Markers)
	})

	t.Run("lookups disabled never queue", func(t *testing.T) {
		queue := mocks.NewEnqueuer(t)
		svc, source, _ := newService(t, queue, false)

		source.On("FetchCustomers", mock.Anything, onPage(1)).
			Return(&models.Page{Pages: 1, Customers: []models.Customer{unplaced(1), unplaced(2)}}, nil).Once()

		result, err := svc.LoadMap(t.Context(), search.New())

		require.NoError(t, err)
		assert.Zero(t, result.Queued)
		queue.AssertNotCalled(t, "EnqueueAll", mock.Anything)
	})

	t.Run("entry cap stops the load", func(t *testing.T) {
		svc, source, _ := newService(t, nil, false)

		source.On("FetchCustomers", mock.Anything, mock.Anything).
			Return(&models.Page{Total: 500000, Pages: 10, Customers: []models.Customer{placed(1)}}, nil).Once()

		result, err := svc.LoadMap(t.Context(), search.Parse("results=100000"))

		require.NoError(t, err)
		assert.Equal(t, 1, result.Fetched)
		assert.True(t, result.Truncated)
	})

	t.Run("empty result stops after the first page", func(t *testing.T) {
		svc, source, _ := newService(t, nil, false)

		source.On("FetchCustomers", mock.Anything, onPage(1)).Return(&models.Page{}, nil).Once()

		result, err := svc.LoadMap(t.Context(), search.New())

		require.NoError(t, err)
		assert.Zero(t, result.Total)
		assert.Equal(t, 1, result.Fetched)
	})

	t.Run("fetch error", func(t *testing.T) {
		svc, source, _ := newService(t, nil, false)

		source.On("FetchCustomers", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

		result, err := svc.LoadMap(t.Context(), search.New())

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, result)
	})
}

func TestListPage(t *testing.T) {
	t.Run("fetches one page in list mode", func(t *testing.T) {
		queue := mocks.NewEnqueuer(t)
		svc, source, _ := newService(t, queue, true)

		want := &models.Page{Total: 1, Pages: 1, Current: 1, Customers: []models.Customer{unplaced(1)}}
		source.On("FetchCustomers", mock.Anything, mock.MatchedBy(func(s search.State) bool {
			return s.Mode() == search.ModeList && s.Page() == 3 && s.Get(search.KeySearch) == "graz"
		})).Return(want, nil).Once()

		page, err := svc.ListPage(t.Context(), search.Parse("mode=map&curPage=3&search=graz"))

		require.NoError(t, err)
		assert.Same(t, want, page)
		queue.AssertNotCalled(t, "EnqueueAll", mock.Anything)
	})

	t.Run("page past the end is clamped", func(t *testing.T) {
		svc, source, m := newService(t, nil, false)

		source.On("FetchCustomers", mock.Anything, mock.MatchedBy(func(s search.State) bool {
			return s.Page() == 9
		})).Return(&models.Page{Total: 120, Pages: 3, Current: 9}, nil).Once()
		last := &models.Page{Total: 120, Pages: 3, Current: 3, Customers: []models.Customer{placed(1)}}
		source.On("FetchCustomers", mock.Anything, mock.MatchedBy(func(s search.State) bool {
			return s.Page() == 3
		})).Return(last, nil).Once()

		page, err := svc.ListPage(t.Context(), search.Parse("curPage=9"))

		require.NoError(t, err)
		assert.Same(t, last, page)
		assert.InDelta(t, 2, testutil.ToFloat64(m.PagesFetched.WithLabelValues(search.ModeList)), 0)
	})

	t.Run("fetch error", func(t *testing.T) {
		svc, source, _ := newService(t, nil, false)

		source.On("FetchCustomers", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

		_, err := svc.ListPage(t.Context(), search.New())

		require.ErrorIs(t, err, assert.AnError)
	})
}
