package mocks

import (
	"context"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/stretchr/testify/mock"
)

// CoordinateStore is a mock type for the repository.CoordinateStore type.
type CoordinateStore struct {
	mock.Mock
}

// SaveCoordinates provides a mock function with given fields: ctx, coords.
func (_m *CoordinateStore) SaveCoordinates(ctx context.Context, coords []models.StoredCoordinates) error {
	ret := _m.Called(ctx, coords)

	if len(ret) == 0 {
		panic("no return value specified for SaveCoordinates")
	}

	return ret.Error(0)
}

// SaveUnresolved provides a mock function with given fields: ctx, unresolved.
func (_m *CoordinateStore) SaveUnresolved(ctx context.Context, unresolved []models.UnresolvedAddress) error {
	ret := _m.Called(ctx, unresolved)

	if len(ret) == 0 {
		panic("no return value specified for SaveUnresolved")
	}

	return ret.Error(0)
}

// NewCoordinateStore creates a new instance of CoordinateStore. It also registers a testing interface on the mock
// and a cleanup function to assert the mocks expectations.
func NewCoordinateStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *CoordinateStore {
	m := &CoordinateStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// CustomerSource is a mock type for the repository.CustomerSource type.
type CustomerSource struct {
	mock.Mock
}

// FetchCustomers provides a mock function with given fields: ctx, state.
func (_m *CustomerSource) FetchCustomers(ctx context.Context, state search.State) (*models.Page, error) {
	ret := _m.Called(ctx, state)

	if len(ret) == 0 {
		panic("no return value specified for FetchCustomers")
	}

	var r0 *models.Page
	if rf, ok := ret.Get(0).(func(context.Context, search.State) *models.Page); ok {
		r0 = rf(ctx, state)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Page)
	}

	return r0, ret.Error(1)
}

// NewCustomerSource creates a new instance of CustomerSource. It also registers a testing interface on the mock
// and a cleanup function to assert the mocks expectations.
func NewCustomerSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *CustomerSource {
	m := &CustomerSource{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
