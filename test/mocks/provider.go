package mocks

import (
	"context"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/stretchr/testify/mock"
)

// Provider is a mock type for the geocoding.Provider type.
type Provider struct {
	mock.Mock
}

// Geocode provides a mock function with given fields: ctx, address.
func (_m *Provider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	ret := _m.Called(ctx, address)

	if len(ret) == 0 {
		panic("no return value specified for Geocode")
	}

	var r0 *models.Coordinates
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*models.Coordinates, error)); ok {
		return rf(ctx, address)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Coordinates)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// NewProvider creates a new instance of Provider. It also registers a testing interface on the mock
// and a cleanup function to assert the mocks expectations.
func NewProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *Provider {
	m := &Provider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
