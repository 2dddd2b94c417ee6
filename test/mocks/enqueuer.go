package mocks

import (
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/stretchr/testify/mock"
)

// Enqueuer is a mock type for the service.Enqueuer type.
type Enqueuer struct {
	mock.Mock
}

// EnqueueAll provides a mock function with given fields: customers.
func (_m *Enqueuer) EnqueueAll(customers []*models.Customer) int {
	ret := _m.Called(customers)

	if len(ret) == 0 {
		panic("no return value specified for EnqueueAll")
	}

	if rf, ok := ret.Get(0).(func([]*models.Customer) int); ok {
		return rf(customers)
	}

	return ret.Int(0)
}

// NewEnqueuer creates a new instance of Enqueuer. It also registers a testing interface on the mock
// and a cleanup function to assert the mocks expectations.
func NewEnqueuer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Enqueuer {
	m := &Enqueuer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
