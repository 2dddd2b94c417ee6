package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
//
// Implementations return ErrNotFound when the provider answered but had no match;
// every other error means the lookup itself failed.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// ErrNotFound is returned when the provider responds with an empty result list.
var ErrNotFound = errors.New("address not found")
