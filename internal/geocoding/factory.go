package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeMapsCo represents geocode.maps.co, the default provider.
	ProviderTypeMapsCo ProviderType = "mapsco"
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeDemo generates random coordinates for demo installations.
	ProviderTypeDemo ProviderType = "demo"
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKeys   []string     // APIKeys rotated round-robin (maps.co) or the first one used (Google)
	KeyStart  int          // KeyStart is the rotation index of the first request
	RateLimit int          // Rate limit for requests per second (used by Google provider)
	Region    string       // Region bias for Google, e.g. "at"
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
//
// Supported provider types:
// - "mapsco": geocode.maps.co (requires at least one API key)
// - "google": Google Maps Geocoding API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
// - "demo": random coordinates inside Austria, no remote calls
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeMapsCo:
		return newMapsCoProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return NewNominatimProvider(config.Logger), nil
	case ProviderTypeDemo:
		seed := uint64(time.Now().UnixNano())
		return NewDemoProvider(Austria, rand.NewPCG(seed, seed>>1), config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newMapsCoProvider(config ProviderConfig) (Provider, error) {
	ring, err := NewKeyRing(config.APIKeys, config.KeyStart)
	if err != nil {
		return nil, fmt.Errorf("maps.co provider: %w", err)
	}

	return NewMapsCoProvider(ring, config.Logger), nil
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if len(config.APIKeys) == 0 || config.APIKeys[0] == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKeys[0]),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Region, config.Logger), nil
}
