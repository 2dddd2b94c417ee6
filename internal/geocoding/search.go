package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"golang.org/x/time/rate"
)

const (
	// MapsCoBaseURL is the search endpoint of geocode.maps.co.
	MapsCoBaseURL = "https://geocode.maps.co/search"
	// NominatimBaseURL is the public OpenStreetMap Nominatim search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

	userAgent   = "Meridian-Customer-Geocoder/1.0 (https://github.com/UnknownOlympus/meridian)"
	httpTimeout = 10 * time.Second
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrInvalidCoords is returned when a result carries coordinates that are not numbers.
var ErrInvalidCoords = errors.New("provider returned invalid coordinates")

// SearchProvider talks to Nominatim-compatible search APIs. geocode.maps.co serves the
// same response format behind an API key, so both providers share this client.
type SearchProvider struct {
	name    string        // name is used in logs and error messages
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL of the search endpoint
	keys    *KeyRing      // keys rotated per request, nil for keyless endpoints
	limiter *rate.Limiter // limiter is nil when the caller throttles on its own
	log     *slog.Logger  // Logger for logging operations
}

// searchResult represents one entry of the JSON result list.
type searchResult struct {
	Lat string `json:"lat"` // Latitude as string
	Lon string `json:"lon"` // Longitude as string
}

// NewMapsCoProvider creates a geocode.maps.co provider rotating through keys.
func NewMapsCoProvider(keys *KeyRing, log *slog.Logger) *SearchProvider {
	return NewMapsCoProviderWithClient(&http.Client{Timeout: httpTimeout}, keys, log)
}

// NewMapsCoProviderWithClient allows injecting a custom HTTP client.
func NewMapsCoProviderWithClient(client HTTPClient, keys *KeyRing, log *slog.Logger) *SearchProvider {
	return &SearchProvider{
		name:    "maps.co",
		client:  client,
		baseURL: MapsCoBaseURL,
		keys:    keys,
		log:     log,
	}
}

// NewNominatimProvider creates a provider for the public Nominatim API.
// Nominatim allows one request per second for fair use, so requests are rate limited.
func NewNominatimProvider(log *slog.Logger) *SearchProvider {
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: httpTimeout},
		rate.NewLimiter(rate.Every(time.Second), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *SearchProvider {
	return &SearchProvider{
		name:    "nominatim",
		client:  client,
		baseURL: NominatimBaseURL,
		limiter: limiter,
		log:     log,
	}
}

// Geocode converts an address to geographic coordinates using the top search result.
func (sp *SearchProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if sp.limiter != nil {
		if err := sp.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	sp.log.DebugContext(ctx, "Geocoding address", "provider", sp.name, "address", address)

	reqURL, err := url.Parse(sp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	if sp.keys != nil {
		query.Set("api_key", sp.keys.Next())
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Nominatim usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := sp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		sp.log.ErrorContext(ctx, "Geocoding API error", "provider", sp.name, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%s API returned status %d: %s", sp.name, resp.StatusCode, string(body))
	}

	var results []searchResult
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", sp.name, err)
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrInvalidCoords, results[0].Lon)
	}

	sp.log.DebugContext(ctx, "Geocoding found result", "provider", sp.name, "lat", lat, "lon", lon)

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
