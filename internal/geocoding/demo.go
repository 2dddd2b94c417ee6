package geocoding

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// BoundingBox is a rectangular area in degrees.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Austria roughly covers the country; demo installations scatter customers inside it.
var Austria = BoundingBox{MinLat: 46.372276, MaxLat: 49.02053, MinLon: 13.072399, MaxLon: 17.160686}

// DemoProvider returns random positions inside a bounding box instead of calling a
// remote API. It keeps demo installations free of real lookups.
type DemoProvider struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	area BoundingBox
	log  *slog.Logger
}

// NewDemoProvider creates a demo provider drawing from src.
func NewDemoProvider(area BoundingBox, src rand.Source, log *slog.Logger) *DemoProvider {
	return &DemoProvider{rnd: rand.New(src), area: area, log: log}
}

// Geocode ignores the address and returns a point inside the area, rounded to six decimals.
func (dp *DemoProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	dp.mu.Lock()
	lat := dp.area.MinLat + dp.rnd.Float64()*(dp.area.MaxLat-dp.area.MinLat)
	lon := dp.area.MinLon + dp.rnd.Float64()*(dp.area.MaxLon-dp.area.MinLon)
	dp.mu.Unlock()

	dp.log.DebugContext(ctx, "Demo coordinates generated", "address", address)

	return &models.Coordinates{Latitude: round6(lat), Longitude: round6(lon)}, nil
}

func round6(v float64) float64 {
	const scale = 1e6
	return math.Round(v*scale) / scale
}
