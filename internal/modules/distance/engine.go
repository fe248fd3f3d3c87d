// Package distance computes warehouse-to-destination travel distances with
// a TTL cache, an external provider and a Haversine fallback.
package distance

import (
	"context"
	"math"
	"time"

	"cs-store-backend/internal/models"
)

const earthRadiusKm = 6371.0

// EngineInterface is the distance contract used by fee quoting and order
// placement.
type EngineInterface interface {
	Distance(ctx context.Context, wh models.Warehouse, dest models.LatLng) (models.DistanceResult, error)
}

type engine struct {
	provider ProviderInterface
	cache    *Cache
	// deterministic forces Haversine-only behavior with no network so fee
	// computation is reproducible.
	deterministic bool
}

// NewEngine builds the engine. provider may be nil; deterministic mode and a
// nil provider both mean Haversine-only.
func NewEngine(provider ProviderInterface, cache *Cache, deterministic bool) EngineInterface {
	if cache == nil {
		cache = NewCache(time.Hour)
	}
	return &engine{provider: provider, cache: cache, deterministic: deterministic}
}

func (e *engine) Distance(ctx context.Context, wh models.Warehouse, dest models.LatLng) (models.DistanceResult, error) {
	if km, method, ok := e.cache.Get(wh.ID, dest); ok {
		return models.DistanceResult{Km: km, Method: method, Cached: true}, nil
	}

	km, method := e.compute(ctx, wh.Coords(), dest)
	e.cache.Put(wh.ID, dest, km, method)
	return models.DistanceResult{Km: km, Method: method}, nil
}

// compute tries the provider once plus one retry, then falls back. The
// caller only ever sees the method tag, never a provider failure.
func (e *engine) compute(ctx context.Context, origin, dest models.LatLng) (float64, string) {
	if !e.deterministic && e.provider != nil {
		for attempt := 0; attempt < 2; attempt++ {
			meters, err := e.provider.DistanceMeters(ctx, origin, dest)
			if err == nil && meters >= 0 {
				return round2(float64(meters) / 1000.0), models.DistanceMethodProvider
			}
			if ctx.Err() != nil {
				break
			}
		}
	}
	return Haversine(origin, dest), models.DistanceMethodHaversine
}

// Haversine is the great-circle distance in km, rounded to two decimals.
func Haversine(a, b models.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return round2(earthRadiusKm * c)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
