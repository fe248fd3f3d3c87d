package geo

import (
	"context"
	"fmt"
	"strings"

	"cs-store-backend/internal/models"
)

// Bounds is the country bounding box. Provider results outside it are
// treated as failures, never accepted.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b Bounds) Contains(p models.LatLng) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// ResolverInterface resolves coordinates at address-save time (SmartGeocode)
// and at order time (ResolveCoordinates).
type ResolverInterface interface {
	SmartGeocode(ctx context.Context, line, city, state, pincode string) (models.LatLng, models.CoordsSource, error)
	GeocodeByPincode(ctx context.Context, pincode string) (models.LatLng, error)
	ResolveCoordinates(ctx context.Context, addr *models.Address) (models.LatLng, models.CoordsSource, error)
}

type resolver struct {
	client GeocoderClientInterface
	bounds Bounds
}

func NewResolver(client GeocoderClientInterface, bounds Bounds) ResolverInterface {
	return &resolver{client: client, bounds: bounds}
}

// SmartGeocode is the save-time chain: full-address geocode, then postal
// code centroid. Both failing returns ErrAddressUnresolved; callers must not
// persist placeholder coordinates.
func (r *resolver) SmartGeocode(ctx context.Context, line, city, state, pincode string) (models.LatLng, models.CoordsSource, error) {
	query := strings.Join(nonEmpty(line, city, state, pincode), ", ")
	if p, ok := r.attempt(ctx, func() (models.LatLng, error) { return r.client.Search(ctx, query) }); ok {
		return p, models.CoordsGeocoded, nil
	}
	if p, err := r.GeocodeByPincode(ctx, pincode); err == nil {
		return p, models.CoordsPincode, nil
	}
	return models.LatLng{}, models.CoordsUnresolved, models.ErrAddressUnresolved
}

// GeocodeByPincode returns the postal code centroid, bounds-checked.
func (r *resolver) GeocodeByPincode(ctx context.Context, pincode string) (models.LatLng, error) {
	p, ok := r.attempt(ctx, func() (models.LatLng, error) { return r.client.SearchByPostalCode(ctx, pincode) })
	if !ok {
		return models.LatLng{}, models.ErrAddressUnresolved
	}
	return p, nil
}

// ResolveCoordinates is the use-time priority chain: saved coordinates when
// usable, else a fresh geocode, else the pincode centroid, else an error.
// It never falls back to 0,0 or a warehouse location.
func (r *resolver) ResolveCoordinates(ctx context.Context, addr *models.Address) (models.LatLng, models.CoordsSource, error) {
	saved := addr.Coords()
	if addr.CoordsSource != models.CoordsUnresolved && !saved.IsZero() && r.bounds.Contains(saved) {
		return saved, models.CoordsSaved, nil
	}
	p, src, err := r.SmartGeocode(ctx, addr.Line, addr.City, addr.State, addr.Pincode)
	if err != nil {
		return models.LatLng{}, models.CoordsUnresolved, fmt.Errorf("geo.ResolveCoordinates: %w", err)
	}
	return p, src, nil
}

// attempt runs one provider call and applies the bounds check. Provider
// misses, transport failures and out-of-bounds results are all plain
// "no result" here; the chain moves on to its next step.
func (r *resolver) attempt(ctx context.Context, call func() (models.LatLng, error)) (models.LatLng, bool) {
	p, err := call()
	if err != nil {
		return models.LatLng{}, false
	}
	if p.IsZero() || !r.bounds.Contains(p) {
		return models.LatLng{}, false
	}
	return p, true
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
