package fees

import (
	"context"
	"fmt"
	"time"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/modules/distance"
	"cs-store-backend/internal/modules/district"
	"cs-store-backend/internal/modules/geo"
)

// ServiceInterface is the quoting surface consumed by the preview handler
// and by order placement.
type ServiceInterface interface {
	QuoteForAddress(ctx context.Context, addr *models.Address, orderAmount, weightKg float64, express bool) (*models.FeeBreakdown, error)
	QuoteForPincode(ctx context.Context, pincode string, orderAmount float64) (*models.FeeBreakdown, error)
	QuoteForCoords(ctx context.Context, dest models.LatLng, orderAmount, weightKg float64, express bool) (*models.FeeBreakdown, error)
}

type service struct {
	strategy        Strategy
	distances       distance.EngineInterface
	districts       district.ResolverInterface
	geocoder        geo.ResolverInterface
	warehouses      []models.Warehouse
	defaultWeightKg float64
	now             func() time.Time
}

// NewService wires the quote pipeline. warehouses is the immutable
// configured table; a copy is taken so callers cannot mutate it later.
func NewService(strategy Strategy, distances distance.EngineInterface, districts district.ResolverInterface, geocoder geo.ResolverInterface, warehouses []models.Warehouse, defaultWeightKg float64) ServiceInterface {
	whs := make([]models.Warehouse, len(warehouses))
	copy(whs, warehouses)
	return &service{
		strategy:        strategy,
		distances:       distances,
		districts:       districts,
		geocoder:        geocoder,
		warehouses:      whs,
		defaultWeightKg: defaultWeightKg,
		now:             time.Now,
	}
}

// QuoteForAddress prices delivery to a saved address. Unresolved
// coordinates abort the quote; they are never silently substituted.
func (s *service) QuoteForAddress(ctx context.Context, addr *models.Address, orderAmount, weightKg float64, express bool) (*models.FeeBreakdown, error) {
	dest, _, err := s.geocoder.ResolveCoordinates(ctx, addr)
	if err != nil {
		return nil, models.NewReasonError(models.ReasonAddressUnresolved, "address coordinates could not be resolved", err)
	}
	return s.QuoteForCoords(ctx, dest, orderAmount, weightKg, express)
}

// QuoteForPincode is the guest preview: serviceability check, postal-code
// centroid, default weight.
func (s *service) QuoteForPincode(ctx context.Context, pincode string, orderAmount float64) (*models.FeeBreakdown, error) {
	d, err := s.districts.Resolve(ctx, pincode)
	if err != nil {
		switch err {
		case models.ErrInvalidPincode:
			return nil, models.NewReasonError(models.ReasonInvalidPincode, "pincode must be 6 digits", err)
		case models.ErrPincodeNotFound:
			return nil, models.NewReasonError(models.ReasonPincodeNotFound, "pincode not found", err)
		}
		return nil, fmt.Errorf("fees.QuoteForPincode: %w", err)
	}
	if !d.Deliverable {
		return nil, models.NewReasonError(models.ReasonNotServiceable, "we do not deliver to "+d.State+" yet", nil)
	}
	dest, err := s.geocoder.GeocodeByPincode(ctx, pincode)
	if err != nil {
		return nil, models.NewReasonError(models.ReasonAddressUnresolved, "pincode centroid could not be resolved", err)
	}
	return s.QuoteForCoords(ctx, dest, orderAmount, s.defaultWeightKg, false)
}

// QuoteForCoords selects the nearest active warehouse, measures the
// distance and runs the configured strategy.
func (s *service) QuoteForCoords(ctx context.Context, dest models.LatLng, orderAmount, weightKg float64, express bool) (*models.FeeBreakdown, error) {
	wh, ok := s.nearestWarehouse(dest)
	if !ok {
		return nil, fmt.Errorf("fees.QuoteForCoords: no active warehouse configured")
	}
	res, err := s.distances.Distance(ctx, wh, dest)
	if err != nil {
		return nil, fmt.Errorf("fees.QuoteForCoords: distance: %w", err)
	}
	return s.strategy.Quote(Input{
		Warehouse:      wh,
		DistanceKm:     res.Km,
		DistanceMethod: res.Method,
		OrderAmount:    orderAmount,
		WeightKg:       weightKg,
		Express:        express,
		Now:            s.now(),
	}), nil
}

// nearestWarehouse picks the active warehouse closest by straight-line
// distance; ties break on Priority, lower wins.
func (s *service) nearestWarehouse(dest models.LatLng) (models.Warehouse, bool) {
	var best models.Warehouse
	bestKm := -1.0
	for _, wh := range s.warehouses {
		if !wh.IsActive {
			continue
		}
		km := distance.Haversine(wh.Coords(), dest)
		switch {
		case bestKm < 0 || km < bestKm:
			best, bestKm = wh, km
		case km == bestKm && wh.Priority < best.Priority:
			best = wh
		}
	}
	return best, bestKm >= 0
}
