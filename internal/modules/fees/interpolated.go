package fees

import (
	"math"

	"cs-store-backend/internal/config"
	"cs-store-backend/internal/models"
)

// InterpolatedStrategy is the single-warehouse model: the fee interpolates
// linearly between NearFee (at 0 km) and FarFee (at CutoffKm), then grows by
// a flat per-km rate beyond the cutoff. It keeps every invariant of the
// tiered model: free-delivery threshold, non-negative result, deterministic
// rounding.
type InterpolatedStrategy struct {
	cfg config.DeliveryConfig
}

func (s *InterpolatedStrategy) Quote(in Input) *models.FeeBreakdown {
	if in.DistanceKm > in.Warehouse.MaxDeliveryRadiusKm {
		return undeliverable(in)
	}

	var baseFee, distanceFee float64
	if in.DistanceKm <= s.cfg.CutoffKm && s.cfg.CutoffKm > 0 {
		frac := in.DistanceKm / s.cfg.CutoffKm
		baseFee = s.cfg.NearFee + (s.cfg.FarFee-s.cfg.NearFee)*frac
	} else {
		baseFee = s.cfg.FarFee
		distanceFee = s.cfg.PerKmFee * math.Max(0, in.DistanceKm-s.cfg.CutoffKm)
	}

	surcharges := evaluateSurcharges(s.cfg.Surcharges, in, baseFee+distanceFee)
	return finalize(s.cfg, in, baseFee, distanceFee, surcharges, "Base fee (interpolated)")
}
