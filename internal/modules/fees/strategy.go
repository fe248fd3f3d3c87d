// Package fees prices deliveries: tier tables, surcharges, free-delivery
// discounting and deterministic rounding, exposed behind swappable
// strategies plus a quote service for the preview endpoints.
package fees

import (
	"fmt"
	"math"
	"strings"
	"time"

	"cs-store-backend/internal/config"
	"cs-store-backend/internal/models"
)

// Input is one pricing request. Distance and warehouse are resolved by the
// quote service before the strategy runs.
type Input struct {
	Warehouse      models.Warehouse
	DistanceKm     float64
	DistanceMethod string
	OrderAmount    float64
	WeightKg       float64
	Express        bool
	Now            time.Time
}

// Strategy converts an Input into a FeeBreakdown. Implementations must be
// pure: same input, same breakdown.
type Strategy interface {
	Quote(in Input) *models.FeeBreakdown
}

// NewStrategy selects the deployment's fee model.
func NewStrategy(cfg config.DeliveryConfig) (Strategy, error) {
	switch cfg.FeeModel {
	case "tiered":
		return &TieredStrategy{cfg: cfg}, nil
	case "interpolated":
		return &InterpolatedStrategy{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("fees: unknown fee model %q", cfg.FeeModel)
	}
}

// TieredStrategy is the multi-warehouse model: distance bands with a base
// fee and a per-km fee beyond a small included allowance.
type TieredStrategy struct {
	cfg config.DeliveryConfig
}

func (s *TieredStrategy) Quote(in Input) *models.FeeBreakdown {
	if in.DistanceKm > in.Warehouse.MaxDeliveryRadiusKm {
		return undeliverable(in)
	}

	tier := selectTier(s.cfg.Tiers, in.DistanceKm)
	baseFee := tier.BaseFee
	distanceFee := tier.PerKmFee * math.Max(0, in.DistanceKm-tier.IncludedKm)

	surcharges := evaluateSurcharges(s.cfg.Surcharges, in, baseFee+distanceFee)
	return finalize(s.cfg, in, baseFee, distanceFee, surcharges,
		fmt.Sprintf("Base fee (%s)", tierLabel(tier)))
}

func selectTier(tiers []models.DeliveryTier, km float64) models.DeliveryTier {
	for _, t := range tiers {
		if t.Contains(km) {
			return t
		}
	}
	// Config validation guarantees coverage; the last band is unbounded.
	return tiers[len(tiers)-1]
}

func tierLabel(t models.DeliveryTier) string {
	if t.MaxKm <= 0 {
		return fmt.Sprintf("%.0f+ km", t.MinKm)
	}
	return fmt.Sprintf("%.0f-%.0f km", t.MinKm, t.MaxKm)
}

// evaluateSurcharges applies every enabled rule independently. Rules are
// additive, so evaluation order never changes the sum. Percent rules apply
// to the base-plus-distance amount.
func evaluateSurcharges(rules []models.SurchargeRule, in Input, feeSoFar float64) []models.FeeLine {
	var lines []models.FeeLine
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		var matched bool
		switch rule.Kind {
		case models.SurchargeWeight:
			matched = in.WeightKg >= rule.MinWeightKg
		case models.SurchargeExpress:
			matched = in.Express
		case models.SurchargeTimeWindow:
			h := in.Now.Hour()
			matched = h >= rule.StartHour && h <= rule.EndHour
		case models.SurchargeWeekday:
			wd := int(in.Now.Weekday())
			for _, d := range rule.Weekdays {
				if d == wd {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}
		amount := rule.Amount
		if rule.Percent > 0 {
			amount = feeSoFar * rule.Percent / 100
		}
		lines = append(lines, models.FeeLine{Label: rule.Name, Amount: amount})
	}
	return lines
}

// finalize runs the shared tail of both strategies: free-delivery discount,
// min/max clamping, rounding, and the rendered audit summary.
func finalize(cfg config.DeliveryConfig, in Input, baseFee, distanceFee float64, surcharges []models.FeeLine, baseLabel string) *models.FeeBreakdown {
	subtotal := baseFee + distanceFee
	for _, l := range surcharges {
		subtotal += l.Amount
	}

	var discount, total float64
	free := in.OrderAmount >= cfg.FreeDeliveryThreshold
	if free {
		discount = subtotal
		total = 0
	} else {
		total = math.Max(subtotal, cfg.MinimumFee)
		if cfg.MaximumFee > 0 && total > cfg.MaximumFee {
			total = cfg.MaximumFee
		}
		total = RoundToIncrement(total, cfg.RoundingIncrement)
	}

	b := &models.FeeBreakdown{
		IsDeliverable:  true,
		IsFreeDelivery: free,
		WarehouseID:    in.Warehouse.ID,
		DistanceKm:     in.DistanceKm,
		DistanceMethod: in.DistanceMethod,
		BaseFee:        baseFee,
		DistanceFee:    distanceFee,
		Surcharges:     surcharges,
		Subtotal:       subtotal,
		Discount:       discount,
		Total:          total,
	}
	b.Summary = renderSummary(b, baseLabel)
	return b
}

func undeliverable(in Input) *models.FeeBreakdown {
	b := &models.FeeBreakdown{
		IsDeliverable:  false,
		WarehouseID:    in.Warehouse.ID,
		DistanceKm:     in.DistanceKm,
		DistanceMethod: in.DistanceMethod,
	}
	b.Summary = fmt.Sprintf("Not deliverable: %.2f km exceeds the %.0f km delivery radius of %s",
		in.DistanceKm, in.Warehouse.MaxDeliveryRadiusKm, in.Warehouse.ID)
	return b
}

// RoundToIncrement rounds half-up to the nearest multiple of inc. Rounding
// an already-rounded value is a no-op.
func RoundToIncrement(v, inc float64) float64 {
	if inc <= 0 {
		return v
	}
	return math.Floor(v/inc+0.5) * inc
}

// renderSummary produces the line-itemized audit text persisted with the
// order alongside the structured breakdown.
func renderSummary(b *models.FeeBreakdown, baseLabel string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: ₹%.2f\n", baseLabel, b.BaseFee)
	fmt.Fprintf(&sb, "Distance fee (%.2f km): ₹%.2f\n", b.DistanceKm, b.DistanceFee)
	for _, l := range b.Surcharges {
		fmt.Fprintf(&sb, "%s: ₹%.2f\n", l.Label, l.Amount)
	}
	fmt.Fprintf(&sb, "Subtotal: ₹%.2f\n", b.Subtotal)
	if b.IsFreeDelivery {
		fmt.Fprintf(&sb, "Free delivery discount: -₹%.2f\n", b.Discount)
	}
	fmt.Fprintf(&sb, "Total: ₹%.2f", b.Total)
	return sb.String()
}
