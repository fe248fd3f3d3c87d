package models

// Warehouse is a fixed shipping origin. Loaded from configuration, never
// mutated by requests.
type Warehouse struct {
	ID                  string  `json:"id" mapstructure:"id"`
	Name                string  `json:"name" mapstructure:"name"`
	Lat                 float64 `json:"lat" mapstructure:"lat"`
	Lng                 float64 `json:"lng" mapstructure:"lng"`
	IsActive            bool    `json:"is_active" mapstructure:"is_active"`
	MaxDeliveryRadiusKm float64 `json:"max_delivery_radius_km" mapstructure:"max_delivery_radius_km"`
	// Priority breaks nearest-warehouse ties; lower wins.
	Priority int `json:"priority" mapstructure:"priority"`
}

func (w Warehouse) Coords() LatLng { return LatLng{Lat: w.Lat, Lng: w.Lng} }

// DeliveryTier is one [MinKm, MaxKm) distance band. MaxKm <= 0 marks the
// last, unbounded band. The configured bands must cover [0, inf) with no
// gaps or overlap; config loading rejects anything else.
type DeliveryTier struct {
	MinKm      float64 `json:"min_km" mapstructure:"min_km"`
	MaxKm      float64 `json:"max_km" mapstructure:"max_km"`
	BaseFee    float64 `json:"base_fee" mapstructure:"base_fee"`
	PerKmFee   float64 `json:"per_km_fee" mapstructure:"per_km_fee"`
	IncludedKm float64 `json:"included_km" mapstructure:"included_km"`
}

// Contains reports whether km falls inside the band.
func (t DeliveryTier) Contains(km float64) bool {
	if km < t.MinKm {
		return false
	}
	return t.MaxKm <= 0 || km < t.MaxKm
}

// Surcharge rule kinds.
const (
	SurchargeWeight     = "weight"
	SurchargeExpress    = "express"
	SurchargeTimeWindow = "time_window"
	SurchargeWeekday    = "weekday"
)

// SurchargeRule is an independently toggleable extra charge. Amount and
// Percent are mutually exclusive; Percent applies to base+distance fee.
type SurchargeRule struct {
	Name    string `json:"name" mapstructure:"name"`
	Kind    string `json:"kind" mapstructure:"kind"`
	Enabled bool   `json:"enabled" mapstructure:"enabled"`

	// weight
	MinWeightKg float64 `json:"min_weight_kg,omitempty" mapstructure:"min_weight_kg"`
	// time_window, 24h clock, [StartHour, EndHour] inclusive
	StartHour int `json:"start_hour,omitempty" mapstructure:"start_hour"`
	EndHour   int `json:"end_hour,omitempty" mapstructure:"end_hour"`
	// weekday, time.Weekday values 0=Sunday..6=Saturday
	Weekdays []int `json:"weekdays,omitempty" mapstructure:"weekdays"`

	Amount  float64 `json:"amount,omitempty" mapstructure:"amount"`
	Percent float64 `json:"percent,omitempty" mapstructure:"percent"`
}

// FeeLine is one line item of a fee breakdown.
type FeeLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// FeeBreakdown is the full result of pricing a delivery. Orders persist it
// verbatim so historical fees survive later configuration changes.
type FeeBreakdown struct {
	IsDeliverable  bool      `json:"is_deliverable"`
	IsFreeDelivery bool      `json:"is_free_delivery"`
	WarehouseID    string    `json:"warehouse_id,omitempty"`
	DistanceKm     float64   `json:"distance_km"`
	DistanceMethod string    `json:"distance_method,omitempty"`
	BaseFee        float64   `json:"base_fee"`
	DistanceFee    float64   `json:"distance_fee"`
	Surcharges     []FeeLine `json:"surcharges,omitempty"`
	Subtotal       float64   `json:"subtotal"`
	Discount       float64   `json:"discount"`
	Total          float64   `json:"total"`
	// Summary is the rendered line-itemized audit text, kept alongside the
	// structured fields.
	Summary string `json:"summary"`
}

// DistanceMethod values for DistanceResult and FeeBreakdown.
const (
	DistanceMethodProvider  = "EXTERNAL_PROVIDER"
	DistanceMethodHaversine = "HAVERSINE"
)

// DistanceResult is the outcome of a warehouse-to-destination distance
// computation.
type DistanceResult struct {
	Km     float64 `json:"km"`
	Method string  `json:"method"`
	Cached bool    `json:"cached"`
}
