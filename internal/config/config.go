package config

import (
	"fmt"
	"log"
	"os"

	"cs-store-backend/internal/models"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Delivery tables are read once at
// startup and injected as immutable values; nothing hot-reloads them.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	GeocoderBaseURL    string `mapstructure:"GEOCODER_BASE_URL"`
	DistanceAPIBaseURL string `mapstructure:"DISTANCE_API_BASE_URL"`
	DistanceAPIKey     string `mapstructure:"DISTANCE_API_KEY"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`
	SESFromAddress  string `mapstructure:"SES_FROM_ADDRESS"`

	PincodeDatasetPath string `mapstructure:"PINCODE_DATASET_PATH"`

	StripeAPIKey string

	Delivery DeliveryConfig
}

// DeliveryConfig holds every pricing table the fee and distance engines
// consume. Loaded from delivery.yaml when present, otherwise the defaults
// below, so a bare process still prices orders.
type DeliveryConfig struct {
	// FeeModel selects the pricing strategy: "tiered" or "interpolated".
	FeeModel string `mapstructure:"fee_model"`

	FreeDeliveryThreshold float64 `mapstructure:"free_delivery_threshold"`
	MinimumFee            float64 `mapstructure:"minimum_fee"`
	MaximumFee            float64 `mapstructure:"maximum_fee"` // <= 0 means no ceiling
	RoundingIncrement     float64 `mapstructure:"rounding_increment"`
	DefaultWeightKg       float64 `mapstructure:"default_weight_kg"`

	Tiers      []models.DeliveryTier  `mapstructure:"tiers"`
	Surcharges []models.SurchargeRule `mapstructure:"surcharges"`
	Warehouses []models.Warehouse     `mapstructure:"warehouses"`

	// Interpolated single-warehouse model parameters.
	NearFee  float64 `mapstructure:"near_fee"`
	FarFee   float64 `mapstructure:"far_fee"`
	CutoffKm float64 `mapstructure:"cutoff_km"`
	PerKmFee float64 `mapstructure:"per_km_fee"`

	CacheTTLSeconds int  `mapstructure:"cache_ttl_seconds"`
	Deterministic   bool `mapstructure:"deterministic"`

	ServiceableStates []string `mapstructure:"serviceable_states"`
	// DistrictOverrides maps state -> postal district -> admin district.
	DistrictOverrides map[string]map[string]string `mapstructure:"district_overrides"`

	// Country bounding box; geocoder results outside it are rejected.
	MinLat float64 `mapstructure:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat"`
	MinLng float64 `mapstructure:"min_lng"`
	MaxLng float64 `mapstructure:"max_lng"`
	// CountryCode restricts geocoder queries.
	CountryCode string `mapstructure:"country_code"`
}

// LoadConfig reads .env for flat settings and delivery.yaml for the pricing
// tables. A missing file of either kind is fine; defaults apply.
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "order-events")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")

	dc, err := loadDeliveryConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.Delivery = *dc

	return &cfg, nil
}

func loadDeliveryConfig(path string) (*DeliveryConfig, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("delivery")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No delivery.yaml found, using default pricing tables.")
			dc := DefaultDeliveryConfig()
			return &dc, nil
		}
		return nil, err
	}

	dc := DefaultDeliveryConfig()
	if err := v.Unmarshal(&dc); err != nil {
		return nil, err
	}
	if err := dc.Validate(); err != nil {
		return nil, fmt.Errorf("config: delivery tables: %w", err)
	}
	return &dc, nil
}

// DefaultDeliveryConfig is the in-code pricing table set.
func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		FeeModel:              "tiered",
		FreeDeliveryThreshold: 2000,
		MinimumFee:            20,
		MaximumFee:            0,
		RoundingIncrement:     1,
		DefaultWeightKg:       1,
		Tiers: []models.DeliveryTier{
			{MinKm: 0, MaxKm: 5, BaseFee: 30, PerKmFee: 0, IncludedKm: 0},
			{MinKm: 5, MaxKm: 15, BaseFee: 40, PerKmFee: 5, IncludedKm: 5},
			{MinKm: 15, MaxKm: 30, BaseFee: 60, PerKmFee: 7, IncludedKm: 5},
			{MinKm: 30, MaxKm: 0, BaseFee: 100, PerKmFee: 9, IncludedKm: 5},
		},
		Surcharges: []models.SurchargeRule{
			{Name: "Heavy order", Kind: models.SurchargeWeight, Enabled: true, MinWeightKg: 10, Amount: 50},
			{Name: "Express delivery", Kind: models.SurchargeExpress, Enabled: true, Amount: 40},
			{Name: "Night delivery", Kind: models.SurchargeTimeWindow, Enabled: true, StartHour: 21, EndHour: 23, Amount: 30},
			{Name: "Weekend demand", Kind: models.SurchargeWeekday, Enabled: false, Weekdays: []int{0, 6}, Percent: 10},
		},
		Warehouses: []models.Warehouse{
			{ID: "WH-HYD-1", Name: "Hyderabad Central", Lat: 17.385044, Lng: 78.486671, IsActive: true, MaxDeliveryRadiusKm: 500, Priority: 1},
		},
		NearFee:           25,
		FarFee:            80,
		CutoffKm:          20,
		PerKmFee:          6,
		CacheTTLSeconds:   3600,
		Deterministic:     false,
		ServiceableStates: []string{"Telangana", "Andhra Pradesh", "Karnataka", "Maharashtra", "Tamil Nadu", "Delhi"},
		DistrictOverrides: map[string]map[string]string{
			"Telangana": {
				"Hyderabad South East": "Hyderabad",
				"K.V.Rangareddy":       "Ranga Reddy",
			},
			"Andhra Pradesh": {
				"Visakhapatnam Rural": "Visakhapatnam",
			},
		},
		MinLat:      6.5546,
		MaxLat:      35.6745,
		MinLng:      68.1114,
		MaxLng:      97.3956,
		CountryCode: "in",
	}
}

// Validate rejects tier tables that leave a distance without a band.
func (dc *DeliveryConfig) Validate() error {
	if dc.FeeModel != "tiered" && dc.FeeModel != "interpolated" {
		return fmt.Errorf("unknown fee_model %q", dc.FeeModel)
	}
	if len(dc.Tiers) == 0 {
		return fmt.Errorf("at least one delivery tier is required")
	}
	var cursor float64
	for i, t := range dc.Tiers {
		if t.MinKm != cursor {
			return fmt.Errorf("tier %d starts at %.2f, want %.2f (gap or overlap)", i, t.MinKm, cursor)
		}
		last := i == len(dc.Tiers)-1
		if last {
			if t.MaxKm > 0 {
				return fmt.Errorf("last tier must be unbounded (max_km <= 0)")
			}
		} else {
			if t.MaxKm <= t.MinKm {
				return fmt.Errorf("tier %d has max_km %.2f <= min_km %.2f", i, t.MaxKm, t.MinKm)
			}
			cursor = t.MaxKm
		}
	}
	if dc.RoundingIncrement <= 0 {
		return fmt.Errorf("rounding_increment must be positive")
	}
	return nil
}
