package main

import (
	"context"
	"log"
	"time"

	"cs-store-backend/internal/api"
	"cs-store-backend/internal/config"
	"cs-store-backend/internal/modules/address"
	"cs-store-backend/internal/modules/cart"
	"cs-store-backend/internal/modules/catalog"
	"cs-store-backend/internal/modules/distance"
	"cs-store-backend/internal/modules/district"
	"cs-store-backend/internal/modules/fees"
	"cs-store-backend/internal/modules/geo"
	"cs-store-backend/internal/modules/orders"
	"cs-store-backend/internal/platform/database"
	"cs-store-backend/pkg/notify"
	"cs-store-backend/pkg/payment"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: could not connect to database: %v", err)
	}
	defer pool.Close()

	txRunner := database.NewTxRunner(ctx, pool)
	if !txRunner.Supported() {
		log.Println("WARN: orders will commit without transactions; stock unwinds apply")
	}

	dc := cfg.Delivery

	districtResolver := district.NewResolver(cfg.PincodeDatasetPath,
		district.NewRepository(pool), dc.DistrictOverrides, dc.ServiceableStates)

	geoResolver := geo.NewResolver(
		geo.NewGeocoderClient(cfg.GeocoderBaseURL, dc.CountryCode),
		geo.Bounds{MinLat: dc.MinLat, MaxLat: dc.MaxLat, MinLng: dc.MinLng, MaxLng: dc.MaxLng})

	distanceEngine := distance.NewEngine(
		distance.NewProvider(cfg.DistanceAPIBaseURL, cfg.DistanceAPIKey),
		distance.NewCache(time.Duration(dc.CacheTTLSeconds)*time.Second),
		dc.Deterministic)

	strategy, err := fees.NewStrategy(dc)
	if err != nil {
		log.Fatalf("FATAL: invalid fee configuration: %v", err)
	}
	feeService := fees.NewService(strategy, distanceEngine, districtResolver,
		geoResolver, dc.Warehouses, dc.DefaultWeightKg)

	addressRepo := address.NewRepository(pool)
	addressService := address.NewService(addressRepo, districtResolver, geoResolver)

	catalogRepo := catalog.NewRepository(pool)
	cartRepo := cart.NewRepository(pool)
	cartService := cart.NewService(cartRepo, catalogRepo)

	var publisher orders.PublisherInterface
	if cfg.KafkaBrokers != "" {
		kp := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer kp.Close()
		publisher = kp
	}
	var payments orders.PaymentServiceInterface
	if cfg.StripeAPIKey != "" {
		payments = payment.NewStripeService(cfg.StripeAPIKey)
	}

	orderService := orders.NewService(orders.NewRepository(pool), addressRepo,
		cartRepo, catalogRepo, districtResolver, geoResolver, feeService,
		txRunner, publisher, payments)

	e := api.NewRouter(cfg, api.Handlers{
		Addresses: address.NewHandler(addressService),
		Cart:      cart.NewHandler(cartService),
		Fees:      fees.NewHandler(feeService, addressRepo),
		Orders:    orders.NewHandler(orderService),
	})

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("FATAL: server stopped: %v", err)
	}
}
