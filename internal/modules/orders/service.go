package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/modules/district"
	"cs-store-backend/internal/modules/geo"
	"cs-store-backend/internal/platform/database"
	"cs-store-backend/internal/platform/validation"

	"github.com/google/uuid"
)

// AddressStoreInterface is the slice of the address book the coordinator
// reads.
type AddressStoreInterface interface {
	FindDefault(ctx context.Context, userID string) (*models.Address, error)
}

// CartStoreInterface is the slice of the cart module the coordinator uses.
type CartStoreInterface interface {
	FindByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// StockStoreInterface is the inventory boundary: a conditional decrement
// that rejects when it would go negative, and its compensating increment.
type StockStoreInterface interface {
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
	IncrementStock(ctx context.Context, productID string, qty int) error
}

// QuoteServiceInterface prices the delivery leg.
type QuoteServiceInterface interface {
	QuoteForCoords(ctx context.Context, dest models.LatLng, orderAmount, weightKg float64, express bool) (*models.FeeBreakdown, error)
}

// PublisherInterface receives the post-commit order event. The coordinator
// never blocks on it.
type PublisherInterface interface {
	PublishOrderCreated(ctx context.Context, ev models.OrderEvent) error
}

// PaymentServiceInterface authorizes the grand total for non-COD methods.
type PaymentServiceInterface interface {
	Authorize(ctx context.Context, userID string, amount float64, method string) (string, error)
}

// ServiceInterface is the placement surface exposed to the handler.
type ServiceInterface interface {
	CreateOrderFromCart(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.CreateOrderResult, error)
	GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
}

type service struct {
	repo      RepositoryInterface
	addresses AddressStoreInterface
	carts     CartStoreInterface
	stock     StockStoreInterface
	districts district.ResolverInterface
	geocoder  geo.ResolverInterface
	quotes    QuoteServiceInterface
	tx        database.TxRunner
	publisher PublisherInterface
	payments  PaymentServiceInterface
}

// NewService wires the order transaction coordinator. publisher and
// payments may be nil in deployments without those integrations.
func NewService(repo RepositoryInterface, addresses AddressStoreInterface, carts CartStoreInterface,
	stock StockStoreInterface, districts district.ResolverInterface, geocoder geo.ResolverInterface,
	quotes QuoteServiceInterface, tx database.TxRunner, publisher PublisherInterface,
	payments PaymentServiceInterface) ServiceInterface {
	return &service{
		repo:      repo,
		addresses: addresses,
		carts:     carts,
		stock:     stock,
		districts: districts,
		geocoder:  geocoder,
		quotes:    quotes,
		tx:        tx,
		publisher: publisher,
		payments:  payments,
	}
}

// CreateOrderFromCart runs VALIDATE -> PRICE -> RESERVE_STOCK -> PERSIST.
// Retries with the same idempotency key converge on one order.
func (s *service) CreateOrderFromCart(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.CreateOrderResult, error) {
	// Idempotency short-circuit: replays return the winner with no
	// re-validation and no re-pricing.
	if req.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err == nil {
			return &models.CreateOrderResult{Order: existing, Created: false}, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("service.CreateOrderFromCart: idempotency lookup: %w", err)
		}
	}

	addr, dest, err := s.validateAddress(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := s.priceOrder(ctx, userID, addr, dest, req)
	if err != nil {
		return nil, err
	}

	err = s.tx.Run(ctx, func(ctx context.Context) error {
		if order.PaymentMethod == models.PaymentMethodCOD {
			if err := s.reserveStock(ctx, order.Items); err != nil {
				return err
			}
		}
		if err := s.repo.Create(ctx, order); err != nil {
			if order.PaymentMethod == models.PaymentMethodCOD {
				s.unwindStock(ctx, order.Items, len(order.Items))
			}
			return err
		}
		// COD commits immediately; online orders keep the cart until the
		// payment callback settles them. A failed clear must not void the
		// order: on the non-transactional path the row is already durable,
		// so the stale cart is logged and the placement stands.
		if order.PaymentMethod == models.PaymentMethodCOD {
			if err := s.carts.Clear(ctx, userID); err != nil {
				log.Printf("CRITICAL: order %s committed but cart clear failed for user %s: %v", order.ID, userID, err)
			}
		}
		return nil
	})
	if err != nil {
		// Another attempt with the same key won the persist race; converge
		// on its order instead of surfacing the conflict.
		if errors.Is(err, models.ErrConflict) && req.IdempotencyKey != "" {
			existing, lookupErr := s.repo.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
			if lookupErr == nil {
				return &models.CreateOrderResult{Order: existing, Created: false}, nil
			}
			log.Printf("CRITICAL: order conflict for user %s key %s but winner not found: %v", userID, req.IdempotencyKey, lookupErr)
		}
		var re *models.ReasonError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, fmt.Errorf("service.CreateOrderFromCart: %w", err)
	}

	s.afterCommit(order)
	return &models.CreateOrderResult{Order: order, Created: true}, nil
}

// validateAddress loads the default address and re-validates every field,
// the coordinates and the deliverability before anything touches the cart
// or inventory.
func (s *service) validateAddress(ctx context.Context, userID string) (*models.Address, models.LatLng, error) {
	addr, err := s.addresses.FindDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.LatLng{}, models.NewReasonError(models.ReasonAddressIncomplete, "no default address on the account", err)
		}
		return nil, models.LatLng{}, fmt.Errorf("service.validateAddress: %w", err)
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", addr.Name}, {"address line", addr.Line}, {"city", addr.City}, {"state", addr.State},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, models.LatLng{}, models.NewReasonError(models.ReasonAddressIncomplete,
			"address is missing: "+strings.Join(missing, ", "), nil)
	}
	if !validation.IsMobile(addr.Phone) {
		return nil, models.LatLng{}, models.NewReasonError(models.ReasonInvalidPhone, "phone number is not a valid mobile number", nil)
	}
	if !district.IsValidPincode(addr.Pincode) {
		return nil, models.LatLng{}, models.NewReasonError(models.ReasonInvalidPincode, "pincode must be 6 digits", nil)
	}

	d, err := s.districts.Resolve(ctx, addr.Pincode)
	if err != nil {
		if errors.Is(err, models.ErrPincodeNotFound) {
			return nil, models.LatLng{}, models.NewReasonError(models.ReasonPincodeNotFound, "pincode not found", err)
		}
		return nil, models.LatLng{}, fmt.Errorf("service.validateAddress: resolve pincode: %w", err)
	}
	if !d.Deliverable {
		return nil, models.LatLng{}, models.NewReasonError(models.ReasonNotServiceable, "we do not deliver to "+d.State+" yet", nil)
	}
	// Freshly resolved districts travel with the snapshot.
	addr.PostalDistrict = d.PostalDistrict
	addr.AdminDistrict = d.AdminDistrict

	dest, source, err := s.geocoder.ResolveCoordinates(ctx, addr)
	if err != nil {
		return nil, models.LatLng{}, models.NewReasonError(models.ReasonAddressUnresolved,
			"address coordinates could not be resolved", err)
	}
	addr.Lat, addr.Lng = dest.Lat, dest.Lng
	addr.CoordsSource = source
	return addr, dest, nil
}

// priceOrder re-reads every product, takes prices fresh, pre-checks COD
// stock and prices the delivery leg.
func (s *service) priceOrder(ctx context.Context, userID string, addr *models.Address, dest models.LatLng, req models.CreateOrderRequest) (*models.Order, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewReasonError(models.ReasonCartEmpty, "cart is empty", models.ErrCartEmpty)
		}
		return nil, fmt.Errorf("service.priceOrder: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, models.NewReasonError(models.ReasonCartEmpty, "cart is empty", models.ErrCartEmpty)
	}

	var items []models.OrderItem
	var itemsTotal, weightKg float64
	for _, line := range cart.Items {
		p, err := s.stock.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("service.priceOrder: product %s: %w", line.ProductID, err)
		}
		if req.PaymentMethod == models.PaymentMethodCOD && p.Stock < line.Quantity {
			return nil, models.NewReasonError(models.ReasonInsufficientStock,
				"not enough stock for "+p.Name, models.ErrInsufficientStock)
		}
		items = append(items, models.OrderItem{
			ProductID:    p.ID,
			Name:         p.Name,
			ImageURL:     p.ImageURL,
			PriceAtOrder: p.Price,
			WeightKg:     p.WeightKg,
			Quantity:     line.Quantity,
		})
		itemsTotal += p.Price * float64(line.Quantity)
		weightKg += p.WeightKg * float64(line.Quantity)
	}

	breakdown, err := s.quotes.QuoteForCoords(ctx, dest, itemsTotal, weightKg, false)
	if err != nil {
		return nil, fmt.Errorf("service.priceOrder: quote: %w", err)
	}
	if !breakdown.IsDeliverable {
		return nil, models.NewReasonError(models.ReasonOutOfDeliveryRadius,
			"address is outside our delivery radius", nil)
	}

	status := models.OrderStatusConfirmed
	if req.PaymentMethod != models.PaymentMethodCOD {
		status = models.OrderStatusPendingPayment
	}

	return &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ItemsTotal:      itemsTotal,
		DeliveryFee:     breakdown.Total,
		FeeBreakdown:    breakdown,
		Discount:        breakdown.Discount,
		GrandTotal:      itemsTotal + breakdown.Total,
		AddressSnapshot: *addr,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          status,
		IdempotencyKey:  req.IdempotencyKey,
		CreatedAt:       time.Now(),
	}, nil
}

// reserveStock applies the conditional decrement per line. On rejection it
// unwinds the lines already reserved in this attempt; partial reservations
// are never left behind.
func (s *service) reserveStock(ctx context.Context, items []models.OrderItem) error {
	for i, it := range items {
		if err := s.stock.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.unwindStock(ctx, items, i)
			if errors.Is(err, models.ErrInsufficientStock) {
				return models.NewReasonError(models.ReasonInsufficientStock,
					"not enough stock for "+it.Name, err)
			}
			return fmt.Errorf("reserve stock: %w", err)
		}
	}
	return nil
}

// unwindStock re-adds the first n lines' quantities. Inside a transaction
// this is redundant with the rollback but harmless; on the non-transactional
// path it is what keeps the attempt atomic.
func (s *service) unwindStock(ctx context.Context, items []models.OrderItem, n int) {
	for i := 0; i < n; i++ {
		if err := s.stock.IncrementStock(ctx, items[i].ProductID, items[i].Quantity); err != nil {
			log.Printf("CRITICAL: failed to unwind stock for product %s qty %d: %v",
				items[i].ProductID, items[i].Quantity, err)
		}
	}
}

// afterCommit fires the side channels. Neither may delay or fail the
// placement response.
func (s *service) afterCommit(order *models.Order) {
	if s.publisher != nil {
		ev := models.OrderEvent{
			EventID:    uuid.NewString(),
			OrderID:    order.ID,
			UserID:     order.UserID,
			GrandTotal: order.GrandTotal,
			Status:     string(order.Status),
			OccurredAt: time.Now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.publisher.PublishOrderCreated(ctx, ev); err != nil {
				log.Printf("orders: publish event for %s: %v", order.ID, err)
			}
		}()
	}
	if s.payments != nil && order.PaymentMethod != models.PaymentMethodCOD {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := s.payments.Authorize(ctx, order.UserID, order.GrandTotal, order.PaymentMethod); err != nil {
				log.Printf("orders: authorize payment for %s: %v", order.ID, err)
			}
		}()
	}
}

func (s *service) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrder: %w", err)
	}
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	orders, total, err := s.repo.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListUserOrders: %w", err)
	}
	return orders, total, nil
}
