package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusCreated        OrderStatus = "created"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPendingPayment OrderStatus = "pending_payment"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment methods accepted at placement.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// OrderItem freezes a cart line at placement time. PriceAtOrder is the live
// product price read during pricing, not the cart snapshot.
type OrderItem struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	ImageURL     string  `json:"image_url,omitempty"`
	PriceAtOrder float64 `json:"price_at_order"`
	WeightKg     float64 `json:"weight_kg"`
	Quantity     int     `json:"quantity"`
}

// Order is immutable once created: item prices, the address snapshot and the
// fee breakdown are frozen copies, not live references.
type Order struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Items           []OrderItem   `json:"items"`
	ItemsTotal      float64       `json:"items_total"`
	DeliveryFee     float64       `json:"delivery_fee"`
	FeeBreakdown    *FeeBreakdown `json:"fee_breakdown,omitempty"`
	Discount        float64       `json:"discount"`
	GrandTotal      float64       `json:"grand_total"`
	AddressSnapshot Address       `json:"address_snapshot"`
	PaymentMethod   string        `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Status          OrderStatus   `json:"status"`
	IdempotencyKey  string        `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// CreateOrderRequest is the placement payload. IdempotencyKey is optional;
// when present, replays of the same key converge on one order.
type CreateOrderRequest struct {
	PaymentMethod  string `json:"payment_method" validate:"required,oneof=cod online"`
	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"omitempty,max=64"`
}

// CreateOrderResult distinguishes a fresh order from an idempotent replay.
type CreateOrderResult struct {
	Order   *Order `json:"order"`
	Created bool   `json:"created"`
}

// OrderEvent is published after a successful commit for external notifiers.
type OrderEvent struct {
	EventID    string    `json:"event_id"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	GrandTotal float64   `json:"grand_total"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
