package models

import "time"

// CartItem carries a denormalized snapshot of the product at add time. The
// snapshot is for display; placement always re-reads the live product.
type CartItem struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	Price     float64   `json:"price"`
	WeightKg  float64   `json:"weight_kg"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is the single cart a user owns. ItemsTotal and ItemCount are
// recomputed on every mutation, never read back stale.
type Cart struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Items      []CartItem `json:"items"`
	ItemsTotal float64    `json:"items_total"`
	ItemCount  int        `json:"item_count"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Recalculate refreshes the derived totals from the item list.
func (c *Cart) Recalculate() {
	var total float64
	var count int
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
		count += it.Quantity
	}
	c.ItemsTotal = total
	c.ItemCount = count
}

// TotalWeightKg sums item weights for fee computation.
func (c *Cart) TotalWeightKg() float64 {
	var w float64
	for _, it := range c.Items {
		w += it.WeightKg * float64(it.Quantity)
	}
	return w
}

// AddCartItemRequest is the payload for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartItemRequest changes the quantity of a line; zero removes it.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// Product is the catalog boundary. The core reads Price and decrements
// Stock; everything else belongs to the excluded catalog subsystem.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url,omitempty"`
	Price    float64 `json:"price"`
	WeightKg float64 `json:"weight_kg"`
	Stock    int     `json:"stock"`
}
