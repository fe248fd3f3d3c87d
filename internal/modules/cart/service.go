package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/modules/catalog"
)

// ServiceInterface is the cart mutation surface.
type ServiceInterface interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID string, req models.AddCartItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error)
}

type service struct {
	repo     RepositoryInterface
	products catalog.RepositoryInterface
}

func NewService(repo RepositoryInterface, products catalog.RepositoryInterface) ServiceInterface {
	return &service{repo: repo, products: products}
}

func (s *service) Get(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Get: %w", err)
	}
	return c, nil
}

// AddItem snapshots the product's current price, name and image onto the
// line. The snapshot is display-only; placement re-reads the live product.
func (s *service) AddItem(ctx context.Context, userID string, req models.AddCartItemRequest) (*models.Cart, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.AddItem: %w", err)
	}

	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("service.AddItem: product: %w", err)
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, models.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.ImageURL,
			Price:     p.Price,
			WeightKg:  p.WeightKg,
			Quantity:  req.Quantity,
			AddedAt:   time.Now(),
		})
	}
	return s.save(ctx, c)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateItem: %w", err)
	}

	found := false
	items := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID == productID {
			found = true
			if quantity == 0 {
				continue
			}
			it.Quantity = quantity
		}
		items = append(items, it)
	}
	if !found {
		return nil, models.ErrNotFound
	}
	c.Items = items
	return s.save(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	return s.UpdateItem(ctx, userID, productID, 0)
}

func (s *service) getOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	c, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return s.repo.Create(ctx, userID)
	}
	return nil, err
}

func (s *service) save(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	c.Recalculate()
	if err := s.repo.ReplaceItems(ctx, c); err != nil {
		return nil, fmt.Errorf("service.save: %w", err)
	}
	return c, nil
}
