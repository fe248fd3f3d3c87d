package cart

import (
	"context"
	"testing"

	"cs-store-backend/internal/models"

	"github.com/google/uuid"
)

type fakeRepo struct {
	carts map[string]*models.Cart
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{carts: make(map[string]*models.Cart)}
}

func (f *fakeRepo) FindByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	c, ok := f.carts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeRepo) Create(ctx context.Context, userID string) (*models.Cart, error) {
	c := &models.Cart{ID: uuid.NewString(), UserID: userID}
	f.carts[userID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) ReplaceItems(ctx context.Context, cart *models.Cart) error {
	for _, c := range f.carts {
		if c.ID == cart.ID {
			c.Items = append([]models.CartItem(nil), cart.Items...)
			c.ItemsTotal = cart.ItemsTotal
			c.ItemCount = cart.ItemCount
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRepo) Clear(ctx context.Context, userID string) error {
	c, ok := f.carts[userID]
	if !ok {
		return nil
	}
	c.Items = nil
	c.ItemsTotal = 0
	c.ItemCount = 0
	return nil
}

type fakeCatalog struct {
	products map[string]*models.Product
}

func (f *fakeCatalog) FindByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, id string, qty int) error { return nil }
func (f *fakeCatalog) IncrementStock(ctx context.Context, id string, qty int) error { return nil }

func TestAddItemSnapshotsAndRecalculates(t *testing.T) {
	repo := newFakeRepo()
	cat := &fakeCatalog{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Basmati Rice 5kg", Price: 450, WeightKg: 5, Stock: 10},
	}}
	svc := NewService(repo, cat)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "u1", models.AddCartItemRequest{ProductID: "p1", Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("items = %d; want 1", len(c.Items))
	}
	if c.Items[0].Price != 450 || c.Items[0].Name != "Basmati Rice 5kg" {
		t.Errorf("snapshot not taken: %+v", c.Items[0])
	}
	if c.ItemsTotal != 900 || c.ItemCount != 2 {
		t.Errorf("totals = (%.2f, %d); want (900, 2)", c.ItemsTotal, c.ItemCount)
	}

	// Adding the same product merges quantities.
	c, err = svc.AddItem(ctx, "u1", models.AddCartItemRequest{ProductID: "p1", Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 3 {
		t.Errorf("merge failed: %+v", c.Items)
	}
	if c.ItemsTotal != 1350 {
		t.Errorf("ItemsTotal = %.2f; want 1350", c.ItemsTotal)
	}
}

func TestUpdateItemZeroRemoves(t *testing.T) {
	repo := newFakeRepo()
	cat := &fakeCatalog{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Atta 10kg", Price: 500, WeightKg: 10, Stock: 5},
	}}
	svc := NewService(repo, cat)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", models.AddCartItemRequest{ProductID: "p1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	c, err := svc.UpdateItem(ctx, "u1", "p1", 0)
	if err != nil {
		t.Fatalf("UpdateItem error: %v", err)
	}
	if len(c.Items) != 0 || c.ItemsTotal != 0 || c.ItemCount != 0 {
		t.Errorf("cart not emptied: %+v", c)
	}

	if _, err := svc.UpdateItem(ctx, "u1", "missing", 1); err != models.ErrNotFound {
		t.Errorf("UpdateItem missing line error = %v; want ErrNotFound", err)
	}
}
