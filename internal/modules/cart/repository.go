// Package cart persists the one cart each user owns and its denormalized
// item snapshots.
package cart

import (
	"context"
	"errors"
	"fmt"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is consumed by the cart service and by the order
// coordinator (FindByUserID, Clear).
type RepositoryInterface interface {
	FindByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, userID string) (*models.Cart, error)
	ReplaceItems(ctx context.Context, cart *models.Cart) error
	// Clear empties the cart's items and zeroes its totals. The cart row
	// itself survives.
	Clear(ctx context.Context, userID string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) FindByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	q := database.FromContext(ctx, r.db)

	var c models.Cart
	err := q.QueryRow(ctx, `
		SELECT id, user_id, items_total, item_count, updated_at
		FROM carts WHERE user_id = $1`, userID).
		Scan(&c.ID, &c.UserID, &c.ItemsTotal, &c.ItemCount, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByUserID: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT product_id, name, COALESCE(image_url, ''), price, weight_kg, quantity, added_at
		FROM cart_items WHERE cart_id = $1
		ORDER BY added_at`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByUserID: items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.ImageURL, &it.Price, &it.WeightKg, &it.Quantity, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("repository.FindByUserID: scan item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.FindByUserID: rows: %w", err)
	}
	return &c, nil
}

func (r *Repository) Create(ctx context.Context, userID string) (*models.Cart, error) {
	q := database.FromContext(ctx, r.db)

	var c models.Cart
	err := q.QueryRow(ctx, `
		INSERT INTO carts (id, user_id, items_total, item_count, updated_at)
		VALUES ($1, $2, 0, 0, now())
		RETURNING id, user_id, items_total, item_count, updated_at`,
		uuid.NewString(), userID).
		Scan(&c.ID, &c.UserID, &c.ItemsTotal, &c.ItemCount, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return &c, nil
}

// ReplaceItems rewrites the item set and the recomputed totals in one pass.
func (r *Repository) ReplaceItems(ctx context.Context, cart *models.Cart) error {
	q := database.FromContext(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("repository.ReplaceItems: delete: %w", err)
	}
	for _, it := range cart.Items {
		_, err := q.Exec(ctx, `
			INSERT INTO cart_items (cart_id, product_id, name, image_url, price, weight_kg, quantity, added_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			cart.ID, it.ProductID, it.Name, it.ImageURL, it.Price, it.WeightKg, it.Quantity, it.AddedAt)
		if err != nil {
			return fmt.Errorf("repository.ReplaceItems: insert: %w", err)
		}
	}
	_, err := q.Exec(ctx, `
		UPDATE carts SET items_total = $2, item_count = $3, updated_at = now()
		WHERE id = $1`, cart.ID, cart.ItemsTotal, cart.ItemCount)
	if err != nil {
		return fmt.Errorf("repository.ReplaceItems: totals: %w", err)
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, userID string) error {
	q := database.FromContext(ctx, r.db)

	_, err := q.Exec(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("repository.Clear: items: %w", err)
	}
	_, err = q.Exec(ctx, `
		UPDATE carts SET items_total = 0, item_count = 0, updated_at = now()
		WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("repository.Clear: totals: %w", err)
	}
	return nil
}
