// Package catalog is the product boundary: the core reads prices and moves
// stock through atomic conditional updates, nothing more.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/platform/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is consumed by the cart service and the order
// coordinator.
type RepositoryInterface interface {
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	// DecrementStock is the store's conditional primitive: it only applies
	// when stock >= qty and returns ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, productID string, qty int) error
	// IncrementStock unwinds a reservation made earlier in the same attempt.
	IncrementStock(ctx context.Context, productID string, qty int) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	query := `
		SELECT id, name, COALESCE(image_url, ''), price, weight_kg, stock
		FROM products
		WHERE id = $1`

	q := database.FromContext(ctx, r.db)
	var p models.Product
	err := q.QueryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.ImageURL, &p.Price, &p.WeightKg, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &p, nil
}

func (r *Repository) DecrementStock(ctx context.Context, productID string, qty int) error {
	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	q := database.FromContext(ctx, r.db)
	tag, err := q.Exec(ctx, query, productID, qty)
	if err != nil {
		return fmt.Errorf("repository.DecrementStock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or the conditional rejected; both read as
		// insufficient stock to the coordinator.
		return models.ErrInsufficientStock
	}
	return nil
}

func (r *Repository) IncrementStock(ctx context.Context, productID string, qty int) error {
	query := `UPDATE products SET stock = stock + $2 WHERE id = $1`

	q := database.FromContext(ctx, r.db)
	if _, err := q.Exec(ctx, query, productID, qty); err != nil {
		return fmt.Errorf("repository.IncrementStock: %w", err)
	}
	return nil
}
