// Package orders turns a cart plus a saved address into a priced,
// stock-reserved, idempotent order.
package orders

import (
	"context"
	"errors"
	"fmt"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/platform/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is the order persistence contract.
type RepositoryInterface interface {
	// Create inserts the order. A unique violation on (user_id,
	// idempotency_key) comes back as models.ErrConflict so the coordinator
	// can converge on the winner.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, userID, orderID string) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `
	id, user_id, items, items_total, delivery_fee, fee_breakdown, discount,
	grand_total, address_snapshot, payment_method, payment_status, status,
	COALESCE(idempotency_key, ''), created_at`

func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, user_id, items, items_total, delivery_fee, fee_breakdown,
			discount, grand_total, address_snapshot, payment_method, payment_status,
			status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), now())`

	q := database.FromContext(ctx, r.db)
	_, err := q.Exec(ctx, query,
		order.ID, order.UserID, order.Items, order.ItemsTotal, order.DeliveryFee,
		order.FeeBreakdown, order.Discount, order.GrandTotal, order.AddressSnapshot,
		order.PaymentMethod, order.PaymentStatus, order.Status, order.IdempotencyKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrConflict
		}
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, userID, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return r.scanOrder(database.FromContext(ctx, r.db).QueryRow(ctx, query, orderID, userID))
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND idempotency_key = $2`
	return r.scanOrder(database.FromContext(ctx, r.db).QueryRow(ctx, query, userID, key))
}

func (r *Repository) ListByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Order, int, error) {
	q := database.FromContext(ctx, r.db)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID: count: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := q.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUserID: %w", err)
	}
	defer rows.Close()

	var out []*models.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// scanOrder reads one row; items, fee_breakdown and address_snapshot are
// jsonb columns decoded straight into the model.
func (r *Repository) scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Items, &o.ItemsTotal, &o.DeliveryFee, &o.FeeBreakdown,
		&o.Discount, &o.GrandTotal, &o.AddressSnapshot, &o.PaymentMethod,
		&o.PaymentStatus, &o.Status, &o.IdempotencyKey, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.scanOrder: %w", err)
	}
	return &o, nil
}
