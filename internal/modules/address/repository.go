// Package address manages the saved address book: geocoding at save time,
// single-default enforcement, and the lookups placement depends on.
package address

import (
	"context"
	"errors"
	"fmt"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/platform/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is consumed by the address service, the fee preview
// handler and the order coordinator.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID, addressID string) (*models.Address, error)
	FindDefault(ctx context.Context, userID string) (*models.Address, error)
	List(ctx context.Context, userID string) ([]*models.Address, error)
	Save(ctx context.Context, addr *models.Address) error
	Delete(ctx context.Context, userID, addressID string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const addressColumns = `
	id, user_id, name, phone, line, city, state, pincode,
	COALESCE(postal_district, ''), COALESCE(admin_district, ''),
	lat, lng, coords_source, is_default, created_at, updated_at`

func (r *Repository) FindByID(ctx context.Context, userID, addressID string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	return r.scanOne(database.FromContext(ctx, r.db).QueryRow(ctx, query, addressID, userID))
}

func (r *Repository) FindDefault(ctx context.Context, userID string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND is_default`
	return r.scanOne(database.FromContext(ctx, r.db).QueryRow(ctx, query, userID))
}

func (r *Repository) List(ctx context.Context, userID string) ([]*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at`
	rows, err := database.FromContext(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var out []*models.Address
	for rows.Next() {
		a, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Save upserts the address. When IsDefault is set, the other rows of the
// account lose the flag in the same call, keeping exactly one default.
func (r *Repository) Save(ctx context.Context, addr *models.Address) error {
	q := database.FromContext(ctx, r.db)

	if addr.IsDefault {
		_, err := q.Exec(ctx, `UPDATE addresses SET is_default = false WHERE user_id = $1 AND id <> $2`,
			addr.UserID, addr.ID)
		if err != nil {
			return fmt.Errorf("repository.Save: clear default: %w", err)
		}
	}

	query := `
		INSERT INTO addresses (id, user_id, name, phone, line, city, state, pincode,
			postal_district, admin_district, lat, lng, coords_source, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, phone = EXCLUDED.phone, line = EXCLUDED.line,
			city = EXCLUDED.city, state = EXCLUDED.state, pincode = EXCLUDED.pincode,
			postal_district = EXCLUDED.postal_district, admin_district = EXCLUDED.admin_district,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng, coords_source = EXCLUDED.coords_source,
			is_default = EXCLUDED.is_default, updated_at = now()`

	_, err := q.Exec(ctx, query,
		addr.ID, addr.UserID, addr.Name, addr.Phone, addr.Line, addr.City, addr.State, addr.Pincode,
		addr.PostalDistrict, addr.AdminDistrict, addr.Lat, addr.Lng, addr.CoordsSource, addr.IsDefault)
	if err != nil {
		return fmt.Errorf("repository.Save: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userID, addressID string) error {
	tag, err := database.FromContext(ctx, r.db).
		Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (*models.Address, error) {
	var a models.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Phone, &a.Line, &a.City, &a.State, &a.Pincode,
		&a.PostalDistrict, &a.AdminDistrict, &a.Lat, &a.Lng, &a.CoordsSource, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.scanOne: %w", err)
	}
	return &a, nil
}
