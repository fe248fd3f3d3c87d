package district

import (
	"context"
	"errors"
	"fmt"

	"cs-store-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persisted fallback store behind FallbackStoreInterface.
// Rows are seeded by misc/import-pincodes and by manual corrections; they
// carry raw postal data, overrides are applied by the resolver.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByPincode(ctx context.Context, pincode string) (*models.District, error) {
	query := `
		SELECT pincode, state, postal_district, COALESCE(cities, '{}')
		FROM pincode_directory
		WHERE pincode = $1`

	var d models.District
	err := r.db.QueryRow(ctx, query, pincode).Scan(&d.Pincode, &d.State, &d.PostalDistrict, &d.Cities)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByPincode: %w", err)
	}
	return &d, nil
}

// Upsert inserts or replaces a directory row. Used by the import CLI.
func (r *Repository) Upsert(ctx context.Context, d *models.District) error {
	query := `
		INSERT INTO pincode_directory (pincode, state, postal_district, cities)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pincode) DO UPDATE
		SET state = EXCLUDED.state, postal_district = EXCLUDED.postal_district, cities = EXCLUDED.cities`

	if _, err := r.db.Exec(ctx, query, d.Pincode, d.State, d.PostalDistrict, d.Cities); err != nil {
		return fmt.Errorf("repository.Upsert: %w", err)
	}
	return nil
}
