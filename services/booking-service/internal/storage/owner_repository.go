package storage

import (
	"context"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

type OwnerProfileRepository struct {
	pool *db.Pool
}

func NewOwnerProfileRepository(pool *db.Pool) *OwnerProfileRepository {
	return &OwnerProfileRepository{pool: pool}
}

func (r *OwnerProfileRepository) Get(ctx context.Context, ownerID string) (model.OwnerProfile, error) {
	var p model.OwnerProfile
	err := r.pool.QueryRow(ctx, `
		SELECT owner_id, name, email, mobile_number, business_type, business_name, address, updated_at
		FROM owner_profiles
		WHERE owner_id = $1
	`, ownerID).Scan(&p.OwnerID, &p.Name, &p.Email, &p.MobileNumber, &p.BusinessType, &p.BusinessName, &p.Address, &p.UpdatedAt)
	if db.IsNotFound(err) {
		return model.OwnerProfile{}, ErrNotFound
	}
	return p, err
}

// Upsert stores p unless a newer version of the profile is already present.
func (r *OwnerProfileRepository) Upsert(ctx context.Context, q db.Querier, p model.OwnerProfile) error {
	_, err := q.Exec(ctx, `
		INSERT INTO owner_profiles (owner_id, name, email, mobile_number, business_type, business_name, address, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id) DO UPDATE
		SET name = EXCLUDED.name,
			email = EXCLUDED.email,
			mobile_number = EXCLUDED.mobile_number,
			business_type = EXCLUDED.business_type,
			business_name = EXCLUDED.business_name,
			address = EXCLUDED.address,
			updated_at = EXCLUDED.updated_at
		WHERE owner_profiles.updated_at <= EXCLUDED.updated_at
	`, p.OwnerID, p.Name, p.Email, p.MobileNumber, p.BusinessType, p.BusinessName, p.Address, p.UpdatedAt)
	return err
}
