package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/libs/events"
	"github.com/DrashtiGohil19/bookingcrown/services/account-service/internal/outbox"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound   = errors.New("owner not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Owner is a venue owner account.
type Owner struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Name         string
	MobileNumber string
	BusinessType string
	BusinessName string
	Address      string
	ItemList     []string
	SessionList  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OwnerRepository struct {
	pool *db.Pool
}

func NewOwnerRepository(pool *db.Pool) *OwnerRepository {
	return &OwnerRepository{pool: pool}
}

const ownerColumns = `id, email, password_hash, role, name, mobile_number, business_type, business_name,
	address, item_list, session_list, created_at, updated_at`

// Create inserts o and queues its profile event in the same transaction.
func (r *OwnerRepository) Create(ctx context.Context, o Owner) error {
	return r.pool.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO owners (`+ownerColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, o.ID, o.Email, o.PasswordHash, o.Role, o.Name, o.MobileNumber, o.BusinessType, o.BusinessName,
			o.Address, nonNil(o.ItemList), nonNil(o.SessionList), o.CreatedAt, o.UpdatedAt)
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		if err != nil {
			return err
		}
		return queueOwnerUpdated(ctx, tx, o)
	})
}

func (r *OwnerRepository) GetByEmail(ctx context.Context, email string) (Owner, error) {
	return scanOwner(r.pool.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owners WHERE lower(email) = lower($1)`, email))
}

func (r *OwnerRepository) GetByID(ctx context.Context, id string) (Owner, error) {
	return scanOwner(r.pool.QueryRow(ctx, `SELECT `+ownerColumns+` FROM owners WHERE id = $1`, id))
}

// UpdateProfile replaces the editable profile fields of o.ID and queues the new profile.
func (r *OwnerRepository) UpdateProfile(ctx context.Context, o Owner) (Owner, error) {
	var updated Owner
	err := r.pool.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		updated, err = scanOwner(tx.QueryRow(ctx, `
			UPDATE owners
			SET name = $2, email = $3, mobile_number = $4, business_type = $5, business_name = $6,
				address = $7, item_list = $8, session_list = $9, updated_at = $10
			WHERE id = $1
			RETURNING `+ownerColumns,
			o.ID, o.Name, o.Email, o.MobileNumber, o.BusinessType, o.BusinessName, o.Address,
			nonNil(o.ItemList), nonNil(o.SessionList), o.UpdatedAt))
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		if err != nil {
			return err
		}
		return queueOwnerUpdated(ctx, tx, updated)
	})
	return updated, err
}

func (r *OwnerRepository) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE owners SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, id, hash, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func queueOwnerUpdated(ctx context.Context, tx pgx.Tx, o Owner) error {
	payload, err := json.Marshal(OwnerEvent(o))
	if err != nil {
		return err
	}
	return outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "owner",
		AggregateID:   o.ID,
		EventType:     events.OwnerUpdatedV1,
		Payload:       payload,
	})
}

// OwnerEvent is the public projection of o carried to other services.
func OwnerEvent(o Owner) events.OwnerUpdated {
	return events.OwnerUpdated{
		OwnerID:      o.ID,
		Name:         o.Name,
		Email:        o.Email,
		MobileNumber: o.MobileNumber,
		BusinessType: o.BusinessType,
		BusinessName: o.BusinessName,
		Address:      o.Address,
		UpdatedAt:    o.UpdatedAt.UTC(),
	}
}

func scanOwner(row pgx.Row) (Owner, error) {
	var o Owner
	err := row.Scan(&o.ID, &o.Email, &o.PasswordHash, &o.Role, &o.Name, &o.MobileNumber, &o.BusinessType,
		&o.BusinessName, &o.Address, &o.ItemList, &o.SessionList, &o.CreatedAt, &o.UpdatedAt)
	if db.IsNotFound(err) {
		return Owner{}, ErrNotFound
	}
	return o, err
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
