package storage

import (
	"context"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/jackc/pgx/v5"
)

type ExpenseRepository struct {
	pool *db.Pool
}

func NewExpenseRepository(pool *db.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, owner_id, expense_date, description, amount, created_at, updated_at`

func (r *ExpenseRepository) Create(ctx context.Context, e model.Expense) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.OwnerID, e.Date, e.Description, e.Amount, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *ExpenseRepository) Get(ctx context.Context, ownerID, id string) (model.Expense, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	e, err := scanExpense(row)
	if db.IsNotFound(err) {
		return model.Expense{}, ErrNotFound
	}
	return e, err
}

func (r *ExpenseRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Expense, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE owner_id = $1
		ORDER BY expense_date DESC, created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

// ListBetween returns expenses dated within [first, last], oldest first.
func (r *ExpenseRepository) ListBetween(ctx context.Context, ownerID string, first, last time.Time) ([]model.Expense, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE owner_id = $1 AND expense_date BETWEEN $2 AND $3
		ORDER BY expense_date ASC, created_at ASC
	`, ownerID, first, last)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

func (r *ExpenseRepository) Update(ctx context.Context, e model.Expense) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses
		SET expense_date = $3, description = $4, amount = $5, updated_at = $6
		WHERE id = $1 AND owner_id = $2
	`, e.ID, e.OwnerID, e.Date, e.Description, e.Amount, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanExpense(row pgx.Row) (model.Expense, error) {
	var e model.Expense
	err := row.Scan(&e.ID, &e.OwnerID, &e.Date, &e.Description, &e.Amount, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func collectExpenses(rows pgx.Rows) ([]model.Expense, error) {
	defer rows.Close()
	var out []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
