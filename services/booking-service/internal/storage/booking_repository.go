package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/bookings"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/conflict"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	pool *db.Pool
}

var _ bookings.Store = (*BookingRepository)(nil)

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `id, owner_id, kind, customer_name, mobile_number, items, booking_date, range_start, range_end,
	start_minute, end_minute, session, total_hours, payment_type, amount, advance, pending, installments,
	payment, description, note, created_at, updated_at`

// InOwnerTx runs fn in a transaction holding the owner's advisory lock, so concurrent
// writers for the same owner run their conflict search one after another.
func (r *BookingRepository) InOwnerTx(ctx context.Context, ownerID string, fn func(ctx context.Context, tx bookings.Tx) error) error {
	return r.pool.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := db.AdvisoryXactLock(ctx, tx, "bookings:"+ownerID); err != nil {
			return fmt.Errorf("lock owner bookings: %w", err)
		}
		return fn(ctx, &bookingTx{tx: tx})
	})
}

func (r *BookingRepository) Get(ctx context.Context, id string) (model.Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if db.IsNotFound(err) {
		return model.Booking{}, bookings.ErrNotFound
	}
	return b, err
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *BookingRepository) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return bookings.ErrNotFound
	}
	return nil
}

// HourlyWindowsOn returns the windows already booked for item on day.
func (r *BookingRepository) HourlyWindowsOn(ctx context.Context, ownerID, item string, day time.Time) ([]model.TimeWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_minute, end_minute
		FROM bookings
		WHERE owner_id = $1
			AND kind = 'hourly'
			AND $2 = ANY(items)
			AND booking_date = $3
		ORDER BY start_minute ASC
	`, ownerID, item, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []model.TimeWindow
	for rows.Next() {
		var w model.TimeWindow
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return windows, nil
}

// PaidBetween lists the owner's paid bookings dated in [first, last]. Daily bookings
// are dated by the first day of their range.
func (r *BookingRepository) PaidBetween(ctx context.Context, ownerID string, first, last time.Time) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE owner_id = $1
			AND payment = 'paid'
			AND (
				(kind = 'hourly' AND booking_date BETWEEN $2 AND $3)
				OR (kind = 'daily' AND range_start BETWEEN $2 AND $3)
			)
		ORDER BY COALESCE(booking_date, range_start) ASC, id ASC
	`, ownerID, first, last)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

type bookingTx struct {
	tx pgx.Tx
}

// HasHourlyOverlap compares windows on the minute axis of q.Date, shifting bookings
// from the adjacent dates by a day so overnight windows collide across midnight.
func (t *bookingTx) HasHourlyOverlap(ctx context.Context, q conflict.HourlyQuery) (bool, error) {
	var found bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM bookings,
				LATERAL (SELECT (booking_date - $3::date) * 1440 AS shift) aligned
			WHERE owner_id = $1
				AND kind = 'hourly'
				AND items && $2::text[]
				AND booking_date BETWEEN $3::date - 1 AND $3::date + 1
				AND (
					(start_minute + aligned.shift < $5 AND end_minute + aligned.shift > $4)
					OR (start_minute + aligned.shift >= $4 AND end_minute + aligned.shift <= $5)
				)
				AND ($6 = '' OR id <> $6)
		)
	`, q.OwnerID, q.Items, q.Date, q.Window.Start, q.Window.End, q.ExcludeID).Scan(&found)
	return found, err
}

func (t *bookingTx) HasDailyOverlap(ctx context.Context, q conflict.DailyQuery) (bool, error) {
	var found bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM bookings
			WHERE owner_id = $1
				AND kind = 'daily'
				AND items && $2::text[]
				AND session = ANY($3::text[])
				AND range_start <= $5
				AND range_end >= $4
				AND ($6 = '' OR id <> $6)
		)
	`, q.OwnerID, q.Items, q.Sessions, q.Range.Start, q.Range.End, q.ExcludeID).Scan(&found)
	return found, err
}

func (t *bookingTx) GetForUpdate(ctx context.Context, ownerID, id string) (model.Booking, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, id, ownerID)
	b, err := scanBooking(row)
	if db.IsNotFound(err) {
		return model.Booking{}, bookings.ErrNotFound
	}
	return b, err
}

func (t *bookingTx) Insert(ctx context.Context, b model.Booking) error {
	args, err := bookingArgs(b)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23)
	`, args...)
	return err
}

func (t *bookingTx) Update(ctx context.Context, b model.Booking) error {
	args, err := bookingArgs(b)
	if err != nil {
		return err
	}
	// created_at is immutable; drop it and bind updated_at as $22.
	args = append(args[:21:21], b.UpdatedAt)
	tag, err := t.tx.Exec(ctx, `
		UPDATE bookings
		SET kind = $3,
			customer_name = $4,
			mobile_number = $5,
			items = $6,
			booking_date = $7,
			range_start = $8,
			range_end = $9,
			start_minute = $10,
			end_minute = $11,
			session = $12,
			total_hours = $13,
			payment_type = $14,
			amount = $15,
			advance = $16,
			pending = $17,
			installments = $18,
			payment = $19,
			description = $20,
			note = $21,
			updated_at = $22
		WHERE id = $1 AND owner_id = $2
	`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return bookings.ErrNotFound
	}
	return nil
}

type installmentRow struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Status string  `json:"status"`
}

// bookingArgs flattens b in bookingColumns order. Fields of the other kind are NULL.
func bookingArgs(b model.Booking) ([]any, error) {
	rows := make([]installmentRow, 0, len(b.Installments))
	for _, it := range b.Installments {
		rows = append(rows, installmentRow{Amount: it.Amount, Date: clock.FormatDate(it.DueDate), Status: string(it.Status)})
	}
	installments, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}

	s := b.Schedule
	var (
		date, rangeStart, rangeEnd *time.Time
		startMin, endMin           *int
		session                    *string
	)
	switch b.Kind() {
	case model.KindHourly:
		date = &s.Date
		startMin, endMin = &s.Time.Start, &s.Time.End
	case model.KindDaily:
		rangeStart, rangeEnd = &s.Range.Start, &s.Range.End
		session = &s.Session
	}
	var paymentType *string
	if b.PaymentType != "" {
		pt := string(b.PaymentType)
		paymentType = &pt
	}

	return []any{
		b.ID, b.OwnerID, string(b.Kind()), b.CustomerName, b.MobileNumber, s.Items,
		date, rangeStart, rangeEnd, startMin, endMin, session,
		b.TotalHours, paymentType, b.Amount, b.Advance, b.Pending, installments,
		string(b.Payment), b.Description, b.Note, b.CreatedAt, b.UpdatedAt,
	}, nil
}

func scanBooking(row pgx.Row) (model.Booking, error) {
	var (
		b                          model.Booking
		kind, payment              string
		date, rangeStart, rangeEnd *time.Time
		startMin, endMin           *int
		session, paymentType       *string
		installments               []byte
	)
	err := row.Scan(
		&b.ID, &b.OwnerID, &kind, &b.CustomerName, &b.MobileNumber, &b.Schedule.Items,
		&date, &rangeStart, &rangeEnd, &startMin, &endMin, &session,
		&b.TotalHours, &paymentType, &b.Amount, &b.Advance, &b.Pending, &installments,
		&payment, &b.Description, &b.Note, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}

	b.Schedule.Kind = model.Kind(kind)
	b.Payment = model.PaymentStatus(payment)
	if paymentType != nil {
		b.PaymentType = model.PaymentType(*paymentType)
	}
	if date != nil {
		b.Schedule.Date = *date
	}
	if rangeStart != nil && rangeEnd != nil {
		b.Schedule.Range = model.DateRange{Start: *rangeStart, End: *rangeEnd}
	}
	if startMin != nil && endMin != nil {
		b.Schedule.Time = model.TimeWindow{Start: *startMin, End: *endMin}
	}
	if session != nil {
		b.Schedule.Session = *session
	}

	var rows []installmentRow
	if len(installments) > 0 {
		if err := json.Unmarshal(installments, &rows); err != nil {
			return model.Booking{}, fmt.Errorf("decode installments of %s: %w", b.ID, err)
		}
	}
	for _, it := range rows {
		due, err := time.Parse(clock.DateLayout, it.Date)
		if err != nil {
			return model.Booking{}, fmt.Errorf("decode installment date of %s: %w", b.ID, err)
		}
		b.Installments = append(b.Installments, model.Installment{
			Amount:  it.Amount,
			DueDate: due,
			Status:  model.InstallmentStatus(it.Status),
		})
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
