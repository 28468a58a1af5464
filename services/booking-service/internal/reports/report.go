package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

type BookingSource interface {
	PaidBetween(ctx context.Context, ownerID string, first, last time.Time) ([]model.Booking, error)
}

type ExpenseSource interface {
	ListBetween(ctx context.Context, ownerID string, first, last time.Time) ([]model.Expense, error)
}

// Summary is an owner's paid income against expenses for one calendar month.
type Summary struct {
	First        time.Time
	Last         time.Time
	Bookings     []model.Booking
	TotalIncome  float64
	Expenses     []model.Expense
	TotalExpense float64
	ProfitOrLoss float64
}

// Label renders the month as "June 2024".
func (s Summary) Label() string {
	return s.First.Format("January 2006")
}

type Service struct {
	bookings BookingSource
	expenses ExpenseSource
}

func NewService(bookings BookingSource, expenses ExpenseSource) *Service {
	return &Service{bookings: bookings, expenses: expenses}
}

// Monthly builds the summary for the month [first, last]. A daily booking's amount
// belongs to the month its range starts in, so a range spanning two months is
// counted once.
func (s *Service) Monthly(ctx context.Context, ownerID string, first, last time.Time) (Summary, error) {
	paid, err := s.bookings.PaidBetween(ctx, ownerID, first, last)
	if err != nil {
		return Summary{}, fmt.Errorf("load paid bookings: %w", err)
	}
	spent, err := s.expenses.ListBetween(ctx, ownerID, first, last)
	if err != nil {
		return Summary{}, fmt.Errorf("load expenses: %w", err)
	}

	sum := Summary{First: first, Last: last, Expenses: spent}
	for _, b := range paid {
		if d := IncomeDay(b); !d.Before(first) && !d.After(last) {
			sum.Bookings = append(sum.Bookings, b)
		}
	}
	for _, b := range sum.Bookings {
		if b.Amount != nil {
			sum.TotalIncome += *b.Amount
		}
	}
	for _, e := range spent {
		sum.TotalExpense += e.Amount
	}
	sum.ProfitOrLoss = sum.TotalIncome - sum.TotalExpense
	return sum, nil
}

// IncomeDay is the day a booking's income is reported on: the booking date for
// hourly bookings and the first day of the range for daily ones.
func IncomeDay(b model.Booking) time.Time {
	if b.Kind() == model.KindDaily {
		return b.Schedule.Range.Start
	}
	return b.Schedule.Date
}
