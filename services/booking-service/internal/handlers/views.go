package handlers

import (
	"time"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

type timeView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type installmentView struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Status string  `json:"status"`
}

type ownerView struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	BusinessType string `json:"businessType"`
	BusinessName string `json:"businessName"`
	Address      string `json:"address"`
}

type bookingView struct {
	ID           string            `json:"_id"`
	UserID       string            `json:"userId"`
	Kind         model.Kind        `json:"kind"`
	CustomerName *string           `json:"customerName,omitempty"`
	MobileNumber *string           `json:"mobilenu,omitempty"`
	Date         string            `json:"date,omitempty"`
	DateRange    []string          `json:"dateRange,omitempty"`
	Time         *timeView         `json:"time,omitempty"`
	TotalHours   *string           `json:"totalHours,omitempty"`
	Item         []string          `json:"item"`
	Session      string            `json:"session,omitempty"`
	PaymentType  string            `json:"paymentType,omitempty"`
	Installment  []installmentView `json:"installment"`
	Amount       *float64          `json:"amount"`
	Advance      *float64          `json:"advance"`
	Pending      *float64          `json:"pending"`
	Payment      string            `json:"payment"`
	Description  *string           `json:"description,omitempty"`
	Note         *string           `json:"note,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	OwnerData    *ownerView        `json:"ownerData,omitempty"`
}

func newBookingView(b model.Booking) bookingView {
	v := bookingView{
		ID:           b.ID,
		UserID:       b.OwnerID,
		Kind:         b.Kind(),
		CustomerName: b.CustomerName,
		MobileNumber: b.MobileNumber,
		TotalHours:   b.TotalHours,
		Item:         b.Schedule.Items,
		PaymentType:  string(b.PaymentType),
		Installment:  make([]installmentView, 0, len(b.Installments)),
		Amount:       b.Amount,
		Advance:      b.Advance,
		Pending:      b.Pending,
		Payment:      string(b.Payment),
		Description:  b.Description,
		Note:         b.Note,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if v.Item == nil {
		v.Item = []string{}
	}
	switch v.Kind {
	case model.KindDaily:
		v.DateRange = []string{clock.FormatDate(b.Schedule.Range.Start), clock.FormatDate(b.Schedule.Range.End)}
		v.Session = b.Schedule.Session
	default:
		v.Date = clock.FormatDate(b.Schedule.Date)
		v.Time = &timeView{
			Start: clock.FormatWallClock(b.Schedule.Time.Start),
			End:   clock.FormatWallClock(b.Schedule.Time.End),
		}
	}
	for _, it := range b.Installments {
		v.Installment = append(v.Installment, installmentView{
			Amount: it.Amount,
			Date:   clock.FormatDate(it.DueDate),
			Status: string(it.Status),
		})
	}
	return v
}

func newBookingViews(list []model.Booking) []bookingView {
	out := make([]bookingView, 0, len(list))
	for _, b := range list {
		out = append(out, newBookingView(b))
	}
	return out
}

func newOwnerView(p model.OwnerProfile) *ownerView {
	return &ownerView{
		ID:           p.OwnerID,
		Name:         p.Name,
		Email:        p.Email,
		MobileNumber: p.MobileNumber,
		BusinessType: p.BusinessType,
		BusinessName: p.BusinessName,
		Address:      p.Address,
	}
}

type expenseView struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newExpenseView(e model.Expense) expenseView {
	return expenseView{
		ID:          e.ID,
		UserID:      e.OwnerID,
		Date:        clock.FormatDate(e.Date),
		Description: e.Description,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func newExpenseViews(list []model.Expense) []expenseView {
	out := make([]expenseView, 0, len(list))
	for _, e := range list {
		out = append(out, newExpenseView(e))
	}
	return out
}
