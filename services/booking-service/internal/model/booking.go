package model

import (
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
)

// Kind selects the scheduling model of a booking.
type Kind string

const (
	KindHourly Kind = "hourly"
	KindDaily  Kind = "daily"
)

// KindForBusinessType maps an owner's configured business type to its booking kind.
func KindForBusinessType(businessType string) Kind {
	return Kind(auth.KindForBusinessType(businessType))
}

func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindHourly:
		return KindHourly, true
	case KindDaily:
		return KindDaily, true
	default:
		return "", false
	}
}

const (
	SessionMorning   = "Morning Session"
	SessionAfternoon = "Afternoon Session"
	SessionEvening   = "Evening Session"
	SessionFullDay   = "Full Day"
)

type PaymentType string

const (
	PaymentOneTime     PaymentType = "one-time"
	PaymentInstallment PaymentType = "installment"
)

// Effective treats an unset payment type as one-time.
func (p PaymentType) Effective() PaymentType {
	if p == PaymentInstallment {
		return PaymentInstallment
	}
	return PaymentOneTime
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPending PaymentStatus = "pending"
)

type InstallmentStatus string

const (
	InstallmentPending  InstallmentStatus = "pending"
	InstallmentComplete InstallmentStatus = "complete"
)

type Installment struct {
	Amount  float64
	DueDate time.Time
	Status  InstallmentStatus
}

// TimeWindow is a wall-clock interval in minutes since midnight, [Start, End).
// End is greater than Start; windows crossing midnight have End above 1440.
type TimeWindow struct {
	Start int
	End   int
}

const MinutesPerDay = 24 * 60

// NewTimeWindow builds a window from two wall-clock readings, wrapping past
// midnight when end is not after start.
func NewTimeWindow(start, end int) TimeWindow {
	if end <= start {
		end += MinutesPerDay
	}
	return TimeWindow{Start: start, End: end}
}

func (w TimeWindow) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Minute
}

// DateRange is a closed interval of calendar days; End may equal Start.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.Before(r.Start)
}

// Schedule holds the fields that place a booking on the calendar. Hourly bookings
// populate Date and Time, daily bookings populate Range and Session.
type Schedule struct {
	Kind    Kind
	Items   []string
	Date    time.Time
	Time    TimeWindow
	Range   DateRange
	Session string
}

type Booking struct {
	ID           string
	OwnerID      string
	CustomerName *string
	MobileNumber *string
	Schedule     Schedule
	TotalHours   *string
	PaymentType  PaymentType
	Amount       *float64
	Advance      *float64
	Pending      *float64
	Installments []Installment
	Payment      PaymentStatus
	Description  *string
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b Booking) Kind() Kind {
	if b.Schedule.Kind != "" {
		return b.Schedule.Kind
	}
	if !b.Schedule.Range.Start.IsZero() {
		return KindDaily
	}
	return KindHourly
}

// Clone returns a copy that shares no slices or pointers with b.
func (b Booking) Clone() Booking {
	out := b
	out.Schedule.Items = append([]string(nil), b.Schedule.Items...)
	out.Installments = append([]Installment(nil), b.Installments...)
	out.CustomerName = cloneString(b.CustomerName)
	out.MobileNumber = cloneString(b.MobileNumber)
	out.TotalHours = cloneString(b.TotalHours)
	out.Description = cloneString(b.Description)
	out.Note = cloneString(b.Note)
	out.Amount = cloneFloat(b.Amount)
	out.Advance = cloneFloat(b.Advance)
	out.Pending = cloneFloat(b.Pending)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
