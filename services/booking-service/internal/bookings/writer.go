package bookings

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/conflict"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/google/uuid"
)

// Store persists bookings. InOwnerTx serialises writers per owner, so a conflict
// search and the write that follows it cannot interleave with another writer's.
type Store interface {
	InOwnerTx(ctx context.Context, ownerID string, fn func(ctx context.Context, tx Tx) error) error
	Get(ctx context.Context, id string) (model.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Tx is the view of the store inside an owner transaction.
type Tx interface {
	conflict.Finder
	GetForUpdate(ctx context.Context, ownerID, id string) (model.Booking, error)
	Insert(ctx context.Context, b model.Booking) error
	Update(ctx context.Context, b model.Booking) error
}

// Recorder receives write outcomes, typically for metrics.
type Recorder interface {
	BookingWritten(op string, kind model.Kind)
	ConflictDetected(kind model.Kind)
	ConflictCheckSkipped()
}

type nopRecorder struct{}

func (nopRecorder) BookingWritten(string, model.Kind) {}
func (nopRecorder) ConflictDetected(model.Kind)       {}
func (nopRecorder) ConflictCheckSkipped()             {}

type Writer struct {
	store   Store
	checker *conflict.Checker
	clock   *clock.Clock
	logger  *slog.Logger
	metrics Recorder
	newID   func() string
}

type Option func(*Writer)

func WithRecorder(r Recorder) Option {
	return func(w *Writer) {
		if r != nil {
			w.metrics = r
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(w *Writer) { w.newID = fn }
}

func NewWriter(store Store, checker *conflict.Checker, clk *clock.Clock, logger *slog.Logger, opts ...Option) *Writer {
	w := &Writer{
		store:   store,
		checker: checker,
		clock:   clk,
		logger:  logger,
		metrics: nopRecorder{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Create validates f for the given kind, rejects it when it collides with an existing
// booking of the owner, and stores it otherwise.
func (w *Writer) Create(ctx context.Context, ownerID string, kind model.Kind, f Fields) (model.Booking, error) {
	p, err := w.parse(f)
	if err != nil {
		return model.Booking{}, err
	}

	sched, err := p.overlay(model.Schedule{Kind: kind})
	if err != nil {
		return model.Booking{}, err
	}
	if err := validateSchedule(sched); err != nil {
		return model.Booking{}, err
	}

	now := w.clock.Now()
	b := model.Booking{
		ID:           w.newID(),
		OwnerID:      ownerID,
		CustomerName: f.CustomerName,
		MobileNumber: f.MobileNumber,
		Schedule:     sched,
		TotalHours:   f.TotalHours,
		Amount:       f.Amount,
		Advance:      f.Advance,
		Pending:      f.Pending,
		Description:  f.Description,
		Note:         f.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.paymentType != nil {
		b.PaymentType = *p.paymentType
	}
	if b.PaymentType.Effective() == model.PaymentInstallment {
		if p.installments == nil || len(*p.installments) == 0 {
			return model.Booking{}, invalidf("at least one installment is required")
		}
		b.Installments = *p.installments
	}
	if b.Amount != nil && b.Advance != nil {
		pending := math.Max(*b.Amount-*b.Advance, 0)
		b.Pending = &pending
	}
	if b.TotalHours == nil && kind == model.KindHourly {
		hours := clock.TotalHours(sched.Time.Duration())
		b.TotalHours = &hours
	}
	b.Payment = DeriveOnCreate(b)

	err = w.store.InOwnerTx(ctx, ownerID, func(ctx context.Context, tx Tx) error {
		if err := w.ensureFree(ctx, tx, conflict.Request{OwnerID: ownerID, Schedule: sched}); err != nil {
			return err
		}
		return tx.Insert(ctx, b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	w.metrics.BookingWritten("create", kind)
	return b, nil
}

// Update applies the present fields of f to the owner's booking id. The conflict
// search runs only when f moves the booking; otherwise scheduling fields stay as
// stored. fullyPaid settles the balance.
func (w *Writer) Update(ctx context.Context, ownerID, id string, f Fields, fullyPaid bool) (model.Booking, error) {
	p, err := w.parse(f)
	if err != nil {
		return model.Booking{}, err
	}

	var out model.Booking
	err = w.store.InOwnerTx(ctx, ownerID, func(ctx context.Context, tx Tx) error {
		prior, err := tx.GetForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		next := prior.Clone()

		rechecked := false
		if f.touchesSchedule() {
			sched, err := p.overlay(prior.Schedule)
			if err != nil {
				return err
			}
			if conflict.Changed(prior.Schedule, sched) {
				if err := validateSchedule(sched); err != nil {
					return err
				}
				if err := w.ensureFree(ctx, tx, conflict.Request{OwnerID: ownerID, Schedule: sched, ExcludeID: id}); err != nil {
					return err
				}
				next.Schedule = sched
				if f.TotalHours == nil && sched.Kind == model.KindHourly {
					hours := clock.TotalHours(sched.Time.Duration())
					next.TotalHours = &hours
				}
				rechecked = true
			}
		}
		if !rechecked {
			w.metrics.ConflictCheckSkipped()
		}

		applyDetails(&next, f, p)
		next.Payment = DeriveOnUpdate(&next, fullyPaid)
		next.UpdatedAt = w.clock.Now()

		if err := tx.Update(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	w.metrics.BookingWritten("update", out.Kind())
	return out, nil
}

func (w *Writer) Delete(ctx context.Context, ownerID, id string) error {
	if err := w.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	w.metrics.BookingWritten("delete", "")
	return nil
}

func (w *Writer) Get(ctx context.Context, id string) (model.Booking, error) {
	return w.store.Get(ctx, id)
}

func (w *Writer) List(ctx context.Context, ownerID string) ([]model.Booking, error) {
	return w.store.ListByOwner(ctx, ownerID)
}

func (w *Writer) ensureFree(ctx context.Context, tx Tx, req conflict.Request) error {
	found, err := w.checker.Conflicts(ctx, tx, req)
	if err != nil {
		return err
	}
	if found {
		w.metrics.ConflictDetected(req.Schedule.Kind)
		w.logger.Info("booking conflict",
			"owner_id", req.OwnerID,
			"kind", req.Schedule.Kind,
			"items", req.Schedule.Items,
			"exclude_id", req.ExcludeID,
		)
		return ErrConflict
	}
	return nil
}

// applyDetails copies the non-scheduling fields present in f onto b.
func applyDetails(b *model.Booking, f Fields, p parsed) {
	if f.CustomerName != nil {
		b.CustomerName = f.CustomerName
	}
	if f.MobileNumber != nil {
		b.MobileNumber = f.MobileNumber
	}
	if f.TotalHours != nil {
		b.TotalHours = f.TotalHours
	}
	if f.Description != nil {
		b.Description = f.Description
	}
	if f.Note != nil {
		b.Note = f.Note
	}
	if p.paymentType != nil {
		b.PaymentType = *p.paymentType
	}
	if p.installments != nil && b.PaymentType.Effective() == model.PaymentInstallment {
		b.Installments = *p.installments
	}
	if f.Amount != nil {
		b.Amount = f.Amount
	}
	if f.Advance != nil {
		b.Advance = f.Advance
	}
	if f.Pending != nil {
		b.Pending = f.Pending
	}
}

// parsed holds the typed form of every Fields value that needs parsing. All parsing
// happens before a transaction starts, so a malformed value never reaches storage.
type parsed struct {
	items        []string
	date         *time.Time
	dateRange    *model.DateRange
	window       *model.TimeWindow
	session      *string
	paymentType  *model.PaymentType
	installments *[]model.Installment
}

func (w *Writer) parse(f Fields) (parsed, error) {
	var p parsed

	if f.Items != nil {
		for _, it := range f.Items {
			if it = strings.TrimSpace(it); it != "" {
				p.items = append(p.items, it)
			}
		}
		if len(p.items) == 0 {
			return parsed{}, invalidf("item is required")
		}
	}

	if f.Date != nil {
		d, err := w.clock.ParseDate(*f.Date)
		if err != nil {
			return parsed{}, invalidf("date: %v", err)
		}
		p.date = &d
	}

	if f.DateRange != nil {
		r, err := w.parseRange(f.DateRange)
		if err != nil {
			return parsed{}, err
		}
		p.dateRange = &r
	}

	if f.Time != nil {
		start, err := w.clock.ParseWallClock(f.Time.Start)
		if err != nil {
			return parsed{}, invalidf("time.start: %v", err)
		}
		end, err := w.clock.ParseWallClock(f.Time.End)
		if err != nil {
			return parsed{}, invalidf("time.end: %v", err)
		}
		if start == end {
			return parsed{}, invalidf("time.end must differ from time.start")
		}
		win := model.NewTimeWindow(start, end)
		p.window = &win
	}

	if f.Session != nil {
		s := strings.TrimSpace(*f.Session)
		if s == "" {
			return parsed{}, invalidf("session must not be empty")
		}
		p.session = &s
	}

	if f.PaymentType != nil {
		switch pt := model.PaymentType(strings.TrimSpace(*f.PaymentType)); pt {
		case model.PaymentOneTime, model.PaymentInstallment:
			p.paymentType = &pt
		default:
			return parsed{}, invalidf("paymentType must be %q or %q", model.PaymentOneTime, model.PaymentInstallment)
		}
	}

	if f.Installments != nil {
		list := make([]model.Installment, 0, len(*f.Installments))
		for i, in := range *f.Installments {
			due, err := w.clock.ParseInstallmentDate(in.Date)
			if err != nil {
				return parsed{}, invalidf("installment %d: %v", i+1, err)
			}
			if in.Amount < 0 {
				return parsed{}, invalidf("installment %d: amount must not be negative", i+1)
			}
			status := model.InstallmentStatus(strings.ToLower(strings.TrimSpace(in.Status)))
			switch status {
			case "":
				status = model.InstallmentPending
			case model.InstallmentPending, model.InstallmentComplete:
			default:
				return parsed{}, invalidf("installment %d: status must be %q or %q", i+1, model.InstallmentPending, model.InstallmentComplete)
			}
			list = append(list, model.Installment{Amount: in.Amount, DueDate: due, Status: status})
		}
		p.installments = &list
	}

	money := []struct {
		name string
		v    *float64
	}{{"amount", f.Amount}, {"advance", f.Advance}, {"pending", f.Pending}}
	for _, m := range money {
		if m.v != nil && (*m.v < 0 || math.IsNaN(*m.v) || math.IsInf(*m.v, 0)) {
			return parsed{}, invalidf("%s must be a non-negative number", m.name)
		}
	}
	return p, nil
}

func (w *Writer) parseRange(raw []string) (model.DateRange, error) {
	if len(raw) == 0 || len(raw) > 2 {
		return model.DateRange{}, invalidf("dateRange must hold a start and an end date")
	}
	start, err := w.clock.ParseDate(raw[0])
	if err != nil {
		return model.DateRange{}, invalidf("dateRange start: %v", err)
	}
	end := start
	if len(raw) == 2 {
		end, err = w.clock.ParseDate(raw[1])
		if err != nil {
			return model.DateRange{}, invalidf("dateRange end: %v", err)
		}
	}
	r := model.DateRange{Start: start, End: end}
	if !r.Valid() {
		return model.DateRange{}, invalidf("dateRange end must not be before its start")
	}
	return r, nil
}

// overlay lays the parsed scheduling fields over base. Fields that belong to the
// other booking kind are rejected.
func (p parsed) overlay(base model.Schedule) (model.Schedule, error) {
	s := base
	s.Items = append([]string(nil), base.Items...)
	if p.items != nil {
		s.Items = p.items
	}
	switch s.Kind {
	case model.KindHourly:
		if p.dateRange != nil || p.session != nil {
			return model.Schedule{}, invalidf("hourly bookings take a date and time, not a dateRange or session")
		}
		if p.date != nil {
			s.Date = *p.date
		}
		if p.window != nil {
			s.Time = *p.window
		}
	case model.KindDaily:
		if p.date != nil || p.window != nil {
			return model.Schedule{}, invalidf("daily bookings take a dateRange and session, not a date or time")
		}
		if p.dateRange != nil {
			s.Range = *p.dateRange
		}
		if p.session != nil {
			s.Session = *p.session
		}
	default:
		return model.Schedule{}, invalidf("unknown booking kind %q", s.Kind)
	}
	return s, nil
}

func validateSchedule(s model.Schedule) error {
	if len(s.Items) == 0 {
		return invalidf("item is required")
	}
	switch s.Kind {
	case model.KindHourly:
		if s.Date.IsZero() {
			return invalidf("date is required")
		}
		if s.Time.End <= s.Time.Start {
			return invalidf("time with start and end is required")
		}
	case model.KindDaily:
		if !s.Range.Valid() {
			return invalidf("dateRange is required")
		}
		if s.Session == "" {
			return invalidf("session is required")
		}
	}
	return nil
}
