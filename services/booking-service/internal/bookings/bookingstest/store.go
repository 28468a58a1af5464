// Package bookingstest provides an in-memory bookings.Store for tests.
package bookingstest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/bookings"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/conflict"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

// Store keeps bookings in memory. Transactions run one at a time and only commit
// when the callback succeeds.
type Store struct {
	mu          sync.Mutex
	bookings    []model.Booking
	finderCalls int
}

var _ bookings.Store = (*Store)(nil)

func NewStore(seed ...model.Booking) *Store {
	s := &Store{}
	for _, b := range seed {
		s.bookings = append(s.bookings, b.Clone())
	}
	return s
}

// FinderCalls counts conflict searches run through transactions.
func (s *Store) FinderCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finderCalls
}

// Snapshot returns the stored copy of id.
func (s *Store) Snapshot(id string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return b.Clone(), true
		}
	}
	return model.Booking{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) InOwnerTx(ctx context.Context, _ string, fn func(ctx context.Context, tx bookings.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	for _, b := range s.bookings {
		tx.staged = append(tx.staged, b.Clone())
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.bookings = tx.staged
	return nil
}

func (s *Store) Get(_ context.Context, id string) (model.Booking, error) {
	if b, ok := s.Snapshot(id); ok {
		return b, nil
	}
	return model.Booking{}, bookings.ErrNotFound
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.OwnerID == ownerID {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookings {
		if b.ID == id && b.OwnerID == ownerID {
			s.bookings = append(s.bookings[:i:i], s.bookings[i+1:]...)
			return nil
		}
	}
	return bookings.ErrNotFound
}

// HourlyWindowsOn mirrors the availability query of the PostgreSQL store.
func (s *Store) HourlyWindowsOn(_ context.Context, ownerID, item string, day time.Time) ([]model.TimeWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TimeWindow
	for _, b := range s.bookings {
		if b.OwnerID == ownerID && b.Kind() == model.KindHourly && b.Schedule.Date.Equal(day) && slices.Contains(b.Schedule.Items, item) {
			out = append(out, b.Schedule.Time)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// PaidBetween mirrors the monthly report query of the PostgreSQL store.
func (s *Store) PaidBetween(_ context.Context, ownerID string, first, last time.Time) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.OwnerID != ownerID || b.Payment != model.PaymentPaid {
			continue
		}
		dated := b.Schedule.Date
		if b.Kind() == model.KindDaily {
			dated = b.Schedule.Range.Start
		}
		if !dated.Before(first) && !dated.After(last) {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

type memTx struct {
	store  *Store
	staged []model.Booking
}

func (t *memTx) HasHourlyOverlap(_ context.Context, q conflict.HourlyQuery) (bool, error) {
	t.store.finderCalls++
	for _, b := range t.staged {
		if conflict.HourlyMatches(b, q) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) HasDailyOverlap(_ context.Context, q conflict.DailyQuery) (bool, error) {
	t.store.finderCalls++
	for _, b := range t.staged {
		if conflict.DailyMatches(b, q) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) GetForUpdate(_ context.Context, ownerID, id string) (model.Booking, error) {
	for _, b := range t.staged {
		if b.ID == id && b.OwnerID == ownerID {
			return b.Clone(), nil
		}
	}
	return model.Booking{}, bookings.ErrNotFound
}

func (t *memTx) Insert(_ context.Context, b model.Booking) error {
	t.staged = append(t.staged, b.Clone())
	return nil
}

func (t *memTx) Update(_ context.Context, b model.Booking) error {
	for i := range t.staged {
		if t.staged[i].ID == b.ID {
			t.staged[i] = b.Clone()
			return nil
		}
	}
	return bookings.ErrNotFound
}
