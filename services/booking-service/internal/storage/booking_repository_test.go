package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/db"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/bookings"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/bookings/bookingstest"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/conflict"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/google/uuid"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func hm(h, m int) int { return h*60 + m }

func seedBookings(ownerID string) []model.Booking {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	hourly := func(id, item, day string, start, end int) model.Booking {
		return model.Booking{
			ID: id, OwnerID: ownerID, Payment: model.PaymentPending, CreatedAt: at, UpdatedAt: at,
			Schedule: model.Schedule{Kind: model.KindHourly, Items: []string{item}, Date: date(day), Time: model.NewTimeWindow(start, end)},
		}
	}
	daily := func(id string, items []string, from, to, session string) model.Booking {
		return model.Booking{
			ID: id, OwnerID: ownerID, Payment: model.PaymentPending, CreatedAt: at, UpdatedAt: at,
			Schedule: model.Schedule{Kind: model.KindDaily, Items: items, Range: model.DateRange{Start: date(from), End: date(to)}, Session: session},
		}
	}
	return []model.Booking{
		hourly(ownerID+"-night", "Turf A", "2024-06-01", hm(23, 0), hm(2, 0)),
		hourly(ownerID+"-day", "Turf A", "2024-06-05", hm(10, 0), hm(12, 0)),
		daily(ownerID+"-farm", []string{"Farm X", "Farm Y"}, "2024-06-10", "2024-06-12", model.SessionFullDay),
		daily(ownerID+"-hall", []string{"Hall"}, "2024-06-20", "2024-06-20", model.SessionMorning),
	}
}

type overlapCase struct {
	name   string
	hourly *conflict.HourlyQuery
	daily  *conflict.DailyQuery
	want   bool
}

func overlapCases(ownerID string) []overlapCase {
	h := func(item, day string, start, end int, exclude string) *conflict.HourlyQuery {
		return &conflict.HourlyQuery{OwnerID: ownerID, Items: []string{item}, Date: date(day), Window: model.NewTimeWindow(start, end), ExcludeID: exclude}
	}
	d := func(item, from, to, session, exclude string) *conflict.DailyQuery {
		return &conflict.DailyQuery{
			OwnerID: ownerID, Items: []string{item}, Range: model.DateRange{Start: date(from), End: date(to)},
			Sessions: conflict.ConflictingSessions(session), ExcludeID: exclude,
		}
	}
	return []overlapCase{
		{name: "hourly nested", hourly: h("Turf A", "2024-06-05", hm(10, 30), hm(11, 30), ""), want: true},
		{name: "hourly enclosing", hourly: h("Turf A", "2024-06-05", hm(9, 0), hm(13, 0), ""), want: true},
		{name: "hourly adjacent", hourly: h("Turf A", "2024-06-05", hm(12, 0), hm(13, 0), ""), want: false},
		{name: "hourly other item", hourly: h("Turf B", "2024-06-05", hm(10, 0), hm(12, 0), ""), want: false},
		{name: "hourly excluded self", hourly: h("Turf A", "2024-06-05", hm(10, 0), hm(11, 0), ownerID+"-day"), want: false},
		{name: "hourly same night", hourly: h("Turf A", "2024-06-01", hm(23, 30), hm(0, 30), ""), want: true},
		{name: "hourly spill into next date", hourly: h("Turf A", "2024-06-02", hm(0, 30), hm(1, 30), ""), want: true},
		{name: "hourly after spill ends", hourly: h("Turf A", "2024-06-02", hm(2, 0), hm(4, 0), ""), want: false},
		{name: "hourly overnight into next date", hourly: h("Turf A", "2024-06-04", hm(22, 0), hm(10, 30), ""), want: true},
		{name: "hourly two dates away", hourly: h("Turf A", "2024-06-03", hm(0, 0), hm(1, 0), ""), want: false},
		{name: "daily morning inside full day", daily: d("Farm Y", "2024-06-12", "2024-06-14", model.SessionMorning, ""), want: true},
		{name: "daily boundary day", daily: d("Farm X", "2024-06-08", "2024-06-10", model.SessionEvening, ""), want: true},
		{name: "daily after range", daily: d("Farm X", "2024-06-13", "2024-06-13", model.SessionFullDay, ""), want: false},
		{name: "daily afternoon ignores full day", daily: d("Farm X", "2024-06-11", "2024-06-11", model.SessionAfternoon, ""), want: false},
		{name: "daily evening beside morning", daily: d("Hall", "2024-06-20", "2024-06-20", model.SessionEvening, ""), want: false},
		{name: "daily full day over morning", daily: d("Hall", "2024-06-19", "2024-06-21", model.SessionFullDay, ""), want: true},
		{name: "daily excluded self", daily: d("Hall", "2024-06-20", "2024-06-20", model.SessionMorning, ownerID+"-hall"), want: false},
	}
}

// runOverlapCases checks every case against store. Both stores must agree on the same table.
func runOverlapCases(t *testing.T, store bookings.Store, ownerID string) {
	t.Helper()
	ctx := context.Background()
	for _, tc := range overlapCases(ownerID) {
		var got bool
		err := store.InOwnerTx(ctx, ownerID, func(ctx context.Context, tx bookings.Tx) error {
			var err error
			if tc.hourly != nil {
				got, err = tx.HasHourlyOverlap(ctx, *tc.hourly)
			} else {
				got, err = tx.HasDailyOverlap(ctx, *tc.daily)
			}
			return err
		})
		if err != nil {
			t.Fatalf("%s: query failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOverlapCasesInMemory(t *testing.T) {
	runOverlapCases(t, bookingstest.NewStore(seedBookings("owner-1")...), "owner-1")
}

// TestOverlapCasesPostgres runs the same table against the SQL predicates when
// BOOKING_TEST_DATABASE_URL points at a scratch database.
func TestOverlapCasesPostgres(t *testing.T) {
	dsn := os.Getenv("BOOKING_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BOOKING_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer pool.Close()
	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	repo := NewBookingRepository(pool)
	ownerID := "test-" + uuid.NewString()
	seed := seedBookings(ownerID)
	t.Cleanup(func() {
		for _, b := range seed {
			_ = repo.Delete(context.Background(), ownerID, b.ID)
		}
	})
	err = repo.InOwnerTx(ctx, ownerID, func(ctx context.Context, tx bookings.Tx) error {
		for _, b := range seed {
			if err := tx.Insert(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed bookings: %v", err)
	}

	runOverlapCases(t, repo, ownerID)
}
