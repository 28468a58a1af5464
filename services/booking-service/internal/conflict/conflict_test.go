package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

type sliceFinder struct {
	bookings []model.Booking
	calls    int
	err      error
}

func (f *sliceFinder) HasHourlyOverlap(_ context.Context, q HourlyQuery) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	for _, b := range f.bookings {
		if HourlyMatches(b, q) {
			return true, nil
		}
	}
	return false, nil
}

func (f *sliceFinder) HasDailyOverlap(_ context.Context, q DailyQuery) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	for _, b := range f.bookings {
		if DailyMatches(b, q) {
			return true, nil
		}
	}
	return false, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func hm(h, m int) int { return h*60 + m }

func hourly(id, item, date string, start, end int) model.Booking {
	return model.Booking{
		ID:      id,
		OwnerID: "owner-1",
		Schedule: model.Schedule{
			Kind:  model.KindHourly,
			Items: []string{item},
			Date:  day(date),
			Time:  model.NewTimeWindow(start, end),
		},
	}
}

func daily(id string, items []string, from, to, session string) model.Booking {
	return model.Booking{
		ID:      id,
		OwnerID: "owner-1",
		Schedule: model.Schedule{
			Kind:    model.KindDaily,
			Items:   items,
			Range:   model.DateRange{Start: day(from), End: day(to)},
			Session: session,
		},
	}
}

func TestWindowsOverlap(t *testing.T) {
	cases := []struct {
		name                string
		existing, requested model.TimeWindow
		want                bool
	}{
		{"disjoint before", model.TimeWindow{Start: hm(8, 0), End: hm(9, 0)}, model.TimeWindow{Start: hm(10, 0), End: hm(11, 0)}, false},
		{"touching end to start", model.TimeWindow{Start: hm(9, 0), End: hm(10, 0)}, model.TimeWindow{Start: hm(10, 0), End: hm(11, 0)}, false},
		{"touching start to end", model.TimeWindow{Start: hm(11, 0), End: hm(12, 0)}, model.TimeWindow{Start: hm(10, 0), End: hm(11, 0)}, false},
		{"partial overlap", model.TimeWindow{Start: hm(9, 30), End: hm(10, 30)}, model.TimeWindow{Start: hm(10, 0), End: hm(11, 0)}, true},
		{"existing nested", model.TimeWindow{Start: hm(10, 30), End: hm(11, 30)}, model.TimeWindow{Start: hm(10, 0), End: hm(12, 0)}, true},
		{"requested nested", model.TimeWindow{Start: hm(10, 0), End: hm(12, 0)}, model.TimeWindow{Start: hm(10, 30), End: hm(11, 30)}, true},
		{"identical", model.TimeWindow{Start: hm(10, 0), End: hm(11, 0)}, model.TimeWindow{Start: hm(10, 0), End: hm(11, 0)}, true},
	}
	for _, tc := range cases {
		if got := WindowsOverlap(tc.existing, tc.requested); got != tc.want {
			t.Fatalf("%s: WindowsOverlap = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWindowsOverlapMatchesHalfOpenArithmetic(t *testing.T) {
	// Exhaustive over a coarse grid: the nested clause never adds a collision the
	// half-open test misses for non-empty windows.
	for s1 := 0; s1 < 12; s1++ {
		for e1 := s1 + 1; e1 <= 12; e1++ {
			for s2 := 0; s2 < 12; s2++ {
				for e2 := s2 + 1; e2 <= 12; e2++ {
					a := model.TimeWindow{Start: s1, End: e1}
					b := model.TimeWindow{Start: s2, End: e2}
					want := s1 < e2 && e1 > s2
					if got := WindowsOverlap(a, b); got != want {
						t.Fatalf("WindowsOverlap(%v, %v) = %v, want %v", a, b, got, want)
					}
				}
			}
		}
	}
}

func TestRangesOverlapIsClosed(t *testing.T) {
	r := func(a, b string) model.DateRange { return model.DateRange{Start: day(a), End: day(b)} }
	if !RangesOverlap(r("2024-06-01", "2024-06-03"), r("2024-06-03", "2024-06-05")) {
		t.Fatal("ranges sharing a boundary day must overlap")
	}
	if !RangesOverlap(r("2024-06-02", "2024-06-02"), r("2024-06-01", "2024-06-03")) {
		t.Fatal("single-day range inside another must overlap")
	}
	if RangesOverlap(r("2024-06-01", "2024-06-02"), r("2024-06-03", "2024-06-04")) {
		t.Fatal("adjacent ranges must not overlap")
	}
}

func TestSessionTable(t *testing.T) {
	cases := []struct {
		existing, requested string
		want                bool
	}{
		{model.SessionMorning, model.SessionFullDay, true},
		{model.SessionEvening, model.SessionFullDay, true},
		{model.SessionFullDay, model.SessionFullDay, true},
		{model.SessionAfternoon, model.SessionFullDay, false},
		{model.SessionFullDay, model.SessionMorning, true},
		{model.SessionMorning, model.SessionMorning, true},
		{model.SessionEvening, model.SessionMorning, false},
		{model.SessionAfternoon, model.SessionMorning, false},
		{model.SessionFullDay, model.SessionEvening, true},
		{model.SessionEvening, model.SessionEvening, true},
		{model.SessionMorning, model.SessionEvening, false},
		{model.SessionAfternoon, model.SessionAfternoon, true},
		{model.SessionFullDay, model.SessionAfternoon, false},
		{model.SessionMorning, model.SessionAfternoon, false},
		{"Night Session", "Night Session", true},
		{model.SessionFullDay, "Night Session", false},
	}
	for _, tc := range cases {
		if got := SessionsConflict(tc.existing, tc.requested); got != tc.want {
			t.Fatalf("existing %q vs requested %q: got %v, want %v", tc.existing, tc.requested, got, tc.want)
		}
	}
}

func TestConflictingSessionsReturnsCopy(t *testing.T) {
	got := ConflictingSessions(model.SessionFullDay)
	got[0] = "mutated"
	if ConflictingSessions(model.SessionFullDay)[0] == "mutated" {
		t.Fatal("table must not be mutable through the returned slice")
	}
}

func TestCheckerHourly(t *testing.T) {
	f := &sliceFinder{bookings: []model.Booking{hourly("b1", "Turf A", "2024-06-01", hm(10, 0), hm(12, 0))}}
	c := NewChecker()
	ctx := context.Background()

	req := func(item, date string, start, end int) Request {
		return Request{OwnerID: "owner-1", Schedule: hourly("", item, date, start, end).Schedule}
	}

	cases := []struct {
		name string
		req  Request
		want bool
	}{
		{"nested inside existing", req("Turf A", "2024-06-01", hm(10, 30), hm(11, 30)), true},
		{"overlaps tail", req("Turf A", "2024-06-01", hm(11, 0), hm(13, 0)), true},
		{"starts at existing end", req("Turf A", "2024-06-01", hm(12, 0), hm(13, 0)), false},
		{"other item", req("Turf B", "2024-06-01", hm(10, 0), hm(12, 0)), false},
		{"other date", req("Turf A", "2024-06-02", hm(10, 0), hm(12, 0)), false},
	}
	for _, tc := range cases {
		got, err := c.Conflicts(ctx, f, tc.req)
		if err != nil {
			t.Fatalf("%s: Conflicts failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	other := req("Turf A", "2024-06-01", hm(10, 0), hm(12, 0))
	other.OwnerID = "owner-2"
	if got, _ := c.Conflicts(ctx, f, other); got {
		t.Fatal("bookings of another owner must not conflict")
	}

	self := req("Turf A", "2024-06-01", hm(10, 0), hm(11, 0))
	self.ExcludeID = "b1"
	if got, _ := c.Conflicts(ctx, f, self); got {
		t.Fatal("the booking being updated must be excluded")
	}
}

func TestCheckerHourlyAcrossMidnight(t *testing.T) {
	f := &sliceFinder{bookings: []model.Booking{hourly("b1", "Turf A", "2024-06-01", hm(23, 0), hm(2, 0))}}
	c := NewChecker()
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.Booking
		want bool
	}{
		{"early hours of next date", hourly("", "Turf A", "2024-06-02", hm(0, 30), hm(1, 30)), true},
		{"starts when overnight ends", hourly("", "Turf A", "2024-06-02", hm(2, 0), hm(3, 0)), false},
		{"evening before", hourly("", "Turf A", "2024-05-31", hm(23, 0), hm(23, 30)), false},
		{"late evening before", hourly("", "Turf A", "2024-05-31", hm(22, 0), hm(23, 30)), false},
		{"two dates later", hourly("", "Turf A", "2024-06-03", hm(0, 0), hm(1, 0)), false},
	}
	for _, tc := range cases {
		got, err := c.Conflicts(ctx, f, Request{OwnerID: "owner-1", Schedule: tc.req.Schedule})
		if err != nil {
			t.Fatalf("%s: Conflicts failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	// A request on the earlier date that runs past midnight into the existing booking.
	early := &sliceFinder{bookings: []model.Booking{hourly("b2", "Turf A", "2024-06-02", hm(1, 0), hm(3, 0))}}
	req := hourly("", "Turf A", "2024-06-01", hm(23, 0), hm(1, 30))
	if got, _ := c.Conflicts(ctx, early, Request{OwnerID: "owner-1", Schedule: req.Schedule}); !got {
		t.Fatal("overnight request must collide with a booking in the next date's early hours")
	}
}

func TestAlignWindow(t *testing.T) {
	w := model.TimeWindow{Start: hm(23, 0), End: hm(26, 0)}
	if got, ok := AlignWindow(w, day("2024-06-01"), day("2024-06-02")); !ok || got.Start != -60 || got.End != hm(2, 0) {
		t.Fatalf("previous date: got %+v %v", got, ok)
	}
	if got, ok := AlignWindow(w, day("2024-06-03"), day("2024-06-02")); !ok || got.Start != hm(47, 0) {
		t.Fatalf("next date: got %+v %v", got, ok)
	}
	if got, ok := AlignWindow(w, day("2024-06-02"), day("2024-06-02")); !ok || got != w {
		t.Fatalf("same date: got %+v %v", got, ok)
	}
	if _, ok := AlignWindow(w, day("2024-05-30"), day("2024-06-02")); ok {
		t.Fatal("dates further apart must not align")
	}
}

func TestCheckerDaily(t *testing.T) {
	f := &sliceFinder{bookings: []model.Booking{
		daily("b1", []string{"Farm X"}, "2024-06-01", "2024-06-03", model.SessionFullDay),
	}}
	c := NewChecker()
	ctx := context.Background()

	req := func(items []string, from, to, session string) Request {
		return Request{OwnerID: "owner-1", Schedule: daily("", items, from, to, session).Schedule}
	}

	if got, _ := c.Conflicts(ctx, f, req([]string{"Farm X"}, "2024-06-02", "2024-06-02", model.SessionMorning)); !got {
		t.Fatal("Morning inside a Full Day range must conflict")
	}
	if got, _ := c.Conflicts(ctx, f, req([]string{"Farm X"}, "2024-06-02", "2024-06-02", model.SessionAfternoon)); got {
		t.Fatal("Afternoon is outside the Full Day exclusion set")
	}
	if got, _ := c.Conflicts(ctx, f, req([]string{"Farm Y", "Farm X"}, "2024-06-03", "2024-06-04", model.SessionEvening)); !got {
		t.Fatal("multi-item request holding Farm X on the boundary day must conflict")
	}
	if got, _ := c.Conflicts(ctx, f, req([]string{"Farm Y"}, "2024-06-02", "2024-06-02", model.SessionFullDay)); got {
		t.Fatal("different item must not conflict")
	}
	if got, _ := c.Conflicts(ctx, f, req([]string{"Farm X"}, "2024-06-04", "2024-06-05", model.SessionFullDay)); got {
		t.Fatal("range after the existing one must not conflict")
	}
}

func TestCheckerPropagatesFinderError(t *testing.T) {
	boom := errors.New("db down")
	f := &sliceFinder{err: boom}
	_, err := NewChecker().Conflicts(context.Background(), f, Request{
		OwnerID:  "owner-1",
		Schedule: hourly("", "Turf A", "2024-06-01", hm(10, 0), hm(11, 0)).Schedule,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected finder error, got %v", err)
	}
}

func TestChanged(t *testing.T) {
	base := hourly("b1", "Turf A", "2024-06-01", hm(10, 0), hm(11, 0)).Schedule
	same := base
	same.Items = []string{"Turf A"}
	if Changed(base, same) {
		t.Fatal("identical schedules must not count as changed")
	}

	moved := base
	moved.Time = model.NewTimeWindow(hm(10, 0), hm(11, 30))
	if !Changed(base, moved) {
		t.Fatal("new end time must count as changed")
	}

	otherItem := base
	otherItem.Items = []string{"Turf B"}
	if !Changed(base, otherItem) {
		t.Fatal("new item must count as changed")
	}

	d := daily("b2", []string{"Farm X"}, "2024-06-01", "2024-06-02", model.SessionMorning).Schedule
	d2 := d
	d2.Session = model.SessionEvening
	if !Changed(d, d2) {
		t.Fatal("new session must count as changed")
	}
}
