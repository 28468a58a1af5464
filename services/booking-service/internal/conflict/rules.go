package conflict

import (
	"slices"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

// WindowsOverlap reports whether an existing hourly window collides with a requested
// one: the half-open intervals intersect, or the existing window sits inside the
// requested one.
func WindowsOverlap(existing, requested model.TimeWindow) bool {
	if existing.Start < requested.End && existing.End > requested.Start {
		return true
	}
	return existing.Start >= requested.Start && existing.End <= requested.End
}

// RangesOverlap compares daily ranges as closed intervals, so ranges that share a
// single boundary day overlap.
func RangesOverlap(existing, requested model.DateRange) bool {
	return !existing.Start.After(requested.End) && !existing.End.Before(requested.Start)
}

func ItemsIntersect(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}

// sessionExclusions lists, per requested session, the existing sessions it cannot
// share an item and day with. Afternoon Session has no entry, so it only collides
// with another Afternoon Session and never with Full Day.
var sessionExclusions = map[string][]string{
	model.SessionFullDay: {model.SessionMorning, model.SessionEvening, model.SessionFullDay},
	model.SessionMorning: {model.SessionFullDay, model.SessionMorning},
	model.SessionEvening: {model.SessionFullDay, model.SessionEvening},
}

// ConflictingSessions returns the existing session values that block requested.
// Sessions outside the table block only an exact match.
func ConflictingSessions(requested string) []string {
	if blocked, ok := sessionExclusions[requested]; ok {
		return slices.Clone(blocked)
	}
	return []string{requested}
}

func SessionsConflict(existing, requested string) bool {
	return slices.Contains(ConflictingSessions(requested), existing)
}

// Changed reports whether next places the booking anywhere different from prior.
func Changed(prior, next model.Schedule) bool {
	if !slices.Equal(prior.Items, next.Items) {
		return true
	}
	if !prior.Date.Equal(next.Date) || prior.Time != next.Time {
		return true
	}
	if !prior.Range.Start.Equal(next.Range.Start) || !prior.Range.End.Equal(next.Range.End) {
		return true
	}
	return prior.Session != next.Session
}

// AlignWindow places a window booked on date onto the minute axis of day. Windows
// from the neighbouring dates shift by a whole day so that a booking running past
// midnight is compared against the early hours of the next date. Windows booked
// further away cannot reach day and report false.
func AlignWindow(w model.TimeWindow, date, day time.Time) (model.TimeWindow, bool) {
	var shift int
	switch {
	case date.Equal(day):
	case date.Equal(day.AddDate(0, 0, -1)):
		shift = -model.MinutesPerDay
	case date.Equal(day.AddDate(0, 0, 1)):
		shift = model.MinutesPerDay
	default:
		return model.TimeWindow{}, false
	}
	return model.TimeWindow{Start: w.Start + shift, End: w.End + shift}, true
}

// HourlyMatches applies the hourly predicate to a stored booking. Bookings on the
// previous and next dates are included after alignment.
func HourlyMatches(b model.Booking, q HourlyQuery) bool {
	if b.OwnerID != q.OwnerID || (q.ExcludeID != "" && b.ID == q.ExcludeID) {
		return false
	}
	if b.Kind() != model.KindHourly {
		return false
	}
	s := b.Schedule
	if !ItemsIntersect(s.Items, q.Items) {
		return false
	}
	aligned, ok := AlignWindow(s.Time, s.Date, q.Date)
	return ok && WindowsOverlap(aligned, q.Window)
}

// DailyMatches applies the daily predicate to a stored booking.
func DailyMatches(b model.Booking, q DailyQuery) bool {
	if b.OwnerID != q.OwnerID || (q.ExcludeID != "" && b.ID == q.ExcludeID) {
		return false
	}
	if b.Kind() != model.KindDaily {
		return false
	}
	s := b.Schedule
	return ItemsIntersect(s.Items, q.Items) && slices.Contains(q.Sessions, s.Session) && RangesOverlap(s.Range, q.Range)
}
