package availability

import (
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/conflict"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
)

// FreeSlots returns the windows of length duration, started every step minutes inside
// opening, that an hourly booking could take without colliding with any busy window.
func FreeSlots(opening model.TimeWindow, step, duration int, busy []model.TimeWindow) []model.TimeWindow {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if opening.End <= opening.Start || opening.Start+duration > opening.End {
		return nil
	}

	var slots []model.TimeWindow
	for start := opening.Start; start+duration <= opening.End; start += step {
		slot := model.TimeWindow{Start: start, End: start + duration}
		if !overlapsAny(slot, busy) {
			slots = append(slots, slot)
		}
	}
	return slots
}

// StartingFrom drops slots that begin before minute, e.g. the part of today already gone.
func StartingFrom(slots []model.TimeWindow, minute int) []model.TimeWindow {
	out := slots[:0:0]
	for _, s := range slots {
		if s.Start >= minute {
			out = append(out, s)
		}
	}
	return out
}

func overlapsAny(slot model.TimeWindow, busy []model.TimeWindow) bool {
	for _, b := range busy {
		if conflict.WindowsOverlap(b, slot) {
			return true
		}
	}
	return false
}
