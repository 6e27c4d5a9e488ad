package availability

import (
	"time"

	"github.com/rezervalabs/rezerva/internal/model"
)

// Grid is the candidate spacing. Service durations are multiples of it, so
// slots of different services on the same employee always share boundaries.
const Grid = model.SlotGridMinutes * time.Minute

// Slots returns the start times within [open, close) where a booking of the
// given duration would not overlap any blocking reservation. Candidates walk
// the grid from open; candidates before now are skipped without shifting the
// grid. The result is ascending and may be empty.
//
// All times are naive local datetimes in the same location.
func Slots(open, close time.Time, duration time.Duration, booked []model.Reservation, now time.Time) []time.Time {
	if duration <= 0 {
		return nil
	}
	if !close.After(open) {
		return nil
	}

	var slots []time.Time
	for t := open; !t.Add(duration).After(close); t = t.Add(Grid) {
		if t.Before(now) {
			continue
		}
		if !overlapsAny(t, t.Add(duration), booked) {
			slots = append(slots, t)
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, booked []model.Reservation) bool {
	for _, r := range booked {
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}
