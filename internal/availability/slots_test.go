package availability

import (
	"testing"
	"time"

	"github.com/rezervalabs/rezerva/internal/model"
)

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func booked(day time.Time, fromH, fromM, toH, toM int) model.Reservation {
	return model.Reservation{
		StartTime: at(day, fromH, fromM),
		EndTime:   at(day, toH, toM),
		Status:    model.StatusConfirmed,
	}
}

// Monday 08:00-16:30, 30 min service, one booking 10:00-10:30: the booking
// removes exactly the candidates whose half-hour would cross into it.
func TestSlots_AroundExistingBooking(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	open := at(day, 8, 0)
	close := at(day, 16, 30)

	slots := Slots(open, close, 30*time.Minute, []model.Reservation{booked(day, 10, 0, 10, 30)}, day)

	want := map[string]bool{}
	for _, s := range slots {
		want[s.Format("15:04")] = true
	}
	if !want["09:30"] {
		t.Fatal("expected 09:30 to be available (ends exactly at booking start)")
	}
	if !want["10:30"] {
		t.Fatal("expected 10:30 to be available (starts exactly at booking end)")
	}
	if want["09:45"] {
		t.Fatal("expected 09:45 to be blocked (runs into booking head)")
	}
	if want["10:00"] {
		t.Fatal("expected 10:00 to be blocked (same start as booking)")
	}
	if want["10:15"] {
		t.Fatal("expected 10:15 to be blocked (overlaps booking tail)")
	}
	// Last candidate must still fit before close.
	last := slots[len(slots)-1]
	if !last.Equal(at(day, 16, 0)) {
		t.Fatalf("expected last slot 16:00, got %s", last.Format("15:04"))
	}
}

func TestSlots_GridAndOrdering(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	open := at(day, 9, 0)
	close := at(day, 12, 0)

	slots := Slots(open, close, 45*time.Minute, nil, day)
	if len(slots) == 0 {
		t.Fatal("expected slots in an empty schedule")
	}
	for i, s := range slots {
		if s.Sub(open)%Grid != 0 {
			t.Fatalf("slot %s is off the 15-minute grid", s.Format("15:04"))
		}
		if s.Add(45 * time.Minute).After(close) {
			t.Fatalf("slot %s overruns closing time", s.Format("15:04"))
		}
		if i > 0 && !slots[i-1].Before(s) {
			t.Fatalf("slots not strictly increasing at index %d", i)
		}
	}
}

func TestSlots_SkipsPastCandidatesToday(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	open := at(day, 9, 0)
	close := at(day, 10, 0)

	now := at(day, 9, 31)
	slots := Slots(open, close, 15*time.Minute, nil, now)
	// 09:00, 09:15, 09:30 already started; 09:45 remains.
	if len(slots) != 1 || !slots[0].Equal(at(day, 9, 45)) {
		t.Fatalf("expected only 09:45, got %v", slots)
	}
}

func TestSlots_Idempotent(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	open := at(day, 8, 0)
	close := at(day, 16, 30)
	busy := []model.Reservation{booked(day, 11, 0, 12, 0)}

	first := Slots(open, close, 30*time.Minute, busy, day)
	second := Slots(open, close, 30*time.Minute, busy, day)
	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("results differ at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestSlots_DegenerateWindows(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if s := Slots(at(day, 9, 0), at(day, 9, 0), 15*time.Minute, nil, day); s != nil {
		t.Fatalf("empty window should yield nil, got %v", s)
	}
	if s := Slots(at(day, 10, 0), at(day, 9, 0), 15*time.Minute, nil, day); s != nil {
		t.Fatalf("inverted window should yield nil, got %v", s)
	}
	// Duration longer than the whole window.
	if s := Slots(at(day, 9, 0), at(day, 9, 30), time.Hour, nil, day); s != nil {
		t.Fatalf("oversized duration should yield nil, got %v", s)
	}
}

func TestOverlap_HalfOpenBoundaries(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	existing := booked(day, 10, 0, 10, 30)

	// start == existing.end: touching, no conflict.
	if existing.Overlaps(at(day, 10, 30), at(day, 11, 0)) {
		t.Fatal("touching intervals must not conflict")
	}
	// end == existing.start: touching, no conflict.
	if existing.Overlaps(at(day, 9, 30), at(day, 10, 0)) {
		t.Fatal("touching intervals must not conflict")
	}
	// start == existing.start: always a conflict.
	if !existing.Overlaps(at(day, 10, 0), at(day, 10, 15)) {
		t.Fatal("identical starts must conflict")
	}
	// proper containment.
	if !existing.Overlaps(at(day, 9, 45), at(day, 11, 0)) {
		t.Fatal("containing interval must conflict")
	}
}

// Randomized check of the overlap predicate against interval arithmetic.
func TestOverlap_MatchesGroundTruth(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	base := at(day, 8, 0)

	toMin := func(tm time.Time) int { return int(tm.Sub(base) / time.Minute) }
	for aStart := 0; aStart <= 120; aStart += 15 {
		for aLen := 15; aLen <= 60; aLen += 15 {
			for bStart := 0; bStart <= 120; bStart += 15 {
				for bLen := 15; bLen <= 60; bLen += 15 {
					r := model.Reservation{
						StartTime: base.Add(time.Duration(aStart) * time.Minute),
						EndTime:   base.Add(time.Duration(aStart+aLen) * time.Minute),
					}
					s := base.Add(time.Duration(bStart) * time.Minute)
					e := base.Add(time.Duration(bStart+bLen) * time.Minute)

					truth := bStart < toMin(r.EndTime) && toMin(r.StartTime) < bStart+bLen
					if got := r.Overlaps(s, e); got != truth {
						t.Fatalf("overlap mismatch for [%d,%d) vs [%d,%d): got %v want %v",
							aStart, aStart+aLen, bStart, bStart+bLen, got, truth)
					}
				}
			}
		}
	}
}
