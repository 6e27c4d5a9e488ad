package model

import (
	"fmt"
	"time"
)

// Weekday is the closed set of schedule days, stored by name.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// WeekOrder lists all weekdays starting from Monday, the order working-day
// listings are returned in.
var WeekOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func ParseWeekday(raw string) (Weekday, error) {
	for _, d := range WeekOrder {
		if string(d) == raw {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday().String())
}

// ClockTime is a time of day expressed as minutes since midnight.
type ClockTime int

func ParseClock(raw string) (ClockTime, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", raw)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// At anchors the clock time on the given calendar day.
func (c ClockTime) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), int(c)/60, int(c)%60, 0, 0, day.Location())
}

// WorkingDay is a company's window for one weekday. Both times nil means the
// company is closed that day; a half-set pair is invalid and never stored.
type WorkingDay struct {
	ID          int64
	CompanyID   int64
	Day         Weekday
	OpeningTime *ClockTime
	ClosingTime *ClockTime
}

func (w WorkingDay) Closed() bool {
	return w.OpeningTime == nil || w.ClosingTime == nil
}

// ValidateWindow rejects half-open definitions and empty windows.
func (w WorkingDay) ValidateWindow() error {
	if (w.OpeningTime == nil) != (w.ClosingTime == nil) {
		return fmt.Errorf("opening_time and closing_time must be set together")
	}
	if w.OpeningTime != nil && *w.OpeningTime == *w.ClosingTime {
		return fmt.Errorf("opening_time and closing_time must differ")
	}
	return nil
}
