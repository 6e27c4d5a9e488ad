package model

import "time"

// Reservation is a booked time slot for one employee. ClientID is nil when
// the company booked the slot itself. EndTime is fixed at creation from the
// service duration and is never recomputed, even if the service changes.
type Reservation struct {
	ID          int64
	ClientID    *int64
	CompanyID   int64
	ServiceID   int64
	EmployeeID  int64
	StartTime   time.Time
	EndTime     time.Time
	Status      Status
	Note        string
	CreatedDate time.Time
	UpdatedDate *time.Time
}

// Overlaps applies the half-open interval test to another reservation:
// touching intervals do not conflict.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return start.Before(r.EndTime) && r.StartTime.Before(end)
}
