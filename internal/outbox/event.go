package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rezervalabs/rezerva/internal/model"
)

// Kafka topic names equal the event type, one topic per event.
const (
	EventReservationCreated       = "reservation.created.v1"
	EventReservationStatusUpdated = "reservation.status.updated.v1"
)

const wireTimestamp = "2006-01-02T15:04:05"

// Event is the envelope written to the outbox table inside the same
// transaction as the state change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// ReservationCreated builds the integration event for a freshly persisted
// reservation.
func ReservationCreated(r *model.Reservation) (Event, error) {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": r.ID,
		"client_id":      r.ClientID,
		"company_id":     r.CompanyID,
		"service_id":     r.ServiceID,
		"employee_id":    r.EmployeeID,
		"start_time":     r.StartTime.Format(wireTimestamp),
		"end_time":       r.EndTime.Format(wireTimestamp),
		"status":         string(r.Status),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "reservation",
		AggregateID:   strconv.FormatInt(r.ID, 10),
		EventType:     EventReservationCreated,
		Payload:       payload,
	}, nil
}

// ReservationStatusUpdated builds the integration event for a lifecycle
// transition.
func ReservationStatusUpdated(r *model.Reservation, previous model.Status, at time.Time) (Event, error) {
	payload, err := json.Marshal(map[string]any{
		"reservation_id":  r.ID,
		"company_id":      r.CompanyID,
		"employee_id":     r.EmployeeID,
		"previous_status": string(previous),
		"status":          string(r.Status),
		"updated_at":      at.Format(wireTimestamp),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "reservation",
		AggregateID:   strconv.FormatInt(r.ID, 10),
		EventType:     EventReservationStatusUpdated,
		Payload:       payload,
	}, nil
}
