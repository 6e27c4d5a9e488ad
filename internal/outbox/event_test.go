package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezervalabs/rezerva/internal/model"
)

func sampleReservation() *model.Reservation {
	clientID := int64(12)
	return &model.Reservation{
		ID:         42,
		ClientID:   &clientID,
		CompanyID:  7,
		ServiceID:  31,
		EmployeeID: 5,
		StartTime:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local),
		EndTime:    time.Date(2026, 3, 2, 10, 30, 0, 0, time.Local),
		Status:     model.StatusPending,
	}
}

func TestReservationCreatedEvent(t *testing.T) {
	evt, err := ReservationCreated(sampleReservation())
	require.NoError(t, err)

	assert.Equal(t, "reservation", evt.AggregateType)
	assert.Equal(t, "42", evt.AggregateID)
	assert.Equal(t, EventReservationCreated, evt.EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, float64(42), payload["reservation_id"])
	assert.Equal(t, float64(12), payload["client_id"])
	assert.Equal(t, float64(7), payload["company_id"])
	assert.Equal(t, float64(31), payload["service_id"])
	assert.Equal(t, float64(5), payload["employee_id"])
	assert.Equal(t, "2026-03-02T10:00:00", payload["start_time"])
	assert.Equal(t, "2026-03-02T10:30:00", payload["end_time"])
	assert.Equal(t, "Pending approval", payload["status"])
}

func TestReservationCreatedEvent_AnonymousBooking(t *testing.T) {
	r := sampleReservation()
	r.ClientID = nil
	r.Status = model.StatusConfirmed

	evt, err := ReservationCreated(r)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Nil(t, payload["client_id"])
	assert.Equal(t, "Confirmed", payload["status"])
}

func TestReservationStatusUpdatedEvent(t *testing.T) {
	r := sampleReservation()
	r.Status = model.StatusConfirmed
	at := time.Date(2026, 3, 2, 11, 15, 0, 0, time.Local)

	evt, err := ReservationStatusUpdated(r, model.StatusPending, at)
	require.NoError(t, err)

	assert.Equal(t, "reservation", evt.AggregateType)
	assert.Equal(t, "42", evt.AggregateID)
	assert.Equal(t, EventReservationStatusUpdated, evt.EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, float64(42), payload["reservation_id"])
	assert.Equal(t, "Pending approval", payload["previous_status"])
	assert.Equal(t, "Confirmed", payload["status"])
	assert.Equal(t, "2026-03-02T11:15:00", payload["updated_at"])
}
