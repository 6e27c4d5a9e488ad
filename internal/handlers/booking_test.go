package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezervalabs/rezerva/internal/booking"
	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/auth"
	"github.com/rezervalabs/rezerva/libs/httpx"
)

const testSecret = "handler-test-secret"

type stubStore struct {
	created []*model.Reservation
}

func (s *stubStore) Create(_ context.Context, r *model.Reservation) (*model.Reservation, error) {
	cp := *r
	cp.ID = int64(len(s.created) + 1)
	cp.CreatedDate = time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	s.created = append(s.created, &cp)
	return &cp, nil
}

func (s *stubStore) GetByID(context.Context, int64) (*model.Reservation, bool, error) {
	return nil, false, nil
}

func (s *stubStore) ListBlocking(context.Context, int64, time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.created {
		if r.Status.Blocking() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubStore) ListByClient(context.Context, int64) ([]model.Reservation, error)   { return nil, nil }
func (s *stubStore) ListByCompany(context.Context, int64) ([]model.Reservation, error)  { return nil, nil }
func (s *stubStore) ListByEmployee(context.Context, int64) ([]model.Reservation, error) { return nil, nil }

func (s *stubStore) UpdateStatus(context.Context, int64, model.Status) (*model.Reservation, error) {
	return nil, booking.ErrNotFound
}

type stubDirectory struct{}

func (stubDirectory) GetService(_ context.Context, id int64) (model.Service, bool, error) {
	if id != 31 {
		return model.Service{}, false, nil
	}
	return model.Service{ID: 31, CompanyID: 7, DurationMinutes: 30, IsActive: true}, true, nil
}

func (stubDirectory) IsEmployeeAssigned(_ context.Context, serviceID, employeeID int64) (bool, error) {
	return serviceID == 31 && employeeID == 5, nil
}

func (stubDirectory) EmployeeCompany(_ context.Context, employeeID int64) (int64, bool, error) {
	return 7, employeeID == 5, nil
}

type stubHours struct{}

func (stubHours) GetWorkingDay(_ context.Context, _ int64, day model.Weekday) (model.WorkingDay, bool, error) {
	if day != model.Monday {
		return model.WorkingDay{}, false, nil
	}
	open, close := model.ClockTime(9*60), model.ClockTime(17*60)
	return model.WorkingDay{Day: day, OpeningTime: &open, ClosingTime: &close}, true, nil
}

type stubIdentity struct{}

var handlerUserAccount = uuid.MustParse("00000000-0000-0000-0000-000000000011")

func (stubIdentity) ClientIDByAccount(_ context.Context, accountID uuid.UUID) (int64, bool, error) {
	return 12, accountID == handlerUserAccount, nil
}

func (stubIdentity) CompanyIDByAccount(context.Context, uuid.UUID) (int64, bool, error) {
	return 0, false, nil
}

func newBookingHandler(t *testing.T) (*BookingHandler, *stubStore) {
	t.Helper()
	store := &stubStore{}
	core := booking.NewService(store, stubDirectory{}, stubHours{}, stubIdentity{}, slog.New(slog.DiscardHandler)).
		WithNow(func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local) })
	return NewBookingHandler(core, slog.New(slog.DiscardHandler)), store
}

func bearerToken(t *testing.T, account uuid.UUID, role model.Role) string {
	t.Helper()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  account.String(),
		Role: string(role),
		Iat:  time.Now().Unix(),
		Exp:  time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAvailableSlots_HTTPContract(t *testing.T) {
	h, _ := newBookingHandler(t)
	handler := http.HandlerFunc(h.AvailableSlots)

	// Unknown service: not applicable, 404.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/available?employee_id=5&service_id=999&day=2026-03-02", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Closed day: valid query, empty list.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/available?employee_id=5&service_id=31&day=2026-03-03", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var slots []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	assert.Empty(t, slots)

	// Open Monday: grid of start times.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/available?employee_id=5&service_id=31&day=2026-03-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	require.NotEmpty(t, slots)
	assert.Equal(t, "2026-03-02T09:00:00", slots[0])

	// Malformed date.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/reservations/available?employee_id=5&service_id=31&day=tomorrow", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservation_HTTPContract(t *testing.T) {
	h, store := newBookingHandler(t)
	handler := httpx.Chain(http.HandlerFunc(h.Create), httpx.WithBearerAuth(testSecret))

	body := `{"service_id":31,"employee_id":5,"start_time":"2026-03-02T10:00:00","note":"haircut"}`

	// No token: rejected before the core runs.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.created)

	// Authenticated client books the slot.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, handlerUserAccount, model.RoleUser))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp reservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-02T10:00:00", resp.StartTime)
	assert.Equal(t, "2026-03-02T10:30:00", resp.EndTime)
	assert.Equal(t, string(model.StatusPending), resp.Status)
	require.NotNil(t, resp.ClientID)
	assert.Equal(t, int64(12), *resp.ClientID)

	// Same slot again: now taken.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, handlerUserAccount, model.RoleUser))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
