package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezervalabs/rezerva/internal/model"
)

type fakeStore struct {
	reservations map[int64]*model.Reservation
	nextID       int64
	createErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{reservations: map[int64]*model.Reservation{}, nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, r *model.Reservation) (*model.Reservation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *r
	cp.ID = f.nextID
	cp.CreatedDate = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.nextID++
	f.reservations[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.Reservation, bool, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

func (f *fakeStore) ListBlocking(_ context.Context, employeeID int64, day time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.EmployeeID == employeeID && r.Status.Blocking() && sameDate(r.StartTime, day) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByClient(_ context.Context, clientID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.ClientID != nil && *r.ClientID == clientID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByCompany(_ context.Context, companyID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.CompanyID == companyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByEmployee(_ context.Context, employeeID int64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.EmployeeID == employeeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status model.Status) (*model.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	r.Status = status
	r.UpdatedDate = &now
	cp := *r
	return &cp, nil
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

type fakeDirectory struct {
	services  map[int64]model.Service
	roster    map[[2]int64]bool
	employees map[int64]int64
}

func (f *fakeDirectory) GetService(_ context.Context, id int64) (model.Service, bool, error) {
	svc, ok := f.services[id]
	return svc, ok, nil
}

func (f *fakeDirectory) IsEmployeeAssigned(_ context.Context, serviceID, employeeID int64) (bool, error) {
	return f.roster[[2]int64{serviceID, employeeID}], nil
}

func (f *fakeDirectory) EmployeeCompany(_ context.Context, employeeID int64) (int64, bool, error) {
	companyID, ok := f.employees[employeeID]
	return companyID, ok, nil
}

type fakeHours struct {
	days map[model.Weekday]model.WorkingDay
}

func (f *fakeHours) GetWorkingDay(_ context.Context, _ int64, day model.Weekday) (model.WorkingDay, bool, error) {
	wd, ok := f.days[day]
	return wd, ok, nil
}

type fakeIdentity struct {
	clients   map[uuid.UUID]int64
	companies map[uuid.UUID]int64
}

func (f *fakeIdentity) ClientIDByAccount(_ context.Context, accountID uuid.UUID) (int64, bool, error) {
	id, ok := f.clients[accountID]
	return id, ok, nil
}

func (f *fakeIdentity) CompanyIDByAccount(_ context.Context, accountID uuid.UUID) (int64, bool, error) {
	id, ok := f.companies[accountID]
	return id, ok, nil
}

const (
	companyID  = int64(7)
	serviceID  = int64(31)
	employeeID = int64(5)
	clientID   = int64(12)
)

var (
	userAccount    = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	companyAccount = uuid.MustParse("00000000-0000-0000-0000-0000000000bb")
	otherAccount   = uuid.MustParse("00000000-0000-0000-0000-0000000000cc")

	// Monday 2026-03-02; the pinned clock sits at its start.
	monday  = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	testNow = monday
)

func clock(c model.ClockTime) *model.ClockTime { return &c }

func newFixture(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	dir := &fakeDirectory{
		services: map[int64]model.Service{
			serviceID: {ID: serviceID, CompanyID: companyID, DurationMinutes: 30, IsActive: true},
		},
		roster:    map[[2]int64]bool{{serviceID, employeeID}: true},
		employees: map[int64]int64{employeeID: companyID},
	}
	hours := &fakeHours{days: map[model.Weekday]model.WorkingDay{
		// Open Monday 08:00-16:30, Sunday row present but closed.
		model.Monday: {CompanyID: companyID, Day: model.Monday, OpeningTime: clock(8 * 60), ClosingTime: clock(16*60 + 30)},
		model.Sunday: {CompanyID: companyID, Day: model.Sunday},
	}}
	identity := &fakeIdentity{
		clients:   map[uuid.UUID]int64{userAccount: clientID},
		companies: map[uuid.UUID]int64{companyAccount: companyID, otherAccount: 99},
	}
	svc := NewService(store, dir, hours, identity, slog.New(slog.DiscardHandler)).
		WithNow(func() time.Time { return testNow })
	return svc, store
}

func TestCreateReservation_UserBooksPending(t *testing.T) {
	svc, store := newFixture(t)

	start := monday.Add(10 * time.Hour)
	r, err := svc.CreateReservation(context.Background(), userAccount, model.RoleUser, CreateRequest{
		ServiceID:  serviceID,
		EmployeeID: employeeID,
		StartTime:  start,
		Note:       "first visit",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, r.Status)
	require.NotNil(t, r.ClientID)
	assert.Equal(t, clientID, *r.ClientID)
	assert.Equal(t, companyID, r.CompanyID)
	assert.True(t, r.EndTime.Equal(start.Add(30*time.Minute)))
	assert.Len(t, store.reservations, 1)
}

func TestCreateReservation_CompanyBooksConfirmed(t *testing.T) {
	svc, _ := newFixture(t)

	r, err := svc.CreateReservation(context.Background(), companyAccount, model.RoleCompany, CreateRequest{
		ServiceID:  serviceID,
		EmployeeID: employeeID,
		StartTime:  monday.Add(9 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	assert.Nil(t, r.ClientID)
}

func TestCreateReservation_RejectsTakenSlot(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	start := monday.Add(10 * time.Hour)
	_, err := svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: start,
	})
	require.NoError(t, err)

	for _, overlap := range []time.Time{start, start.Add(15 * time.Minute)} {
		_, err := svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
			ServiceID: serviceID, EmployeeID: employeeID, StartTime: overlap,
		})
		assert.ErrorIs(t, err, ErrSlotUnavailable, "start %s", overlap)
	}

	// Touching slot right after the booking stays open.
	_, err = svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: start.Add(30 * time.Minute),
	})
	assert.NoError(t, err)
}

func TestCreateReservation_OffGridStartRejected(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.CreateReservation(context.Background(), userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID,
		StartTime: monday.Add(10*time.Hour + 10*time.Minute),
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateReservation_RaceSurfacesStateConflict(t *testing.T) {
	svc, store := newFixture(t)
	store.createErr = fmt.Errorf("employee already booked: %w", ErrStateConflict)

	_, err := svc.CreateReservation(context.Background(), userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: monday.Add(10 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestCreateReservation_Preconditions(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()
	start := monday.Add(10 * time.Hour)

	_, err := svc.CreateReservation(ctx, otherAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: start,
	})
	assert.ErrorIs(t, err, ErrUnauthorized, "account without client profile")

	_, err = svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: 404, EmployeeID: employeeID, StartTime: start,
	})
	assert.ErrorIs(t, err, ErrNotFound, "unknown service")

	_, err = svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: 404, StartTime: start,
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable, "employee off the roster")

	assert.Empty(t, store.reservations, "failed preconditions must not persist anything")
}

func TestAvailableSlots_NotApplicableVsEmpty(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AvailableSlots(ctx, employeeID, 404, monday)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AvailableSlots(ctx, 404, serviceID, monday)
	assert.ErrorIs(t, err, ErrNotFound)

	// Closed day (both times null) and absent day both yield empty, no error.
	sunday := monday.AddDate(0, 0, 6)
	slots, err := svc.AvailableSlots(ctx, employeeID, serviceID, sunday)
	require.NoError(t, err)
	assert.Empty(t, slots)

	tuesday := monday.AddDate(0, 0, 1)
	slots, err = svc.AvailableSlots(ctx, employeeID, serviceID, tuesday)
	require.NoError(t, err)
	assert.Empty(t, slots)

	// Past days are empty, not an error.
	lastMonday := monday.AddDate(0, 0, -7)
	slots, err = svc.AvailableSlots(ctx, employeeID, serviceID, lastMonday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlots_TerminalReservationsDoNotBlock(t *testing.T) {
	svc, store := newFixture(t)
	start := monday.Add(10 * time.Hour)
	cancelled := int64(1)
	store.reservations[1] = &model.Reservation{
		ID: 1, ClientID: &cancelled, CompanyID: companyID, ServiceID: serviceID,
		EmployeeID: employeeID, StartTime: start, EndTime: start.Add(30 * time.Minute),
		Status: model.StatusCancelled,
	}

	slots, err := svc.AvailableSlots(context.Background(), employeeID, serviceID, monday)
	require.NoError(t, err)
	assert.True(t, containsSlot(slots, start), "cancelled booking must not block its slot")
}

func TestAvailableSlots_AroundConfirmedBooking(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	booked := monday.Add(10 * time.Hour)
	_, err := svc.CreateReservation(ctx, companyAccount, model.RoleCompany, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: booked,
	})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, employeeID, serviceID, monday)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	// 30-minute service: every start whose half-hour crosses 10:00-10:30 is
	// gone, the touching neighbours on both sides stay.
	assert.True(t, containsSlot(slots, booked.Add(-30*time.Minute)), "09:30 touches the booking start")
	assert.True(t, containsSlot(slots, booked.Add(30*time.Minute)), "10:30 touches the booking end")
	assert.False(t, containsSlot(slots, booked.Add(-15*time.Minute)), "09:45 runs into the booking")
	assert.False(t, containsSlot(slots, booked), "10:00 is the booking itself")
	assert.False(t, containsSlot(slots, booked.Add(15*time.Minute)), "10:15 overlaps the booking tail")

	assert.True(t, slots[len(slots)-1].Equal(monday.Add(16*time.Hour)), "last start fitting before 16:30")
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].Before(slots[i]), "slots must be strictly increasing")
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	r, err := svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: monday.Add(10 * time.Hour),
	})
	require.NoError(t, err)

	// Foreign company may not touch it.
	_, err = svc.UpdateStatus(ctx, otherAccount, r.ID, model.StatusConfirmed)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Pending cannot jump straight to Completed.
	_, err = svc.UpdateStatus(ctx, companyAccount, r.ID, model.StatusCompleted)
	assert.ErrorIs(t, err, ErrStateConflict)

	upd, err := svc.UpdateStatus(ctx, companyAccount, r.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, upd.Status)
	assert.NotNil(t, upd.UpdatedDate)

	upd, err = svc.UpdateStatus(ctx, companyAccount, r.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, upd.Status)

	// Terminal states admit nothing further; the row stays as it was.
	_, err = svc.UpdateStatus(ctx, companyAccount, r.ID, model.StatusConfirmed)
	assert.ErrorIs(t, err, ErrStateConflict)
	got, err := svc.GetReservation(ctx, companyAccount, model.RoleCompany, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)

	_, err = svc.UpdateStatus(ctx, companyAccount, 404, model.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReservation_Visibility(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	r, err := svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: monday.Add(11 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.GetReservation(ctx, userAccount, model.RoleUser, r.ID)
	assert.NoError(t, err)
	_, err = svc.GetReservation(ctx, companyAccount, model.RoleCompany, r.ID)
	assert.NoError(t, err)
	_, err = svc.GetReservation(ctx, otherAccount, model.RoleCompany, r.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.GetReservation(ctx, userAccount, model.RoleUser, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeReservations_ScopedToEmployer(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, userAccount, model.RoleUser, CreateRequest{
		ServiceID: serviceID, EmployeeID: employeeID, StartTime: monday.Add(12 * time.Hour),
	})
	require.NoError(t, err)

	list, err := svc.EmployeeReservations(ctx, companyAccount, employeeID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.EmployeeReservations(ctx, otherAccount, employeeID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.EmployeeReservations(ctx, companyAccount, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrorsStayTyped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrSlotUnavailable))
	assert.True(t, errors.Is(wrapped, ErrSlotUnavailable))
	assert.False(t, errors.Is(wrapped, ErrStateConflict))
}
