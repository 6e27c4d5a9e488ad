package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rezervalabs/rezerva/internal/availability"
	"github.com/rezervalabs/rezerva/internal/model"
)

// ReservationStore is the booking ledger. Create persists the reservation and
// its outbox event in one transaction; implementations return ErrStateConflict
// when the employee's time range is already taken.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	GetByID(ctx context.Context, id int64) (*model.Reservation, bool, error)
	ListBlocking(ctx context.Context, employeeID int64, day time.Time) ([]model.Reservation, error)
	ListByClient(ctx context.Context, clientID int64) ([]model.Reservation, error)
	ListByCompany(ctx context.Context, companyID int64) ([]model.Reservation, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) (*model.Reservation, error)
}

// Directory answers catalog lookups: services, rosters, employees.
type Directory interface {
	GetService(ctx context.Context, id int64) (model.Service, bool, error)
	IsEmployeeAssigned(ctx context.Context, serviceID, employeeID int64) (bool, error)
	EmployeeCompany(ctx context.Context, employeeID int64) (int64, bool, error)
}

// Hours resolves a company's window for one weekday, absent when no row exists.
type Hours interface {
	GetWorkingDay(ctx context.Context, companyID int64, day model.Weekday) (model.WorkingDay, bool, error)
}

// Identity maps an account to the profile its role implies.
type Identity interface {
	ClientIDByAccount(ctx context.Context, accountID uuid.UUID) (int64, bool, error)
	CompanyIDByAccount(ctx context.Context, accountID uuid.UUID) (int64, bool, error)
}

// Service orchestrates slot computation and reservation lifecycle. All
// collaborators are passed in; now is injectable so tests can pin the clock.
type Service struct {
	reservations ReservationStore
	directory    Directory
	hours        Hours
	identity     Identity
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(reservations ReservationStore, directory Directory, hours Hours, identity Identity, logger *slog.Logger) *Service {
	return &Service{
		reservations: reservations,
		directory:    directory,
		hours:        hours,
		identity:     identity,
		logger:       logger,
		now:          time.Now,
	}
}

// WithNow overrides the clock. Test hook.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateRequest is a parsed booking request. StartTime is a naive local
// datetime; the day portion selects the working-day window.
type CreateRequest struct {
	ServiceID  int64
	EmployeeID int64
	StartTime  time.Time
	Note       string
}

// AvailableSlots computes the bookable start times for one employee, service
// and calendar day. It returns ErrNotFound when the service does not exist or
// the employee is not on its roster; a valid day with nothing open returns an
// empty slice.
func (s *Service) AvailableSlots(ctx context.Context, employeeID, serviceID int64, day time.Time) ([]time.Time, error) {
	svc, ok, err := s.directory.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("lookup service %d: %w", serviceID, err)
	}
	if !ok {
		return nil, fmt.Errorf("service %d: %w", serviceID, ErrNotFound)
	}

	assigned, err := s.directory.IsEmployeeAssigned(ctx, serviceID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("lookup roster for service %d: %w", serviceID, err)
	}
	if !assigned {
		return nil, fmt.Errorf("employee %d does not serve service %d: %w", employeeID, serviceID, ErrNotFound)
	}

	now := s.now()
	day = dateOf(day)
	if day.Before(dateOf(now)) {
		return []time.Time{}, nil
	}

	wd, ok, err := s.hours.GetWorkingDay(ctx, svc.CompanyID, model.WeekdayOf(day))
	if err != nil {
		return nil, fmt.Errorf("lookup working day: %w", err)
	}
	if !ok || wd.Closed() {
		return []time.Time{}, nil
	}

	booked, err := s.reservations.ListBlocking(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("list reservations for employee %d: %w", employeeID, err)
	}

	open := wd.OpeningTime.At(day)
	close := wd.ClosingTime.At(day)
	duration := time.Duration(svc.DurationMinutes) * time.Minute
	slots := availability.Slots(open, close, duration, booked, now)
	if slots == nil {
		slots = []time.Time{}
	}
	return slots, nil
}

// CreateReservation validates a booking request against current availability
// and persists it. Every step is a hard precondition; nothing is written until
// all of them pass, and the store's overlap guard settles races that slip past
// the availability check.
func (s *Service) CreateReservation(ctx context.Context, accountID uuid.UUID, role model.Role, req CreateRequest) (*model.Reservation, error) {
	var (
		clientID *int64
		status   model.Status
	)
	switch role {
	case model.RoleUser:
		id, ok, err := s.identity.ClientIDByAccount(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("resolve client for account %s: %w", accountID, err)
		}
		if !ok {
			return nil, fmt.Errorf("account %s has no client profile: %w", accountID, ErrUnauthorized)
		}
		clientID = &id
		status = model.StatusPending
	case model.RoleCompany:
		if _, ok, err := s.identity.CompanyIDByAccount(ctx, accountID); err != nil {
			return nil, fmt.Errorf("resolve company for account %s: %w", accountID, err)
		} else if !ok {
			return nil, fmt.Errorf("account %s has no company profile: %w", accountID, ErrUnauthorized)
		}
		status = model.StatusConfirmed
	default:
		return nil, fmt.Errorf("role %q cannot book: %w", role, ErrUnauthorized)
	}

	svc, ok, err := s.directory.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("lookup service %d: %w", req.ServiceID, err)
	}
	if !ok {
		return nil, fmt.Errorf("service %d: %w", req.ServiceID, ErrNotFound)
	}

	slots, err := s.AvailableSlots(ctx, req.EmployeeID, req.ServiceID, req.StartTime)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("employee/service not bookable: %w", ErrSlotUnavailable)
		}
		return nil, err
	}
	if !containsSlot(slots, req.StartTime) {
		return nil, fmt.Errorf("start %s is not an open slot: %w", req.StartTime.Format("2006-01-02T15:04:05"), ErrSlotUnavailable)
	}

	r := &model.Reservation{
		ClientID:   clientID,
		CompanyID:  svc.CompanyID,
		ServiceID:  req.ServiceID,
		EmployeeID: req.EmployeeID,
		StartTime:  req.StartTime,
		EndTime:    req.StartTime.Add(time.Duration(svc.DurationMinutes) * time.Minute),
		Status:     status,
		Note:       req.Note,
	}
	created, err := s.reservations.Create(ctx, r)
	if err != nil {
		if errors.Is(err, ErrStateConflict) {
			s.logger.Info("booking race lost", "employee_id", req.EmployeeID, "start", req.StartTime)
			return nil, err
		}
		return nil, fmt.Errorf("persist reservation: %w", err)
	}
	return created, nil
}

// UpdateStatus applies one lifecycle transition on behalf of the owning
// company. Ownership and the terminal-state check are both evaluated here,
// before any mutation.
func (s *Service) UpdateStatus(ctx context.Context, accountID uuid.UUID, reservationID int64, next model.Status) (*model.Reservation, error) {
	companyID, ok, err := s.identity.CompanyIDByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve company for account %s: %w", accountID, err)
	}
	if !ok {
		return nil, fmt.Errorf("account %s has no company profile: %w", accountID, ErrUnauthorized)
	}

	r, ok, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("load reservation %d: %w", reservationID, err)
	}
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}
	if r.CompanyID != companyID {
		return nil, fmt.Errorf("reservation %d is not managed by company %d: %w", reservationID, companyID, ErrUnauthorized)
	}
	if r.Status.Terminal() {
		return nil, fmt.Errorf("reservation %d is closed (%s): %w", reservationID, r.Status, ErrStateConflict)
	}
	if !r.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("transition %s -> %s not permitted: %w", r.Status, next, ErrStateConflict)
	}

	updated, err := s.reservations.UpdateStatus(ctx, reservationID, next)
	if err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", reservationID, err)
	}
	return updated, nil
}

// GetReservation loads one reservation for a caller that may view it: the
// booking client or the managing company.
func (s *Service) GetReservation(ctx context.Context, accountID uuid.UUID, role model.Role, reservationID int64) (*model.Reservation, error) {
	r, ok, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("load reservation %d: %w", reservationID, err)
	}
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, ErrNotFound)
	}

	switch role {
	case model.RoleUser:
		clientID, ok, err := s.identity.ClientIDByAccount(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("resolve client for account %s: %w", accountID, err)
		}
		if !ok || r.ClientID == nil || *r.ClientID != clientID {
			return nil, fmt.Errorf("reservation %d is not visible to this client: %w", reservationID, ErrUnauthorized)
		}
	case model.RoleCompany:
		companyID, ok, err := s.identity.CompanyIDByAccount(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("resolve company for account %s: %w", accountID, err)
		}
		if !ok || r.CompanyID != companyID {
			return nil, fmt.Errorf("reservation %d is not managed by this company: %w", reservationID, ErrUnauthorized)
		}
	default:
		return nil, fmt.Errorf("role %q: %w", role, ErrUnauthorized)
	}
	return r, nil
}

// ClientReservations lists the caller's own bookings.
func (s *Service) ClientReservations(ctx context.Context, accountID uuid.UUID) ([]model.Reservation, error) {
	clientID, ok, err := s.identity.ClientIDByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve client for account %s: %w", accountID, err)
	}
	if !ok {
		return nil, fmt.Errorf("account %s has no client profile: %w", accountID, ErrUnauthorized)
	}
	return s.reservations.ListByClient(ctx, clientID)
}

// CompanyReservations lists every booking managed by the caller's company.
func (s *Service) CompanyReservations(ctx context.Context, accountID uuid.UUID) ([]model.Reservation, error) {
	companyID, ok, err := s.identity.CompanyIDByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve company for account %s: %w", accountID, err)
	}
	if !ok {
		return nil, fmt.Errorf("account %s has no company profile: %w", accountID, ErrUnauthorized)
	}
	return s.reservations.ListByCompany(ctx, companyID)
}

// EmployeeReservations lists one employee's bookings for the company that
// employs them.
func (s *Service) EmployeeReservations(ctx context.Context, accountID uuid.UUID, employeeID int64) ([]model.Reservation, error) {
	companyID, ok, err := s.identity.CompanyIDByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve company for account %s: %w", accountID, err)
	}
	if !ok {
		return nil, fmt.Errorf("account %s has no company profile: %w", accountID, ErrUnauthorized)
	}
	employerID, ok, err := s.directory.EmployeeCompany(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("lookup employee %d: %w", employeeID, err)
	}
	if !ok {
		return nil, fmt.Errorf("employee %d: %w", employeeID, ErrNotFound)
	}
	if employerID != companyID {
		return nil, fmt.Errorf("employee %d belongs to another company: %w", employeeID, ErrUnauthorized)
	}
	return s.reservations.ListByEmployee(ctx, employeeID)
}

func containsSlot(slots []time.Time, start time.Time) bool {
	for _, s := range slots {
		if s.Equal(start) {
			return true
		}
	}
	return false
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
