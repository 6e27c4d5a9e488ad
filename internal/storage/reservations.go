package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rezervalabs/rezerva/internal/booking"
	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/internal/outbox"
	"github.com/rezervalabs/rezerva/libs/db"
)

const reservationColumns = `id, client_id, company_id, service_id, employee_id,
	start_time, end_time, status, COALESCE(note, ''), created_date, updated_date`

// orderByStatusRank mirrors the status rank table: actionable reservations
// first, then chronological. Keep in sync with model.Status.
const orderByStatusRank = `
	ORDER BY CASE status
		WHEN 'Pending approval' THEN 1
		WHEN 'Confirmed' THEN 2
		WHEN 'Completed' THEN 3
		WHEN 'Cancelled' THEN 4
		ELSE 5
	END, start_time ASC`

// ReservationRepository is the booking ledger over Postgres. Writes go through
// a single transaction together with their outbox event. The reservations
// table carries an exclusion constraint on (employee_id, time range) filtered
// to blocking statuses; it is the final arbiter of double bookings.
type ReservationRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewReservationRepository(pool *db.Pool, outboxRepo *outbox.Repository) *ReservationRepository {
	return &ReservationRepository{pool: pool, outbox: outboxRepo}
}

func (r *ReservationRepository) Create(ctx context.Context, rsv *model.Reservation) (*model.Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", booking.ErrPersistence)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := *rsv
	err = tx.QueryRow(ctx, `
		INSERT INTO reservations
			(client_id, company_id, service_id, employee_id, start_time, end_time, status, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING id, created_date
	`, rsv.ClientID, rsv.CompanyID, rsv.ServiceID, rsv.EmployeeID,
		rsv.StartTime, rsv.EndTime, string(rsv.Status), rsv.Note).
		Scan(&created.ID, &created.CreatedDate)
	if err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("employee %d already booked in [%s, %s): %w",
				rsv.EmployeeID, rsv.StartTime, rsv.EndTime, booking.ErrStateConflict)
		}
		return nil, fmt.Errorf("insert reservation: %v: %w", err, booking.ErrPersistence)
	}

	evt, err := outbox.ReservationCreated(&created)
	if err != nil {
		return nil, fmt.Errorf("build created event: %v: %w", err, booking.ErrPersistence)
	}
	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return nil, fmt.Errorf("write outbox event: %v: %w", err, booking.ErrPersistence)
	}

	if err := tx.Commit(ctx); err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("employee %d already booked: %w", rsv.EmployeeID, booking.ErrStateConflict)
		}
		return nil, fmt.Errorf("commit reservation: %v: %w", err, booking.ErrPersistence)
	}
	return &created, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1
	`, id)
	rsv, err := scanReservation(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select reservation %d: %v: %w", id, err, booking.ErrPersistence)
	}
	return rsv, true, nil
}

// ListBlocking returns the employee's Pending/Confirmed reservations whose
// start falls on the given calendar day. Terminal rows never block a slot, so
// they are filtered store-side.
func (r *ReservationRepository) ListBlocking(ctx context.Context, employeeID int64, day time.Time) ([]model.Reservation, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE employee_id = $1
			AND start_time >= $2
			AND start_time < $3
			AND status IN ($4, $5)
		ORDER BY start_time ASC
	`, employeeID, dayStart, dayStart.AddDate(0, 0, 1),
		string(model.StatusPending), string(model.StatusConfirmed))
	if err != nil {
		return nil, fmt.Errorf("list blocking reservations: %v: %w", err, booking.ErrPersistence)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListByClient(ctx context.Context, clientID int64) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE client_id = $1`+orderByStatusRank,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by client: %v: %w", err, booking.ErrPersistence)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListByCompany(ctx context.Context, companyID int64) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE company_id = $1`+orderByStatusRank,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by company: %v: %w", err, booking.ErrPersistence)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE employee_id = $1`+orderByStatusRank,
		employeeID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by employee: %v: %w", err, booking.ErrPersistence)
	}
	return collectReservations(rows)
}

// UpdateStatus applies an already-validated transition, stamps updated_date
// and records the status event, all in one transaction.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status model.Status) (*model.Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", booking.ErrPersistence)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previous model.Status
	if err := tx.QueryRow(ctx, `
		SELECT status FROM reservations WHERE id = $1 FOR UPDATE
	`, id).Scan(&previous); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("reservation %d: %w", id, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("lock reservation %d: %v: %w", id, err, booking.ErrPersistence)
	}

	row := tx.QueryRow(ctx, `
		UPDATE reservations
		SET status = $2, updated_date = now()
		WHERE id = $1
		RETURNING `+reservationColumns,
		id, string(status))
	rsv, err := scanReservation(row)
	if err != nil {
		return nil, fmt.Errorf("update reservation %d: %v: %w", id, err, booking.ErrPersistence)
	}

	at := time.Now()
	if rsv.UpdatedDate != nil {
		at = *rsv.UpdatedDate
	}
	evt, err := outbox.ReservationStatusUpdated(rsv, previous, at)
	if err != nil {
		return nil, fmt.Errorf("build status event: %v: %w", err, booking.ErrPersistence)
	}
	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return nil, fmt.Errorf("write outbox event: %v: %w", err, booking.ErrPersistence)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %v: %w", err, booking.ErrPersistence)
	}
	return rsv, nil
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var rsv model.Reservation
	if err := row.Scan(
		&rsv.ID,
		&rsv.ClientID,
		&rsv.CompanyID,
		&rsv.ServiceID,
		&rsv.EmployeeID,
		&rsv.StartTime,
		&rsv.EndTime,
		&rsv.Status,
		&rsv.Note,
		&rsv.CreatedDate,
		&rsv.UpdatedDate,
	); err != nil {
		return nil, err
	}
	return &rsv, nil
}

func collectReservations(rows pgx.Rows) ([]model.Reservation, error) {
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		rsv, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %v: %w", err, booking.ErrPersistence)
		}
		out = append(out, *rsv)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations: %v: %w", rows.Err(), booking.ErrPersistence)
	}
	return out, nil
}
