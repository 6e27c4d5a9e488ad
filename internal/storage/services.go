package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/db"
)

const serviceColumns = `id, company_id, subcategory_id, name, COALESCE(description, ''),
	price, duration_minutes, is_active`

// ServiceRepository owns the service catalog and the service/employee roster.
// It also backs the scheduling core's directory lookups, so roster changes and
// availability queries read the same rows.
type ServiceRepository struct {
	pool *db.Pool
}

func NewServiceRepository(pool *db.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) Create(ctx context.Context, svc *model.Service) (*model.Service, error) {
	created := *svc
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_services
			(company_id, subcategory_id, name, description, price, duration_minutes, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, false)
		RETURNING id
	`, svc.CompanyID, svc.SubcategoryID, svc.Name, svc.Description, svc.Price, svc.DurationMinutes).
		Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}
	created.IsActive = false
	return &created, nil
}

func (r *ServiceRepository) GetService(ctx context.Context, id int64) (model.Service, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM company_services
		WHERE id = $1
	`, id)
	svc, err := scanService(row)
	if err != nil {
		if IsNotFound(err) {
			return model.Service{}, false, nil
		}
		return model.Service{}, false, fmt.Errorf("select service %d: %w", id, err)
	}
	return svc, true, nil
}

// ListByCompany returns a company's services, optionally narrowed to one
// subcategory.
func (r *ServiceRepository) ListByCompany(ctx context.Context, companyID int64, subcategoryID *int64) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM company_services
		WHERE company_id = $1
			AND ($2::bigint IS NULL OR subcategory_id = $2)
		ORDER BY name ASC
	`, companyID, subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a company's own service. Existing
// reservations keep their end times even when duration changes.
func (r *ServiceRepository) Update(ctx context.Context, svc *model.Service) (*model.Service, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE company_services
		SET subcategory_id = $3,
			name = $4,
			description = NULLIF($5, ''),
			price = $6,
			duration_minutes = $7
		WHERE id = $1 AND company_id = $2
		RETURNING `+serviceColumns,
		svc.ID, svc.CompanyID, svc.SubcategoryID, svc.Name, svc.Description, svc.Price, svc.DurationMinutes)
	updated, err := scanService(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update service %d: %w", svc.ID, err)
	}
	return &updated, true, nil
}

func (r *ServiceRepository) Delete(ctx context.Context, companyID, serviceID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM company_services
		WHERE id = $1 AND company_id = $2
	`, serviceID, companyID)
	if err != nil {
		return false, fmt.Errorf("delete service %d: %w", serviceID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// AssignEmployee links an employee to a service and marks the service active.
// Both must belong to the given company.
func (r *ServiceRepository) AssignEmployee(ctx context.Context, companyID, serviceID, employeeID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.checkOwnership(ctx, tx, companyID, serviceID, employeeID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO service_employees (service_id, employee_id)
		VALUES ($1, $2)
		ON CONFLICT (service_id, employee_id) DO NOTHING
	`, serviceID, employeeID); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE company_services SET is_active = true WHERE id = $1
	`, serviceID); err != nil {
		return fmt.Errorf("activate service: %w", err)
	}
	return tx.Commit(ctx)
}

// RemoveEmployee unlinks an employee and recomputes is_active from the
// remaining roster.
func (r *ServiceRepository) RemoveEmployee(ctx context.Context, companyID, serviceID, employeeID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.checkOwnership(ctx, tx, companyID, serviceID, employeeID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM service_employees
		WHERE service_id = $1 AND employee_id = $2
	`, serviceID, employeeID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE company_services
		SET is_active = EXISTS (
			SELECT 1 FROM service_employees WHERE service_id = $1
		)
		WHERE id = $1
	`, serviceID); err != nil {
		return fmt.Errorf("recompute is_active: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *ServiceRepository) checkOwnership(ctx context.Context, tx pgx.Tx, companyID, serviceID, employeeID int64) error {
	var serviceOwner, employeeOwner int64
	if err := tx.QueryRow(ctx, `
		SELECT company_id FROM company_services WHERE id = $1
	`, serviceID).Scan(&serviceOwner); err != nil {
		return fmt.Errorf("select service %d: %w", serviceID, err)
	}
	if err := tx.QueryRow(ctx, `
		SELECT company_id FROM employees WHERE id = $1
	`, employeeID).Scan(&employeeOwner); err != nil {
		return fmt.Errorf("select employee %d: %w", employeeID, err)
	}
	if serviceOwner != companyID || employeeOwner != companyID {
		return ErrWrongOwner
	}
	return nil
}

// ListAssignedEmployees returns the public roster for one service.
func (r *ServiceRepository) ListAssignedEmployees(ctx context.Context, serviceID int64) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.company_id, e.first_name, e.last_name, COALESCE(e.email, ''), COALESCE(e.phone_number, '')
		FROM employees e
		JOIN service_employees se ON se.employee_id = e.id
		WHERE se.service_id = $1
		ORDER BY e.last_name, e.first_name
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.FirstName, &e.LastName, &e.Email, &e.PhoneNumber); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ServiceRepository) IsEmployeeAssigned(ctx context.Context, serviceID, employeeID int64) (bool, error) {
	var assigned bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM service_employees
			WHERE service_id = $1 AND employee_id = $2
		)
	`, serviceID, employeeID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return assigned, nil
}

func (r *ServiceRepository) EmployeeCompany(ctx context.Context, employeeID int64) (int64, bool, error) {
	var companyID int64
	err := r.pool.QueryRow(ctx, `
		SELECT company_id FROM employees WHERE id = $1
	`, employeeID).Scan(&companyID)
	if err != nil {
		if IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select employee %d: %w", employeeID, err)
	}
	return companyID, true, nil
}

func scanService(row pgx.Row) (model.Service, error) {
	var svc model.Service
	err := row.Scan(&svc.ID, &svc.CompanyID, &svc.SubcategoryID, &svc.Name,
		&svc.Description, &svc.Price, &svc.DurationMinutes, &svc.IsActive)
	return svc, err
}
