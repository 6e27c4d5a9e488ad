package storage

import (
	"context"
	"fmt"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/db"
)

type EmployeeRepository struct {
	pool *db.Pool
}

func NewEmployeeRepository(pool *db.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	created := *e
	err := r.pool.QueryRow(ctx, `
		INSERT INTO employees (company_id, first_name, last_name, email, phone_number)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id
	`, e.CompanyID, e.FirstName, e.LastName, e.Email, e.PhoneNumber).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return &created, nil
}

func (r *EmployeeRepository) ListByCompany(ctx context.Context, companyID int64) ([]model.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, first_name, last_name, COALESCE(email, ''), COALESCE(phone_number, '')
		FROM employees
		WHERE company_id = $1
		ORDER BY last_name, first_name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
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

// Delete removes a company's own employee together with their roster links,
// deactivating any service left with an empty roster.
func (r *EmployeeRepository) Delete(ctx context.Context, companyID, employeeID int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		DELETE FROM service_employees
		WHERE employee_id = $1
		RETURNING service_id
	`, employeeID)
	if err != nil {
		return false, fmt.Errorf("unlink employee %d: %w", employeeID, err)
	}
	var serviceIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, fmt.Errorf("scan service id: %w", err)
		}
		serviceIDs = append(serviceIDs, id)
	}
	rows.Close()
	if rows.Err() != nil {
		return false, rows.Err()
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM employees
		WHERE id = $1 AND company_id = $2
	`, employeeID, companyID)
	if err != nil {
		return false, fmt.Errorf("delete employee %d: %w", employeeID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, serviceID := range serviceIDs {
		if _, err := tx.Exec(ctx, `
			UPDATE company_services
			SET is_active = EXISTS (
				SELECT 1 FROM service_employees WHERE service_id = $1
			)
			WHERE id = $1
		`, serviceID); err != nil {
			return false, fmt.Errorf("recompute is_active for service %d: %w", serviceID, err)
		}
	}
	return true, tx.Commit(ctx)
}
