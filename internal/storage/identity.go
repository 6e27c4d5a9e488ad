package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/db"
)

// IdentityRepository stores accounts and the client/company profiles hanging
// off them. It backs both the auth handlers and the scheduling core's
// account-to-profile resolution.
type IdentityRepository struct {
	pool *db.Pool
}

func NewIdentityRepository(pool *db.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) CreateAccount(ctx context.Context, a *model.Account) (*model.Account, error) {
	created := *a
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, phone_number, password_hash, role)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, registration_date
	`, a.Email, a.PhoneNumber, a.PasswordHash, string(a.Role)).
		Scan(&created.ID, &created.RegistrationDate)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &created, nil
}

func (r *IdentityRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, bool, error) {
	a, err := r.scanAccount(r.pool.QueryRow(ctx, `
		SELECT id, email, COALESCE(phone_number, ''), password_hash, role, registration_date
		FROM accounts
		WHERE email = $1
	`, email))
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select account by email: %w", err)
	}
	return a, true, nil
}

func (r *IdentityRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, bool, error) {
	a, err := r.scanAccount(r.pool.QueryRow(ctx, `
		SELECT id, email, COALESCE(phone_number, ''), password_hash, role, registration_date
		FROM accounts
		WHERE id = $1
	`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select account %s: %w", id, err)
	}
	return a, true, nil
}

func (r *IdentityRepository) CreateClient(ctx context.Context, c *model.Client) (*model.Client, error) {
	created := *c
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clients (account_id, first_name, last_name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.AccountID, c.FirstName, c.LastName).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}
	return &created, nil
}

func (r *IdentityRepository) CreateCompany(ctx context.Context, c *model.Company) (*model.Company, error) {
	created := *c
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (account_id, name, city, postal_code, street, description)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id
	`, c.AccountID, c.Name, c.City, c.PostalCode, c.Street, c.Description).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return &created, nil
}

func (r *IdentityRepository) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, name, COALESCE(city, ''), COALESCE(postal_code, ''),
			COALESCE(street, ''), COALESCE(description, '')
		FROM companies
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.City, &c.PostalCode, &c.Street, &c.Description); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *IdentityRepository) ClientIDByAccount(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM clients WHERE account_id = $1
	`, accountID).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select client by account: %w", err)
	}
	return id, true, nil
}

func (r *IdentityRepository) CompanyIDByAccount(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM companies WHERE account_id = $1
	`, accountID).Scan(&id)
	if err != nil {
		if IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select company by account: %w", err)
	}
	return id, true, nil
}

func (r *IdentityRepository) scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PhoneNumber, &a.PasswordHash, &a.Role, &a.RegistrationDate); err != nil {
		return nil, err
	}
	return &a, nil
}
