package storage

import (
	"context"
	"fmt"

	"github.com/rezervalabs/rezerva/internal/model"
	"github.com/rezervalabs/rezerva/libs/db"
)

type SubcategoryRepository struct {
	pool *db.Pool
}

func NewSubcategoryRepository(pool *db.Pool) *SubcategoryRepository {
	return &SubcategoryRepository{pool: pool}
}

func (r *SubcategoryRepository) Create(ctx context.Context, s *model.Subcategory) (*model.Subcategory, error) {
	created := *s
	err := r.pool.QueryRow(ctx, `
		INSERT INTO company_subcategories (company_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, s.CompanyID, s.Name).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert subcategory: %w", err)
	}
	return &created, nil
}

func (r *SubcategoryRepository) ListByCompany(ctx context.Context, companyID int64) ([]model.Subcategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, name
		FROM company_subcategories
		WHERE company_id = $1
		ORDER BY name ASC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var out []model.Subcategory
	for rows.Next() {
		var s model.Subcategory
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Owned reports whether the subcategory exists and belongs to the company.
// Service creation validates its subcategory through this.
func (r *SubcategoryRepository) Owned(ctx context.Context, companyID, subcategoryID int64) (bool, error) {
	var owned bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM company_subcategories
			WHERE id = $1 AND company_id = $2
		)
	`, subcategoryID, companyID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("check subcategory ownership: %w", err)
	}
	return owned, nil
}
