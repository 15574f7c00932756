package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT
	    id,
	    name,
	    created_at,
	    COALESCE(updated_at,'') AS updated_at
	  FROM categories
	  ORDER BY name
	`)
	return out, err
}

func (r *CategoryRepo) Suppliers() ([]domain.Supplier, error) {
	var out []domain.Supplier
	err := r.db.Select(&out, `
	  SELECT id, name, COALESCE(email,'') AS email, COALESCE(phone,'') AS phone, created_at
	  FROM suppliers
	  WHERE deleted_at IS NULL
	  ORDER BY name
	`)
	return out, err
}
