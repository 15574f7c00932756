package repos

import (
	"strings"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db sqlx.Ext }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    p.id, p.name, p.sku, p.category_id, COALESCE(c.name,'') AS category_name,
    COALESCE(p.supplier_id,'') AS supplier_id, COALESCE(s.name,'') AS supplier_name,
    p.price, p.quantity, COALESCE(p.image_path,'') AS image_path,
    COALESCE(p.description,'') AS description,
    p.created_at, COALESCE(p.updated_at,'') AS updated_at
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id
  LEFT JOIN suppliers s ON s.id = p.supplier_id AND s.deleted_at IS NULL`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(r.db, &p, `SELECT `+productCols+`
  WHERE p.id = ? AND p.deleted_at IS NULL`, id)
	return p, notFound(err)
}

// Search applies every non-empty criterion in f, newest first.
func (r *ProductRepo) Search(f domain.ProductFilter, limit, offset int) ([]domain.Product, error) {
	where := []string{`p.deleted_at IS NULL`}
	args := []any{}
	like := func(s string) string { return "%" + strings.ToLower(strings.TrimSpace(s)) + "%" }

	if strings.TrimSpace(f.Name) != "" {
		where = append(where, `LOWER(p.name) LIKE ?`)
		args = append(args, like(f.Name))
	}
	if strings.TrimSpace(f.SKU) != "" {
		where = append(where, `LOWER(p.sku) LIKE ?`)
		args = append(args, like(f.SKU))
	}
	if strings.TrimSpace(f.Category) != "" {
		where = append(where, `LOWER(c.name) LIKE ?`)
		args = append(args, like(f.Category))
	}
	if strings.TrimSpace(f.Supplier) != "" {
		where = append(where, `LOWER(s.name) LIKE ?`)
		args = append(args, like(f.Supplier))
	}
	if f.MinPrice != nil {
		where = append(where, `p.price >= ?`)
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where = append(where, `p.price <= ?`)
		args = append(args, f.MaxPrice.InexactFloat64())
	}

	q := `SELECT ` + productCols + `
  WHERE ` + strings.Join(where, " AND ") + `
  ORDER BY p.created_at DESC, p.rowid DESC
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	out := []domain.Product{}
	err := sqlx.Select(r.db, &out, q, args...)
	return out, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, name, sku, category_id, supplier_id, price, quantity, image_path, description, created_at)
	  VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.SKU, p.CategoryID, p.SupplierID, p.Price, p.Quantity, p.ImagePath, p.Description)
	return err
}

// Update never touches quantity; stock moves only through the ledger.
func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET name = ?, category_id = ?, supplier_id = NULLIF(?, ''), price = ?,
	      image_path = ?, description = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND deleted_at IS NULL
	`, p.Name, p.CategoryID, p.SupplierID, p.Price, p.ImagePath, p.Description, p.ID)
	return affected(res, err)
}

func (r *ProductRepo) SoftDelete(id string) error {
	res, err := r.db.Exec(`UPDATE products SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	return affected(res, err)
}

func (r *ProductRepo) Quantity(id string) (int, error) {
	var qty int
	err := sqlx.Get(r.db, &qty, `SELECT quantity FROM products WHERE id = ? AND deleted_at IS NULL`, id)
	return qty, notFound(err)
}

func (r *ProductRepo) Increment(id string, by int) error {
	res, err := r.db.Exec(`
		UPDATE products SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`, by, id)
	return affected(res, err)
}

// Decrement subtracts "by" units only if enough stock exists.
// It reports false, with no change, when the product holds fewer than "by"
// or has been deleted.
func (r *ProductRepo) Decrement(id string, by int) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE products SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ? AND deleted_at IS NULL
	`, by, id, by)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SoldQuantity sums units on paid or shipped orders.
func (r *ProductRepo) SoldQuantity(id string) (int, error) {
	var n int
	err := sqlx.Get(r.db, &n, `
	  SELECT COALESCE(SUM(oi.quantity), 0)
	  FROM order_items oi JOIN orders o ON o.id = oi.order_id
	  WHERE oi.product_id = ? AND oi.deleted_at IS NULL AND o.status IN ('paid','shipped')
	`, id)
	return n, err
}

func (r *ProductRepo) CategoryExists(id string) (bool, error) {
	var n int
	err := sqlx.Get(r.db, &n, `SELECT COUNT(*) FROM categories WHERE id = ?`, id)
	return n > 0, err
}

func (r *ProductRepo) SupplierExists(id string) (bool, error) {
	var n int
	err := sqlx.Get(r.db, &n, `SELECT COUNT(*) FROM suppliers WHERE id = ? AND deleted_at IS NULL`, id)
	return n > 0, err
}
