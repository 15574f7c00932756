package repos

import (
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// StockRepo is the append-only stock ledger.
type StockRepo struct{ db sqlx.Ext }

func NewStockRepo(db *sqlx.DB) *StockRepo { return &StockRepo{db: db} }

func (r *StockRepo) Append(m domain.StockMovement) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO stock_movements(id, product_id, type, quantity, note, performed_by, created_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), CURRENT_TIMESTAMP)
	`, m.ID, m.ProductID, m.Type, m.Quantity, m.Note, m.PerformedBy)
	return m.ID, err
}

// ListByProduct returns movements newest first.
func (r *StockRepo) ListByProduct(productID string) ([]domain.StockMovement, error) {
	out := []domain.StockMovement{}
	err := sqlx.Select(r.db, &out, `
		SELECT m.id, m.product_id, m.type, m.quantity, COALESCE(m.note,'') AS note,
		       COALESCE(m.performed_by,'') AS performed_by, COALESCE(u.name,'') AS performer_name,
		       m.created_at
		FROM stock_movements m
		LEFT JOIN users u ON u.id = m.performed_by
		WHERE m.product_id = ? AND m.deleted_at IS NULL
		ORDER BY m.created_at DESC, m.rowid DESC
	`, productID)
	return out, err
}

// Net is the signed sum of all movements for a product (in minus out).
func (r *StockRepo) Net(productID string) (int, error) {
	var n int
	err := sqlx.Get(r.db, &n, `
		SELECT COALESCE(SUM(CASE type WHEN 'in' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements WHERE product_id = ? AND deleted_at IS NULL
	`, productID)
	return n, err
}
