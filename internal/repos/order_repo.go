package repos

import (
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db sqlx.Ext }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
	  SELECT o.id, o.user_id, COALESCE(u.name,'') AS user_name, o.total_price, o.status,
	         COALESCE(o.payment_method,'') AS payment_method, o.created_at,
	         COALESCE(o.updated_at,'') AS updated_at
	  FROM orders o LEFT JOIN users u ON u.id = o.user_id`

// Create inserts the order header in pending status together with its lines.
func (r *OrderRepo) Create(o domain.Order) error {
	if _, err := r.db.Exec(`
	  INSERT INTO orders(id, user_id, total_price, status, payment_method, created_at, updated_at)
	  VALUES (?, ?, ?, 'pending', ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.TotalPrice, o.PaymentMethod); err != nil {
		return err
	}
	for _, it := range o.Items {
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := r.db.Exec(`
		  INSERT INTO order_items(id, order_id, product_id, quantity, unit_price, created_at)
		  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, id, o.ID, it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// Get loads an order header and its lines.
func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.Get(r.db, &o, orderCols+` WHERE o.id = ?`, orderID); err != nil {
		return domain.Order{}, notFound(err)
	}
	items, err := r.Items(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) Items(orderID string) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := sqlx.Select(r.db, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name,'') AS product_name, oi.quantity, oi.unit_price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ? AND oi.deleted_at IS NULL
		ORDER BY oi.rowid
	`, orderID)
	return items, err
}

// HasProduct reports whether the order carries a line for productID.
func (r *OrderRepo) HasProduct(orderID, productID string) (bool, error) {
	var n int
	err := sqlx.Get(r.db, &n, `
		SELECT COUNT(*) FROM order_items
		WHERE order_id = ? AND product_id = ? AND deleted_at IS NULL
	`, orderID, productID)
	return n > 0, err
}

// Transition moves an order from one status to another. It reports false when
// the order was not in the expected status, which makes replays no-ops.
func (r *OrderRepo) Transition(orderID string, from, to domain.OrderStatus) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, to, orderID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *OrderRepo) ListByUser(userID string, status domain.OrderStatus) ([]domain.Order, error) {
	q := orderCols + ` WHERE o.user_id = ?`
	args := []any{userID}
	if status != "" {
		q += ` AND o.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY o.created_at DESC, o.rowid DESC`
	return r.listWithItems(q, args...)
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.listWithItems(orderCols+` ORDER BY o.created_at DESC, o.rowid DESC LIMIT ?`, limit)
}

// StalePending lists ids of pending orders created before cutoff.
func (r *OrderRepo) StalePending(cutoff string) ([]string, error) {
	var ids []string
	err := sqlx.Select(r.db, &ids, `
		SELECT id FROM orders WHERE status = 'pending' AND created_at < ? ORDER BY created_at
	`, cutoff)
	return ids, err
}

func (r *OrderRepo) listWithItems(q string, args ...any) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := sqlx.Select(r.db, &out, q, args...); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.Items(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}
