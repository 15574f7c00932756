package repos

import (
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db sqlx.Ext }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// Active returns the user's active cart, or domain.ErrNotFound.
func (r *CartRepo) Active(userID string) (domain.Cart, error) {
	var c domain.Cart
	err := sqlx.Get(r.db, &c, `
	  SELECT id, user_id, status, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM carts WHERE user_id = ? AND status = 'active'
	`, userID)
	return c, notFound(err)
}

// EnsureActive finds or creates the user's active cart. Two racing callers
// both land on the same row thanks to the partial unique index.
func (r *CartRepo) EnsureActive(userID string) (string, error) {
	if _, err := r.db.Exec(`
		INSERT OR IGNORE INTO carts(id, user_id, status, created_at, updated_at)
		VALUES (?, ?, 'active', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, uuid.NewString(), userID); err != nil {
		return "", err
	}
	c, err := r.Active(userID)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// AddItem inserts a line or bumps the quantity of the existing one.
func (r *CartRepo) AddItem(cartID, productID string, qty int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(id, cart_id, product_id, quantity, created_at)
		VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, uuid.NewString(), cartID, productID, qty)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID)
	return err
}

const cartItemCols = `
	  SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
	         p.name AS product_name, p.price, p.quantity AS on_hand,
	         p.deleted_at IS NOT NULL AS discontinued
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id`

func (r *CartRepo) Items(cartID string) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := sqlx.Select(r.db, &out, cartItemCols+`
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at, ci.rowid
	`, cartID)
	return out, err
}

// Item returns a single line together with the owner of its cart.
func (r *CartRepo) Item(itemID string) (domain.CartItem, string, error) {
	var row struct {
		domain.CartItem
		OwnerID string `db:"owner_id"`
	}
	err := sqlx.Get(r.db, &row, `
	  SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
	         p.name AS product_name, p.price, p.quantity AS on_hand,
	         p.deleted_at IS NOT NULL AS discontinued, c.user_id AS owner_id
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  JOIN carts c ON c.id = ci.cart_id
	  WHERE ci.id = ?
	`, itemID)
	if err != nil {
		return domain.CartItem{}, "", notFound(err)
	}
	return row.CartItem, row.OwnerID, nil
}

func (r *CartRepo) SetQuantity(itemID string, qty int) error {
	res, err := r.db.Exec(`UPDATE cart_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, qty, itemID)
	return affected(res, err)
}

func (r *CartRepo) RemoveItem(itemID string) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE id = ?`, itemID)
	return affected(res, err)
}

// CheckOut retires an active cart and drops its lines; the cart row stays for history.
func (r *CartRepo) CheckOut(cartID string) error {
	res, err := r.db.Exec(`
		UPDATE carts SET status = 'checked_out', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'active'
	`, cartID)
	if err := affected(res, err); err != nil {
		return err
	}
	_, err = r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
