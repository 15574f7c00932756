package repos

import (
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReviewRepo struct{ db sqlx.Ext }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Exists(userID, orderID, productID string) (bool, error) {
	var n int
	err := sqlx.Get(r.db, &n, `
		SELECT COUNT(*) FROM reviews
		WHERE user_id = ? AND order_id = ? AND product_id = ? AND deleted_at IS NULL
	`, userID, orderID, productID)
	return n > 0, err
}

// Create inserts a review; a unique-index hit is reported as domain.ErrDuplicateReview.
func (r *ReviewRepo) Create(rv domain.Review) (string, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO reviews(id, user_id, product_id, order_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, rv.ID, rv.UserID, rv.ProductID, rv.OrderID, rv.Rating, rv.Comment)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", domain.ErrDuplicateReview
		}
		return "", err
	}
	return rv.ID, nil
}

func (r *ReviewRepo) Get(id string) (domain.Review, error) {
	var rv domain.Review
	err := sqlx.Get(r.db, &rv, `
		SELECT rv.id, rv.user_id, COALESCE(u.name,'') AS user_name, rv.product_id, rv.order_id,
		       rv.rating, COALESCE(rv.comment,'') AS comment, rv.created_at
		FROM reviews rv LEFT JOIN users u ON u.id = rv.user_id
		WHERE rv.id = ? AND rv.deleted_at IS NULL
	`, id)
	return rv, notFound(err)
}

func (r *ReviewRepo) ListByProduct(productID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 5
	}
	out := []domain.Review{}
	err := sqlx.Select(r.db, &out, `
		SELECT rv.id, rv.user_id, COALESCE(u.name,'') AS user_name, rv.product_id, rv.order_id,
		       rv.rating, COALESCE(rv.comment,'') AS comment, rv.created_at
		FROM reviews rv LEFT JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id = ? AND rv.deleted_at IS NULL
		ORDER BY rv.created_at DESC, rv.rowid DESC
		LIMIT ?
	`, productID, limit)
	return out, err
}

// AvgRating returns the mean rating and the review count for a product.
func (r *ReviewRepo) AvgRating(productID string) (float64, int, error) {
	var row struct {
		Avg   float64 `db:"avg"`
		Count int     `db:"cnt"`
	}
	err := sqlx.Get(r.db, &row, `
		SELECT COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt
		FROM reviews WHERE product_id = ? AND deleted_at IS NULL
	`, productID)
	return row.Avg, row.Count, err
}
