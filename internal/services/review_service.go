package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

const maxCommentLen = 1000

type ReviewService struct {
	Store *repos.Store
	// RequireShipped only accepts reviews for orders that have shipped.
	RequireShipped bool
}

func NewReviewService(store *repos.Store, requireShipped bool) *ReviewService {
	return &ReviewService{Store: store, RequireShipped: requireShipped}
}

// Submit records one review per (user, order, product).
func (s *ReviewService) Submit(ctx context.Context, user *domain.User, orderID, productID string, rating int, comment string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, domain.Invalid("rating", "must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxCommentLen {
		return domain.Review{}, domain.Invalid("comment", "must be at most 1000 characters")
	}

	o, err := s.Store.Orders().Get(orderID)
	if err != nil {
		return domain.Review{}, err
	}
	if o.UserID != user.ID {
		return domain.Review{}, domain.ErrForbidden
	}
	has, err := s.Store.Orders().HasProduct(orderID, productID)
	if err != nil {
		return domain.Review{}, err
	}
	if !has {
		return domain.Review{}, domain.ErrInvalidAssociation
	}
	if s.RequireShipped && o.Status != domain.OrderShipped {
		return domain.Review{}, domain.ErrInvalidTransition
	}
	dup, err := s.Store.Reviews().Exists(user.ID, orderID, productID)
	if err != nil {
		return domain.Review{}, err
	}
	if dup {
		return domain.Review{}, domain.ErrDuplicateReview
	}

	rv := domain.Review{UserID: user.ID, OrderID: orderID, ProductID: productID, Rating: rating, Comment: comment}
	id, err := s.Store.Reviews().Create(rv)
	if err != nil {
		return domain.Review{}, err
	}
	return s.Store.Reviews().Get(id)
}

func (s *ReviewService) ForProduct(productID string, limit int) ([]domain.Review, error) {
	return s.Store.Reviews().ListByProduct(productID, limit)
}
