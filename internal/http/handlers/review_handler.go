package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

// POST /reviews
func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	orderID, err := formID(c, "order_id")
	if err != nil {
		return fail(c, "review.submit", err)
	}
	productID, err := formID(c, "product_id")
	if err != nil {
		return fail(c, "review.submit", err)
	}
	rating, ok := validate.Rating(c.FormValue("rating"))
	if !ok {
		return fail(c, "review.submit", domain.Invalid("rating", "must be between 1 and 5"))
	}
	rv, err := h.Reviews.Submit(c.UserContext(), currentUser(c), orderID, productID, rating, c.FormValue("comment"))
	if err != nil {
		return fail(c, "review.submit", err)
	}
	applog.Audit(c, "review.submit", map[string]any{"review_id": rv.ID, "order_id": orderID, "product": productID, "rating": rating})
	return c.Redirect("/products/" + productID)
}
