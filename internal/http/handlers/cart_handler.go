package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

func formQty(c *fiber.Ctx, def int) (int, error) {
	qty, ok := validate.Qty(c.FormValue("quantity"), def)
	if !ok {
		return 0, domain.Invalid("quantity", "must be a whole number of at least 1")
	}
	return qty, nil
}

func formID(c *fiber.Ctx, field string) (string, error) {
	id, ok := validate.ID(c.FormValue(field))
	if !ok {
		return "", domain.Invalid(field, "missing or malformed")
	}
	return id, nil
}

func paramID(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	productID, err := formID(c, "product_id")
	if err != nil {
		return fail(c, "cart.add", err)
	}
	qty, err := formQty(c, 1)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	if err := h.Cart.Add(u.ID, productID, qty); err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.Redirect("/cart")
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(currentUser(c).ID)
	if err != nil {
		return err
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

// POST /cart/items/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	itemID, err := paramID(c)
	if err != nil {
		return fail(c, "cart.update", err)
	}
	qty, err := formQty(c, 0)
	if err != nil {
		return fail(c, "cart.update", err)
	}
	if err := h.Cart.UpdateQuantity(currentUser(c).ID, itemID, qty); err != nil {
		return fail(c, "cart.update", err)
	}
	return c.Redirect("/cart")
}

// POST /cart/items/:id/delete
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	itemID, err := paramID(c)
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	if err := h.Cart.Remove(currentUser(c).ID, itemID); err != nil {
		return fail(c, "cart.remove", err)
	}
	return c.Redirect("/cart")
}
