package handlers

import (
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Orders *services.OrderService
}

var orderTabs = []domain.OrderStatus{domain.OrderPending, domain.OrderPaid, domain.OrderShipped, domain.OrderCancelled}

// GET /orders?tab=
func (h *OrderHandler) History(c *fiber.Ctx) error {
	tab := c.Query("tab")
	if _, ok := domain.ParseOrderStatus(tab); !ok {
		tab = ""
	}
	orders, err := h.Orders.History(currentUser(c).ID, tab)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return message(c, fiber.StatusInternalServerError, "Could not load orders")
	}
	return render(c, "orders", fiber.Map{"Orders": orders, "Tab": tab, "Tabs": orderTabs, "Flash": takeFlash(c)})
}

// POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, "order.cancel", err)
	}
	if err := h.Orders.Cancel(c.UserContext(), currentUser(c), id); err != nil {
		return fail(c, "order.cancel", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": id})
	return c.Redirect("/orders?tab=cancelled")
}
