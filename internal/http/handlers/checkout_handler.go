package handlers

import (
	"errors"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// POST /checkout
func (h *CheckoutHandler) Cart(c *fiber.Ctx) error {
	res, err := h.Checkout.CheckoutCart(c.UserContext(), currentUser(c))
	if err != nil {
		return fail(c, "checkout.cart", err)
	}
	applog.Audit(c, "checkout.cart", map[string]any{"order_id": res.OrderID})
	return c.Redirect(res.RedirectURL)
}

// POST /checkout/buy-now
func (h *CheckoutHandler) BuyNow(c *fiber.Ctx) error {
	productID, err := formID(c, "product_id")
	if err != nil {
		return fail(c, "checkout.buy_now", err)
	}
	qty, err := formQty(c, 1)
	if err != nil {
		return fail(c, "checkout.buy_now", err)
	}
	res, err := h.Checkout.BuyNow(c.UserContext(), currentUser(c), productID, qty)
	if err != nil {
		return fail(c, "checkout.buy_now", err)
	}
	applog.Audit(c, "checkout.buy_now", map[string]any{"order_id": res.OrderID, "product": productID, "qty": qty})
	return c.Redirect(res.RedirectURL)
}

func queryOrderID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Query("order_id"))
}

// GET /checkout/success?order_id=
func (h *CheckoutHandler) Success(c *fiber.Ctx) error {
	id, ok := queryOrderID(c)
	if !ok {
		return fail(c, "payment.confirm", domain.ErrOrderNotPending)
	}
	o, err := h.Checkout.ConfirmPayment(c.UserContext(), currentUser(c), id)
	var short *domain.InsufficientStockError
	if errors.As(err, &short) {
		// the order stays pending; send the buyer to it
		logFailure(c, "payment.confirm", fiber.StatusConflict, err)
		setFlash(c, short.Error()+" Your order is still pending.")
		return c.Redirect("/orders?tab=pending")
	}
	if err != nil {
		return fail(c, "payment.confirm", err)
	}
	applog.Audit(c, "payment.confirm", map[string]any{"order_id": o.ID, "total": o.TotalPrice.StringFixed(2)})
	return render(c, "checkout_result", fiber.Map{"Order": o, "Message": "Payment received. Thank you for your order!"})
}

// GET /checkout/cancel?order_id=
func (h *CheckoutHandler) Cancel(c *fiber.Ctx) error {
	id, ok := queryOrderID(c)
	if ok {
		moved, err := h.Checkout.CancelPayment(c.UserContext(), id)
		if err != nil {
			return err
		}
		applog.Audit(c, "payment.cancel", map[string]any{"order_id": id, "cancelled": moved})
	}
	return render(c, "checkout_result", fiber.Map{"Message": "Payment was cancelled. Your order has not been charged."})
}

// POST /checkout/pay/:id
func (h *CheckoutHandler) Retry(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, "payment.retry", domain.ErrOrderNotPending)
	}
	res, err := h.Checkout.RetryPayment(c.UserContext(), currentUser(c), id)
	if err != nil {
		return fail(c, "payment.retry", err)
	}
	applog.Audit(c, "payment.retry", map[string]any{"order_id": id})
	return c.Redirect(res.RedirectURL)
}

// POST /checkout/webhook
func (h *CheckoutHandler) Webhook(c *fiber.Ctx) error {
	sig := c.Get("X-Signature")
	if err := h.Checkout.HandleNotification(c.UserContext(), c.Body(), sig); err != nil {
		return failJSON(c, "payment.webhook", err)
	}
	applog.Audit(c, "payment.webhook", nil)
	return c.JSON(fiber.Map{"received": true})
}
