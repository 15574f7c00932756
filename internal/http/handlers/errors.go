package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain"
	applog "storefront/internal/log"

	"github.com/gofiber/fiber/v2"
)

// classify maps a service error to a status and a message safe to show.
// ok is false for unexpected errors, which go to the app ErrorHandler.
func classify(err error) (status int, msg string, ok bool) {
	var verr *domain.ValidationError
	var short *domain.InsufficientStockError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, "Invalid " + verr.Field + ": " + verr.Message, true
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "You are not allowed to do that.", true
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "Not found.", true
	case errors.As(err, &short):
		return fiber.StatusConflict, short.Error(), true
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrInvalidAssociation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderNotPending):
		return fiber.StatusConflict, sentence(err), true
	case errors.Is(err, domain.ErrPaymentUnavailable):
		return fiber.StatusBadGateway, "Payment is unavailable right now. Please try again shortly.", true
	case errors.Is(err, domain.ErrBadSignature):
		return fiber.StatusUnauthorized, "Invalid signature.", true
	}
	return 0, "", false
}

func sentence(err error) string {
	s := err.Error()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func logFailure(c *fiber.Ctx, action string, status int, err error) {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusForbidden, fiber.StatusUnauthorized:
		applog.Security(c, action+".fail", map[string]any{"status": status, "reason": err.Error()})
	case fiber.StatusBadGateway:
		applog.Error(c, action+".fail", err, nil)
	default:
		applog.Info(c, action+".rejected", map[string]any{"status": status, "reason": err.Error()})
	}
}

// fail renders a known service error as a page; anything else bubbles up.
func fail(c *fiber.Ctx, action string, err error) error {
	status, msg, ok := classify(err)
	if !ok {
		return err
	}
	logFailure(c, action, status, err)
	return message(c, status, msg)
}

// failJSON is fail for JSON endpoints.
func failJSON(c *fiber.Ctx, action string, err error) error {
	status, msg, ok := classify(err)
	if !ok {
		applog.Error(c, action+".fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": http.StatusText(fiber.StatusInternalServerError)})
	}
	logFailure(c, action, status, err)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback: it logs and shows a friendly page
// without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = http.StatusText(code)
	}
	applog.Error(c, "server.error", err, map[string]any{"status": code})
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
