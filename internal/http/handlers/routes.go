package handlers

import (
	"time"

	applog "storefront/internal/log"
	"storefront/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// WebhookPath is exempt from CSRF; it authenticates by signature instead.
const WebhookPath = "/checkout/webhook"

// Register mounts every storefront route on app.
func Register(app *fiber.App, d *Deps, m *metrics.Metrics) {
	requireUser := RequireUser(d.Auth)

	// Public pages
	app.Get("/", d.CatalogHandler.List)
	app.Get("/products/:id", d.CatalogHandler.Detail)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, d.InventoryHandler.Check)

	// Cart
	app.Get("/cart", requireUser, d.CartHandler.View)
	app.Post("/cart", requireUser, d.CartHandler.Add)
	app.Post("/cart/items/:id", requireUser, d.CartHandler.Update)
	app.Post("/cart/items/:id/delete", requireUser, d.CartHandler.Remove)

	// Checkout and payment legs
	app.Post(WebhookPath, d.CheckoutHandler.Webhook)
	app.Post("/checkout", requireUser, d.CheckoutHandler.Cart)
	app.Post("/checkout/buy-now", requireUser, d.CheckoutHandler.BuyNow)
	app.Get("/checkout/success", requireUser, d.CheckoutHandler.Success)
	app.Get("/checkout/cancel", requireUser, d.CheckoutHandler.Cancel)
	app.Post("/checkout/pay/:id", requireUser, d.CheckoutHandler.Retry)

	// Orders & reviews
	app.Get("/orders", requireUser, d.OrderHandler.History)
	app.Post("/orders/:id/cancel", requireUser, d.OrderHandler.Cancel)
	app.Post("/reviews", requireUser, d.ReviewHandler.Submit)

	// Auth routes (login throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	// Admin
	ah := d.AdminHandler
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/admin/orders") })
	admin.Get("/orders", ah.OrdersPage)
	admin.Post("/orders/:id/ship", ah.Ship)
	admin.Get("/products", ah.ProductsPage)
	admin.Post("/products", ah.CreateProduct)
	admin.Post("/products/:id", ah.UpdateProduct)
	admin.Post("/products/:id/delete", ah.DeleteProduct)
	admin.Post("/stocks", ah.Restock)
	admin.Get("/stocks/product/:id", ah.StockLog)

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}
	app.Use(func(c *fiber.Ctx) error {
		return message(c, fiber.StatusNotFound, "Page not found")
	})
}
