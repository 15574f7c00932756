package handlers

import (
	"strings"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Orders  *services.OrderService
	Catalog *services.CatalogService
	Stock   *services.StockService
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.Orders.ListLatest(100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return message(c, fiber.StatusInternalServerError, "Could not load orders")
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/ship
func (h *AdminHandler) Ship(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, "admin.orders.ship", err)
	}
	if err := h.Orders.Ship(c.UserContext(), id); err != nil {
		return fail(c, "admin.orders.ship", err)
	}
	applog.Audit(c, "admin.orders.ship", map[string]any{"order_id": id})
	return c.Redirect("/admin/orders")
}

// GET /admin/products
func (h *AdminHandler) ProductsPage(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return fail(c, "admin.products.list", err)
	}
	products, err := h.Catalog.Products(f, 1, 100)
	if err != nil {
		return err
	}
	cats, err := h.Catalog.Categories()
	if err != nil {
		return err
	}
	sups, err := h.Catalog.Suppliers()
	if err != nil {
		return err
	}
	return render(c, "admin_products", fiber.Map{"Products": products, "Categories": cats, "Suppliers": sups, "Filter": f})
}

func productForm(c *fiber.Ctx) (services.ProductInput, error) {
	in := services.ProductInput{
		Name:        c.FormValue("name"),
		CategoryID:  strings.TrimSpace(c.FormValue("category_id")),
		SupplierID:  strings.TrimSpace(c.FormValue("supplier_id")),
		ImagePath:   strings.TrimSpace(c.FormValue("image_path")),
		Description: c.FormValue("description"),
	}
	price, ok := validate.Price(c.FormValue("price"))
	if !ok {
		return in, domain.Invalid("price", "must be a non-negative amount with at most two decimals")
	}
	in.Price = price
	if raw := strings.TrimSpace(c.FormValue("quantity")); raw != "" && raw != "0" {
		qty, ok := validate.Qty(raw, 0)
		if !ok {
			return in, domain.Invalid("quantity", "must be a whole number of at least 0")
		}
		in.Quantity = qty
	}
	desc, ok := validate.Text(in.Description, 2000)
	if !ok {
		return in, domain.Invalid("description", "must be at most 2000 characters")
	}
	in.Description = desc
	return in, nil
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	in, err := productForm(c)
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), currentUser(c), in)
	if err != nil {
		return fail(c, "admin.products.create", err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": p.ID, "sku": p.SKU, "qty": p.Quantity})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, "admin.products.update", err)
	}
	in, err := productForm(c)
	if err != nil {
		return fail(c, "admin.products.update", err)
	}
	if _, err := h.Catalog.UpdateProduct(id, in); err != nil {
		return fail(c, "admin.products.update", err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product": id})
	return c.Redirect("/admin/products")
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, "admin.products.delete", err)
	}
	if err := h.Catalog.DeleteProduct(id); err != nil {
		return fail(c, "admin.products.delete", err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product": id})
	return c.Redirect("/admin/products")
}

// POST /admin/stocks
func (h *AdminHandler) Restock(c *fiber.Ctx) error {
	productID, err := formID(c, "product_id")
	if err != nil {
		return fail(c, "admin.stock.restock", err)
	}
	qty, err := formQty(c, 0)
	if err != nil {
		return fail(c, "admin.stock.restock", err)
	}
	m, err := h.Stock.Restock(c.UserContext(), currentUser(c), productID, qty, c.FormValue("note"))
	if err != nil {
		return fail(c, "admin.stock.restock", err)
	}
	applog.Audit(c, "admin.stock.restock", map[string]any{"product": productID, "qty": qty, "movement": m.ID})
	return c.Redirect("/admin/stocks/product/" + productID)
}

// GET /admin/stocks/product/:id
func (h *AdminHandler) StockLog(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, "admin.stock.log", err)
	}
	p, moves, err := h.Stock.Log(id)
	if err != nil {
		return fail(c, "admin.stock.log", err)
	}
	return render(c, "admin_stock_log", fiber.Map{"P": p, "Movements": moves})
}
