package handlers

import (
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Stock   *services.StockService
}

const pageSize = 12

// parseFilter reads the product filter from the query string.
func parseFilter(c *fiber.Ctx) (domain.ProductFilter, error) {
	var f domain.ProductFilter
	fields := []struct {
		name string
		dst  *string
	}{
		{"name", &f.Name}, {"sku", &f.SKU}, {"category", &f.Category}, {"supplier", &f.Supplier},
	}
	for _, fd := range fields {
		v, ok := validate.Q(c.Query(fd.name))
		if !ok {
			return f, domain.Invalid(fd.name, "letters, numbers and spaces only")
		}
		*fd.dst = v
	}
	var ok bool
	if f.MinPrice, ok = validate.OptionalPrice(c.Query("min_price")); !ok {
		return f, domain.Invalid("min_price", "must be a non-negative amount")
	}
	if f.MaxPrice, ok = validate.OptionalPrice(c.Query("max_price")); !ok {
		return f, domain.Invalid("max_price", "must be a non-negative amount")
	}
	return f, nil
}

// GET /
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return fail(c, "catalog.list", err)
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	products, err := h.Catalog.Products(f, page, pageSize)
	if err != nil {
		return err
	}
	cats, err := h.Catalog.Categories()
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{
		"Products": products, "Categories": cats, "Filter": f,
		"MinPrice": c.Query("min_price"), "MaxPrice": c.Query("max_price"),
		"Page": page, "Prev": page - 1, "Next": page + 1, "HasNext": len(products) == pageSize,
	})
}

// GET /products/:id
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return message(c, fiber.StatusNotFound, "This item is no longer available")
	}
	d, err := h.Catalog.Detail(id)
	if err != nil {
		if _, _, known := classify(err); known {
			return message(c, fiber.StatusNotFound, "This item is no longer available")
		}
		return err
	}
	avail, err := h.Stock.Availability(id)
	if err != nil {
		return err
	}
	return render(c, "product", fiber.Map{"D": d, "P": d.Product, "Avail": avail})
}
