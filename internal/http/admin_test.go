package handlers_test

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"storefront/internal/payments"
)

// Stock and order changes made by admins leave audit entries.
func TestAdminRestockAndShipAudit(t *testing.T) {
	ta := newTestApp(t, payments.Stub{})
	admin := ta.login(t, "u-admin")
	alice := ta.login(t, "u-alice")

	var loc string
	entries := captureLogs(t, func() {
		loc = follow(t, ta.post(t, "/admin/stocks", admin, url.Values{
			"product_id": {"p-kettle"}, "quantity": {"6"}, "note": {"  Supplier delivery #42  "},
		}))
	})
	if loc != "/admin/stocks/product/p-kettle" {
		t.Fatalf("unexpected redirect %s", loc)
	}
	found := false
	for _, e := range entries {
		if e.Action == "admin.stock.restock" && e.Level == "audit" && e.UserID == "u-admin" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected admin.stock.restock audit, got %+v", entries)
	}
	if got := ta.onHand(t, "p-kettle"); got != 10 {
		t.Fatalf("expected 10 on hand, got %d", got)
	}

	page := body(ta.get(t, "/admin/stocks/product/p-kettle", admin))
	for _, want := range []string{"Initial stock", "Supplier delivery #42", "On hand: 10"} {
		if !strings.Contains(page, want) {
			t.Fatalf("stock log missing %q: %s", want, page)
		}
	}

	id := ta.buyNow(t, alice, "p-kettle", 1)
	if resp := ta.post(t, "/admin/orders/"+id+"/ship", admin, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("shipping a pending order expected 409, got %d", resp.StatusCode)
	}
	ta.get(t, "/checkout/success?order_id="+id, alice)

	entries = captureLogs(t, func() {
		follow(t, ta.post(t, "/admin/orders/"+id+"/ship", admin, nil))
	})
	if !hasAction(entries, "admin.orders.ship") {
		t.Fatalf("expected admin.orders.ship audit, got %+v", entries)
	}
	if got := ta.orderStatus(t, id); got != "shipped" {
		t.Fatalf("expected shipped, got %s", got)
	}
	if resp := ta.post(t, "/admin/orders/"+id+"/ship", admin, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("shipping twice expected 409, got %d", resp.StatusCode)
	}

	page = body(ta.get(t, "/admin/stocks/product/p-kettle", admin))
	if !strings.Contains(page, "Purchased by user ID: u-alice") {
		t.Fatalf("sale should appear in the ledger: %s", page)
	}
}

func TestAdminRestockRejectsBadInput(t *testing.T) {
	ta := newTestApp(t, payments.Stub{})
	admin := ta.login(t, "u-admin")

	cases := map[string]url.Values{
		"zero quantity":   {"product_id": {"p-kettle"}, "quantity": {"0"}},
		"missing product": {"quantity": {"3"}},
		"long note":       {"product_id": {"p-kettle"}, "quantity": {"3"}, "note": {strings.Repeat("n", 256)}},
	}
	for name, form := range cases {
		if resp := ta.post(t, "/admin/stocks", admin, form); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
	}
	if resp := ta.post(t, "/admin/stocks", admin, url.Values{"product_id": {"p-missing"}, "quantity": {"3"}}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown product expected 404, got %d", resp.StatusCode)
	}
	if resp := ta.post(t, "/admin/stocks", ta.login(t, "u-bob"), url.Values{"product_id": {"p-kettle"}, "quantity": {"3"}}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin restock expected 403, got %d", resp.StatusCode)
	}
	if got := ta.onHand(t, "p-kettle"); got != 4 {
		t.Fatalf("rejected restocks moved stock: %d", got)
	}
}

func TestAdminCreateProduct(t *testing.T) {
	ta := newTestApp(t, payments.Stub{})
	admin := ta.login(t, "u-admin")

	form := url.Values{
		"name": {"Hario V60 Dripper"}, "category_id": {"cat-gear"}, "supplier_id": {"sup-kettle"},
		"price": {"89.90"}, "quantity": {"7"}, "description": {"Ceramic, size 02"},
	}
	var loc string
	entries := captureLogs(t, func() {
		loc = follow(t, ta.post(t, "/admin/products", admin, form))
	})
	if loc != "/admin/products" {
		t.Fatalf("unexpected redirect %s", loc)
	}
	if !hasAction(entries, "admin.products.create") {
		t.Fatalf("expected admin.products.create audit, got %+v", entries)
	}

	var p struct {
		ID  string `db:"id"`
		SKU string `db:"sku"`
		Qty int    `db:"quantity"`
	}
	if err := ta.db.Get(&p, `SELECT id, sku, quantity FROM products WHERE name = 'Hario V60 Dripper'`); err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^PROD-[0-9A-Z]{8}$`).MatchString(p.SKU) || p.Qty != 7 {
		t.Fatalf("unexpected product %+v", p)
	}
	if page := body(ta.get(t, "/admin/products", admin)); !strings.Contains(page, p.SKU) {
		t.Fatal("product list should show the new SKU")
	}

	// edits never change stock
	form.Set("quantity", "100")
	form.Set("price", "79.90")
	follow(t, ta.post(t, "/admin/products/"+p.ID, admin, form))
	if got := ta.onHand(t, p.ID); got != 7 {
		t.Fatalf("update changed stock: %d", got)
	}

	bad := url.Values{"name": {"Filter papers"}, "category_id": {"cat-gear"}, "price": {"1.999"}}
	if resp := ta.post(t, "/admin/products", admin, bad); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad price expected 400, got %d", resp.StatusCode)
	}
}
