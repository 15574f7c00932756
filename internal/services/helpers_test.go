package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/payments"
	"storefront/internal/repos"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	alice = &domain.User{ID: "u-alice", Name: "Alice", Role: domain.RoleUser}
	bob   = &domain.User{ID: "u-bob", Name: "Bob", Role: domain.RoleUser}
	admin = &domain.User{ID: "u-admin", Name: "Admin", Role: domain.RoleAdmin}
)

type fakeGateway struct {
	mu   sync.Mutex
	reqs []payments.SessionRequest
	err  error
}

func (g *fakeGateway) CreateSession(_ context.Context, req payments.SessionRequest) (payments.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return payments.Session{}, g.err
	}
	g.reqs = append(g.reqs, req)
	n := len(g.reqs)
	return payments.Session{ID: fmt.Sprintf("cs_test_%d", n), URL: fmt.Sprintf("https://pay.test/session/%d", n)}, nil
}

func (g *fakeGateway) last() payments.SessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reqs[len(g.reqs)-1]
}

type fixture struct {
	store    *repos.Store
	gw       *fakeGateway
	rec      *events.Recorder
	carts    *CartService
	checkout *CheckoutService
	stock    *StockService
	orders   *OrderService
	catalog  *CatalogService
	reviews  *ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := repos.NewStore(db)
	f := &fixture{store: store, gw: &fakeGateway{}, rec: &events.Recorder{}}
	f.carts = NewCartService(store.Carts(), store.Products())
	f.checkout = NewCheckoutService(store, f.gw, CheckoutSettings{
		BaseURL: "http://shop.test", Currency: "myr", PaymentMethod: "stripe", WebhookSecret: "whsec_test",
	})
	f.checkout.Events = f.rec
	f.stock = NewStockService(store)
	f.stock.Events = f.rec
	f.orders = NewOrderService(store.Orders())
	f.orders.Events = f.rec
	f.catalog = NewCatalogService(repos.NewCategoryRepo(db), store)
	f.reviews = NewReviewService(store, false)
	return f
}

// product creates a fresh product with an opening balance of qty.
func (f *fixture) product(t *testing.T, name, price string, qty int) domain.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), admin, ProductInput{
		Name: name, CategoryID: "cat-coffee", Price: decimal.RequireFromString(price), Quantity: qty,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) qty(t *testing.T, productID string) int {
	t.Helper()
	n, err := f.store.Products().Quantity(productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) net(t *testing.T, productID string) int {
	t.Helper()
	n, err := f.store.Stock().Net(productID)
	require.NoError(t, err)
	return n
}

func (f *fixture) status(t *testing.T, orderID string) domain.OrderStatus {
	t.Helper()
	o, err := f.store.Orders().Get(orderID)
	require.NoError(t, err)
	return o.Status
}

// paidOrder runs buy-now plus confirmation and returns the order id.
func (f *fixture) paidOrder(t *testing.T, u *domain.User, productID string, qty int) string {
	t.Helper()
	ctx := context.Background()
	res, err := f.checkout.BuyNow(ctx, u, productID, qty)
	require.NoError(t, err)
	_, err = f.checkout.ConfirmPayment(ctx, u, res.OrderID)
	require.NoError(t, err)
	return res.OrderID
}

func isShortfall(err error) bool {
	var short *domain.InsufficientStockError
	return errors.As(err, &short)
}
