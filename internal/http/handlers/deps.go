package handlers

import (
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/payments"
	"storefront/internal/repos"
	"storefront/internal/services"

	"github.com/jmoiron/sqlx"
)

// Infra carries the outbound collaborators: payment processor, event sink, metrics.
type Infra struct {
	Gateway payments.Gateway
	Events  events.Publisher
	Metrics *metrics.Metrics
}

type Deps struct {
	Auth             *services.AuthService
	Orders           *services.OrderService
	AuthHandler      *AuthHandler
	CatalogHandler   *CatalogHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	CheckoutHandler  *CheckoutHandler
	OrderHandler     *OrderHandler
	ReviewHandler    *ReviewHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, infra Infra) *Deps {
	if infra.Gateway == nil {
		infra.Gateway = payments.Stub{}
	}
	if infra.Events == nil {
		infra.Events = events.Nop{}
	}

	store := repos.NewStore(db)
	catRepo := repos.NewCategoryRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, store)
	cartSvc := services.NewCartService(store.Carts(), store.Products())
	stockSvc := services.NewStockService(store)
	stockSvc.Events, stockSvc.Metrics = infra.Events, infra.Metrics
	orderSvc := services.NewOrderService(store.Orders())
	orderSvc.Events, orderSvc.Metrics = infra.Events, infra.Metrics
	reviewSvc := services.NewReviewService(store, cfg.ReviewRequireShipped)

	checkoutSvc := services.NewCheckoutService(store, infra.Gateway, services.CheckoutSettings{
		BaseURL:       cfg.PublicBaseURL,
		Currency:      cfg.PaymentCurrency,
		PaymentMethod: cfg.PaymentMethod,
		WebhookSecret: cfg.PaymentWebhookSecret,
	})
	checkoutSvc.Events, checkoutSvc.Metrics = infra.Events, infra.Metrics

	return &Deps{
		Auth:             auth,
		Orders:           orderSvc,
		AuthHandler:      &AuthHandler{Auth: auth},
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc, Stock: stockSvc},
		InventoryHandler: &InventoryHandler{Stock: stockSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		CheckoutHandler:  &CheckoutHandler{Checkout: checkoutSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		ReviewHandler:    &ReviewHandler{Reviews: reviewSvc},
		AdminHandler:     &AdminHandler{Orders: orderSvc, Catalog: catalogSvc, Stock: stockSvc},
	}
}
