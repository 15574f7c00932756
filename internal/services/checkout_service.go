package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/payments"
	"storefront/internal/repos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutSettings struct {
	BaseURL       string // public origin used for the success/cancel return legs
	Currency      string
	PaymentMethod string
	WebhookSecret string
}

type CheckoutService struct {
	Store    *repos.Store
	Gateway  payments.Gateway
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Settings CheckoutSettings
}

func NewCheckoutService(store *repos.Store, gw payments.Gateway, settings CheckoutSettings) *CheckoutService {
	if settings.Currency == "" {
		settings.Currency = "myr"
	}
	if settings.PaymentMethod == "" {
		settings.PaymentMethod = "stripe"
	}
	return &CheckoutService{Store: store, Gateway: gw, Events: events.Nop{}, Settings: settings}
}

// CheckoutResult tells the caller which order was created and where to send the buyer.
type CheckoutResult struct {
	OrderID     string
	RedirectURL string
}

type checkoutLine struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
	OnHand    int
}

// CheckoutCart turns the user's active cart into a pending order and opens a
// payment session for it.
func (s *CheckoutService) CheckoutCart(ctx context.Context, user *domain.User) (CheckoutResult, error) {
	carts := s.Store.Carts()
	cart, err := carts.Active(user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		s.Metrics.Checkout("cart", "empty")
		return CheckoutResult{}, domain.ErrEmptyCart
	}
	if err != nil {
		return CheckoutResult{}, err
	}
	items, err := carts.Items(cart.ID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(items) == 0 {
		s.Metrics.Checkout("cart", "empty")
		return CheckoutResult{}, domain.ErrEmptyCart
	}

	lines := make([]checkoutLine, 0, len(items))
	for _, it := range items {
		if it.Discontinued {
			s.Metrics.Checkout("cart", "discontinued")
			return CheckoutResult{}, domain.Invalid("cart", it.ProductName+" is no longer available. Remove it to continue")
		}
		lines = append(lines, checkoutLine{
			ProductID: it.ProductID, Name: it.ProductName, Quantity: it.Quantity, Price: it.Price, OnHand: it.OnHand,
		})
	}
	return s.place(ctx, "cart", user, lines, cart.ID)
}

// BuyNow places a single-line order without touching the cart. qty 0 means 1.
func (s *CheckoutService) BuyNow(ctx context.Context, user *domain.User, productID string, qty int) (CheckoutResult, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return CheckoutResult{}, domain.Invalid("quantity", "must be at least 1")
	}
	p, err := s.Store.Products().Get(productID)
	if err != nil {
		return CheckoutResult{}, err
	}
	lines := []checkoutLine{{ProductID: p.ID, Name: p.Name, Quantity: qty, Price: p.Price, OnHand: p.Quantity}}
	return s.place(ctx, "buy_now", user, lines, "")
}

// place runs the shared checkout steps. The payment session is requested
// before anything is written, so a processor failure leaves order and cart as
// they were; order creation and cart teardown then commit together.
func (s *CheckoutService) place(ctx context.Context, entry string, user *domain.User, lines []checkoutLine, cartID string) (CheckoutResult, error) {
	for _, l := range lines {
		if l.Quantity > l.OnHand {
			s.Metrics.Checkout(entry, "insufficient_stock")
			return CheckoutResult{}, &domain.InsufficientStockError{
				ProductID: l.ProductID, Name: l.Name, Requested: l.Quantity, Available: l.OnHand,
			}
		}
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Status:        domain.OrderPending,
		PaymentMethod: s.Settings.PaymentMethod,
		TotalPrice:    decimal.Zero,
	}
	for _, l := range lines {
		it := domain.OrderItem{
			ID: uuid.NewString(), OrderID: order.ID, ProductID: l.ProductID, ProductName: l.Name,
			Quantity: l.Quantity, UnitPrice: l.Price,
		}
		order.Items = append(order.Items, it)
		order.TotalPrice = order.TotalPrice.Add(it.Subtotal())
	}

	session, err := s.openSession(ctx, user.ID, order)
	if err != nil {
		s.Metrics.Checkout(entry, "payment_unavailable")
		return CheckoutResult{}, err
	}

	err = s.Store.InTx(ctx, func(tx *repos.Tx) error {
		if err := tx.Orders.Create(order); err != nil {
			return err
		}
		if cartID == "" {
			return nil
		}
		if err := tx.Carts.CheckOut(cartID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// a concurrent checkout already consumed this cart
				return domain.ErrEmptyCart
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.Metrics.Checkout(entry, "error")
		return CheckoutResult{}, err
	}

	s.Metrics.Checkout(entry, "ok")
	publish(ctx, s.Events, outbound{events.TopicOrders, events.New(events.EventOrderCreated, order.ID, map[string]any{
		"user_id": user.ID, "total": order.TotalPrice.StringFixed(2), "session_id": session.ID,
	})})
	return CheckoutResult{OrderID: order.ID, RedirectURL: session.URL}, nil
}

// RetryPayment opens a fresh session for an order still awaiting payment.
// Stock is not re-checked; confirmation does that.
func (s *CheckoutService) RetryPayment(ctx context.Context, user *domain.User, orderID string) (CheckoutResult, error) {
	o, err := s.Store.Orders().Get(orderID)
	if err != nil || o.UserID != user.ID || o.Status != domain.OrderPending {
		s.Metrics.Checkout("retry", "not_pending")
		return CheckoutResult{}, domain.ErrOrderNotPending
	}
	session, err := s.openSession(ctx, user.ID, o)
	if err != nil {
		s.Metrics.Checkout("retry", "payment_unavailable")
		return CheckoutResult{}, err
	}
	s.Metrics.Checkout("retry", "ok")
	return CheckoutResult{OrderID: o.ID, RedirectURL: session.URL}, nil
}

func (s *CheckoutService) openSession(ctx context.Context, userID string, o domain.Order) (payments.Session, error) {
	req := payments.SessionRequest{
		Currency:   s.Settings.Currency,
		Mode:       "payment",
		SuccessURL: s.Settings.BaseURL + "/checkout/success?order_id=" + url.QueryEscape(o.ID),
		CancelURL:  s.Settings.BaseURL + "/checkout/cancel?order_id=" + url.QueryEscape(o.ID),
		Metadata:   map[string]string{"user_id": userID, "order_id": o.ID},
	}
	for _, it := range o.Items {
		req.LineItems = append(req.LineItems, payments.LineItem{
			Name: it.ProductName, UnitAmount: payments.MinorUnits(it.UnitPrice), Quantity: it.Quantity,
		})
	}
	session, err := s.Gateway.CreateSession(ctx, req)
	if err != nil {
		return payments.Session{}, fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}
	return session, nil
}

// ConfirmPayment commits the stock for a paid order. Every line is decremented
// and logged in one transaction; any shortfall rolls the whole thing back and
// leaves the order pending so the buyer can retry after a restock.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, user *domain.User, orderID string) (domain.Order, error) {
	o, err := s.Store.Orders().Get(orderID)
	if err != nil || o.UserID != user.ID || o.Status != domain.OrderPending {
		s.Metrics.Payment("success", "not_pending")
		return domain.Order{}, domain.ErrOrderNotPending
	}

	prods := s.Store.Products()
	for _, it := range o.Items {
		qty, err := prods.Quantity(it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			// deleted since the order was placed
			qty, err = 0, nil
		}
		if err != nil {
			return domain.Order{}, err
		}
		if qty < it.Quantity {
			s.Metrics.Payment("success", "insufficient_stock")
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID: it.ProductID, Name: it.ProductName, Requested: it.Quantity, Available: qty,
			}
		}
	}

	note := "Purchased by user ID: " + user.ID
	err = s.Store.InTx(ctx, func(tx *repos.Tx) error {
		for _, it := range o.Items {
			ok, err := tx.Products.Decrement(it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				avail, _ := tx.Products.Quantity(it.ProductID)
				return &domain.InsufficientStockError{
					ProductID: it.ProductID, Name: it.ProductName, Requested: it.Quantity, Available: avail,
				}
			}
			if _, err := tx.Stock.Append(domain.StockMovement{
				ProductID: it.ProductID, Type: domain.MovementOut, Quantity: it.Quantity,
				Note: note, PerformedBy: user.ID,
			}); err != nil {
				return err
			}
		}
		moved, err := tx.Orders.Transition(o.ID, domain.OrderPending, domain.OrderPaid)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrOrderNotPending
		}
		return nil
	})
	if err != nil {
		var short *domain.InsufficientStockError
		switch {
		case errors.As(err, &short):
			s.Metrics.Payment("success", "insufficient_stock")
		case errors.Is(err, domain.ErrOrderNotPending):
			s.Metrics.Payment("success", "not_pending")
		default:
			s.Metrics.Payment("success", "error")
		}
		return domain.Order{}, err
	}

	o.Status = domain.OrderPaid
	s.Metrics.Payment("success", "paid")
	out := make([]outbound, 0, len(o.Items)+1)
	for _, it := range o.Items {
		s.Metrics.Stock(domain.MovementOut, it.Quantity)
		out = append(out, outbound{events.TopicStock, events.New(events.EventStockMoved, it.ProductID, map[string]any{
			"type": domain.MovementOut, "quantity": it.Quantity, "order_id": o.ID,
		})})
	}
	out = append(out, outbound{events.TopicOrders, events.New(events.EventOrderPaid, o.ID, map[string]any{
		"user_id": o.UserID, "total": o.TotalPrice.StringFixed(2),
	})})
	publish(ctx, s.Events, out...)
	return o, nil
}

// CancelPayment handles the processor's cancel leg. Only pending orders move;
// anything else is a silent no-op, so the call is safe to replay.
func (s *CheckoutService) CancelPayment(ctx context.Context, orderID string) (bool, error) {
	if orderID == "" {
		return false, nil
	}
	moved, err := s.Store.Orders().Transition(orderID, domain.OrderPending, domain.OrderCancelled)
	if err != nil {
		s.Metrics.Payment("cancel", "error")
		return false, err
	}
	if !moved {
		s.Metrics.Payment("cancel", "noop")
		return false, nil
	}
	s.Metrics.Payment("cancel", "cancelled")
	publish(ctx, s.Events, outbound{events.TopicOrders, events.New(events.EventOrderCancelled, orderID, map[string]any{"reason": "payment_cancelled"})})
	return true, nil
}

const (
	NotificationCompleted = "checkout.session.completed"
	NotificationExpired   = "checkout.session.expired"
)

type notification struct {
	Type string `json:"type"`
	Data struct {
		Metadata struct {
			OrderID string `json:"order_id"`
			UserID  string `json:"user_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// SignNotification returns the hex HMAC-SHA256 of body under secret.
func SignNotification(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HandleNotification processes a signed server-to-server payment event.
// Replays of an already processed order are accepted and ignored.
func (s *CheckoutService) HandleNotification(ctx context.Context, body []byte, signature string) error {
	if s.Settings.WebhookSecret == "" {
		return domain.ErrBadSignature
	}
	want := SignNotification(s.Settings.WebhookSecret, body)
	got := strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if !hmac.Equal([]byte(want), []byte(got)) {
		s.Metrics.Payment("webhook", "bad_signature")
		return domain.ErrBadSignature
	}

	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return domain.Invalid("body", "malformed notification")
	}
	meta := n.Data.Metadata
	switch n.Type {
	case NotificationCompleted:
		if meta.OrderID == "" || meta.UserID == "" {
			return domain.Invalid("metadata", "order_id and user_id are required")
		}
		_, err := s.ConfirmPayment(ctx, &domain.User{ID: meta.UserID}, meta.OrderID)
		if errors.Is(err, domain.ErrOrderNotPending) {
			return nil
		}
		return err
	case NotificationExpired:
		_, err := s.CancelPayment(ctx, meta.OrderID)
		return err
	}
	s.Metrics.Payment("webhook", "ignored")
	return nil
}
