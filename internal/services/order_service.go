package services

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

type OrderService struct {
	Orders  *repos.OrderRepo
	Events  events.Publisher
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders, Events: events.Nop{}, Now: time.Now}
}

func (s *OrderService) Get(orderID string) (domain.Order, error) {
	return s.Orders.Get(orderID)
}

// History lists the user's orders, narrowed to one status when tab names one.
// An unknown or empty tab means all orders.
func (s *OrderService) History(userID, tab string) ([]domain.Order, error) {
	status, _ := domain.ParseOrderStatus(tab)
	return s.Orders.ListByUser(userID, status)
}

func (s *OrderService) ListLatest(limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(limit)
}

// Ship marks a paid order as shipped.
func (s *OrderService) Ship(ctx context.Context, orderID string) error {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if !domain.CanTransition(o.Status, domain.OrderShipped) {
		return domain.ErrInvalidTransition
	}
	ok, err := s.Orders.Transition(orderID, o.Status, domain.OrderShipped)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}
	s.publish(ctx, events.EventOrderShipped, orderID, map[string]any{"user_id": o.UserID})
	return nil
}

// Cancel lets the owner withdraw an order that has not been paid yet.
func (s *OrderService) Cancel(ctx context.Context, user *domain.User, orderID string) error {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if o.UserID != user.ID {
		return domain.ErrForbidden
	}
	if !domain.CanTransition(o.Status, domain.OrderCancelled) {
		return domain.ErrInvalidTransition
	}
	ok, err := s.Orders.Transition(orderID, domain.OrderPending, domain.OrderCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}
	s.publish(ctx, events.EventOrderCancelled, orderID, map[string]any{"reason": "customer"})
	return nil
}

// SweepStale cancels pending orders older than olderThan and returns how many moved.
func (s *OrderService) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := repos.Timestamp(s.Now().Add(-olderThan))
	ids, err := s.Orders.StalePending(cutoff)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		ok, err := s.Orders.Transition(id, domain.OrderPending, domain.OrderCancelled)
		if err != nil {
			return n, err
		}
		if ok {
			n++
			s.publish(ctx, events.EventOrderCancelled, id, map[string]any{"reason": "expired"})
		}
	}
	s.Metrics.Sweep(n)
	return n, nil
}

func (s *OrderService) publish(ctx context.Context, typ, key string, payload map[string]any) {
	publish(ctx, s.Events, outbound{events.TopicOrders, events.New(typ, key, payload)})
}
