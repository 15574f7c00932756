package services

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

const lowStockThreshold = 5

type StockService struct {
	Store   *repos.Store
	Events  events.Publisher
	Metrics *metrics.Metrics
}

func NewStockService(store *repos.Store) *StockService {
	return &StockService{Store: store, Events: events.Nop{}}
}

// Restock appends an inbound ledger entry and raises the counter by the same
// amount in one transaction.
func (s *StockService) Restock(ctx context.Context, actor *domain.User, productID string, qty int, note string) (domain.StockMovement, error) {
	if qty < 1 {
		return domain.StockMovement{}, domain.Invalid("quantity", "must be at least 1")
	}
	note = strings.TrimSpace(note)
	if len(note) > 255 {
		return domain.StockMovement{}, domain.Invalid("note", "must be at most 255 characters")
	}
	m := domain.StockMovement{ProductID: productID, Type: domain.MovementIn, Quantity: qty, Note: note}
	if actor != nil {
		m.PerformedBy = actor.ID
	}

	err := s.Store.InTx(ctx, func(tx *repos.Tx) error {
		if _, err := tx.Products.Get(productID); err != nil {
			return err
		}
		id, err := tx.Stock.Append(m)
		if err != nil {
			return err
		}
		m.ID = id
		return tx.Products.Increment(productID, qty)
	})
	if err != nil {
		return domain.StockMovement{}, err
	}

	s.Metrics.Stock(domain.MovementIn, qty)
	publish(ctx, s.Events, outbound{events.TopicStock, events.New(events.EventStockMoved, productID, map[string]any{
		"type": domain.MovementIn, "quantity": qty, "performed_by": m.PerformedBy,
	})})
	return m, nil
}

// Log lists a product's movements newest first.
func (s *StockService) Log(productID string) (domain.Product, []domain.StockMovement, error) {
	p, err := s.Store.Products().Get(productID)
	if err != nil {
		return domain.Product{}, nil, err
	}
	ms, err := s.Store.Stock().ListByProduct(productID)
	return p, ms, err
}

func (s *StockService) Availability(productID string) (domain.Availability, error) {
	qty, err := s.Store.Products().Quantity(productID)
	if err != nil {
		return domain.Availability{}, err
	}
	return availabilityOf(qty), nil
}

func availabilityOf(qty int) domain.Availability {
	switch {
	case qty <= 0:
		return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}
	case qty < lowStockThreshold:
		return domain.Availability{Status: "LOW_STOCK", Qty: qty}
	}
	return domain.Availability{Status: "IN_STOCK", Qty: qty}
}
