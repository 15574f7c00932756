package services

import (
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"

	"github.com/shopspring/decimal"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add puts qty units of a product in the user's active cart. Stock is not
// checked here; checkout and payment confirmation do that.
func (s *CartService) Add(userID, productID string, qty int) error {
	if qty < 1 {
		return domain.Invalid("quantity", "must be at least 1")
	}
	if _, err := s.Prods.Get(productID); err != nil {
		return err
	}
	cartID, err := s.Carts.EnsureActive(userID)
	if err != nil {
		return err
	}
	return s.Carts.AddItem(cartID, productID, qty)
}

func (s *CartService) UpdateQuantity(userID, itemID string, qty int) error {
	if qty < 1 {
		return domain.Invalid("quantity", "must be at least 1")
	}
	if err := s.authorize(userID, itemID); err != nil {
		return err
	}
	return s.Carts.SetQuantity(itemID, qty)
}

func (s *CartService) Remove(userID, itemID string) error {
	if err := s.authorize(userID, itemID); err != nil {
		return err
	}
	return s.Carts.RemoveItem(itemID)
}

func (s *CartService) authorize(userID, itemID string) error {
	_, owner, err := s.Carts.Item(itemID)
	if err != nil {
		return err
	}
	if owner != userID {
		return domain.ErrForbidden
	}
	return nil
}

type CartView struct {
	CartID string
	Items  []domain.CartItem
	Total  decimal.Decimal
}

// View prices the active cart at current product prices.
func (s *CartService) View(userID string) (CartView, error) {
	cart, err := s.Carts.Active(userID)
	if errors.Is(err, domain.ErrNotFound) {
		return CartView{Items: []domain.CartItem{}, Total: decimal.Zero}, nil
	}
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Items(cart.ID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return CartView{CartID: cart.ID, Items: items, Total: total}, nil
}
