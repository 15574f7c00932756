package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Supplier struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
	CreatedAt string `db:"created_at"`
}

type Product struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	SKU          string          `db:"sku" json:"sku"`
	CategoryID   string          `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name,omitempty"`
	SupplierID   string          `db:"supplier_id" json:"supplier_id,omitempty"` // empty when none
	SupplierName string          `db:"supplier_name" json:"supplier_name,omitempty"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	ImagePath    string          `db:"image_path" json:"image_path,omitempty"`
	Description  string          `db:"description" json:"description,omitempty"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
	UpdatedAt    string          `db:"updated_at" json:"updated_at,omitempty"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

const (
	CartActive     = "active"
	CartCheckedOut = "checked_out"
)

type Cart struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Status    string `db:"status"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// CartItem is a cart line joined with the product it points at.
type CartItem struct {
	ID           string          `db:"id"`
	CartID       string          `db:"cart_id"`
	ProductID    string          `db:"product_id"`
	Quantity     int             `db:"quantity"`
	ProductName  string          `db:"product_name"`
	Price        decimal.Decimal `db:"price"`
	OnHand       int             `db:"on_hand"`
	Discontinued bool            `db:"discontinued"` // product deleted after it was added
}

func (it CartItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderShipped || s == OrderCancelled
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderPaid, OrderShipped, OrderCancelled:
		return st, true
	}
	return "", false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped},
}

// CanTransition reports whether from -> to is an allowed order status move.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	UserName      string          `db:"user_name" json:"user_name,omitempty"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
	Status        OrderStatus     `db:"status" json:"status"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
	UpdatedAt     string          `db:"updated_at" json:"updated_at,omitempty"`
	Items         []OrderItem     `db:"-" json:"items,omitempty"`
}

type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"order_id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
}

func (it OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

const (
	MovementIn  = "in"
	MovementOut = "out"
)

type StockMovement struct {
	ID            string `db:"id" json:"id"`
	ProductID     string `db:"product_id" json:"product_id"`
	Type          string `db:"type" json:"type"`
	Quantity      int    `db:"quantity" json:"quantity"`
	Note          string `db:"note" json:"note"`
	PerformedBy   string `db:"performed_by" json:"performed_by"`
	PerformerName string `db:"performer_name" json:"performer_name,omitempty"`
	CreatedAt     string `db:"created_at" json:"created_at"`
}

type Review struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"user_id"`
	UserName  string `db:"user_name" json:"user_name,omitempty"`
	ProductID string `db:"product_id" json:"product_id"`
	OrderID   string `db:"order_id" json:"order_id"`
	Rating    int    `db:"rating" json:"rating"`
	Comment   string `db:"comment" json:"comment,omitempty"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
