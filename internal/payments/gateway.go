package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"` // minor units
	Quantity   int    `json:"quantity"`
}

type SessionRequest struct {
	Currency   string            `json:"currency"`
	Mode       string            `json:"mode"`
	LineItems  []LineItem        `json:"line_items"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway creates hosted payment sessions and returns where to send the buyer.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a price to integer cents, rounding half away from zero.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// Stub completes every session immediately by redirecting to the success URL.
type Stub struct{}

func (Stub) CreateSession(_ context.Context, req SessionRequest) (Session, error) {
	return Session{ID: "stub_" + uuid.NewString(), URL: req.SuccessURL}, nil
}
