package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wichananm65/ticket-shop-backend/internal/cart"
)

// Order is a settled purchase as stored in the orderHistory slot. It is never
// modified after creation.
type Order struct {
	OrderID            string          `json:"orderId"`
	BuyerIdentity      string          `json:"buyerIdentity"`
	Items              []cart.LineItem `json:"items"`
	TotalAmount        int64           `json:"totalAmount"`
	CreatedAt          time.Time       `json:"createdAt"`
	PaymentMethodLabel string          `json:"paymentMethodLabel"`
}

// NewID derives an order id from the creation time plus a random suffix,
// e.g. ORD-1760400000000-9f86d081.
func NewID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// New snapshots items into an order for buyer.
func New(buyer string, items []cart.LineItem, paymentMethod string, now time.Time) (Order, error) {
	snapshot := make([]cart.LineItem, len(items))
	copy(snapshot, items)
	o := Order{
		OrderID:            NewID(now),
		BuyerIdentity:      strings.TrimSpace(buyer),
		Items:              snapshot,
		TotalAmount:        cart.Cart{Items: snapshot}.Total(),
		CreatedAt:          now.UTC(),
		PaymentMethodLabel: paymentMethod,
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o Order) validate() error {
	switch {
	case o.OrderID == "":
		return fmt.Errorf("%w: order id is empty", ErrInvalidOrder)
	case o.BuyerIdentity == "":
		return fmt.Errorf("%w: buyer identity is empty", ErrInvalidOrder)
	case len(o.Items) == 0:
		return fmt.Errorf("%w: order has no items", ErrInvalidOrder)
	case o.TotalAmount < 0:
		return fmt.Errorf("%w: negative total %d", ErrInvalidOrder, o.TotalAmount)
	}
	return nil
}

// BelongsTo compares buyer identities the way emails compare.
func (o Order) BelongsTo(buyer string) bool {
	return strings.EqualFold(strings.TrimSpace(o.BuyerIdentity), strings.TrimSpace(buyer))
}
