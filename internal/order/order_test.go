package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/ticket-shop-backend/internal/cart"
)

var orderIDPattern = regexp.MustCompile(`^ORD-\d+-[0-9a-f]{8}$`)

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1760400000000)
	id := NewID(now)

	assert.Regexp(t, orderIDPattern, id)
	assert.Contains(t, id, "-1760400000000-")
	assert.NotEqual(t, id, NewID(now))
}

func TestNew(t *testing.T) {
	items := []cart.LineItem{
		{ID: "concert-1:VIP", Kind: cart.KindEvent, UnitPrice: 1800, Quantity: 2},
		{ID: "shirt-3", Kind: cart.KindProduct, UnitPrice: 350, Quantity: 1},
	}
	now := time.Date(2026, 10, 14, 9, 30, 0, 0, time.FixedZone("ICT", 7*3600))

	o, err := New(" buyer@example.com ", items, "PromptPay", now)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", o.BuyerIdentity)
	assert.Equal(t, int64(3950), o.TotalAmount)
	assert.Equal(t, time.UTC, o.CreatedAt.Location())
	assert.Equal(t, "PromptPay", o.PaymentMethodLabel)

	// the snapshot does not follow later cart edits
	items[0].Quantity = 7
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("", []cart.LineItem{{ID: "a", Quantity: 1}}, "PromptPay", time.Now())
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = New("a@b.c", nil, "PromptPay", time.Now())
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestOrder_BelongsTo(t *testing.T) {
	o := Order{BuyerIdentity: "Somchai@Example.com"}
	assert.True(t, o.BelongsTo("somchai@example.com"))
	assert.True(t, o.BelongsTo(" SOMCHAI@EXAMPLE.COM"))
	assert.False(t, o.BelongsTo("somsri@example.com"))
}
