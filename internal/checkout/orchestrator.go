// Package checkout drives a buyer from a filled-in form to a settled order:
// it quotes the cart, issues a PromptPay payment code and, once the buyer
// confirms payment, archives the order and clears the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/ticket-shop-backend/internal/cart"
	"github.com/wichananm65/ticket-shop-backend/internal/order"
	"github.com/wichananm65/ticket-shop-backend/internal/promptpay"
	"github.com/wichananm65/ticket-shop-backend/internal/qr"
)

// CartStore is the part of the cart service checkout needs.
type CartStore interface {
	Load(ctx context.Context, owner string) (cart.Cart, error)
	ClearAt(ctx context.Context, owner string, version int64) (cart.Cart, error)
}

// OrderAppender archives settled orders.
type OrderAppender interface {
	Append(ctx context.Context, owner string, o order.Order) error
}

type Config struct {
	MerchantID         string
	PaymentMethodLabel string
}

type Orchestrator struct {
	carts    CartStore
	orders   OrderAppender
	renderer qr.Renderer
	cfg      Config
	log      *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	observers []func(Transition)
}

func NewOrchestrator(carts CartStore, orders OrderAppender, renderer qr.Renderer, cfg Config, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		carts:    carts,
		orders:   orders,
		renderer: renderer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Subscribe registers fn for every transition. fn runs synchronously while
// the attempt is locked and must not call back into the orchestrator.
func (o *Orchestrator) Subscribe(fn func(Transition)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Submit validates form and the cart, then issues a payment code. On any
// failure the attempt returns to Idle with a message and nothing is written.
func (o *Orchestrator) Submit(ctx context.Context, a *Attempt, form BuyerForm) (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := o.transition(a, StateValidating, "submit"); err != nil {
		return a.status(), err
	}
	a.form = form.normalized()
	a.quote = nil
	a.message = ""

	quote, err := o.quote(ctx, a.owner, a.form)
	if err != nil {
		a.message = userMessage(err)
		if terr := o.transition(a, StateIdle, a.message); terr != nil {
			return a.status(), terr
		}
		return a.status(), err
	}

	a.quote = quote
	if err := o.transition(a, StateAwaitingPayment, "payment code issued"); err != nil {
		return a.status(), err
	}
	return a.status(), nil
}

func (o *Orchestrator) quote(ctx context.Context, owner string, form BuyerForm) (*Quote, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	c, err := o.carts.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	total := c.Total()
	amount := decimal.NewFromInt(total)
	payload, err := promptpay.Encode(o.cfg.MerchantID, amount)
	if err != nil {
		return nil, err
	}
	img, err := o.renderer.Render(ctx, qr.Request{Payload: payload, MerchantID: o.cfg.MerchantID, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("render payment code: %w", err)
	}
	return &Quote{
		Amount:          total,
		MerchantPayload: payload,
		CartVersion:     c.Version,
		Image:           img,
		QuotedAt:        o.now().UTC(),
	}, nil
}

// ConfirmPaid archives the quoted cart as an order and then clears the cart.
// If archiving fails the cart is untouched and the attempt keeps waiting for
// payment. A cart edited after the quote sends the attempt back to Idle.
func (o *Orchestrator) ConfirmPaid(ctx context.Context, a *Attempt) (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateAwaitingPayment || a.quote == nil {
		return a.status(), fmt.Errorf("%w: confirm from %s", ErrIllegalTransition, a.state)
	}

	current, err := o.carts.Load(ctx, a.owner)
	if err != nil {
		a.message = "could not read the cart, please confirm again"
		return a.status(), fmt.Errorf("load cart: %w", err)
	}
	if current.Version != a.quote.CartVersion || current.IsEmpty() {
		a.message = "your cart changed after the payment code was issued, please check out again"
		a.quote = nil
		if err := o.transition(a, StateIdle, "cart changed"); err != nil {
			return a.status(), err
		}
		return a.status(), ErrCartChanged
	}

	ord, err := order.New(a.buyerIdentity(), current.Items, o.cfg.PaymentMethodLabel, o.now())
	if err != nil {
		a.message = "could not record the order"
		return a.status(), err
	}
	if err := o.orders.Append(ctx, a.owner, ord); err != nil {
		a.message = "could not record the order, please confirm again"
		return a.status(), fmt.Errorf("archive order: %w", err)
	}

	a.order = &ord
	a.message = "payment confirmed"
	if err := o.transition(a, StateSettled, "order "+ord.OrderID); err != nil {
		return a.status(), err
	}

	if _, err := o.carts.ClearAt(ctx, a.owner, current.Version); err != nil {
		o.log.Error("order archived but cart not cleared",
			zap.String("owner", a.owner),
			zap.String("order_id", ord.OrderID),
			zap.Error(err),
		)
		return a.status(), fmt.Errorf("%w: %v", ErrCartNotCleared, err)
	}
	return a.status(), nil
}

// Cancel abandons the issued payment code.
func (o *Orchestrator) Cancel(a *Attempt) (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateAwaitingPayment {
		return a.status(), fmt.Errorf("%w: cancel from %s", ErrIllegalTransition, a.state)
	}
	a.quote = nil
	a.message = "checkout cancelled"
	if err := o.transition(a, StateIdle, "cancelled"); err != nil {
		return a.status(), err
	}
	return a.status(), nil
}

func (o *Orchestrator) transition(a *Attempt, to State, reason string) error {
	from := a.state
	if !CanTransitionTo(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	a.state = to
	a.updatedAt = o.now()

	t := Transition{AttemptID: a.id, Owner: a.owner, From: from, To: to, Reason: reason, At: a.updatedAt}
	o.mu.RLock()
	observers := o.observers
	o.mu.RUnlock()
	for _, fn := range observers {
		fn(t)
	}
	return nil
}

func userMessage(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrEmptyCart):
		return "your cart is empty"
	case errors.Is(err, promptpay.ErrInvalidAmount):
		return "the cart total cannot be paid with PromptPay"
	case errors.Is(err, promptpay.ErrInvalidMerchantIdentifier):
		return "payment is not configured, please contact the shop"
	default:
		return "could not start checkout, please try again"
	}
}
