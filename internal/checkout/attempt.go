package checkout

import (
	"sync"
	"time"

	"github.com/wichananm65/ticket-shop-backend/internal/order"
	"github.com/wichananm65/ticket-shop-backend/internal/qr"
)

// Quote is the amount and payment code issued for one version of the cart.
type Quote struct {
	Amount          int64     `json:"amount"`
	MerchantPayload string    `json:"merchantPayload"`
	CartVersion     int64     `json:"cartVersion"`
	Image           qr.Image  `json:"image"`
	QuotedAt        time.Time `json:"quotedAt"`
}

// Attempt is one buyer's pass through checkout. Its fields are only changed
// by the Orchestrator while holding mu.
type Attempt struct {
	mu sync.Mutex

	id        string
	owner     string
	buyer     string
	state     State
	form      BuyerForm
	quote     *Quote
	order     *order.Order
	message   string
	updatedAt time.Time
}

func newAttempt(id, owner string, now time.Time) *Attempt {
	return &Attempt{id: id, owner: owner, state: StateIdle, updatedAt: now}
}

func (a *Attempt) ID() string { return a.id }

func (a *Attempt) Owner() string { return a.owner }

// buyerIdentity is the email order history is filtered by.
func (a *Attempt) buyerIdentity() string {
	if a.buyer != "" {
		return a.buyer
	}
	return a.form.Email
}

// Status is a point-in-time copy of an attempt.
type Status struct {
	ID        string       `json:"id"`
	State     State        `json:"state"`
	Form      BuyerForm    `json:"form"`
	Quote     *Quote       `json:"quote,omitempty"`
	Order     *order.Order `json:"order,omitempty"`
	Message   string       `json:"message,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (a *Attempt) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status()
}

func (a *Attempt) status() Status {
	s := Status{
		ID:        a.id,
		State:     a.state,
		Form:      a.form,
		Message:   a.message,
		UpdatedAt: a.updatedAt,
	}
	if a.quote != nil {
		q := *a.quote
		s.Quote = &q
	}
	if a.order != nil {
		o := *a.order
		s.Order = &o
	}
	return s
}
