package checkout

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the attempts of the running process.
type Registry struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{attempts: make(map[string]*Attempt), now: time.Now}
}

// Create starts a new idle attempt for owner. buyer is the session email
// settled orders are tagged with; an empty buyer falls back to the form email.
func (r *Registry) Create(owner, buyer string) *Attempt {
	a := newAttempt(uuid.NewString(), owner, r.now())
	a.buyer = strings.TrimSpace(buyer)
	r.mu.Lock()
	r.attempts[a.id] = a
	r.mu.Unlock()
	return a
}

// Get returns the attempt with id if owner started it.
func (r *Registry) Get(owner, id string) (*Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok || a.owner != owner {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	return a, nil
}

// Forget drops idle and settled attempts last touched before cutoff. An
// attempt awaiting payment stays until the buyer confirms or cancels it.
func (r *Registry) Forget(cutoff time.Time) int {
	r.mu.Lock()
	all := make([]*Attempt, 0, len(r.attempts))
	for _, a := range r.attempts {
		all = append(all, a)
	}
	r.mu.Unlock()

	n := 0
	for _, a := range all {
		// a busy attempt is being driven right now, so it is not stale
		if !a.mu.TryLock() {
			continue
		}
		stale := a.state != StateAwaitingPayment && a.updatedAt.Before(cutoff)
		if stale {
			r.mu.Lock()
			if r.attempts[a.id] == a {
				delete(r.attempts, a.id)
				n++
			}
			r.mu.Unlock()
		}
		a.mu.Unlock()
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}
