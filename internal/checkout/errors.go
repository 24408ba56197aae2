package checkout

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidationFailed  = errors.New("buyer details are invalid")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition = errors.New("illegal transition of checkout state")
	ErrCartChanged       = errors.New("cart changed since the payment code was issued")
	ErrCartNotCleared    = errors.New("order recorded but cart was not cleared")
	ErrAttemptNotFound   = errors.New("checkout attempt not found")
)

// ValidationError carries one message per invalid form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidationFailed.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
