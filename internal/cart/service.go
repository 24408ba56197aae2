package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Service is the cart store. Every mutation reads the cart, applies the change
// and writes it back at the version it read; a concurrent writer makes the
// mutation fail with storage.ErrVersionConflict.
type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Load restores the owner's cart. A missing or undecodable slot is an empty
// cart; only backend failures are returned.
func (s *Service) Load(ctx context.Context, owner string) (Cart, error) {
	items, version, err := s.repo.Load(ctx, owner)
	if errors.Is(err, ErrStorageCorrupt) {
		s.log.Warn("discarding corrupt cart", zap.String("owner", owner), zap.Int64("version", version), zap.Error(err))
		return Cart{Items: []LineItem{}, Version: version}, nil
	}
	if err != nil {
		return Cart{}, err
	}
	return Cart{Items: items, Version: version}, nil
}

// Add appends item as a new line. Identical lines are not merged.
func (s *Service) Add(ctx context.Context, owner string, item LineItem) (Cart, error) {
	if err := validateItem(item); err != nil {
		return Cart{}, err
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return s.mutate(ctx, owner, func(items []LineItem) ([]LineItem, error) {
		return append(items, item), nil
	})
}

// SetQuantity changes the quantity of the line at index, clamped to at least 1.
func (s *Service) SetQuantity(ctx context.Context, owner string, index, quantity int) (Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, owner, func(items []LineItem) ([]LineItem, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("%w: index %d of %d", ErrLineNotFound, index, len(items))
		}
		items[index].Quantity = quantity
		if err := validateItem(items[index]); err != nil {
			return nil, err
		}
		return items, nil
	})
}

func (s *Service) Remove(ctx context.Context, owner string, index int) (Cart, error) {
	return s.mutate(ctx, owner, func(items []LineItem) ([]LineItem, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("%w: index %d of %d", ErrLineNotFound, index, len(items))
		}
		return append(items[:index], items[index+1:]...), nil
	})
}

func (s *Service) Clear(ctx context.Context, owner string) (Cart, error) {
	return s.mutate(ctx, owner, func([]LineItem) ([]LineItem, error) {
		return []LineItem{}, nil
	})
}

// ClearAt empties the cart only if it is still at version, so lines added
// after a checkout quote survive.
func (s *Service) ClearAt(ctx context.Context, owner string, version int64) (Cart, error) {
	next, err := s.repo.Save(ctx, owner, []LineItem{}, version)
	if err != nil {
		return Cart{}, err
	}
	return Cart{Items: []LineItem{}, Version: next}, nil
}

func (s *Service) mutate(ctx context.Context, owner string, fn func([]LineItem) ([]LineItem, error)) (Cart, error) {
	cart, err := s.Load(ctx, owner)
	if err != nil {
		return Cart{}, err
	}
	items, err := fn(cart.Snapshot())
	if err != nil {
		return Cart{}, err
	}
	if err := checkTotal(items); err != nil {
		return Cart{}, err
	}
	version, err := s.repo.Save(ctx, owner, items, cart.Version)
	if err != nil {
		return Cart{}, err
	}
	return Cart{Items: items, Version: version}, nil
}

func validateItem(item LineItem) error {
	switch {
	case item.ID == "":
		return fmt.Errorf("%w: id is empty", ErrInvalidItem)
	case !item.Kind.valid():
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, item.Kind)
	case item.UnitPrice < 0:
		return fmt.Errorf("%w: negative unit price %d", ErrInvalidItem, item.UnitPrice)
	case item.Quantity > 0 && item.UnitPrice > math.MaxInt64/int64(item.Quantity):
		return fmt.Errorf("%w: %d x %d overflows the line total", ErrInvalidItem, item.UnitPrice, item.Quantity)
	}
	return nil
}

// validateLine checks a line as it must look once stored.
func validateLine(item LineItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidItem, item.Quantity)
	}
	return validateItem(item)
}

func checkTotal(items []LineItem) error {
	var total int64
	for _, item := range items {
		line := item.Total()
		if total > math.MaxInt64-line {
			return fmt.Errorf("%w: cart total overflows", ErrInvalidItem)
		}
		total += line
	}
	return nil
}
