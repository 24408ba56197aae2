package order

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
)

// Service is the append-only order history.
type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// Append adds o to the owner's history. The write is compare-and-swap at the
// version read, so a concurrent append fails with storage.ErrVersionConflict
// instead of being overwritten.
func (s *Service) Append(ctx context.Context, owner string, o Order) error {
	if err := o.validate(); err != nil {
		return err
	}
	orders, version, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	if _, err := s.repo.Save(ctx, owner, append(orders, o), version); err != nil {
		return err
	}
	s.log.Info("order archived",
		zap.String("owner", owner),
		zap.String("order_id", o.OrderID),
		zap.Int64("total", o.TotalAmount),
	)
	return nil
}

// List returns every order of the owner in stored order.
func (s *Service) List(ctx context.Context, owner string) ([]Order, error) {
	orders, _, err := s.load(ctx, owner)
	return orders, err
}

// ListFor returns the owner's orders placed by buyer, in stored order.
func (s *Service) ListFor(ctx context.Context, owner, buyer string) ([]Order, error) {
	orders, _, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.BelongsTo(buyer) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, owner string) ([]Order, int64, error) {
	orders, version, err := s.repo.Load(ctx, owner)
	if errors.Is(err, ErrStorageCorrupt) {
		s.log.Warn("discarding corrupt order history", zap.String("owner", owner), zap.Error(err))
		return []Order{}, version, nil
	}
	return orders, version, err
}

// SortNewestFirst returns a copy of orders ordered by CreatedAt descending.
func SortNewestFirst(orders []Order) []Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
