package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wichananm65/ticket-shop-backend/internal/storage"
)

var (
	ErrStorageCorrupt = errors.New("stored order history is corrupt")
	ErrInvalidOrder   = errors.New("invalid order")
)

// Repository persists an owner's order history.
type Repository interface {
	// Load returns the stored orders in append order and the slot version.
	Load(ctx context.Context, owner string) ([]Order, int64, error)
	Save(ctx context.Context, owner string, orders []Order, expectedVersion int64) (int64, error)
}

// SlotRepository keeps the history as a JSON array in the orderHistory slot.
type SlotRepository struct {
	store storage.SlotStore
}

func NewSlotRepository(store storage.SlotStore) *SlotRepository {
	return &SlotRepository{store: store}
}

func (r *SlotRepository) Load(ctx context.Context, owner string) ([]Order, int64, error) {
	rec, err := storage.Read(ctx, r.store, storage.Key(owner, storage.SlotOrderHistory))
	if err != nil {
		return nil, 0, err
	}
	if len(rec.Value) == 0 {
		return []Order{}, rec.Version, nil
	}
	var orders []Order
	if err := json.Unmarshal(rec.Value, &orders); err != nil {
		return nil, rec.Version, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, rec.Version, nil
}

func (r *SlotRepository) Save(ctx context.Context, owner string, orders []Order, expectedVersion int64) (int64, error) {
	raw, err := json.Marshal(orders)
	if err != nil {
		return 0, fmt.Errorf("marshal orders failed: %w", err)
	}
	rec, err := r.store.Put(ctx, storage.Key(owner, storage.SlotOrderHistory), raw, expectedVersion)
	if err != nil {
		return 0, err
	}
	return rec.Version, nil
}
