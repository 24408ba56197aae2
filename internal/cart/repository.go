package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wichananm65/ticket-shop-backend/internal/storage"
)

var (
	ErrStorageCorrupt = errors.New("stored cart is corrupt")
	ErrInvalidItem    = errors.New("invalid cart item")
	ErrLineNotFound   = errors.New("cart line not found")
)

// Repository persists the lines of a cart.
type Repository interface {
	// Load returns the stored lines and the slot version. A slot that
	// cannot be decoded, or holds a line no Add could have produced, yields ErrStorageCorrupt together with its version
	// so the next save can overwrite it.
	Load(ctx context.Context, owner string) ([]LineItem, int64, error)
	// Save writes items if the slot is still at expectedVersion and returns
	// the new version.
	Save(ctx context.Context, owner string, items []LineItem, expectedVersion int64) (int64, error)
}

// SlotRepository keeps the cart as a JSON array in the owner's cartItems slot.
type SlotRepository struct {
	store storage.SlotStore
}

func NewSlotRepository(store storage.SlotStore) *SlotRepository {
	return &SlotRepository{store: store}
}

func (r *SlotRepository) Load(ctx context.Context, owner string) ([]LineItem, int64, error) {
	rec, err := storage.Read(ctx, r.store, storage.Key(owner, storage.SlotCartItems))
	if err != nil {
		return nil, 0, err
	}
	if len(rec.Value) == 0 {
		return []LineItem{}, rec.Version, nil
	}

	var items []LineItem
	if err := json.Unmarshal(rec.Value, &items); err != nil {
		return nil, rec.Version, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	for i, item := range items {
		if err := validateLine(item); err != nil {
			return nil, rec.Version, fmt.Errorf("%w: line %d: %v", ErrStorageCorrupt, i, err)
		}
	}
	if err := checkTotal(items); err != nil {
		return nil, rec.Version, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, rec.Version, nil
}

func (r *SlotRepository) Save(ctx context.Context, owner string, items []LineItem, expectedVersion int64) (int64, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("marshal cart failed: %w", err)
	}
	rec, err := r.store.Put(ctx, storage.Key(owner, storage.SlotCartItems), raw, expectedVersion)
	if err != nil {
		return 0, err
	}
	return rec.Version, nil
}
