package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wichananm65/ticket-shop-backend/internal/storage"
)

var (
	ErrNotFound       = errors.New("user profile not found")
	ErrProfileCorrupt = errors.New("stored user profile is corrupt")
)

// Repository reads the profile the login flow stored for an owner. It is
// read-only here.
type Repository interface {
	GetProfile(ctx context.Context, owner string) (Profile, error)
}

type SlotRepository struct {
	store storage.SlotStore
}

func NewSlotRepository(store storage.SlotStore) *SlotRepository {
	return &SlotRepository{store: store}
}

func (r *SlotRepository) GetProfile(ctx context.Context, owner string) (Profile, error) {
	rec, err := r.store.Get(ctx, storage.Key(owner, storage.SlotLoggedInUser))
	if errors.Is(err, storage.ErrSlotNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(rec.Value, &p); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfileCorrupt, err)
	}
	return p, nil
}
