// Package storage persists named JSON slots per owner. Every slot carries a
// version that increases by one on each successful write, and writes are
// compare-and-swap against the version the caller last read.
package storage

import (
	"context"
	"errors"
)

// Slot names shared by the storefront.
const (
	SlotCartItems    = "cartItems"
	SlotOrderHistory = "orderHistory"
	SlotLoggedInUser = "loggedInUser"
)

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrVersionConflict = errors.New("slot version conflict")
)

// Record is the stored value of a slot. Version 0 means the slot is absent.
type Record struct {
	Value   []byte
	Version int64
}

// SlotStore is implemented by every backend.
type SlotStore interface {
	// Get returns ErrSlotNotFound when nothing was ever written under key.
	Get(ctx context.Context, key string) (Record, error)
	// Put writes value if the stored version still equals expectedVersion
	// (0 for a slot that must not exist yet) and returns the new record.
	// Otherwise it returns ErrVersionConflict and leaves the slot untouched.
	Put(ctx context.Context, key string, value []byte, expectedVersion int64) (Record, error)
}

// Key scopes a slot name to an owner.
func Key(owner, slot string) string {
	return owner + ":" + slot
}

// Read is Get with a missing slot reported as an empty record.
func Read(ctx context.Context, s SlotStore, key string) (Record, error) {
	rec, err := s.Get(ctx, key)
	if errors.Is(err, ErrSlotNotFound) {
		return Record{}, nil
	}
	return rec, err
}
