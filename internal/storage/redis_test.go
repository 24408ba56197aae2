package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a RedisStore pointing at it.
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	runSlotStoreContract(t, func(t *testing.T) SlotStore {
		store, _ := setupTestRedis(t)
		return store
	})
}

func TestRedisStore_HashLayout(t *testing.T) {
	store, mr := setupTestRedis(t)

	_, err := store.Put(context.Background(), "42:cartItems", []byte(`[]`), 0)
	require.NoError(t, err)

	assert.Equal(t, "[]", mr.HGet("slot:42:cartItems", "value"))
	assert.Equal(t, "1", mr.HGet("slot:42:cartItems", "version"))
}

func TestRedisStore_InvalidVersion(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.HSet("slot:42:cartItems", "value", "[]", "version", "abc")

	_, err := store.Get(context.Background(), "42:cartItems")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotNotFound)
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "42:cartItems")
	require.Error(t, err)

	_, err = store.Put(context.Background(), "42:cartItems", []byte(`[]`), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVersionConflict)
}
