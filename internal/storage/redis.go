package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldValue   = "value"
	redisFieldVersion = "version"
)

// RedisStore keeps each slot as a hash {value, version} under slot:<key>.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) (Record, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(fields) == 0 {
		return Record{}, ErrSlotNotFound
	}
	version, err := strconv.ParseInt(fields[redisFieldVersion], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("slot %s has invalid version %q: %w", key, fields[redisFieldVersion], err)
	}
	return Record{Value: []byte(fields[redisFieldValue]), Version: version}, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (Record, error) {
	k := redisKey(key)
	var next int64

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, k, redisFieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expectedVersion {
			return ErrVersionConflict
		}
		next = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, redisFieldValue, value, redisFieldVersion, next)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, k)
	switch {
	case err == nil:
		return Record{Value: append([]byte(nil), value...), Version: next}, nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		// a concurrent writer touched the key between WATCH and EXEC
		return Record{}, ErrVersionConflict
	default:
		return Record{}, fmt.Errorf("redis put failed: %w", err)
	}
}

func redisKey(key string) string {
	return fmt.Sprintf("slot:%s", key)
}
