package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

const maxUpdateRetries = 10

// RedisStore keeps sessions as JSON strings under "<prefix>:<principal>".
// Updates use WATCH/MULTI so concurrent requests from the same principal
// cannot lose each other's writes.  Every write refreshes the TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a store backed by rdb.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(principal string) string { return r.prefix + ":" + principal }

// Get loads the principal's session.
func (r *RedisStore) Get(ctx context.Context, principal string) (model.BookingSession, error) {
	return load(ctx, r.rdb, r.key(principal))
}

// Update applies fn inside an optimistic transaction, retrying when the key
// changed between read and write.
func (r *RedisStore) Update(ctx context.Context, principal string, fn Mutator) (model.BookingSession, error) {
	key := r.key(principal)
	var result model.BookingSession

	txf := func(tx *redis.Tx) error {
		cur, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(&cur); err != nil {
			return err
		}
		cur.UpdatedAt = time.Now().UTC()
		normalize(&cur)
		payload, err := json.Marshal(cur)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err == nil {
			result = cur
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return model.BookingSession{}, err
	}
	return model.BookingSession{}, ErrConflict
}

// Delete removes the principal's session key.
func (r *RedisStore) Delete(ctx context.Context, principal string) error {
	return r.rdb.Del(ctx, r.key(principal)).Err()
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, key string) (model.BookingSession, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return empty(), nil
	}
	if err != nil {
		return model.BookingSession{}, err
	}
	var s model.BookingSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.BookingSession{}, fmt.Errorf("decode session %s: %w", key, err)
	}
	normalize(&s)
	return s, nil
}
