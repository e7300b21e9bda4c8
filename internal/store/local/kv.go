package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Durable keys. The names match what the storefront has always used.
const (
	KeyOrders      = "orders"
	KeyProducts    = "products"
	KeyNextOrderID = "nextOrderId"
	KeyCart        = "foodzz_cart"
	KeyFeatured    = "featured"
	ChannelEvents  = "events"
)

const maxTxRetries = 5

// Dial connects to Redis and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// kv is a JSON document store over plain Redis strings.
type kv struct {
	rdb    redis.UniversalClient
	prefix string
}

func (k kv) key(name string) string {
	return k.prefix + name
}

// getJSON decodes key into dst. found is false when the key was never
// written.
func getJSON(ctx context.Context, c redis.Cmdable, key string, dst any) (found bool, err error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, c redis.Cmdable, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// update runs fn under WATCH on the named keys and retries when another
// writer got there first. fn reads through tx and writes with
// tx.TxPipelined.
func (k kv) update(ctx context.Context, fn func(tx *redis.Tx) error, names ...string) error {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = k.key(name)
	}

	for i := 0; i < maxTxRetries; i++ {
		err := k.rdb.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}
