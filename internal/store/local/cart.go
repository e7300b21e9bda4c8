package local

import (
	"context"

	"foodzz/internal/cart"

	"github.com/redis/go-redis/v9"
)

// CartStore keeps the cart under the foodzz_cart key. The remote mode
// uses it on its own since the backend has no cart.
type CartStore struct {
	kv kv
}

func NewCartStore(rdb redis.UniversalClient, prefix string) *CartStore {
	return &CartStore{kv: kv{rdb: rdb, prefix: prefix}}
}

func (s *CartStore) LoadCart(ctx context.Context) ([]cart.Line, error) {
	var lines []cart.Line
	if _, err := getJSON(ctx, s.kv.rdb, s.kv.key(KeyCart), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *CartStore) SaveCart(ctx context.Context, lines []cart.Line) error {
	if lines == nil {
		lines = make([]cart.Line, 0)
	}
	return setJSON(ctx, s.kv.rdb, s.kv.key(KeyCart), lines)
}
