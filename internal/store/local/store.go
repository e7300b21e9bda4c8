package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"foodzz/internal/auth"
	"foodzz/internal/cart"
	"foodzz/internal/food"
	"foodzz/internal/logger"
	"foodzz/internal/notify"
	"foodzz/internal/order"
	"foodzz/internal/pricing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	// Prefix namespaces every key, e.g. "demo:".
	Prefix      string
	Policy      pricing.Policy
	Seed        []food.Item
	Credentials *auth.Credentials
}

// Store keeps the whole application state in Redis as JSON documents.
type Store struct {
	*CartStore
	kv     kv
	policy pricing.Policy
	seed   []food.Item
	creds  *auth.Credentials
	now    func() time.Time
}

func New(rdb redis.UniversalClient, opts Options) *Store {
	seed := opts.Seed
	if len(seed) == 0 {
		seed = food.DefaultMenu()
	}
	return &Store{
		CartStore: NewCartStore(rdb, opts.Prefix),
		kv:        kv{rdb: rdb, prefix: opts.Prefix},
		policy:    opts.Policy,
		seed:      seed,
		creds:     opts.Credentials,
		now:       time.Now,
	}
}

// -- Catalog --

// Foods returns the catalog, seeding it on first use.
func (s *Store) Foods(ctx context.Context) ([]food.Item, error) {
	var items []food.Item
	found, err := getJSON(ctx, s.kv.rdb, s.kv.key(KeyProducts), &items)
	if err != nil {
		return nil, err
	}
	if found {
		return items, nil
	}

	data, err := json.Marshal(s.seed)
	if err != nil {
		return nil, err
	}
	// another client may have seeded in the meantime
	if err := s.kv.rdb.SetNX(ctx, s.kv.key(KeyProducts), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	}
	if _, err := getJSON(ctx, s.kv.rdb, s.kv.key(KeyProducts), &items); err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("seeded local catalog", zap.Int("items", len(items)))
	return items, nil
}

func (s *Store) Food(ctx context.Context, id int) (*food.Item, error) {
	items, err := s.Foods(ctx)
	if err != nil {
		return nil, err
	}
	it, ok := food.FindByID(items, id)
	if !ok {
		return nil, food.ErrFoodNotFound
	}
	return &it, nil
}

// Featured returns the featured ids. Until the set is first saved the
// leading items of the catalog are featured.
func (s *Store) Featured(ctx context.Context) ([]int, error) {
	var ids []int
	found, err := getJSON(ctx, s.kv.rdb, s.kv.key(KeyFeatured), &ids)
	if err != nil {
		return nil, err
	}
	if found {
		return ids, nil
	}

	items, err := s.Foods(ctx)
	if err != nil {
		return nil, err
	}
	return defaultFeatured(items), nil
}

func defaultFeatured(items []food.Item) []int {
	ids := make([]int, 0, food.DefaultFeaturedCount)
	for i, it := range items {
		if i == food.DefaultFeaturedCount {
			break
		}
		ids = append(ids, it.ID)
	}
	return ids
}

func (s *Store) CreateFood(ctx context.Context, item food.Item) (food.Item, error) {
	if err := item.Validate(); err != nil {
		return food.Item{}, err
	}
	if _, err := s.Foods(ctx); err != nil {
		return food.Item{}, err
	}

	var created food.Item
	err := s.kv.update(ctx, func(tx *redis.Tx) error {
		var items []food.Item
		if _, err := getJSON(ctx, tx, s.kv.key(KeyProducts), &items); err != nil {
			return err
		}

		created = item
		created.ID = food.NextID(items)
		now := s.now().UTC()
		created.CreatedAt = &now
		items = append(items, created)

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return setJSON(ctx, pipe, s.kv.key(KeyProducts), items)
		})
		return err
	}, KeyProducts)
	if err != nil {
		return food.Item{}, err
	}

	s.publish(ctx, notify.Event{Type: notify.FoodChanged, FoodID: created.ID})
	return created, nil
}

func (s *Store) UpdateFood(ctx context.Context, id int, patch food.Patch) (food.Item, error) {
	if err := patch.Validate(); err != nil {
		return food.Item{}, err
	}
	if _, err := s.Foods(ctx); err != nil {
		return food.Item{}, err
	}

	var updated food.Item
	err := s.kv.update(ctx, func(tx *redis.Tx) error {
		var items []food.Item
		if _, err := getJSON(ctx, tx, s.kv.key(KeyProducts), &items); err != nil {
			return err
		}

		idx := indexOf(items, id)
		if idx < 0 {
			return food.ErrFoodNotFound
		}
		updated = patch.Apply(items[idx])
		items[idx] = updated

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return setJSON(ctx, pipe, s.kv.key(KeyProducts), items)
		})
		return err
	}, KeyProducts)
	if err != nil {
		return food.Item{}, err
	}

	s.publish(ctx, notify.Event{Type: notify.FoodChanged, FoodID: id})
	return updated, nil
}

// DeleteFood removes the item and drops it from the featured set.
func (s *Store) DeleteFood(ctx context.Context, id int) error {
	if _, err := s.Foods(ctx); err != nil {
		return err
	}

	err := s.kv.update(ctx, func(tx *redis.Tx) error {
		var items []food.Item
		if _, err := getJSON(ctx, tx, s.kv.key(KeyProducts), &items); err != nil {
			return err
		}
		idx := indexOf(items, id)
		if idx < 0 {
			return food.ErrFoodNotFound
		}

		var featured []int
		found, err := getJSON(ctx, tx, s.kv.key(KeyFeatured), &featured)
		if err != nil {
			return err
		}
		if !found {
			featured = defaultFeatured(items)
		}

		items = append(items[:idx], items[idx+1:]...)
		featured = without(featured, id)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if err := setJSON(ctx, pipe, s.kv.key(KeyProducts), items); err != nil {
				return err
			}
			return setJSON(ctx, pipe, s.kv.key(KeyFeatured), featured)
		})
		return err
	}, KeyProducts, KeyFeatured)
	if err != nil {
		return err
	}

	s.publish(ctx, notify.Event{Type: notify.FoodChanged, FoodID: id})
	return nil
}

func (s *Store) SetFeatured(ctx context.Context, id int, featured bool) error {
	if _, err := s.Food(ctx, id); err != nil {
		return err
	}

	err := s.kv.update(ctx, func(tx *redis.Tx) error {
		var ids []int
		found, err := getJSON(ctx, tx, s.kv.key(KeyFeatured), &ids)
		if err != nil {
			return err
		}
		if !found {
			var items []food.Item
			if _, err := getJSON(ctx, tx, s.kv.key(KeyProducts), &items); err != nil {
				return err
			}
			ids = defaultFeatured(items)
		}

		ids = without(ids, id)
		if featured {
			ids = append(ids, id)
			sort.Ints(ids)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return setJSON(ctx, pipe, s.kv.key(KeyFeatured), ids)
		})
		return err
	}, KeyFeatured, KeyProducts)
	if err != nil {
		return err
	}

	s.publish(ctx, notify.Event{Type: notify.FoodChanged, FoodID: id})
	return nil
}

// -- Orders --

// nextOrderID hands out the value stored under nextOrderId and bumps it.
func (s *Store) nextOrderID(ctx context.Context) (int, error) {
	key := s.kv.key(KeyNextOrderID)
	if err := s.kv.rdb.SetNX(ctx, key, 1, 0).Err(); err != nil {
		return 0, fmt.Errorf("init %s: %w", KeyNextOrderID, err)
	}
	n, err := s.kv.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", KeyNextOrderID, err)
	}
	return int(n - 1), nil
}

// PlaceOrder stores the submission as a pending order priced with the
// local policy.
func (s *Store) PlaceOrder(ctx context.Context, sub order.Submission) (order.Receipt, error) {
	if err := sub.Validate(); err != nil {
		return order.Receipt{}, err
	}

	lines := append([]cart.Line(nil), sub.Items...)

	id, err := s.nextOrderID(ctx)
	if err != nil {
		return order.Receipt{}, err
	}

	o := order.Order{
		ID:        id,
		Customer:  sub.Customer,
		Items:     lines,
		Totals:    pricing.Compute(lines, s.policy),
		Status:    order.StatusPending,
		CreatedAt: s.now().UTC(),
	}

	err = s.kv.update(ctx, func(tx *redis.Tx) error {
		var orders []order.Order
		if _, err := getJSON(ctx, tx, s.kv.key(KeyOrders), &orders); err != nil {
			return err
		}
		orders = append(orders, o)

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return setJSON(ctx, pipe, s.kv.key(KeyOrders), orders)
		})
		return err
	}, KeyOrders)
	if err != nil {
		return order.Receipt{}, fmt.Errorf("%w: %w", order.ErrFailedCreateOrder, err)
	}

	logger.FromCtx(ctx).Info("order placed",
		zap.String("layer", "store"),
		zap.Int("order_id", o.ID),
		zap.String("total", o.Total.StringFixed(2)),
	)
	s.publish(ctx, notify.Event{Type: notify.OrderCreated, OrderID: o.ID, Status: string(o.Status)})
	return o.Receipt(), nil
}

func (s *Store) allOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if _, err := getJSON(ctx, s.kv.rdb, s.kv.key(KeyOrders), &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = make([]order.Order, 0)
	}
	return orders, nil
}

// Orders lists orders newest first, optionally filtered by status.
func (s *Store) Orders(ctx context.Context, status string) ([]order.Order, error) {
	orders, err := s.allOrders(ctx)
	if err != nil {
		return nil, err
	}
	orders = order.FilterByStatus(orders, status)
	order.SortNewestFirst(orders)
	return orders, nil
}

func (s *Store) Order(ctx context.Context, id int) (*order.Order, error) {
	orders, err := s.allOrders(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

// UpdateOrderStatus applies a single forward step. The check runs inside
// the WATCH transaction, so a concurrent change is re-validated.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int, to order.Status) (*order.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", order.ErrInvalidStatus, to)
	}

	var (
		updated order.Order
		from    order.Status
	)
	err := s.kv.update(ctx, func(tx *redis.Tx) error {
		var orders []order.Order
		if _, err := getJSON(ctx, tx, s.kv.key(KeyOrders), &orders); err != nil {
			return err
		}

		idx := -1
		for i := range orders {
			if orders[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return order.ErrOrderNotFound
		}

		from = orders[idx].Status
		if !order.CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, from, to)
		}
		orders[idx].Status = to
		updated = orders[idx]

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return setJSON(ctx, pipe, s.kv.key(KeyOrders), orders)
		})
		return err
	}, KeyOrders)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Type:     notify.OrderStatusChanged,
		OrderID:  id,
		Status:   string(to),
		Previous: string(from),
	})
	return &updated, nil
}

func (s *Store) Stats(ctx context.Context) (order.Stats, error) {
	orders, err := s.allOrders(ctx)
	if err != nil {
		return order.Stats{}, err
	}
	return order.ComputeStats(orders), nil
}

// -- Admin --

func (s *Store) Login(ctx context.Context, username, password string) error {
	if s.creds == nil {
		return ErrNoLogin
	}
	if err := s.creds.Verify(username, password); err != nil {
		logger.FromCtx(ctx).Warn("failed admin login", zap.String("username", username))
		return err
	}
	return nil
}

// -- Events --

func (s *Store) Publish(ctx context.Context, ev notify.Event) error {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.kv.rdb.Publish(ctx, s.kv.key(ChannelEvents), data).Err()
}

func (s *Store) publish(ctx context.Context, ev notify.Event) {
	if err := s.Publish(ctx, ev); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish event",
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// Subscribe calls fn for every event published on the events channel
// until ctx is done.
func (s *Store) Subscribe(ctx context.Context, fn func(notify.Event)) error {
	pubsub := s.kv.rdb.Subscribe(ctx, s.kv.key(ChannelEvents))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelEvents, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("event channel closed")
			}
			var ev notify.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.FromCtx(ctx).Warn("failed to decode event", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}
}

func indexOf(items []food.Item, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
