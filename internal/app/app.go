package app

import (
	"context"
	"fmt"
	"sync"

	"foodzz/internal/cart"
	"foodzz/internal/food"
	"foodzz/internal/logger"
	"foodzz/internal/order"

	"go.uber.org/zap"
)

// App holds the client state: the menu, the cart and the admin view of
// orders. Every mutation goes through the Store right away; the cached
// collections are what the last load or refresh returned.
type App struct {
	store Store
	cart  *cart.Manager

	mu       sync.RWMutex
	foods    []food.Item
	featured []int
	orders   []order.Order
	stats    order.Stats
	loaded   bool
}

func New(store Store, carts *cart.Manager) *App {
	return &App{store: store, cart: carts}
}

func (a *App) Store() Store {
	return a.store
}

func (a *App) Cart() *cart.Manager {
	return a.cart
}

// Start rehydrates the cart and loads the menu.
func (a *App) Start(ctx context.Context) error {
	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	return a.LoadMenu(ctx)
}

func (a *App) LoadMenu(ctx context.Context) error {
	items, err := a.store.Foods(ctx)
	if err != nil {
		return fmt.Errorf("load menu: %w", err)
	}

	a.mu.Lock()
	a.foods = items
	a.loaded = true
	a.mu.Unlock()
	return nil
}

// -- Menu --

// Menu applies the category filter, then the name search.
func (a *App) Menu(category, query string) []food.Item {
	a.mu.RLock()
	items := append([]food.Item(nil), a.foods...)
	a.mu.RUnlock()

	items = food.FilterByCategory(items, category)
	if query != "" {
		items = food.SearchByName(items, query)
	}
	return items
}

func (a *App) Categories() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return food.Categories(a.foods)
}

func (a *App) Food(id int) (food.Item, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.loaded {
		return food.Item{}, ErrMenuNotLoaded
	}
	it, ok := food.FindByID(a.foods, id)
	if !ok {
		return food.Item{}, fmt.Errorf("%w: %d", food.ErrFoodNotFound, id)
	}
	return it, nil
}

// Featured loads the featured set and returns the matching menu items in
// menu order.
func (a *App) Featured(ctx context.Context) ([]food.Item, error) {
	ids, err := a.store.Featured(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	a.mu.Lock()
	a.featured = ids
	items := make([]food.Item, 0, len(ids))
	for _, it := range a.foods {
		if _, ok := set[it.ID]; ok {
			items = append(items, it)
		}
	}
	a.mu.Unlock()
	return items, nil
}

// -- Cart --

func (a *App) AddToCart(ctx context.Context, id, qty int) error {
	it, err := a.Food(id)
	if err != nil {
		return err
	}
	return a.cart.AddToCart(ctx, it, qty)
}

// Checkout validates locally, submits the cart and clears it only after
// the store accepted the order. Nothing is sent when validation fails.
func (a *App) Checkout(ctx context.Context, c order.Customer, card *order.Card) (order.Receipt, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "app"),
		zap.String("method", "Checkout"),
	)

	// 1️⃣ Validate before any request
	lines := a.cart.Lines()
	if len(lines) == 0 {
		return order.Receipt{}, order.ErrEmptyCart
	}
	if err := order.ValidateCustomer(c, card); err != nil {
		return order.Receipt{}, err
	}

	// 2️⃣ Submit
	r, err := a.store.PlaceOrder(ctx, order.Submission{Customer: c, Items: lines})
	if err != nil {
		log.Warn("checkout failed, cart kept", zap.Error(err))
		return order.Receipt{}, err
	}

	// 3️⃣ Clear the cart
	if err := a.cart.Clear(ctx); err != nil {
		log.Error("order placed but cart not cleared",
			zap.Int("order_id", r.OrderID),
			zap.Error(err),
		)
	}

	log.Info("order placed", zap.Int("order_id", r.OrderID))
	return r, nil
}

// -- Admin --

func (a *App) Login(ctx context.Context, username, password string) error {
	return a.store.Login(ctx, username, password)
}

// RefreshDashboard reloads stats and the full order list.
func (a *App) RefreshDashboard(ctx context.Context) error {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	orders, err := a.store.Orders(ctx, order.StatusAll)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	a.mu.Lock()
	a.stats = stats
	a.orders = orders
	a.mu.Unlock()
	return nil
}

// Orders filters the last loaded orders by status ("all" keeps every one).
func (a *App) Orders(status string) []order.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return order.FilterByStatus(append([]order.Order(nil), a.orders...), status)
}

func (a *App) Stats() order.Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// AdvanceOrder moves an order one step along its status sequence.
func (a *App) AdvanceOrder(ctx context.Context, id int) (*order.Order, error) {
	o, err := a.store.Order(ctx, id)
	if err != nil {
		return nil, err
	}

	_, next, ok := order.NextAction(*o)
	if !ok {
		return nil, ErrNoNextStatus
	}

	updated, err := a.store.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	for i := range a.orders {
		if a.orders[i].ID == id {
			a.orders[i].Status = updated.Status
		}
	}
	a.mu.Unlock()
	return updated, nil
}

func (a *App) CreateFood(ctx context.Context, item food.Item) (food.Item, error) {
	if err := item.Validate(); err != nil {
		return food.Item{}, err
	}
	created, err := a.store.CreateFood(ctx, item)
	if err != nil {
		return food.Item{}, err
	}
	return created, a.LoadMenu(ctx)
}

func (a *App) UpdateFood(ctx context.Context, id int, patch food.Patch) (food.Item, error) {
	if err := patch.Validate(); err != nil {
		return food.Item{}, err
	}
	updated, err := a.store.UpdateFood(ctx, id, patch)
	if err != nil {
		return food.Item{}, err
	}
	return updated, a.LoadMenu(ctx)
}

// DeleteFood asks confirm first and does nothing unless it returns true.
func (a *App) DeleteFood(ctx context.Context, id int, confirm func(food.Item) bool) error {
	it, err := a.Food(id)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(it) {
		return ErrNotConfirmed
	}
	if err := a.store.DeleteFood(ctx, id); err != nil {
		return err
	}
	return a.LoadMenu(ctx)
}

// ToggleFeatured flips the item's featured flag and returns the new value.
func (a *App) ToggleFeatured(ctx context.Context, id int) (bool, error) {
	if _, err := a.Food(id); err != nil {
		return false, err
	}
	ids, err := a.store.Featured(ctx)
	if err != nil {
		return false, err
	}

	featured := true
	for _, v := range ids {
		if v == id {
			featured = false
			break
		}
	}
	if err := a.store.SetFeatured(ctx, id, featured); err != nil {
		return false, err
	}
	return featured, nil
}
