package cart

import (
	"context"
	"fmt"
	"sync"

	"foodzz/internal/food"
	"foodzz/internal/logger"
	"foodzz/internal/pricing"

	"go.uber.org/zap"
)

// Store persists the whole cart under a single key.
type Store interface {
	LoadCart(ctx context.Context) ([]Line, error)
	SaveCart(ctx context.Context, lines []Line) error
}

// Manager owns the in-memory cart and mirrors it to the Store after every
// mutation. The in-memory state keeps the mutation even when the write
// fails; the error is returned so the caller can report it.
type Manager struct {
	mu       sync.RWMutex
	lines    []Line
	store    Store
	policy   pricing.Policy
	onChange func([]Line)
}

func NewManager(store Store, policy pricing.Policy) *Manager {
	return &Manager{
		lines:  make([]Line, 0),
		store:  store,
		policy: policy,
	}
}

// OnChange registers a hook called after each persisted mutation.
func (m *Manager) OnChange(fn func([]Line)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Load rehydrates the cart from the store.
func (m *Manager) Load(ctx context.Context) error {
	lines, err := m.store.LoadCart(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedLoadCart, err)
	}
	if lines == nil {
		lines = make([]Line, 0)
	}

	m.mu.Lock()
	m.lines = lines
	m.mu.Unlock()
	return nil
}

func (m *Manager) AddToCart(ctx context.Context, item food.Item, qty int) error {
	m.mu.Lock()
	next, err := Add(m.lines, item, qty)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.lines = next
	m.mu.Unlock()

	logger.FromCtx(ctx).Debug("cart add",
		zap.Int("food_id", item.ID),
		zap.Int("quantity", qty),
	)
	return m.commit(ctx)
}

// UpdateQuantity sets a line's quantity; qty <= 0 removes the line.
func (m *Manager) UpdateQuantity(ctx context.Context, id, qty int) error {
	m.mu.Lock()
	if !Contains(m.lines, id) {
		m.mu.Unlock()
		return nil
	}
	m.lines = SetQuantity(m.lines, id, qty)
	m.mu.Unlock()

	return m.commit(ctx)
}

func (m *Manager) RemoveFromCart(ctx context.Context, id int) error {
	m.mu.Lock()
	if !Contains(m.lines, id) {
		m.mu.Unlock()
		return nil
	}
	m.lines = Remove(m.lines, id)
	m.mu.Unlock()

	return m.commit(ctx)
}

func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.lines = make([]Line, 0)
	m.mu.Unlock()

	return m.commit(ctx)
}

// Lines returns a copy of the current cart.
func (m *Manager) Lines() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.lines)
}

func (m *Manager) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines) == 0
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Count(m.lines)
}

func (m *Manager) Totals() pricing.Totals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pricing.Compute(m.lines, m.policy)
}

func (m *Manager) Policy() pricing.Policy {
	return m.policy
}

func (m *Manager) commit(ctx context.Context) error {
	m.mu.RLock()
	snapshot := clone(m.lines)
	hook := m.onChange
	m.mu.RUnlock()

	if err := m.store.SaveCart(ctx, snapshot); err != nil {
		logger.FromCtx(ctx).Error("failed to persist cart", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedSaveCart, err)
	}

	if hook != nil {
		hook(snapshot)
	}
	return nil
}
