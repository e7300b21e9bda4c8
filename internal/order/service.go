package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodzz/internal/cart"
	"foodzz/internal/food"
	"foodzz/internal/logger"
	"foodzz/internal/metrics"
	"foodzz/internal/notify"
	"foodzz/internal/pricing"

	"go.uber.org/zap"
)

// Catalog is the part of the food repository checkout needs.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []int) (map[int]food.Item, error)
}

type Service interface {
	Checkout(ctx context.Context, sub Submission) (*Order, error)
	List(ctx context.Context, status string) ([]Order, error)
	Get(ctx context.Context, id int) (*Order, error)
	UpdateStatus(ctx context.Context, id int, to Status) (*Order, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	repo      Repository
	catalog   Catalog
	policy    pricing.Policy
	publisher notify.Publisher
	now       func() time.Time
}

func NewService(repo Repository, catalog Catalog, policy pricing.Policy, publisher notify.Publisher) Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &service{
		repo:      repo,
		catalog:   catalog,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
	}
}

// Checkout validates the submission, reprices every line from the catalog
// and stores the order as pending. Client-side prices are never trusted.
func (s *service) Checkout(ctx context.Context, sub Submission) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	// 1️⃣ Validate input
	if err := sub.Validate(); err != nil {
		log.Warn("invalid checkout submission", zap.Error(err))
		return nil, err
	}

	// 2️⃣ Reprice from catalog
	ids := make([]int, 0, len(sub.Items))
	for _, l := range sub.Items {
		ids = append(ids, l.ItemID)
	}
	foods, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to load foods for checkout", zap.Error(err))
		return nil, err
	}

	var lines []cart.Line
	for _, l := range sub.Items {
		item, ok := foods[l.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", food.ErrFoodNotFound, l.ItemID)
		}
		// merge duplicates the same way the cart does
		lines, err = cart.Add(lines, item, l.Quantity)
		if err != nil {
			return nil, err
		}
	}

	// 3️⃣ Persist
	o := &Order{
		Customer: sub.Customer,
		Items:    lines,
		Totals:   pricing.Compute(lines, s.policy),
		Status:   StatusPending,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created",
		zap.Int("order_id", o.ID),
		zap.String("total", o.Total.StringFixed(2)),
	)

	// 4️⃣ Notify
	s.publish(ctx, notify.Event{
		Type:    notify.OrderCreated,
		OrderID: o.ID,
		Status:  string(o.Status),
	})

	return o, nil
}

func (s *service) List(ctx context.Context, status string) ([]Order, error) {
	if status != "" && status != StatusAll {
		if _, err := ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, status)
}

func (s *service) Get(ctx context.Context, id int) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus only accepts the single legal successor of the current
// status.
func (s *service) UpdateStatus(ctx context.Context, id int, to Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.Int("order_id", id),
	)

	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := current.Status
	if !CanTransition(from, to) {
		log.Warn("rejected status transition",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, ErrStaleStatus) {
			log.Warn("lost status race", zap.Error(err))
		}
		return nil, err
	}

	current.Status = to
	metrics.StatusChanges.WithLabelValues(string(to)).Inc()
	log.Info("order status updated",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	s.publish(ctx, notify.Event{
		Type:     notify.OrderStatusChanged,
		OrderID:  id,
		Status:   string(to),
		Previous: string(from),
	})

	return current, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// publish never fails the operation; the order is already stored.
func (s *service) publish(ctx context.Context, ev notify.Event) {
	ev.At = s.now().UTC()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish event",
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
