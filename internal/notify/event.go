package notify

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	FoodChanged        EventType = "food.changed"
)

// Event is what the dashboard is told about. It carries ids only; listeners
// refetch what they need.
type Event struct {
	Type     EventType `json:"type"`
	OrderID  int       `json:"order_id,omitempty"`
	FoodID   int       `json:"food_id,omitempty"`
	Status   string    `json:"status,omitempty"`
	Previous string    `json:"previous,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
