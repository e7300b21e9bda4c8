package app

import (
	"context"

	"foodzz/internal/food"
	"foodzz/internal/notify"
	"foodzz/internal/order"
)

// Store is what the client needs from persistence. The Redis-backed
// local store and the REST client both implement it.
type Store interface {
	Foods(ctx context.Context) ([]food.Item, error)
	Featured(ctx context.Context) ([]int, error)
	CreateFood(ctx context.Context, item food.Item) (food.Item, error)
	UpdateFood(ctx context.Context, id int, patch food.Patch) (food.Item, error)
	DeleteFood(ctx context.Context, id int) error
	SetFeatured(ctx context.Context, id int, featured bool) error

	PlaceOrder(ctx context.Context, sub order.Submission) (order.Receipt, error)
	Orders(ctx context.Context, status string) ([]order.Order, error)
	Order(ctx context.Context, id int) (*order.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, to order.Status) (*order.Order, error)
	Stats(ctx context.Context) (order.Stats, error)

	Login(ctx context.Context, username, password string) error
}

// Subscriber is implemented by stores that can push change events.
type Subscriber interface {
	Subscribe(ctx context.Context, fn func(notify.Event)) error
}
