package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"foodzz/internal/auth"
	"foodzz/internal/food"
	"foodzz/internal/order"
)

var (
	foodErrors = statusErrors{
		http.StatusNotFound:   food.ErrFoodNotFound,
		http.StatusBadRequest: food.ErrInvalidFood,
	}
	orderErrors = statusErrors{
		http.StatusNotFound:   order.ErrOrderNotFound,
		http.StatusBadRequest: order.ErrInvalidStatus,
		http.StatusConflict:   order.ErrInvalidTransition,
	}
	checkoutErrors = statusErrors{
		http.StatusNotFound: food.ErrFoodNotFound,
	}
	loginErrors = statusErrors{
		http.StatusUnauthorized: auth.ErrInvalidCredentials,
	}
)

// -- Catalog --

func (c *Client) Foods(ctx context.Context) ([]food.Item, error) {
	var items []food.Item
	if err := c.do(ctx, http.MethodGet, "/api/foods", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Food(ctx context.Context, id int) (*food.Item, error) {
	var item food.Item
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/foods/%d", id), nil, &item); err != nil {
		return nil, foodErrors.wrap(err)
	}
	return &item, nil
}

func (c *Client) Featured(ctx context.Context) ([]int, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var resp struct {
		Featured []int `json:"featured"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/featured", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Featured, nil
}

func (c *Client) CreateFood(ctx context.Context, item food.Item) (food.Item, error) {
	if err := c.requireToken(); err != nil {
		return food.Item{}, err
	}
	var created food.Item
	if err := c.do(ctx, http.MethodPost, "/api/admin/foods", item, &created); err != nil {
		return food.Item{}, foodErrors.wrap(err)
	}
	return created, nil
}

func (c *Client) UpdateFood(ctx context.Context, id int, patch food.Patch) (food.Item, error) {
	if err := c.requireToken(); err != nil {
		return food.Item{}, err
	}
	var updated food.Item
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/foods/%d", id), patch, &updated); err != nil {
		return food.Item{}, foodErrors.wrap(err)
	}
	return updated, nil
}

func (c *Client) DeleteFood(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/foods/%d", id), nil, nil)
	return foodErrors.wrap(err)
}

func (c *Client) SetFeatured(ctx context.Context, id int, featured bool) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	body := map[string]bool{"featured": featured}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/admin/foods/%d/featured", id), body, nil)
	return foodErrors.wrap(err)
}

// -- Orders --

// PlaceOrder submits the cart. The backend reprices every line, so the
// receipt totals are authoritative.
func (c *Client) PlaceOrder(ctx context.Context, sub order.Submission) (order.Receipt, error) {
	var r order.Receipt
	if err := c.do(ctx, http.MethodPost, "/api/checkout", sub, &r); err != nil {
		return order.Receipt{}, checkoutErrors.wrap(err)
	}
	return r, nil
}

func (c *Client) Orders(ctx context.Context, status string) ([]order.Order, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	path := "/api/admin/orders"
	if status != "" && status != order.StatusAll {
		path += "?status=" + url.QueryEscape(status)
	}

	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, orderErrors.wrap(err)
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, id int) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &o); err != nil {
		return nil, orderErrors.wrap(err)
	}
	return &o, nil
}

// UpdateOrderStatus returns the order as far as the reply describes it:
// its id and new status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int, to order.Status) (*order.Order, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var resp struct {
		Success bool         `json:"success"`
		OrderID int          `json:"order_id"`
		Status  order.Status `json:"status"`
	}
	body := map[string]string{"status": string(to)}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/orders/%d/status", id), body, &resp); err != nil {
		return nil, orderErrors.wrap(err)
	}
	return &order.Order{ID: resp.OrderID, Status: resp.Status}, nil
}

func (c *Client) Stats(ctx context.Context) (order.Stats, error) {
	if err := c.requireToken(); err != nil {
		return order.Stats{}, err
	}
	var st order.Stats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, &st); err != nil {
		return order.Stats{}, err
	}
	return st, nil
}

// -- Admin --

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", body, &resp); err != nil {
		return loginErrors.wrap(err)
	}
	c.setToken(resp.Token)
	return nil
}
