package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodzz/internal/auth"
	"foodzz/internal/cart"
	"foodzz/internal/food"
	"foodzz/internal/money"
	"foodzz/internal/notify"
	"foodzz/internal/order"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithHTTPClient(srv.Client()))
}

func TestClient_Foods(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/foods", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []food.Item{{ID: 1, Name: "Burger", Price: money.MustParse("9.99")}})
	})
	mux.HandleFunc("GET /api/foods/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
	})
	c := newServer(t, mux)

	items, err := c.Foods(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9.99", items[0].Price.StringFixed(2))

	_, err = c.Food(context.Background(), 5)
	assert.ErrorIs(t, err, food.ErrFoodNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "food not found", apiErr.Message)
}

func TestClient_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	sub := order.Submission{
		Customer: order.Customer{Name: "Ana", Email: "a@b.c", Phone: "1", Address: "x", PaymentMethod: order.PaymentCash},
		Items:    []cart.Line{{ItemID: 1, Price: money.FromInt(10), Quantity: 2}},
	}

	t.Run("Success", func(t *testing.T) {
		var got map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusCreated, map[string]any{
				"success": true, "order_id": 12, "subtotal": 20, "tax": 1.6,
				"delivery_fee": 5, "total": 26.6, "status": "pending",
			})
		})
		c := newServer(t, mux)

		r, err := c.PlaceOrder(ctx, sub)

		require.NoError(t, err)
		assert.Equal(t, 12, r.OrderID)
		assert.Equal(t, "26.60", r.Total.StringFixed(2))
		assert.Equal(t, order.StatusPending, r.Status)
		assert.Equal(t, "Ana", got["customer_name"])
		assert.Equal(t, "x", got["delivery_address"])
	})

	t.Run("Server error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		c := newServer(t, mux)

		_, err := c.PlaceOrder(ctx, sub)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "boom", apiErr.Message)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := New(srv.URL, WithTimeout(time.Second))

		_, err := c.PlaceOrder(ctx, sub)

		assert.ErrorContains(t, err, "failed to send request")
	})
}

func TestClient_Admin(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok"})
	})
	requireBearer := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("GET /api/admin/orders", requireBearer(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ready", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, []order.Order{{ID: 3, Status: order.StatusReady}})
	}))
	mux.HandleFunc("PUT /api/admin/orders/{id}/status", requireBearer(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "9" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid status transition"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "order_id": 3, "status": "delivered"})
	}))
	mux.HandleFunc("GET /api/admin/featured", requireBearer(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]int{"featured": {1, 4}})
	}))
	mux.HandleFunc("DELETE /api/admin/foods/{id}", requireBearer(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
	}))
	c := newServer(t, mux)

	t.Run("Admin call before login", func(t *testing.T) {
		_, err := c.Stats(ctx)
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})

	t.Run("Bad password", func(t *testing.T) {
		err := c.Login(ctx, "admin", "nope")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.Empty(t, c.Token())
	})

	require.NoError(t, c.Login(ctx, "admin", "pw"))
	assert.Equal(t, "tok", c.Token())

	t.Run("Orders with filter", func(t *testing.T) {
		orders, err := c.Orders(ctx, "ready")
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("Status update", func(t *testing.T) {
		o, err := c.UpdateOrderStatus(ctx, 3, order.StatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, o.Status)

		_, err = c.UpdateOrderStatus(ctx, 9, order.StatusDelivered)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("Featured", func(t *testing.T) {
		ids, err := c.Featured(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 4}, ids)
	})

	t.Run("Delete unknown", func(t *testing.T) {
		assert.ErrorIs(t, c.DeleteFood(ctx, 77), food.ErrFoodNotFound)
	})

	t.Run("Expired token", func(t *testing.T) {
		stale := New(c.baseURL, WithHTTPClient(c.http), WithToken("old"))
		_, err := stale.Orders(ctx, "")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestClient_Subscribe(t *testing.T) {
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/ws", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(notify.Event{Type: notify.OrderCreated, OrderID: 5})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL, WithToken("tok"))

	var events []notify.Event
	err := c.Subscribe(context.Background(), func(ev notify.Event) {
		events = append(events, ev)
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].OrderID)
}
