package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev Event) error {
	return m.Called(ctx, ev).Error(0)
}

func TestMulti_Publish(t *testing.T) {
	ctx := context.Background()
	ev := Event{Type: OrderCreated, OrderID: 1}

	t.Run("Delivers to all and joins errors", func(t *testing.T) {
		ok := new(MockPublisher)
		bad := new(MockPublisher)
		ok.On("Publish", ctx, ev).Return(nil)
		bad.On("Publish", ctx, ev).Return(errors.New("broker down"))

		err := Multi{bad, nil, ok}.Publish(ctx, ev)

		assert.ErrorContains(t, err, "broker down")
		ok.AssertExpectations(t)
		bad.AssertExpectations(t)
	})

	t.Run("No publishers", func(t *testing.T) {
		assert.NoError(t, Multi{}.Publish(ctx, ev))
		assert.NoError(t, Nop{}.Publish(ctx, ev))
	})
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	sent := Event{Type: OrderStatusChanged, OrderID: 7, Status: "ready", Previous: "preparing", At: time.Now().UTC()}
	require.NoError(t, hub.Publish(context.Background(), sent))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, OrderStatusChanged, got.Type)
	assert.Equal(t, 7, got.OrderID)
	assert.Equal(t, "ready", got.Status)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	allowed := func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || o == "https://shop.test"
	}
	hub := NewHub(allowed)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Clients())

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://shop.test"}})
	require.NoError(t, err)
	conn.Close()
}

type fakeChannel struct {
	declared  string
	key       string
	msg       amqp.Publishing
	publishFn func() error
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = name + ":" + kind
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.key = key
	f.msg = msg
	if f.publishFn != nil {
		return f.publishFn()
	}
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("Routes by event type", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := newAMQPPublisher(ch, DefaultExchange)
		require.NoError(t, err)

		err = p.Publish(ctx, Event{Type: OrderCreated, OrderID: 3})

		require.NoError(t, err)
		assert.Equal(t, "foodzz.orders:topic", ch.declared)
		assert.Equal(t, "order.created", ch.key)
		assert.Equal(t, "application/json", ch.msg.ContentType)
		assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
		assert.Contains(t, string(ch.msg.Body), `"order_id":3`)
	})

	t.Run("Publish error", func(t *testing.T) {
		ch := &fakeChannel{publishFn: func() error { return errors.New("channel closed") }}
		p, err := newAMQPPublisher(ch, "x")
		require.NoError(t, err)

		err = p.Publish(ctx, Event{Type: FoodChanged, FoodID: 2})

		assert.ErrorContains(t, err, "food.changed")
	})

	t.Run("Close", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := newAMQPPublisher(ch, "x")
		require.NoError(t, err)

		p.Close()
		assert.True(t, ch.closed)
	})
}
