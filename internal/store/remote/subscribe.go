package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"foodzz/internal/auth"
	"foodzz/internal/logger"
	"foodzz/internal/notify"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subscribe reads the admin event stream and calls fn for every event
// until ctx is done or the server closes the socket.
func (c *Client) Subscribe(ctx context.Context, fn func(notify.Event)) error {
	if err := c.requireToken(); err != nil {
		return err
	}

	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/admin/ws"
	header := http.Header{}
	auth.SetBearer(header, c.Token())

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: "websocket handshake failed"}
		}
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	// unblock ReadJSON when the caller gives up
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var ev notify.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				logger.FromCtx(ctx).Warn("skipping malformed event", zap.Error(err))
				continue
			}
			return fmt.Errorf("read event: %w", err)
		}
		fn(ev)
	}
}
