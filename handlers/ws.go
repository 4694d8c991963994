package handlers

import (
	"context"
	"log"
	"time"

	"despacho_app_go/store"

	"github.com/labstack/echo/v4"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// Changes streams store change notifications to the client over a
// websocket. Events are buffered per connection; a client that cannot
// keep up is disconnected rather than allowed to block other listeners.
func (h *Handlers) Changes(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	ctx := c.Request().Context()
	events := make(chan store.Event, 32)
	unsubscribe := h.Store.Subscribe(func(ev store.Event) {
		select {
		case events <- ev:
		default:
			// drop rather than block the bus
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return nil
		case ev := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				log.Printf("[WARNING] Websocket write failed, dropping client: %v", err)
				return nil
			}
		}
	}
}
