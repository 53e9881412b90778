package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/sse"
)

type EventsHandler struct {
	bus *sse.Bus
}

func NewEventsHandler(bus *sse.Bus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
	}
}

// Stream holds the dashboard connection open and writes events in SSE wire
// format until the client goes away or the bus evicts the subscriber.
func (h *EventsHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	id, events := h.bus.Subscribe()
	defer h.bus.Unsubscribe(id)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, ev.Data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
