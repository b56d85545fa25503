package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/service"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

const defaultHeartbeat = 15 * time.Second

// EventsHTTP streams order change events as server-sent events. Users see
// their own orders, admins see everything.
type EventsHTTP struct {
	Source    EventSource
	Heartbeat time.Duration
}

func visible(ev broadcast.Event, actor service.Actor) bool {
	if actor.Admin {
		return true
	}
	return ev.UserID != nil && *ev.UserID == actor.UserID
}

func (h *EventsHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.events")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	sub := h.Source.Subscribe()
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	beat := h.Heartbeat
	if beat <= 0 {
		beat = defaultHeartbeat
	}
	ticker := time.NewTicker(beat)
	defer ticker.Stop()

	l.Debug("events_subscribed")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			if !visible(ev, actor) {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				l.Warn("events_encode_error", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			w.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
