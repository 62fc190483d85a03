package handler

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/kaizenflow/internal/events"
)

// StreamEvents holds the connection open and writes every published event as
// an SSE data record. The subscription is registered before the connected
// record is written, so nothing published afterwards is missed.
func (a *API) StreamEvents(c *gin.Context) {
	if a.bus == nil {
		respondError(c, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	sub := a.bus.Subscribe()
	defer a.bus.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Render(-1, sse.Event{Data: events.Event{
		ID:        sub.ID,
		Type:      events.Connected,
		Timestamp: time.Now().UTC(),
	}})
	c.Writer.Flush()
	log.Printf("[SSE] client %s connected (total: %d)", sub.ID, a.bus.Len())

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{Id: event.ID, Data: event})
			return true
		}
	})
	log.Printf("[SSE] client %s disconnected", sub.ID)
}
