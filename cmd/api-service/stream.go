package main

import (
	"io"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/tableserve/api/internal/core"
	"github.com/tableserve/api/internal/hub"
)

// stream pumps room events to the client until it disconnects. Events
// published before the subscription are not replayed; clients sync from the
// state endpoint first, then listen.
func stream(c *gin.Context, h *hub.Hub, room hub.Room, initial ...hub.Event) {
	ch, cancel := h.Subscribe(room)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for _, ev := range initial {
		_ = sse.Encode(c.Writer, ev.SSE())
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			_ = sse.Encode(w, ev.SSE())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// sessionEventsHandler streams the table room. The first frame is a full
// state snapshot, so a reconnecting device needs no separate sync call.
func sessionEventsHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := guestSession(c, svc)
		if !ok {
			return
		}
		// an SSE (re)connect counts as guest activity
		if err := svc.Ping(c.Request.Context(), sess, nil); err != nil {
			fail(c, svc, err)
			return
		}
		state, err := svc.State(c.Request.Context(), sess)
		if err != nil {
			fail(c, svc, err)
			return
		}
		stream(c, svc.Hub, hub.SessionRoom(sess.ID), hub.SessionState(state))
	}
}

func kitchenEventsHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := staffClaims(c)
		stream(c, svc.Hub, hub.KitchenRoom(claims.VenueID))
	}
}

func waitersEventsHandler(svc *core.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := staffClaims(c)
		stream(c, svc.Hub, hub.WaitersRoom(claims.VenueID))
	}
}
