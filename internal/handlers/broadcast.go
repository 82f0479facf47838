package handlers

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/tramitesplus/cuadre-api/internal/services"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

// DefaultKeepAlive is the interval of SSE comment frames on idle streams.
const DefaultKeepAlive = 25 * time.Second

// Hub is the event fan-out used by the broadcast endpoints.
type Hub interface {
	Subscribe() *services.Subscription
	Publish(eventType string, data any) int
}

// BroadcastHandler streams change events to clients.
type BroadcastHandler struct {
	hub       Hub
	keepAlive time.Duration
}

func NewBroadcastHandler(hub Hub) *BroadcastHandler {
	return &BroadcastHandler{hub: hub, keepAlive: DefaultKeepAlive}
}

// Stream is a Server-Sent Events endpoint. The subscription is dropped when a
// write fails (client gone) or the hub closes it.
// GET /api/broadcast
func (h *BroadcastHandler) Stream(c fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe()
	keepAlive := h.keepAlive

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		if _, err := w.WriteString("retry: 3000\n: connected\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeEvent(w, msg); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
}

// Publish sends an arbitrary event to every subscriber.
// POST /api/broadcast
func (h *BroadcastHandler) Publish(c fiber.Ctx) error {
	var req services.Event
	if err := bindJSON(c, &req); err != nil {
		return fail(c, err)
	}
	delivered := h.hub.Publish(req.Type, req.Data)
	return utils.SuccessResponse(c, fiber.Map{"delivered": delivered})
}

// writeEvent frames msg as one SSE data event.
func writeEvent(w *bufio.Writer, msg []byte) error {
	if _, err := w.WriteString("data: "); err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	_, err := w.WriteString("\n\n")
	return err
}
