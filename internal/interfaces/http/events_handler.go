package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/ledger"
)

// EventSource fuente de eventos de commit (el servicio del ledger).
type EventSource interface {
	Subscribe(buffer int) *ledger.Subscription
}

// EventsHandler transmite los movimientos registrados por Server-Sent Events.
type EventsHandler struct {
	source    EventSource
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewEventsHandler construye el handler. heartbeat <= 0 usa 15s.
func NewEventsHandler(source EventSource, heartbeat time.Duration, log zerolog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &EventsHandler{source: source, heartbeat: heartbeat, log: log}
}

// Stream godoc
// @Summary      Stream de movimientos
// @Description  Server-Sent Events: un evento "movement" por cada movimiento registrado, con la variante resultante.
// @Tags         inventory
// @Produce      text/event-stream
// @Success      200  {object}  dto.MovementEventDTO
// @Router       /api/inventory/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	sub := h.source.Subscribe(64)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				payload, err := json.Marshal(dto.FromEvent(ev))
				if err != nil {
					h.log.Error().Err(err).Msg("serializar evento")
					continue
				}
				fmt.Fprintf(w, "id: %d\nevent: movement\ndata: %s\n\n", ev.Movement.ID, payload)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			// Flush falla cuando el cliente se desconecta.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
