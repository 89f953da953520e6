package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

// Subscriber é a fonte de notificações (events.Hub).
type Subscriber interface {
	Subscribe() (<-chan domain.Event, func())
}

type Handler struct {
	Hub       Subscriber
	Logger    logger.Logger
	KeepAlive time.Duration
}

func NewHandler(hub Subscriber, log logger.Logger) *Handler {
	return &Handler{Hub: hub, Logger: log, KeepAlive: 25 * time.Second}
}

// StreamHandler lida com GET /v1/events: transmite as notificações como Server-Sent Events.
// @Summary Fluxo de notificações de mudança
// @Tags events
// @Produce text/event-stream
// @Success 200
// @Security ApiKeyAuth
// @Router /events [get]
func (h *Handler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// O WriteTimeout do servidor não se aplica a um fluxo longo.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		response.Handle(h.Logger, w, r, nil, apperror.NewInternalError("Fluxo de eventos indisponível.", err), http.StatusOK)
		return
	}

	events, cancel := h.Hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.Logger.Warn("Cliente SSE sem suporte a flush.", map[string]interface{}{"error": err.Error()})
		return
	}

	h.Logger.Debug("Assinante SSE conectado.", map[string]interface{}{"remote": r.RemoteAddr})

	ticker := time.NewTicker(h.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.Logger.Debug("Assinante SSE desconectado.", map[string]interface{}{"remote": r.RemoteAddr})
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case evt, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				h.Logger.Error("Falha ao serializar evento.", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
