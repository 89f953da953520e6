package events

import (
	"sync"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// Hub distribui notificações de mudança do armazenamento aos assinantes (SSE, CLI).
// A publicação nunca bloqueia: um assinante com o buffer cheio perde a notificação.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan domain.Event
	nextID      int
	bufferSize  int
	logger      logger.Logger
}

func NewHub(bufferSize int, logger logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Hub{
		subscribers: make(map[int]chan domain.Event),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Subscribe registra um assinante. A função devolvida cancela a assinatura e fecha o canal.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan domain.Event, h.bufferSize)
	h.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish entrega evt a todos os assinantes.
func (h *Hub) Publish(evt domain.Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
			h.logger.Warn("Assinante lento, notificação descartada.", map[string]interface{}{
				"subscriber": id,
				"type":       evt.Type,
				"entity_id":  evt.EntityID,
			})
		}
	}
}

// Subscribers devolve a quantidade de assinantes ativos.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
