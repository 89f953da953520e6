package domain

import "time"

// Tipos de notificação publicados após o commit de uma unidade de trabalho.
const (
	EventStockChanged       = "product.stock_changed"
	EventOrderStatusChanged = "order.status_changed"
	EventEntityCreated      = "entity.created"
	EventEntityUpdated      = "entity.updated"
	EventEntityDeleted      = "entity.deleted"
)

// Event é uma notificação de mudança no armazenamento.
type Event struct {
	Type       string      `json:"type"`
	Entity     string      `json:"entity"`
	EntityID   string      `json:"entity_id"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// StockChanged é o payload de EventStockChanged.
type StockChanged struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Quantity  int    `json:"quantity"`
	LowStock  bool   `json:"low_stock"`
}

// OrderStatusChanged é o payload de EventOrderStatusChanged.
type OrderStatusChanged struct {
	OrderID string      `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

// EventPublisher é o contrato usado pelos serviços para emitir notificações.
type EventPublisher interface {
	Publish(evt Event)
}
