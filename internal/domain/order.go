package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus é o estado de um pedido de compra. Apenas a fronteira DELIVERED tem efeito no estoque.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// StockEffect devolve o sinal do efeito no estoque ao passar de s para next:
// +1 ao entrar em DELIVERED, -1 ao sair, 0 caso contrário (inclusive mesmo status).
func (s OrderStatus) StockEffect(next OrderStatus) int {
	switch {
	case s != OrderDelivered && next == OrderDelivered:
		return 1
	case s == OrderDelivered && next != OrderDelivered:
		return -1
	}
	return 0
}

// PurchaseOrder é o agregado pedido + linhas.
type PurchaseOrder struct {
	ID         string          `json:"id" db:"id"`
	SupplierID string          `json:"supplier_id" db:"supplier_id"`
	OrderDate  time.Time       `json:"order_date" db:"order_date"`
	Notes      string          `json:"notes" db:"notes"`
	Status     OrderStatus     `json:"status" db:"status"`
	Version    int             `json:"version" db:"version"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
	Lines      []OrderLine     `json:"lines" db:"-"`
	Total      decimal.Decimal `json:"total" db:"-"`
}

// OrderLine é um par produto/quantidade do pedido. UnitPrice vem do produto na leitura.
type OrderLine struct {
	ID        string          `json:"id" db:"id"`
	OrderID   string          `json:"order_id" db:"order_id"`
	ProductID string          `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// ComputeTotal soma quantidade x preço unitário de todas as linhas.
func (o *PurchaseOrder) ComputeTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	o.Total = total
}

// NewPurchaseOrder é o payload de criação. As linhas não podem ser alteradas depois.
type NewPurchaseOrder struct {
	SupplierID string         `json:"supplier_id" validate:"required,uuid"`
	OrderDate  *time.Time     `json:"order_date"`
	Notes      string         `json:"notes" validate:"max=2000"`
	Lines      []NewOrderLine `json:"lines" validate:"required,min=1,dive"`
}

type NewOrderLine struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// PurchaseOrderPatch altera os dados descritivos; o status só muda via SetStatus.
type PurchaseOrderPatch struct {
	SupplierID *string    `json:"supplier_id" validate:"omitempty,uuid"`
	OrderDate  *time.Time `json:"order_date"`
	Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
}

func (pp PurchaseOrderPatch) Apply(o *PurchaseOrder) {
	if pp.SupplierID != nil {
		o.SupplierID = *pp.SupplierID
	}
	if pp.OrderDate != nil {
		o.OrderDate = pp.OrderDate.UTC()
	}
	if pp.Notes != nil {
		o.Notes = *pp.Notes
	}
}

// StatusChange é o payload de SetStatus.
type StatusChange struct {
	Status OrderStatus `json:"status" validate:"required,oneof=PENDING IN_PROGRESS DELIVERED CANCELLED"`
}

type OrderFilter struct {
	Status     OrderStatus
	SupplierID string
	ProductID  string // pedidos que contêm o produto
	From       *time.Time
	To         *time.Time
	Sort       Sort
	Page       Page
}
