package domain

import "time"

// Tipos de referência de um movimento de estoque.
const (
	RefManual        = "MANUAL"
	RefInitial       = "INITIAL"
	RefPurchaseOrder = "PURCHASE_ORDER"
	RefReversal      = "REVERSAL"
)

// StockMovement é a linha de auditoria gravada a cada alteração de QuantityInStock.
type StockMovement struct {
	ID            string    `json:"id" db:"id"`
	ProductID     string    `json:"product_id" db:"product_id"`
	Delta         int       `json:"delta" db:"delta"`
	QuantityAfter int       `json:"quantity_after" db:"quantity_after"`
	Reason        string    `json:"reason" db:"reason"`
	ReferenceType string    `json:"reference_type" db:"reference_type"`
	ReferenceID   string    `json:"reference_id" db:"reference_id"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// MovementRequest é o payload do movimento manual (entrada positiva, saída negativa).
type MovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Delta     int    `json:"delta" validate:"ne=0"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

// Adjustment é o comando interno aplicado pelo repositório de estoque.
type Adjustment struct {
	ProductID     string
	Delta         int
	Reason        string
	ReferenceType string
	ReferenceID   string
}

// MovementResult é o resultado de um movimento aplicado.
type MovementResult struct {
	Product  Product       `json:"product"`
	Movement StockMovement `json:"movement"`
}

type MovementFilter struct {
	ProductID     string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Sort          Sort
	Page          Page
}
