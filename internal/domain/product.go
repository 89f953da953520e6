package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa um item do catálogo. QuantityInStock só é alterado pelo livro de estoque.
type Product struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	QuantityInStock int             `json:"quantity_in_stock" db:"quantity_in_stock"`
	AlertThreshold  int             `json:"alert_threshold" db:"alert_threshold"`
	CategoryID      string          `json:"category_id" db:"category_id"`
	Version         int             `json:"version" db:"version"` // Controle de Concorrência Otimista (OCC)
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLowStock indica que o estoque atingiu ou passou o limite de alerta.
func (p Product) IsLowStock() bool {
	return p.QuantityInStock <= p.AlertThreshold
}

// StockValue é o valor do estoque atual (preço unitário x quantidade).
func (p Product) StockValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.QuantityInStock)))
}

// MarshalJSON inclui o campo derivado is_low_stock.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		IsLowStock bool `json:"is_low_stock"`
	}{alias: alias(p), IsLowStock: p.IsLowStock()})
}

// NewProduct é o payload de criação de um produto.
// InitialQuantity é lançado no livro de estoque como movimento inicial.
type NewProduct struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	UnitPrice       decimal.Decimal `json:"unit_price" validate:"gte=0"`
	InitialQuantity int             `json:"initial_quantity" validate:"gte=0"`
	AlertThreshold  int             `json:"alert_threshold" validate:"gte=0"`
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
}

// ProductPatch contém apenas os campos editáveis; nil significa "não alterar".
type ProductPatch struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description" validate:"omitempty,max=2000"`
	UnitPrice      *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	AlertThreshold *int             `json:"alert_threshold" validate:"omitempty,gte=0"`
	CategoryID     *string          `json:"category_id" validate:"omitempty,uuid"`
}

// Apply copia os campos presentes no patch para o produto.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.UnitPrice != nil {
		p.UnitPrice = *pp.UnitPrice
	}
	if pp.AlertThreshold != nil {
		p.AlertThreshold = *pp.AlertThreshold
	}
	if pp.CategoryID != nil {
		p.CategoryID = *pp.CategoryID
	}
}

// ProductFilter define os parâmetros de busca de produtos.
type ProductFilter struct {
	Name         string     // substring, sem diferenciar maiúsculas
	CategoryID   string
	LowStockOnly bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Sort         Sort
	Page         Page
}
