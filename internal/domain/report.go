package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter restringe o relatório a uma categoria e/ou aos produtos
// usados em pedidos com data a partir de Since.
type ReportFilter struct {
	CategoryID string
	Since      *time.Time
}

// StockReport é o resumo do painel e da tela de relatórios.
type StockReport struct {
	TotalProducts int             `json:"total_products"`
	TotalUnits    int             `json:"total_units"`
	InStockCount  int             `json:"in_stock_count"`
	LowStockCount int             `json:"low_stock_count"`
	OptimalCount  int             `json:"optimal_count"`
	CategoryCount int             `json:"category_count"`
	PendingOrders int             `json:"pending_orders"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockItems []Product       `json:"low_stock_items"`
	ByCategory    []CategoryStock `json:"by_category"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// CategoryStock é a distribuição do estoque por categoria (gráfico do painel).
type CategoryStock struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Units      int             `json:"units"`
	Value      decimal.Decimal `json:"value"`
}
