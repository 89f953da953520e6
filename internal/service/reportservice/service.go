package reportservice

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

type ProductReader interface {
	Query(ctx context.Context, filter domain.ProductFilter) iter.Seq2[domain.Product, error]
}

type CategoryReader interface {
	Count(ctx context.Context) (int, error)
	Query(ctx context.Context, filter domain.CategoryFilter) iter.Seq2[domain.Category, error]
}

type OrderReader interface {
	Query(ctx context.Context, filter domain.OrderFilter) iter.Seq2[domain.PurchaseOrder, error]
	Lines(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int, error)
}

// Service monta o resumo de estoque do painel e dos relatórios.
type Service struct {
	products   ProductReader
	categories CategoryReader
	orders     OrderReader
	logger     logger.Logger
	now        func() time.Time
}

func NewService(products ProductReader, categories CategoryReader, orders OrderReader, logger logger.Logger) *Service {
	return &Service{products: products, categories: categories, orders: orders, logger: logger, now: time.Now}
}

// Summary calcula os indicadores sobre os produtos do filtro. Com Since informado,
// apenas produtos presentes em pedidos datados a partir de Since entram no cálculo.
func (s *Service) Summary(ctx context.Context, filter domain.ReportFilter) (domain.StockReport, error) {
	if filter.CategoryID != "" {
		if err := validation.ID(filter.CategoryID, "categoria"); err != nil {
			return domain.StockReport{}, err
		}
	}

	products, err := database.Collect(s.products.Query(ctx, domain.ProductFilter{
		CategoryID: filter.CategoryID,
		Sort:       domain.Sort{Field: "quantity"},
	}))
	if err != nil {
		return domain.StockReport{}, err
	}

	if filter.Since != nil {
		used, err := s.productsOrderedSince(ctx, *filter.Since)
		if err != nil {
			return domain.StockReport{}, err
		}
		kept := products[:0]
		for _, p := range products {
			if used[p.ID] {
				kept = append(kept, p)
			}
		}
		products = kept
	}

	report := domain.StockReport{
		TotalValue:    decimal.Zero,
		LowStockItems: make([]domain.Product, 0),
		GeneratedAt:   s.now().UTC(),
	}
	for _, p := range products {
		report.TotalProducts++
		report.TotalUnits += p.QuantityInStock
		report.TotalValue = report.TotalValue.Add(p.StockValue())
		if p.QuantityInStock > 0 {
			report.InStockCount++
		}
		if p.IsLowStock() {
			report.LowStockCount++
			report.LowStockItems = append(report.LowStockItems, p)
		} else {
			report.OptimalCount++
		}
	}

	if report.CategoryCount, err = s.categories.Count(ctx); err != nil {
		return domain.StockReport{}, err
	}
	if report.ByCategory, err = s.byCategory(ctx, products); err != nil {
		return domain.StockReport{}, err
	}
	if report.PendingOrders, err = s.orders.CountByStatus(ctx, domain.OrderPending); err != nil {
		return domain.StockReport{}, err
	}

	s.logger.Debug("Relatório de estoque gerado.", map[string]interface{}{
		"products":  report.TotalProducts,
		"low_stock": report.LowStockCount,
	})
	return report, nil
}

// byCategory soma unidades e valor por categoria, da maior para a menor quantidade.
// Só aparecem categorias com produtos no recorte do relatório.
func (s *Service) byCategory(ctx context.Context, products []domain.Product) ([]domain.CategoryStock, error) {
	totals := make(map[string]*domain.CategoryStock)
	for _, p := range products {
		entry, ok := totals[p.CategoryID]
		if !ok {
			entry = &domain.CategoryStock{CategoryID: p.CategoryID, Value: decimal.Zero}
			totals[p.CategoryID] = entry
		}
		entry.Units += p.QuantityInStock
		entry.Value = entry.Value.Add(p.StockValue())
	}

	result := make([]domain.CategoryStock, 0, len(totals))
	if len(totals) == 0 {
		return result, nil
	}

	categories, err := database.Collect(s.categories.Query(ctx, domain.CategoryFilter{}))
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if entry, ok := totals[c.ID]; ok {
			entry.Name = c.Name
			result = append(result, *entry)
		}
	}

	slices.SortFunc(result, func(a, b domain.CategoryStock) int {
		if c := cmp.Compare(b.Units, a.Units); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (s *Service) productsOrderedSince(ctx context.Context, since time.Time) (map[string]bool, error) {
	orders, err := database.Collect(s.orders.Query(ctx, domain.OrderFilter{From: &since}))
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	for _, o := range orders {
		lines, err := s.orders.Lines(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			used[l.ProductID] = true
		}
	}
	return used, nil
}
