package stockservice

import (
	"context"
	"errors"
	"iter"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
type StockRepository interface {
	Adjust(ctx context.Context, adj domain.Adjustment) (domain.MovementResult, error)
	ListMovements(ctx context.Context, filter domain.MovementFilter) iter.Seq2[domain.StockMovement, error]
}

// ProductReader é usado para a consulta de produtos abaixo do limite de alerta.
type ProductReader interface {
	Query(ctx context.Context, filter domain.ProductFilter) iter.Seq2[domain.Product, error]
}

// Service é o livro de estoque: a única via de alteração de QuantityInStock.
type Service struct {
	repo     StockRepository
	products ProductReader
	events   domain.EventPublisher
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, products ProductReader, events domain.EventPublisher, logger logger.Logger) *Service {
	return &Service{repo: repo, products: products, events: events, logger: logger}
}

// ApplyMovement soma delta ao estoque do produto (positivo = entrada, negativo = saída).
// Falha com InsufficientStockError, sem gravar nada, se o resultado for negativo.
func (s *Service) ApplyMovement(ctx context.Context, productID string, delta int, reason string) (domain.MovementResult, error) {
	return s.Apply(ctx, domain.Adjustment{
		ProductID:     productID,
		Delta:         delta,
		Reason:        reason,
		ReferenceType: domain.RefManual,
	})
}

// ReverseMovement desfaz um movimento anterior de delta unidades.
func (s *Service) ReverseMovement(ctx context.Context, productID string, delta int) (domain.MovementResult, error) {
	return s.Apply(ctx, domain.Adjustment{
		ProductID:     productID,
		Delta:         -delta,
		Reason:        "Estorno de movimento",
		ReferenceType: domain.RefReversal,
	})
}

// Move aplica um movimento manual recebido pela API ou pela CLI.
func (s *Service) Move(ctx context.Context, req domain.MovementRequest) (domain.MovementResult, error) {
	if err := validation.Struct(req); err != nil {
		return domain.MovementResult{}, err
	}
	return s.ApplyMovement(ctx, req.ProductID, req.Delta, req.Reason)
}

// Apply é o ponto comum dos movimentos. Dentro de uma unidade de trabalho a notificação
// só é publicada após o commit.
func (s *Service) Apply(ctx context.Context, adj domain.Adjustment) (domain.MovementResult, error) {
	s.logger.Debug("Iniciando movimento de estoque no serviço.", map[string]interface{}{
		"product_id": adj.ProductID,
		"delta":      adj.Delta,
		"reference":  adj.ReferenceType,
	})

	if adj.Delta == 0 {
		return domain.MovementResult{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}
	if err := validation.ID(adj.ProductID, "produto"); err != nil {
		return domain.MovementResult{}, err
	}

	result, err := s.repo.Adjust(ctx, adj)
	if err != nil {
		if _, ok := apperror.AsInsufficientStock(err); ok {
			s.logger.Warn("Movimento recusado: estoque insuficiente.", map[string]interface{}{
				"product_id": adj.ProductID,
				"delta":      adj.Delta,
			})
			return domain.MovementResult{}, err
		}
		return domain.MovementResult{}, translate(err, "Falha interna ao ajustar estoque.")
	}

	if s.events != nil {
		evt := domain.Event{
			Type:     domain.EventStockChanged,
			Entity:   "product",
			EntityID: result.Product.ID,
			Payload: domain.StockChanged{
				ProductID: result.Product.ID,
				Delta:     adj.Delta,
				Quantity:  result.Product.QuantityInStock,
				LowStock:  result.Product.IsLowStock(),
			},
		}
		database.AfterCommit(ctx, func() { s.events.Publish(evt) })
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":   result.Product.ID,
		"new_quantity": result.Product.QuantityInStock,
		"new_version":  result.Product.Version,
	})
	return result, nil
}

// ListMovements devolve o histórico de auditoria.
func (s *Service) ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.StockMovement, error) {
	if filter.ProductID != "" {
		if err := validation.ID(filter.ProductID, "produto"); err != nil {
			return nil, err
		}
	}
	movements, err := database.Collect(s.repo.ListMovements(ctx, filter))
	if err != nil {
		s.logger.Error("Falha ao listar movimentos de estoque.", err)
		return nil, translate(err, "Falha interna ao listar movimentos.")
	}
	return movements, nil
}

// LowStock devolve os produtos com estoque no limite de alerta ou abaixo dele.
func (s *Service) LowStock(ctx context.Context, page domain.Page) ([]domain.Product, error) {
	products, err := database.Collect(s.products.Query(ctx, domain.ProductFilter{
		LowStockOnly: true,
		Sort:         domain.Sort{Field: "quantity"},
		Page:         page,
	}))
	if err != nil {
		s.logger.Error("Falha ao listar produtos com estoque baixo.", err)
		return nil, translate(err, "Falha interna ao listar estoque baixo.")
	}
	return products, nil
}

// translate mantém os erros tipados da aplicação e converte o resto em InternalError.
func translate(err error, msg string) error {
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewInternalError(msg, err)
}
