package orderservice

import (
	"context"
	"fmt"
	"iter"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

// OrderRepository define o contrato que o Serviço de Pedidos espera da camada de Persistência.
type OrderRepository interface {
	Create(ctx context.Context, order domain.PurchaseOrder) (domain.PurchaseOrder, error)
	FindByID(ctx context.Context, id string) (domain.PurchaseOrder, error)
	Lock(ctx context.Context, id string) (domain.PurchaseOrder, error)
	Lines(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	Query(ctx context.Context, filter domain.OrderFilter) iter.Seq2[domain.PurchaseOrder, error]
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, version int) error
	Update(ctx context.Context, order domain.PurchaseOrder) (domain.PurchaseOrder, error)
	Delete(ctx context.Context, id string) error
}

// SupplierLookup confirma a existência do fornecedor do pedido.
type SupplierLookup interface {
	FindByID(ctx context.Context, id string) (domain.Supplier, error)
}

// Ledger é o livro de estoque acionado na fronteira DELIVERED.
type Ledger interface {
	Apply(ctx context.Context, adj domain.Adjustment) (domain.MovementResult, error)
}

// TxRunner executa uma unidade de trabalho.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service controla o ciclo de vida dos pedidos de compra.
type Service struct {
	repo      OrderRepository
	suppliers SupplierLookup
	ledger    Ledger
	tx        TxRunner
	events    domain.EventPublisher
	logger    logger.Logger
}

func NewService(repo OrderRepository, suppliers SupplierLookup, ledger Ledger, tx TxRunner, events domain.EventPublisher, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		ledger:    ledger,
		tx:        tx,
		events:    events,
		logger:    logger,
	}
}

// Create registra um pedido PENDING com as linhas informadas. Não há efeito no estoque.
func (s *Service) Create(ctx context.Context, req domain.NewPurchaseOrder) (domain.PurchaseOrder, error) {
	if err := validation.Struct(req); err != nil {
		return domain.PurchaseOrder{}, err
	}

	order := domain.PurchaseOrder{
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
		Status:     domain.OrderPending,
		Lines:      make([]domain.OrderLine, 0, len(req.Lines)),
	}
	if req.OrderDate != nil {
		order.OrderDate = req.OrderDate.UTC()
	}
	for _, l := range req.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	var created domain.PurchaseOrder
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireSupplier(ctx, order.SupplierID); err != nil {
			return err
		}
		saved, err := s.repo.Create(ctx, order)
		if err != nil {
			return err
		}
		created, err = s.repo.FindByID(ctx, saved.ID)
		if err != nil {
			return err
		}
		s.publish(ctx, domain.Event{Type: domain.EventEntityCreated, Entity: "purchase_order", EntityID: created.ID})
		return nil
	})
	if err != nil {
		s.logger.Warn("Falha ao criar pedido.", map[string]interface{}{"supplier_id": req.SupplierID, "error": err.Error()})
		return domain.PurchaseOrder{}, err
	}

	s.logger.Info("Pedido criado com sucesso.", map[string]interface{}{"id": created.ID, "lines": len(created.Lines)})
	return created, nil
}

// Get devolve o pedido com linhas e total.
func (s *Service) Get(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	if err := validation.ID(id, "pedido"); err != nil {
		return domain.PurchaseOrder{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// List devolve os pedidos do filtro, cada um com linhas e total.
func (s *Service) List(ctx context.Context, filter domain.OrderFilter) ([]domain.PurchaseOrder, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Status de pedido desconhecido: %s.", filter.Status))
	}

	orders, err := database.Collect(s.repo.Query(ctx, filter))
	if err != nil {
		s.logger.Error("Falha ao listar pedidos.", err)
		return nil, err
	}
	for i := range orders {
		lines, err := s.repo.Lines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
		orders[i].ComputeTotal()
	}
	return orders, nil
}

// Update altera fornecedor, data e observações. As linhas e o status não mudam por aqui.
func (s *Service) Update(ctx context.Context, id string, patch domain.PurchaseOrderPatch) (domain.PurchaseOrder, error) {
	if err := validation.ID(id, "pedido"); err != nil {
		return domain.PurchaseOrder{}, err
	}
	if err := validation.Struct(patch); err != nil {
		return domain.PurchaseOrder{}, err
	}

	var updated domain.PurchaseOrder
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.Lock(ctx, id)
		if err != nil {
			return err
		}
		if patch.SupplierID != nil && *patch.SupplierID != current.SupplierID {
			if err := s.requireSupplier(ctx, *patch.SupplierID); err != nil {
				return err
			}
		}

		patch.Apply(&current)
		updated, err = s.repo.Update(ctx, current)
		if err != nil {
			return err
		}
		s.publish(ctx, domain.Event{Type: domain.EventEntityUpdated, Entity: "purchase_order", EntityID: id})
		return nil
	})
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	return updated, nil
}

// SetStatus muda o status do pedido. Ao entrar em DELIVERED cada linha soma sua quantidade
// ao estoque; ao sair de DELIVERED cada linha é estornada. Tudo ou nada: se alguma linha
// não puder ser estornada, devolve StockConflictError e nem o status nem o estoque mudam.
// Repetir o status atual não tem efeito.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.PurchaseOrder, error) {
	if err := validation.ID(id, "pedido"); err != nil {
		return domain.PurchaseOrder{}, err
	}
	if !status.Valid() {
		return domain.PurchaseOrder{}, apperror.NewValidationError(fmt.Sprintf("Status de pedido desconhecido: %s.", status))
	}

	var result domain.PurchaseOrder
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.Lock(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == status {
			result = order
			return nil
		}

		if effect := order.Status.StockEffect(status); effect != 0 {
			if err := s.applyLines(ctx, order, effect); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(ctx, id, status, order.Version); err != nil {
			return err
		}

		previous := order.Status
		order.Status = status
		order.Version++
		result = order

		s.publish(ctx, domain.Event{
			Type:     domain.EventOrderStatusChanged,
			Entity:   "purchase_order",
			EntityID: id,
			Payload:  domain.OrderStatusChanged{OrderID: id, From: previous, To: status},
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("Mudança de status recusada.", map[string]interface{}{"id": id, "status": status, "error": err.Error()})
		return domain.PurchaseOrder{}, err
	}

	s.logger.Info("Status do pedido atualizado.", map[string]interface{}{"id": id, "status": result.Status})
	return result, nil
}

// Delete remove o pedido e suas linhas. Um pedido DELIVERED tem o estoque estornado antes.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validation.ID(id, "pedido"); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.Lock(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderDelivered {
			if err := s.applyLines(ctx, order, -1); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		s.publish(ctx, domain.Event{Type: domain.EventEntityDeleted, Entity: "purchase_order", EntityID: id})
		return nil
	})
	if err != nil {
		s.logger.Warn("Falha ao deletar pedido.", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}
	return nil
}

// applyLines lança no livro de estoque sign*quantidade de cada linha. Todas as linhas são
// tentadas para que o erro liste todos os produtos em conflito; a unidade de trabalho
// é desfeita pelo chamador.
func (s *Service) applyLines(ctx context.Context, order domain.PurchaseOrder, sign int) error {
	reason := "Recebimento do pedido"
	if sign < 0 {
		reason = "Estorno do recebimento do pedido"
	}

	var conflicts []*apperror.InsufficientStockError
	for _, line := range order.Lines {
		_, err := s.ledger.Apply(ctx, domain.Adjustment{
			ProductID:     line.ProductID,
			Delta:         sign * line.Quantity,
			Reason:        reason,
			ReferenceType: domain.RefPurchaseOrder,
			ReferenceID:   order.ID,
		})
		if err == nil {
			continue
		}
		if insufficient, ok := apperror.AsInsufficientStock(err); ok {
			conflicts = append(conflicts, insufficient)
			continue
		}
		return err
	}

	if len(conflicts) > 0 {
		return apperror.NewStockConflictError(order.ID, conflicts)
	}
	return nil
}

func (s *Service) requireSupplier(ctx context.Context, supplierID string) error {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidationError("supplier_id não corresponde a um fornecedor existente")
		}
		return err
	}
	return nil
}

func (s *Service) publish(ctx context.Context, evt domain.Event) {
	if s.events == nil {
		return
	}
	database.AfterCommit(ctx, func() { s.events.Publish(evt) })
}
