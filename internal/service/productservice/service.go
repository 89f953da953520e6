package productservice

import (
	"context"
	"iter"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

// ProductRepository define o contrato que o Serviço de Produtos espera da camada de Persistência.
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filter domain.ProductFilter) iter.Seq2[domain.Product, error]
}

// CategoryLookup confirma a existência da categoria referenciada.
type CategoryLookup interface {
	FindByID(ctx context.Context, id string) (domain.Category, error)
}

// Ledger é a parte do livro de estoque usada no cadastro (estoque inicial).
type Ledger interface {
	Apply(ctx context.Context, adj domain.Adjustment) (domain.MovementResult, error)
}

// TxRunner executa uma unidade de trabalho.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service contém as regras de catálogo de produtos.
type Service struct {
	repo       ProductRepository
	categories CategoryLookup
	ledger     Ledger
	tx         TxRunner
	events     domain.EventPublisher
	logger     logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produtos.
func NewService(repo ProductRepository, categories CategoryLookup, ledger Ledger, tx TxRunner, events domain.EventPublisher, logger logger.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		ledger:     ledger,
		tx:         tx,
		events:     events,
		logger:     logger,
	}
}

// Create cadastra o produto. InitialQuantity entra no estoque como movimento INITIAL,
// na mesma unidade de trabalho do cadastro.
func (s *Service) Create(ctx context.Context, req domain.NewProduct) (domain.Product, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", map[string]interface{}{"name": req.Name})

	if err := validation.Struct(req); err != nil {
		return domain.Product{}, err
	}

	var created domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireCategory(ctx, req.CategoryID); err != nil {
			return err
		}

		product, err := s.repo.Save(ctx, domain.Product{
			Name:           req.Name,
			Description:    req.Description,
			UnitPrice:      req.UnitPrice,
			AlertThreshold: req.AlertThreshold,
			CategoryID:     req.CategoryID,
		})
		if err != nil {
			return err
		}

		if req.InitialQuantity > 0 {
			result, err := s.ledger.Apply(ctx, domain.Adjustment{
				ProductID:     product.ID,
				Delta:         req.InitialQuantity,
				Reason:        "Estoque inicial",
				ReferenceType: domain.RefInitial,
			})
			if err != nil {
				return err
			}
			product = result.Product
		}

		created = product
		s.publish(ctx, domain.EventEntityCreated, product.ID)
		return nil
	})
	if err != nil {
		s.logger.Warn("Falha ao criar produto.", map[string]interface{}{"name": req.Name, "error": err.Error()})
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": created.ID, "quantity": created.QuantityInStock})
	return created, nil
}

// Get busca um produto pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	if err := validation.ID(id, "produto"); err != nil {
		return domain.Product{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// Query devolve a sequência preguiçosa de produtos; a CLI a consome em streaming.
func (s *Service) Query(ctx context.Context, filter domain.ProductFilter) iter.Seq2[domain.Product, error] {
	return s.repo.Query(ctx, filter)
}

// List materializa a consulta de produtos.
func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.CategoryID != "" {
		if err := validation.ID(filter.CategoryID, "categoria"); err != nil {
			return nil, err
		}
	}
	products, err := database.Collect(s.repo.Query(ctx, filter))
	if err != nil {
		s.logger.Error("Falha ao listar produtos.", err)
		return nil, err
	}
	return products, nil
}

// Update altera os campos descritivos. A quantidade só muda pelo livro de estoque.
func (s *Service) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if err := validation.ID(id, "produto"); err != nil {
		return domain.Product{}, err
	}
	if err := validation.Struct(patch); err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.CategoryID != nil && *patch.CategoryID != current.CategoryID {
			if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
				return err
			}
		}

		patch.Apply(&current)
		updated, err = s.repo.Update(ctx, current)
		if err != nil {
			return err
		}
		s.publish(ctx, domain.EventEntityUpdated, id)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

// Delete remove o produto e o seu histórico de movimentos.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validation.ID(id, "produto"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, domain.EventEntityDeleted, id)
	s.logger.Info("Produto deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func (s *Service) requireCategory(ctx context.Context, categoryID string) error {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidationError("category_id não corresponde a uma categoria existente")
		}
		return err
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType, id string) {
	if s.events == nil {
		return
	}
	evt := domain.Event{Type: eventType, Entity: "product", EntityID: id}
	database.AfterCommit(ctx, func() { s.events.Publish(evt) })
}
