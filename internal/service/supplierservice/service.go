package supplierservice

import (
	"context"
	"iter"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/events"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

// SupplierRepository define o contrato que o Serviço de Fornecedores espera da camada de Persistência.
type SupplierRepository interface {
	Save(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error)
	FindByID(ctx context.Context, id string) (domain.Supplier, error)
	Update(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filter domain.SupplierFilter) iter.Seq2[domain.Supplier, error]
}

// Service mantém o cadastro de fornecedores.
type Service struct {
	repo   SupplierRepository
	events domain.EventPublisher
	logger logger.Logger
}

func NewService(repo SupplierRepository, events domain.EventPublisher, logger logger.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

// Create cadastra o fornecedor; sem status informado ele nasce ACTIVE.
func (s *Service) Create(ctx context.Context, req domain.NewSupplier) (domain.Supplier, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Supplier{}, err
	}

	status := req.Status
	if status == "" {
		status = domain.SupplierActive
	}

	supplier, err := s.repo.Save(ctx, domain.Supplier{
		Name:          req.Name,
		Contact:       req.Contact,
		Email:         req.Email,
		Phone:         req.Phone,
		Website:       req.Website,
		CategoryLabel: req.CategoryLabel,
		Status:        status,
	})
	if err != nil {
		return domain.Supplier{}, err
	}
	s.logger.Info("Fornecedor cadastrado.", map[string]interface{}{"id": supplier.ID, "status": supplier.Status})
	events.NotifyEntity(ctx, s.events, domain.EventEntityCreated, "supplier", supplier.ID)
	return supplier, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Supplier, error) {
	if err := validation.ID(id, "fornecedor"); err != nil {
		return domain.Supplier{}, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.SupplierFilter) ([]domain.Supplier, error) {
	return database.Collect(s.repo.Query(ctx, filter))
}

func (s *Service) Update(ctx context.Context, id string, patch domain.SupplierPatch) (domain.Supplier, error) {
	if err := validation.ID(id, "fornecedor"); err != nil {
		return domain.Supplier{}, err
	}
	if err := validation.Struct(patch); err != nil {
		return domain.Supplier{}, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}
	patch.Apply(&current)
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Supplier{}, err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityUpdated, "supplier", id)
	return updated, nil
}

// Delete remove o fornecedor. Fornecedores com pedidos são recusados com ConflictError.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validation.ID(id, "fornecedor"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityDeleted, "supplier", id)
	return nil
}
