package categoryservice

import (
	"context"
	"iter"

	"stockroom/internal/domain"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/events"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

const entityName = "category"

type CategoryRepository interface {
	Save(ctx context.Context, category domain.Category) (domain.Category, error)
	FindByID(ctx context.Context, id string) (domain.Category, error)
	Update(ctx context.Context, category domain.Category) (domain.Category, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filter domain.CategoryFilter) iter.Seq2[domain.Category, error]
}

type Service struct {
	repo   CategoryRepository
	events domain.EventPublisher
	logger logger.Logger
}

func NewService(repo CategoryRepository, events domain.EventPublisher, logger logger.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

func (s *Service) Create(ctx context.Context, req domain.NewCategory) (domain.Category, error) {
	if err := validation.Struct(req); err != nil {
		return domain.Category{}, err
	}
	category, err := s.repo.Save(ctx, domain.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		return domain.Category{}, err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityCreated, entityName, category.ID)
	return category, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Category, error) {
	if err := validation.ID(id, "categoria"); err != nil {
		return domain.Category{}, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	return database.Collect(s.repo.Query(ctx, filter))
}

func (s *Service) Update(ctx context.Context, id string, patch domain.CategoryPatch) (domain.Category, error) {
	if err := validation.ID(id, "categoria"); err != nil {
		return domain.Category{}, err
	}
	if err := validation.Struct(patch); err != nil {
		return domain.Category{}, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	patch.Apply(&current)
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Category{}, err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityUpdated, entityName, id)
	return updated, nil
}

// Delete remove a categoria; o repositório recusa categorias que ainda têm produtos.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validation.ID(id, "categoria"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("Falha ao deletar categoria.", map[string]interface{}{"id": id, "error": err.Error()})
		return err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityDeleted, entityName, id)
	return nil
}
