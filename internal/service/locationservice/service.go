package locationservice

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/events"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/validation"
)

// LocationRepository define o contrato que o Serviço de Locais espera da camada de Persistência.
type LocationRepository interface {
	Save(ctx context.Context, location domain.Location) (domain.Location, error)
	FindByID(ctx context.Context, id string) (domain.Location, error)
	Update(ctx context.Context, location domain.Location) (domain.Location, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filter domain.LocationFilter) iter.Seq2[domain.Location, error]
}

// Service mantém os locais de armazenagem.
type Service struct {
	repo   LocationRepository
	events domain.EventPublisher
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Locais.
func NewService(repo LocationRepository, events domain.EventPublisher, logger logger.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

// Create cria um novo local após validações de negócio. Zona, tipo e capacidade
// ausentes recebem os valores padrão.
func (s *Service) Create(ctx context.Context, req domain.NewLocation) (domain.Location, error) {
	s.logger.Debug("Iniciando criação de local no serviço.", map[string]interface{}{"name": req.Name})

	if err := validation.Struct(req); err != nil {
		return domain.Location{}, err
	}
	if err := s.validateLocationName(req.Name); err != nil {
		s.logger.Warn("Falha na validação do nome do local.", map[string]interface{}{"name": req.Name, "error": err.Error()})
		return domain.Location{}, err
	}

	location := domain.Location{
		Name:      strings.TrimSpace(req.Name),
		Zone:      req.Zone,
		Type:      req.Type,
		Capacity:  domain.DefaultLocationCapacity,
		Occupancy: req.Occupancy,
	}
	if location.Zone == "" {
		location.Zone = domain.DefaultLocationZone
	}
	if location.Type == "" {
		location.Type = domain.DefaultLocationType
	}
	if req.Capacity != nil {
		location.Capacity = *req.Capacity
	}
	if err := checkOccupancy(location); err != nil {
		return domain.Location{}, err
	}

	created, err := s.repo.Save(ctx, location)
	if err != nil {
		s.logger.Error("Falha ao criar local no repositório.", err)
		return domain.Location{}, err
	}

	s.logger.Info("Local criado com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	events.NotifyEntity(ctx, s.events, domain.EventEntityCreated, "location", created.ID)
	return created, nil
}

// Get busca um local pelo ID após validações de formato.
func (s *Service) Get(ctx context.Context, id string) (domain.Location, error) {
	if err := validation.ID(id, "local"); err != nil {
		s.logger.Warn("ID de local inválido fornecido.", map[string]interface{}{"id": id})
		return domain.Location{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// List busca os locais que atendem ao filtro.
func (s *Service) List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error) {
	locations, err := database.Collect(s.repo.Query(ctx, filter))
	if err != nil {
		s.logger.Error("Falha ao buscar locais no repositório.", err)
		return nil, err
	}
	s.logger.Debug("Locais encontrados.", map[string]interface{}{"count": len(locations)})
	return locations, nil
}

// Update atualiza um local existente.
func (s *Service) Update(ctx context.Context, id string, patch domain.LocationPatch) (domain.Location, error) {
	if err := validation.ID(id, "local"); err != nil {
		return domain.Location{}, err
	}
	if err := validation.Struct(patch); err != nil {
		return domain.Location{}, err
	}
	if patch.Name != nil {
		if err := s.validateLocationName(*patch.Name); err != nil {
			return domain.Location{}, err
		}
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Location{}, err
	}
	patch.Apply(&current)
	if err := checkOccupancy(current); err != nil {
		return domain.Location{}, err
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		s.logger.Error("Falha ao atualizar local no repositório.", err)
		return domain.Location{}, err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityUpdated, "location", id)
	return updated, nil
}

// Delete remove um local.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validation.ID(id, "local"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	events.NotifyEntity(ctx, s.events, domain.EventEntityDeleted, "location", id)
	return nil
}

// validateLocationName é uma função auxiliar para validar o nome do local.
func (s *Service) validateLocationName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.NewValidationError("O nome do local não pode ser vazio.")
	}
	return nil
}

func checkOccupancy(l domain.Location) error {
	if l.Occupancy > l.Capacity {
		return apperror.NewValidationError(fmt.Sprintf("A ocupação (%d) não pode exceder a capacidade (%d).", l.Occupancy, l.Capacity))
	}
	return nil
}
