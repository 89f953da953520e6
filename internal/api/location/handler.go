package location

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// LocationService define o contrato que o Handler espera da camada de Serviço.
type LocationService interface {
	Create(ctx context.Context, req domain.NewLocation) (domain.Location, error)
	Get(ctx context.Context, id string) (domain.Location, error)
	List(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error)
	Update(ctx context.Context, id string, patch domain.LocationPatch) (domain.Location, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler de locais de armazenagem.
type Handler struct {
	Service LocationService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc LocationService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateLocationHandler lida com a requisição POST /v1/locations.
// @Summary Cria um novo local
// @Description Zona, tipo e capacidade omitidos assumem Nord, Étagère e 100.
// @Tags locations
// @Accept json
// @Produce json
// @Param location body domain.NewLocation true "Dados do local para criação"
// @Success 201 {object} domain.Location "Local criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /locations [post]
func (h *Handler) CreateLocationHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.NewLocation
	if err := response.Decode(r, &req); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	created, err := h.Service.Create(r.Context(), req)
	response.Handle(h.Logger, w, r, created, err, http.StatusCreated)
}

// GetLocationByIDHandler lida com a requisição GET /v1/locations/{id}.
// @Summary Obtém um local por ID
// @Tags locations
// @Produce json
// @Param id path string true "ID do Local"
// @Success 200 {object} domain.Location "Local encontrado"
// @Failure 404 {object} domain.ErrorResponse "Local não encontrado"
// @Security ApiKeyAuth
// @Router /locations/{id} [get]
func (h *Handler) GetLocationByIDHandler(w http.ResponseWriter, r *http.Request) {
	location, err := h.Service.Get(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, location, err, http.StatusOK)
}

// ListLocationsHandler lida com a requisição GET /v1/locations?name=&zone=.
// @Summary Lista os locais
// @Tags locations
// @Produce json
// @Success 200 {array} domain.Location "Lista de locais"
// @Security ApiKeyAuth
// @Router /locations [get]
func (h *Handler) ListLocationsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.LocationFilter{
		Name: q.Get("name"),
		Zone: q.Get("zone"),
		Sort: response.Sort(r),
	}

	var err error
	if filter.CreatedFrom, err = response.Time(r, "created_from"); err == nil {
		if filter.CreatedTo, err = response.Time(r, "created_to"); err == nil {
			filter.Page, err = response.Page(r)
		}
	}
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	locations, err := h.Service.List(r.Context(), filter)
	response.Handle(h.Logger, w, r, locations, err, http.StatusOK)
}

// UpdateLocationHandler lida com a requisição PATCH /v1/locations/{id}.
// @Summary Atualiza um local
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "ID do Local"
// @Param patch body domain.LocationPatch true "Campos alterados"
// @Success 200 {object} domain.Location "Local atualizado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Ocupação acima da capacidade"
// @Failure 404 {object} domain.ErrorResponse "Local não encontrado"
// @Security ApiKeyAuth
// @Router /locations/{id} [patch]
func (h *Handler) UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.LocationPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	updated, err := h.Service.Update(r.Context(), response.ID(r), patch)
	response.Handle(h.Logger, w, r, updated, err, http.StatusOK)
}

// DeleteLocationHandler lida com a requisição DELETE /v1/locations/{id}.
// @Summary Remove um local
// @Tags locations
// @Param id path string true "ID do Local"
// @Success 204 "Nenhum conteúdo"
// @Failure 404 {object} domain.ErrorResponse "Local não encontrado"
// @Security ApiKeyAuth
// @Router /locations/{id} [delete]
func (h *Handler) DeleteLocationHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}
