package category

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

type CategoryService interface {
	Create(ctx context.Context, req domain.NewCategory) (domain.Category, error)
	Get(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
	Update(ctx context.Context, id string, patch domain.CategoryPatch) (domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Service CategoryService
	Logger  logger.Logger
}

func NewHandler(svc CategoryService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateCategoryHandler lida com POST /v1/categories.
// @Summary Cria uma categoria
// @Tags categories
// @Accept json
// @Produce json
// @Param category body domain.NewCategory true "Dados da categoria"
// @Success 201 {object} domain.Category
// @Security ApiKeyAuth
// @Router /categories [post]
func (h *Handler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.NewCategory
	if err := response.Decode(r, &req); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	category, err := h.Service.Create(r.Context(), req)
	response.Handle(h.Logger, w, r, category, err, http.StatusCreated)
}

func (h *Handler) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := h.Service.Get(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, category, err, http.StatusOK)
}

func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	page, err := response.Page(r)
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	categories, err := h.Service.List(r.Context(), domain.CategoryFilter{
		Name: r.URL.Query().Get("name"),
		Sort: response.Sort(r),
		Page: page,
	})
	response.Handle(h.Logger, w, r, categories, err, http.StatusOK)
}

func (h *Handler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.CategoryPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	category, err := h.Service.Update(r.Context(), response.ID(r), patch)
	response.Handle(h.Logger, w, r, category, err, http.StatusOK)
}

// DeleteCategoryHandler lida com DELETE /v1/categories/{id}. Categorias com produtos devolvem 409.
func (h *Handler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}
