package supplier

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// SupplierService define o contrato que o Handler espera da camada de Serviço.
type SupplierService interface {
	Create(ctx context.Context, req domain.NewSupplier) (domain.Supplier, error)
	Get(ctx context.Context, id string) (domain.Supplier, error)
	List(ctx context.Context, filter domain.SupplierFilter) ([]domain.Supplier, error)
	Update(ctx context.Context, id string, patch domain.SupplierPatch) (domain.Supplier, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os handlers de fornecedores.
type Handler struct {
	Service SupplierService
	Logger  logger.Logger
}

func NewHandler(svc SupplierService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateSupplierHandler lida com POST /v1/suppliers.
// @Summary Cadastra um fornecedor
// @Description Sem status informado o fornecedor nasce ACTIVE.
// @Tags suppliers
// @Accept json
// @Produce json
// @Param supplier body domain.NewSupplier true "Dados do fornecedor"
// @Success 201 {object} domain.Supplier
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /suppliers [post]
func (h *Handler) CreateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.NewSupplier
	if err := response.Decode(r, &req); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	supplier, err := h.Service.Create(r.Context(), req)
	response.Handle(h.Logger, w, r, supplier, err, http.StatusCreated)
}

func (h *Handler) GetSupplierHandler(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.Service.Get(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, supplier, err, http.StatusOK)
}

// ListSuppliersHandler lida com GET /v1/suppliers?name=&status=&created_from=&created_to=.
func (h *Handler) ListSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.SupplierFilter{
		Name:   q.Get("name"),
		Status: domain.SupplierStatus(q.Get("status")),
		Sort:   response.Sort(r),
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

	suppliers, err := h.Service.List(r.Context(), filter)
	response.Handle(h.Logger, w, r, suppliers, err, http.StatusOK)
}

func (h *Handler) UpdateSupplierHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.SupplierPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	supplier, err := h.Service.Update(r.Context(), response.ID(r), patch)
	response.Handle(h.Logger, w, r, supplier, err, http.StatusOK)
}

func (h *Handler) DeleteSupplierHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}
