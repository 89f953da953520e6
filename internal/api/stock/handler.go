package stock

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	Move(ctx context.Context, req domain.MovementRequest) (domain.MovementResult, error)
	ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.StockMovement, error)
	LowStock(ctx context.Context, page domain.Page) ([]domain.Product, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// MoveStockHandler lida com a requisição POST /v1/stock/movements.
// @Summary Registra uma entrada ou saída de estoque
// @Description delta positivo é entrada, negativo é saída. Saldo negativo é recusado com 422.
// @Tags stock
// @Accept json
// @Produce json
// @Param movement body domain.MovementRequest true "Movimento"
// @Success 201 {object} domain.MovementResult
// @Failure 422 {object} domain.ErrorResponse "Estoque insuficiente"
// @Security ApiKeyAuth
// @Router /stock/movements [post]
func (h *Handler) MoveStockHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.MovementRequest
	if err := response.Decode(r, &req); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	result, err := h.Service.Move(r.Context(), req)
	response.Handle(h.Logger, w, r, result, err, http.StatusCreated)
}

// ListMovementsHandler lida com GET /v1/stock/movements?product_id=&reference_type=&reference_id=&from=&to=.
// @Summary Lista o histórico de movimentos
// @Tags stock
// @Produce json
// @Success 200 {array} domain.StockMovement
// @Security ApiKeyAuth
// @Router /stock/movements [get]
func (h *Handler) ListMovementsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.MovementFilter{
		ProductID:     q.Get("product_id"),
		ReferenceType: q.Get("reference_type"),
		ReferenceID:   q.Get("reference_id"),
		Sort:          response.Sort(r),
	}

	var err error
	if filter.From, err = response.Time(r, "from"); err == nil {
		if filter.To, err = response.Time(r, "to"); err == nil {
			filter.Page, err = response.Page(r)
		}
	}
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	movements, err := h.Service.ListMovements(r.Context(), filter)
	response.Handle(h.Logger, w, r, movements, err, http.StatusOK)
}

// LowStockHandler lida com GET /v1/stock/low: produtos no limite de alerta ou abaixo dele.
func (h *Handler) LowStockHandler(w http.ResponseWriter, r *http.Request) {
	page, err := response.Page(r)
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	products, err := h.Service.LowStock(r.Context(), page)
	response.Handle(h.Logger, w, r, products, err, http.StatusOK)
}
