package order

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	Create(ctx context.Context, req domain.NewPurchaseOrder) (domain.PurchaseOrder, error)
	Get(ctx context.Context, id string) (domain.PurchaseOrder, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.PurchaseOrder, error)
	Update(ctx context.Context, id string, patch domain.PurchaseOrderPatch) (domain.PurchaseOrder, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.PurchaseOrder, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os handlers de pedidos de compra.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateOrderHandler lida com POST /v1/orders. O pedido nasce PENDING.
// @Summary Cria um pedido de compra
// @Tags orders
// @Accept json
// @Produce json
// @Param order body domain.NewPurchaseOrder true "Fornecedor e linhas"
// @Success 201 {object} domain.PurchaseOrder
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /orders [post]
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.NewPurchaseOrder
	if err := response.Decode(r, &req); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	order, err := h.Service.Create(r.Context(), req)
	response.Handle(h.Logger, w, r, order, err, http.StatusCreated)
}

// GetOrderHandler lida com GET /v1/orders/{id}.
// @Summary Obtém um pedido com linhas e total
// @Tags orders
// @Produce json
// @Param id path string true "ID do Pedido"
// @Success 200 {object} domain.PurchaseOrder
// @Failure 404 {object} domain.ErrorResponse "Pedido não encontrado"
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.Get(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, order, err, http.StatusOK)
}

// ListOrdersHandler lida com GET /v1/orders?status=&supplier_id=&product_id=&from=&to=.
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Status:     domain.OrderStatus(q.Get("status")),
		SupplierID: q.Get("supplier_id"),
		ProductID:  q.Get("product_id"),
		Sort:       response.Sort(r),
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

	orders, err := h.Service.List(r.Context(), filter)
	response.Handle(h.Logger, w, r, orders, err, http.StatusOK)
}

func (h *Handler) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.PurchaseOrderPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	order, err := h.Service.Update(r.Context(), response.ID(r), patch)
	response.Handle(h.Logger, w, r, order, err, http.StatusOK)
}

// SetOrderStatusHandler lida com PUT /v1/orders/{id}/status.
// @Summary Altera o status do pedido
// @Description Entrar em DELIVERED credita as linhas no estoque; sair de DELIVERED estorna.
// @Description Se algum produto ficaria negativo, nada é alterado e a resposta é 409 STOCK_CONFLICT.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "ID do Pedido"
// @Param status body domain.StatusChange true "Novo status"
// @Success 200 {object} domain.PurchaseOrder
// @Failure 409 {object} domain.ErrorResponse "Estorno deixaria estoque negativo"
// @Security ApiKeyAuth
// @Router /orders/{id}/status [put]
func (h *Handler) SetOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	var change domain.StatusChange
	if err := response.Decode(r, &change); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	order, err := h.Service.SetStatus(r.Context(), response.ID(r), change.Status)
	response.Handle(h.Logger, w, r, order, err, http.StatusOK)
}

func (h *Handler) DeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}
