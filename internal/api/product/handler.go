package product

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	Create(ctx context.Context, req domain.NewProduct) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cria um novo produto
// @Description initial_quantity é lançado no livro de estoque como movimento inicial.
// @Tags products
// @Accept json
// @Produce json
// @Param product body domain.NewProduct true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.NewProduct
	if err := response.Decode(r, &req); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	product, err := h.Service.Create(r.Context(), req)
	response.Handle(h.Logger, w, r, product, err, http.StatusCreated)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Obtém um produto por ID
// @Tags products
// @Produce json
// @Param id path string true "ID do Produto"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Security ApiKeyAuth
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.Get(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, product, err, http.StatusOK)
}

// ListProductsHandler lida com GET /v1/products?name=&category_id=&low_stock=&created_from=&created_to=&sort=&limit=&offset=.
// @Summary Lista produtos
// @Tags products
// @Produce json
// @Success 200 {array} domain.Product
// @Security ApiKeyAuth
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	products, err := h.Service.List(r.Context(), filter)
	response.Handle(h.Logger, w, r, products, err, http.StatusOK)
}

// UpdateProductHandler lida com PATCH /v1/products/{id}. A quantidade em estoque não é editável aqui.
// @Summary Atualiza um produto
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do Produto"
// @Param patch body domain.ProductPatch true "Campos alterados"
// @Success 200 {object} domain.Product
// @Failure 409 {object} domain.ErrorResponse "Modificado por outra operação"
// @Security ApiKeyAuth
// @Router /products/{id} [patch]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	product, err := h.Service.Update(r.Context(), response.ID(r), patch)
	response.Handle(h.Logger, w, r, product, err, http.StatusOK)
}

// DeleteProductHandler lida com DELETE /v1/products/{id}.
// @Summary Remove um produto
// @Tags products
// @Param id path string true "ID do Produto"
// @Success 204
// @Failure 409 {object} domain.ErrorResponse "Produto referenciado por pedidos"
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}

func productFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Name:       q.Get("name"),
		CategoryID: q.Get("category_id"),
		Sort:       response.Sort(r),
	}

	var err error
	if filter.LowStockOnly, err = response.Bool(r, "low_stock"); err != nil {
		return filter, err
	}
	if filter.CreatedFrom, err = response.Time(r, "created_from"); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = response.Time(r, "created_to"); err != nil {
		return filter, err
	}
	if filter.Page, err = response.Page(r); err != nil {
		return filter, err
	}
	return filter, nil
}
