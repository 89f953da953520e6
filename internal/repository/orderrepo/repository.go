package orderrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

const orderColumns = `id, supplier_id, order_date, notes, status, version, created_at, updated_at`

var sortColumns = map[string]string{
	"order_date": "order_date",
	"created_at": "created_at",
	"status":     "status",
}

// OrderRepository persiste pedidos de compra e suas linhas.
// As escritas de várias tabelas devem ser chamadas dentro de uma unidade de trabalho.
type OrderRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewOrderRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Create insere o pedido e as linhas. IDs e timestamps são atribuídos aqui.
func (r *OrderRepository) Create(ctx context.Context, order domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order.ID = uuid.NewString()
	order.Version = 1
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	if order.OrderDate.IsZero() {
		order.OrderDate = order.CreatedAt
	}

	q := database.Conn(ctx, r.DB)
	_, err := q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO purchase_orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		order.ID, order.SupplierID, order.OrderDate, order.Notes, order.Status, order.Version,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.PurchaseOrder{}, apperror.NewValidationError(fmt.Sprintf("Fornecedor %s não existe.", order.SupplierID))
		}
		r.logger.Error("Falha ao inserir pedido no DB.", err)
		return domain.PurchaseOrder{}, apperror.NewDBError("Falha ao criar pedido", err)
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		// UUIDv7 cresce com o tempo: ordenar por id preserva a ordem das linhas.
		lineID, err := uuid.NewV7()
		if err != nil {
			return domain.PurchaseOrder{}, apperror.NewInternalError("Falha ao gerar id da linha.", err)
		}
		line.ID = lineID.String()
		line.OrderID = order.ID
		_, err = q.ExecContext(ctxTimeout, q.Rebind(`
			INSERT INTO order_lines (id, order_id, product_id, quantity) VALUES (?, ?, ?, ?)`),
			line.ID, line.OrderID, line.ProductID, line.Quantity,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return domain.PurchaseOrder{}, apperror.NewValidationError(fmt.Sprintf("Produto %s não existe.", line.ProductID))
			}
			r.logger.Error("Falha ao inserir linha de pedido no DB.", err)
			return domain.PurchaseOrder{}, apperror.NewDBError("Falha ao criar linha de pedido", err)
		}
	}

	r.logger.Info("Pedido criado com sucesso.", map[string]interface{}{"id": order.ID, "lines": len(order.Lines)})
	return order, nil
}

// FindByID busca o pedido com as linhas e o preço atual de cada produto.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	return r.find(ctx, id, false)
}

// Lock busca o pedido bloqueando a linha até o fim da unidade de trabalho.
func (r *OrderRepository) Lock(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	return r.find(ctx, id, true)
}

func (r *OrderRepository) find(ctx context.Context, id string, forUpdate bool) (domain.PurchaseOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = ?`
	if forUpdate {
		query += database.ForUpdate(q)
	}

	var order domain.PurchaseOrder
	err := q.GetContext(ctxTimeout, &order, q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PurchaseOrder{}, apperror.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar pedido no DB.", err)
		return domain.PurchaseOrder{}, apperror.NewDBError("Falha ao buscar pedido", err)
	}

	lines, err := r.Lines(ctx, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	order.Lines = lines
	order.ComputeTotal()
	return order, nil
}

// Lines devolve as linhas do pedido na ordem em que foram criadas (ids UUIDv7).
func (r *OrderRepository) Lines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	lines := make([]domain.OrderLine, 0)
	err := q.SelectContext(ctxTimeout, &lines, q.Rebind(`
		SELECT l.id, l.order_id, l.product_id, l.quantity, p.unit_price
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = ?
		ORDER BY l.id`), orderID)
	if err != nil {
		r.logger.Error("Falha ao buscar linhas do pedido.", err)
		return nil, apperror.NewDBError("Falha ao buscar linhas do pedido", err)
	}
	return lines, nil
}

// Query devolve os pedidos (sem linhas) que atendem ao filtro.
func (r *OrderRepository) Query(ctx context.Context, filter domain.OrderFilter) iter.Seq2[domain.PurchaseOrder, error] {
	query, args := database.Select(`SELECT `+orderColumns+` FROM purchase_orders`).
		WhereIf(filter.Status != "", "status = ?", filter.Status).
		WhereIf(filter.SupplierID != "", "supplier_id = ?", filter.SupplierID).
		WhereIf(filter.ProductID != "",
			"EXISTS (SELECT 1 FROM order_lines l WHERE l.order_id = purchase_orders.id AND l.product_id = ?)", filter.ProductID).
		Between("order_date", filter.From, filter.To).
		OrderBy(filter.Sort, sortColumns, "order_date DESC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.PurchaseOrder](ctx, r.DB, r.DBTimeout, query, args...)
}

// UpdateStatus grava o novo status se a versão ainda for a lida (OCC).
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, version int) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE purchase_orders SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`),
		status, time.Now().UTC(), id, version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar status do pedido.", err)
		return apperror.NewDBError("Falha ao atualizar status do pedido", err)
	}
	return r.checkVersion(result, id, version)
}

// Update grava fornecedor, data e observações com verificação de versão.
func (r *OrderRepository) Update(ctx context.Context, order domain.PurchaseOrder) (domain.PurchaseOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	order.UpdatedAt = time.Now().UTC()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE purchase_orders SET supplier_id = ?, order_date = ?, notes = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`),
		order.SupplierID, order.OrderDate, order.Notes, order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.PurchaseOrder{}, apperror.NewValidationError(fmt.Sprintf("Fornecedor %s não existe.", order.SupplierID))
		}
		r.logger.Error("Falha ao atualizar pedido.", err)
		return domain.PurchaseOrder{}, apperror.NewDBError("Falha ao atualizar pedido", err)
	}
	if err := r.checkVersion(result, order.ID, order.Version); err != nil {
		return domain.PurchaseOrder{}, err
	}
	order.Version++
	return order, nil
}

func (r *OrderRepository) checkVersion(result sql.Result, id string, version int) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC) do pedido.", map[string]interface{}{
			"id":               id,
			"expected_version": version,
		})
		return apperror.NewConflictError("O pedido foi modificado por outra operação. Tente novamente.")
	}
	return nil
}

// Delete remove o pedido; as linhas saem por cascata.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`DELETE FROM purchase_orders WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("Falha ao deletar pedido.", err)
		return apperror.NewDBError("Falha ao deletar pedido", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Pedido com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Pedido deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// CountByStatus conta os pedidos em um status.
func (r *OrderRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var n int
	if err := q.GetContext(ctxTimeout, &n, q.Rebind(`SELECT COUNT(*) FROM purchase_orders WHERE status = ?`), status); err != nil {
		return 0, apperror.NewDBError("Falha ao contar pedidos", err)
	}
	return n, nil
}
